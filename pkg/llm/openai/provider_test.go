package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-qa-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprint(w, line)
			w.(http.Flusher).Flush()
		}
	}))
}

func drain(t *testing.T, s llm.Stream) ([]string, error) {
	t.Helper()
	var fragments []string
	for {
		frag, err := s.Recv()
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, frag)
	}
}

var question = []llm.Message{{Role: llm.RoleUser, Content: "hello"}}

func TestChatStreamScripted(t *testing.T) {
	srv := scriptedServer(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n",
		"data: [DONE]\n\n",
	)
	defer srv.Close()

	stream, err := NewOpenAIProvider(srv.URL, "key", "gpt").ChatStream(context.Background(), question)
	require.NoError(t, err)

	fragments, err := drain(t, stream)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"Hi"}, fragments)
}

func TestChatStreamIgnoresUnframedLines(t *testing.T) {
	srv := scriptedServer(t,
		": keep-alive\n",
		"event: message\n",
		"\n",
		"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n",
		"data: {\"choices\":[]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\r\n\r\n",
		"data:{\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n",
		"data: [DONE]\n\n",
	)
	defer srv.Close()

	stream, err := NewOpenAIProvider(srv.URL, "", "gpt").ChatStream(context.Background(), question)
	require.NoError(t, err)

	fragments, err := drain(t, stream)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"a", "b"}, fragments)
}

func TestChatStreamAbruptEnd(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantFrags []string
		wantErr   error
	}{
		{
			name:      "closed without sentinel",
			lines:     []string{"data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n"},
			wantFrags: []string{"Hi"},
			wantErr:   llm.ErrIncompleteStream,
		},
		{
			name:      "malformed event",
			lines:     []string{"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n", "data: {\"choices\":[{\"delta\n\n", "data: {\"choices\":[{\"delta\":{\"content\":\"never\"}}]}\n\n", "data: [DONE]\n\n"},
			wantFrags: []string{"ok"},
			wantErr:   llm.ErrMalformedEvent,
		},
		{
			name:      "wrong shape",
			lines:     []string{"data: {\"choices\":\"nope\"}\n\n", "data: [DONE]\n\n"},
			wantFrags: nil,
			wantErr:   llm.ErrMalformedEvent,
		},
		{
			name:      "empty body",
			lines:     nil,
			wantFrags: nil,
			wantErr:   llm.ErrIncompleteStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := scriptedServer(t, tt.lines...)
			defer srv.Close()

			stream, err := NewOpenAIProvider(srv.URL, "", "gpt").ChatStream(context.Background(), question)
			require.NoError(t, err)

			fragments, err := drain(t, stream)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantFrags, fragments)

			// terminal errors are sticky
			_, again := stream.Recv()
			assert.ErrorIs(t, again, tt.wantErr)
		})
	}
}

func TestChatStreamCancelReleasesConnection(t *testing.T) {
	released := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(released)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := NewOpenAIProvider(srv.URL, "", "gpt").ChatStream(ctx, question)
	require.NoError(t, err)

	frag, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hi", frag)

	cancel()
	_, err = stream.Recv()
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream connection still open after cancel")
	}
}

func TestChatStreamRequest(t *testing.T) {
	var gotReq chatRequest
	var accept, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stream, err := NewOpenAIProvider(srv.URL, "secret", "gpt-3.5-turbo").
		ChatStream(context.Background(), question, llm.WithTemperature(0.2), llm.WithMaxTokens(500))
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "text/event-stream", accept)
	assert.Equal(t, "Bearer secret", auth)
	assert.True(t, gotReq.Stream)
	assert.Equal(t, "gpt-3.5-turbo", gotReq.Model)
	assert.Equal(t, 0.2, gotReq.Temperature)
	assert.Equal(t, 500, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "hello", gotReq.Messages[0].Content)
}

func TestChatStreamUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"slow down"}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider(srv.URL, "", "gpt").ChatStream(context.Background(), question)
	var upstream *llm.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "slow down")
}

func TestChat(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{"ok", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"42"}}]}`, "42", false},
		{"no choices", http.StatusOK, `{"choices":[]}`, "", true},
		{"server error", http.StatusInternalServerError, `boom`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReq chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/chat/completions", r.URL.Path)
				_ = json.NewDecoder(r.Body).Decode(&gotReq)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			got, err := NewOpenAIProvider(srv.URL+"/", "", "gpt").Generate(context.Background(), "q", llm.WithTemperature(0))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, gotReq.Stream)
			assert.Equal(t, 0.0, gotReq.Temperature)
		})
	}
}
