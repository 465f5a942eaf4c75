package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"ai-qa-be/pkg/llm"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// eventStream reads a text/event-stream body one line at a time.
type eventStream struct {
	ctx       context.Context
	body      io.ReadCloser
	reader    *bufio.Reader
	err       error
	closeOnce sync.Once
}

func (s *eventStream) Recv() (string, error) {
	if s.err != nil {
		return "", s.err
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return s.fail(err)
		}

		line, readErr := s.reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if err := s.ctx.Err(); err != nil {
				return s.fail(err)
			}
			return s.fail(fmt.Errorf("read stream: %w", readErr))
		}

		fragment, done, err := parseLine(line)
		if err != nil {
			return s.fail(err)
		}
		if done {
			return s.fail(io.EOF)
		}
		if fragment != "" {
			return fragment, nil
		}
		if readErr != nil {
			return s.fail(llm.ErrIncompleteStream)
		}
	}
}

func (s *eventStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}

// fail records the terminal error and releases the connection.
func (s *eventStream) fail(err error) (string, error) {
	s.err = err
	s.Close()
	return "", err
}

// parseLine extracts the delta carried by one event-stream line. Lines that
// are not data lines, and data events without content, yield nothing.
func parseLine(line string) (fragment string, done bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false, nil
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneSentinel {
		return "", true, nil
	}
	if payload == "" {
		return "", false, nil
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", false, fmt.Errorf("%w: %v", llm.ErrMalformedEvent, err)
	}
	if len(chunk.Choices) == 0 {
		return "", false, nil
	}
	return chunk.Choices[0].Delta.Content, false, nil
}
