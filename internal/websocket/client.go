package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"ai-qa-be/pkg/llm"
	"ai-qa-be/pkg/packer"
	"ai-qa-be/pkg/sse"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Answerer opens a streamed answer for one question.
type Answerer interface {
	AnswerStream(ctx context.Context, question string) (llm.Stream, []packer.Citation, error)
}

// Request is one inbound frame.
type Request struct {
	Question string `json:"question"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// Client is one websocket connection. Each question frame starts a new answer
// once the one still running has been cancelled and has stopped writing.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	ID uuid.UUID

	// Buffered channel of outbound frames.
	Send chan []byte

	answerer Answerer

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	answerCancel context.CancelFunc
	answerDone   chan struct{}
	answers      sync.WaitGroup
}

func newClient(hub *Hub, conn *websocket.Conn, answerer Answerer) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:      hub,
		Conn:     conn,
		ID:       uuid.New(),
		Send:     make(chan []byte, 256),
		answerer: answerer,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// readPump reads question frames until the socket closes. Closing the socket
// cancels the client context, which closes any upstream stream.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.Hub.remove(c)
		c.answers.Wait()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"client_id": c.ID,
					"error":     err.Error(),
				})
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.Question) == "" {
			c.sendError("question is required")
			continue
		}

		c.startAnswer(req.Question)
	}
}

func (c *Client) startAnswer(question string) {
	c.mu.Lock()
	prevCancel, prevDone := c.answerCancel, c.answerDone
	ctx, cancel := context.WithCancel(c.ctx)
	done := make(chan struct{})
	c.answerCancel, c.answerDone = cancel, done
	c.mu.Unlock()

	// frames of two answers never interleave
	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	c.answers.Add(1)
	go func() {
		defer c.answers.Done()
		defer close(done)
		defer cancel()
		c.answer(ctx, question)
	}()
}

func (c *Client) answer(ctx context.Context, question string) {
	stream, citations, err := c.answerer.AnswerStream(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.Hub.logger.Error("Client", "Failed to open answer stream", map[string]interface{}{
			"client_id": c.ID,
			"error":     err.Error(),
		})
		c.sendError("failed to generate answer")
		return
	}

	if err := sse.Relay(stream, &frameSink{ctx: ctx, client: c}, citations); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.Hub.logger.Warn("Client", "Stream ended without completion", map[string]interface{}{
			"client_id": c.ID,
			"error":     err.Error(),
		})
	}
}

func (c *Client) sendError(msg string) {
	data, _ := json.Marshal(errorFrame{Error: msg})
	c.enqueue(c.ctx, data)
}

func (c *Client) enqueue(ctx context.Context, data []byte) error {
	select {
	case c.Send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.cancel()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// frameSink frames a relayed answer as one JSON envelope per message.
type frameSink struct {
	ctx    context.Context
	client *Client
}

func (s *frameSink) WriteText(text string) error {
	return s.write(sse.Event{Text: text})
}

func (s *frameSink) WriteDone() error {
	return s.write(sse.Event{Text: sse.DoneMarker})
}

func (s *frameSink) WriteTrailer(v any) error {
	return s.write(sse.Event{UsingText: v})
}

func (s *frameSink) write(e sse.Event) error {
	data, err := sse.Encode(e)
	if err != nil {
		return err
	}
	return s.client.enqueue(s.ctx, data)
}
