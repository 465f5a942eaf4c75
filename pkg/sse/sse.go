package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"ai-qa-be/pkg/llm"
)

// DoneMarker is sent as the text of the last fragment event of a complete answer.
const DoneMarker = "[DONE]"

// Event is the JSON envelope carried by every data line.
type Event struct {
	Text      string `json:"text,omitempty"`
	UsingText any    `json:"usingText,omitempty"`
}

// Sink receives a relayed answer.
type Sink interface {
	WriteText(text string) error
	WriteDone() error
	WriteTrailer(v any) error
}

// Writer frames events as "data: <json>\n\n" and flushes after each one.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w *bufio.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteText(text string) error {
	return w.writeEvent(Event{Text: text})
}

func (w *Writer) WriteDone() error {
	return w.writeEvent(Event{Text: DoneMarker})
}

func (w *Writer) WriteTrailer(v any) error {
	return w.writeEvent(Event{UsingText: v})
}

func (w *Writer) writeEvent(e Event) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.w.Flush()
}

// Encode renders an event envelope without HTML escaping.
func Encode(e Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Relay copies every fragment of stream into sink. On a normal end it writes
// the done marker and, when trailer is non-nil, the trailer. On an abrupt end
// neither is written and the stream's error is returned. The stream is closed
// before Relay returns.
func Relay(stream llm.Stream, sink Sink, trailer any) error {
	defer stream.Close()

	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := sink.WriteText(fragment); err != nil {
			return fmt.Errorf("write fragment: %w", err)
		}
	}

	if err := sink.WriteDone(); err != nil {
		return fmt.Errorf("write done: %w", err)
	}
	if trailer != nil {
		if err := sink.WriteTrailer(trailer); err != nil {
			return fmt.Errorf("write trailer: %w", err)
		}
	}
	return nil
}
