package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"ai-qa-be/pkg/sse"

	"github.com/fatih/color"
)

type streamEvent struct {
	Text      *string `json:"text"`
	UsingText []struct {
		TextGuid string `json:"textGuid"`
		TextName string `json:"textName"`
	} `json:"usingText"`
}

func main() {
	baseURL := flag.String("server", "http://localhost:3000/api", "API base URL")
	question := flag.String("q", "", "question to ask; reads questions from stdin when empty")
	flag.Parse()

	if *question != "" {
		if err := ask(*baseURL, *question); err != nil {
			color.Red("\n%v", err)
			os.Exit(1)
		}
		return
	}

	color.Cyan("Ask a question (Ctrl-C cancels an answer, Ctrl-D quits)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgYellow).Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if err := ask(*baseURL, q); err != nil {
			color.Red("\n%v", err)
		}
	}
}

// ask streams one answer to stdout. Ctrl-C drops the connection, which stops
// the upstream completion on the server.
func ask(baseURL, question string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	body, _ := json.Marshal(map[string]string{"question": question})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/qa/v1/answer/stream", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	answer := color.New(color.FgWhite)
	reader := sse.NewReader(resp.Body)
	done := false
	for {
		payload, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				color.Yellow("\n[cancelled]")
				return nil
			}
			return err
		}

		var ev streamEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			continue
		}

		switch {
		case ev.Text != nil && *ev.Text == sse.DoneMarker:
			done = true
			fmt.Println()
		case ev.Text != nil:
			answer.Print(*ev.Text)
		case ev.UsingText != nil:
			if len(ev.UsingText) == 0 {
				color.HiBlack("(no sources)")
			}
			for _, c := range ev.UsingText {
				color.Green("  source: %s (%s)", c.TextName, c.TextGuid)
			}
		}
	}

	if !done {
		return errors.New("answer ended early")
	}
	return nil
}
