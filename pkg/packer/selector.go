package packer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-qa-be/pkg/sanitizer"
	"ai-qa-be/pkg/tokenizer"
)

// SourceSelector buffers candidate blocks for the relevance call. TryAdd
// admits a block while the selection reserve still fits; Flush sends the
// buffer to the Chooser, records what it picked and resets the buffer.
type SourceSelector struct {
	counter  tokenizer.Counter
	budget   tokenizer.Budget
	chooser  Chooser
	header   string
	suffix   string
	base     int
	used     int
	buffer   strings.Builder
	pending  int
	chosen   []Citation
	seen     map[string]struct{}
	parseErr int
}

func NewSourceSelector(counter tokenizer.Counter, budget tokenizer.Budget, chooser Chooser, header, question string) *SourceSelector {
	suffix := questionSuffix(question)
	base := counter.Count(header + suffix)
	return &SourceSelector{
		counter: counter,
		budget:  budget,
		chooser: chooser,
		header:  header,
		suffix:  suffix,
		base:    base,
		used:    base,
		seen:    make(map[string]struct{}),
	}
}

func renderBlock(p *Passage) string {
	return fmt.Sprintf("TextGuid:%q\nTextName:%q\nTextContent:%q\n\n", p.ID.String(), p.Name, sanitizer.FlattenNewlines(p.Content))
}

// TryAdd appends the passage's block when it fits and reports whether it did.
func (s *SourceSelector) TryAdd(p *Passage) bool {
	block := renderBlock(p)
	size := s.counter.Count(block)
	if !s.budget.Fits(s.used, size, s.budget.Selection) {
		return false
	}
	s.used += size
	s.buffer.WriteString(block)
	s.pending++
	return true
}

// Pending is the number of blocks waiting for the next Flush.
func (s *SourceSelector) Pending() int {
	return s.pending
}

// Flush asks the Chooser which buffered passages are relevant. An empty
// buffer is a no-op. A reply without a usable list counts as no selection.
func (s *SourceSelector) Flush(ctx context.Context) error {
	if s.pending == 0 {
		return nil
	}

	prompt := s.header + s.buffer.String() + s.suffix
	s.buffer.Reset()
	s.pending = 0
	s.used = s.base

	reply, err := s.chooser.Choose(ctx, prompt)
	if err != nil {
		return fmt.Errorf("source selection call failed: %w", err)
	}

	citations, err := DecodeCitations(reply)
	if err != nil {
		if !errors.Is(err, ErrNoCitations) {
			s.parseErr++
		}
		return nil
	}

	for _, c := range citations {
		if _, ok := s.seen[c.TextGuid]; ok {
			continue
		}
		s.seen[c.TextGuid] = struct{}{}
		s.chosen = append(s.chosen, c)
	}
	return nil
}

// Chosen returns the accumulated selection in the order the model gave it.
func (s *SourceSelector) Chosen() []Citation {
	return s.chosen
}

// ParseFailures counts replies that held a list the decoder could not read.
func (s *SourceSelector) ParseFailures() int {
	return s.parseErr
}
