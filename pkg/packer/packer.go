package packer

import (
	"context"

	"ai-qa-be/pkg/tokenizer"

	"github.com/google/uuid"
)

// Passage is the stored text a candidate points at.
type Passage struct {
	ID      uuid.UUID
	Name    string
	Content string
}

// Store resolves candidates to passages. Both lookups return nil, nil when
// nothing matches.
type Store interface {
	FindByEmbeddingID(ctx context.Context, embeddingID uuid.UUID) (*Passage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Passage, error)
}

// Chooser runs the short relevance call used by the two-stage packer and
// returns the raw model reply.
type Chooser interface {
	Choose(ctx context.Context, prompt string) (string, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, prompt string) (string, error)

func (f ChooserFunc) Choose(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type Templates struct {
	System      string
	Instruction string
	Selection   string
	Placeholder string
}

// DirectResult is the output of direct packing.
type DirectResult struct {
	Prompt       string `json:"prompt"`
	SourcePrompt string `json:"sourcePrompt"`
}

// Result is the output of two-stage packing. UsingText lists, in prompt
// order, every passage that made it into Prompt. ParseFailures counts the
// selection replies whose list could not be read and were treated as empty.
type Result struct {
	Prompt        string     `json:"prompt"`
	UsingText     []Citation `json:"usingText"`
	ParseFailures int        `json:"-"`
}

type Packer struct {
	store     Store
	counter   tokenizer.Counter
	budget    tokenizer.Budget
	templates Templates
	chooser   Chooser
}

func New(store Store, counter tokenizer.Counter, budget tokenizer.Budget, templates Templates, chooser Chooser) *Packer {
	return &Packer{
		store:     store,
		counter:   counter,
		budget:    budget,
		templates: templates,
		chooser:   chooser,
	}
}

func questionSuffix(question string) string {
	return "\n\nQuestion:" + question
}
