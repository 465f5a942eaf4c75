package packer

import (
	"context"
	"fmt"
	"strings"

	"ai-qa-be/pkg/sanitizer"

	"github.com/google/uuid"
)

// TwoStage first lets the model pick relevant passages in budget-sized
// rounds, then packs the picked passages in the order given. When nothing
// makes it into the prompt the placeholder is packed instead.
func (p *Packer) TwoStage(ctx context.Context, question string, embeddingIDs []uuid.UUID) (*Result, error) {
	selector, err := p.selectSources(ctx, question, embeddingIDs)
	if err != nil {
		return nil, err
	}
	res, err := p.packChosen(ctx, question, selector.Chosen())
	if err != nil {
		return nil, err
	}
	res.ParseFailures = selector.ParseFailures()
	return res, nil
}

func (p *Packer) selectSources(ctx context.Context, question string, embeddingIDs []uuid.UUID) (*SourceSelector, error) {
	selector := NewSourceSelector(p.counter, p.budget, p.chooser, p.templates.Selection, question)

	for _, id := range embeddingIDs {
		passage, err := p.store.FindByEmbeddingID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load passage for embedding %s: %w", id, err)
		}
		if passage == nil {
			continue
		}

		if selector.TryAdd(passage) {
			continue
		}
		if err := selector.Flush(ctx); err != nil {
			return nil, err
		}
		// a block too large for an empty buffer is left out
		selector.TryAdd(passage)
	}

	if err := selector.Flush(ctx); err != nil {
		return nil, err
	}
	return selector, nil
}

func (p *Packer) packChosen(ctx context.Context, question string, chosen []Citation) (*Result, error) {
	suffix := questionSuffix(question)

	var body strings.Builder
	used := p.counter.Count(p.templates.System + p.templates.Instruction + suffix)
	using := make([]Citation, 0, len(chosen))

	for _, c := range chosen {
		id, err := uuid.Parse(c.TextGuid)
		if err != nil {
			continue
		}
		passage, err := p.store.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load passage %s: %w", id, err)
		}
		if passage == nil {
			continue
		}

		content := sanitizer.FlattenNewlines(passage.Content)
		size := p.counter.Count(content)
		if !p.budget.Fits(used, size, p.budget.Completion) {
			break
		}
		used += size

		body.WriteString(content + "\n\n")
		using = append(using, Citation{TextGuid: passage.ID.String(), TextName: passage.Name})
	}

	if len(using) == 0 {
		body.WriteString(p.templates.Placeholder)
	}

	return &Result{
		Prompt:    p.templates.Instruction + body.String() + suffix,
		UsingText: using,
	}, nil
}
