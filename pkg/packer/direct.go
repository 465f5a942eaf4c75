package packer

import (
	"context"
	"fmt"
	"strings"

	"ai-qa-be/pkg/sanitizer"

	"github.com/google/uuid"
)

// Direct packs passages in ranked order until the next one would eat into the
// completion reserve. It never skips ahead to a smaller passage.
func (p *Packer) Direct(ctx context.Context, question string, embeddingIDs []uuid.UUID) (*DirectResult, error) {
	suffix := questionSuffix(question)

	var prompt, source strings.Builder
	prompt.WriteString(p.templates.Instruction)
	source.WriteString(p.templates.Selection)

	used := p.counter.Count(p.templates.System + p.templates.Instruction + suffix)

	for _, id := range embeddingIDs {
		passage, err := p.store.FindByEmbeddingID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load passage for embedding %s: %w", id, err)
		}
		if passage == nil {
			continue
		}

		size := p.counter.Count(passage.Content)
		if !p.budget.Fits(used, size, p.budget.Completion) {
			break
		}
		used += size

		prompt.WriteString("\n" + passage.Content + "\n")
		fmt.Fprintf(&source, "TextGuid:%q\nTextName:%q\n%s\n", passage.ID.String(), passage.Name, sanitizer.StripSymbols(passage.Content))
	}

	prompt.WriteString(suffix)
	source.WriteString(suffix)

	return &DirectResult{
		Prompt:       prompt.String(),
		SourcePrompt: source.String(),
	}, nil
}
