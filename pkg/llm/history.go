package llm

import "ai-qa-be/pkg/tokenizer"

// FitHistory trims a conversation to the window. Leading system messages are
// always kept; the remaining turns are kept newest first until the next one
// would eat into the completion reserve, and everything older is dropped.
func FitHistory(counter tokenizer.Counter, budget tokenizer.Budget, history []Message) ([]Message, error) {
	pinned := 0
	used := 0
	for pinned < len(history) && history[pinned].Role == RoleSystem {
		used += counter.Count(history[pinned].Content)
		pinned++
	}

	turns := history[pinned:]
	if len(turns) == 0 {
		return history, nil
	}

	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		size := counter.Count(turns[i].Content)
		if !budget.Fits(used, size, budget.Completion) {
			break
		}
		used += size
		start = i
	}

	if start == len(turns) {
		return nil, ErrPromptTooLarge
	}

	fitted := make([]Message, 0, pinned+len(turns)-start)
	fitted = append(fitted, history[:pinned]...)
	fitted = append(fitted, turns[start:]...)
	return fitted, nil
}
