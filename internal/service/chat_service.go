package service

import (
	"context"

	"ai-qa-be/internal/constant"
	"ai-qa-be/pkg/llm"
	"ai-qa-be/pkg/tokenizer"
)

// IChatService passes a caller-held conversation through to the model.
// Nothing is stored.
type IChatService interface {
	Complete(ctx context.Context, history []llm.Message) (string, error)
	CompleteStream(ctx context.Context, history []llm.Message) (llm.Stream, error)
	CountTokens(text string) int
}

type chatService struct {
	llmProvider llm.LLMProvider
	counter     tokenizer.Counter
	budget      tokenizer.Budget
}

func NewChatService(llmProvider llm.LLMProvider, counter tokenizer.Counter, budget tokenizer.Budget) IChatService {
	return &chatService{
		llmProvider: llmProvider,
		counter:     counter,
		budget:      budget,
	}
}

func (s *chatService) options() []llm.Option {
	return []llm.Option{
		llm.WithTemperature(constant.ChatTemperature),
		llm.WithTopP(constant.ChatTopP),
		llm.WithMaxTokens(s.budget.Completion),
	}
}

func (s *chatService) Complete(ctx context.Context, history []llm.Message) (string, error) {
	fitted, err := llm.FitHistory(s.counter, s.budget, history)
	if err != nil {
		return "", err
	}
	return s.llmProvider.Chat(ctx, fitted, s.options()...)
}

func (s *chatService) CompleteStream(ctx context.Context, history []llm.Message) (llm.Stream, error) {
	fitted, err := llm.FitHistory(s.counter, s.budget, history)
	if err != nil {
		return nil, err
	}
	return s.llmProvider.ChatStream(ctx, fitted, s.options()...)
}

func (s *chatService) CountTokens(text string) int {
	return s.counter.Count(text)
}
