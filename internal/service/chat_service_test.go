package service

import (
	"context"
	"testing"

	"ai-qa-be/internal/constant"
	"ai-qa-be/pkg/llm"
	"ai-qa-be/pkg/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompleteTrimsHistory(t *testing.T) {
	model := &scriptedLLM{replies: []string{"ok"}}
	svc := NewChatService(model, wordCounter{}, tokenizer.Budget{Total: 10, Completion: 4})

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "one two three four"},
		{Role: llm.RoleAssistant, Content: "yes"},
		{Role: llm.RoleUser, Content: "and now"},
	}

	text, err := svc.Complete(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	sent := model.histories[0]
	assert.Equal(t, []llm.Message{history[0], history[2], history[3]}, sent)

	opts := model.options[0]
	assert.Equal(t, constant.ChatTemperature, opts.Temperature)
	assert.Equal(t, constant.ChatTopP, opts.TopP)
	assert.Equal(t, 4, opts.MaxTokens)
}

func TestChatStreamRejectsOversizedTurn(t *testing.T) {
	model := &scriptedLLM{}
	svc := NewChatService(model, wordCounter{}, tokenizer.Budget{Total: 5, Completion: 4})

	_, err := svc.CompleteStream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "too many words"}})
	assert.ErrorIs(t, err, llm.ErrPromptTooLarge)
	assert.Empty(t, model.histories)
}

func TestChatCountTokens(t *testing.T) {
	svc := NewChatService(&scriptedLLM{}, wordCounter{}, tokenizer.Budget{})
	assert.Equal(t, 3, svc.CountTokens("a b c"))
}
