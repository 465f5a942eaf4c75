package factory

import (
	"testing"

	"ai-qa-be/pkg/llm/ollama"
	"ai-qa-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider("openai", "gpt-3.5-turbo", "", "key")
	require.NoError(t, err)
	o, ok := p.(*openai.OpenAIProvider)
	require.True(t, ok)
	assert.Equal(t, "https://api.openai.com/v1", o.BaseURL)

	p, err = NewLLMProvider("ollama", "llama3", "", "")
	require.NoError(t, err)
	_, ok = p.(*ollama.OllamaProvider)
	assert.True(t, ok)

	_, err = NewLLMProvider("unknown", "", "", "")
	assert.Error(t, err)
}
