package dto

import "ai-qa-be/pkg/llm"

type ChatCompletionRequest struct {
	Messages []llm.Message `json:"messages" validate:"required,min=1,dive"`
}

type ChatCompletionResponse struct {
	Text string `json:"text"`
}

type TokenCountRequest struct {
	Text string `json:"text"`
}

type TokenCountResponse struct {
	Tokens int `json:"tokens"`
}
