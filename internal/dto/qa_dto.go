package dto

import "ai-qa-be/pkg/packer"

type QARequest struct {
	Question string `json:"question" validate:"required"`
}

type SimilarWordsResponse = packer.DirectResult

type Top5Response = packer.Result

type AnswerResponse struct {
	Text string `json:"text"`
}

