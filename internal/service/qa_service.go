package service

import (
	"context"
	"fmt"
	"strings"

	"ai-qa-be/internal/config"
	"ai-qa-be/internal/constant"
	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/pkg/embedding"
	"ai-qa-be/pkg/llm"
	"ai-qa-be/pkg/packer"
	"ai-qa-be/pkg/sanitizer"
	"ai-qa-be/pkg/similarity"

	"github.com/google/uuid"
)

type IQAService interface {
	SimilarWords(ctx context.Context, question string) (*dto.SimilarWordsResponse, error)
	Top5(ctx context.Context, question string) (*dto.Top5Response, error)
	Answer(ctx context.Context, question string) (*dto.AnswerResponse, error)
	// AnswerStream packs with the two-stage strategy and opens the completion
	// stream. The returned citations belong after the stream's end marker.
	AnswerStream(ctx context.Context, question string) (llm.Stream, []packer.Citation, error)
	// OpenAnswerStream opens the completion stream for an already packed
	// prompt. ctx governs only the stream.
	OpenAnswerStream(ctx context.Context, packed *dto.Top5Response) (llm.Stream, []packer.Citation, error)
}

type qaService struct {
	corpus            ICorpusService
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	packer            *packer.Packer
	scorer            *similarity.Scorer
	budget            config.BudgetConfig
	topK              int
	logger            logger.ILogger
}

func NewQAService(
	corpus ICorpusService,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	pk *packer.Packer,
	scorer *similarity.Scorer,
	budget config.BudgetConfig,
	topK int,
	log logger.ILogger,
) IQAService {
	if topK <= 0 {
		topK = similarity.DefaultTopK
	}
	return &qaService{
		corpus:            corpus,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		packer:            pk,
		scorer:            scorer,
		budget:            budget,
		topK:              topK,
		logger:            log,
	}
}

// NewSourceChooser runs the relevance call of two-stage packing as a single
// deterministic user turn.
func NewSourceChooser(provider llm.LLMProvider, maxTokens int) packer.Chooser {
	return packer.ChooserFunc(func(ctx context.Context, prompt string) (string, error) {
		return provider.Chat(ctx,
			[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
			llm.WithTemperature(constant.SelectionTemperature),
			llm.WithMaxTokens(maxTokens),
		)
	})
}

func (s *qaService) rank(ctx context.Context, question string) ([]uuid.UUID, error) {
	res, err := s.embeddingProvider.Generate(ctx, sanitizer.SafeForOutbound(question), embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	corpus, err := s.corpus.Entries(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := s.scorer.TopK(ctx, res.Values, corpus, s.topK)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	s.logger.Debug("QA", "Candidates ranked", map[string]interface{}{
		"corpus":     len(corpus),
		"candidates": len(ids),
	})
	return ids, nil
}

func (s *qaService) SimilarWords(ctx context.Context, question string) (*dto.SimilarWordsResponse, error) {
	ids, err := s.rank(ctx, question)
	if err != nil {
		return nil, err
	}
	return s.packer.Direct(ctx, question, ids)
}

func (s *qaService) Top5(ctx context.Context, question string) (*dto.Top5Response, error) {
	ids, err := s.rank(ctx, question)
	if err != nil {
		return nil, err
	}
	res, err := s.packer.TwoStage(ctx, question, ids)
	if err != nil {
		return nil, err
	}
	if res.ParseFailures > 0 {
		s.logger.Warn("QA", "Unreadable source selection replies treated as empty", map[string]interface{}{
			"failures": res.ParseFailures,
		})
	}
	return res, nil
}

func (s *qaService) history(prompt string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: constant.QASystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	}
}

func (s *qaService) options() []llm.Option {
	return []llm.Option{
		llm.WithTemperature(constant.QATemperature),
		llm.WithMaxTokens(s.budget.QACompletionTokens),
	}
}

func (s *qaService) Answer(ctx context.Context, question string) (*dto.AnswerResponse, error) {
	packed, err := s.SimilarWords(ctx, question)
	if err != nil {
		return nil, err
	}

	text, err := s.llmProvider.Chat(ctx, s.history(packed.Prompt), s.options()...)
	if err != nil {
		return nil, err
	}

	return &dto.AnswerResponse{Text: strings.TrimSpace(text)}, nil
}

func (s *qaService) AnswerStream(ctx context.Context, question string) (llm.Stream, []packer.Citation, error) {
	packed, err := s.Top5(ctx, question)
	if err != nil {
		return nil, nil, err
	}
	return s.OpenAnswerStream(ctx, packed)
}

func (s *qaService) OpenAnswerStream(ctx context.Context, packed *dto.Top5Response) (llm.Stream, []packer.Citation, error) {
	stream, err := s.llmProvider.ChatStream(ctx, s.history(packed.Prompt), s.options()...)
	if err != nil {
		return nil, nil, err
	}

	citations := packed.UsingText
	if citations == nil {
		citations = []packer.Citation{}
	}
	return stream, citations, nil
}
