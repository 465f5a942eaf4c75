package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/repository/specification"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/pkg/events"
	"ai-qa-be/pkg/tokenizer"

	"github.com/google/uuid"
)

type ITextService interface {
	Create(ctx context.Context, req *dto.CreateTextRequest) (*dto.CreateTextResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowTextResponse, error)
	Rename(ctx context.Context, req *dto.RenameTextRequest) (*dto.UpdateTextResponse, error)
	UpdateContent(ctx context.Context, req *dto.UpdateTextContentRequest) (*dto.UpdateTextResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type textService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	corpus           ICorpusService
	eventPub         events.Publisher
	counter          tokenizer.Counter
	maxTokens        int
	logger           logger.ILogger
}

// NewTextService builds the text service. Content longer than maxTokens is
// rejected since it could never fit a prompt.
func NewTextService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	corpus ICorpusService,
	eventPub events.Publisher,
	counter tokenizer.Counter,
	maxTokens int,
	log logger.ILogger,
) ITextService {
	return &textService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		corpus:           corpus,
		eventPub:         eventPub,
		counter:          counter,
		maxTokens:        maxTokens,
		logger:           log,
	}
}

func (s *textService) checkSize(content string) error {
	if s.maxTokens > 0 && s.counter.Count(content) > s.maxTokens {
		return ErrContentTooLarge
	}
	return nil
}

func (s *textService) requestIndex(ctx context.Context, textId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIndexTextMessage{TextId: textId})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func (s *textService) Create(ctx context.Context, req *dto.CreateTextRequest) (*dto.CreateTextResponse, error) {
	if err := s.checkSize(req.Content); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.FolderId != nil {
		folder, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: *req.FolderId})
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, ErrFolderNotFound
		}
	}

	text := entity.Text{
		Id:        uuid.New(),
		Name:      req.Name,
		Content:   req.Content,
		FolderId:  req.FolderId,
		CreatedAt: time.Now(),
	}
	if err := uow.TextRepository().Create(ctx, &text); err != nil {
		return nil, err
	}

	if text.Content != "" {
		if err := s.requestIndex(ctx, text.Id); err != nil {
			return nil, err
		}
	}

	return &dto.CreateTextResponse{Id: text.Id}, nil
}

func (s *textService) find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Text, error) {
	text, err := uow.TextRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if text == nil {
		return nil, ErrTextNotFound
	}
	return text, nil
}

func (s *textService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowTextResponse, error) {
	text, err := s.find(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowTextResponse{
		Id:        text.Id,
		Name:      text.Name,
		Content:   text.Content,
		FolderId:  text.FolderId,
		Indexed:   text.EmbeddingId != nil,
		CreatedAt: text.CreatedAt,
		UpdatedAt: text.UpdatedAt,
	}, nil
}

func (s *textService) Rename(ctx context.Context, req *dto.RenameTextRequest) (*dto.UpdateTextResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	text, err := s.find(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	text.Name = req.Name
	text.UpdatedAt = &now
	if err := uow.TextRepository().Update(ctx, text); err != nil {
		return nil, err
	}

	return &dto.UpdateTextResponse{Id: text.Id}, nil
}

// UpdateContent stores the new body and queues re-embedding. The old vector
// stays in the corpus until the worker replaces it.
func (s *textService) UpdateContent(ctx context.Context, req *dto.UpdateTextContentRequest) (*dto.UpdateTextResponse, error) {
	if err := s.checkSize(req.Content); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	text, err := s.find(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	if text.Content == req.Content {
		return &dto.UpdateTextResponse{Id: text.Id}, nil
	}

	now := time.Now()
	text.Content = req.Content
	text.UpdatedAt = &now
	if err := uow.TextRepository().Update(ctx, text); err != nil {
		return nil, err
	}

	if err := s.requestIndex(ctx, text.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateTextResponse{Id: text.Id}, nil
}

func (s *textService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	text, err := s.find(ctx, uow, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TextRepository().Delete(ctx, text.Id); err != nil {
		return err
	}
	if text.EmbeddingId != nil {
		if err := uow.EmbeddingRepository().DeleteByIds(ctx, []uuid.UUID{*text.EmbeddingId}); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	corpusChanged(ctx, s.corpus, s.eventPub, s.logger, events.NewTextDeleted(text.Id))
	return nil
}
