package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/repository/specification"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/pkg/embedding"
	"ai-qa-be/pkg/events"
	"ai-qa-be/pkg/sanitizer"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IConsumerService runs the indexing worker: every message names one text
// whose vector must be brought in line with its current content.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	embeddingModel    string
	corpus            ICorpusService
	eventPub          events.Publisher
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	embeddingModel string,
	corpus ICorpusService,
	eventPub events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		embeddingModel:    embeddingModel,
		corpus:            corpus,
		eventPub:          eventPub,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexTextMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("INDEXER", "Dropping undecodable message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	// Failures are acked too: gochannel redelivers a nack at once, which would
	// spin on a failing provider. The text is retried on its next update.
	if err := cs.index(ctx, payload.TextId); err != nil {
		cs.logger.Error("INDEXER", "Indexing failed, text left unindexed", map[string]interface{}{
			"text_id": payload.TextId.String(),
			"error":   err.Error(),
		})
	}

	msg.Ack()
}

func (cs *consumerService) index(ctx context.Context, textId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	text, err := uow.TextRepository().FindOne(ctx, specification.ByID{ID: textId})
	if err != nil {
		return err
	}
	if text == nil {
		cs.logger.Warn("INDEXER", "Text gone before indexing", map[string]interface{}{
			"text_id": textId.String(),
		})
		return nil
	}

	content := sanitizer.SafeForOutbound(sanitizer.StripHTML(text.Content))
	if strings.TrimSpace(content) == "" {
		return cs.unindex(ctx, uow, text)
	}

	res, err := cs.embeddingProvider.Generate(ctx, content, embedding.TaskDocument)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	var current *entity.Embedding
	if text.EmbeddingId != nil {
		current, err = uow.EmbeddingRepository().FindOne(ctx, specification.ByID{ID: *text.EmbeddingId})
		if err != nil {
			return err
		}
	}

	now := time.Now()
	if current != nil {
		current.EmbeddingValue = res.Values
		current.Model = cs.embeddingModel
		current.UpdatedAt = &now
		if err := uow.EmbeddingRepository().Update(ctx, current); err != nil {
			return err
		}
	} else {
		current = &entity.Embedding{
			Id:             uuid.New(),
			EmbeddingValue: res.Values,
			Model:          cs.embeddingModel,
			CreatedAt:      now,
		}
		if err := uow.EmbeddingRepository().Create(ctx, current); err != nil {
			return err
		}
		if err := uow.TextRepository().SetEmbeddingId(ctx, text.Id, &current.Id); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.logger.Info("INDEXER", "Text indexed", map[string]interface{}{
		"text_id":      text.Id.String(),
		"embedding_id": current.Id.String(),
		"dimensions":   len(res.Values),
	})
	corpusChanged(ctx, cs.corpus, cs.eventPub, cs.logger, events.NewTextIndexed(text.Id, &current.Id))
	return nil
}

// unindex removes the vector of a text whose content became empty.
func (cs *consumerService) unindex(ctx context.Context, uow unitofwork.UnitOfWork, text *entity.Text) error {
	if text.EmbeddingId == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TextRepository().SetEmbeddingId(ctx, text.Id, nil); err != nil {
		return err
	}
	if err := uow.EmbeddingRepository().DeleteByIds(ctx, []uuid.UUID{*text.EmbeddingId}); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	corpusChanged(ctx, cs.corpus, cs.eventPub, cs.logger, events.NewTextIndexed(text.Id, nil))
	return nil
}
