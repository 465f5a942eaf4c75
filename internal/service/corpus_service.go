package service

import (
	"context"
	"fmt"
	"sync"

	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/pkg/events"
	"ai-qa-be/pkg/similarity"
)

// ICorpusService hands out the scored corpus. The snapshot is loaded from
// storage on first use and dropped whenever the corpus changes, locally or on
// another instance through the event bus.
type ICorpusService interface {
	Entries(ctx context.Context) ([]similarity.Entry, error)
	Invalidate()
	HandleEvent(ctx context.Context, event events.Event) error
}

type corpusService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger

	mu      sync.RWMutex
	entries []similarity.Entry
	loaded  bool
	version uint64
}

func NewCorpusService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICorpusService {
	return &corpusService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *corpusService) Entries(ctx context.Context) ([]similarity.Entry, error) {
	s.mu.RLock()
	if s.loaded {
		entries := s.entries
		s.mu.RUnlock()
		return entries, nil
	}
	version := s.version
	s.mu.RUnlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	embeddings, err := uow.EmbeddingRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}

	entries := make([]similarity.Entry, len(embeddings))
	for i, e := range embeddings {
		entries[i] = similarity.Entry{ID: e.Id, Vector: e.EmbeddingValue}
	}

	s.mu.Lock()
	// an invalidation that raced the load wins
	if s.version == version {
		s.entries = entries
		s.loaded = true
	}
	s.mu.Unlock()

	s.logger.Debug("CORPUS", "Corpus snapshot loaded", map[string]interface{}{
		"entries": len(entries),
	})
	return entries, nil
}

func (s *corpusService) Invalidate() {
	s.mu.Lock()
	s.entries = nil
	s.loaded = false
	s.version++
	s.mu.Unlock()
}

func (s *corpusService) HandleEvent(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case events.TypeTextIndexed, events.TypeTextDeleted, events.TypeFolderDeleted:
		s.Invalidate()
		s.logger.Debug("CORPUS", "Corpus snapshot invalidated", map[string]interface{}{
			"event": event.EventType(),
		})
	}
	return nil
}

// corpusChanged drops the local snapshot and tells other instances to do the
// same. A failed publish is logged only.
func corpusChanged(ctx context.Context, corpus ICorpusService, publisher events.Publisher, log logger.ILogger, event events.Event) {
	corpus.Invalidate()
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("CORPUS", "Failed to publish corpus event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
