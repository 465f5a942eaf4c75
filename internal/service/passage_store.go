package service

import (
	"context"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/repository/specification"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/pkg/packer"

	"github.com/google/uuid"
)

// passageStore resolves packer lookups against the text repository.
type passageStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPassageStore(uowFactory unitofwork.RepositoryFactory) packer.Store {
	return &passageStore{uowFactory: uowFactory}
}

func (s *passageStore) FindByEmbeddingID(ctx context.Context, embeddingID uuid.UUID) (*packer.Passage, error) {
	text, err := s.uowFactory.NewUnitOfWork(ctx).TextRepository().FindOne(ctx, specification.ByEmbeddingID{EmbeddingID: embeddingID})
	if err != nil {
		return nil, err
	}
	return toPassage(text), nil
}

func (s *passageStore) FindByID(ctx context.Context, id uuid.UUID) (*packer.Passage, error) {
	text, err := s.uowFactory.NewUnitOfWork(ctx).TextRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	return toPassage(text), nil
}

func toPassage(text *entity.Text) *packer.Passage {
	if text == nil {
		return nil
	}
	return &packer.Passage{ID: text.Id, Name: text.Name, Content: text.Content}
}
