package unitofwork

import (
	"context"

	"ai-qa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() contract.AccountRepository
	FolderRepository() contract.FolderRepository
	TextRepository() contract.TextRepository
	EmbeddingRepository() contract.EmbeddingRepository
}
