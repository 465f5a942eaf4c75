package contract

import (
	"context"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/repository/specification"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Update(ctx context.Context, account *entity.Account) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error)
}
