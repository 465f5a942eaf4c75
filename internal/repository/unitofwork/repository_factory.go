package unitofwork

import "context"

// RepositoryFactory opens a unit of work bound to the request context.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
