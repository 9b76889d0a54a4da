package shared

import "context"

// TransactionManager runs a unit of work inside one storage transaction.
// Repositories called with the context passed to fn join that transaction,
// and an error from fn rolls back everything it wrote.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
