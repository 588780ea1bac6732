package shared

import "context"

// TransactionManager runs a function inside one storage transaction.
// Nested calls join the ambient transaction instead of opening a new one,
// so a service can compose another service's operations atomically.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
