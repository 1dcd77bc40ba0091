package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager wraps hierarchy mutations so counter updates,
// subtree rewrites and publication changes commit or roll back as one
// unit.
type TransactionManager interface {
	// ExecTx executes fn inside a transaction. The ctx passed to fn
	// carries the transaction; repositories pick it up automatically.
	ExecTx(ctx context.Context, fn TxFn) error
}
