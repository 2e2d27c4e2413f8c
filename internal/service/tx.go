package service

import (
	"context"
	"database/sql"
)

// TxRunner runs fn inside one database transaction.  It is satisfied by
// *repository.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}
