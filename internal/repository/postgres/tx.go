package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/database"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
)

// TxManager implements repository.TxManager on a pgx pool. Review writes
// and their summary updates run through WithinTx so a store failure rolls
// back both and never leaves a partially-updated summary.
type TxManager struct {
	db database.TxBeginner
}

// NewTxManager creates a transaction manager over the given pool.
func NewTxManager(db database.TxBeginner) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a read-committed transaction, invokes fn with
// repositories bound to it, and commits if fn returns nil. Any error rolls
// the whole transaction back. Serialization failures and deadlocks
// surface as conflicts so handlers can tell retryable races from hard
// failures.
func (m *TxManager) WithinTx(ctx context.Context, fn func(repository.ReviewRepository, repository.CompanyRepository) error) error {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewReviewRepository(tx), NewCompanyRepository(tx)); err != nil {
		if isRetryableTxFailure(err) {
			return fmt.Errorf("transaction aborted: %w", apperrors.ErrConflict)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxFailure(err) {
			return fmt.Errorf("commit transaction: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

var _ repository.TxManager = (*TxManager)(nil)

// isRetryableTxFailure checks for a PostgreSQL serialization failure
// (SQLSTATE 40001) or deadlock (SQLSTATE 40P01); both mean the transaction
// lost a race and the caller may retry.
func isRetryableTxFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") || strings.Contains(msg, "40P01")
}
