package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository works
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the connection pool and exposes the repo set plus the
// transaction runner used by the orchestration services.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	repository.Repositories
}

func NewStore(db *sql.DB, timeout time.Duration) *Store {
	return &Store{
		db:           db,
		timeout:      timeout,
		Repositories: newRepositories(db),
	}
}

func newRepositories(q DBTX) repository.Repositories {
	return repository.Repositories{
		Applications:  NewApplicationRepository(q),
		Snapshots:     NewSnapshotRepository(q),
		Rejections:    NewRejectionRepository(q),
		Conversations: NewConversationRepository(q),
		Audit:         NewAuditRepository(q),
		Members:       NewMemberRepository(q),
	}
}

// ExecTx runs fn with a repo set bound to one transaction. Any error from fn
// rolls everything back; exceeding the configured timeout rolls back and
// surfaces a retryable error.
func (s *Store) ExecTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return mapError(err)
	}

	repos := newRepositories(tx)
	if err := fn(&repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError translates driver failures into the domain error taxonomy so SQL
// detail never crosses the service boundary.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			// serialization_failure, deadlock_detected, lock_not_available
			return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Code.Name())
		case "08000", "08003", "08006", "53300", "57P01", "57014":
			// connection and shutdown failures, query_canceled
			return fmt.Errorf("%w: %s", domain.ErrTransientStore, pqErr.Code.Name())
		}
	}
	return err
}
