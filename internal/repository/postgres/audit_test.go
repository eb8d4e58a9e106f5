package postgres

import (
	"context"
	"testing"
	"time"

	"memberdesk-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAuditRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewAuditRepository(db)
	ctx := context.Background()

	entry := &domain.AuditEntry{
		ActorID:     "reviewer-1",
		Action:      domain.AuditActionReject,
		TargetID:    "app-1",
		Description: "rejected oc application app-1: missing documents",
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), entry.ActorID, entry.Action, entry.TargetID,
			entry.Description, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(ctx, entry)
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_ListByTarget(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewAuditRepository(db)
	ctx := context.Background()

	t.Run("NewestFirst", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows([]string{"id", "actor_id", "action", "target_id", "description", "created_at"}).
			AddRow("audit-2", "reviewer-1", domain.AuditActionResolve, "rej-1", "resolved rejection rej-1", now).
			AddRow("audit-1", "reviewer-1", domain.AuditActionReject, "rej-1", "rejected application", now.Add(-time.Hour))

		mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE target_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
			WithArgs("rej-1", int32(50)).
			WillReturnRows(rows)

		entries, err := repo.ListByTarget(ctx, "rej-1", 50)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "audit-2", entries[0].ID)
		assert.Equal(t, domain.AuditActionReject, entries[1].Action)
	})

	t.Run("LimitClamped", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE target_id = \$1`).
			WithArgs("rej-1", int32(100)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "action", "target_id", "description", "created_at"}))

		entries, err := repo.ListByTarget(ctx, "rej-1", 0)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
