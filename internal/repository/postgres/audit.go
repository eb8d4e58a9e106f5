package postgres

import (
	"context"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/google/uuid"
)

// auditRepository is append-only.
type auditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO audit_logs (id, actor_id, action, target_id, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.TargetID, entry.Description, entry.CreatedAt)
	return mapError(err)
}

func (r *auditRepository) ListByTarget(ctx context.Context, targetID string, limit int32) ([]domain.AuditEntry, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	query := `SELECT id, actor_id, action, target_id, description, created_at
	          FROM audit_logs WHERE target_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, targetID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetID, &e.Description, &e.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		entries = append(entries, e)
	}
	return entries, mapError(rows.Err())
}
