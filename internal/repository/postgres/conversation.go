package postgres

import (
	"context"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type conversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO rejection_messages (id, rejection_id, sender_role, sender_id, body, attachments, is_read, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.RejectionID, msg.SenderRole, msg.SenderID, msg.Body,
		pq.Array(msg.Attachments), msg.IsRead, msg.CreatedAt)
	return mapError(err)
}

func (r *conversationRepository) ListByRejection(ctx context.Context, rejectionID string) ([]domain.Message, error) {
	// Tie-break on id so concurrent inserts with equal timestamps keep a
	// stable order.
	query := `SELECT id, rejection_id, sender_role, sender_id, body, attachments, is_read, created_at
	          FROM rejection_messages WHERE rejection_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, rejectionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RejectionID, &m.SenderRole, &m.SenderID,
			&m.Body, pq.Array(&m.Attachments), &m.IsRead, &m.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		msgs = append(msgs, m)
	}
	return msgs, mapError(rows.Err())
}

func (r *conversationRepository) MarkReadByRole(ctx context.Context, rejectionID string, authorRole domain.SenderRole) error {
	// unread -> read only; already-read rows are left alone.
	query := `UPDATE rejection_messages SET is_read = TRUE
	          WHERE rejection_id = $1 AND sender_role = $2 AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, query, rejectionID, authorRole)
	return mapError(err)
}
