package postgres

import (
	"context"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"
)

// memberRepository is read-only: member records are provisioned by the
// identity system, this service only resolves them for notifications.
type memberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	m := &domain.Member{}
	query := `SELECT id, name, email, role, created_at FROM members WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return m, nil
}
