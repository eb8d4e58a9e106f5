package postgres

import (
	"context"
	"fmt"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/google/uuid"
)

type rejectionRepository struct {
	db DBTX
}

func NewRejectionRepository(db DBTX) repository.RejectionRepository {
	return &rejectionRepository{db: db}
}

func (r *rejectionRepository) Create(ctx context.Context, rej *domain.Rejection) error {
	if rej.ID == "" {
		rej.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rej.CreatedAt = now
	rej.UpdatedAt = now

	query := `INSERT INTO rejections (id, kind, application_id, member_id, snapshot_id, reviewer_id, reason, status,
	                                  resubmission_count, unread_admin_count, unread_member_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		rej.ID, rej.Kind, rej.ApplicationID, rej.MemberID, rej.SnapshotID,
		rej.ReviewerID, rej.Reason, rej.Status,
		rej.ResubmissionCount, rej.UnreadAdminCount, rej.UnreadMemberCount,
		rej.CreatedAt, rej.UpdatedAt)
	return mapError(err)
}

const rejectionColumns = `id, kind, application_id, member_id, snapshot_id, reviewer_id, reason, status,
       resubmission_count, unread_admin_count, unread_member_count, last_message_at,
       resolved_by, resolved_at, created_at, updated_at`

func scanRejection(row interface{ Scan(...any) error }) (*domain.Rejection, error) {
	rej := &domain.Rejection{}
	err := row.Scan(&rej.ID, &rej.Kind, &rej.ApplicationID, &rej.MemberID,
		&rej.SnapshotID, &rej.ReviewerID, &rej.Reason, &rej.Status,
		&rej.ResubmissionCount, &rej.UnreadAdminCount, &rej.UnreadMemberCount,
		&rej.LastMessageAt, &rej.ResolvedBy, &rej.ResolvedAt,
		&rej.CreatedAt, &rej.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return rej, nil
}

func (r *rejectionRepository) GetByID(ctx context.Context, id string) (*domain.Rejection, error) {
	query := `SELECT ` + rejectionColumns + ` FROM rejections WHERE id = $1`
	return scanRejection(r.db.QueryRowContext(ctx, query, id))
}

// GetForUpdate takes the ledger row lock without waiting. If another
// transaction holds it (a concurrent resubmission), pq raises
// lock_not_available which maps to domain.ErrConflict.
func (r *rejectionRepository) GetForUpdate(ctx context.Context, id string) (*domain.Rejection, error) {
	query := `SELECT ` + rejectionColumns + ` FROM rejections WHERE id = $1 FOR UPDATE NOWAIT`
	return scanRejection(r.db.QueryRowContext(ctx, query, id))
}

func (r *rejectionRepository) Update(ctx context.Context, rej *domain.Rejection) error {
	rej.UpdatedAt = time.Now().UTC()
	query := `UPDATE rejections
	          SET status = $1, reason = $2, resolved_by = $3, resolved_at = $4, updated_at = $5
	          WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		rej.Status, rej.Reason, rej.ResolvedBy, rej.ResolvedAt, rej.UpdatedAt, rej.ID)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rejectionRepository) AdvanceSnapshot(ctx context.Context, id, snapshotID string) (int32, error) {
	query := `UPDATE rejections
	          SET snapshot_id = $1, resubmission_count = resubmission_count + 1, updated_at = $2
	          WHERE id = $3
	          RETURNING resubmission_count`
	var count int32
	err := r.db.QueryRowContext(ctx, query, snapshotID, time.Now().UTC(), id).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func unreadColumn(side domain.SenderRole) string {
	if side == domain.RoleAdmin {
		return "unread_admin_count"
	}
	return "unread_member_count"
}

func (r *rejectionRepository) IncrementUnread(ctx context.Context, id string, side domain.SenderRole, at time.Time) error {
	col := unreadColumn(side)
	query := fmt.Sprintf(`UPDATE rejections
	          SET %s = %s + 1, last_message_at = $1, updated_at = $1
	          WHERE id = $2`, col, col)
	res, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rejectionRepository) ResetUnread(ctx context.Context, id string, side domain.SenderRole) error {
	query := fmt.Sprintf(`UPDATE rejections SET %s = 0 WHERE id = $1`, unreadColumn(side))
	_, err := r.db.ExecContext(ctx, query, id)
	return mapError(err)
}

func (r *rejectionRepository) FindOpenByApplication(ctx context.Context, kind domain.ApplicationKind, appID string) (*domain.Rejection, error) {
	query := `SELECT ` + rejectionColumns + ` FROM rejections
	          WHERE kind = $1 AND application_id = $2 AND status IN ('pending_review', 'pending_fix')
	          ORDER BY created_at DESC LIMIT 1`
	return scanRejection(r.db.QueryRowContext(ctx, query, kind, appID))
}

// actionableOrder surfaces items needing attention first: open episodes before
// terminal ones, unread admin-facing messages before read ones, then the most
// recent conversation, then the most recent rejection.
const actionableOrder = `
	ORDER BY CASE WHEN r.status IN ('pending_review', 'pending_fix') THEN 0 ELSE 1 END,
	         CASE WHEN r.unread_admin_count > 0 THEN 0 ELSE 1 END,
	         r.last_message_at DESC NULLS LAST,
	         r.created_at DESC`

func (r *rejectionRepository) ListForMember(ctx context.Context, memberID string, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	where := `WHERE r.member_id = $1`
	args := []any{memberID}
	where, args = appendFilters(where, args, f)
	return r.list(ctx, where, args, f)
}

func (r *rejectionRepository) ListForReviewer(ctx context.Context, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	where := `WHERE 1 = 1`
	var args []any
	where, args = appendFilters(where, args, f)
	return r.list(ctx, where, args, f)
}

func appendFilters(where string, args []any, f domain.RejectionFilter) (string, []any) {
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if f.Kind != "" {
		args = append(args, f.Kind)
		where += fmt.Sprintf(" AND r.kind = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (a.name ILIKE $%d OR a.registration_no ILIKE $%d)", n, n)
	}
	return where, args
}

func (r *rejectionRepository) list(ctx context.Context, where string, args []any, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	f = f.Normalize()

	countQuery := `SELECT COUNT(*) FROM rejections r JOIN applications a ON a.id = r.application_id ` + where
	var total int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := `SELECT r.id, r.kind, r.application_id, r.member_id, r.snapshot_id, r.reviewer_id, r.reason, r.status,
	                 r.resubmission_count, r.unread_admin_count, r.unread_member_count, r.last_message_at,
	                 r.resolved_by, r.resolved_at, r.created_at, r.updated_at,
	                 a.name, a.registration_no
	          FROM rejections r
	          JOIN applications a ON a.id = r.application_id ` +
		where + actionableOrder +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var out []domain.RejectionSummary
	for rows.Next() {
		var s domain.RejectionSummary
		err := rows.Scan(&s.ID, &s.Kind, &s.ApplicationID, &s.MemberID,
			&s.SnapshotID, &s.ReviewerID, &s.Reason, &s.Status,
			&s.ResubmissionCount, &s.UnreadAdminCount, &s.UnreadMemberCount,
			&s.LastMessageAt, &s.ResolvedBy, &s.ResolvedAt,
			&s.CreatedAt, &s.UpdatedAt,
			&s.ApplicationName, &s.RegistrationNo)
		if err != nil {
			return nil, 0, mapError(err)
		}
		out = append(out, s)
	}
	return out, total, mapError(rows.Err())
}
