package postgres

import (
	"context"
	"encoding/json"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/google/uuid"
)

// snapshotRepository is append-only: there is no update or delete statement
// in this file by design.
type snapshotRepository struct {
	db DBTX
}

func NewSnapshotRepository(db DBTX) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snap *domain.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}

	addresses, err := marshalCollection(snap.Children.Addresses)
	if err != nil {
		return err
	}
	representatives, err := marshalCollection(snap.Children.Representatives)
	if err != nil {
		return err
	}
	classifications, err := marshalCollection(snap.Children.Classifications)
	if err != nil {
		return err
	}
	products, err := marshalCollection(snap.Children.Products)
	if err != nil {
		return err
	}
	documents, err := marshalCollection(snap.Children.Documents)
	if err != nil {
		return err
	}

	query := `INSERT INTO snapshots (id, kind, application_id, reason, taken_by, taken_at, name, registration_no,
	                                 addresses, representatives, classifications, products, documents)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.db.ExecContext(ctx, query,
		snap.ID, snap.Kind, snap.ApplicationID, snap.Reason, snap.TakenBy, snap.TakenAt,
		snap.Name, snap.RegistrationNo,
		addresses, representatives, classifications, products, documents)
	return mapError(err)
}

const snapshotColumns = `id, kind, application_id, reason, taken_by, taken_at, name, registration_no,
       addresses, representatives, classifications, products, documents`

func (r *snapshotRepository) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE id = $1`
	return scanSnapshot(r.db.QueryRowContext(ctx, query, id))
}

func (r *snapshotRepository) ListByApplication(ctx context.Context, kind domain.ApplicationKind, appID string) ([]domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots
	          WHERE kind = $1 AND application_id = $2 ORDER BY taken_at DESC`
	rows, err := r.db.QueryContext(ctx, query, kind, appID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, mapError(rows.Err())
}

func scanSnapshot(row interface{ Scan(...any) error }) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	var addresses, representatives, classifications, products, documents []byte
	err := row.Scan(&snap.ID, &snap.Kind, &snap.ApplicationID, &snap.Reason,
		&snap.TakenBy, &snap.TakenAt, &snap.Name, &snap.RegistrationNo,
		&addresses, &representatives, &classifications, &products, &documents)
	if err != nil {
		return nil, mapError(err)
	}
	if err := unmarshalCollection(addresses, &snap.Children.Addresses); err != nil {
		return nil, err
	}
	if err := unmarshalCollection(representatives, &snap.Children.Representatives); err != nil {
		return nil, err
	}
	if err := unmarshalCollection(classifications, &snap.Children.Classifications); err != nil {
		return nil, err
	}
	if err := unmarshalCollection(products, &snap.Children.Products); err != nil {
		return nil, err
	}
	if err := unmarshalCollection(documents, &snap.Children.Documents); err != nil {
		return nil, err
	}
	return snap, nil
}

// marshalCollection keeps one jsonb attribute per child collection so the
// frozen copy stays structured and queryable, never a single opaque blob.
func marshalCollection(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalCollection(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
