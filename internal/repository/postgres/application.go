package postgres

import (
	"context"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/google/uuid"
)

type applicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	query := `INSERT INTO applications (id, kind, member_id, status, name, registration_no, rejection_reason, resubmitted_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		app.ID, app.Kind, app.MemberID, app.Status, app.Name, app.RegistrationNo,
		nullIfEmpty(app.RejectionReason), app.ResubmittedAt, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	update := app.Children.AsUpdate()
	return r.ReplaceChildren(ctx, app.Kind, app.ID, update)
}

const applicationColumns = `id, kind, member_id, status, name, registration_no, COALESCE(rejection_reason, ''), resubmitted_at, created_at, updated_at`

func (r *applicationRepository) scanApplication(row interface{ Scan(...any) error }) (*domain.Application, error) {
	app := &domain.Application{}
	err := row.Scan(&app.ID, &app.Kind, &app.MemberID, &app.Status, &app.Name,
		&app.RegistrationNo, &app.RejectionReason, &app.ResubmittedAt,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return app, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, kind domain.ApplicationKind, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE kind = $1 AND id = $2`
	app, err := r.scanApplication(r.db.QueryRowContext(ctx, query, kind, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepository) GetForUpdate(ctx context.Context, kind domain.ApplicationKind, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE kind = $1 AND id = $2 FOR UPDATE`
	return r.scanApplication(r.db.QueryRowContext(ctx, query, kind, id))
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	app.UpdatedAt = time.Now().UTC()
	query := `UPDATE applications
	          SET status = $1, name = $2, registration_no = $3, rejection_reason = $4, resubmitted_at = $5, updated_at = $6
	          WHERE kind = $7 AND id = $8`
	res, err := r.db.ExecContext(ctx, query,
		app.Status, app.Name, app.RegistrationNo, nullIfEmpty(app.RejectionReason),
		app.ResubmittedAt, app.UpdatedAt, app.Kind, app.ID)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceChildren deletes and re-inserts every collection the update supplies.
// Collections left nil are untouched.
func (r *applicationRepository) ReplaceChildren(ctx context.Context, kind domain.ApplicationKind, id string, update *domain.ApplicationUpdate) error {
	if update == nil {
		return nil
	}
	schema, ok := domain.SchemaFor(kind)
	if !ok {
		return domain.ErrValidationFailed
	}
	if err := schema.ValidateUpdate(update); err != nil {
		return err
	}

	if update.Addresses != nil {
		if err := r.clear(ctx, "application_addresses", id); err != nil {
			return err
		}
		for i, a := range *update.Addresses {
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO application_addresses (id, application_id, label, line1, line2, city, postal_code, country, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				a.ID, id, a.Label, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, i)
			if err != nil {
				return mapError(err)
			}
		}
	}
	if update.Representatives != nil {
		if err := r.clear(ctx, "application_representatives", id); err != nil {
			return err
		}
		for i, rep := range *update.Representatives {
			if rep.ID == "" {
				rep.ID = uuid.NewString()
			}
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO application_representatives (id, application_id, name, title, email, phone, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				rep.ID, id, rep.Name, rep.Title, rep.Email, rep.Phone, i)
			if err != nil {
				return mapError(err)
			}
		}
	}
	if update.Classifications != nil {
		if err := r.clear(ctx, "application_classifications", id); err != nil {
			return err
		}
		for i, c := range *update.Classifications {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO application_classifications (id, application_id, code, description, position)
				 VALUES ($1, $2, $3, $4, $5)`,
				c.ID, id, c.Code, c.Description, i)
			if err != nil {
				return mapError(err)
			}
		}
	}
	if update.Products != nil {
		if err := r.clear(ctx, "application_products", id); err != nil {
			return err
		}
		for i, p := range *update.Products {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO application_products (id, application_id, name, category, description, position)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				p.ID, id, p.Name, p.Category, p.Description, i)
			if err != nil {
				return mapError(err)
			}
		}
	}
	if update.Documents != nil {
		if err := r.clear(ctx, "application_documents", id); err != nil {
			return err
		}
		for i, d := range *update.Documents {
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO application_documents (id, application_id, file_key, label, position)
				 VALUES ($1, $2, $3, $4, $5)`,
				d.ID, id, d.FileKey, d.Label, i)
			if err != nil {
				return mapError(err)
			}
		}
	}
	return nil
}

func (r *applicationRepository) clear(ctx context.Context, table, applicationID string) error {
	// Table names come from the fixed set above, never from caller input.
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE application_id = $1`, applicationID)
	return mapError(err)
}

func (r *applicationRepository) loadChildren(ctx context.Context, app *domain.Application) error {
	schema, ok := domain.SchemaFor(app.Kind)
	if !ok {
		return domain.ErrValidationFailed
	}
	for _, c := range schema.Collections {
		var err error
		switch c {
		case domain.CollectionAddresses:
			app.Children.Addresses, err = r.loadAddresses(ctx, app.ID)
		case domain.CollectionRepresentatives:
			app.Children.Representatives, err = r.loadRepresentatives(ctx, app.ID)
		case domain.CollectionClassifications:
			app.Children.Classifications, err = r.loadClassifications(ctx, app.ID)
		case domain.CollectionProducts:
			app.Children.Products, err = r.loadProducts(ctx, app.ID)
		case domain.CollectionDocuments:
			app.Children.Documents, err = r.loadDocuments(ctx, app.ID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *applicationRepository) loadAddresses(ctx context.Context, appID string) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, line1, line2, city, postal_code, country
		 FROM application_addresses WHERE application_id = $1 ORDER BY position`, appID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country); err != nil {
			return nil, mapError(err)
		}
		out = append(out, a)
	}
	return out, mapError(rows.Err())
}

func (r *applicationRepository) loadRepresentatives(ctx context.Context, appID string) ([]domain.Representative, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, title, email, phone
		 FROM application_representatives WHERE application_id = $1 ORDER BY position`, appID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Representative
	for rows.Next() {
		var rep domain.Representative
		if err := rows.Scan(&rep.ID, &rep.Name, &rep.Title, &rep.Email, &rep.Phone); err != nil {
			return nil, mapError(err)
		}
		out = append(out, rep)
	}
	return out, mapError(rows.Err())
}

func (r *applicationRepository) loadClassifications(ctx context.Context, appID string) ([]domain.Classification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, description
		 FROM application_classifications WHERE application_id = $1 ORDER BY position`, appID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Classification
	for rows.Next() {
		var c domain.Classification
		if err := rows.Scan(&c.ID, &c.Code, &c.Description); err != nil {
			return nil, mapError(err)
		}
		out = append(out, c)
	}
	return out, mapError(rows.Err())
}

func (r *applicationRepository) loadProducts(ctx context.Context, appID string) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, description
		 FROM application_products WHERE application_id = $1 ORDER BY position`, appID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description); err != nil {
			return nil, mapError(err)
		}
		out = append(out, p)
	}
	return out, mapError(rows.Err())
}

func (r *applicationRepository) loadDocuments(ctx context.Context, appID string) ([]domain.DocumentRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, file_key, label
		 FROM application_documents WHERE application_id = $1 ORDER BY position`, appID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []domain.DocumentRef
	for rows.Next() {
		var d domain.DocumentRef
		if err := rows.Scan(&d.ID, &d.FileKey, &d.Label); err != nil {
			return nil, mapError(err)
		}
		out = append(out, d)
	}
	return out, mapError(rows.Err())
}

func (r *applicationRepository) ListByMember(ctx context.Context, memberID string, page, pageSize int32) ([]domain.Application, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE member_id = $1`, memberID).Scan(&total)
	if err != nil {
		return nil, 0, mapError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE member_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		memberID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app := domain.Application{}
		if err := rows.Scan(&app.ID, &app.Kind, &app.MemberID, &app.Status, &app.Name,
			&app.RegistrationNo, &app.RejectionReason, &app.ResubmittedAt,
			&app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, 0, mapError(err)
		}
		apps = append(apps, app)
	}
	return apps, total, mapError(rows.Err())
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
