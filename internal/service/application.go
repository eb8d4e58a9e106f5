package service

import (
	"context"
	"fmt"
	"strings"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"
)

type applicationService struct {
	tx        repository.TxRunner
	apps      repository.ApplicationRepository
	snapshots repository.SnapshotRepository
}

func NewApplicationService(
	tx repository.TxRunner,
	apps repository.ApplicationRepository,
	snapshots repository.SnapshotRepository,
) ApplicationService {
	return &applicationService{
		tx:        tx,
		apps:      apps,
		snapshots: snapshots,
	}
}

func (s *applicationService) Submit(ctx context.Context, memberID string, kind domain.ApplicationKind, name, registrationNo string, children domain.ChildSet) (*domain.Application, error) {
	schema, ok := domain.SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown application kind %q", domain.ErrValidationFailed, kind)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidationFailed)
	}
	if err := schema.ValidateUpdate(children.AsUpdate()); err != nil {
		return nil, fmt.Errorf("%w: kind %s does not carry the supplied collection", domain.ErrValidationFailed, kind)
	}

	app := &domain.Application{
		Kind:           kind,
		MemberID:       memberID,
		Status:         domain.ApplicationStatusPending,
		Name:           strings.TrimSpace(name),
		RegistrationNo: strings.TrimSpace(registrationNo),
		Children:       children,
	}
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		return r.Applications.Create(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// GetApplication returns the live record. Only the owning member or a
// reviewer may read it.
func (s *applicationService) GetApplication(ctx context.Context, kind domain.ApplicationKind, id, requesterID string, role domain.SenderRole) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin && app.MemberID != requesterID {
		return nil, domain.ErrForbidden
	}
	return app, nil
}

func (s *applicationService) ListMyApplications(ctx context.Context, memberID string, page, pageSize int32) ([]domain.Application, int32, error) {
	return s.apps.ListByMember(ctx, memberID, page, pageSize)
}

func (s *applicationService) GetSnapshot(ctx context.Context, snapshotID, requesterID string, role domain.SenderRole) (*domain.Snapshot, error) {
	snap, err := s.snapshots.GetByID(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin {
		app, err := s.apps.GetByID(ctx, snap.Kind, snap.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.MemberID != requesterID {
			return nil, domain.ErrForbidden
		}
	}
	return snap, nil
}

func (s *applicationService) ListSnapshots(ctx context.Context, kind domain.ApplicationKind, appID, requesterID string, role domain.SenderRole) ([]domain.Snapshot, error) {
	app, err := s.apps.GetByID(ctx, kind, appID)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin && app.MemberID != requesterID {
		return nil, domain.ErrForbidden
	}
	return s.snapshots.ListByApplication(ctx, kind, appID)
}
