package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memberdesk-backend/internal/cache"
	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"
)

type reviewService struct {
	tx          repository.TxRunner
	rejections  repository.RejectionRepository
	apps        repository.ApplicationRepository
	audit       repository.AuditRepository
	detailCache cache.Cache[*RejectionDetail]
	notifier    Notifier
}

func NewReviewService(
	tx repository.TxRunner,
	rejections repository.RejectionRepository,
	apps repository.ApplicationRepository,
	audit repository.AuditRepository,
	detailCache cache.Cache[*RejectionDetail],
	notifier Notifier,
) ReviewService {
	return &reviewService{
		tx:          tx,
		rejections:  rejections,
		apps:        apps,
		audit:       audit,
		detailCache: detailCache,
		notifier:    notifier,
	}
}

func detailCacheKey(rejectionID string) string {
	return "rejection-detail:" + rejectionID
}

// closeOpenEpisode moves the application's open episode, if any, to the given
// terminal status. Returns the closed episode's id, or "" when none was open.
func closeOpenEpisode(ctx context.Context, r *repository.Repositories, kind domain.ApplicationKind, appID, actorID string, status domain.RejectionStatus) (string, error) {
	rej, err := r.Rejections.FindOpenByApplication(ctx, kind, appID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	rej.Status = status
	rej.ResolvedBy = &actorID
	rej.ResolvedAt = &now
	if err := r.Rejections.Update(ctx, rej); err != nil {
		return "", err
	}
	return rej.ID, nil
}

// RejectApplication opens a rejection episode: one transaction captures the
// snapshot, inserts the ledger row and moves the application to rejected.
func (s *reviewService) RejectApplication(ctx context.Context, kind domain.ApplicationKind, appID, reviewerID, reason string) (*domain.Rejection, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidationFailed)
	}
	if !domain.ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown application kind %q", domain.ErrValidationFailed, kind)
	}

	var rej *domain.Rejection
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		app, err := r.Applications.GetForUpdate(ctx, kind, appID)
		if err != nil {
			return err
		}
		if app.Status != domain.ApplicationStatusPending {
			return fmt.Errorf("%w: application is %s, not pending", domain.ErrInvalidStateTransition, app.Status)
		}
		if _, err := r.Rejections.FindOpenByApplication(ctx, kind, appID); err == nil {
			return fmt.Errorf("%w: an open rejection already exists for this application", domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		snap, err := captureSnapshot(ctx, r, kind, appID, domain.SnapshotReasonRejection, reviewerID)
		if err != nil {
			return err
		}

		rej = &domain.Rejection{
			Kind:          kind,
			ApplicationID: appID,
			MemberID:      app.MemberID,
			SnapshotID:    snap.ID,
			ReviewerID:    reviewerID,
			Reason:        reason,
			Status:        domain.RejectionStatusPendingFix,
		}
		if err := r.Rejections.Create(ctx, rej); err != nil {
			return err
		}

		app.Status = domain.ApplicationStatusRejected
		app.RejectionReason = reason
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:     reviewerID,
			Action:      domain.AuditActionReject,
			TargetID:    appID,
			Description: fmt.Sprintf("rejected %s application %s: %s", kind, appID, reason),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, rej.MemberID, EventRejected, map[string]string{
		"application_id": appID,
		"kind":           string(kind),
		"rejection_id":   rej.ID,
		"reason":         reason,
	})
	return rej, nil
}

// ApproveApplication approves through the direct application endpoint. An
// open episode on the application is resolved in the same transaction so no
// ledger entry outlives its application's lifecycle.
func (s *reviewService) ApproveApplication(ctx context.Context, kind domain.ApplicationKind, appID, reviewerID string) (*domain.Application, error) {
	var (
		app       *domain.Application
		closedRej string
	)
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		var err error
		app, err = r.Applications.GetForUpdate(ctx, kind, appID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(app.Status, domain.ApplicationStatusApproved) {
			return fmt.Errorf("%w: cannot approve from %s", domain.ErrInvalidStateTransition, app.Status)
		}

		closedRej, err = closeOpenEpisode(ctx, r, kind, appID, reviewerID, domain.RejectionStatusResolved)
		if err != nil {
			return err
		}

		app.Status = domain.ApplicationStatusApproved
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:     reviewerID,
			Action:      domain.AuditActionApprove,
			TargetID:    appID,
			Description: fmt.Sprintf("approved %s application %s", kind, appID),
		})
	})
	if err != nil {
		return nil, err
	}

	if closedRej != "" {
		s.detailCache.Invalidate(detailCacheKey(closedRej))
	}
	s.notifier.Dispatch(ctx, app.MemberID, EventApproved, map[string]string{
		"application_id": appID,
		"kind":           string(kind),
	})
	return app, nil
}

// CancelApplication cancels through the direct application endpoint. An open
// episode on the application is cancelled in the same transaction.
func (s *reviewService) CancelApplication(ctx context.Context, kind domain.ApplicationKind, appID, actorID string, role domain.SenderRole) error {
	var (
		memberID  string
		closedRej string
	)
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		app, err := r.Applications.GetForUpdate(ctx, kind, appID)
		if err != nil {
			return err
		}
		if role == domain.RoleMember && app.MemberID != actorID {
			return domain.ErrForbidden
		}
		if !domain.CanTransition(app.Status, domain.ApplicationStatusCancelled) {
			return fmt.Errorf("%w: cannot cancel from %s", domain.ErrInvalidStateTransition, app.Status)
		}

		closedRej, err = closeOpenEpisode(ctx, r, kind, appID, actorID, domain.RejectionStatusCancelled)
		if err != nil {
			return err
		}

		memberID = app.MemberID
		app.Status = domain.ApplicationStatusCancelled
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:     actorID,
			Action:      domain.AuditActionCancel,
			TargetID:    appID,
			Description: fmt.Sprintf("cancelled %s application %s", kind, appID),
		})
	})
	if err != nil {
		return err
	}

	if closedRej != "" {
		s.detailCache.Invalidate(detailCacheKey(closedRej))
	}
	s.notifier.Dispatch(ctx, memberID, EventCancelled, map[string]string{
		"application_id": appID,
		"kind":           string(kind),
	})
	return nil
}

// ResolveRejection closes the episode and approves the application. The
// application must have been resubmitted first (status pending); resolving a
// still-rejected application would leave it stranded.
func (s *reviewService) ResolveRejection(ctx context.Context, rejectionID, reviewerID string) (*domain.Rejection, error) {
	var rej *domain.Rejection
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		var err error
		rej, err = r.Rejections.GetForUpdate(ctx, rejectionID)
		if err != nil {
			return err
		}
		if rej.Status.Terminal() {
			return fmt.Errorf("%w: rejection already %s", domain.ErrInvalidStateTransition, rej.Status)
		}

		app, err := r.Applications.GetForUpdate(ctx, rej.Kind, rej.ApplicationID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(app.Status, domain.ApplicationStatusApproved) {
			return fmt.Errorf("%w: application is %s, resubmission required before resolve", domain.ErrInvalidStateTransition, app.Status)
		}

		now := time.Now().UTC()
		rej.Status = domain.RejectionStatusResolved
		rej.ResolvedBy = &reviewerID
		rej.ResolvedAt = &now
		if err := r.Rejections.Update(ctx, rej); err != nil {
			return err
		}

		app.Status = domain.ApplicationStatusApproved
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:     reviewerID,
			Action:      domain.AuditActionResolve,
			TargetID:    rejectionID,
			Description: fmt.Sprintf("resolved rejection %s for application %s", rejectionID, rej.ApplicationID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.detailCache.Invalidate(detailCacheKey(rejectionID))
	s.notifier.Dispatch(ctx, rej.MemberID, EventResolved, map[string]string{
		"rejection_id":   rejectionID,
		"application_id": rej.ApplicationID,
	})
	return rej, nil
}

func (s *reviewService) CancelRejection(ctx context.Context, rejectionID, reviewerID string) (*domain.Rejection, error) {
	var rej *domain.Rejection
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		var err error
		rej, err = r.Rejections.GetForUpdate(ctx, rejectionID)
		if err != nil {
			return err
		}
		if rej.Status.Terminal() {
			return fmt.Errorf("%w: rejection already %s", domain.ErrInvalidStateTransition, rej.Status)
		}

		app, err := r.Applications.GetForUpdate(ctx, rej.Kind, rej.ApplicationID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(app.Status, domain.ApplicationStatusCancelled) {
			return fmt.Errorf("%w: cannot cancel from %s", domain.ErrInvalidStateTransition, app.Status)
		}

		now := time.Now().UTC()
		rej.Status = domain.RejectionStatusCancelled
		rej.ResolvedBy = &reviewerID
		rej.ResolvedAt = &now
		if err := r.Rejections.Update(ctx, rej); err != nil {
			return err
		}

		app.Status = domain.ApplicationStatusCancelled
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:     reviewerID,
			Action:      domain.AuditActionDiscard,
			TargetID:    rejectionID,
			Description: fmt.Sprintf("cancelled rejection %s for application %s", rejectionID, rej.ApplicationID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.detailCache.Invalidate(detailCacheKey(rejectionID))
	s.notifier.Dispatch(ctx, rej.MemberID, EventCancelled, map[string]string{
		"rejection_id":   rejectionID,
		"application_id": rej.ApplicationID,
	})
	return rej, nil
}

// ListAuditTrail returns the most recent audit entries for a target, newest
// first. Reviewer-only; enforced at the transport layer.
func (s *reviewService) ListAuditTrail(ctx context.Context, targetID string, limit int32) ([]domain.AuditEntry, error) {
	return s.audit.ListByTarget(ctx, targetID, limit)
}

func (s *reviewService) ListForMember(ctx context.Context, memberID string, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	return s.rejections.ListForMember(ctx, memberID, f)
}

func (s *reviewService) ListForReviewer(ctx context.Context, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	return s.rejections.ListForReviewer(ctx, f)
}

// GetRejectionDetail returns ledger fields plus the live application data.
// Authorization runs on every call, including cache hits.
func (s *reviewService) GetRejectionDetail(ctx context.Context, rejectionID, requesterID string, role domain.SenderRole) (*RejectionDetail, error) {
	authorize := func(d *RejectionDetail) error {
		if role != domain.RoleAdmin && d.Rejection.MemberID != requesterID {
			return domain.ErrForbidden
		}
		return nil
	}

	if cached, ok := s.detailCache.Get(detailCacheKey(rejectionID)); ok {
		if err := authorize(cached); err != nil {
			return nil, err
		}
		return cached, nil
	}

	rej, err := s.rejections.GetByID(ctx, rejectionID)
	if err != nil {
		return nil, err
	}
	app, err := s.apps.GetByID(ctx, rej.Kind, rej.ApplicationID)
	if err != nil {
		return nil, err
	}

	detail := &RejectionDetail{Rejection: *rej, Application: *app}
	if err := authorize(detail); err != nil {
		return nil, err
	}
	s.detailCache.Set(detailCacheKey(rejectionID), detail)
	return detail, nil
}
