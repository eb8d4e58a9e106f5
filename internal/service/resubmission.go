package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memberdesk-backend/internal/cache"
	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"
)

// resubmissionService is the only writer allowed to combine an application
// data update, a new snapshot, the status reset and the ledger advance in one
// atomic unit.
type resubmissionService struct {
	tx          repository.TxRunner
	detailCache cache.Cache[*RejectionDetail]
	notifier    Notifier
}

func NewResubmissionService(
	tx repository.TxRunner,
	detailCache cache.Cache[*RejectionDetail],
	notifier Notifier,
) ResubmissionService {
	return &resubmissionService{
		tx:          tx,
		detailCache: detailCache,
		notifier:    notifier,
	}
}

func (s *resubmissionService) Resubmit(ctx context.Context, rejectionID, memberID string, update *domain.ApplicationUpdate, comment string) (*ResubmissionResult, error) {
	var (
		result ResubmissionResult
		rej    *domain.Rejection
	)
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		// NOWAIT lock: a concurrent resubmission on the same ledger entry
		// surfaces as ErrConflict instead of waiting.
		var err error
		rej, err = r.Rejections.GetForUpdate(ctx, rejectionID)
		if err != nil {
			return err
		}
		if rej.MemberID != memberID {
			return domain.ErrForbidden
		}
		if rej.Status.Terminal() {
			return fmt.Errorf("%w: rejection already %s", domain.ErrInvalidStateTransition, rej.Status)
		}

		app, err := r.Applications.GetForUpdate(ctx, rej.Kind, rej.ApplicationID)
		if err != nil {
			return err
		}
		// A second resubmission that slipped past the row lock sees the
		// application already reset to pending.
		if app.Status != domain.ApplicationStatusRejected {
			return fmt.Errorf("%w: application already resubmitted", domain.ErrConflict)
		}

		if !update.IsEmpty() {
			if update.Name != nil {
				app.Name = *update.Name
			}
			if update.RegistrationNo != nil {
				app.RegistrationNo = *update.RegistrationNo
			}
			if err := r.Applications.ReplaceChildren(ctx, rej.Kind, rej.ApplicationID, update); err != nil {
				return err
			}
		}

		// Freeze the corrected data before touching the main record status.
		snap, err := captureSnapshot(ctx, r, rej.Kind, rej.ApplicationID, domain.SnapshotReasonResubmission, memberID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		app.Status = domain.ApplicationStatusPending
		app.RejectionReason = ""
		app.ResubmittedAt = &now
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		count, err := r.Rejections.AdvanceSnapshot(ctx, rej.ID, snap.ID)
		if err != nil {
			return err
		}
		result = ResubmissionResult{SnapshotID: snap.ID, ResubmissionCount: count}

		if strings.TrimSpace(comment) != "" {
			if _, err := postThreadMessage(ctx, r, rej, domain.RoleMember, memberID, comment, nil); err != nil {
				return err
			}
		}

		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:  memberID,
			Action:   domain.AuditActionResubmit,
			TargetID: rej.ApplicationID,
			Description: fmt.Sprintf("resubmitted %s application %s (snapshot %s, resubmission %d)",
				rej.Kind, rej.ApplicationID, snap.ID, count),
		})
	})
	if err != nil {
		return nil, err
	}

	s.detailCache.Invalidate(detailCacheKey(rejectionID))
	s.notifier.Dispatch(ctx, memberID, EventResubmitted, map[string]string{
		"rejection_id":       rejectionID,
		"application_id":     rej.ApplicationID,
		"snapshot_id":        result.SnapshotID,
		"resubmission_count": fmt.Sprintf("%d", result.ResubmissionCount),
	})
	return &result, nil
}
