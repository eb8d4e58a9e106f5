package service

import (
	"context"
	"testing"

	"memberdesk-backend/internal/cache"
	"memberdesk-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newResubmissionService(e *testEnv) ResubmissionService {
	return NewResubmissionService(e.tx, cache.Noop[*RejectionDetail]{}, NoopNotifier{})
}

func TestResubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesUpdateAndAdvancesLedger", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		rej := &domain.Rejection{
			ID:            "rej-1",
			Kind:          domain.KindOrdinaryCompany,
			ApplicationID: "app-1",
			MemberID:      "member-1",
			Status:        domain.RejectionStatusPendingFix,
		}
		app := &domain.Application{
			ID:              "app-1",
			Kind:            domain.KindOrdinaryCompany,
			MemberID:        "member-1",
			Status:          domain.ApplicationStatusRejected,
			Name:            "Acme Corp",
			RejectionReason: "missing address",
		}

		newName := "Acme Corporation"
		addrs := []domain.Address{{Label: "HQ", Line1: "1 Main St", City: "Metropolis", Country: "US"}}
		update := &domain.ApplicationUpdate{Name: &newName, Addresses: &addrs}

		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(rej, nil)
		e.apps.On("GetForUpdate", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)
		e.apps.On("ReplaceChildren", ctx, domain.KindOrdinaryCompany, "app-1", update).Return(nil)
		e.apps.On("Update", ctx, mock.MatchedBy(func(a *domain.Application) bool {
			return a.Status == domain.ApplicationStatusPending &&
				a.Name == "Acme Corporation" &&
				a.RejectionReason == "" &&
				a.ResubmittedAt != nil
		})).Return(nil)
		e.apps.On("GetByID", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)
		e.snapshots.On("Create", ctx, mock.MatchedBy(func(s *domain.Snapshot) bool {
			return s.Reason == domain.SnapshotReasonResubmission && s.TakenBy == "member-1"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Snapshot).ID = "snap-2"
		}).Return(nil)
		e.rejections.On("AdvanceSnapshot", ctx, "rej-1", "snap-2").Return(int32(1), nil)
		// The optional comment travels through the conversation thread.
		e.conversations.On("Create", ctx, mock.MatchedBy(func(m *domain.Message) bool {
			return m.Body == "fixed the address" && m.SenderRole == domain.RoleMember
		})).Return(nil)
		e.rejections.On("IncrementUnread", ctx, "rej-1", domain.RoleAdmin, mock.AnythingOfType("time.Time")).Return(nil)
		e.rejections.On("Update", ctx, mock.MatchedBy(func(r *domain.Rejection) bool {
			return r.Status == domain.RejectionStatusPendingReview
		})).Return(nil)
		e.audit.On("Append", ctx, mock.MatchedBy(func(entry *domain.AuditEntry) bool {
			return entry.Action == domain.AuditActionResubmit && entry.TargetID == "app-1"
		})).Return(nil)

		result, err := svc.Resubmit(ctx, "rej-1", "member-1", update, "fixed the address")
		assert.NoError(t, err)
		assert.Equal(t, "snap-2", result.SnapshotID)
		assert.Equal(t, int32(1), result.ResubmissionCount)
		e.rejections.AssertExpectations(t)
		e.apps.AssertExpectations(t)
		e.snapshots.AssertExpectations(t)
		e.conversations.AssertExpectations(t)
	})

	t.Run("NoUpdateNoComment", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		rej := &domain.Rejection{
			ID:            "rej-1",
			Kind:          domain.KindOrdinaryCompany,
			ApplicationID: "app-1",
			MemberID:      "member-1",
			Status:        domain.RejectionStatusPendingFix,
		}
		app := &domain.Application{
			ID:       "app-1",
			Kind:     domain.KindOrdinaryCompany,
			MemberID: "member-1",
			Status:   domain.ApplicationStatusRejected,
		}

		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(rej, nil)
		e.apps.On("GetForUpdate", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)
		e.apps.On("Update", ctx, mock.Anything).Return(nil)
		e.apps.On("GetByID", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)
		e.snapshots.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Snapshot).ID = "snap-2"
		}).Return(nil)
		e.rejections.On("AdvanceSnapshot", ctx, "rej-1", "snap-2").Return(int32(2), nil)
		e.audit.On("Append", ctx, mock.Anything).Return(nil)

		result, err := svc.Resubmit(ctx, "rej-1", "member-1", &domain.ApplicationUpdate{}, "")
		assert.NoError(t, err)
		assert.Equal(t, int32(2), result.ResubmissionCount)
		e.apps.AssertNotCalled(t, "ReplaceChildren", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		e.conversations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("SnapshotCapturedBeforeStatusReset", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		rej := &domain.Rejection{
			ID:            "rej-1",
			Kind:          domain.KindOrdinaryCompany,
			ApplicationID: "app-1",
			MemberID:      "member-1",
			Status:        domain.RejectionStatusPendingFix,
		}
		app := &domain.Application{
			ID:       "app-1",
			Kind:     domain.KindOrdinaryCompany,
			MemberID: "member-1",
			Status:   domain.ApplicationStatusRejected,
		}

		var calls []string
		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(rej, nil)
		e.apps.On("GetForUpdate", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)
		e.apps.On("GetByID", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)
		e.snapshots.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			calls = append(calls, "snapshot")
			args.Get(1).(*domain.Snapshot).ID = "snap-2"
		}).Return(nil)
		e.apps.On("Update", ctx, mock.Anything).Run(func(mock.Arguments) {
			calls = append(calls, "status-reset")
		}).Return(nil)
		e.rejections.On("AdvanceSnapshot", ctx, "rej-1", "snap-2").Return(int32(1), nil)
		e.audit.On("Append", ctx, mock.Anything).Return(nil)

		_, err := svc.Resubmit(ctx, "rej-1", "member-1", &domain.ApplicationUpdate{}, "")
		assert.NoError(t, err)
		assert.Equal(t, []string{"snapshot", "status-reset"}, calls)
	})

	t.Run("NotOwner", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1", Status: domain.RejectionStatusPendingFix}
		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(rej, nil)

		_, err := svc.Resubmit(ctx, "rej-1", "member-2", &domain.ApplicationUpdate{}, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		e.apps.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TerminalEpisode", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1", Status: domain.RejectionStatusCancelled}
		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(rej, nil)

		_, err := svc.Resubmit(ctx, "rej-1", "member-1", &domain.ApplicationUpdate{}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("ConcurrentResubmitLosesLockRace", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		// The row lock is taken NOWAIT; the loser surfaces a conflict with no
		// partial effects.
		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(nil, domain.ErrConflict)

		_, err := svc.Resubmit(ctx, "rej-1", "member-1", &domain.ApplicationUpdate{}, "")
		assert.ErrorIs(t, err, domain.ErrConflict)
		e.apps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		e.snapshots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyResubmitted", func(t *testing.T) {
		e := newTestEnv()
		svc := newResubmissionService(e)

		rej := &domain.Rejection{
			ID:            "rej-1",
			Kind:          domain.KindOrdinaryCompany,
			ApplicationID: "app-1",
			MemberID:      "member-1",
			Status:        domain.RejectionStatusPendingReview,
		}
		// A second resubmission that slipped past the lock finds the
		// application no longer rejected.
		app := &domain.Application{
			ID:     "app-1",
			Kind:   domain.KindOrdinaryCompany,
			Status: domain.ApplicationStatusPending,
		}
		e.rejections.On("GetForUpdate", ctx, "rej-1").Return(rej, nil)
		e.apps.On("GetForUpdate", ctx, domain.KindOrdinaryCompany, "app-1").Return(app, nil)

		_, err := svc.Resubmit(ctx, "rej-1", "member-1", &domain.ApplicationUpdate{}, "")
		assert.ErrorIs(t, err, domain.ErrConflict)
		e.snapshots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
