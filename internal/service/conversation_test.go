package service

import (
	"context"
	"testing"
	"time"

	"memberdesk-backend/internal/cache"
	"memberdesk-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newConversationService(e *testEnv) ConversationService {
	return NewConversationService(e.tx, cache.Noop[*RejectionDetail]{}, NoopNotifier{})
}

func TestPostMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("MemberReplyBumpsAdminUnread", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		rej := &domain.Rejection{
			ID:       "rej-1",
			MemberID: "member-1",
			Status:   domain.RejectionStatusPendingFix,
		}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)
		e.conversations.On("Create", ctx, mock.MatchedBy(func(m *domain.Message) bool {
			return m.RejectionID == "rej-1" && m.SenderRole == domain.RoleMember && m.Body == "address corrected"
		})).Return(nil)
		// The unread counter of the other side moves, never the sender's.
		e.rejections.On("IncrementUnread", ctx, "rej-1", domain.RoleAdmin, mock.AnythingOfType("time.Time")).Return(nil)
		// A member reply hands the episode back to the reviewer.
		e.rejections.On("Update", ctx, mock.MatchedBy(func(r *domain.Rejection) bool {
			return r.Status == domain.RejectionStatusPendingReview
		})).Return(nil)
		e.audit.On("Append", ctx, mock.MatchedBy(func(entry *domain.AuditEntry) bool {
			return entry.Action == domain.AuditActionMessage
		})).Return(nil)

		msg, err := svc.PostMessage(ctx, "rej-1", domain.RoleMember, "member-1", "  address corrected  ", nil)
		assert.NoError(t, err)
		assert.Equal(t, "address corrected", msg.Body)
		assert.False(t, msg.IsRead)
		e.rejections.AssertExpectations(t)
		e.conversations.AssertExpectations(t)
	})

	t.Run("AdminReplyBumpsMemberUnread", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		rej := &domain.Rejection{
			ID:       "rej-1",
			MemberID: "member-1",
			Status:   domain.RejectionStatusPendingReview,
		}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)
		e.conversations.On("Create", ctx, mock.Anything).Return(nil)
		e.rejections.On("IncrementUnread", ctx, "rej-1", domain.RoleMember, mock.AnythingOfType("time.Time")).Return(nil)
		e.rejections.On("Update", ctx, mock.MatchedBy(func(r *domain.Rejection) bool {
			return r.Status == domain.RejectionStatusPendingFix
		})).Return(nil)
		e.audit.On("Append", ctx, mock.Anything).Return(nil)

		_, err := svc.PostMessage(ctx, "rej-1", domain.RoleAdmin, "reviewer-1", "still wrong", nil)
		assert.NoError(t, err)
		e.rejections.AssertExpectations(t)
	})

	t.Run("EmptyAfterTrim", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1", Status: domain.RejectionStatusPendingFix}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)

		_, err := svc.PostMessage(ctx, "rej-1", domain.RoleMember, "member-1", "   \n\t ", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
		e.conversations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		e.rejections.AssertNotCalled(t, "IncrementUnread", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1", Status: domain.RejectionStatusPendingFix}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)

		_, err := svc.PostMessage(ctx, "rej-1", domain.RoleMember, "member-2", "hi", nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("TerminalEpisodeKeepsStatus", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		// Messages stay allowed after resolution, but the ledger status no
		// longer flips.
		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1", Status: domain.RejectionStatusResolved}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)
		e.conversations.On("Create", ctx, mock.Anything).Return(nil)
		e.rejections.On("IncrementUnread", ctx, "rej-1", domain.RoleAdmin, mock.AnythingOfType("time.Time")).Return(nil)
		e.audit.On("Append", ctx, mock.Anything).Return(nil)

		_, err := svc.PostMessage(ctx, "rej-1", domain.RoleMember, "member-1", "thanks", nil)
		assert.NoError(t, err)
		e.rejections.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestListMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadingMarksOtherSideRead", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1", Status: domain.RejectionStatusPendingFix}
		now := time.Now().UTC()
		msgs := []domain.Message{
			{ID: "msg-1", SenderRole: domain.RoleAdmin, Body: "fix the address", IsRead: false, CreatedAt: now.Add(-time.Hour)},
			{ID: "msg-2", SenderRole: domain.RoleMember, Body: "done", IsRead: false, CreatedAt: now},
		}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)
		e.conversations.On("ListByRejection", ctx, "rej-1").Return(msgs, nil)
		// The member reading the thread consumes admin-authored messages and
		// clears their own unread counter.
		e.conversations.On("MarkReadByRole", ctx, "rej-1", domain.RoleAdmin).Return(nil)
		e.rejections.On("ResetUnread", ctx, "rej-1", domain.RoleMember).Return(nil)

		out, err := svc.ListMessages(ctx, "rej-1", "member-1", domain.RoleMember)
		assert.NoError(t, err)
		assert.Len(t, out, 2)
		assert.True(t, out[0].IsRead, "admin message should be read in the returned view")
		assert.False(t, out[1].IsRead, "own message read state is untouched")
		e.conversations.AssertExpectations(t)
		e.rejections.AssertExpectations(t)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		e := newTestEnv()
		svc := newConversationService(e)

		rej := &domain.Rejection{ID: "rej-1", MemberID: "member-1"}
		e.rejections.On("GetByID", ctx, "rej-1").Return(rej, nil)

		_, err := svc.ListMessages(ctx, "rej-1", "member-2", domain.RoleMember)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		e.conversations.AssertNotCalled(t, "MarkReadByRole", mock.Anything, mock.Anything, mock.Anything)
	})
}
