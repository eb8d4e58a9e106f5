package service

import (
	"context"

	"memberdesk-backend/internal/cache"
	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"
)

type conversationService struct {
	tx          repository.TxRunner
	detailCache cache.Cache[*RejectionDetail]
	notifier    Notifier
}

func NewConversationService(
	tx repository.TxRunner,
	detailCache cache.Cache[*RejectionDetail],
	notifier Notifier,
) ConversationService {
	return &conversationService{
		tx:          tx,
		detailCache: detailCache,
		notifier:    notifier,
	}
}

func (s *conversationService) PostMessage(ctx context.Context, rejectionID string, role domain.SenderRole, senderID, text string, attachments []string) (*domain.Message, error) {
	var (
		msg *domain.Message
		rej *domain.Rejection
	)
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		var err error
		rej, err = r.Rejections.GetByID(ctx, rejectionID)
		if err != nil {
			return err
		}
		if role == domain.RoleMember && rej.MemberID != senderID {
			return domain.ErrForbidden
		}

		msg, err = postThreadMessage(ctx, r, rej, role, senderID, text, attachments)
		if err != nil {
			return err
		}

		return r.Audit.Append(ctx, &domain.AuditEntry{
			ActorID:     senderID,
			Action:      domain.AuditActionMessage,
			TargetID:    rejectionID,
			Description: "posted a conversation message",
		})
	})
	if err != nil {
		return nil, err
	}

	s.detailCache.Invalidate(detailCacheKey(rejectionID))

	// Members learn about reviewer replies by email; the reviewer side is
	// covered by the digest job.
	if role == domain.RoleAdmin {
		s.notifier.Dispatch(ctx, rej.MemberID, EventMessage, map[string]string{
			"rejection_id":   rejectionID,
			"application_id": rej.ApplicationID,
		})
	}
	return msg, nil
}

// ListMessages marks the other role's messages read and resets the caller's
// unread counter in the same transaction as the read. Deliberate behavioral
// parity with the original flow: there is no separate mark-read call.
func (s *conversationService) ListMessages(ctx context.Context, rejectionID, requesterID string, role domain.SenderRole) ([]domain.Message, error) {
	var msgs []domain.Message
	err := s.tx.ExecTx(ctx, func(r *repository.Repositories) error {
		rej, err := r.Rejections.GetByID(ctx, rejectionID)
		if err != nil {
			return err
		}
		if role == domain.RoleMember && rej.MemberID != requesterID {
			return domain.ErrForbidden
		}

		msgs, err = r.Conversations.ListByRejection(ctx, rejectionID)
		if err != nil {
			return err
		}
		if err := r.Conversations.MarkReadByRole(ctx, rejectionID, role.Other()); err != nil {
			return err
		}
		return r.Rejections.ResetUnread(ctx, rejectionID, role)
	})
	if err != nil {
		return nil, err
	}

	// Reflect the side effect in the returned view.
	other := role.Other()
	for i := range msgs {
		if msgs[i].SenderRole == other {
			msgs[i].IsRead = true
		}
	}

	s.detailCache.Invalidate(detailCacheKey(rejectionID))
	return msgs, nil
}
