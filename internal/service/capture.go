package service

import (
	"context"
	"strings"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"
)

// captureSnapshot freezes the application's full data graph inside the
// caller's transaction, so the main record and every child collection come
// from one consistent read. Partial snapshots cannot happen.
func captureSnapshot(ctx context.Context, r *repository.Repositories, kind domain.ApplicationKind, appID string, reason domain.SnapshotReason, actorID string) (*domain.Snapshot, error) {
	app, err := r.Applications.GetByID(ctx, kind, appID)
	if err != nil {
		return nil, err
	}
	snap := &domain.Snapshot{
		Kind:           kind,
		ApplicationID:  appID,
		Reason:         reason,
		TakenBy:        actorID,
		TakenAt:        time.Now().UTC(),
		Name:           app.Name,
		RegistrationNo: app.RegistrationNo,
		Children:       app.Children,
	}
	if err := r.Snapshots.Create(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// postThreadMessage appends a conversation message inside the caller's
// transaction: validates the text, stores the message, bumps the other side's
// unread counter and last_message_at atomically, and flips the ledger to the
// side now owing a response. Shared by the conversation service and the
// resubmission orchestrator so both paths have identical semantics.
func postThreadMessage(ctx context.Context, r *repository.Repositories, rej *domain.Rejection, role domain.SenderRole, senderID, text string, attachments []string) (*domain.Message, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}

	msg := &domain.Message{
		RejectionID: rej.ID,
		SenderRole:  role,
		SenderID:    senderID,
		Body:        body,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.Conversations.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := r.Rejections.IncrementUnread(ctx, rej.ID, role.Other(), msg.CreatedAt); err != nil {
		return nil, err
	}

	// A member reply hands the episode to the reviewer and vice versa.
	if !rej.Status.Terminal() {
		next := domain.RejectionStatusPendingFix
		if role == domain.RoleMember {
			next = domain.RejectionStatusPendingReview
		}
		if rej.Status != next {
			rej.Status = next
			if err := r.Rejections.Update(ctx, rej); err != nil {
				return nil, err
			}
		}
	}
	return msg, nil
}
