package service

import (
	"context"

	"memberdesk-backend/internal/logger"
	"memberdesk-backend/internal/repository"
)

// emailNotifier delivers notification events by email. Dispatch is
// fire-and-forget: every failure is logged and swallowed so it can never
// affect the committed transaction that triggered it.
type emailNotifier struct {
	members repository.MemberRepository
	email   EmailService
}

func NewEmailNotifier(members repository.MemberRepository, email EmailService) Notifier {
	return &emailNotifier{members: members, email: email}
}

func (n *emailNotifier) Dispatch(ctx context.Context, memberID, eventType string, payload map[string]string) {
	member, err := n.members.GetByID(ctx, memberID)
	if err != nil {
		logger.Warn("notification dropped, member lookup failed",
			"member_id", memberID, "event", eventType, "error", err)
		return
	}

	appName := payload["application_name"]
	if appName == "" {
		appName = payload["application_id"]
	}

	switch eventType {
	case EventRejected:
		err = n.email.SendRejectionNotice(ctx, member.Email, member.Name, appName, payload["reason"])
	case EventApproved:
		err = n.email.SendApprovalNotice(ctx, member.Email, member.Name, appName)
	case EventCancelled:
		err = n.email.SendCancellationNotice(ctx, member.Email, member.Name, appName)
	case EventResubmitted:
		err = n.email.SendResubmissionReceipt(ctx, member.Email, member.Name, appName)
	case EventResolved:
		err = n.email.SendResolutionNotice(ctx, member.Email, member.Name, appName)
	case EventMessage:
		err = n.email.SendNewMessageNotice(ctx, member.Email, member.Name, appName)
	default:
		logger.Warn("unknown notification event", "event", eventType, "member_id", memberID)
		return
	}
	if err != nil {
		logger.Error("notification delivery failed",
			"member_id", memberID, "event", eventType, "error", err)
	}
}

// NoopNotifier drops every event. Used in tests.
type NoopNotifier struct{}

func (NoopNotifier) Dispatch(context.Context, string, string, map[string]string) {}
