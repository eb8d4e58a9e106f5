package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}

func (s *sendGridEmailService) SendRejectionNotice(ctx context.Context, email, name, appName, reason string) error {
	subject := fmt.Sprintf("Your membership application %s needs attention", appName)
	body := fmt.Sprintf("Hello %s,\n\nYour membership application %s was returned by a reviewer.\n\nReason: %s\n\nPlease correct the application and resubmit it from your dashboard.\n\nBest regards,\nThe Membership Team", name, appName, reason)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendApprovalNotice(ctx context.Context, email, name, appName string) error {
	subject := fmt.Sprintf("Your membership application %s was approved", appName)
	body := fmt.Sprintf("Hello %s,\n\nGood news: your membership application %s has been approved.\n\nBest regards,\nThe Membership Team", name, appName)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendCancellationNotice(ctx context.Context, email, name, appName string) error {
	subject := fmt.Sprintf("Your membership application %s was cancelled", appName)
	body := fmt.Sprintf("Hello %s,\n\nYour membership application %s has been cancelled.\n\nBest regards,\nThe Membership Team", name, appName)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendResubmissionReceipt(ctx context.Context, email, name, appName string) error {
	subject := fmt.Sprintf("We received your corrected application %s", appName)
	body := fmt.Sprintf("Hello %s,\n\nYour corrected application %s has been resubmitted and is back in review.\n\nBest regards,\nThe Membership Team", name, appName)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendResolutionNotice(ctx context.Context, email, name, appName string) error {
	subject := fmt.Sprintf("Review of your application %s is complete", appName)
	body := fmt.Sprintf("Hello %s,\n\nThe review conversation on your application %s has been closed by a reviewer.\n\nBest regards,\nThe Membership Team", name, appName)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendNewMessageNotice(ctx context.Context, email, name, appName string) error {
	subject := fmt.Sprintf("New reviewer message on your application %s", appName)
	body := fmt.Sprintf("Hello %s,\n\nA reviewer left a new message on your application %s. Please sign in to read and reply.\n\nBest regards,\nThe Membership Team", name, appName)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendPendingFixReminder(ctx context.Context, email, name, appName string, daysOpen int) error {
	subject := fmt.Sprintf("Reminder: your application %s is waiting for corrections", appName)
	body := fmt.Sprintf("Hello %s,\n\nYour application %s was returned for corrections %d days ago and has not been resubmitted yet.\n\nBest regards,\nThe Membership Team", name, appName, daysOpen)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendGridEmailService) SendReviewerDigest(ctx context.Context, email string, openCount, unreadCount int) error {
	subject := "Membership review digest"
	body := fmt.Sprintf("Hello,\n\nThere are currently %d open rejection episodes, %d of them with unread member messages.\n\nThe Membership Team", openCount, unreadCount)
	return s.send(ctx, email, "Review Team", subject, body)
}
