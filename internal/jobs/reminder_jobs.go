package jobs

import (
	"context"

	"memberdesk-backend/internal/logger"
)

// SendPendingFixReminders emails members whose rejection episodes have been
// waiting on their corrections for longer than the configured number of days.
func (jr *JobRunner) SendPendingFixReminders() {
	jr.runWithRecovery("SendPendingFixReminders", func() {
		ctx := context.Background()
		staleDays := jr.config.Reminders.StaleAfterDays

		query := `
			SELECT r.id, r.application_id, a.name,
			       m.email, m.name AS member_name,
			       EXTRACT(DAY FROM now() - COALESCE(r.last_message_at, r.created_at))::int AS days_open
			FROM rejections r
			JOIN applications a ON a.id = r.application_id
			JOIN members m ON m.id = r.member_id
			WHERE r.status = 'pending_fix'
			  AND COALESCE(r.last_message_at, r.created_at) < now() - make_interval(days => $1)
		`

		rows, err := jr.db.QueryContext(ctx, query, staleDays)
		if err != nil {
			logger.Error("Failed to query stale rejections", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				rejectionID   string
				applicationID string
				appName       string
				email         string
				memberName    string
				daysOpen      int
			)
			if err := rows.Scan(&rejectionID, &applicationID, &appName, &email, &memberName, &daysOpen); err != nil {
				logger.Error("Failed to scan stale rejection", "error", err)
				continue
			}

			if err := jr.email.SendPendingFixReminder(ctx, email, memberName, appName, daysOpen); err != nil {
				logger.Error("Failed to send pending-fix reminder",
					"rejection_id", rejectionID, "email", email, "error", err)
				continue
			}
			count++
		}
		if err := rows.Err(); err != nil {
			logger.Error("Row iteration failed", "error", err)
		}
		logger.Info("Pending-fix reminders sent", "count", count)
	})
}

// SendReviewerDigest emails the reviewer alias a summary of open episodes and
// unread member messages.
func (jr *JobRunner) SendReviewerDigest() {
	jr.runWithRecovery("SendReviewerDigest", func() {
		ctx := context.Background()
		alias := jr.config.Email.ReviewerAlias
		if alias == "" {
			logger.Warn("Reviewer alias not configured, skipping digest")
			return
		}

		query := `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE unread_admin_count > 0)
			FROM rejections
			WHERE status IN ('pending_review', 'pending_fix')
		`

		var open, unread int
		if err := jr.db.QueryRowContext(ctx, query).Scan(&open, &unread); err != nil {
			logger.Error("Failed to query digest counts", "error", err)
			return
		}
		if open == 0 {
			logger.Info("No open rejections, skipping digest")
			return
		}

		if err := jr.email.SendReviewerDigest(ctx, alias, open, unread); err != nil {
			logger.Error("Failed to send reviewer digest", "error", err)
			return
		}
		logger.Info("Reviewer digest sent", "open", open, "unread", unread)
	})
}
