package postgres

import (
	"context"
	"testing"
	"time"

	"memberdesk-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestConversationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewConversationRepository(db)
	ctx := context.Background()

	msg := &domain.Message{
		RejectionID: "rej-1",
		SenderRole:  domain.RoleMember,
		SenderID:    "member-1",
		Body:        "fixed the address",
		Attachments: []string{"files/proof.pdf"},
	}

	mock.ExpectExec("INSERT INTO rejection_messages").
		WithArgs(sqlmock.AnyArg(), msg.RejectionID, msg.SenderRole, msg.SenderID, msg.Body,
			sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, msg)
	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_ListByRejection(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewConversationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM rejection_messages WHERE rejection_id = \$1 ORDER BY created_at, id`).
		WithArgs("rej-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "rejection_id", "sender_role", "sender_id", "body", "attachments", "is_read", "created_at",
		}).
			AddRow("msg-1", "rej-1", "admin", "rev-1", "please fix the address", []byte("{}"), true, now.Add(-time.Hour)).
			AddRow("msg-2", "rej-1", "member", "member-1", "done", []byte(`{"files/proof.pdf"}`), false, now))

	msgs, err := repo.ListByRejection(ctx, "rej-1")
	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "msg-1", msgs[0].ID)
	assert.Equal(t, domain.RoleMember, msgs[1].SenderRole)
	assert.Equal(t, []string{"files/proof.pdf"}, msgs[1].Attachments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_MarkReadByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewConversationRepository(db)
	ctx := context.Background()

	// Only unread rows flip; the flag never moves back.
	mock.ExpectExec(`UPDATE rejection_messages SET is_read = TRUE\s+WHERE rejection_id = \$1 AND sender_role = \$2 AND is_read = FALSE`).
		WithArgs("rej-1", domain.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err = repo.MarkReadByRole(ctx, "rej-1", domain.RoleAdmin)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
