package service

import (
	"context"
	"time"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, kind domain.ApplicationKind, id string) (*domain.Application, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) GetForUpdate(ctx context.Context, kind domain.ApplicationKind, id string) (*domain.Application, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}
func (m *MockApplicationRepo) ReplaceChildren(ctx context.Context, kind domain.ApplicationKind, id string, update *domain.ApplicationUpdate) error {
	args := m.Called(ctx, kind, id, update)
	return args.Error(0)
}
func (m *MockApplicationRepo) ListByMember(ctx context.Context, memberID string, page, pageSize int32) ([]domain.Application, int32, error) {
	args := m.Called(ctx, memberID, page, pageSize)
	return args.Get(0).([]domain.Application), args.Get(1).(int32), args.Error(2)
}

// MockSnapshotRepo
type MockSnapshotRepo struct {
	mock.Mock
}

func (m *MockSnapshotRepo) Create(ctx context.Context, snap *domain.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}
func (m *MockSnapshotRepo) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}
func (m *MockSnapshotRepo) ListByApplication(ctx context.Context, kind domain.ApplicationKind, appID string) ([]domain.Snapshot, error) {
	args := m.Called(ctx, kind, appID)
	return args.Get(0).([]domain.Snapshot), args.Error(1)
}

// MockRejectionRepo
type MockRejectionRepo struct {
	mock.Mock
}

func (m *MockRejectionRepo) Create(ctx context.Context, rej *domain.Rejection) error {
	args := m.Called(ctx, rej)
	return args.Error(0)
}
func (m *MockRejectionRepo) GetByID(ctx context.Context, id string) (*domain.Rejection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rejection), args.Error(1)
}
func (m *MockRejectionRepo) GetForUpdate(ctx context.Context, id string) (*domain.Rejection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rejection), args.Error(1)
}
func (m *MockRejectionRepo) Update(ctx context.Context, rej *domain.Rejection) error {
	args := m.Called(ctx, rej)
	return args.Error(0)
}
func (m *MockRejectionRepo) AdvanceSnapshot(ctx context.Context, id, snapshotID string) (int32, error) {
	args := m.Called(ctx, id, snapshotID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockRejectionRepo) IncrementUnread(ctx context.Context, id string, side domain.SenderRole, at time.Time) error {
	args := m.Called(ctx, id, side, at)
	return args.Error(0)
}
func (m *MockRejectionRepo) ResetUnread(ctx context.Context, id string, side domain.SenderRole) error {
	args := m.Called(ctx, id, side)
	return args.Error(0)
}
func (m *MockRejectionRepo) FindOpenByApplication(ctx context.Context, kind domain.ApplicationKind, appID string) (*domain.Rejection, error) {
	args := m.Called(ctx, kind, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rejection), args.Error(1)
}
func (m *MockRejectionRepo) ListForMember(ctx context.Context, memberID string, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	args := m.Called(ctx, memberID, f)
	return args.Get(0).([]domain.RejectionSummary), args.Get(1).(int32), args.Error(2)
}
func (m *MockRejectionRepo) ListForReviewer(ctx context.Context, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.RejectionSummary), args.Get(1).(int32), args.Error(2)
}

// MockConversationRepo
type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockConversationRepo) ListByRejection(ctx context.Context, rejectionID string) ([]domain.Message, error) {
	args := m.Called(ctx, rejectionID)
	return args.Get(0).([]domain.Message), args.Error(1)
}
func (m *MockConversationRepo) MarkReadByRole(ctx context.Context, rejectionID string, authorRole domain.SenderRole) error {
	args := m.Called(ctx, rejectionID, authorRole)
	return args.Error(0)
}

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Append(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockAuditRepo) ListByTarget(ctx context.Context, targetID string, limit int32) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, targetID, limit)
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

// mockTxRunner executes the transactional closure against the supplied repo
// set. The rollback semantics of a real transaction are out of scope here;
// these tests assert the calls made inside the closure and the error paths.
type mockTxRunner struct {
	repos repository.Repositories
}

func (m *mockTxRunner) ExecTx(_ context.Context, fn func(r *repository.Repositories) error) error {
	return fn(&m.repos)
}

// testEnv bundles one mock of every repository plus a TxRunner over them.
type testEnv struct {
	apps          *MockApplicationRepo
	snapshots     *MockSnapshotRepo
	rejections    *MockRejectionRepo
	conversations *MockConversationRepo
	audit         *MockAuditRepo
	members       *MockMemberRepo
	tx            *mockTxRunner
}

func newTestEnv() *testEnv {
	e := &testEnv{
		apps:          new(MockApplicationRepo),
		snapshots:     new(MockSnapshotRepo),
		rejections:    new(MockRejectionRepo),
		conversations: new(MockConversationRepo),
		audit:         new(MockAuditRepo),
		members:       new(MockMemberRepo),
	}
	e.tx = &mockTxRunner{repos: repository.Repositories{
		Applications:  e.apps,
		Snapshots:     e.snapshots,
		Rejections:    e.rejections,
		Conversations: e.conversations,
		Audit:         e.audit,
		Members:       e.members,
	}}
	return e
}
