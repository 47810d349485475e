package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"partytab-backend/internal/domain"
)

// MockTabRepo
type MockTabRepo struct {
	mock.Mock
}

func (m *MockTabRepo) Create(ctx context.Context, tab *domain.Tab, participants []domain.Participant) error {
	args := m.Called(ctx, tab, participants)
	return args.Error(0)
}
func (m *MockTabRepo) GetByID(ctx context.Context, id int32) (*domain.Tab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tab), args.Error(1)
}
func (m *MockTabRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Tab, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Tab), args.Error(1)
}
func (m *MockTabRepo) ListByStatus(ctx context.Context, status domain.TabStatus) ([]domain.Tab, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Tab), args.Error(1)
}
func (m *MockTabRepo) Close(ctx context.Context, id int32, closedAt time.Time) error {
	args := m.Called(ctx, id, closedAt)
	return args.Error(0)
}

// MockParticipantRepo
type MockParticipantRepo struct {
	mock.Mock
}

func (m *MockParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockParticipantRepo) ListByTab(ctx context.Context, tabID int32) ([]domain.Participant, error) {
	args := m.Called(ctx, tabID)
	return args.Get(0).([]domain.Participant), args.Error(1)
}
func (m *MockParticipantRepo) Link(ctx context.Context, tabID, participantID, userID int32) error {
	args := m.Called(ctx, tabID, participantID, userID)
	return args.Error(0)
}

// MockExpenseRepo
type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) Create(ctx context.Context, expense *domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}
func (m *MockExpenseRepo) Update(ctx context.Context, expense *domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}
func (m *MockExpenseRepo) GetByID(ctx context.Context, tabID, id int32) (*domain.Expense, error) {
	args := m.Called(ctx, tabID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseRepo) ListByTab(ctx context.Context, tabID int32) ([]domain.Expense, error) {
	args := m.Called(ctx, tabID)
	return args.Get(0).([]domain.Expense), args.Error(1)
}
func (m *MockExpenseRepo) Delete(ctx context.Context, tabID, id int32) error {
	args := m.Called(ctx, tabID, id)
	return args.Error(0)
}

// MockAckRepo
type MockAckRepo struct {
	mock.Mock
}

func (m *MockAckRepo) MarkPaid(ctx context.Context, ack *domain.Acknowledgement) error {
	args := m.Called(ctx, ack)
	return args.Error(0)
}
func (m *MockAckRepo) Confirm(ctx context.Context, id int32, amountCents int64, userID int32, at time.Time) error {
	args := m.Called(ctx, id, amountCents, userID, at)
	return args.Error(0)
}
func (m *MockAckRepo) GetByPair(ctx context.Context, tabID, fromID, toID int32) (*domain.Acknowledgement, error) {
	args := m.Called(ctx, tabID, fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Acknowledgement), args.Error(1)
}
func (m *MockAckRepo) ListByTab(ctx context.Context, tabID int32) ([]domain.Acknowledgement, error) {
	args := m.Called(ctx, tabID)
	return args.Get(0).([]domain.Acknowledgement), args.Error(1)
}
func (m *MockAckRepo) ListAwaitingSince(ctx context.Context, markedBefore time.Time) ([]domain.Acknowledgement, error) {
	args := m.Called(ctx, markedBefore)
	return args.Get(0).([]domain.Acknowledgement), args.Error(1)
}
func (m *MockAckRepo) Invalidate(ctx context.Context, ack *domain.Acknowledgement, notes string) (bool, error) {
	args := m.Called(ctx, ack, notes)
	return args.Bool(0), args.Error(1)
}
func (m *MockAckRepo) CreateAction(ctx context.Context, action *domain.AcknowledgementAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}
func (m *MockAckRepo) ListActions(ctx context.Context, tabID int32) ([]domain.AcknowledgementAction, error) {
	args := m.Called(ctx, tabID)
	return args.Get(0).([]domain.AcknowledgementAction), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockSettlementService
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) GetSettlement(ctx context.Context, userID, tabID int32) (*domain.Settlement, error) {
	args := m.Called(ctx, userID, tabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}
func (m *MockSettlementService) ListAcknowledgements(ctx context.Context, userID, tabID int32) ([]domain.Acknowledgement, []domain.AcknowledgementAction, error) {
	args := m.Called(ctx, userID, tabID)
	return args.Get(0).([]domain.Acknowledgement), args.Get(1).([]domain.AcknowledgementAction), args.Error(2)
}
func (m *MockSettlementService) MarkPaid(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error) {
	args := m.Called(ctx, userID, tabID, fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementTransfer), args.Error(1)
}
func (m *MockSettlementService) ConfirmReceived(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error) {
	args := m.Called(ctx, userID, tabID, fromID, toID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementTransfer), args.Error(1)
}
func (m *MockSettlementService) ReconcileTab(ctx context.Context, tabID int32) (int, error) {
	args := m.Called(ctx, tabID)
	return args.Int(0), args.Error(1)
}
func (m *MockSettlementService) RemindAwaitingConfirmations(ctx context.Context, markedBefore time.Time) (int, error) {
	args := m.Called(ctx, markedBefore)
	return args.Int(0), args.Error(1)
}

func int32Ptr(v int32) *int32 { return &v }

// partyTab is a three person tab owned by user 10. Alice (1) is linked to the
// owner, Bob (2) to user 20, and Carol (3) has not been claimed.
func partyTab() (*domain.Tab, []domain.Participant) {
	tab := &domain.Tab{ID: 7, Name: "Lake house", OwnerUserID: 10, Status: domain.TabStatusActive}
	participants := []domain.Participant{
		{ID: 1, TabID: 7, DisplayName: "Alice", UserID: int32Ptr(10)},
		{ID: 2, TabID: 7, DisplayName: "Bob", UserID: int32Ptr(20)},
		{ID: 3, TabID: 7, DisplayName: "Carol"},
	}
	return tab, participants
}
