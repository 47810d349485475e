package http_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"partytab-backend/internal/domain"
)

// MockTabService
type MockTabService struct {
	mock.Mock
}

func (m *MockTabService) CreateTab(ctx context.Context, userID int32, name, ownerDisplayName string, participantNames []string) (*domain.Tab, []domain.Participant, error) {
	args := m.Called(ctx, userID, name, ownerDisplayName, participantNames)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Tab), args.Get(1).([]domain.Participant), args.Error(2)
}
func (m *MockTabService) GetTab(ctx context.Context, userID, tabID int32) (*domain.Tab, []domain.Participant, error) {
	args := m.Called(ctx, userID, tabID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Tab), args.Get(1).([]domain.Participant), args.Error(2)
}
func (m *MockTabService) ListTabs(ctx context.Context, userID int32) ([]domain.Tab, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Tab), args.Error(1)
}
func (m *MockTabService) AddParticipant(ctx context.Context, userID, tabID int32, displayName string) (*domain.Participant, error) {
	args := m.Called(ctx, userID, tabID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Participant), args.Error(1)
}
func (m *MockTabService) ClaimParticipant(ctx context.Context, userID, tabID, participantID int32) (*domain.Participant, error) {
	args := m.Called(ctx, userID, tabID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Participant), args.Error(1)
}
func (m *MockTabService) CloseTab(ctx context.Context, userID, tabID int32) (*domain.Tab, error) {
	args := m.Called(ctx, userID, tabID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tab), args.Error(1)
}

// MockExpenseService
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) CreateExpense(ctx context.Context, userID, tabID int32, input domain.ExpenseInput) (*domain.Expense, error) {
	args := m.Called(ctx, userID, tabID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) UpdateExpense(ctx context.Context, userID, tabID, expenseID int32, input domain.ExpenseInput) (*domain.Expense, error) {
	args := m.Called(ctx, userID, tabID, expenseID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) DeleteExpense(ctx context.Context, userID, tabID, expenseID int32) error {
	args := m.Called(ctx, userID, tabID, expenseID)
	return args.Error(0)
}
func (m *MockExpenseService) GetExpense(ctx context.Context, userID, tabID, expenseID int32) (*domain.Expense, error) {
	args := m.Called(ctx, userID, tabID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) ListExpenses(ctx context.Context, userID, tabID int32) ([]domain.Expense, error) {
	args := m.Called(ctx, userID, tabID)
	return args.Get(0).([]domain.Expense), args.Error(1)
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

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}
