package service

import (
	"context"
	"time"

	"partytab-backend/internal/domain"
)

type TabService interface {
	CreateTab(ctx context.Context, userID int32, name, ownerDisplayName string, participantNames []string) (*domain.Tab, []domain.Participant, error)
	GetTab(ctx context.Context, userID, tabID int32) (*domain.Tab, []domain.Participant, error)
	ListTabs(ctx context.Context, userID int32) ([]domain.Tab, error)
	AddParticipant(ctx context.Context, userID, tabID int32, displayName string) (*domain.Participant, error)
	ClaimParticipant(ctx context.Context, userID, tabID, participantID int32) (*domain.Participant, error)
	CloseTab(ctx context.Context, userID, tabID int32) (*domain.Tab, error)
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID, tabID int32, input domain.ExpenseInput) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, userID, tabID, expenseID int32, input domain.ExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, userID, tabID, expenseID int32) error
	GetExpense(ctx context.Context, userID, tabID, expenseID int32) (*domain.Expense, error)
	ListExpenses(ctx context.Context, userID, tabID int32) ([]domain.Expense, error)
}

type SettlementService interface {
	GetSettlement(ctx context.Context, userID, tabID int32) (*domain.Settlement, error)
	ListAcknowledgements(ctx context.Context, userID, tabID int32) ([]domain.Acknowledgement, []domain.AcknowledgementAction, error)
	MarkPaid(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error)
	ConfirmReceived(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error)
	// ReconcileTab removes acknowledgements that no longer match the tab's
	// current settlement and returns how many were removed.
	ReconcileTab(ctx context.Context, tabID int32) (int, error)
	// RemindAwaitingConfirmations notifies payees of transfers marked paid
	// before markedBefore and still awaiting confirmation.
	RemindAwaitingConfirmations(ctx context.Context, markedBefore time.Time) (int, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}
