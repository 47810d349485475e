package repository

import (
	"context"
	"time"

	"partytab-backend/internal/domain"
)

type TabRepository interface {
	// Create inserts the tab and its initial participants in one transaction.
	Create(ctx context.Context, tab *domain.Tab, participants []domain.Participant) error
	GetByID(ctx context.Context, id int32) (*domain.Tab, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Tab, error)
	ListByStatus(ctx context.Context, status domain.TabStatus) ([]domain.Tab, error)
	// Close moves an ACTIVE tab to CLOSED. Returns domain.ErrTabClosed if it was not ACTIVE.
	Close(ctx context.Context, id int32, closedAt time.Time) error
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *domain.Participant) error
	ListByTab(ctx context.Context, tabID int32) ([]domain.Participant, error)
	// Link sets user_id on an unlinked participant.
	Link(ctx context.Context, tabID, participantID, userID int32) error
}

type ExpenseRepository interface {
	// Create and Update write the expense and its splits in one transaction.
	Create(ctx context.Context, expense *domain.Expense) error
	Update(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, tabID, id int32) (*domain.Expense, error)
	ListByTab(ctx context.Context, tabID int32) ([]domain.Expense, error)
	Delete(ctx context.Context, tabID, id int32) error
}

type AcknowledgementRepository interface {
	// MarkPaid inserts or replaces the acknowledgement for the pair. A row
	// already holding the same amount is left alone and
	// domain.ErrInvalidTransition is returned.
	MarkPaid(ctx context.Context, ack *domain.Acknowledgement) error
	// Confirm moves an AWAITING_CONFIRMATION row with the given amount to
	// ACKNOWLEDGED. Returns domain.ErrInvalidTransition when no row matched.
	Confirm(ctx context.Context, id int32, amountCents int64, userID int32, at time.Time) error
	GetByPair(ctx context.Context, tabID, fromID, toID int32) (*domain.Acknowledgement, error)
	ListByTab(ctx context.Context, tabID int32) ([]domain.Acknowledgement, error)
	ListAwaitingSince(ctx context.Context, markedBefore time.Time) ([]domain.Acknowledgement, error)
	// Invalidate records an INVALIDATED action and deletes the row, as long
	// as it still holds the given amount. Reports whether a row was removed.
	Invalidate(ctx context.Context, ack *domain.Acknowledgement, notes string) (bool, error)
	CreateAction(ctx context.Context, action *domain.AcknowledgementAction) error
	ListActions(ctx context.Context, tabID int32) ([]domain.AcknowledgementAction, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
