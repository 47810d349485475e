package domain

import "time"

type Balance struct {
	ParticipantID int32 `json:"participant_id"`
	PaidCents     int64 `json:"paid_cents"`
	OwedCents     int64 `json:"owed_cents"`
	NetCents      int64 `json:"net_cents"` // positive = is owed money, negative = owes money
}

// Transfer is a recommended payment derived from current balances. It is never persisted.
type Transfer struct {
	FromParticipantID int32 `json:"from_participant_id"`
	ToParticipantID   int32 `json:"to_participant_id"`
	AmountCents       int64 `json:"amount_cents"`
}

type AcknowledgementStatus string

const (
	// AcknowledgementStatusPending is implicit: no acknowledgement row exists.
	AcknowledgementStatusPending              AcknowledgementStatus = "PENDING"
	AcknowledgementStatusAwaitingConfirmation AcknowledgementStatus = "AWAITING_CONFIRMATION"
	AcknowledgementStatusAcknowledged         AcknowledgementStatus = "ACKNOWLEDGED"
)

type Acknowledgement struct {
	ID                int32                 `json:"id"`
	TabID             int32                 `json:"tab_id"`
	FromParticipantID int32                 `json:"from_participant_id"`
	ToParticipantID   int32                 `json:"to_participant_id"`
	AmountCents       int64                 `json:"amount_cents"` // transfer amount when marked paid
	Status            AcknowledgementStatus `json:"status"`
	MarkedPaidAt      *time.Time            `json:"marked_paid_at"`
	MarkedPaidBy      *int32                `json:"marked_paid_by_user_id"`
	ConfirmedAt       *time.Time            `json:"confirmed_at"`
	ConfirmedBy       *int32                `json:"confirmed_by_user_id"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// Matches reports whether the acknowledgement still describes the given transfer.
func (a *Acknowledgement) Matches(t Transfer) bool {
	return a.FromParticipantID == t.FromParticipantID &&
		a.ToParticipantID == t.ToParticipantID &&
		a.AmountCents == t.AmountCents
}

// FindAcknowledgement returns the acknowledgement stored for the (from, to) pair, or nil.
func FindAcknowledgement(acks []Acknowledgement, from, to int32) *Acknowledgement {
	for i := range acks {
		if acks[i].FromParticipantID == from && acks[i].ToParticipantID == to {
			return &acks[i]
		}
	}
	return nil
}

// TransferStatus resolves the visible state of a transfer. A stored
// acknowledgement only counts while its amount matches the transfer.
func TransferStatus(t Transfer, ack *Acknowledgement) AcknowledgementStatus {
	if ack == nil || !ack.Matches(t) {
		return AcknowledgementStatusPending
	}
	return ack.Status
}

// SettlementTransfer is a transfer together with its acknowledgement state.
type SettlementTransfer struct {
	Transfer
	Status       AcknowledgementStatus `json:"status"`
	MarkedPaidAt *time.Time            `json:"marked_paid_at"`
	ConfirmedAt  *time.Time            `json:"confirmed_at"`
}

type Settlement struct {
	TabID     int32                `json:"tab_id"`
	Balances  []Balance            `json:"balances"`
	Transfers []SettlementTransfer `json:"transfers"`
}

type AcknowledgementActionType string

const (
	AckActionMarkedPaid        AcknowledgementActionType = "MARKED_PAID"
	AckActionConfirmedReceived AcknowledgementActionType = "CONFIRMED_RECEIVED"
	AckActionInvalidated       AcknowledgementActionType = "INVALIDATED"
)

type AcknowledgementAction struct {
	ID                int32                     `json:"id"`
	AcknowledgementID int32                     `json:"acknowledgement_id"`
	TabID             int32                     `json:"tab_id"`
	ActorUserID       *int32                    `json:"actor_user_id"` // NULL for system actions
	ActionType        AcknowledgementActionType `json:"action_type"`
	AmountCents       int64                     `json:"amount_cents"`
	Notes             string                    `json:"notes"`
	CreatedAt         time.Time                 `json:"created_at"`
}
