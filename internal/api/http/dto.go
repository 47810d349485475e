package http

import (
	"fmt"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/utils"
)

const dateLayout = "2006-01-02"

// Requests

type createTabRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	OwnerDisplayName string   `json:"owner_display_name" validate:"required,max=100"`
	Participants     []string `json:"participants" validate:"max=50,dive,required,max=100"`
}

type addParticipantRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

type shareRequest struct {
	ParticipantID int32  `json:"participant_id" validate:"required,gt=0"`
	Amount        string `json:"amount" validate:"required"`
}

// splitRequest is a tagged union on Mode.
type splitRequest struct {
	Mode           string         `json:"mode" validate:"required,oneof=even custom"`
	ParticipantIDs []int32        `json:"participant_ids" validate:"omitempty,dive,gt=0"`
	Shares         []shareRequest `json:"shares" validate:"omitempty,dive"`
}

type expenseRequest struct {
	PayerParticipantID int32        `json:"payer_participant_id" validate:"required,gt=0"`
	Amount             string       `json:"amount" validate:"required"`
	ExpenseDate        string       `json:"expense_date" validate:"required,datetime=2006-01-02"`
	Note               string       `json:"note" validate:"max=500"`
	Split              splitRequest `json:"split"`
}

type transferRequest struct {
	FromParticipantID int32 `json:"from_participant_id" validate:"required,gt=0"`
	ToParticipantID   int32 `json:"to_participant_id" validate:"required,gt=0,nefield=FromParticipantID"`
}

func (r splitRequest) toRule() (domain.SplitRule, error) {
	switch r.Mode {
	case "even":
		if len(r.Shares) > 0 {
			return nil, fmt.Errorf("%w: shares are not allowed for an even split", domain.ErrValidation)
		}
		return domain.EvenSplit{ParticipantIDs: r.ParticipantIDs}, nil
	case "custom":
		if len(r.ParticipantIDs) > 0 {
			return nil, fmt.Errorf("%w: participant_ids are not allowed for a custom split", domain.ErrValidation)
		}
		shares := make([]domain.Split, len(r.Shares))
		for i, s := range r.Shares {
			cents, err := utils.ParseCents(s.Amount)
			if err != nil {
				return nil, fmt.Errorf("%w: share for participant %d: %v", domain.ErrValidation, s.ParticipantID, err)
			}
			shares[i] = domain.Split{ParticipantID: s.ParticipantID, AmountCents: cents}
		}
		return domain.CustomSplit{Shares: shares}, nil
	default:
		return nil, fmt.Errorf("%w: unknown split mode %q", domain.ErrValidation, r.Mode)
	}
}

func (r expenseRequest) toInput() (domain.ExpenseInput, error) {
	cents, err := utils.ParseCents(r.Amount)
	if err != nil {
		return domain.ExpenseInput{}, fmt.Errorf("%w: amount: %v", domain.ErrValidation, err)
	}
	date, err := time.Parse(dateLayout, r.ExpenseDate)
	if err != nil {
		return domain.ExpenseInput{}, fmt.Errorf("%w: expense_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	rule, err := r.Split.toRule()
	if err != nil {
		return domain.ExpenseInput{}, err
	}
	return domain.ExpenseInput{
		PayerParticipantID: r.PayerParticipantID,
		AmountCents:        cents,
		ExpenseDate:        date,
		Note:               r.Note,
		Split:              rule,
	}, nil
}

// Responses

type participantResponse struct {
	ID          int32  `json:"id"`
	DisplayName string `json:"display_name"`
	UserID      *int32 `json:"user_id"`
}

type tabResponse struct {
	ID           int32                 `json:"id"`
	Name         string                `json:"name"`
	OwnerUserID  int32                 `json:"owner_user_id"`
	Status       domain.TabStatus      `json:"status"`
	ClosedAt     *time.Time            `json:"closed_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []participantResponse `json:"participants,omitempty"`
}

type splitResponse struct {
	ParticipantID int32  `json:"participant_id"`
	AmountCents   int64  `json:"amount_cents"`
	Amount        string `json:"amount"`
}

type expenseResponse struct {
	ID                 int32           `json:"id"`
	TabID              int32           `json:"tab_id"`
	PayerParticipantID int32           `json:"payer_participant_id"`
	AmountCents        int64           `json:"amount_cents"`
	Amount             string          `json:"amount"`
	ExpenseDate        string          `json:"expense_date"`
	Note               string          `json:"note"`
	CreatedByUserID    int32           `json:"created_by_user_id"`
	Splits             []splitResponse `json:"splits"`
}

type balanceResponse struct {
	ParticipantID int32  `json:"participant_id"`
	PaidCents     int64  `json:"paid_cents"`
	OwedCents     int64  `json:"owed_cents"`
	NetCents      int64  `json:"net_cents"`
	Net           string `json:"net"`
}

type transferResponse struct {
	FromParticipantID int32                        `json:"from_participant_id"`
	ToParticipantID   int32                        `json:"to_participant_id"`
	AmountCents       int64                        `json:"amount_cents"`
	Amount            string                       `json:"amount"`
	Status            domain.AcknowledgementStatus `json:"status"`
	MarkedPaidAt      *time.Time                   `json:"marked_paid_at,omitempty"`
	ConfirmedAt       *time.Time                   `json:"confirmed_at,omitempty"`
}

type settlementResponse struct {
	TabID     int32              `json:"tab_id"`
	Balances  []balanceResponse  `json:"balances"`
	Transfers []transferResponse `json:"transfers"`
}

type acknowledgementsResponse struct {
	Acknowledgements []domain.Acknowledgement       `json:"acknowledgements"`
	Actions          []domain.AcknowledgementAction `json:"actions"`
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	TotalCount    int32                 `json:"total_count"`
}

func toParticipantResponse(p domain.Participant) participantResponse {
	return participantResponse{ID: p.ID, DisplayName: p.DisplayName, UserID: p.UserID}
}

func toTabResponse(t *domain.Tab, participants []domain.Participant) tabResponse {
	res := tabResponse{
		ID:          t.ID,
		Name:        t.Name,
		OwnerUserID: t.OwnerUserID,
		Status:      t.Status,
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
	}
	for _, p := range participants {
		res.Participants = append(res.Participants, toParticipantResponse(p))
	}
	return res
}

func toExpenseResponse(e *domain.Expense) expenseResponse {
	splits := make([]splitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = splitResponse{
			ParticipantID: s.ParticipantID,
			AmountCents:   s.AmountCents,
			Amount:        utils.FormatCents(s.AmountCents),
		}
	}
	return expenseResponse{
		ID:                 e.ID,
		TabID:              e.TabID,
		PayerParticipantID: e.PayerParticipantID,
		AmountCents:        e.AmountCents,
		Amount:             utils.FormatCents(e.AmountCents),
		ExpenseDate:        e.ExpenseDate.Format(dateLayout),
		Note:               e.Note,
		CreatedByUserID:    e.CreatedByUserID,
		Splits:             splits,
	}
}

func toTransferResponse(t domain.SettlementTransfer) transferResponse {
	return transferResponse{
		FromParticipantID: t.FromParticipantID,
		ToParticipantID:   t.ToParticipantID,
		AmountCents:       t.AmountCents,
		Amount:            utils.FormatCents(t.AmountCents),
		Status:            t.Status,
		MarkedPaidAt:      t.MarkedPaidAt,
		ConfirmedAt:       t.ConfirmedAt,
	}
}

func toSettlementResponse(s *domain.Settlement) settlementResponse {
	res := settlementResponse{
		TabID:     s.TabID,
		Balances:  make([]balanceResponse, len(s.Balances)),
		Transfers: make([]transferResponse, len(s.Transfers)),
	}
	for i, b := range s.Balances {
		res.Balances[i] = balanceResponse{
			ParticipantID: b.ParticipantID,
			PaidCents:     b.PaidCents,
			OwedCents:     b.OwedCents,
			NetCents:      b.NetCents,
			Net:           utils.FormatCents(b.NetCents),
		}
	}
	for i, t := range s.Transfers {
		res.Transfers[i] = toTransferResponse(t)
	}
	return res
}
