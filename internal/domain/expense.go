package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"partytab-backend/internal/utils"
)

type Expense struct {
	ID                 int32     `json:"id"`
	TabID              int32     `json:"tab_id"`
	PayerParticipantID int32     `json:"payer_participant_id"`
	AmountCents        int64     `json:"amount_cents"`
	ExpenseDate        time.Time `json:"expense_date"`
	Note               string    `json:"note"`
	CreatedByUserID    int32     `json:"created_by_user_id"`
	Splits             []Split   `json:"splits"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Split struct {
	ParticipantID int32 `json:"participant_id"`
	AmountCents   int64 `json:"amount_cents"`
}

// SplitRule describes how an expense total is divided. The two variants are
// EvenSplit and CustomSplit.
type SplitRule interface {
	// Splits materialises the rule for the given total. The result always sums
	// to totalCents or an ErrValidation is returned.
	Splits(totalCents int64) ([]Split, error)
	participantIDs() []int32
}

// EvenSplit divides the total equally. Remainder cents go to the lowest
// participant ids first.
type EvenSplit struct {
	ParticipantIDs []int32
}

func (r EvenSplit) participantIDs() []int32 { return r.ParticipantIDs }

func (r EvenSplit) Splits(totalCents int64) ([]Split, error) {
	if len(r.ParticipantIDs) == 0 {
		return nil, fmt.Errorf("%w: split needs at least one participant", ErrValidation)
	}
	ids := slices.Clone(r.ParticipantIDs)
	slices.Sort(ids)

	shares, err := utils.SplitEvenly(totalCents, len(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	splits := make([]Split, len(ids))
	for i, id := range ids {
		splits[i] = Split{ParticipantID: id, AmountCents: shares[i]}
	}
	return splits, nil
}

// CustomSplit uses caller-supplied shares which must add up to the total.
type CustomSplit struct {
	Shares []Split
}

func (r CustomSplit) participantIDs() []int32 {
	ids := make([]int32, len(r.Shares))
	for i, s := range r.Shares {
		ids[i] = s.ParticipantID
	}
	return ids
}

func (r CustomSplit) Splits(totalCents int64) ([]Split, error) {
	if len(r.Shares) == 0 {
		return nil, fmt.Errorf("%w: split needs at least one participant", ErrValidation)
	}

	var sum int64
	for _, s := range r.Shares {
		if s.AmountCents < 0 {
			return nil, fmt.Errorf("%w: share for participant %d is negative", ErrValidation, s.ParticipantID)
		}
		if s.AmountCents > utils.MaxAmountCents {
			return nil, fmt.Errorf("%w: share for participant %d exceeds %s", ErrValidation, s.ParticipantID, utils.FormatCents(utils.MaxAmountCents))
		}
		next, err := utils.AddCents(sum, s.AmountCents)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		sum = next
	}
	if sum != totalCents {
		return nil, fmt.Errorf("%w: shares sum to %s but expense total is %s",
			ErrValidation, utils.FormatCents(sum), utils.FormatCents(totalCents))
	}

	splits := slices.Clone(r.Shares)
	slices.SortFunc(splits, func(a, b Split) int { return cmp.Compare(a.ParticipantID, b.ParticipantID) })
	return splits, nil
}

// ExpenseInput is the validated payload for creating or replacing an expense.
type ExpenseInput struct {
	PayerParticipantID int32
	AmountCents        int64
	ExpenseDate        time.Time
	Note               string
	Split              SplitRule
}

// BuildSplits checks the input against the tab's participants and returns the
// splits to persist. Every returned error wraps ErrValidation.
func (in ExpenseInput) BuildSplits(participants []Participant) ([]Split, error) {
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if in.AmountCents > utils.MaxAmountCents {
		return nil, fmt.Errorf("%w: amount exceeds %s", ErrValidation, utils.FormatCents(utils.MaxAmountCents))
	}
	if FindParticipant(participants, in.PayerParticipantID) == nil {
		return nil, fmt.Errorf("%w: unknown payer participant %d", ErrValidation, in.PayerParticipantID)
	}
	if in.Split == nil {
		return nil, fmt.Errorf("%w: split is required", ErrValidation)
	}

	seen := make(map[int32]bool)
	for _, id := range in.Split.participantIDs() {
		if seen[id] {
			return nil, fmt.Errorf("%w: participant %d appears twice in split", ErrValidation, id)
		}
		seen[id] = true
		if FindParticipant(participants, id) == nil {
			return nil, fmt.Errorf("%w: unknown participant %d", ErrValidation, id)
		}
	}

	return in.Split.Splits(in.AmountCents)
}
