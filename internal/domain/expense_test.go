package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partytab-backend/internal/utils"
)

func testParticipants() []Participant {
	owner := int32(10)
	return []Participant{
		{ID: 1, TabID: 7, DisplayName: "Alice", UserID: &owner},
		{ID: 2, TabID: 7, DisplayName: "Bob"},
		{ID: 3, TabID: 7, DisplayName: "Carol"},
	}
}

func TestEvenSplit(t *testing.T) {
	t.Run("Ten dollars over three", func(t *testing.T) {
		splits, err := EvenSplit{ParticipantIDs: []int32{3, 1, 2}}.Splits(1000)
		require.NoError(t, err)
		assert.Equal(t, []Split{
			{ParticipantID: 1, AmountCents: 334},
			{ParticipantID: 2, AmountCents: 333},
			{ParticipantID: 3, AmountCents: 333},
		}, splits)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := EvenSplit{}.Splits(1000)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCustomSplit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		splits, err := CustomSplit{Shares: []Split{
			{ParticipantID: 2, AmountCents: 700},
			{ParticipantID: 1, AmountCents: 300},
		}}.Splits(1000)
		require.NoError(t, err)
		assert.Equal(t, int32(1), splits[0].ParticipantID)
		assert.Equal(t, int64(700), splits[1].AmountCents)
	})

	t.Run("Sum mismatch", func(t *testing.T) {
		_, err := CustomSplit{Shares: []Split{
			{ParticipantID: 1, AmountCents: 300},
			{ParticipantID: 2, AmountCents: 600},
		}}.Splits(1000)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "9.00")
	})

	t.Run("Negative share", func(t *testing.T) {
		_, err := CustomSplit{Shares: []Split{
			{ParticipantID: 1, AmountCents: 1100},
			{ParticipantID: 2, AmountCents: -100},
		}}.Splits(1000)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Zero share is allowed", func(t *testing.T) {
		_, err := CustomSplit{Shares: []Split{
			{ParticipantID: 1, AmountCents: 1000},
			{ParticipantID: 2, AmountCents: 0},
		}}.Splits(1000)
		assert.NoError(t, err)
	})

	t.Run("Shares that wrap int64", func(t *testing.T) {
		_, err := CustomSplit{Shares: []Split{
			{ParticipantID: 1, AmountCents: math.MaxInt64},
			{ParticipantID: 2, AmountCents: math.MaxInt64},
			{ParticipantID: 3, AmountCents: 3},
		}}.Splits(1)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Share at limit", func(t *testing.T) {
		splits, err := CustomSplit{Shares: []Split{
			{ParticipantID: 1, AmountCents: utils.MaxAmountCents},
			{ParticipantID: 2, AmountCents: 0},
		}}.Splits(utils.MaxAmountCents)
		require.NoError(t, err)
		assert.Equal(t, utils.MaxAmountCents, splits[0].AmountCents)
	})

	t.Run("Share above limit", func(t *testing.T) {
		_, err := CustomSplit{Shares: []Split{
			{ParticipantID: 1, AmountCents: utils.MaxAmountCents + 1},
			{ParticipantID: 2, AmountCents: -1},
		}}.Splits(utils.MaxAmountCents)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestExpenseInput_BuildSplits(t *testing.T) {
	participants := testParticipants()
	base := ExpenseInput{
		PayerParticipantID: 1,
		AmountCents:        1000,
		ExpenseDate:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Split:              EvenSplit{ParticipantIDs: []int32{1, 2, 3}},
	}

	t.Run("Success", func(t *testing.T) {
		splits, err := base.BuildSplits(participants)
		require.NoError(t, err)
		assert.Len(t, splits, 3)
	})

	t.Run("Amount at limit", func(t *testing.T) {
		in := base
		in.AmountCents = utils.MaxAmountCents
		splits, err := in.BuildSplits(participants)
		require.NoError(t, err)
		var sum int64
		for _, s := range splits {
			sum += s.AmountCents
		}
		assert.Equal(t, utils.MaxAmountCents, sum)
	})

	tests := []struct {
		name   string
		mutate func(in *ExpenseInput)
	}{
		{"Zero amount", func(in *ExpenseInput) { in.AmountCents = 0 }},
		{"Negative amount", func(in *ExpenseInput) { in.AmountCents = -5 }},
		{"Amount above limit", func(in *ExpenseInput) { in.AmountCents = utils.MaxAmountCents + 1 }},
		{"Amount near int64 max", func(in *ExpenseInput) { in.AmountCents = math.MaxInt64 }},
		{"Unknown payer", func(in *ExpenseInput) { in.PayerParticipantID = 99 }},
		{"Missing split", func(in *ExpenseInput) { in.Split = nil }},
		{"Unknown split participant", func(in *ExpenseInput) {
			in.Split = EvenSplit{ParticipantIDs: []int32{1, 42}}
		}},
		{"Duplicate participant", func(in *ExpenseInput) {
			in.Split = CustomSplit{Shares: []Split{
				{ParticipantID: 1, AmountCents: 500},
				{ParticipantID: 1, AmountCents: 500},
			}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := in.BuildSplits(participants)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTransferStatus(t *testing.T) {
	transfer := Transfer{FromParticipantID: 2, ToParticipantID: 1, AmountCents: 333}

	assert.Equal(t, AcknowledgementStatusPending, TransferStatus(transfer, nil))

	ack := &Acknowledgement{FromParticipantID: 2, ToParticipantID: 1, AmountCents: 333, Status: AcknowledgementStatusAwaitingConfirmation}
	assert.Equal(t, AcknowledgementStatusAwaitingConfirmation, TransferStatus(transfer, ack))

	ack.Status = AcknowledgementStatusAcknowledged
	assert.Equal(t, AcknowledgementStatusAcknowledged, TransferStatus(transfer, ack))

	ack.AmountCents = 500
	assert.Equal(t, AcknowledgementStatusPending, TransferStatus(transfer, ack), "stale amount reads as pending")
}

func TestParticipantHelpers(t *testing.T) {
	participants := testParticipants()
	tab := &Tab{ID: 7, OwnerUserID: 10, Status: TabStatusActive}

	assert.Equal(t, "Bob", FindParticipant(participants, 2).DisplayName)
	assert.Nil(t, FindParticipant(participants, 9))
	assert.Equal(t, int32(1), ParticipantForUser(participants, 10).ID)
	assert.Nil(t, ParticipantForUser(participants, 11))
	assert.True(t, IsMember(tab, participants, 10))
	assert.False(t, IsMember(tab, participants, 11))
}
