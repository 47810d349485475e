// Package settlement computes participant balances and the transfers that
// settle them. Everything here is pure and safe for concurrent use.
package settlement

import (
	"fmt"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/utils"
)

// ComputeBalances aggregates paid and owed totals for every participant.
//
// Algorithm:
// - every id in participantIDs starts at zero, in the order given
// - for each expense the payer's paid grows by the amount
// - each split grows that participant's owed
// - ids seen only in expenses are appended in first-seen order
// - net = paid - owed
//
// Any sum leaving int64 range fails with utils.ErrAmountOverflow.
func ComputeBalances(participantIDs []int32, expenses []domain.Expense) ([]domain.Balance, error) {
	balances := make([]domain.Balance, 0, len(participantIDs))
	index := make(map[int32]int, len(participantIDs))

	lookup := func(id int32) *domain.Balance {
		if i, ok := index[id]; ok {
			return &balances[i]
		}
		index[id] = len(balances)
		balances = append(balances, domain.Balance{ParticipantID: id})
		return &balances[len(balances)-1]
	}

	for _, id := range participantIDs {
		lookup(id)
	}

	for _, e := range expenses {
		payer := lookup(e.PayerParticipantID)
		paid, err := utils.AddCents(payer.PaidCents, e.AmountCents)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		payer.PaidCents = paid

		for _, s := range e.Splits {
			debtor := lookup(s.ParticipantID)
			owed, err := utils.AddCents(debtor.OwedCents, s.AmountCents)
			if err != nil {
				return nil, fmt.Errorf("expense %d: %w", e.ID, err)
			}
			debtor.OwedCents = owed
		}
	}

	for i := range balances {
		net, err := utils.AddCents(balances[i].PaidCents, -balances[i].OwedCents)
		if err != nil {
			return nil, fmt.Errorf("participant %d: %w", balances[i].ParticipantID, err)
		}
		balances[i].NetCents = net
	}
	return balances, nil
}
