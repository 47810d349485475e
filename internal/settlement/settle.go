package settlement

import "partytab-backend/internal/domain"

type party struct {
	id     int32
	amount int64 // outstanding debt or credit, always positive
}

// Settle reduces balances to a list of transfers with greedy matching: the
// largest debtor pays the largest creditor min(debt, credit) until everyone
// is square. Ties go to the participant that comes first in balances.
//
// The result has at most k-1 transfers for k nonzero balances. It is not
// guaranteed to be the minimum possible number of transfers.
func Settle(balances []domain.Balance) []domain.Transfer {
	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.NetCents < 0:
			debtors = append(debtors, party{id: b.ParticipantID, amount: -b.NetCents})
		case b.NetCents > 0:
			creditors = append(creditors, party{id: b.ParticipantID, amount: b.NetCents})
		}
	}

	transfers := []domain.Transfer{}
	for len(debtors) > 0 && len(creditors) > 0 {
		di := largest(debtors)
		ci := largest(creditors)

		amount := min(debtors[di].amount, creditors[ci].amount)
		transfers = append(transfers, domain.Transfer{
			FromParticipantID: debtors[di].id,
			ToParticipantID:   creditors[ci].id,
			AmountCents:       amount,
		})

		debtors[di].amount -= amount
		creditors[ci].amount -= amount
		if debtors[di].amount == 0 {
			debtors = remove(debtors, di)
		}
		if creditors[ci].amount == 0 {
			creditors = remove(creditors, ci)
		}
	}
	return transfers
}

// Find returns the transfer for the (from, to) pair, or nil when the current
// settlement has no such transfer.
func Find(transfers []domain.Transfer, from, to int32) *domain.Transfer {
	for i := range transfers {
		if transfers[i].FromParticipantID == from && transfers[i].ToParticipantID == to {
			return &transfers[i]
		}
	}
	return nil
}

// largest returns the index of the biggest amount. The earliest wins a tie.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].amount > parties[best].amount {
			best = i
		}
	}
	return best
}

// remove drops parties[i] keeping the remaining order intact.
func remove(parties []party, i int) []party {
	return append(parties[:i], parties[i+1:]...)
}
