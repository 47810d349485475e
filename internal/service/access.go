package service

import (
	"context"
	"fmt"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/repository"
)

// loadTab fetches a tab with its participants and checks that userID may see it.
func loadTab(ctx context.Context, tabRepo repository.TabRepository, participantRepo repository.ParticipantRepository, userID, tabID int32) (*domain.Tab, []domain.Participant, error) {
	tab, err := tabRepo.GetByID(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}

	participants, err := participantRepo.ListByTab(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}

	if !domain.IsMember(tab, participants, userID) {
		return nil, nil, fmt.Errorf("%w: user %d is not a member of tab %d", domain.ErrForbidden, userID, tabID)
	}
	return tab, participants, nil
}

func participantIDs(participants []domain.Participant) []int32 {
	ids := make([]int32, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}
