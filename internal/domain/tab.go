package domain

import "time"

type TabStatus string

const (
	TabStatusActive TabStatus = "ACTIVE"
	TabStatusClosed TabStatus = "CLOSED"
)

type Tab struct {
	ID          int32      `json:"id"`
	Name        string     `json:"name"`
	OwnerUserID int32      `json:"owner_user_id"`
	Status      TabStatus  `json:"status"`
	ClosedAt    *time.Time `json:"closed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Tab) IsClosed() bool {
	return t.Status == TabStatusClosed
}

type Participant struct {
	ID          int32     `json:"id"`
	TabID       int32     `json:"tab_id"`
	DisplayName string    `json:"display_name"`
	UserID      *int32    `json:"user_id"` // NULL until a user claims the participant
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Participant) IsLinkedTo(userID int32) bool {
	return p.UserID != nil && *p.UserID == userID
}

// FindParticipant returns the participant with the given id, or nil.
func FindParticipant(participants []Participant, id int32) *Participant {
	for i := range participants {
		if participants[i].ID == id {
			return &participants[i]
		}
	}
	return nil
}

// ParticipantForUser returns the participant linked to userID, or nil.
func ParticipantForUser(participants []Participant, userID int32) *Participant {
	for i := range participants {
		if participants[i].IsLinkedTo(userID) {
			return &participants[i]
		}
	}
	return nil
}

// IsMember reports whether userID owns the tab or is linked to one of its participants.
func IsMember(tab *Tab, participants []Participant, userID int32) bool {
	if tab.OwnerUserID == userID {
		return true
	}
	return ParticipantForUser(participants, userID) != nil
}
