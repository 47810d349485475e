package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

const maxDisplayNameLength = 100

type tabService struct {
	tabRepo          repository.TabRepository
	participantRepo  repository.ParticipantRepository
	notificationRepo repository.NotificationRepository
}

func NewTabService(tabRepo repository.TabRepository, participantRepo repository.ParticipantRepository, notificationRepo repository.NotificationRepository) TabService {
	return &tabService{
		tabRepo:          tabRepo,
		participantRepo:  participantRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *tabService) CreateTab(ctx context.Context, userID int32, name, ownerDisplayName string, participantNames []string) (*domain.Tab, []domain.Participant, error) {
	logger.EnterMethod("tabService.CreateTab", "userID", userID, "name", name, "participants", len(participantNames))

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: tab name is required", domain.ErrValidation)
	}

	names := append([]string{ownerDisplayName}, participantNames...)
	seen := make(map[string]bool, len(names))
	participants := make([]domain.Participant, 0, len(names))
	for i, raw := range names {
		n, err := cleanDisplayName(raw)
		if err != nil {
			return nil, nil, err
		}
		key := strings.ToLower(n)
		if seen[key] {
			return nil, nil, fmt.Errorf("%w: duplicate participant name %q", domain.ErrValidation, n)
		}
		seen[key] = true

		p := domain.Participant{DisplayName: n}
		if i == 0 {
			owner := userID
			p.UserID = &owner
		}
		participants = append(participants, p)
	}

	tab := &domain.Tab{
		Name:        name,
		OwnerUserID: userID,
		Status:      domain.TabStatusActive,
	}
	if err := s.tabRepo.Create(ctx, tab, participants); err != nil {
		logger.ExitMethodWithError("tabService.CreateTab", err, "userID", userID)
		return nil, nil, err
	}

	logger.Info("Tab created", "tabID", tab.ID, "ownerUserID", userID, "participants", len(participants))
	logger.ExitMethod("tabService.CreateTab", "tabID", tab.ID)
	return tab, participants, nil
}

func (s *tabService) GetTab(ctx context.Context, userID, tabID int32) (*domain.Tab, []domain.Participant, error) {
	return loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID)
}

func (s *tabService) ListTabs(ctx context.Context, userID int32) ([]domain.Tab, error) {
	return s.tabRepo.ListByUser(ctx, userID)
}

func (s *tabService) AddParticipant(ctx context.Context, userID, tabID int32, displayName string) (*domain.Participant, error) {
	logger.EnterMethod("tabService.AddParticipant", "userID", userID, "tabID", tabID)

	tab, participants, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID)
	if err != nil {
		logger.ExitMethodWithError("tabService.AddParticipant", err, "tabID", tabID)
		return nil, err
	}
	if tab.OwnerUserID != userID {
		return nil, fmt.Errorf("%w: only the tab owner can add participants", domain.ErrForbidden)
	}
	if tab.IsClosed() {
		return nil, domain.ErrTabClosed
	}

	name, err := cleanDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		if strings.EqualFold(p.DisplayName, name) {
			return nil, fmt.Errorf("%w: duplicate participant name %q", domain.ErrValidation, name)
		}
	}

	p := &domain.Participant{TabID: tabID, DisplayName: name}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("tabService.AddParticipant", err, "tabID", tabID)
		return nil, err
	}

	logger.ExitMethod("tabService.AddParticipant", "participantID", p.ID)
	return p, nil
}

// ClaimParticipant links the caller to an unlinked participant. Any signed-in
// user may claim, which is how people who were added by name join a tab. The
// owner is notified of every claim.
func (s *tabService) ClaimParticipant(ctx context.Context, userID, tabID, participantID int32) (*domain.Participant, error) {
	logger.EnterMethod("tabService.ClaimParticipant", "userID", userID, "tabID", tabID, "participantID", participantID)

	tab, err := s.tabRepo.GetByID(ctx, tabID)
	if err != nil {
		logger.ExitMethodWithError("tabService.ClaimParticipant", err, "tabID", tabID)
		return nil, err
	}
	if tab.IsClosed() {
		return nil, domain.ErrTabClosed
	}

	participants, err := s.participantRepo.ListByTab(ctx, tabID)
	if err != nil {
		return nil, err
	}
	p := domain.FindParticipant(participants, participantID)
	if p == nil {
		return nil, fmt.Errorf("%w: participant %d", domain.ErrNotFound, participantID)
	}
	if p.UserID != nil {
		return nil, fmt.Errorf("%w: participant is already claimed", domain.ErrValidation)
	}
	if domain.ParticipantForUser(participants, userID) != nil {
		return nil, fmt.Errorf("%w: user is already linked to a participant in this tab", domain.ErrValidation)
	}

	if err := s.participantRepo.Link(ctx, tabID, participantID, userID); err != nil {
		logger.ExitMethodWithError("tabService.ClaimParticipant", err, "participantID", participantID)
		return nil, err
	}

	claimed := *p
	claimed.UserID = &userID

	if tab.OwnerUserID != userID {
		n := &domain.Notification{
			UserID:  tab.OwnerUserID,
			TabID:   tabID,
			Title:   "Participant claimed",
			Message: fmt.Sprintf("%s in %s was claimed by another account.", p.DisplayName, tab.Name),
			Attributes: map[string]string{
				"topic":          "tab_participant_claimed",
				"tab_id":         strconv.Itoa(int(tabID)),
				"participant_id": strconv.Itoa(int(participantID)),
				"claimed_by":     strconv.Itoa(int(userID)),
			},
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			logger.Warn("Failed to notify owner of claim", "tabID", tabID, "participantID", participantID, "error", err)
		}
	}

	logger.ExitMethod("tabService.ClaimParticipant", "participantID", participantID)
	return &claimed, nil
}

func (s *tabService) CloseTab(ctx context.Context, userID, tabID int32) (*domain.Tab, error) {
	logger.EnterMethod("tabService.CloseTab", "userID", userID, "tabID", tabID)

	tab, err := s.tabRepo.GetByID(ctx, tabID)
	if err != nil {
		logger.ExitMethodWithError("tabService.CloseTab", err, "tabID", tabID)
		return nil, err
	}
	if tab.OwnerUserID != userID {
		return nil, fmt.Errorf("%w: only the tab owner can close it", domain.ErrForbidden)
	}
	if tab.IsClosed() {
		return nil, domain.ErrTabClosed
	}

	now := time.Now()
	if err := s.tabRepo.Close(ctx, tabID, now); err != nil {
		logger.ExitMethodWithError("tabService.CloseTab", err, "tabID", tabID)
		return nil, err
	}

	tab.Status = domain.TabStatusClosed
	tab.ClosedAt = &now
	tab.UpdatedAt = now

	logger.Info("Tab closed", "tabID", tabID, "userID", userID)
	logger.ExitMethod("tabService.CloseTab", "tabID", tabID)
	return tab, nil
}

func cleanDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: participant name is required", domain.ErrValidation)
	}
	if len([]rune(name)) > maxDisplayNameLength {
		return "", fmt.Errorf("%w: participant name is longer than %d characters", domain.ErrValidation, maxDisplayNameLength)
	}
	return name, nil
}
