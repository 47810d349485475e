package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/metrics"
	"partytab-backend/internal/repository"
	"partytab-backend/internal/settlement"
	"partytab-backend/internal/utils"
)

type settlementService struct {
	tabRepo          repository.TabRepository
	participantRepo  repository.ParticipantRepository
	expenseRepo      repository.ExpenseRepository
	ackRepo          repository.AcknowledgementRepository
	notificationRepo repository.NotificationRepository
	metrics          *metrics.Metrics
}

func NewSettlementService(
	tabRepo repository.TabRepository,
	participantRepo repository.ParticipantRepository,
	expenseRepo repository.ExpenseRepository,
	ackRepo repository.AcknowledgementRepository,
	notificationRepo repository.NotificationRepository,
	m *metrics.Metrics,
) SettlementService {
	return &settlementService{
		tabRepo:          tabRepo,
		participantRepo:  participantRepo,
		expenseRepo:      expenseRepo,
		ackRepo:          ackRepo,
		notificationRepo: notificationRepo,
		metrics:          m,
	}
}

// compute derives balances and transfers from the tab's current expenses.
func (s *settlementService) compute(ctx context.Context, tabID int32, participants []domain.Participant) ([]domain.Balance, []domain.Transfer, error) {
	expenses, err := s.expenseRepo.ListByTab(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}

	balances, err := settlement.ComputeBalances(participantIDs(participants), expenses)
	if err != nil {
		return nil, nil, fmt.Errorf("tab %d balances: %w", tabID, err)
	}
	transfers := settlement.Settle(balances)
	s.metrics.SettlementComputed(len(transfers))
	return balances, transfers, nil
}

func (s *settlementService) GetSettlement(ctx context.Context, userID, tabID int32) (*domain.Settlement, error) {
	logger.EnterMethod("settlementService.GetSettlement", "userID", userID, "tabID", tabID)

	_, participants, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.GetSettlement", err, "tabID", tabID)
		return nil, err
	}

	balances, transfers, err := s.compute(ctx, tabID, participants)
	if err != nil {
		logger.ExitMethodWithError("settlementService.GetSettlement", err, "tabID", tabID)
		return nil, err
	}

	acks, err := s.ackRepo.ListByTab(ctx, tabID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.GetSettlement", err, "tabID", tabID)
		return nil, err
	}

	result := &domain.Settlement{
		TabID:     tabID,
		Balances:  balances,
		Transfers: make([]domain.SettlementTransfer, 0, len(transfers)),
	}
	for _, t := range transfers {
		ack := domain.FindAcknowledgement(acks, t.FromParticipantID, t.ToParticipantID)
		view := domain.SettlementTransfer{Transfer: t, Status: domain.TransferStatus(t, ack)}
		if view.Status != domain.AcknowledgementStatusPending {
			view.MarkedPaidAt = ack.MarkedPaidAt
			view.ConfirmedAt = ack.ConfirmedAt
		}
		result.Transfers = append(result.Transfers, view)
	}

	logger.ExitMethod("settlementService.GetSettlement", "tabID", tabID, "transfers", len(transfers))
	return result, nil
}

func (s *settlementService) ListAcknowledgements(ctx context.Context, userID, tabID int32) ([]domain.Acknowledgement, []domain.AcknowledgementAction, error) {
	if _, _, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID); err != nil {
		return nil, nil, err
	}

	acks, err := s.ackRepo.ListByTab(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}
	actions, err := s.ackRepo.ListActions(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}
	return acks, actions, nil
}

// currentTransfer loads the tab and finds the (from, to) transfer in its
// freshly computed settlement.
func (s *settlementService) currentTransfer(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.Tab, []domain.Participant, *domain.Transfer, error) {
	tab, participants, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID)
	if err != nil {
		return nil, nil, nil, err
	}

	_, transfers, err := s.compute(ctx, tabID, participants)
	if err != nil {
		return nil, nil, nil, err
	}

	transfer := settlement.Find(transfers, fromID, toID)
	if transfer == nil {
		return nil, nil, nil, domain.ErrSettlementChanged
	}
	return tab, participants, transfer, nil
}

func (s *settlementService) MarkPaid(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error) {
	logger.EnterMethod("settlementService.MarkPaid", "userID", userID, "tabID", tabID, "fromID", fromID, "toID", toID)

	tab, participants, transfer, err := s.currentTransfer(ctx, userID, tabID, fromID, toID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.MarkPaid", err, "tabID", tabID)
		return nil, err
	}

	payer := domain.FindParticipant(participants, fromID)
	payee := domain.FindParticipant(participants, toID)
	if !payer.IsLinkedTo(userID) && tab.OwnerUserID != userID {
		err := fmt.Errorf("%w: only %s or the tab owner can mark this transfer paid", domain.ErrForbidden, payer.DisplayName)
		logger.ExitMethodWithError("settlementService.MarkPaid", err, "tabID", tabID)
		return nil, err
	}

	existing, err := s.ackRepo.GetByPair(ctx, tabID, fromID, toID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.ExitMethodWithError("settlementService.MarkPaid", err, "tabID", tabID)
		return nil, err
	}
	if existing != nil && existing.Matches(*transfer) {
		return nil, fmt.Errorf("%w: transfer is already %s", domain.ErrInvalidTransition, existing.Status)
	}

	now := time.Now()
	ack := &domain.Acknowledgement{
		TabID:             tabID,
		FromParticipantID: fromID,
		ToParticipantID:   toID,
		AmountCents:       transfer.AmountCents,
		MarkedPaidAt:      &now,
		MarkedPaidBy:      &userID,
	}
	if err := s.ackRepo.MarkPaid(ctx, ack); err != nil {
		logger.ExitMethodWithError("settlementService.MarkPaid", err, "tabID", tabID)
		return nil, err
	}
	s.metrics.AcknowledgementTransition(domain.AckActionMarkedPaid)

	notes := fmt.Sprintf("%s marked %s as paid to %s", payer.DisplayName, utils.FormatCents(transfer.AmountCents), payee.DisplayName)
	if existing != nil {
		notes += fmt.Sprintf(" (replaces stale acknowledgement of %s)", utils.FormatCents(existing.AmountCents))
	}
	s.recordAction(ctx, ack, &userID, domain.AckActionMarkedPaid, notes)

	s.notify(ctx, payee.UserID, userID, &domain.Notification{
		TabID:   tabID,
		Title:   "Payment marked as sent",
		Message: fmt.Sprintf("%s marked a payment of %s to you as sent. Please confirm once you have received it.", payer.DisplayName, utils.FormatCents(transfer.AmountCents)),
		Attributes: map[string]string{
			"topic":               "settlement_marked_paid",
			"tab_id":              strconv.Itoa(int(tabID)),
			"from_participant_id": strconv.Itoa(int(fromID)),
			"to_participant_id":   strconv.Itoa(int(toID)),
			"amount_cents":        strconv.FormatInt(transfer.AmountCents, 10),
		},
	})

	logger.Info("Transfer marked paid", "tabID", tabID, "fromID", fromID, "toID", toID, "amountCents", transfer.AmountCents, "userID", userID)
	logger.ExitMethod("settlementService.MarkPaid", "acknowledgementID", ack.ID)
	return &domain.SettlementTransfer{
		Transfer:     *transfer,
		Status:       domain.AcknowledgementStatusAwaitingConfirmation,
		MarkedPaidAt: ack.MarkedPaidAt,
	}, nil
}

func (s *settlementService) ConfirmReceived(ctx context.Context, userID, tabID, fromID, toID int32) (*domain.SettlementTransfer, error) {
	logger.EnterMethod("settlementService.ConfirmReceived", "userID", userID, "tabID", tabID, "fromID", fromID, "toID", toID)

	tab, participants, transfer, err := s.currentTransfer(ctx, userID, tabID, fromID, toID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.ConfirmReceived", err, "tabID", tabID)
		return nil, err
	}

	payer := domain.FindParticipant(participants, fromID)
	payee := domain.FindParticipant(participants, toID)
	onBehalf := payee.UserID == nil && tab.OwnerUserID == userID
	if !payee.IsLinkedTo(userID) && !onBehalf {
		err := fmt.Errorf("%w: only %s can confirm receiving this transfer", domain.ErrForbidden, payee.DisplayName)
		logger.ExitMethodWithError("settlementService.ConfirmReceived", err, "tabID", tabID)
		return nil, err
	}

	ack, err := s.ackRepo.GetByPair(ctx, tabID, fromID, toID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: transfer has not been marked paid", domain.ErrInvalidTransition)
	}
	if err != nil {
		logger.ExitMethodWithError("settlementService.ConfirmReceived", err, "tabID", tabID)
		return nil, err
	}
	if !ack.Matches(*transfer) {
		return nil, fmt.Errorf("%w: transfer amount changed since it was marked paid", domain.ErrSettlementChanged)
	}
	if ack.Status == domain.AcknowledgementStatusAcknowledged {
		return nil, fmt.Errorf("%w: transfer is already confirmed", domain.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.ackRepo.Confirm(ctx, ack.ID, ack.AmountCents, userID, now); err != nil {
		logger.ExitMethodWithError("settlementService.ConfirmReceived", err, "acknowledgementID", ack.ID)
		return nil, err
	}
	s.metrics.AcknowledgementTransition(domain.AckActionConfirmedReceived)

	notes := fmt.Sprintf("%s confirmed receiving %s from %s", payee.DisplayName, utils.FormatCents(ack.AmountCents), payer.DisplayName)
	if onBehalf {
		notes += " (confirmed by tab owner)"
	}
	s.recordAction(ctx, ack, &userID, domain.AckActionConfirmedReceived, notes)

	s.notify(ctx, payer.UserID, userID, &domain.Notification{
		TabID:   tabID,
		Title:   "Payment receipt confirmed",
		Message: fmt.Sprintf("%s confirmed receiving your payment of %s.", payee.DisplayName, utils.FormatCents(ack.AmountCents)),
		Attributes: map[string]string{
			"topic":               "settlement_receipt_confirmed",
			"tab_id":              strconv.Itoa(int(tabID)),
			"from_participant_id": strconv.Itoa(int(fromID)),
			"to_participant_id":   strconv.Itoa(int(toID)),
			"amount_cents":        strconv.FormatInt(ack.AmountCents, 10),
		},
	})

	logger.Info("Transfer confirmed", "tabID", tabID, "fromID", fromID, "toID", toID, "amountCents", ack.AmountCents, "userID", userID)
	logger.ExitMethod("settlementService.ConfirmReceived", "acknowledgementID", ack.ID)
	return &domain.SettlementTransfer{
		Transfer:     *transfer,
		Status:       domain.AcknowledgementStatusAcknowledged,
		MarkedPaidAt: ack.MarkedPaidAt,
		ConfirmedAt:  &now,
	}, nil
}

func (s *settlementService) ReconcileTab(ctx context.Context, tabID int32) (int, error) {
	logger.EnterMethod("settlementService.ReconcileTab", "tabID", tabID)

	acks, err := s.ackRepo.ListByTab(ctx, tabID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.ReconcileTab", err, "tabID", tabID)
		return 0, err
	}
	if len(acks) == 0 {
		logger.ExitMethod("settlementService.ReconcileTab", "tabID", tabID, "removed", 0)
		return 0, nil
	}

	participants, err := s.participantRepo.ListByTab(ctx, tabID)
	if err != nil {
		logger.ExitMethodWithError("settlementService.ReconcileTab", err, "tabID", tabID)
		return 0, err
	}
	_, transfers, err := s.compute(ctx, tabID, participants)
	if err != nil {
		logger.ExitMethodWithError("settlementService.ReconcileTab", err, "tabID", tabID)
		return 0, err
	}

	removed := 0
	for i := range acks {
		ack := &acks[i]
		transfer := settlement.Find(transfers, ack.FromParticipantID, ack.ToParticipantID)
		if transfer != nil && ack.Matches(*transfer) {
			continue
		}

		notes := "transfer is no longer part of the settlement"
		if transfer != nil {
			notes = fmt.Sprintf("transfer amount changed from %s to %s",
				utils.FormatCents(ack.AmountCents), utils.FormatCents(transfer.AmountCents))
		}

		ok, err := s.ackRepo.Invalidate(ctx, ack, notes)
		if err != nil {
			logger.ExitMethodWithError("settlementService.ReconcileTab", err, "tabID", tabID, "acknowledgementID", ack.ID)
			return removed, err
		}
		if ok {
			removed++
			s.metrics.AcknowledgementTransition(domain.AckActionInvalidated)
		}
	}

	logger.ExitMethod("settlementService.ReconcileTab", "tabID", tabID, "removed", removed)
	return removed, nil
}

func (s *settlementService) RemindAwaitingConfirmations(ctx context.Context, markedBefore time.Time) (int, error) {
	logger.EnterMethod("settlementService.RemindAwaitingConfirmations", "markedBefore", markedBefore)

	acks, err := s.ackRepo.ListAwaitingSince(ctx, markedBefore)
	if err != nil {
		logger.ExitMethodWithError("settlementService.RemindAwaitingConfirmations", err)
		return 0, err
	}

	type tabState struct {
		participants []domain.Participant
		transfers    []domain.Transfer
	}
	tabs := make(map[int32]*tabState)
	sent, stale := 0, 0
	for i := range acks {
		ack := &acks[i]
		state, ok := tabs[ack.TabID]
		if !ok {
			participants, err := s.participantRepo.ListByTab(ctx, ack.TabID)
			if err != nil {
				logger.Warn("Failed to load participants for reminder", "tabID", ack.TabID, "error", err)
				continue
			}
			_, transfers, err := s.compute(ctx, ack.TabID, participants)
			if err != nil {
				logger.Warn("Failed to compute settlement for reminder", "tabID", ack.TabID, "error", err)
				continue
			}
			state = &tabState{participants: participants, transfers: transfers}
			tabs[ack.TabID] = state
		}

		// Rows the settlement has moved past read as PENDING; reconciliation
		// removes them, so no one is asked to confirm them.
		transfer := settlement.Find(state.transfers, ack.FromParticipantID, ack.ToParticipantID)
		if transfer == nil || !ack.Matches(*transfer) {
			stale++
			continue
		}

		payer := domain.FindParticipant(state.participants, ack.FromParticipantID)
		payee := domain.FindParticipant(state.participants, ack.ToParticipantID)
		if payer == nil || payee == nil || payee.UserID == nil {
			continue
		}

		n := &domain.Notification{
			UserID:  *payee.UserID,
			TabID:   ack.TabID,
			Title:   "Payment awaiting your confirmation",
			Message: fmt.Sprintf("%s marked a payment of %s to you as sent. Please confirm whether you received it.", payer.DisplayName, utils.FormatCents(ack.AmountCents)),
			Attributes: map[string]string{
				"topic":              "settlement_confirmation_reminder",
				"tab_id":             strconv.Itoa(int(ack.TabID)),
				"acknowledgement_id": strconv.Itoa(int(ack.ID)),
				"amount_cents":       strconv.FormatInt(ack.AmountCents, 10),
			},
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			logger.Warn("Failed to create confirmation reminder", "acknowledgementID", ack.ID, "error", err)
			continue
		}
		sent++
	}

	logger.ExitMethod("settlementService.RemindAwaitingConfirmations", "awaiting", len(acks), "stale", stale, "sent", sent)
	return sent, nil
}

// recordAction appends to the audit trail. The transition already happened,
// so a failure here is logged and not returned.
func (s *settlementService) recordAction(ctx context.Context, ack *domain.Acknowledgement, actor *int32, actionType domain.AcknowledgementActionType, notes string) {
	action := &domain.AcknowledgementAction{
		AcknowledgementID: ack.ID,
		TabID:             ack.TabID,
		ActorUserID:       actor,
		ActionType:        actionType,
		AmountCents:       ack.AmountCents,
		Notes:             notes,
	}
	if err := s.ackRepo.CreateAction(ctx, action); err != nil {
		logger.Warn("Failed to record acknowledgement action", "acknowledgementID", ack.ID, "actionType", actionType, "error", err)
	}
}

// notify creates an in-app notification for the other party, if they have an
// account and are not the one acting.
func (s *settlementService) notify(ctx context.Context, recipient *int32, actorUserID int32, n *domain.Notification) {
	if recipient == nil || *recipient == actorUserID {
		return
	}
	n.UserID = *recipient
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logger.Warn("Failed to create notification", "userID", n.UserID, "tabID", n.TabID, "error", err)
	}
}
