package service

import (
	"context"
	"fmt"
	"strings"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

const maxNoteLength = 500

type expenseService struct {
	tabRepo         repository.TabRepository
	participantRepo repository.ParticipantRepository
	expenseRepo     repository.ExpenseRepository
	settlementSvc   SettlementService
}

func NewExpenseService(
	tabRepo repository.TabRepository,
	participantRepo repository.ParticipantRepository,
	expenseRepo repository.ExpenseRepository,
	settlementSvc SettlementService,
) ExpenseService {
	return &expenseService{
		tabRepo:         tabRepo,
		participantRepo: participantRepo,
		expenseRepo:     expenseRepo,
		settlementSvc:   settlementSvc,
	}
}

func (s *expenseService) CreateExpense(ctx context.Context, userID, tabID int32, input domain.ExpenseInput) (*domain.Expense, error) {
	logger.EnterMethod("expenseService.CreateExpense", "userID", userID, "tabID", tabID, "amountCents", input.AmountCents)

	tab, participants, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID)
	if err != nil {
		logger.ExitMethodWithError("expenseService.CreateExpense", err, "tabID", tabID)
		return nil, err
	}
	if tab.IsClosed() {
		return nil, domain.ErrTabClosed
	}

	expense, err := buildExpense(input, participants)
	if err != nil {
		logger.ExitMethodWithError("expenseService.CreateExpense", err, "tabID", tabID)
		return nil, err
	}
	expense.TabID = tabID
	expense.CreatedByUserID = userID

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		logger.ExitMethodWithError("expenseService.CreateExpense", err, "tabID", tabID)
		return nil, err
	}

	s.reconcile(ctx, tabID)

	logger.ExitMethod("expenseService.CreateExpense", "expenseID", expense.ID)
	return expense, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, userID, tabID, expenseID int32, input domain.ExpenseInput) (*domain.Expense, error) {
	logger.EnterMethod("expenseService.UpdateExpense", "userID", userID, "tabID", tabID, "expenseID", expenseID)

	tab, existing, participants, err := s.loadForEdit(ctx, userID, tabID, expenseID)
	if err != nil {
		logger.ExitMethodWithError("expenseService.UpdateExpense", err, "expenseID", expenseID)
		return nil, err
	}

	expense, err := buildExpense(input, participants)
	if err != nil {
		return nil, err
	}
	expense.ID = existing.ID
	expense.TabID = tab.ID
	expense.CreatedByUserID = existing.CreatedByUserID
	expense.CreatedAt = existing.CreatedAt

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		logger.ExitMethodWithError("expenseService.UpdateExpense", err, "expenseID", expenseID)
		return nil, err
	}

	s.reconcile(ctx, tabID)

	logger.ExitMethod("expenseService.UpdateExpense", "expenseID", expenseID)
	return expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, userID, tabID, expenseID int32) error {
	logger.EnterMethod("expenseService.DeleteExpense", "userID", userID, "tabID", tabID, "expenseID", expenseID)

	if _, _, _, err := s.loadForEdit(ctx, userID, tabID, expenseID); err != nil {
		logger.ExitMethodWithError("expenseService.DeleteExpense", err, "expenseID", expenseID)
		return err
	}

	if err := s.expenseRepo.Delete(ctx, tabID, expenseID); err != nil {
		logger.ExitMethodWithError("expenseService.DeleteExpense", err, "expenseID", expenseID)
		return err
	}

	s.reconcile(ctx, tabID)

	logger.ExitMethod("expenseService.DeleteExpense", "expenseID", expenseID)
	return nil
}

func (s *expenseService) GetExpense(ctx context.Context, userID, tabID, expenseID int32) (*domain.Expense, error) {
	if _, _, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID); err != nil {
		return nil, err
	}
	return s.expenseRepo.GetByID(ctx, tabID, expenseID)
}

func (s *expenseService) ListExpenses(ctx context.Context, userID, tabID int32) ([]domain.Expense, error) {
	if _, _, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID); err != nil {
		return nil, err
	}
	return s.expenseRepo.ListByTab(ctx, tabID)
}

// loadForEdit checks that the tab is open and that userID created the expense or owns the tab.
func (s *expenseService) loadForEdit(ctx context.Context, userID, tabID, expenseID int32) (*domain.Tab, *domain.Expense, []domain.Participant, error) {
	tab, participants, err := loadTab(ctx, s.tabRepo, s.participantRepo, userID, tabID)
	if err != nil {
		return nil, nil, nil, err
	}
	if tab.IsClosed() {
		return nil, nil, nil, domain.ErrTabClosed
	}

	expense, err := s.expenseRepo.GetByID(ctx, tabID, expenseID)
	if err != nil {
		return nil, nil, nil, err
	}
	if expense.CreatedByUserID != userID && tab.OwnerUserID != userID {
		return nil, nil, nil, fmt.Errorf("%w: only the creator or the tab owner can change an expense", domain.ErrForbidden)
	}
	return tab, expense, participants, nil
}

// reconcile drops acknowledgements invalidated by an expense write. Failures
// are logged only; reads never trust a stale acknowledgement.
func (s *expenseService) reconcile(ctx context.Context, tabID int32) {
	removed, err := s.settlementSvc.ReconcileTab(ctx, tabID)
	if err != nil {
		logger.Warn("Failed to reconcile acknowledgements after expense change", "tabID", tabID, "error", err)
		return
	}
	if removed > 0 {
		logger.Info("Invalidated acknowledgements after expense change", "tabID", tabID, "count", removed)
	}
}

func buildExpense(input domain.ExpenseInput, participants []domain.Participant) (*domain.Expense, error) {
	note := strings.TrimSpace(input.Note)
	if len([]rune(note)) > maxNoteLength {
		return nil, fmt.Errorf("%w: note is longer than %d characters", domain.ErrValidation, maxNoteLength)
	}
	if input.ExpenseDate.IsZero() {
		return nil, fmt.Errorf("%w: expense date is required", domain.ErrValidation)
	}

	splits, err := input.BuildSplits(participants)
	if err != nil {
		return nil, err
	}

	return &domain.Expense{
		PayerParticipantID: input.PayerParticipantID,
		AmountCents:        input.AmountCents,
		ExpenseDate:        input.ExpenseDate,
		Note:               note,
		Splits:             splits,
	}, nil
}
