package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

type Store struct {
	db *sql.DB
	repository.TabRepository
	repository.ParticipantRepository
	repository.ExpenseRepository
	repository.AcknowledgementRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                        db,
		TabRepository:             NewTabRepository(db),
		ParticipantRepository:     NewParticipantRepository(db),
		ExpenseRepository:         NewExpenseRepository(db),
		AcknowledgementRepository: NewAcknowledgementRepository(db),
		NotificationRepository:    NewNotificationRepository(db),
	}
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	logger.DatabaseCall("MIGRATE", "*")
	_, err := s.db.ExecContext(ctx, schema)
	logger.DatabaseResult("MIGRATE", 0, err)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// translateError maps driver errors onto the domain sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrValidation, uniqueViolationMessage(pqErr.Constraint))
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: referenced record does not exist", domain.ErrValidation)
		case pqCheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrValidation, pqErr.Message)
		}
	}
	return err
}

func uniqueViolationMessage(constraint string) string {
	switch constraint {
	case "participants_tab_name_key":
		return "display name already used in this tab"
	case "participants_tab_user_key":
		return "user is already linked to a participant in this tab"
	case "expense_splits_pkey":
		return "participant appears twice in split"
	default:
		return "duplicate " + strings.TrimSuffix(constraint, "_key")
	}
}

// Helper function to convert empty string to SQL NULL
func nullString(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
