package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

type acknowledgementRepository struct {
	db *sql.DB
}

func NewAcknowledgementRepository(db *sql.DB) repository.AcknowledgementRepository {
	return &acknowledgementRepository{db: db}
}

const ackColumns = `id, tab_id, from_participant_id, to_participant_id, amount_cents, status,
	marked_paid_at, marked_paid_by_user_id, confirmed_at, confirmed_by_user_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAcknowledgement(s scanner, a *domain.Acknowledgement) error {
	return s.Scan(
		&a.ID, &a.TabID, &a.FromParticipantID, &a.ToParticipantID, &a.AmountCents, &a.Status,
		&a.MarkedPaidAt, &a.MarkedPaidBy, &a.ConfirmedAt, &a.ConfirmedBy, &a.CreatedAt, &a.UpdatedAt,
	)
}

// MarkPaid upserts on the (tab, from, to) key. The conflict branch only fires
// when the stored amount differs, so a concurrent mark for the same amount
// returns no row.
func (r *acknowledgementRepository) MarkPaid(ctx context.Context, ack *domain.Acknowledgement) error {
	logger.EnterMethod("acknowledgementRepository.MarkPaid", "tabID", ack.TabID,
		"fromID", ack.FromParticipantID, "toID", ack.ToParticipantID, "amountCents", ack.AmountCents)

	query := `
		INSERT INTO acknowledgements (
			tab_id, from_participant_id, to_participant_id, amount_cents, status,
			marked_paid_at, marked_paid_by_user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $6, $6)
		ON CONFLICT (tab_id, from_participant_id, to_participant_id) DO UPDATE SET
			amount_cents = EXCLUDED.amount_cents,
			status = EXCLUDED.status,
			marked_paid_at = EXCLUDED.marked_paid_at,
			marked_paid_by_user_id = EXCLUDED.marked_paid_by_user_id,
			confirmed_at = NULL,
			confirmed_by_user_id = NULL,
			updated_at = EXCLUDED.updated_at
		WHERE acknowledgements.amount_cents <> EXCLUDED.amount_cents
		RETURNING id, created_at, updated_at
	`
	ack.Status = domain.AcknowledgementStatusAwaitingConfirmation
	ack.ConfirmedAt = nil
	ack.ConfirmedBy = nil

	logger.DatabaseCall("UPSERT", "acknowledgements", "tabID", ack.TabID)
	err := r.db.QueryRowContext(ctx, query,
		ack.TabID, ack.FromParticipantID, ack.ToParticipantID, ack.AmountCents, ack.Status,
		ack.MarkedPaidAt, ack.MarkedPaidBy,
	).Scan(&ack.ID, &ack.CreatedAt, &ack.UpdatedAt)
	logger.DatabaseResult("UPSERT", 1, err, "acknowledgementID", ack.ID)

	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethodWithError("acknowledgementRepository.MarkPaid", domain.ErrInvalidTransition, "tabID", ack.TabID)
		return domain.ErrInvalidTransition
	}
	if err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.MarkPaid", err, "tabID", ack.TabID)
		return translateError(err)
	}

	logger.ExitMethod("acknowledgementRepository.MarkPaid", "acknowledgementID", ack.ID)
	return nil
}

func (r *acknowledgementRepository) Confirm(ctx context.Context, id int32, amountCents int64, userID int32, at time.Time) error {
	logger.EnterMethod("acknowledgementRepository.Confirm", "acknowledgementID", id, "userID", userID)

	query := `
		UPDATE acknowledgements SET
			status = $1,
			confirmed_at = $2,
			confirmed_by_user_id = $3,
			updated_at = $2
		WHERE id = $4 AND status = $5 AND amount_cents = $6
	`
	logger.DatabaseCall("UPDATE", "acknowledgements", "acknowledgementID", id)
	result, err := r.db.ExecContext(ctx, query,
		domain.AcknowledgementStatusAcknowledged, at, userID,
		id, domain.AcknowledgementStatusAwaitingConfirmation, amountCents,
	)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "acknowledgementID", id)
		logger.ExitMethodWithError("acknowledgementRepository.Confirm", err, "acknowledgementID", id)
		return err
	}

	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "acknowledgementID", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.ExitMethodWithError("acknowledgementRepository.Confirm", domain.ErrInvalidTransition, "acknowledgementID", id)
		return domain.ErrInvalidTransition
	}

	logger.ExitMethod("acknowledgementRepository.Confirm", "acknowledgementID", id)
	return nil
}

func (r *acknowledgementRepository) GetByPair(ctx context.Context, tabID, fromID, toID int32) (*domain.Acknowledgement, error) {
	logger.EnterMethod("acknowledgementRepository.GetByPair", "tabID", tabID, "fromID", fromID, "toID", toID)

	query := `SELECT ` + ackColumns + ` FROM acknowledgements
	          WHERE tab_id = $1 AND from_participant_id = $2 AND to_participant_id = $3`
	ack := &domain.Acknowledgement{}
	if err := scanAcknowledgement(r.db.QueryRowContext(ctx, query, tabID, fromID, toID), ack); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.ExitMethodWithError("acknowledgementRepository.GetByPair", err, "tabID", tabID)
		}
		return nil, translateError(err)
	}

	logger.ExitMethod("acknowledgementRepository.GetByPair", "acknowledgementID", ack.ID, "status", ack.Status)
	return ack, nil
}

func (r *acknowledgementRepository) ListByTab(ctx context.Context, tabID int32) ([]domain.Acknowledgement, error) {
	logger.EnterMethod("acknowledgementRepository.ListByTab", "tabID", tabID)

	query := `SELECT ` + ackColumns + ` FROM acknowledgements WHERE tab_id = $1 ORDER BY id`
	acks, err := r.list(ctx, query, tabID)
	if err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.ListByTab", err, "tabID", tabID)
		return nil, err
	}

	logger.ExitMethod("acknowledgementRepository.ListByTab", "tabID", tabID, "count", len(acks))
	return acks, nil
}

func (r *acknowledgementRepository) ListAwaitingSince(ctx context.Context, markedBefore time.Time) ([]domain.Acknowledgement, error) {
	logger.EnterMethod("acknowledgementRepository.ListAwaitingSince", "markedBefore", markedBefore)

	query := `SELECT ` + ackColumns + ` FROM acknowledgements
	          WHERE status = $1 AND marked_paid_at < $2 ORDER BY marked_paid_at, id`
	acks, err := r.list(ctx, query, domain.AcknowledgementStatusAwaitingConfirmation, markedBefore)
	if err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.ListAwaitingSince", err)
		return nil, err
	}

	logger.ExitMethod("acknowledgementRepository.ListAwaitingSince", "count", len(acks))
	return acks, nil
}

func (r *acknowledgementRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Acknowledgement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	acks := []domain.Acknowledgement{}
	for rows.Next() {
		var a domain.Acknowledgement
		if err := scanAcknowledgement(rows, &a); err != nil {
			return nil, err
		}
		acks = append(acks, a)
	}
	return acks, rows.Err()
}

func (r *acknowledgementRepository) Invalidate(ctx context.Context, ack *domain.Acknowledgement, notes string) (bool, error) {
	logger.EnterMethod("acknowledgementRepository.Invalidate", "acknowledgementID", ack.ID, "amountCents", ack.AmountCents)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.Invalidate", err, "reason", "failed to begin transaction")
		return false, err
	}
	defer tx.Rollback()

	actionQuery := `INSERT INTO acknowledgement_actions (acknowledgement_id, tab_id, actor_user_id, action_type, amount_cents, notes, created_at)
	                VALUES ($1, $2, NULL, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, actionQuery,
		ack.ID, ack.TabID, domain.AckActionInvalidated, ack.AmountCents, nullString(notes), time.Now(),
	); err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.Invalidate", err, "acknowledgementID", ack.ID)
		return false, err
	}

	logger.DatabaseCall("DELETE", "acknowledgements", "acknowledgementID", ack.ID)
	result, err := tx.ExecContext(ctx, `DELETE FROM acknowledgements WHERE id = $1 AND amount_cents = $2`, ack.ID, ack.AmountCents)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "acknowledgementID", ack.ID)
		logger.ExitMethodWithError("acknowledgementRepository.Invalidate", err, "acknowledgementID", ack.ID)
		return false, err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("DELETE", rows, err, "acknowledgementID", ack.ID)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// Re-marked with a new amount since it was read; nothing to invalidate.
		logger.ExitMethod("acknowledgementRepository.Invalidate", "acknowledgementID", ack.ID, "removed", false)
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.Invalidate", err, "reason", "failed to commit")
		return false, err
	}

	logger.ExitMethod("acknowledgementRepository.Invalidate", "acknowledgementID", ack.ID, "removed", true)
	return true, nil
}

func (r *acknowledgementRepository) CreateAction(ctx context.Context, action *domain.AcknowledgementAction) error {
	logger.EnterMethod("acknowledgementRepository.CreateAction", "acknowledgementID", action.AcknowledgementID, "actionType", action.ActionType)

	query := `
		INSERT INTO acknowledgement_actions (
			acknowledgement_id, tab_id, actor_user_id, action_type, amount_cents, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		action.AcknowledgementID, action.TabID, action.ActorUserID, action.ActionType,
		action.AmountCents, nullString(action.Notes), time.Now(),
	).Scan(&action.ID, &action.CreatedAt)

	if err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.CreateAction", err, "acknowledgementID", action.AcknowledgementID)
		return err
	}

	logger.ExitMethod("acknowledgementRepository.CreateAction", "actionID", action.ID)
	return nil
}

func (r *acknowledgementRepository) ListActions(ctx context.Context, tabID int32) ([]domain.AcknowledgementAction, error) {
	logger.EnterMethod("acknowledgementRepository.ListActions", "tabID", tabID)

	query := `
		SELECT id, acknowledgement_id, tab_id, actor_user_id, action_type, amount_cents, COALESCE(notes, ''), created_at
		FROM acknowledgement_actions
		WHERE tab_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, tabID)
	if err != nil {
		logger.ExitMethodWithError("acknowledgementRepository.ListActions", err, "tabID", tabID)
		return nil, err
	}
	defer rows.Close()

	actions := []domain.AcknowledgementAction{}
	for rows.Next() {
		var a domain.AcknowledgementAction
		if err := rows.Scan(&a.ID, &a.AcknowledgementID, &a.TabID, &a.ActorUserID, &a.ActionType,
			&a.AmountCents, &a.Notes, &a.CreatedAt); err != nil {
			logger.ExitMethodWithError("acknowledgementRepository.ListActions", err, "tabID", tabID)
			return nil, err
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("acknowledgementRepository.ListActions", "tabID", tabID, "count", len(actions))
	return actions, nil
}
