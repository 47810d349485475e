package postgres

import (
	"context"
	"database/sql"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

type expenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) repository.ExpenseRepository {
	return &expenseRepository{db: db}
}

const expenseColumns = `id, tab_id, payer_participant_id, amount_cents, expense_date, COALESCE(note, ''),
	created_by_user_id, created_at, updated_at`

func (r *expenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	logger.EnterMethod("expenseRepository.Create", "tabID", e.TabID, "payerID", e.PayerParticipantID, "amountCents", e.AmountCents)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.Create", err, "reason", "failed to begin transaction")
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	query := `INSERT INTO expenses (tab_id, payer_participant_id, amount_cents, expense_date, note, created_by_user_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`
	logger.DatabaseCall("INSERT", "expenses", "tabID", e.TabID)
	err = tx.QueryRowContext(ctx, query,
		e.TabID, e.PayerParticipantID, e.AmountCents, e.ExpenseDate, nullString(e.Note), e.CreatedByUserID, now, now,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "expenseID", e.ID)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.Create", err, "tabID", e.TabID)
		return translateError(err)
	}

	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		logger.ExitMethodWithError("expenseRepository.Create", err, "expenseID", e.ID)
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("expenseRepository.Create", err, "reason", "failed to commit")
		return err
	}

	logger.ExitMethod("expenseRepository.Create", "expenseID", e.ID, "splits", len(e.Splits))
	return nil
}

func (r *expenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	logger.EnterMethod("expenseRepository.Update", "expenseID", e.ID, "tabID", e.TabID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.Update", err, "reason", "failed to begin transaction")
		return err
	}
	defer tx.Rollback()

	query := `UPDATE expenses SET
			payer_participant_id = $1,
			amount_cents = $2,
			expense_date = $3,
			note = $4,
			updated_at = $5
		WHERE id = $6 AND tab_id = $7
		RETURNING updated_at`
	logger.DatabaseCall("UPDATE", "expenses", "expenseID", e.ID)
	err = tx.QueryRowContext(ctx, query,
		e.PayerParticipantID, e.AmountCents, e.ExpenseDate, nullString(e.Note), time.Now(), e.ID, e.TabID,
	).Scan(&e.UpdatedAt)
	logger.DatabaseResult("UPDATE", 1, err, "expenseID", e.ID)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.Update", err, "expenseID", e.ID)
		return translateError(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, e.ID); err != nil {
		logger.ExitMethodWithError("expenseRepository.Update", err, "expenseID", e.ID, "reason", "failed to clear splits")
		return err
	}
	if err := insertSplits(ctx, tx, e.ID, e.Splits); err != nil {
		logger.ExitMethodWithError("expenseRepository.Update", err, "expenseID", e.ID)
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("expenseRepository.Update", err, "reason", "failed to commit")
		return err
	}

	logger.ExitMethod("expenseRepository.Update", "expenseID", e.ID)
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID int32, splits []domain.Split) error {
	query := `INSERT INTO expense_splits (expense_id, participant_id, amount_cents) VALUES ($1, $2, $3)`
	for _, s := range splits {
		if _, err := tx.ExecContext(ctx, query, expenseID, s.ParticipantID, s.AmountCents); err != nil {
			return err
		}
	}
	return nil
}

func (r *expenseRepository) GetByID(ctx context.Context, tabID, id int32) (*domain.Expense, error) {
	logger.EnterMethod("expenseRepository.GetByID", "tabID", tabID, "expenseID", id)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND tab_id = $2`
	e := &domain.Expense{}
	err := r.db.QueryRowContext(ctx, query, id, tabID).Scan(
		&e.ID, &e.TabID, &e.PayerParticipantID, &e.AmountCents, &e.ExpenseDate, &e.Note,
		&e.CreatedByUserID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.GetByID", err, "expenseID", id)
		return nil, translateError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT participant_id, amount_cents FROM expense_splits WHERE expense_id = $1 ORDER BY participant_id`, id)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.GetByID", err, "expenseID", id, "reason", "failed to load splits")
		return nil, err
	}
	defer rows.Close()

	e.Splits = []domain.Split{}
	for rows.Next() {
		var s domain.Split
		if err := rows.Scan(&s.ParticipantID, &s.AmountCents); err != nil {
			return nil, err
		}
		e.Splits = append(e.Splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("expenseRepository.GetByID", "expenseID", id)
	return e, nil
}

// ListByTab returns every expense of the tab with its splits, oldest first.
func (r *expenseRepository) ListByTab(ctx context.Context, tabID int32) ([]domain.Expense, error) {
	logger.EnterMethod("expenseRepository.ListByTab", "tabID", tabID)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE tab_id = $1 ORDER BY expense_date, id`
	rows, err := r.db.QueryContext(ctx, query, tabID)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.ListByTab", err, "tabID", tabID)
		return nil, err
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	index := make(map[int32]int)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(
			&e.ID, &e.TabID, &e.PayerParticipantID, &e.AmountCents, &e.ExpenseDate, &e.Note,
			&e.CreatedByUserID, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			logger.ExitMethodWithError("expenseRepository.ListByTab", err, "tabID", tabID)
			return nil, err
		}
		e.Splits = []domain.Split{}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	splitQuery := `SELECT s.expense_id, s.participant_id, s.amount_cents
	               FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
	               WHERE e.tab_id = $1 ORDER BY s.expense_id, s.participant_id`
	splitRows, err := r.db.QueryContext(ctx, splitQuery, tabID)
	if err != nil {
		logger.ExitMethodWithError("expenseRepository.ListByTab", err, "tabID", tabID, "reason", "failed to load splits")
		return nil, err
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID int32
		var s domain.Split
		if err := splitRows.Scan(&expenseID, &s.ParticipantID, &s.AmountCents); err != nil {
			return nil, err
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].Splits = append(expenses[i].Splits, s)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("expenseRepository.ListByTab", "tabID", tabID, "count", len(expenses))
	return expenses, nil
}

func (r *expenseRepository) Delete(ctx context.Context, tabID, id int32) error {
	logger.EnterMethod("expenseRepository.Delete", "tabID", tabID, "expenseID", id)

	logger.DatabaseCall("DELETE", "expenses", "expenseID", id)
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND tab_id = $2`, id, tabID)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "expenseID", id)
		logger.ExitMethodWithError("expenseRepository.Delete", err, "expenseID", id)
		return err
	}

	rows, err := result.RowsAffected()
	logger.DatabaseResult("DELETE", rows, err, "expenseID", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	logger.ExitMethod("expenseRepository.Delete", "expenseID", id)
	return nil
}
