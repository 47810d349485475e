package postgres

import (
	"context"
	"database/sql"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

type tabRepository struct {
	db *sql.DB
}

func NewTabRepository(db *sql.DB) repository.TabRepository {
	return &tabRepository{db: db}
}

const tabColumns = `id, name, owner_user_id, status, closed_at, created_at, updated_at`

func (r *tabRepository) Create(ctx context.Context, tab *domain.Tab, participants []domain.Participant) error {
	logger.EnterMethod("tabRepository.Create", "name", tab.Name, "ownerUserID", tab.OwnerUserID, "participants", len(participants))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("tabRepository.Create", err, "reason", "failed to begin transaction")
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if tab.Status == "" {
		tab.Status = domain.TabStatusActive
	}

	query := `INSERT INTO tabs (name, owner_user_id, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	logger.DatabaseCall("INSERT", "tabs", "ownerUserID", tab.OwnerUserID)
	err = tx.QueryRowContext(ctx, query, tab.Name, tab.OwnerUserID, tab.Status, now, now).
		Scan(&tab.ID, &tab.CreatedAt, &tab.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "tabID", tab.ID)
	if err != nil {
		logger.ExitMethodWithError("tabRepository.Create", err, "name", tab.Name)
		return translateError(err)
	}

	pQuery := `INSERT INTO participants (tab_id, display_name, user_id, created_at)
	           VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	for i := range participants {
		p := &participants[i]
		p.TabID = tab.ID
		err = tx.QueryRowContext(ctx, pQuery, p.TabID, p.DisplayName, p.UserID, now).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			logger.ExitMethodWithError("tabRepository.Create", err, "tabID", tab.ID, "displayName", p.DisplayName)
			return translateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("tabRepository.Create", err, "reason", "failed to commit")
		return err
	}

	logger.ExitMethod("tabRepository.Create", "tabID", tab.ID)
	return nil
}

func (r *tabRepository) GetByID(ctx context.Context, id int32) (*domain.Tab, error) {
	logger.EnterMethod("tabRepository.GetByID", "tabID", id)

	query := `SELECT ` + tabColumns + ` FROM tabs WHERE id = $1`
	tab := &domain.Tab{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tab.ID, &tab.Name, &tab.OwnerUserID, &tab.Status, &tab.ClosedAt, &tab.CreatedAt, &tab.UpdatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("tabRepository.GetByID", err, "tabID", id)
		return nil, translateError(err)
	}

	logger.ExitMethod("tabRepository.GetByID", "tabID", id)
	return tab, nil
}

func (r *tabRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Tab, error) {
	logger.EnterMethod("tabRepository.ListByUser", "userID", userID)

	query := `SELECT ` + tabColumns + ` FROM tabs t
	          WHERE t.owner_user_id = $1
	             OR EXISTS (SELECT 1 FROM participants p WHERE p.tab_id = t.id AND p.user_id = $1)
	          ORDER BY t.created_at DESC, t.id DESC`

	tabs, err := r.list(ctx, query, userID)
	if err != nil {
		logger.ExitMethodWithError("tabRepository.ListByUser", err, "userID", userID)
		return nil, err
	}

	logger.ExitMethod("tabRepository.ListByUser", "userID", userID, "count", len(tabs))
	return tabs, nil
}

func (r *tabRepository) ListByStatus(ctx context.Context, status domain.TabStatus) ([]domain.Tab, error) {
	logger.EnterMethod("tabRepository.ListByStatus", "status", status)

	query := `SELECT ` + tabColumns + ` FROM tabs WHERE status = $1 ORDER BY id`
	tabs, err := r.list(ctx, query, status)
	if err != nil {
		logger.ExitMethodWithError("tabRepository.ListByStatus", err, "status", status)
		return nil, err
	}

	logger.ExitMethod("tabRepository.ListByStatus", "status", status, "count", len(tabs))
	return tabs, nil
}

func (r *tabRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Tab, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tabs := []domain.Tab{}
	for rows.Next() {
		var t domain.Tab
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerUserID, &t.Status, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tabs = append(tabs, t)
	}
	return tabs, rows.Err()
}

func (r *tabRepository) Close(ctx context.Context, id int32, closedAt time.Time) error {
	logger.EnterMethod("tabRepository.Close", "tabID", id)

	query := `UPDATE tabs SET status = $1, closed_at = $2, updated_at = $2 WHERE id = $3 AND status = $4`
	logger.DatabaseCall("UPDATE", "tabs", "tabID", id)
	result, err := r.db.ExecContext(ctx, query, domain.TabStatusClosed, closedAt, id, domain.TabStatusActive)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "tabID", id)
		logger.ExitMethodWithError("tabRepository.Close", err, "tabID", id)
		return err
	}

	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "tabID", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.ExitMethodWithError("tabRepository.Close", domain.ErrTabClosed, "tabID", id)
		return domain.ErrTabClosed
	}

	logger.ExitMethod("tabRepository.Close", "tabID", id)
	return nil
}
