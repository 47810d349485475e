package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/repository"
)

type participantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) repository.ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	logger.EnterMethod("participantRepository.Create", "tabID", p.TabID, "displayName", p.DisplayName)

	query := `INSERT INTO participants (tab_id, display_name, user_id, created_at)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "participants", "tabID", p.TabID)
	err := r.db.QueryRowContext(ctx, query, p.TabID, p.DisplayName, p.UserID, time.Now()).Scan(&p.ID, &p.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "participantID", p.ID)

	if err != nil {
		logger.ExitMethodWithError("participantRepository.Create", err, "tabID", p.TabID)
		return translateError(err)
	}

	logger.ExitMethod("participantRepository.Create", "participantID", p.ID)
	return nil
}

// ListByTab returns participants in their fixed ordering (ascending id).
func (r *participantRepository) ListByTab(ctx context.Context, tabID int32) ([]domain.Participant, error) {
	logger.EnterMethod("participantRepository.ListByTab", "tabID", tabID)

	query := `SELECT id, tab_id, display_name, user_id, created_at
	          FROM participants WHERE tab_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, tabID)
	if err != nil {
		logger.ExitMethodWithError("participantRepository.ListByTab", err, "tabID", tabID)
		return nil, err
	}
	defer rows.Close()

	participants := []domain.Participant{}
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.TabID, &p.DisplayName, &p.UserID, &p.CreatedAt); err != nil {
			logger.ExitMethodWithError("participantRepository.ListByTab", err, "tabID", tabID)
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("participantRepository.ListByTab", "tabID", tabID, "count", len(participants))
	return participants, nil
}

func (r *participantRepository) Link(ctx context.Context, tabID, participantID, userID int32) error {
	logger.EnterMethod("participantRepository.Link", "tabID", tabID, "participantID", participantID, "userID", userID)

	query := `UPDATE participants SET user_id = $1 WHERE id = $2 AND tab_id = $3 AND user_id IS NULL`
	logger.DatabaseCall("UPDATE", "participants", "participantID", participantID)
	result, err := r.db.ExecContext(ctx, query, userID, participantID, tabID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "participantID", participantID)
		logger.ExitMethodWithError("participantRepository.Link", err, "participantID", participantID)
		return translateError(err)
	}

	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "participantID", participantID)
	if err != nil {
		return err
	}
	if rows == 0 {
		err = fmt.Errorf("%w: participant is already claimed", domain.ErrValidation)
		logger.ExitMethodWithError("participantRepository.Link", err, "participantID", participantID)
		return err
	}

	logger.ExitMethod("participantRepository.Link", "participantID", participantID)
	return nil
}
