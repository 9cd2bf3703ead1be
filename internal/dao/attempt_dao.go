package dao

import (
	"context"
	"fmt"

	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/models"
)

// ContactAttemptDAO handles database operations for scheduling contact
// attempts. Rows are append-only.
type ContactAttemptDAO struct {
	db *database.DB
}

// NewContactAttemptDAO creates a new ContactAttemptDAO instance
func NewContactAttemptDAO(db *database.DB) *ContactAttemptDAO {
	return &ContactAttemptDAO{db: db}
}

// CreateWithTx inserts a contact attempt using a transaction. The unique key
// on (request_id, attempt_number) makes a duplicated sequence number a hard
// failure rather than silent data loss.
func (dao *ContactAttemptDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, attempt *models.ContactAttempt) error {
	query := `
		INSERT INTO contact_attempts (request_id, attempt_number, outcome, summary, user_id)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		attempt.RequestID,
		attempt.AttemptNumber,
		attempt.Outcome,
		attempt.Summary,
		attempt.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact attempt: %w", err)
	}

	return nil
}

// ListByRequestID retrieves all contact attempts for a request in attempt
// order.
func (dao *ContactAttemptDAO) ListByRequestID(ctx context.Context, requestID int64) ([]models.ContactAttempt, error) {
	query := `
		SELECT id, request_id, attempt_number, outcome, summary, attempted_at, user_id
		FROM contact_attempts
		WHERE request_id = ?
		ORDER BY attempt_number
	`

	var attempts []models.ContactAttempt
	err := dao.db.SelectContext(ctx, &attempts, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact attempts: %w", err)
	}

	return attempts, nil
}
