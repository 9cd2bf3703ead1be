package dao

import (
	"context"
	"fmt"

	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/models"
)

// HistoryDAO handles database operations for the request history ledger.
// The ledger is append-only: no update or delete is exposed.
type HistoryDAO struct {
	db *database.DB
}

// NewHistoryDAO creates a new HistoryDAO instance
func NewHistoryDAO(db *database.DB) *HistoryDAO {
	return &HistoryDAO{db: db}
}

// CreateWithTx appends a history entry using a transaction. The entry is
// timestamped by the database at insertion time.
func (dao *HistoryDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.HistoryEntry) error {
	query := `
		INSERT INTO request_history (request_id, status, description, created_by)
		VALUES (?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		entry.RequestID,
		entry.Status,
		entry.Description,
		entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

// ListByRequestID retrieves all history entries for a request in chronological
// order, with the acting user's name joined.
func (dao *HistoryDAO) ListByRequestID(ctx context.Context, requestID int64) ([]models.HistoryEntryDetail, error) {
	query := `
		SELECT h.id, h.request_id, h.status, h.description, h.created_by, h.created_at,
		       u.name AS user_name
		FROM request_history h
		JOIN users u ON u.id = h.created_by
		WHERE h.request_id = ?
		ORDER BY h.created_at, h.id
	`

	var entries []models.HistoryEntryDetail
	err := dao.db.SelectContext(ctx, &entries, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}

	return entries, nil
}

// CountByRequestID returns the number of history entries for a request.
func (dao *HistoryDAO) CountByRequestID(ctx context.Context, requestID int64) (int, error) {
	query := `SELECT COUNT(*) FROM request_history WHERE request_id = ?`

	var count int
	err := dao.db.GetContext(ctx, &count, query, requestID)
	if err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	return count, nil
}
