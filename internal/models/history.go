package models

import "time"

// HistoryEntry represents the request_history table. Entries are append-only:
// one is written for every status a request has ever held, in the same
// transaction as the status change itself.
type HistoryEntry struct {
	ID          int64         `db:"id" json:"id"`
	RequestID   int64         `db:"request_id" json:"requestId"`
	Status      RequestStatus `db:"status" json:"status"`
	Description *string       `db:"description" json:"description,omitempty"`
	CreatedBy   int64         `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
}

// HistoryEntryDetail is a HistoryEntry joined with the acting user's name.
type HistoryEntryDetail struct {
	HistoryEntry
	UserName string `db:"user_name" json:"userName"`
}
