package models

import "time"

// ContactAttempt represents the contact_attempts table. Rows are append-only;
// attempt numbers are 1-based and strictly increasing per request, always
// equal to the owning request's contact_attempts counter at insert time.
type ContactAttempt struct {
	ID            int64          `db:"id" json:"id"`
	RequestID     int64          `db:"request_id" json:"requestId"`
	AttemptNumber int            `db:"attempt_number" json:"attemptNumber"`
	Outcome       AttemptOutcome `db:"outcome" json:"outcome"`
	Summary       *string        `db:"summary" json:"summary,omitempty"`
	AttemptedAt   time.Time      `db:"attempted_at" json:"attemptedAt"`
	UserID        int64          `db:"user_id" json:"userId"`
}
