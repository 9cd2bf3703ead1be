package service

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/conectasus/referral-management-api/internal/dao"
	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/models"
)

// TestSetup contains common test dependencies backed by a sqlmock connection.
type TestSetup struct {
	Mock              sqlmock.Sqlmock
	RequestService    *RequestService
	SchedulingService *SchedulingService
}

// NewTestSetup wires the services against a mocked MySQL connection. Queries
// are matched by regular expression fragments.
func NewTestSetup(t *testing.T) *TestSetup {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := database.New(sqlx.NewDb(mockDB, "mysql"), logger)
	requestDAO := dao.NewRequestDAO(db)
	historyDAO := dao.NewHistoryDAO(db)
	attemptDAO := dao.NewContactAttemptDAO(db)

	requestService := NewRequestService(requestDAO, historyDAO, attemptDAO, db, logger)
	schedulingService := NewSchedulingService(requestDAO, attemptDAO, requestService, db, logger, 3)

	return &TestSetup{
		Mock:              mock,
		RequestService:    requestService,
		SchedulingService: schedulingService,
	}
}

// requestRowColumns mirrors the columns selected by the row-locking read.
var requestRowColumns = []string{
	"id", "patient_id", "exam_id", "consultation_id", "unit_id", "request_type",
	"status", "regulation_track", "priority", "requested_at", "updated_at",
	"created_by", "updated_by", "cancel_reason", "return_reason",
	"pending_reception", "exam_date", "exam_time", "exam_location", "notes",
	"contact_attempts",
}

// requestRow builds a locked-read result for a request in the given status
// with the given contact attempt count.
func requestRow(id int64, status models.RequestStatus, contactAttempts int) *sqlmock.Rows {
	now := time.Now()
	examID := int64(7)
	return sqlmock.NewRows(requestRowColumns).
		AddRow(id, int64(101), examID, nil, int64(1), models.RequestTypeExam,
			string(status), nil, nil, now, now,
			int64(1), int64(1), nil, nil,
			false, nil, nil, nil, nil,
			contactAttempts)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}
