package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conectasus/referral-management-api/internal/dao"
	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/models"
	"github.com/conectasus/referral-management-api/internal/service"
	"github.com/conectasus/referral-management-api/internal/utils"
	pkgutils "github.com/conectasus/referral-management-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// handlerTestSetup wires the handlers against a mocked MySQL connection and a
// minimal Gin engine with the same header middleware as the server.
type handlerTestSetup struct {
	mock   sqlmock.Sqlmock
	engine *gin.Engine
}

func newHandlerTestSetup(t *testing.T) *handlerTestSetup {
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
	requestService := service.NewRequestService(requestDAO, historyDAO, attemptDAO, db, logger)
	schedulingService := service.NewSchedulingService(requestDAO, attemptDAO, requestService, db, logger, 3)

	requestHandler := NewRequestHandler(requestService)
	schedulingHandler := NewSchedulingHandler(schedulingService)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if userID := c.GetHeader("user-id"); userID != "" {
			if actorID, err := pkgutils.ParseID(userID); err == nil {
				utils.SetContextValue(c, "actorID", actorID)
			}
		}
		c.Next()
	})

	engine.POST("/api/v1/requests", requestHandler.CreateRequest)
	engine.GET("/api/v1/requests", requestHandler.ListRequests)
	engine.GET("/api/v1/requests/:requestId", requestHandler.GetRequest)
	engine.GET("/api/v1/requests/:requestId/history", requestHandler.GetHistory)
	engine.POST("/api/v1/requests/:requestId/classify", requestHandler.Classify)
	engine.POST("/api/v1/requests/:requestId/deny", requestHandler.Deny)
	engine.POST("/api/v1/requests/:requestId/attempts", schedulingHandler.RegisterContactAttempt)

	return &handlerTestSetup{mock: mock, engine: engine}
}

func (s *handlerTestSetup) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	s.engine.ServeHTTP(recorder, req)
	return recorder
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response.Code
}

var requestDetailColumns = []string{
	"id", "patient_id", "exam_id", "consultation_id", "unit_id", "request_type",
	"status", "regulation_track", "priority", "requested_at", "updated_at",
	"created_by", "updated_by", "cancel_reason", "return_reason",
	"pending_reception", "exam_date", "exam_time", "exam_location", "notes",
	"contact_attempts", "patient_name", "patient_national_id", "patient_phone",
	"exam_name", "consultation_name", "unit_name",
}

func requestDetailRow(id int64, status models.RequestStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(requestDetailColumns).
		AddRow(id, int64(101), int64(7), nil, int64(1), models.RequestTypeExam,
			string(status), nil, nil, now, now,
			int64(1), int64(1), nil, nil,
			false, nil, nil, nil, nil,
			0, "Maria Souza", "12345678900", "11999990000",
			"Chest X-ray", nil, "Central Health Unit")
}

func requestLockRow(id int64, status models.RequestStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(requestDetailColumns[:21]).
		AddRow(id, int64(101), int64(7), nil, int64(1), models.RequestTypeExam,
			string(status), nil, nil, now, now,
			int64(1), int64(1), nil, nil,
			false, nil, nil, nil, nil,
			0)
}

func TestGetRequest_ReturnsDetail(t *testing.T) {
	setup := newHandlerTestSetup(t)

	setup.mock.ExpectQuery("JOIN patients p").
		WithArgs(int64(5)).
		WillReturnRows(requestDetailRow(5, models.StatusAwaitingTriage))

	recorder := setup.do(http.MethodGet, "/api/v1/requests/5", "", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var detail models.RequestDetail
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &detail))
	assert.Equal(t, int64(5), detail.ID)
	assert.Equal(t, models.StatusAwaitingTriage, detail.Status)
	assert.Equal(t, "Maria Souza", detail.PatientName)
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestGetRequest_UnknownIDReturns404(t *testing.T) {
	setup := newHandlerTestSetup(t)

	setup.mock.ExpectQuery("JOIN patients p").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	recorder := setup.do(http.MethodGet, "/api/v1/requests/404", "", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, models.ErrCodeRequestNotFound, errorCode(t, recorder))
}

func TestGetRequest_MalformedIDReturns400(t *testing.T) {
	setup := newHandlerTestSetup(t)

	recorder := setup.do(http.MethodGet, "/api/v1/requests/abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, models.ErrCodeValidationError, errorCode(t, recorder))
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestCreateRequest_RequiresUserHeader(t *testing.T) {
	setup := newHandlerTestSetup(t)

	recorder := setup.do(http.MethodPost, "/api/v1/requests",
		`{"patientId": 101, "unitId": 1, "examId": 7}`, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, models.ErrCodeValidationError, errorCode(t, recorder))
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestCreateRequest_Returns201(t *testing.T) {
	setup := newHandlerTestSetup(t)

	setup.mock.ExpectBegin()
	setup.mock.ExpectExec("INSERT INTO referral_requests").
		WillReturnResult(sqlmock.NewResult(42, 1))
	setup.mock.ExpectExec("INSERT INTO request_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	setup.mock.ExpectCommit()

	recorder := setup.do(http.MethodPost, "/api/v1/requests",
		`{"patientId": 101, "unitId": 1, "examId": 7}`,
		map[string]string{"user-id": "9"})

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var created models.RequestCreatedResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, models.StatusAwaitingTriage, created.Status)
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestClassify_IllegalTransitionReturns409(t *testing.T) {
	setup := newHandlerTestSetup(t)

	setup.mock.ExpectBegin()
	setup.mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(requestLockRow(5, models.StatusPickedUp))
	setup.mock.ExpectRollback()

	recorder := setup.do(http.MethodPost, "/api/v1/requests/5/classify",
		`{"regulationTrack": "municipal", "priority": "P1"}`,
		map[string]string{"user-id": "9"})

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, models.ErrCodeInvalidTransition, errorCode(t, recorder))
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestDeny_MissingReasonReturns400(t *testing.T) {
	setup := newHandlerTestSetup(t)

	recorder := setup.do(http.MethodPost, "/api/v1/requests/5/deny", `{}`,
		map[string]string{"user-id": "9"})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, models.ErrCodeBadRequest, errorCode(t, recorder))
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestRegisterContactAttempt_UnknownOutcomeReturns400(t *testing.T) {
	setup := newHandlerTestSetup(t)

	recorder := setup.do(http.MethodPost, "/api/v1/requests/5/attempts",
		`{"outcome": "busy"}`,
		map[string]string{"user-id": "9"})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, models.ErrCodeValidationError, errorCode(t, recorder))
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestListRequests_TriageQueue(t *testing.T) {
	setup := newHandlerTestSetup(t)

	setup.mock.ExpectQuery("JOIN patients p").
		WithArgs(string(models.StatusAwaitingTriage), string(models.StatusReturnedNoContact)).
		WillReturnRows(requestDetailRow(5, models.StatusAwaitingTriage))

	recorder := setup.do(http.MethodGet, "/api/v1/requests?queue=triage", "", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var requests []models.RequestDetail
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &requests))
	require.Len(t, requests, 1)
	assert.Equal(t, int64(5), requests[0].ID)
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}

func TestListRequests_FilterByStatus(t *testing.T) {
	setup := newHandlerTestSetup(t)

	setup.mock.ExpectQuery("JOIN patients p").
		WithArgs(string(models.StatusSchedulingConfirmed)).
		WillReturnRows(requestDetailRow(5, models.StatusSchedulingConfirmed))

	recorder := setup.do(http.MethodGet, "/api/v1/requests?status=scheduling_confirmed", "", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, setup.mock.ExpectationsWereMet())
}
