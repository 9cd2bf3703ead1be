package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/conectasus/referral-management-api/internal/dao"
	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/metrics"
	"github.com/conectasus/referral-management-api/internal/models"
	"github.com/conectasus/referral-management-api/pkg/utils"
)

// SchedulingService logs contact attempts and applies the retry/escalation
// policy: a successful contact confirms the appointment, repeated failed
// contact hands the request back to reception.
type SchedulingService struct {
	requestDAO     *dao.RequestDAO
	attemptDAO     *dao.ContactAttemptDAO
	requestService *RequestService
	db             *database.DB
	logger         *logrus.Logger
	maxAttempts    int
}

// NewSchedulingService creates a new scheduling service instance.
// maxAttempts is the failed-contact threshold after which a request escalates
// back to reception.
func NewSchedulingService(
	requestDAO *dao.RequestDAO,
	attemptDAO *dao.ContactAttemptDAO,
	requestService *RequestService,
	db *database.DB,
	logger *logrus.Logger,
	maxAttempts int,
) *SchedulingService {
	return &SchedulingService{
		requestDAO:     requestDAO,
		attemptDAO:     attemptDAO,
		requestService: requestService,
		db:             db,
		logger:         logger,
		maxAttempts:    maxAttempts,
	}
}

// RegisterContactAttempt logs one scheduling contact attempt and moves the
// request according to the outcome. The attempt insert, the counter bump on
// the request and the follow-up transition run in a single transaction under
// the request's row lock, so concurrent attempts on the same request can
// never share a sequence number.
func (s *SchedulingService) RegisterContactAttempt(ctx context.Context, requestID, actorID int64, attempt *models.ContactAttemptAPIRequest) error {
	if actorID <= 0 {
		return newValidationError("acting user id is required")
	}
	if !models.IsValidOutcome(attempt.Outcome) {
		return newValidationError("invalid attempt outcome: %s", attempt.Outcome)
	}

	var examDate *time.Time
	var examTime *string
	var examLocation *string
	if attempt.Outcome == models.OutcomeSuccess {
		parsedDate, parsedTime, location, err := parseSchedulingFields(attempt)
		if err != nil {
			return err
		}
		examDate, examTime, examLocation = parsedDate, parsedTime, location
	}

	var escalated bool
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		request, err := s.requestService.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		next := request.ContactAttempts + 1

		summary := strings.TrimSpace(attempt.Summary)
		var summaryPtr *string
		if summary != "" {
			summaryPtr = &summary
		}

		row := &models.ContactAttempt{
			RequestID:     requestID,
			AttemptNumber: next,
			Outcome:       attempt.Outcome,
			Summary:       summaryPtr,
			UserID:        actorID,
		}
		if err := s.attemptDAO.CreateWithTx(ctx, tx, row); err != nil {
			return &StorageError{Op: "record contact attempt", Err: err}
		}

		switch {
		case attempt.Outcome == models.OutcomeSuccess:
			description := fmt.Sprintf("Contact made. Exam scheduled for %s at %s, %s.",
				utils.FormatDate(*examDate), *examTime, *examLocation)
			return s.requestService.transitionTx(ctx, tx, request, models.StatusSchedulingConfirmed, actorID, description, map[string]interface{}{
				"exam_date":        *examDate,
				"exam_time":        *examTime,
				"exam_location":    *examLocation,
				"contact_attempts": next,
			})

		case attempt.Outcome == models.OutcomeNoContact && next >= s.maxAttempts:
			escalated = true
			description := fmt.Sprintf("%d contact attempts without success. Referral returned to the unit's reception.", next)
			return s.requestService.transitionTx(ctx, tx, request, models.StatusReturnedNoContact, actorID, description, map[string]interface{}{
				"pending_reception": 1,
				"regulation_track":  nil,
				"priority":          nil,
				"contact_attempts":  next,
			})

		default:
			description := fmt.Sprintf("Attempt recorded with outcome: %s.", attempt.Outcome)
			return s.requestService.transitionTx(ctx, tx, request, models.StatusSchedulingInProgress, actorID, description, map[string]interface{}{
				"contact_attempts": next,
			})
		}
	})
	if err != nil {
		return err
	}

	metrics.ContactAttemptsTotal.WithLabelValues(string(attempt.Outcome)).Inc()
	if escalated {
		metrics.EscalationsTotal.Inc()
		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"threshold":  s.maxAttempts,
		}).Warn("Request escalated back to reception after failed contact attempts")
	}

	return nil
}

// parseSchedulingFields validates and parses the fields required by a
// successful contact: exam date, time of day and location.
func parseSchedulingFields(attempt *models.ContactAttemptAPIRequest) (*time.Time, *string, *string, error) {
	if attempt.ExamDate == nil || attempt.ExamTime == nil || attempt.ExamLocation == nil {
		return nil, nil, nil, newValidationError("exam date, time and location are required for a successful contact")
	}

	date, err := utils.ParseDate(*attempt.ExamDate)
	if err != nil {
		return nil, nil, nil, newValidationError("invalid exam date: %s", *attempt.ExamDate)
	}

	timeOfDay, err := utils.ParseTimeOfDay(*attempt.ExamTime)
	if err != nil {
		return nil, nil, nil, newValidationError("invalid exam time: %s", *attempt.ExamTime)
	}

	location := strings.TrimSpace(*attempt.ExamLocation)
	if location == "" {
		return nil, nil, nil, newValidationError("exam location is required for a successful contact")
	}

	return &date, &timeOfDay, &location, nil
}
