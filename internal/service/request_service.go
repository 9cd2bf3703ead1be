package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/conectasus/referral-management-api/internal/dao"
	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/metrics"
	"github.com/conectasus/referral-management-api/internal/models"
)

// RequestService owns the referral request lifecycle: creation, the status
// transition engine and the history ledger writes that accompany every
// transition.
type RequestService struct {
	requestDAO *dao.RequestDAO
	historyDAO *dao.HistoryDAO
	attemptDAO *dao.ContactAttemptDAO
	db         *database.DB
	logger     *logrus.Logger
}

// NewRequestService creates a new request service instance
func NewRequestService(
	requestDAO *dao.RequestDAO,
	historyDAO *dao.HistoryDAO,
	attemptDAO *dao.ContactAttemptDAO,
	db *database.DB,
	logger *logrus.Logger,
) *RequestService {
	return &RequestService{
		requestDAO: requestDAO,
		historyDAO: historyDAO,
		attemptDAO: attemptDAO,
		db:         db,
		logger:     logger,
	}
}

// CreateRequest opens a new referral request in awaiting_triage and writes the
// first history entry, atomically.
func (s *RequestService) CreateRequest(ctx context.Context, request *models.RequestCreateAPIRequest, actorID int64) (*models.RequestCreatedResponse, error) {
	if actorID <= 0 {
		return nil, newValidationError("acting user id is required")
	}
	if request.PatientID <= 0 {
		return nil, newValidationError("patient id is required")
	}
	if request.UnitID <= 0 {
		return nil, newValidationError("unit id is required")
	}
	// Exactly one of exam and consultation must be referenced.
	if (request.ExamID == nil) == (request.ConsultationID == nil) {
		return nil, newValidationError("exactly one of exam id and consultation id must be set")
	}

	requestType := models.RequestTypeExam
	if request.ConsultationID != nil {
		requestType = models.RequestTypeConsultation
	}

	row := &models.Request{
		PatientID:      request.PatientID,
		ExamID:         request.ExamID,
		ConsultationID: request.ConsultationID,
		UnitID:         request.UnitID,
		RequestType:    requestType,
		Status:         models.StatusAwaitingTriage,
		CreatedBy:      actorID,
		UpdatedBy:      actorID,
		Notes:          request.Notes,
	}

	var requestID int64
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		id, err := s.requestDAO.CreateWithTx(ctx, tx, row)
		if err != nil {
			return &StorageError{Op: "create request", Err: err}
		}
		requestID = id

		description := fmt.Sprintf("New %s referral opened by reception.", requestType)
		entry := &models.HistoryEntry{
			RequestID:   requestID,
			Status:      models.StatusAwaitingTriage,
			Description: &description,
			CreatedBy:   actorID,
		}
		if err := s.historyDAO.CreateWithTx(ctx, tx, entry); err != nil {
			return &StorageError{Op: "record request creation", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"unit_id":    request.UnitID,
		"type":       requestType,
	}).Info("Referral request created")

	return &models.RequestCreatedResponse{ID: requestID, Status: models.StatusAwaitingTriage}, nil
}

// Transition moves a request to a target status, merges extra field updates
// into the request row and appends exactly one history entry, all in one
// transaction holding the request's row lock. Edges not present in the state
// machine are rejected with a TransitionError.
func (s *RequestService) Transition(ctx context.Context, requestID int64, target models.RequestStatus, actorID int64, description string, fields map[string]interface{}) error {
	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		request, err := s.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		return s.transitionTx(ctx, tx, request, target, actorID, description, fields)
	})
	if err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
	return nil
}

// lockRequest reads a request row under an exclusive lock, so concurrent
// workflow actions on the same request serialize.
func (s *RequestService) lockRequest(ctx context.Context, tx *database.Transaction, requestID int64) (*models.Request, error) {
	request, err := s.requestDAO.GetByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, &NotFoundError{RequestID: requestID}
		}
		return nil, &StorageError{Op: "lock request", Err: err}
	}
	return request, nil
}

// transitionTx applies a transition to an already-locked request row.
func (s *RequestService) transitionTx(ctx context.Context, tx *database.Transaction, request *models.Request, target models.RequestStatus, actorID int64, description string, fields map[string]interface{}) error {
	if actorID <= 0 {
		return newValidationError("acting user id is required")
	}
	if !models.IsValidStatus(target) {
		return newValidationError("unknown status: %s", target)
	}
	if !models.CanTransition(request.Status, target) {
		return &TransitionError{From: request.Status, To: target}
	}

	updates := map[string]interface{}{
		"status":            target,
		"updated_by":        actorID,
		"pending_reception": 0,
	}
	for column, value := range fields {
		updates[column] = value
	}

	if err := s.requestDAO.UpdateFieldsWithTx(ctx, tx, request.ID, updates); err != nil {
		return &StorageError{Op: "apply transition", Err: err}
	}

	entry := &models.HistoryEntry{
		RequestID:   request.ID,
		Status:      target,
		Description: &description,
		CreatedBy:   actorID,
	}
	if err := s.historyDAO.CreateWithTx(ctx, tx, entry); err != nil {
		return &StorageError{Op: "record transition", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": request.ID,
		"from":       request.Status,
		"to":         target,
		"actor_id":   actorID,
	}).Info("Request status transition")

	return nil
}

// Classify performs the triage classification: assigns the regulation track
// and priority and forwards the request to the matching doctor queue.
func (s *RequestService) Classify(ctx context.Context, requestID, actorID int64, track models.RegulationTrack, priority models.Priority) error {
	if !models.IsValidTrack(track) {
		return newValidationError("invalid regulation track: %s", track)
	}
	if !models.IsValidPriority(priority) {
		return newValidationError("invalid priority: %s", priority)
	}

	description := fmt.Sprintf("Referral forwarded to the %s regulating doctor with priority %s.",
		strings.ToUpper(string(track)), priority)

	return s.Transition(ctx, requestID, models.AwaitingDoctorStatus(track), actorID, description, map[string]interface{}{
		"regulation_track": track,
		"priority":         priority,
	})
}

// Approve marks a request approved for scheduling on its regulation track.
// A track that does not match the request's doctor queue fails the edge check.
func (s *RequestService) Approve(ctx context.Context, requestID, actorID int64, track models.RegulationTrack) error {
	if !models.IsValidTrack(track) {
		return newValidationError("invalid regulation track: %s", track)
	}

	return s.Transition(ctx, requestID, models.ApprovedStatus(track), actorID,
		"Referral approved by the regulating doctor.", nil)
}

// CancelByDoctor cancels a request under medical regulation.
func (s *RequestService) CancelByDoctor(ctx context.Context, requestID, actorID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return newValidationError("cancellation reason is required")
	}

	description := fmt.Sprintf("Cancelled by the regulating doctor. Reason: %s", reason)
	return s.Transition(ctx, requestID, models.StatusCancelledByDoctor, actorID, description, map[string]interface{}{
		"cancel_reason": reason,
	})
}

// ReturnToReception hands a request back to its originating reception desk.
// The regulation classification is cleared so triage starts over.
func (s *RequestService) ReturnToReception(ctx context.Context, requestID, actorID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return newValidationError("return reason is required")
	}

	description := fmt.Sprintf("Referral returned to reception. Reason: %s", reason)
	return s.Transition(ctx, requestID, models.StatusReturnedByDoctor, actorID, description, map[string]interface{}{
		"pending_reception": 1,
		"return_reason":     reason,
		"regulation_track":  nil,
		"priority":          nil,
	})
}

// CancelByReception cancels a request on behalf of the reception desk.
func (s *RequestService) CancelByReception(ctx context.Context, requestID, actorID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return newValidationError("cancellation reason is required")
	}

	description := fmt.Sprintf("Cancelled by reception. Reason: %s", reason)
	return s.Transition(ctx, requestID, models.StatusCancelledByReception, actorID, description, map[string]interface{}{
		"cancel_reason": reason,
	})
}

// HandleReturn records the reception desk's handling of a bounced request and
// resubmits it to triage. Two ledger entries are written: an annotation at the
// returned status describing the handling, then the resubmission itself.
func (s *RequestService) HandleReturn(ctx context.Context, requestID, actorID int64, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return newValidationError("handling note is required")
	}

	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		request, err := s.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if request.Status != models.StatusReturnedByDoctor && request.Status != models.StatusReturnedNoContact {
			return &TransitionError{From: request.Status, To: models.StatusAwaitingTriage}
		}

		annotation := fmt.Sprintf("Reception handling: %s", note)
		entry := &models.HistoryEntry{
			RequestID:   requestID,
			Status:      request.Status,
			Description: &annotation,
			CreatedBy:   actorID,
		}
		if err := s.historyDAO.CreateWithTx(ctx, tx, entry); err != nil {
			return &StorageError{Op: "record return handling", Err: err}
		}

		return s.transitionTx(ctx, tx, request, models.StatusAwaitingTriage, actorID,
			"Referral resubmitted to triage after reception handling.", map[string]interface{}{
				"regulation_track": nil,
				"priority":         nil,
				"return_reason":    nil,
			})
	})
	if err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(models.StatusAwaitingTriage)).Inc()
	return nil
}

// MarkPickedUp closes a confirmed request once the patient has picked it up.
func (s *RequestService) MarkPickedUp(ctx context.Context, requestID, actorID int64) error {
	return s.Transition(ctx, requestID, models.StatusPickedUp, actorID,
		"Referral picked up by the patient.", nil)
}

// GetRequest retrieves a request with joined reference names.
func (s *RequestService) GetRequest(ctx context.Context, requestID int64) (*models.RequestDetail, error) {
	detail, err := s.requestDAO.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, &NotFoundError{RequestID: requestID}
		}
		return nil, &StorageError{Op: "get request", Err: err}
	}
	return detail, nil
}

// GetHistory retrieves the full status ledger of a request in chronological
// order.
func (s *RequestService) GetHistory(ctx context.Context, requestID int64) ([]models.HistoryEntryDetail, error) {
	if _, err := s.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}

	entries, err := s.historyDAO.ListByRequestID(ctx, requestID)
	if err != nil {
		return nil, &StorageError{Op: "list history", Err: err}
	}
	return entries, nil
}

// ListContactAttempts retrieves the contact attempt log of a request.
func (s *RequestService) ListContactAttempts(ctx context.Context, requestID int64) ([]models.ContactAttempt, error) {
	if _, err := s.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}

	attempts, err := s.attemptDAO.ListByRequestID(ctx, requestID)
	if err != nil {
		return nil, &StorageError{Op: "list contact attempts", Err: err}
	}
	return attempts, nil
}

// ListRequests retrieves requests matching an explicit filter.
func (s *RequestService) ListRequests(ctx context.Context, filter *models.RequestListFilter) ([]models.RequestDetail, error) {
	if filter.Status != nil && !models.IsValidStatus(*filter.Status) {
		return nil, newValidationError("unknown status: %s", *filter.Status)
	}
	if filter.RegulationTrack != nil && !models.IsValidTrack(*filter.RegulationTrack) {
		return nil, newValidationError("invalid regulation track: %s", *filter.RegulationTrack)
	}

	requests, err := s.requestDAO.List(ctx, filter)
	if err != nil {
		return nil, &StorageError{Op: "list requests", Err: err}
	}
	return requests, nil
}

// ListForTriage retrieves the triage work queue.
func (s *RequestService) ListForTriage(ctx context.Context) ([]models.RequestDetail, error) {
	requests, err := s.requestDAO.ListForTriage(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list triage queue", Err: err}
	}
	return requests, nil
}

// ListForRegulator retrieves the medical regulation queue for a track.
func (s *RequestService) ListForRegulator(ctx context.Context, track models.RegulationTrack) ([]models.RequestDetail, error) {
	if !models.IsValidTrack(track) {
		return nil, newValidationError("invalid regulation track: %s", track)
	}

	requests, err := s.requestDAO.ListForRegulator(ctx, track)
	if err != nil {
		return nil, &StorageError{Op: "list regulation queue", Err: err}
	}
	return requests, nil
}

// ListForScheduler retrieves the scheduling queue for a track.
func (s *RequestService) ListForScheduler(ctx context.Context, track models.RegulationTrack) ([]models.RequestDetail, error) {
	if !models.IsValidTrack(track) {
		return nil, newValidationError("invalid regulation track: %s", track)
	}

	requests, err := s.requestDAO.ListForScheduler(ctx, track)
	if err != nil {
		return nil, &StorageError{Op: "list scheduling queue", Err: err}
	}
	return requests, nil
}
