package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/conectasus/referral-management-api/internal/database"
	"github.com/conectasus/referral-management-api/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// requestColumns are the referral_requests columns selected everywhere a full
// row is needed.
const requestColumns = `
	id, patient_id, exam_id, consultation_id, unit_id, request_type, status,
	regulation_track, priority, requested_at, updated_at, created_by, updated_by,
	cancel_reason, return_reason, pending_reception, exam_date, exam_time,
	exam_location, notes, contact_attempts`

// updatableColumns whitelists the columns a transition may touch through the
// dynamic field map.
var updatableColumns = map[string]bool{
	"status":            true,
	"regulation_track":  true,
	"priority":          true,
	"pending_reception": true,
	"cancel_reason":     true,
	"return_reason":     true,
	"exam_date":         true,
	"exam_time":         true,
	"exam_location":     true,
	"contact_attempts":  true,
	"updated_by":        true,
	"notes":             true,
}

// RequestDAO handles database operations for referral requests
type RequestDAO struct {
	db *database.DB
}

// NewRequestDAO creates a new RequestDAO instance
func NewRequestDAO(db *database.DB) *RequestDAO {
	return &RequestDAO{db: db}
}

// CreateWithTx inserts a new referral request using a transaction and returns
// its generated id.
func (dao *RequestDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, request *models.Request) (int64, error) {
	query := `
		INSERT INTO referral_requests (
			patient_id, exam_id, consultation_id, unit_id, request_type, status,
			regulation_track, priority, created_by, updated_by, notes, pending_reception
		) VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, 0)
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		request.PatientID,
		request.ExamID,
		request.ConsultationID,
		request.UnitID,
		request.RequestType,
		request.Status,
		request.CreatedBy,
		request.UpdatedBy,
		request.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted request id: %w", err)
	}

	return id, nil
}

// GetByID retrieves a request with its patient, target and unit names joined.
func (dao *RequestDAO) GetByID(ctx context.Context, requestID int64) (*models.RequestDetail, error) {
	query := `
		SELECT r.id, r.patient_id, r.exam_id, r.consultation_id, r.unit_id,
		       r.request_type, r.status, r.regulation_track, r.priority,
		       r.requested_at, r.updated_at, r.created_by, r.updated_by,
		       r.cancel_reason, r.return_reason, r.pending_reception,
		       r.exam_date, r.exam_time, r.exam_location, r.notes, r.contact_attempts,
		       p.name AS patient_name,
		       p.national_id AS patient_national_id,
		       p.primary_phone AS patient_phone,
		       e.name AS exam_name,
		       c.name AS consultation_name,
		       u.name AS unit_name
		FROM referral_requests r
		JOIN patients p ON p.id = r.patient_id
		LEFT JOIN exams e ON e.id = r.exam_id
		LEFT JOIN consultations c ON c.id = r.consultation_id
		JOIN health_units u ON u.id = r.unit_id
		WHERE r.id = ?
	`

	var detail models.RequestDetail
	err := dao.db.GetContext(ctx, &detail, query, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return &detail, nil
}

// GetByIDForUpdate retrieves a request row inside a transaction, taking an
// exclusive row lock. The lock serializes concurrent workflow actions on the
// same request until the transaction ends.
func (dao *RequestDAO) GetByIDForUpdate(ctx context.Context, tx *database.Transaction, requestID int64) (*models.Request, error) {
	query := `SELECT` + requestColumns + `
		FROM referral_requests
		WHERE id = ?
		FOR UPDATE
	`

	var request models.Request
	err := tx.GetContext(ctx, &request, query, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request for update: %w", err)
	}

	return &request, nil
}

// UpdateFieldsWithTx applies a field map to a request row and refreshes
// updated_at. Columns outside the whitelist are rejected; nil values write
// SQL NULL.
func (dao *RequestDAO) UpdateFieldsWithTx(ctx context.Context, tx *database.Transaction, requestID int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !updatableColumns[column] {
			return fmt.Errorf("column not updatable: %s", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var builder strings.Builder
	builder.WriteString("UPDATE referral_requests SET ")
	args := make([]interface{}, 0, len(columns)+1)
	for i, column := range columns {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(column)
		builder.WriteString(" = ?")
		args = append(args, fields[column])
	}
	builder.WriteString(", updated_at = NOW() WHERE id = ?")
	args = append(args, requestID)

	result, err := tx.ExecContext(ctx, builder.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}

	return nil
}

// List retrieves requests matching the supplied filter, most recently updated
// first.
func (dao *RequestDAO) List(ctx context.Context, filter *models.RequestListFilter) ([]models.RequestDetail, error) {
	var builder strings.Builder
	builder.WriteString(`
		SELECT r.id, r.patient_id, r.exam_id, r.consultation_id, r.unit_id,
		       r.request_type, r.status, r.regulation_track, r.priority,
		       r.requested_at, r.updated_at, r.created_by, r.updated_by,
		       r.cancel_reason, r.return_reason, r.pending_reception,
		       r.exam_date, r.exam_time, r.exam_location, r.notes, r.contact_attempts,
		       p.name AS patient_name,
		       p.national_id AS patient_national_id,
		       p.primary_phone AS patient_phone,
		       e.name AS exam_name,
		       c.name AS consultation_name,
		       u.name AS unit_name
		FROM referral_requests r
		JOIN patients p ON p.id = r.patient_id
		LEFT JOIN exams e ON e.id = r.exam_id
		LEFT JOIN consultations c ON c.id = r.consultation_id
		JOIN health_units u ON u.id = r.unit_id
		WHERE 1=1
	`)

	var args []interface{}
	if filter.UnitID != nil {
		builder.WriteString(" AND r.unit_id = ?")
		args = append(args, *filter.UnitID)
	}
	if filter.Status != nil {
		builder.WriteString(" AND r.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.RegulationTrack != nil {
		builder.WriteString(" AND r.regulation_track = ?")
		args = append(args, *filter.RegulationTrack)
	}
	if filter.PatientName != "" {
		builder.WriteString(" AND p.name LIKE ?")
		args = append(args, "%"+filter.PatientName+"%")
	}

	builder.WriteString(" ORDER BY r.updated_at DESC")
	if filter.Limit > 0 {
		builder.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	var requests []models.RequestDetail
	err := dao.db.SelectContext(ctx, &requests, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	return requests, nil
}

// ListForTriage retrieves the triage work queue: new requests plus requests
// bounced back after failed contact, grouped by unit.
func (dao *RequestDAO) ListForTriage(ctx context.Context) ([]models.RequestDetail, error) {
	return dao.listByStatuses(ctx,
		" ORDER BY u.name, r.requested_at",
		models.StatusAwaitingTriage, models.StatusReturnedNoContact)
}

// ListForRegulator retrieves the medical regulation queue for a track,
// urgent priority first, oldest first.
func (dao *RequestDAO) ListForRegulator(ctx context.Context, track models.RegulationTrack) ([]models.RequestDetail, error) {
	return dao.listByStatuses(ctx,
		" ORDER BY r.priority ASC, r.requested_at ASC",
		models.AwaitingDoctorStatus(track))
}

// ListForScheduler retrieves the scheduling queue for a track: approved
// requests plus those with contact attempts in flight.
func (dao *RequestDAO) ListForScheduler(ctx context.Context, track models.RegulationTrack) ([]models.RequestDetail, error) {
	query := `
		SELECT r.id, r.patient_id, r.exam_id, r.consultation_id, r.unit_id,
		       r.request_type, r.status, r.regulation_track, r.priority,
		       r.requested_at, r.updated_at, r.created_by, r.updated_by,
		       r.cancel_reason, r.return_reason, r.pending_reception,
		       r.exam_date, r.exam_time, r.exam_location, r.notes, r.contact_attempts,
		       p.name AS patient_name,
		       p.national_id AS patient_national_id,
		       p.primary_phone AS patient_phone,
		       e.name AS exam_name,
		       c.name AS consultation_name,
		       u.name AS unit_name
		FROM referral_requests r
		JOIN patients p ON p.id = r.patient_id
		LEFT JOIN exams e ON e.id = r.exam_id
		LEFT JOIN consultations c ON c.id = r.consultation_id
		JOIN health_units u ON u.id = r.unit_id
		WHERE r.status IN (?, ?)
		  AND r.regulation_track = ?
		ORDER BY r.updated_at ASC
	`

	var requests []models.RequestDetail
	err := dao.db.SelectContext(ctx, &requests, query,
		models.ApprovedStatus(track), models.StatusSchedulingInProgress, track)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduling queue: %w", err)
	}

	return requests, nil
}

func (dao *RequestDAO) listByStatuses(ctx context.Context, orderBy string, statuses ...models.RequestStatus) ([]models.RequestDetail, error) {
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}

	query := `
		SELECT r.id, r.patient_id, r.exam_id, r.consultation_id, r.unit_id,
		       r.request_type, r.status, r.regulation_track, r.priority,
		       r.requested_at, r.updated_at, r.created_by, r.updated_by,
		       r.cancel_reason, r.return_reason, r.pending_reception,
		       r.exam_date, r.exam_time, r.exam_location, r.notes, r.contact_attempts,
		       p.name AS patient_name,
		       p.national_id AS patient_national_id,
		       p.primary_phone AS patient_phone,
		       e.name AS exam_name,
		       c.name AS consultation_name,
		       u.name AS unit_name
		FROM referral_requests r
		JOIN patients p ON p.id = r.patient_id
		LEFT JOIN exams e ON e.id = r.exam_id
		LEFT JOIN consultations c ON c.id = r.consultation_id
		JOIN health_units u ON u.id = r.unit_id
		WHERE r.status IN (` + strings.Join(placeholders, ", ") + `)` + orderBy

	var requests []models.RequestDetail
	err := dao.db.SelectContext(ctx, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests by status: %w", err)
	}

	return requests, nil
}
