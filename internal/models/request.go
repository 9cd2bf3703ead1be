package models

import (
	"time"
)

// Request represents the referral_requests table
type Request struct {
	ID               int64            `db:"id" json:"id"`
	PatientID        int64            `db:"patient_id" json:"patientId"`
	ExamID           *int64           `db:"exam_id" json:"examId,omitempty"`
	ConsultationID   *int64           `db:"consultation_id" json:"consultationId,omitempty"`
	UnitID           int64            `db:"unit_id" json:"unitId"`
	RequestType      string           `db:"request_type" json:"requestType"`
	Status           RequestStatus    `db:"status" json:"status"`
	RegulationTrack  *RegulationTrack `db:"regulation_track" json:"regulationTrack,omitempty"`
	Priority         *Priority        `db:"priority" json:"priority,omitempty"`
	RequestedAt      time.Time        `db:"requested_at" json:"requestedAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
	CreatedBy        int64            `db:"created_by" json:"createdBy"`
	UpdatedBy        int64            `db:"updated_by" json:"updatedBy"`
	CancelReason     *string          `db:"cancel_reason" json:"cancelReason,omitempty"`
	ReturnReason     *string          `db:"return_reason" json:"returnReason,omitempty"`
	PendingReception bool             `db:"pending_reception" json:"pendingReception"`
	ExamDate         *time.Time       `db:"exam_date" json:"examDate,omitempty"`
	ExamTime         *string          `db:"exam_time" json:"examTime,omitempty"`
	ExamLocation     *string          `db:"exam_location" json:"examLocation,omitempty"`
	Notes            *string          `db:"notes" json:"notes,omitempty"`
	ContactAttempts  int              `db:"contact_attempts" json:"contactAttempts"`
}

// RequestTypes
const (
	RequestTypeExam         = "exam"
	RequestTypeConsultation = "consultation"
)

// RequestDetail is a Request joined with the names of its patient, target and
// originating unit.
type RequestDetail struct {
	Request
	PatientName      string  `db:"patient_name" json:"patientName"`
	PatientNationalID string `db:"patient_national_id" json:"patientNationalId"`
	PatientPhone     *string `db:"patient_phone" json:"patientPhone,omitempty"`
	ExamName         *string `db:"exam_name" json:"examName,omitempty"`
	ConsultationName *string `db:"consultation_name" json:"consultationName,omitempty"`
	UnitName         string  `db:"unit_name" json:"unitName"`
}

// RequestCreateAPIRequest is the API payload for opening a new referral request.
// Exactly one of examId and consultationId must be set.
type RequestCreateAPIRequest struct {
	PatientID      int64   `json:"patientId" binding:"required"`
	ExamID         *int64  `json:"examId,omitempty"`
	ConsultationID *int64  `json:"consultationId,omitempty"`
	UnitID         int64   `json:"unitId" binding:"required"`
	Notes          *string `json:"notes,omitempty"`
}

// ClassifyAPIRequest is the API payload for the triage classification action.
type ClassifyAPIRequest struct {
	RegulationTrack RegulationTrack `json:"regulationTrack" binding:"required"`
	Priority        Priority        `json:"priority" binding:"required"`
}

// TrackAPIRequest is the API payload for actions scoped to a regulation track.
type TrackAPIRequest struct {
	RegulationTrack RegulationTrack `json:"regulationTrack" binding:"required"`
}

// ReasonAPIRequest is the API payload for actions that require a free-text
// reason (cancellations, returns, return handling).
type ReasonAPIRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ContactAttemptAPIRequest is the API payload for logging a scheduling contact
// attempt. Exam date, time and location are required when the outcome is
// success.
type ContactAttemptAPIRequest struct {
	Outcome      AttemptOutcome `json:"outcome" binding:"required"`
	Summary      string         `json:"summary"`
	ExamDate     *string        `json:"examDate,omitempty"`
	ExamTime     *string        `json:"examTime,omitempty"`
	ExamLocation *string        `json:"examLocation,omitempty"`
}

// RequestListFilter carries explicit list filters; callers supply them on
// every call, nothing is remembered server-side.
type RequestListFilter struct {
	UnitID          *int64           `form:"unitId"`
	Status          *RequestStatus   `form:"status"`
	RegulationTrack *RegulationTrack `form:"track"`
	PatientName     string           `form:"patientName"`
	Limit           int              `form:"limit"`
	Offset          int              `form:"offset"`
}

// RequestCreatedResponse is returned after a request is opened.
type RequestCreatedResponse struct {
	ID     int64         `json:"id"`
	Status RequestStatus `json:"status"`
}
