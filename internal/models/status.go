package models

// RequestStatus is the lifecycle status of a referral request. Values are
// persisted as stable string tokens so the audit trail stays readable across
// schema changes.
type RequestStatus string

const (
	StatusReceived                RequestStatus = "received"
	StatusAwaitingTriage          RequestStatus = "awaiting_triage"
	StatusCancelledByReception    RequestStatus = "cancelled_by_reception"
	StatusTriageDoneMunicipal     RequestStatus = "triage_done_municipal"
	StatusTriageDoneState         RequestStatus = "triage_done_state"
	StatusAwaitingDoctorMunicipal RequestStatus = "awaiting_doctor_municipal"
	StatusAwaitingDoctorState     RequestStatus = "awaiting_doctor_state"
	StatusReturnedByDoctor        RequestStatus = "returned_by_doctor"
	StatusCancelledByDoctor       RequestStatus = "cancelled_by_doctor"
	StatusApprovedMunicipal       RequestStatus = "approved_municipal"
	StatusApprovedState           RequestStatus = "approved_state"
	StatusSchedulingInProgress    RequestStatus = "scheduling_in_progress"
	StatusSchedulingConfirmed     RequestStatus = "scheduling_confirmed"
	StatusReturnedNoContact       RequestStatus = "returned_no_contact"
	StatusPickedUp                RequestStatus = "picked_up"
)

// AllStatuses lists every known request status.
func AllStatuses() []RequestStatus {
	return []RequestStatus{
		StatusReceived,
		StatusAwaitingTriage,
		StatusCancelledByReception,
		StatusTriageDoneMunicipal,
		StatusTriageDoneState,
		StatusAwaitingDoctorMunicipal,
		StatusAwaitingDoctorState,
		StatusReturnedByDoctor,
		StatusCancelledByDoctor,
		StatusApprovedMunicipal,
		StatusApprovedState,
		StatusSchedulingInProgress,
		StatusSchedulingConfirmed,
		StatusReturnedNoContact,
		StatusPickedUp,
	}
}

// IsValidStatus reports whether the token names a known status.
func IsValidStatus(status RequestStatus) bool {
	for _, s := range AllStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// allowedTransitions is the adjacency map of the request state machine. Any
// edge not listed here is rejected by the transition engine.
//
// approved_* -> returned_no_contact looks odd but is reachable: the contact
// attempt counter never resets, so a request that bounced back to reception
// and was re-approved may cross the attempt threshold on its next try.
var allowedTransitions = map[RequestStatus]map[RequestStatus]bool{
	StatusReceived: {
		StatusAwaitingTriage: true,
	},
	StatusAwaitingTriage: {
		StatusCancelledByReception:    true,
		StatusTriageDoneMunicipal:     true,
		StatusTriageDoneState:         true,
		StatusAwaitingDoctorMunicipal: true,
		StatusAwaitingDoctorState:     true,
	},
	StatusTriageDoneMunicipal: {
		StatusAwaitingDoctorMunicipal: true,
	},
	StatusTriageDoneState: {
		StatusAwaitingDoctorState: true,
	},
	StatusAwaitingDoctorMunicipal: {
		StatusReturnedByDoctor:  true,
		StatusCancelledByDoctor: true,
		StatusApprovedMunicipal: true,
	},
	StatusAwaitingDoctorState: {
		StatusReturnedByDoctor:  true,
		StatusCancelledByDoctor: true,
		StatusApprovedState:     true,
	},
	StatusApprovedMunicipal: {
		StatusSchedulingInProgress: true,
		StatusSchedulingConfirmed:  true,
		StatusReturnedNoContact:    true,
	},
	StatusApprovedState: {
		StatusSchedulingInProgress: true,
		StatusSchedulingConfirmed:  true,
		StatusReturnedNoContact:    true,
	},
	StatusSchedulingInProgress: {
		StatusSchedulingInProgress: true,
		StatusSchedulingConfirmed:  true,
		StatusReturnedNoContact:    true,
	},
	StatusSchedulingConfirmed: {
		StatusPickedUp: true,
	},
	StatusReturnedByDoctor: {
		StatusAwaitingTriage:       true,
		StatusCancelledByReception: true,
	},
	StatusReturnedNoContact: {
		StatusAwaitingTriage:       true,
		StatusCancelledByReception: true,
	},
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to RequestStatus) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IsTerminal reports whether no further transitions are allowed from a status.
func IsTerminal(status RequestStatus) bool {
	return len(allowedTransitions[status]) == 0
}

// RegulationTrack is the processing lane assigned at triage.
type RegulationTrack string

const (
	TrackMunicipal RegulationTrack = "municipal"
	TrackState     RegulationTrack = "state"
)

// IsValidTrack reports whether the token names a known regulation track.
func IsValidTrack(track RegulationTrack) bool {
	return track == TrackMunicipal || track == TrackState
}

// AwaitingDoctorStatus returns the doctor queue status for a track.
func AwaitingDoctorStatus(track RegulationTrack) RequestStatus {
	if track == TrackMunicipal {
		return StatusAwaitingDoctorMunicipal
	}
	return StatusAwaitingDoctorState
}

// ApprovedStatus returns the approved-for-scheduling status for a track.
func ApprovedStatus(track RegulationTrack) RequestStatus {
	if track == TrackMunicipal {
		return StatusApprovedMunicipal
	}
	return StatusApprovedState
}

// Priority is the triage priority of a request.
type Priority string

const (
	PriorityUrgent  Priority = "P1"
	PriorityRoutine Priority = "P2"
)

// IsValidPriority reports whether the token names a known priority.
func IsValidPriority(priority Priority) bool {
	return priority == PriorityUrgent || priority == PriorityRoutine
}

// AttemptOutcome is the recorded result of one scheduling contact attempt.
type AttemptOutcome string

const (
	OutcomeSuccess     AttemptOutcome = "success"
	OutcomeNoContact   AttemptOutcome = "no_contact"
	OutcomeMessageLeft AttemptOutcome = "message_left"
	OutcomeOther       AttemptOutcome = "other"
)

// IsValidOutcome reports whether the token names a known attempt outcome.
func IsValidOutcome(outcome AttemptOutcome) bool {
	switch outcome {
	case OutcomeSuccess, OutcomeNoContact, OutcomeMessageLeft, OutcomeOther:
		return true
	}
	return false
}
