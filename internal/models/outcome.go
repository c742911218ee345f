package models

// EnrollOutcome tags the success variant of an enroll call.
type EnrollOutcome string

// Enroll outcomes.
const (
	OutcomeEnrolled   EnrollOutcome = "ENROLLED"
	OutcomeWaitlisted EnrollOutcome = "WAITLISTED"
)

// EnrollResult is returned by a successful enroll call. Position is set only when waitlisted.
type EnrollResult struct {
	Outcome   EnrollOutcome `json:"outcome"`
	StudentID string        `json:"student_id"`
	ClassID   string        `json:"class_id"`
	Position  *int          `json:"position,omitempty"`
}

// DropOutcome tags the success variant of a drop call.
type DropOutcome string

// Drop outcomes.
const (
	OutcomeDropped            DropOutcome = "DROPPED"
	OutcomeDroppedAndPromoted DropOutcome = "DROPPED_AND_PROMOTED"
)

// DropResult is returned by a successful drop call.
type DropResult struct {
	Outcome           DropOutcome `json:"outcome"`
	StudentID         string      `json:"student_id"`
	ClassID           string      `json:"class_id"`
	PromotedStudentID *string     `json:"promoted_student_id,omitempty"`
}

// WaitlistPosition answers a position lookup; Position is nil when the student is not waitlisted.
type WaitlistPosition struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
	Position  *int   `json:"position"`
}

// LeaveWaitlistResult reports whether an entry was actually removed.
type LeaveWaitlistResult struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
	Removed   bool   `json:"removed"`
}

// FreezeResult reports a freeze toggle. ClassID is empty for a global toggle.
type FreezeResult struct {
	ClassID  string `json:"class_id,omitempty"`
	Global   bool   `json:"global"`
	Frozen   bool   `json:"frozen"`
	Affected int64  `json:"affected"`
}

// StudentWaitlistSummary lists a student's waitlist memberships against the cap in force.
type StudentWaitlistSummary struct {
	StudentID string            `json:"student_id"`
	Cap       int               `json:"cap"`
	Waitlists []StudentWaitlist `json:"waitlists"`
}
