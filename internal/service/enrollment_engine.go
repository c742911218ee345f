package service

import (
	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// enrollState is what the engine reads inside the transaction before deciding an enroll call.
type enrollState struct {
	class           *models.ClassSection
	student         *models.Student
	enrolled        bool
	waitlisted      bool
	activeWaitlists int
}

type enrollAction int

const (
	actionEnroll enrollAction = iota + 1
	actionWaitlist
)

// enrollPlan is the set of writes an enroll call performs.
type enrollPlan struct {
	action enrollAction
	// leaveWaitlist is set when a waitlisted student takes a free seat directly.
	leaveWaitlist bool
	newCount      int
}

// decideEnroll applies the enroll rules to a snapshot. It performs no I/O.
func decideEnroll(policy Policy, s enrollState) (enrollPlan, *appErrors.Error) {
	if policy.IsFrozen(s.class) {
		return enrollPlan{}, appErrors.Clone(appErrors.ErrClassFrozen, "")
	}
	if s.enrolled {
		return enrollPlan{}, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}
	if policy.HasCapacity(s.class) {
		return enrollPlan{action: actionEnroll, leaveWaitlist: s.waitlisted, newCount: s.class.CurrentEnrollment + 1}, nil
	}
	if s.waitlisted {
		return enrollPlan{}, appErrors.Clone(appErrors.ErrAlreadyWaitlisted, "")
	}
	if policy.WaitlistCapReached(s.student, s.activeWaitlists) {
		return enrollPlan{}, appErrors.Clone(appErrors.ErrWaitlistCapExceeded, "")
	}
	return enrollPlan{action: actionWaitlist, newCount: s.class.CurrentEnrollment}, nil
}

// dropState is what the engine reads inside the transaction before deciding a drop call.
type dropState struct {
	class    *models.ClassSection
	enrolled bool
	dropped  bool
	head     *models.WaitlistEntry
}

// dropPlan is the set of writes a drop call performs beyond recording the drop
// and removing the enrollment.
type dropPlan struct {
	promote  *models.WaitlistEntry
	newCount int
}

// decideDrop applies the drop rules to a snapshot. It performs no I/O.
//
// A prior drop record wins over a missing enrollment so a repeated drop reports
// ALREADY_DROPPED rather than NOT_ENROLLED.
func decideDrop(policy Policy, s dropState) (dropPlan, *appErrors.Error) {
	if s.dropped {
		return dropPlan{}, appErrors.Clone(appErrors.ErrAlreadyDropped, "")
	}
	if !s.enrolled {
		return dropPlan{}, appErrors.Clone(appErrors.ErrNotEnrolled, "")
	}
	if !policy.IsFrozen(s.class) && s.head != nil {
		// one seat vacated, one filled
		return dropPlan{promote: s.head, newCount: s.class.CurrentEnrollment}, nil
	}
	return dropPlan{newCount: policy.ReleasedSeatCount(s.class)}, nil
}
