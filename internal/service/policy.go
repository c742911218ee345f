package service

import "github.com/noah-isme/course-enrollment-api/internal/models"

// DefaultMaxWaitingLists is the waitlist cap applied when neither the student nor configuration sets one.
const DefaultMaxWaitingLists = 3

// Policy holds the capacity and freeze predicates consulted by the enrollment engine.
type Policy struct {
	defaultCap int
}

// NewPolicy builds a policy whose waitlist cap falls back to defaultCap.
func NewPolicy(defaultCap int) Policy {
	if defaultCap <= 0 {
		defaultCap = DefaultMaxWaitingLists
	}
	return Policy{defaultCap: defaultCap}
}

// HasCapacity reports whether the class has a free seat.
func (Policy) HasCapacity(class *models.ClassSection) bool {
	return class.CurrentEnrollment < class.MaxEnrollment
}

// IsFrozen reports whether enrollment and promotion are suspended for the class.
func (Policy) IsFrozen(class *models.ClassSection) bool {
	return class.IsEnrollmentFrozen
}

// WaitlistCap resolves the cap in force for a student.
func (p Policy) WaitlistCap(student *models.Student) int {
	if student != nil && student.MaxWaitingLists > 0 {
		return student.MaxWaitingLists
	}
	return p.defaultCap
}

// WaitlistCapReached reports whether a student with activeWaitlists memberships,
// counted across all classes, may not join another waitlist.
func (p Policy) WaitlistCapReached(student *models.Student, activeWaitlists int) bool {
	return activeWaitlists >= p.WaitlistCap(student)
}

// ReleasedSeatCount returns the enrollment count after one seat is released, never below zero.
func (Policy) ReleasedSeatCount(class *models.ClassSection) int {
	if class.CurrentEnrollment <= 0 {
		return 0
	}
	return class.CurrentEnrollment - 1
}
