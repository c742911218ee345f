package models

import "strings"

// Student represents a learner who can hold enrollments and waitlist memberships.
type Student struct {
	ID              string `db:"id" json:"student_id"`
	FirstName       string `db:"first_name" json:"first_name"`
	LastName        string `db:"last_name" json:"last_name"`
	MaxWaitingLists int    `db:"max_waiting_lists" json:"max_waiting_lists"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// DroppedStudent is a drop-audit row joined with the student's name.
type DroppedStudent struct {
	StudentID string `db:"student_id" json:"student_id"`
	Name      string `db:"name" json:"name"`
}
