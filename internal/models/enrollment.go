package models

import "time"

// Enrollment is an active seat held by a student in a class. At most one per (student, class).
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// RosterEntry is an enrolled student with display name.
type RosterEntry struct {
	StudentID  string    `db:"student_id" json:"student_id"`
	Name       string    `db:"name" json:"name"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// DropRecord is the append-only audit row written when a student drops a class.
type DropRecord struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	DroppedAt time.Time `db:"dropped_at" json:"dropped_at"`
}
