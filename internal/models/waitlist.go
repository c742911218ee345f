package models

import "time"

// WaitlistEntry holds a student's place in a class waitlist.
// Positions per class are dense (1..K) and follow DateAdded order.
type WaitlistEntry struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Position  int       `db:"position" json:"position"`
	DateAdded time.Time `db:"date_added" json:"date_added"`
}

// WaitlistView is a waitlist entry joined with the student's name for instructor views.
type WaitlistView struct {
	StudentID string    `db:"student_id" json:"student_id"`
	Name      string    `db:"name" json:"name"`
	Position  int       `db:"position" json:"position"`
	DateAdded time.Time `db:"date_added" json:"date_added"`
}

// StudentWaitlist is one waitlist membership of a student.
type StudentWaitlist struct {
	ClassID       string    `db:"class_id" json:"class_id"`
	CourseCode    string    `db:"course_code" json:"course_code"`
	SectionNumber int       `db:"section_number" json:"section_number"`
	Position      int       `db:"position" json:"position"`
	DateAdded     time.Time `db:"date_added" json:"date_added"`
}
