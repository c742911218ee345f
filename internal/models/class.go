package models

import "time"

// ClassSection is one offering of a course with its own capacity, instructor and freeze flag.
type ClassSection struct {
	ID                 string    `db:"id" json:"class_id"`
	DepartmentID       string    `db:"department_id" json:"department_id"`
	CourseCode         string    `db:"course_code" json:"course_code"`
	SectionNumber      int       `db:"section_number" json:"section_number"`
	InstructorID       string    `db:"instructor_id" json:"instructor_id"`
	CurrentEnrollment  int       `db:"current_enrollment" json:"current_enrollment"`
	MaxEnrollment      int       `db:"max_enrollment" json:"max_enrollment"`
	IsEnrollmentFrozen bool      `db:"is_enrollment_frozen" json:"is_enrollment_frozen"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// InstructorClassEnrollment summarises the enrollment count of a section taught by an instructor.
type InstructorClassEnrollment struct {
	ClassID           string `db:"class_id" json:"class_id"`
	CourseCode        string `db:"course_code" json:"course_code"`
	SectionNumber     int    `db:"section_number" json:"section_number"`
	CurrentEnrollment int    `db:"current_enrollment" json:"current_enrollment"`
	MaxEnrollment     int    `db:"max_enrollment" json:"max_enrollment"`
}
