package dto

// EnrollRequest is the body of an enroll call.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// AddSectionRequest describes a new class section. ClassID is generated when empty.
type AddSectionRequest struct {
	ClassID            string `json:"class_id" validate:"omitempty,max=64"`
	DepartmentID       string `json:"department_id" validate:"required"`
	CourseCode         string `json:"course_code" validate:"required"`
	SectionNumber      int    `json:"section_number" validate:"required,min=1"`
	InstructorID       string `json:"instructor_id" validate:"required"`
	CurrentEnrollment  int    `json:"current_enrollment" validate:"min=0"`
	MaxEnrollment      int    `json:"max_enrollment" validate:"required,min=1"`
	IsEnrollmentFrozen bool   `json:"is_enrollment_frozen"`
}

// FreezeRequest toggles the enrollment freeze flag.
type FreezeRequest struct {
	Frozen *bool `json:"frozen" validate:"required"`
}

// ReassignInstructorRequest moves a class to another instructor.
type ReassignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

// RosterQuery selects the roster export format.
type RosterQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
