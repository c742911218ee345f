package models

// Instructor teaches class sections.
type Instructor struct {
	ID        string `db:"id" json:"instructor_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
