package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// StudentRepository reads student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error) {
	if exec == nil {
		exec = r.db
	}
	query := exec.Rebind(`SELECT id, first_name, last_name, max_waiting_lists FROM students WHERE id = ?`)
	var student models.Student
	if err := sqlx.GetContext(ctx, exec, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDForUpdate loads a student and locks the row so concurrent waitlist
// admissions of the same student across classes observe each other.
func (r *StudentRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error) {
	query := exec.Rebind(`SELECT id, first_name, last_name, max_waiting_lists FROM students WHERE id = ?` + lockSuffix(exec))
	var student models.Student
	if err := sqlx.GetContext(ctx, exec, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}
