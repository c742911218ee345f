package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// InstructorRepository reads instructor records.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindByID returns an instructor or sql.ErrNoRows.
func (r *InstructorRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Instructor, error) {
	if exec == nil {
		exec = r.db
	}
	query := exec.Rebind(`SELECT id, first_name, last_name, email FROM instructors WHERE id = ?`)
	var instructor models.Instructor
	if err := sqlx.GetContext(ctx, exec, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}
