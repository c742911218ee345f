package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

const classColumns = `id, department_id, course_code, section_number, instructor_id, current_enrollment, max_enrollment, is_enrollment_frozen, created_at`

// ClassRepository persists class sections.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every class section ordered by department, course and section.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassSection, error) {
	query := `SELECT ` + classColumns + ` FROM classes ORDER BY department_id, course_code, section_number`
	var classes []models.ClassSection
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by id or sql.ErrNoRows.
func (r *ClassRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassSection, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT ` + classColumns + ` FROM classes WHERE id = ?`)
	var class models.ClassSection
	if err := sqlx.GetContext(ctx, target, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByIDForUpdate loads a class and locks its row until the surrounding transaction ends.
// Every mutation of a class's enrollment or waitlist starts here, which serializes them per class.
func (r *ClassRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassSection, error) {
	query := exec.Rebind(`SELECT ` + classColumns + ` FROM classes WHERE id = ?` + lockSuffix(exec))
	var class models.ClassSection
	if err := sqlx.GetContext(ctx, exec, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create inserts a class section.
func (r *ClassRepository) Create(ctx context.Context, exec sqlx.ExtContext, class *models.ClassSection) error {
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classes (` + classColumns + `)
VALUES (:id, :department_id, :course_code, :section_number, :instructor_id, :current_enrollment, :max_enrollment, :is_enrollment_frozen, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// UpdateEnrollmentCount stores a new current_enrollment value.
func (r *ClassRepository) UpdateEnrollmentCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error {
	target := r.exec(exec)
	query := target.Rebind(`UPDATE classes SET current_enrollment = ? WHERE id = ?`)
	if _, err := target.ExecContext(ctx, query, count, id); err != nil {
		return fmt.Errorf("update enrollment count: %w", err)
	}
	return nil
}

// SetFrozen toggles the freeze flag of one class and returns the affected row count.
func (r *ClassRepository) SetFrozen(ctx context.Context, exec sqlx.ExtContext, id string, frozen bool) (int64, error) {
	target := r.exec(exec)
	query := target.Rebind(`UPDATE classes SET is_enrollment_frozen = ? WHERE id = ?`)
	res, err := target.ExecContext(ctx, query, frozen, id)
	if err != nil {
		return 0, fmt.Errorf("set class freeze: %w", err)
	}
	return res.RowsAffected()
}

// SetFrozenAll toggles the freeze flag of every class.
func (r *ClassRepository) SetFrozenAll(ctx context.Context, exec sqlx.ExtContext, frozen bool) (int64, error) {
	target := r.exec(exec)
	query := target.Rebind(`UPDATE classes SET is_enrollment_frozen = ?`)
	res, err := target.ExecContext(ctx, query, frozen)
	if err != nil {
		return 0, fmt.Errorf("set global freeze: %w", err)
	}
	return res.RowsAffected()
}

// UpdateInstructor reassigns the instructor of a class.
func (r *ClassRepository) UpdateInstructor(ctx context.Context, exec sqlx.ExtContext, id, instructorID string) error {
	target := r.exec(exec)
	query := target.Rebind(`UPDATE classes SET instructor_id = ? WHERE id = ?`)
	if _, err := target.ExecContext(ctx, query, instructorID, id); err != nil {
		return fmt.Errorf("update class instructor: %w", err)
	}
	return nil
}

// Delete removes the class row. Dependent rows must already be gone.
func (r *ClassRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	query := target.Rebind(`DELETE FROM classes WHERE id = ?`)
	if _, err := target.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// ListByInstructor returns enrollment counts for every section taught by an instructor.
func (r *ClassRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorClassEnrollment, error) {
	query := r.db.Rebind(`SELECT id AS class_id, course_code, section_number, current_enrollment, max_enrollment
FROM classes WHERE instructor_id = ? ORDER BY course_code, section_number`)
	var items []models.InstructorClassEnrollment
	if err := r.db.SelectContext(ctx, &items, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor classes: %w", err)
	}
	return items, nil
}
