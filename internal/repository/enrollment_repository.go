package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Exists reports whether the student holds a seat in the class.
func (r *EnrollmentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT COUNT(1) FROM enrollments WHERE student_id = ? AND class_id = ?`)
	var count int
	if err := sqlx.GetContext(ctx, target, &count, query, studentID, classID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// Create inserts an enrollment row. A duplicate pair surfaces as a unique violation.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, class_id, enrolled_at) VALUES (:id, :student_id, :class_id, :enrolled_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes the enrollment of a student in a class and reports whether a row was removed.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error) {
	target := r.exec(exec)
	query := target.Rebind(`DELETE FROM enrollments WHERE student_id = ? AND class_id = ?`)
	res, err := target.ExecContext(ctx, query, studentID, classID)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	return affected > 0, nil
}

// DeleteByClass removes every enrollment of a class.
func (r *EnrollmentRepository) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error {
	target := r.exec(exec)
	query := target.Rebind(`DELETE FROM enrollments WHERE class_id = ?`)
	if _, err := target.ExecContext(ctx, query, classID); err != nil {
		return fmt.Errorf("delete class enrollments: %w", err)
	}
	return nil
}

// ListRoster returns enrolled students of a class in enrollment order.
func (r *EnrollmentRepository) ListRoster(ctx context.Context, classID string) ([]models.RosterEntry, error) {
	query := r.db.Rebind(`SELECT e.student_id, s.first_name || ' ' || s.last_name AS name, e.enrolled_at
FROM enrollments e
JOIN students s ON s.id = e.student_id
WHERE e.class_id = ?
ORDER BY e.enrolled_at, e.student_id`)
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, classID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}
