package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

// DropRepository persists the append-only drop audit.
type DropRepository struct {
	db *sqlx.DB
}

// NewDropRepository constructs the repository.
func NewDropRepository(db *sqlx.DB) *DropRepository {
	return &DropRepository{db: db}
}

func (r *DropRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Exists reports whether the student already dropped the class.
func (r *DropRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT COUNT(1) FROM drop_records WHERE student_id = ? AND class_id = ?`)
	var count int
	if err := sqlx.GetContext(ctx, target, &count, query, studentID, classID); err != nil {
		return false, fmt.Errorf("check drop record: %w", err)
	}
	return count > 0, nil
}

// Create appends a drop record. A second record for the pair surfaces as a unique violation.
func (r *DropRepository) Create(ctx context.Context, exec sqlx.ExtContext, record *models.DropRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.DroppedAt.IsZero() {
		record.DroppedAt = time.Now().UTC()
	}
	const query = `INSERT INTO drop_records (id, student_id, class_id, dropped_at) VALUES (:id, :student_id, :class_id, :dropped_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, record); err != nil {
		return fmt.Errorf("create drop record: %w", err)
	}
	return nil
}

// DeleteByClass removes the drop audit of a class. Only section deletion calls this.
func (r *DropRepository) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error {
	target := r.exec(exec)
	query := target.Rebind(`DELETE FROM drop_records WHERE class_id = ?`)
	if _, err := target.ExecContext(ctx, query, classID); err != nil {
		return fmt.Errorf("delete class drop records: %w", err)
	}
	return nil
}

// ListByClass returns students who dropped a class, oldest drop first.
func (r *DropRepository) ListByClass(ctx context.Context, classID string) ([]models.DroppedStudent, error) {
	query := r.db.Rebind(`SELECT d.student_id, s.first_name || ' ' || s.last_name AS name
FROM drop_records d
JOIN students s ON s.id = d.student_id
WHERE d.class_id = ?
ORDER BY d.dropped_at, d.student_id`)
	var items []models.DroppedStudent
	if err := r.db.SelectContext(ctx, &items, query, classID); err != nil {
		return nil, fmt.Errorf("list dropped students: %w", err)
	}
	return items, nil
}
