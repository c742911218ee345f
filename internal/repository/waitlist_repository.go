package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
)

const waitlistColumns = `id, student_id, class_id, position, date_added`

// WaitlistRepository persists waitlist entries. Callers keep positions dense;
// this layer only executes the reads and writes they ask for.
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository constructs the repository.
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Find returns the entry of a student in a class or sql.ErrNoRows.
func (r *WaitlistRepository) Find(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (*models.WaitlistEntry, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE student_id = ? AND class_id = ?`)
	var entry models.WaitlistEntry
	if err := sqlx.GetContext(ctx, target, &entry, query, studentID, classID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByPosition returns the entry holding a position in a class or sql.ErrNoRows.
func (r *WaitlistRepository) FindByPosition(ctx context.Context, exec sqlx.ExtContext, classID string, position int) (*models.WaitlistEntry, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE class_id = ? AND position = ?`)
	var entry models.WaitlistEntry
	if err := sqlx.GetContext(ctx, target, &entry, query, classID, position); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Tail returns the last entry of a class waitlist or sql.ErrNoRows when it is empty.
func (r *WaitlistRepository) Tail(ctx context.Context, exec sqlx.ExtContext, classID string) (*models.WaitlistEntry, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE class_id = ? ORDER BY position DESC LIMIT 1`)
	var entry models.WaitlistEntry
	if err := sqlx.GetContext(ctx, target, &entry, query, classID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByClass returns the number of entries in a class waitlist.
func (r *WaitlistRepository) CountByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT COUNT(1) FROM waitlist_entries WHERE class_id = ?`)
	var count int
	if err := sqlx.GetContext(ctx, target, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count class waitlist: %w", err)
	}
	return count, nil
}

// CountByStudent returns the number of waitlists a student belongs to across all classes.
func (r *WaitlistRepository) CountByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) (int, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT COUNT(1) FROM waitlist_entries WHERE student_id = ?`)
	var count int
	if err := sqlx.GetContext(ctx, target, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count student waitlists: %w", err)
	}
	return count, nil
}

// Insert adds an entry. A duplicate (student, class) pair surfaces as a unique violation.
func (r *WaitlistRepository) Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.WaitlistEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO waitlist_entries (` + waitlistColumns + `) VALUES (:id, :student_id, :class_id, :position, :date_added)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("insert waitlist entry: %w", err)
	}
	return nil
}

// Delete removes one entry by id.
func (r *WaitlistRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	query := target.Rebind(`DELETE FROM waitlist_entries WHERE id = ?`)
	if _, err := target.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete waitlist entry: %w", err)
	}
	return nil
}

// ShiftDown decrements the position of every entry after the given one.
func (r *WaitlistRepository) ShiftDown(ctx context.Context, exec sqlx.ExtContext, classID string, after int) error {
	target := r.exec(exec)
	query := target.Rebind(`UPDATE waitlist_entries SET position = position - 1 WHERE class_id = ? AND position > ?`)
	if _, err := target.ExecContext(ctx, query, classID, after); err != nil {
		return fmt.Errorf("compact waitlist: %w", err)
	}
	return nil
}

// DeleteByClass removes every entry of a class.
func (r *WaitlistRepository) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error {
	target := r.exec(exec)
	query := target.Rebind(`DELETE FROM waitlist_entries WHERE class_id = ?`)
	if _, err := target.ExecContext(ctx, query, classID); err != nil {
		return fmt.Errorf("delete class waitlist: %w", err)
	}
	return nil
}

// ListByClass returns the entries of a class in admission order.
func (r *WaitlistRepository) ListByClass(ctx context.Context, exec sqlx.ExtContext, classID string) ([]models.WaitlistEntry, error) {
	target := r.exec(exec)
	query := target.Rebind(`SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE class_id = ? ORDER BY date_added, position`)
	var entries []models.WaitlistEntry
	if err := sqlx.SelectContext(ctx, target, &entries, query, classID); err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	return entries, nil
}

// ListViewByClass returns the entries of a class joined with student names, in admission order.
func (r *WaitlistRepository) ListViewByClass(ctx context.Context, classID string) ([]models.WaitlistView, error) {
	query := r.db.Rebind(`SELECT w.student_id, s.first_name || ' ' || s.last_name AS name, w.position, w.date_added
FROM waitlist_entries w
JOIN students s ON s.id = w.student_id
WHERE w.class_id = ?
ORDER BY w.date_added, w.position`)
	var views []models.WaitlistView
	if err := r.db.SelectContext(ctx, &views, query, classID); err != nil {
		return nil, fmt.Errorf("list waitlist view: %w", err)
	}
	return views, nil
}

// ListByStudent returns every waitlist membership of a student.
func (r *WaitlistRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentWaitlist, error) {
	query := r.db.Rebind(`SELECT w.class_id, c.course_code, c.section_number, w.position, w.date_added
FROM waitlist_entries w
JOIN classes c ON c.id = w.class_id
WHERE w.student_id = ?
ORDER BY w.date_added`)
	var items []models.StudentWaitlist
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list student waitlists: %w", err)
	}
	return items, nil
}
