package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type waitlistStore interface {
	Find(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (*models.WaitlistEntry, error)
	FindByPosition(ctx context.Context, exec sqlx.ExtContext, classID string, position int) (*models.WaitlistEntry, error)
	Tail(ctx context.Context, exec sqlx.ExtContext, classID string) (*models.WaitlistEntry, error)
	CountByClass(ctx context.Context, exec sqlx.ExtContext, classID string) (int, error)
	CountByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) (int, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.WaitlistEntry) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	ShiftDown(ctx context.Context, exec sqlx.ExtContext, classID string, after int) error
	DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error
	ListByClass(ctx context.Context, exec sqlx.ExtContext, classID string) ([]models.WaitlistEntry, error)
}

// WaitlistManager keeps every class waitlist dense (positions 1..K) and in admission order.
// All methods run on the caller's transaction; the caller holds the class lock.
type WaitlistManager struct {
	store waitlistStore
	now   func() time.Time
}

// NewWaitlistManager constructs a manager over the waitlist store.
func NewWaitlistManager(store waitlistStore) *WaitlistManager {
	return &WaitlistManager{store: store, now: time.Now}
}

// Admit appends the student to the class waitlist and returns the assigned position.
func (m *WaitlistManager) Admit(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (int, error) {
	count, err := m.store.CountByClass(ctx, exec, classID)
	if err != nil {
		return 0, err
	}

	added := m.now().UTC().Truncate(time.Microsecond)
	if count > 0 {
		tail, err := m.store.Tail(ctx, exec, classID)
		if err != nil {
			return 0, err
		}
		// admission time must never sort before the current tail
		if floor := tail.DateAdded.UTC().Add(time.Microsecond); added.Before(floor) {
			added = floor
		}
	}

	entry := &models.WaitlistEntry{StudentID: studentID, ClassID: classID, Position: count + 1, DateAdded: added}
	if err := m.store.Insert(ctx, exec, entry); err != nil {
		if repository.IsUniqueViolation(err) {
			return 0, appErrors.Wrap(err, appErrors.ErrDuplicateWaitlistEntry, "")
		}
		return 0, err
	}
	return entry.Position, nil
}

// PromoteHead removes the entry at position 1 and compacts the rest. It returns nil
// when the waitlist is empty. The caller creates the enrollment in the same transaction.
func (m *WaitlistManager) PromoteHead(ctx context.Context, exec sqlx.ExtContext, classID string) (*models.WaitlistEntry, error) {
	head, err := m.Head(ctx, exec, classID)
	if err != nil || head == nil {
		return nil, err
	}
	if err := m.removeEntry(ctx, exec, head); err != nil {
		return nil, err
	}
	return head, nil
}

// Head returns the entry at position 1 or nil.
func (m *WaitlistManager) Head(ctx context.Context, exec sqlx.ExtContext, classID string) (*models.WaitlistEntry, error) {
	head, err := m.store.FindByPosition(ctx, exec, classID, 1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return head, nil
}

// Remove deletes the student's entry if present and compacts the positions after it.
func (m *WaitlistManager) Remove(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error) {
	entry, err := m.store.Find(ctx, exec, studentID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := m.removeEntry(ctx, exec, entry); err != nil {
		return false, err
	}
	return true, nil
}

// PositionOf returns the student's position or nil when not waitlisted.
func (m *WaitlistManager) PositionOf(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (*int, error) {
	entry, err := m.store.Find(ctx, exec, studentID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	position := entry.Position
	return &position, nil
}

// ListOrdered returns the class waitlist ordered by admission time.
func (m *WaitlistManager) ListOrdered(ctx context.Context, exec sqlx.ExtContext, classID string) ([]models.WaitlistEntry, error) {
	return m.store.ListByClass(ctx, exec, classID)
}

// Clear removes the whole class waitlist.
func (m *WaitlistManager) Clear(ctx context.Context, exec sqlx.ExtContext, classID string) error {
	return m.store.DeleteByClass(ctx, exec, classID)
}

// ActiveCount returns the student's waitlist memberships across all classes.
func (m *WaitlistManager) ActiveCount(ctx context.Context, exec sqlx.ExtContext, studentID string) (int, error) {
	return m.store.CountByStudent(ctx, exec, studentID)
}

func (m *WaitlistManager) removeEntry(ctx context.Context, exec sqlx.ExtContext, entry *models.WaitlistEntry) error {
	if err := m.store.Delete(ctx, exec, entry.ID); err != nil {
		return err
	}
	return m.store.ShiftDown(ctx, exec, entry.ClassID, entry.Position)
}
