package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
)

// testEnv wires every service against a throwaway SQLite file.
type testEnv struct {
	db         *sqlx.DB
	tx         *repository.TxRunner
	waitlist   *WaitlistManager
	enrollRepo *repository.EnrollmentRepository
	enrollment *EnrollmentService
	sections   *SectionService
	views      *InstructorViewService
	roster     *RosterService
	ctx        context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		Path:       filepath.Join(t.TempDir(), "enrollment.db"),
		AutoSchema: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tx := repository.NewTxRunner(db, 2, nil)
	classes := repository.NewClassRepository(db)
	students := repository.NewStudentRepository(db)
	instructors := repository.NewInstructorRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	drops := repository.NewDropRepository(db)
	waitlists := repository.NewWaitlistRepository(db)
	manager := NewWaitlistManager(waitlists)

	env := &testEnv{
		db:         db,
		tx:         tx,
		waitlist:   manager,
		enrollRepo: enrollments,
		ctx:        context.Background(),
	}
	env.enrollment = NewEnrollmentService(EnrollmentServiceDeps{
		Tx:          tx,
		Classes:     classes,
		Students:    students,
		Enrollments: enrollments,
		Drops:       drops,
		Waitlist:    manager,
		Views:       waitlists,
		Policy:      NewPolicy(3),
	})
	env.sections = NewSectionService(tx, classes, instructors, enrollments, drops, manager, nil, nil, nil, nil)
	env.views = NewInstructorViewService(classes, instructors, drops, waitlists, nil, nil)
	env.roster = NewRosterService(classes, enrollments, waitlists, nil, nil)

	env.addInstructor(t, "ins-1")
	return env
}

func (e *testEnv) addInstructor(t *testing.T, id string) {
	t.Helper()
	e.db.MustExec(`INSERT INTO instructors (id, first_name, last_name, email) VALUES (?, ?, ?, ?)`, id, "Grace", "Hopper", id+"@example.edu")
}

func (e *testEnv) addStudents(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		e.db.MustExec(`INSERT INTO students (id, first_name, last_name, max_waiting_lists) VALUES (?, ?, ?, 0)`, id, "Student", id)
	}
}

func (e *testEnv) addClass(t *testing.T, id string, current, max int) {
	t.Helper()
	e.db.MustExec(`INSERT INTO classes (id, department_id, course_code, section_number, instructor_id, current_enrollment, max_enrollment, is_enrollment_frozen, created_at)
VALUES (?, 'CS', ?, 1, 'ins-1', ?, ?, 0, CURRENT_TIMESTAMP)`, id, "CS-"+id, current, max)
}

func (e *testEnv) class(t *testing.T, id string) models.ClassSection {
	t.Helper()
	var class models.ClassSection
	require.NoError(t, e.db.Get(&class, `SELECT * FROM classes WHERE id = ?`, id))
	return class
}

func (e *testEnv) enrolled(t *testing.T, studentID, classID string) bool {
	t.Helper()
	exists, err := e.enrollRepo.Exists(e.ctx, nil, studentID, classID)
	require.NoError(t, err)
	return exists
}

// queue returns the waitlist of a class in admission order after checking positions are 1..K.
func (e *testEnv) queue(t *testing.T, classID string) []string {
	t.Helper()
	entries, err := e.waitlist.ListOrdered(e.ctx, nil, classID)
	require.NoError(t, err)
	students := make([]string, 0, len(entries))
	for i, entry := range entries {
		require.Equal(t, i+1, entry.Position, "positions must be contiguous and follow admission order")
		if i > 0 {
			require.True(t, entry.DateAdded.After(entries[i-1].DateAdded))
		}
		students = append(students, entry.StudentID)
	}
	return students
}

func (e *testEnv) count(t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, query, args...))
	return n
}
