package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

func sectionRequest() dto.AddSectionRequest {
	return dto.AddSectionRequest{
		ClassID:       "cs101-1",
		DepartmentID:  "CS",
		CourseCode:    "CS101",
		SectionNumber: 1,
		InstructorID:  "ins-1",
		MaxEnrollment: 30,
	}
}

func TestAddSectionAndList(t *testing.T) {
	env := newTestEnv(t)

	class, err := env.sections.AddSection(env.ctx, sectionRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs101-1", class.ID)

	classes, hit, err := env.sections.ListClasses(env.ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, classes, 1)
	assert.Equal(t, 30, classes[0].MaxEnrollment)
	assert.False(t, classes[0].IsEnrollmentFrozen)
}

func TestAddSectionDuplicate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sections.AddSection(env.ctx, sectionRequest())
	require.NoError(t, err)

	_, err = env.sections.AddSection(env.ctx, sectionRequest())
	requireCode(t, err, appErrors.ErrDuplicateClass)

	// same course and section under a new id is still a duplicate
	req := sectionRequest()
	req.ClassID = ""
	_, err = env.sections.AddSection(env.ctx, req)
	requireCode(t, err, appErrors.ErrDuplicateClass)
}

func TestAddSectionValidation(t *testing.T) {
	env := newTestEnv(t)

	req := sectionRequest()
	req.MaxEnrollment = 0
	_, err := env.sections.AddSection(env.ctx, req)
	requireCode(t, err, appErrors.ErrValidation)

	req = sectionRequest()
	req.InstructorID = "nobody"
	_, err = env.sections.AddSection(env.ctx, req)
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestDeleteSectionCascades(t *testing.T) {
	env := newTestEnv(t)
	env.addStudents(t, "A", "B", "C")
	env.addClass(t, "c1", 0, 1)
	env.addClass(t, "other", 0, 5)

	for _, id := range []string{"A", "B", "C"} {
		_, err := env.enrollment.Enroll(env.ctx, id, "c1")
		require.NoError(t, err)
	}
	_, err := env.enrollment.Drop(env.ctx, "A", "c1")
	require.NoError(t, err)
	_, err = env.enrollment.Enroll(env.ctx, "A", "other")
	require.NoError(t, err)

	requireCode(t, env.sections.DeleteSection(env.ctx, "c1", 7), appErrors.ErrNotFound)
	require.NoError(t, env.sections.DeleteSection(env.ctx, "c1", 1))

	for _, table := range []string{"enrollments", "waitlist_entries", "drop_records", "classes"} {
		column := "class_id"
		if table == "classes" {
			column = "id"
		}
		assert.Zero(t, env.count(t, `SELECT COUNT(1) FROM `+table+` WHERE `+column+` = ?`, "c1"), table)
	}
	assert.True(t, env.enrolled(t, "A", "other"))

	requireCode(t, env.sections.DeleteSection(env.ctx, "c1", 1), appErrors.ErrNotFound)
}

func TestSetFreezeUnknownClassAffectsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.addClass(t, "c1", 0, 1)
	env.addClass(t, "c2", 0, 1)

	res, err := env.sections.SetFreeze(env.ctx, "missing", true)
	require.NoError(t, err)
	assert.Zero(t, res.Affected)

	res, err = env.sections.SetGlobalFreeze(env.ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Global)
	assert.EqualValues(t, 2, res.Affected)
	assert.True(t, env.class(t, "c1").IsEnrollmentFrozen)
	assert.True(t, env.class(t, "c2").IsEnrollmentFrozen)
}

func TestReassignInstructor(t *testing.T) {
	env := newTestEnv(t)
	env.addInstructor(t, "ins-2")
	env.addClass(t, "c1", 0, 1)

	class, err := env.sections.ReassignInstructor(env.ctx, "c1", dto.ReassignInstructorRequest{InstructorID: "ins-2"})
	require.NoError(t, err)
	assert.Equal(t, "ins-2", class.InstructorID)
	assert.Equal(t, "ins-2", env.class(t, "c1").InstructorID)

	_, err = env.sections.ReassignInstructor(env.ctx, "c1", dto.ReassignInstructorRequest{InstructorID: "nobody"})
	requireCode(t, err, appErrors.ErrNotFound)
	_, err = env.sections.ReassignInstructor(env.ctx, "missing", dto.ReassignInstructorRequest{InstructorID: "ins-2"})
	requireCode(t, err, appErrors.ErrNotFound)
	_, err = env.sections.ReassignInstructor(env.ctx, "c1", dto.ReassignInstructorRequest{})
	requireCode(t, err, appErrors.ErrValidation)
}
