package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type envelopeBody struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newTestContext(method, target, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type enrollmentServiceMock struct {
	enrollResp  *models.EnrollResult
	enrollErr   error
	dropResp    *models.DropResult
	dropErr     error
	lastStudent string
	lastClass   string
	enrollCall  bool
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, studentID, classID string) (*models.EnrollResult, error) {
	m.enrollCall = true
	m.lastStudent, m.lastClass = studentID, classID
	return m.enrollResp, m.enrollErr
}

func (m *enrollmentServiceMock) Drop(ctx context.Context, studentID, classID string) (*models.DropResult, error) {
	m.lastStudent, m.lastClass = studentID, classID
	return m.dropResp, m.dropErr
}

func (m *enrollmentServiceMock) WaitlistPosition(ctx context.Context, studentID, classID string) (*models.WaitlistPosition, error) {
	m.lastStudent, m.lastClass = studentID, classID
	return &models.WaitlistPosition{StudentID: studentID, ClassID: classID}, nil
}

func (m *enrollmentServiceMock) LeaveWaitlist(ctx context.Context, studentID, classID string) (*models.LeaveWaitlistResult, error) {
	m.lastStudent, m.lastClass = studentID, classID
	return &models.LeaveWaitlistResult{StudentID: studentID, ClassID: classID, Removed: true}, nil
}

func (m *enrollmentServiceMock) StudentWaitlists(ctx context.Context, studentID string) (*models.StudentWaitlistSummary, error) {
	m.lastStudent = studentID
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func TestEnrollmentHandlerEnrollStatusFollowsOutcome(t *testing.T) {
	position := 2
	cases := []struct {
		name   string
		result *models.EnrollResult
		status int
	}{
		{name: "enrolled", result: &models.EnrollResult{Outcome: models.OutcomeEnrolled}, status: http.StatusCreated},
		{name: "waitlisted", result: &models.EnrollResult{Outcome: models.OutcomeWaitlisted, Position: &position}, status: http.StatusAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &enrollmentServiceMock{enrollResp: tc.result}
			c, w := newTestContext(http.MethodPost, "/classes/c1/enrollments", `{"student_id":"s1"}`, gin.Param{Key: "classId", Value: "c1"})

			NewEnrollmentHandler(svc).Enroll(c)
			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, "s1", svc.lastStudent)
			assert.Equal(t, "c1", svc.lastClass)
		})
	}
}

func TestEnrollmentHandlerEnrollInvalidBody(t *testing.T) {
	svc := &enrollmentServiceMock{}
	c, w := newTestContext(http.MethodPost, "/classes/c1/enrollments", `{"student_id":`, gin.Param{Key: "classId", Value: "c1"})

	NewEnrollmentHandler(svc).Enroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.enrollCall)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestEnrollmentHandlerEnrollPolicyRejection(t *testing.T) {
	svc := &enrollmentServiceMock{enrollErr: appErrors.Clone(appErrors.ErrClassFrozen, "")}
	c, w := newTestContext(http.MethodPost, "/classes/c1/enrollments", `{"student_id":"s1"}`, gin.Param{Key: "classId", Value: "c1"})

	NewEnrollmentHandler(svc).Enroll(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "CLASS_FROZEN", env.Error.Code)
	assert.Equal(t, appErrors.KindPolicyRejection, env.Error.Kind)
}

func TestEnrollmentHandlerDrop(t *testing.T) {
	promoted := "s9"
	svc := &enrollmentServiceMock{dropResp: &models.DropResult{Outcome: models.OutcomeDroppedAndPromoted, PromotedStudentID: &promoted}}
	c, w := newTestContext(http.MethodDelete, "/classes/c1/enrollments/s1", "",
		gin.Param{Key: "classId", Value: "c1"}, gin.Param{Key: "studentId", Value: "s1"})

	NewEnrollmentHandler(svc).Drop(c)
	require.Equal(t, http.StatusOK, w.Code)
	var result models.DropResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	require.NotNil(t, result.PromotedStudentID)
	assert.Equal(t, "s9", *result.PromotedStudentID)
	assert.Equal(t, "s1", svc.lastStudent)
}

func TestEnrollmentHandlerDropStorageFailure(t *testing.T) {
	svc := &enrollmentServiceMock{dropErr: appErrors.Clone(appErrors.ErrStorage, "drop failed")}
	c, w := newTestContext(http.MethodDelete, "/classes/c1/enrollments/s1", "",
		gin.Param{Key: "classId", Value: "c1"}, gin.Param{Key: "studentId", Value: "s1"})

	NewEnrollmentHandler(svc).Drop(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Len(t, c.Errors, 1)
}

func TestEnrollmentHandlerWaitlistRoutes(t *testing.T) {
	svc := &enrollmentServiceMock{}
	h := NewEnrollmentHandler(svc)
	params := []gin.Param{{Key: "classId", Value: "c2"}, {Key: "studentId", Value: "s3"}}

	c, w := newTestContext(http.MethodGet, "/classes/c2/waitlist/s3", "", params...)
	h.WaitlistPosition(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c2", svc.lastClass)

	c, w = newTestContext(http.MethodDelete, "/classes/c2/waitlist/s3", "", params...)
	h.LeaveWaitlist(c)
	require.Equal(t, http.StatusOK, w.Code)
	var left models.LeaveWaitlistResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &left))
	assert.True(t, left.Removed)

	c, w = newTestContext(http.MethodGet, "/students/s3/waitlists", "", gin.Param{Key: "studentId", Value: "s3"})
	h.StudentWaitlists(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type sectionServiceMock struct {
	classes       []models.ClassSection
	hit           bool
	addReq        dto.AddSectionRequest
	addErr        error
	deleteClass   string
	deleteSection int
	deleteCalled  bool
	frozen        *bool
	globalCalled  bool
	reassignReq   dto.ReassignInstructorRequest
}

func (m *sectionServiceMock) ListClasses(ctx context.Context) ([]models.ClassSection, bool, error) {
	return m.classes, m.hit, nil
}

func (m *sectionServiceMock) AddSection(ctx context.Context, req dto.AddSectionRequest) (*models.ClassSection, error) {
	m.addReq = req
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &models.ClassSection{ID: "c1", CourseCode: req.CourseCode, SectionNumber: req.SectionNumber}, nil
}

func (m *sectionServiceMock) DeleteSection(ctx context.Context, classID string, sectionNumber int) error {
	m.deleteCalled = true
	m.deleteClass, m.deleteSection = classID, sectionNumber
	return nil
}

func (m *sectionServiceMock) SetFreeze(ctx context.Context, classID string, frozen bool) (*models.FreezeResult, error) {
	m.frozen = &frozen
	return &models.FreezeResult{ClassID: classID, Frozen: frozen, Affected: 1}, nil
}

func (m *sectionServiceMock) SetGlobalFreeze(ctx context.Context, frozen bool) (*models.FreezeResult, error) {
	m.globalCalled = true
	m.frozen = &frozen
	return &models.FreezeResult{Global: true, Frozen: frozen, Affected: 4}, nil
}

func (m *sectionServiceMock) ReassignInstructor(ctx context.Context, classID string, req dto.ReassignInstructorRequest) (*models.ClassSection, error) {
	m.reassignReq = req
	return &models.ClassSection{ID: classID, InstructorID: req.InstructorID}, nil
}

func TestClassHandlerListReportsCacheHit(t *testing.T) {
	svc := &sectionServiceMock{classes: []models.ClassSection{{ID: "c1"}}, hit: true}
	c, w := newTestContext(http.MethodGet, "/classes", "")

	NewClassHandler(svc).List(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Equal(t, true, middleware.ExtractMeta(c)["cache_hit"])
}

func TestClassHandlerCreate(t *testing.T) {
	svc := &sectionServiceMock{}
	body := `{"department_id":"CS","course_code":"CS101","section_number":1,"instructor_id":"i1","max_enrollment":30}`
	c, w := newTestContext(http.MethodPost, "/classes", body)

	NewClassHandler(svc).Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "CS101", svc.addReq.CourseCode)
	assert.Equal(t, 30, svc.addReq.MaxEnrollment)
}

func TestClassHandlerCreateDuplicate(t *testing.T) {
	svc := &sectionServiceMock{addErr: appErrors.Clone(appErrors.ErrDuplicateClass, "")}
	body := `{"department_id":"CS","course_code":"CS101","section_number":1,"instructor_id":"i1","max_enrollment":30}`
	c, w := newTestContext(http.MethodPost, "/classes", body)

	NewClassHandler(svc).Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClassHandlerDeleteSection(t *testing.T) {
	svc := &sectionServiceMock{}
	c, w := newTestContext(http.MethodDelete, "/classes/c1/sections/2", "",
		gin.Param{Key: "classId", Value: "c1"}, gin.Param{Key: "sectionNumber", Value: "2"})

	NewClassHandler(svc).DeleteSection(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "c1", svc.deleteClass)
	assert.Equal(t, 2, svc.deleteSection)
}

func TestClassHandlerDeleteSectionRejectsNonNumeric(t *testing.T) {
	svc := &sectionServiceMock{}
	c, w := newTestContext(http.MethodDelete, "/classes/c1/sections/two", "",
		gin.Param{Key: "classId", Value: "c1"}, gin.Param{Key: "sectionNumber", Value: "two"})

	NewClassHandler(svc).DeleteSection(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.deleteCalled)
}

func TestClassHandlerFreeze(t *testing.T) {
	svc := &sectionServiceMock{}
	c, w := newTestContext(http.MethodPut, "/classes/c1/freeze", `{"frozen":false}`, gin.Param{Key: "classId", Value: "c1"})

	NewClassHandler(svc).Freeze(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.frozen)
	assert.False(t, *svc.frozen)
}

func TestClassHandlerFreezeRequiresFlag(t *testing.T) {
	svc := &sectionServiceMock{}
	c, w := newTestContext(http.MethodPut, "/admin/freeze", `{}`)

	NewClassHandler(svc).GlobalFreeze(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.globalCalled)
}

func TestClassHandlerGlobalFreeze(t *testing.T) {
	svc := &sectionServiceMock{}
	c, w := newTestContext(http.MethodPut, "/admin/freeze", `{"frozen":true}`)

	NewClassHandler(svc).GlobalFreeze(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.globalCalled)
	assert.True(t, *svc.frozen)
}

func TestClassHandlerReassignInstructor(t *testing.T) {
	svc := &sectionServiceMock{}
	c, w := newTestContext(http.MethodPut, "/classes/c1/instructor", `{"instructor_id":"i2"}`, gin.Param{Key: "classId", Value: "c1"})

	NewClassHandler(svc).ReassignInstructor(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "i2", svc.reassignReq.InstructorID)
}

type instructorViewMock struct {
	enrollment []models.InstructorClassEnrollment
	hit        bool
	waitlist   []models.WaitlistView
	dropsErr   error
}

func (m *instructorViewMock) EnrollmentByInstructor(ctx context.Context, instructorID string) ([]models.InstructorClassEnrollment, bool, error) {
	return m.enrollment, m.hit, nil
}

func (m *instructorViewMock) DroppedStudents(ctx context.Context, classID string) ([]models.DroppedStudent, error) {
	return nil, m.dropsErr
}

func (m *instructorViewMock) Waitlist(ctx context.Context, classID string) ([]models.WaitlistView, error) {
	return m.waitlist, nil
}

type rosterMock struct {
	query dto.RosterQuery
	err   error
}

func (m *rosterMock) Export(ctx context.Context, classID string, query dto.RosterQuery) (*service.RosterFile, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return &service.RosterFile{Filename: "roster-CS101-1.csv", ContentType: "text/csv", Body: []byte("Enrolled\n")}, nil
}

func TestInstructorHandlerEnrollment(t *testing.T) {
	views := &instructorViewMock{enrollment: []models.InstructorClassEnrollment{{ClassID: "c1", CurrentEnrollment: 3}}}
	c, w := newTestContext(http.MethodGet, "/instructors/i1/enrollments", "", gin.Param{Key: "instructorId", Value: "i1"})

	NewInstructorHandler(views, &rosterMock{}).Enrollment(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env.Meta["cache_hit"])
	var items []models.InstructorClassEnrollment
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Equal(t, 3, items[0].CurrentEnrollment)
}

func TestInstructorHandlerDroppedStudentsNotFound(t *testing.T) {
	views := &instructorViewMock{dropsErr: appErrors.Clone(appErrors.ErrNotFound, "class not found")}
	c, w := newTestContext(http.MethodGet, "/classes/zz/drops", "", gin.Param{Key: "classId", Value: "zz"})

	NewInstructorHandler(views, &rosterMock{}).DroppedStudents(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInstructorHandlerWaitlist(t *testing.T) {
	views := &instructorViewMock{waitlist: []models.WaitlistView{{StudentID: "s1", Position: 1}}}
	c, w := newTestContext(http.MethodGet, "/classes/c1/waitlist", "", gin.Param{Key: "classId", Value: "c1"})

	NewInstructorHandler(views, &rosterMock{}).Waitlist(c)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.WaitlistView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Position)
}

func TestInstructorHandlerRosterAttachment(t *testing.T) {
	roster := &rosterMock{}
	c, w := newTestContext(http.MethodGet, "/classes/c1/roster?format=csv", "", gin.Param{Key: "classId", Value: "c1"})

	NewInstructorHandler(&instructorViewMock{}, roster).Roster(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", roster.query.Format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "roster-CS101-1.csv")
	assert.Equal(t, "Enrolled\n", w.Body.String())
}

func TestInstructorHandlerRosterRejectsUnknownFormat(t *testing.T) {
	roster := &rosterMock{err: appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")}
	c, w := newTestContext(http.MethodGet, "/classes/c1/roster?format=xml", "", gin.Param{Key: "classId", Value: "c1"})

	NewInstructorHandler(&instructorViewMock{}, roster).Roster(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type pingStub struct{ err error }

func (p pingStub) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/health", "")
	NewHealthHandler(pingStub{}).Live(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", "")
	NewHealthHandler(pingStub{}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", "")
	NewHealthHandler(pingStub{err: context.DeadlineExceeded}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, appErrors.ErrStorage.Code, decodeEnvelope(t, w).Error.Code)
}
