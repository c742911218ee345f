package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type instructorViewService interface {
	EnrollmentByInstructor(ctx context.Context, instructorID string) ([]models.InstructorClassEnrollment, bool, error)
	DroppedStudents(ctx context.Context, classID string) ([]models.DroppedStudent, error)
	Waitlist(ctx context.Context, classID string) ([]models.WaitlistView, error)
}

type rosterExporter interface {
	Export(ctx context.Context, classID string, query dto.RosterQuery) (*service.RosterFile, error)
}

// InstructorHandler serves the instructor-facing views of a class.
type InstructorHandler struct {
	views  instructorViewService
	roster rosterExporter
}

// NewInstructorHandler builds a new handler.
func NewInstructorHandler(views instructorViewService, roster rosterExporter) *InstructorHandler {
	return &InstructorHandler{views: views, roster: roster}
}

// Enrollment godoc
// @Summary Enrollment counts for every section an instructor teaches
// @Tags Instructors
// @Produce json
// @Param instructorId path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{instructorId}/enrollments [get]
func (h *InstructorHandler) Enrollment(c *gin.Context) {
	items, hit, err := h.views.EnrollmentByInstructor(c.Request.Context(), c.Param("instructorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, items, nil, middleware.ExtractMeta(c))
}

// DroppedStudents godoc
// @Summary Students who dropped a class
// @Tags Instructors
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/drops [get]
func (h *InstructorHandler) DroppedStudents(c *gin.Context) {
	items, err := h.views.DroppedStudents(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Waitlist godoc
// @Summary Ordered waitlist of a class
// @Tags Instructors
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/waitlist [get]
func (h *InstructorHandler) Waitlist(c *gin.Context) {
	items, err := h.views.Waitlist(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Roster godoc
// @Summary Download the roster and waitlist of a class
// @Tags Instructors
// @Produce text/csv
// @Produce application/pdf
// @Param classId path string true "Class ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/roster [get]
func (h *InstructorHandler) Roster(c *gin.Context) {
	var query dto.RosterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "invalid roster query"))
		return
	}
	file, err := h.roster.Export(c.Request.Context(), c.Param("classId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
