package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, classID string) (*models.EnrollResult, error)
	Drop(ctx context.Context, studentID, classID string) (*models.DropResult, error)
	WaitlistPosition(ctx context.Context, studentID, classID string) (*models.WaitlistPosition, error)
	LeaveWaitlist(ctx context.Context, studentID, classID string) (*models.LeaveWaitlistResult, error)
	StudentWaitlists(ctx context.Context, studentID string) (*models.StudentWaitlistSummary, error)
}

// EnrollmentHandler exposes enroll, drop and waitlist endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler builds a new handler.
func NewEnrollmentHandler(service enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll godoc
// @Summary Enroll a student or place them on the waitlist
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body dto.EnrollRequest true "Student"
// @Success 201 {object} response.Envelope "enrolled"
// @Success 202 {object} response.Envelope "waitlisted"
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{classId}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == "" {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "student_id is required"))
		return
	}
	result, err := h.service.Enroll(c.Request.Context(), req.StudentID, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if result.Outcome == models.OutcomeWaitlisted {
		status = http.StatusAccepted
	}
	response.JSON(c, status, result, nil)
}

// Drop godoc
// @Summary Drop a class, promoting the head of the waitlist when possible
// @Tags Enrollments
// @Produce json
// @Param classId path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{classId}/enrollments/{studentId} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	result, err := h.service.Drop(c.Request.Context(), c.Param("studentId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// WaitlistPosition godoc
// @Summary Get a student's waitlist position
// @Tags Waitlists
// @Produce json
// @Param classId path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/waitlist/{studentId} [get]
func (h *EnrollmentHandler) WaitlistPosition(c *gin.Context) {
	result, err := h.service.WaitlistPosition(c.Request.Context(), c.Param("studentId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// LeaveWaitlist godoc
// @Summary Leave a class waitlist
// @Tags Waitlists
// @Produce json
// @Param classId path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/waitlist/{studentId} [delete]
func (h *EnrollmentHandler) LeaveWaitlist(c *gin.Context) {
	result, err := h.service.LeaveWaitlist(c.Request.Context(), c.Param("studentId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// StudentWaitlists godoc
// @Summary List a student's waitlist memberships
// @Tags Waitlists
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentId}/waitlists [get]
func (h *EnrollmentHandler) StudentWaitlists(c *gin.Context) {
	result, err := h.service.StudentWaitlists(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
