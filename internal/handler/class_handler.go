package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/middleware"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type sectionService interface {
	ListClasses(ctx context.Context) ([]models.ClassSection, bool, error)
	AddSection(ctx context.Context, req dto.AddSectionRequest) (*models.ClassSection, error)
	DeleteSection(ctx context.Context, classID string, sectionNumber int) error
	SetFreeze(ctx context.Context, classID string, frozen bool) (*models.FreezeResult, error)
	SetGlobalFreeze(ctx context.Context, frozen bool) (*models.FreezeResult, error)
	ReassignInstructor(ctx context.Context, classID string, req dto.ReassignInstructorRequest) (*models.ClassSection, error)
}

// ClassHandler exposes class section administration endpoints.
type ClassHandler struct {
	service sectionService
}

// NewClassHandler builds a new handler.
func NewClassHandler(service sectionService) *ClassHandler {
	return &ClassHandler{service: service}
}

// List godoc
// @Summary List class sections
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, hit, err := h.service.ListClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, classes, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Add a class section
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.AddSectionRequest true "Class section"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "invalid class section payload"))
		return
	}
	class, err := h.service.AddSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// DeleteSection godoc
// @Summary Delete a class section with its enrollments, waitlist and drop records
// @Tags Classes
// @Param classId path string true "Class ID"
// @Param sectionNumber path int true "Section number"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/sections/{sectionNumber} [delete]
func (h *ClassHandler) DeleteSection(c *gin.Context) {
	sectionNumber, err := strconv.Atoi(c.Param("sectionNumber"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "sectionNumber must be an integer"))
		return
	}
	if err := h.service.DeleteSection(c.Request.Context(), c.Param("classId"), sectionNumber); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Freeze godoc
// @Summary Freeze or unfreeze enrollment for one class
// @Tags Classes
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body dto.FreezeRequest true "Freeze flag"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/freeze [put]
func (h *ClassHandler) Freeze(c *gin.Context) {
	frozen, ok := bindFreeze(c)
	if !ok {
		return
	}
	result, err := h.service.SetFreeze(c.Request.Context(), c.Param("classId"), frozen)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GlobalFreeze godoc
// @Summary Freeze or unfreeze enrollment for every class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.FreezeRequest true "Freeze flag"
// @Success 200 {object} response.Envelope
// @Router /admin/freeze [put]
func (h *ClassHandler) GlobalFreeze(c *gin.Context) {
	frozen, ok := bindFreeze(c)
	if !ok {
		return
	}
	result, err := h.service.SetGlobalFreeze(c.Request.Context(), frozen)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ReassignInstructor godoc
// @Summary Reassign the instructor of a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body dto.ReassignInstructorRequest true "Instructor"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/instructor [put]
func (h *ClassHandler) ReassignInstructor(c *gin.Context) {
	var req dto.ReassignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "invalid instructor payload"))
		return
	}
	class, err := h.service.ReassignInstructor(c.Request.Context(), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

func bindFreeze(c *gin.Context) (bool, bool) {
	var req dto.FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Frozen == nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, "frozen must be a boolean"))
		return false, false
	}
	return *req.Frozen, true
}
