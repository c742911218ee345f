package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// InstructorViewService serves the read-only views instructors use: enrollment counts,
// dropped students and the ordered waitlist of a class.
type InstructorViewService struct {
	classes     classStore
	instructors instructorReader
	drops       dropStore
	waitlists   waitlistViewReader
	cache       *CacheService
	logger      *zap.Logger
}

// NewInstructorViewService constructs the service.
func NewInstructorViewService(classes classStore, instructors instructorReader, drops dropStore, waitlists waitlistViewReader, cache *CacheService, logger *zap.Logger) *InstructorViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorViewService{classes: classes, instructors: instructors, drops: drops, waitlists: waitlists, cache: cache, logger: logger}
}

// EnrollmentByInstructor returns the enrollment count of every section the instructor teaches.
// The second value reports a cache hit.
func (s *InstructorViewService) EnrollmentByInstructor(ctx context.Context, instructorID string) ([]models.InstructorClassEnrollment, bool, error) {
	key := instructorCacheKey(instructorID)
	var cached []models.InstructorClassEnrollment
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	if _, err := s.instructors.FindByID(ctx, nil, instructorID); err != nil {
		return nil, false, s.fail("enrollment_by_instructor", err, "instructor not found", zap.String("instructor_id", instructorID))
	}
	items, err := s.classes.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, false, s.fail("enrollment_by_instructor", err, "", zap.String("instructor_id", instructorID))
	}
	if items == nil {
		items = []models.InstructorClassEnrollment{}
	}
	s.cache.Set(ctx, key, items)
	return items, false, nil
}

// DroppedStudents lists the students who dropped the class.
func (s *InstructorViewService) DroppedStudents(ctx context.Context, classID string) ([]models.DroppedStudent, error) {
	if _, err := s.classes.FindByID(ctx, nil, classID); err != nil {
		return nil, s.fail("dropped_students", err, "class not found", zap.String("class_id", classID))
	}
	items, err := s.drops.ListByClass(ctx, classID)
	if err != nil {
		return nil, s.fail("dropped_students", err, "", zap.String("class_id", classID))
	}
	if items == nil {
		items = []models.DroppedStudent{}
	}
	return items, nil
}

// Waitlist returns the class waitlist with student names in admission order.
// An unknown class has an empty waitlist.
func (s *InstructorViewService) Waitlist(ctx context.Context, classID string) ([]models.WaitlistView, error) {
	items, err := s.waitlists.ListViewByClass(ctx, classID)
	if err != nil {
		return nil, s.fail("view_waitlist", err, "", zap.String("class_id", classID))
	}
	if items == nil {
		items = []models.WaitlistView{}
	}
	return items, nil
}

func (s *InstructorViewService) fail(operation string, err error, notFoundMessage string, fields ...zap.Field) *appErrors.Error {
	var notFound *appErrors.Error
	if notFoundMessage != "" {
		notFound = appErrors.Clone(appErrors.ErrNotFound, notFoundMessage)
	}
	appErr := classify(err, notFound, operation)
	logFailure(s.logger, operation, appErr, fields...)
	return appErr
}
