package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// SectionService administers class sections: listing, creation, deletion, freeze and instructor changes.
type SectionService struct {
	tx          transactor
	classes     classStore
	instructors instructorReader
	enrollments enrollmentStore
	drops       dropStore
	waitlist    *WaitlistManager
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSectionService constructs the service.
func NewSectionService(
	tx transactor,
	classes classStore,
	instructors instructorReader,
	enrollments enrollmentStore,
	drops dropStore,
	waitlist *WaitlistManager,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{
		tx:          tx,
		classes:     classes,
		instructors: instructors,
		enrollments: enrollments,
		drops:       drops,
		waitlist:    waitlist,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// ListClasses returns every class section. The second value reports a cache hit.
func (s *SectionService) ListClasses(ctx context.Context) ([]models.ClassSection, bool, error) {
	var cached []models.ClassSection
	if s.cache.Get(ctx, cacheKeyClasses, &cached) {
		return cached, true, nil
	}

	classes, err := s.classes.List(ctx)
	if err != nil {
		appErr := classify(err, nil, "list classes")
		logFailure(s.logger, "list_classes", appErr)
		return nil, false, appErr
	}
	if classes == nil {
		classes = []models.ClassSection{}
	}
	s.cache.Set(ctx, cacheKeyClasses, classes)
	return classes, false, nil
}

// AddSection creates a class section.
func (s *SectionService) AddSection(ctx context.Context, req dto.AddSectionRequest) (result *models.ClassSection, err error) {
	ctx, span := startSpan(ctx, "SectionService.AddSection", attribute.String("course_code", req.CourseCode))
	defer func() { endSpan(span, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "invalid class section payload")
	}

	class := &models.ClassSection{
		ID:                 strings.TrimSpace(req.ClassID),
		DepartmentID:       strings.TrimSpace(req.DepartmentID),
		CourseCode:         strings.TrimSpace(req.CourseCode),
		SectionNumber:      req.SectionNumber,
		InstructorID:       strings.TrimSpace(req.InstructorID),
		CurrentEnrollment:  req.CurrentEnrollment,
		MaxEnrollment:      req.MaxEnrollment,
		IsEnrollmentFrozen: req.IsEnrollmentFrozen,
		CreatedAt:          time.Now().UTC(),
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}

	txErr := s.inTx(ctx, "add_section", func(exec sqlx.ExtContext) error {
		if _, err := s.instructors.FindByID(ctx, exec, class.InstructorID); err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotFound, "instructor not found"), "add section")
		}
		if err := s.classes.Create(ctx, exec, class); err != nil {
			if repository.IsUniqueViolation(err) {
				return appErrors.Wrap(err, appErrors.ErrDuplicateClass, "")
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "add section")
		logFailure(s.logger, "add_section", appErr, zap.String("class_id", class.ID))
		return nil, appErr
	}

	s.cache.InvalidateClassViews(ctx)
	s.logger.Info("class section created", zap.String("class_id", class.ID), zap.String("course_code", class.CourseCode), zap.Int("section_number", class.SectionNumber))
	return class, nil
}

// DeleteSection removes a class section after deleting its enrollments, waitlist and drop records.
// The section number must match the stored class.
func (s *SectionService) DeleteSection(ctx context.Context, classID string, sectionNumber int) (err error) {
	ctx, span := startSpan(ctx, "SectionService.DeleteSection", attribute.String("class_id", classID), attribute.Int("section_number", sectionNumber))
	defer func() { endSpan(span, err) }()

	txErr := s.inTx(ctx, "delete_section", func(exec sqlx.ExtContext) error {
		class, err := s.classes.FindByIDForUpdate(ctx, exec, classID)
		if err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotFound, "class not found"), "delete section")
		}
		if class.SectionNumber != sectionNumber {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found for class")
		}

		if err := s.enrollments.DeleteByClass(ctx, exec, classID); err != nil {
			return err
		}
		if err := s.waitlist.Clear(ctx, exec, classID); err != nil {
			return err
		}
		if err := s.drops.DeleteByClass(ctx, exec, classID); err != nil {
			return err
		}
		return s.classes.Delete(ctx, exec, classID)
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "delete section")
		logFailure(s.logger, "delete_section", appErr, zap.String("class_id", classID))
		return appErr
	}

	s.cache.InvalidateClassViews(ctx)
	s.logger.Info("class section deleted", zap.String("class_id", classID), zap.Int("section_number", sectionNumber))
	return nil
}

// SetFreeze toggles the freeze flag of one class. An unknown class reports zero affected rows.
func (s *SectionService) SetFreeze(ctx context.Context, classID string, frozen bool) (*models.FreezeResult, error) {
	var affected int64
	txErr := s.inTx(ctx, "set_freeze", func(exec sqlx.ExtContext) error {
		var err error
		affected, err = s.classes.SetFrozen(ctx, exec, classID, frozen)
		return err
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "set freeze")
		logFailure(s.logger, "set_freeze", appErr, zap.String("class_id", classID))
		return nil, appErr
	}
	s.cache.InvalidateClassViews(ctx)
	s.logger.Info("class freeze updated", zap.String("class_id", classID), zap.Bool("frozen", frozen), zap.Int64("affected", affected))
	return &models.FreezeResult{ClassID: classID, Frozen: frozen, Affected: affected}, nil
}

// SetGlobalFreeze toggles the freeze flag of every class.
func (s *SectionService) SetGlobalFreeze(ctx context.Context, frozen bool) (*models.FreezeResult, error) {
	var affected int64
	txErr := s.inTx(ctx, "set_global_freeze", func(exec sqlx.ExtContext) error {
		var err error
		affected, err = s.classes.SetFrozenAll(ctx, exec, frozen)
		return err
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "set global freeze")
		logFailure(s.logger, "set_global_freeze", appErr)
		return nil, appErr
	}
	s.cache.InvalidateClassViews(ctx)
	s.logger.Info("global freeze updated", zap.Bool("frozen", frozen), zap.Int64("affected", affected))
	return &models.FreezeResult{Global: true, Frozen: frozen, Affected: affected}, nil
}

// ReassignInstructor moves a class to another instructor. Both must exist.
func (s *SectionService) ReassignInstructor(ctx context.Context, classID string, req dto.ReassignInstructorRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "instructor_id is required")
	}

	var updated *models.ClassSection
	txErr := s.inTx(ctx, "reassign_instructor", func(exec sqlx.ExtContext) error {
		class, err := s.classes.FindByIDForUpdate(ctx, exec, classID)
		if err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotFound, "class not found"), "reassign instructor")
		}
		if _, err := s.instructors.FindByID(ctx, exec, req.InstructorID); err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotFound, "instructor not found"), "reassign instructor")
		}
		if err := s.classes.UpdateInstructor(ctx, exec, classID, req.InstructorID); err != nil {
			return err
		}
		class.InstructorID = req.InstructorID
		updated = class
		return nil
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "reassign instructor")
		logFailure(s.logger, "reassign_instructor", appErr, zap.String("class_id", classID), zap.String("instructor_id", req.InstructorID))
		return nil, appErr
	}
	s.cache.InvalidateClassViews(ctx)
	return updated, nil
}

func (s *SectionService) inTx(ctx context.Context, operation string, fn repository.TxFunc) error {
	start := time.Now()
	err := s.tx.WithTx(ctx, fn)
	s.metrics.ObserveTransaction(operation, time.Since(start))
	return err
}
