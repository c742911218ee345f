package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

// EnrollmentService runs enroll, drop and waitlist calls. Each call is one store
// transaction that starts by locking the class row, so calls on one class serialize
// while calls on different classes proceed independently.
type EnrollmentService struct {
	tx          transactor
	classes     classStore
	students    studentReader
	enrollments enrollmentStore
	drops       dropStore
	waitlist    *WaitlistManager
	views       waitlistViewReader
	policy      Policy
	cache       *CacheService
	events      *EventDispatcher
	metrics     *MetricsService
	logger      *zap.Logger
}

// EnrollmentServiceDeps groups the collaborators of EnrollmentService.
type EnrollmentServiceDeps struct {
	Tx          transactor
	Classes     classStore
	Students    studentReader
	Enrollments enrollmentStore
	Drops       dropStore
	Waitlist    *WaitlistManager
	Views       waitlistViewReader
	Policy      Policy
	Cache       *CacheService
	Events      *EventDispatcher
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentServiceDeps) *EnrollmentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Policy.defaultCap == 0 {
		deps.Policy = NewPolicy(0)
	}
	return &EnrollmentService{
		tx:          deps.Tx,
		classes:     deps.Classes,
		students:    deps.Students,
		enrollments: deps.Enrollments,
		drops:       deps.Drops,
		waitlist:    deps.Waitlist,
		views:       deps.Views,
		policy:      deps.Policy,
		cache:       deps.Cache,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// Enroll seats the student when the class has capacity, otherwise admits them to the waitlist.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, classID string) (result *models.EnrollResult, err error) {
	ctx, span := startSpan(ctx, "EnrollmentService.Enroll", attribute.String("student_id", studentID), attribute.String("class_id", classID))
	defer func() { endSpan(span, err) }()

	var out models.EnrollResult
	txErr := s.inTx(ctx, "enroll", func(exec sqlx.ExtContext) error {
		class, err := s.classes.FindByIDForUpdate(ctx, exec, classID)
		if err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotFound, "class not found"), "enroll")
		}
		student, err := s.students.FindByIDForUpdate(ctx, exec, studentID)
		if err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotFound, "student not found"), "enroll")
		}

		state := enrollState{class: class, student: student}
		if state.enrolled, err = s.enrollments.Exists(ctx, exec, studentID, classID); err != nil {
			return err
		}
		position, err := s.waitlist.PositionOf(ctx, exec, studentID, classID)
		if err != nil {
			return err
		}
		state.waitlisted = position != nil
		if !s.policy.HasCapacity(class) && !state.waitlisted {
			if state.activeWaitlists, err = s.waitlist.ActiveCount(ctx, exec, studentID); err != nil {
				return err
			}
		}

		plan, rejection := decideEnroll(s.policy, state)
		if rejection != nil {
			return rejection
		}

		out = models.EnrollResult{StudentID: studentID, ClassID: classID}
		switch plan.action {
		case actionEnroll:
			if plan.leaveWaitlist {
				if _, err := s.waitlist.Remove(ctx, exec, studentID, classID); err != nil {
					return err
				}
			}
			if err := s.seat(ctx, exec, studentID, classID); err != nil {
				return err
			}
			if err := s.classes.UpdateEnrollmentCount(ctx, exec, classID, plan.newCount); err != nil {
				return err
			}
			out.Outcome = models.OutcomeEnrolled
		case actionWaitlist:
			pos, err := s.waitlist.Admit(ctx, exec, studentID, classID)
			if err != nil {
				return err
			}
			out.Outcome = models.OutcomeWaitlisted
			out.Position = &pos
		}
		return nil
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "enroll")
		s.reject("enroll", appErr, studentID, classID)
		return nil, appErr
	}

	s.metrics.RecordOutcome("enroll", string(out.Outcome))
	evt := EnrollmentEvent{Type: EventEnrolled, StudentID: studentID, ClassID: classID}
	if out.Position != nil {
		evt.Type = EventWaitlisted
		evt.Position = *out.Position
	} else {
		s.cache.InvalidateClassViews(ctx)
	}
	s.events.Publish(evt)
	return &out, nil
}

// Drop releases the student's seat, records the drop and, unless the class is frozen,
// promotes the head of the waitlist into the released seat.
func (s *EnrollmentService) Drop(ctx context.Context, studentID, classID string) (result *models.DropResult, err error) {
	ctx, span := startSpan(ctx, "EnrollmentService.Drop", attribute.String("student_id", studentID), attribute.String("class_id", classID))
	defer func() { endSpan(span, err) }()

	var out models.DropResult
	txErr := s.inTx(ctx, "drop", func(exec sqlx.ExtContext) error {
		class, err := s.classes.FindByIDForUpdate(ctx, exec, classID)
		if err != nil {
			return classify(err, appErrors.Clone(appErrors.ErrNotEnrolled, "class not found"), "drop")
		}

		state := dropState{class: class}
		if state.dropped, err = s.drops.Exists(ctx, exec, studentID, classID); err != nil {
			return err
		}
		if state.enrolled, err = s.enrollments.Exists(ctx, exec, studentID, classID); err != nil {
			return err
		}
		if !s.policy.IsFrozen(class) {
			if state.head, err = s.waitlist.Head(ctx, exec, classID); err != nil {
				return err
			}
		}

		plan, rejection := decideDrop(s.policy, state)
		if rejection != nil {
			return rejection
		}

		if err := s.drops.Create(ctx, exec, &models.DropRecord{StudentID: studentID, ClassID: classID}); err != nil {
			if repository.IsUniqueViolation(err) {
				return appErrors.Wrap(err, appErrors.ErrAlreadyDropped, "")
			}
			return err
		}
		if _, err := s.enrollments.Delete(ctx, exec, studentID, classID); err != nil {
			return err
		}

		out = models.DropResult{Outcome: models.OutcomeDropped, StudentID: studentID, ClassID: classID}
		if plan.promote != nil {
			promoted, err := s.waitlist.PromoteHead(ctx, exec, classID)
			if err != nil {
				return err
			}
			if err := s.seat(ctx, exec, promoted.StudentID, classID); err != nil {
				return err
			}
			out.Outcome = models.OutcomeDroppedAndPromoted
			out.PromotedStudentID = &promoted.StudentID
		}
		return s.classes.UpdateEnrollmentCount(ctx, exec, classID, plan.newCount)
	})
	if txErr != nil {
		appErr := classify(txErr, nil, "drop")
		s.reject("drop", appErr, studentID, classID)
		return nil, appErr
	}

	s.metrics.RecordOutcome("drop", string(out.Outcome))
	s.cache.InvalidateClassViews(ctx)
	events := []EnrollmentEvent{{Type: EventDropped, StudentID: studentID, ClassID: classID}}
	if out.PromotedStudentID != nil {
		s.logger.Info("waitlist head promoted",
			zap.String("class_id", classID),
			zap.String("dropped_student_id", studentID),
			zap.String("promoted_student_id", *out.PromotedStudentID))
		events = append(events, EnrollmentEvent{Type: EventPromoted, StudentID: *out.PromotedStudentID, ClassID: classID})
	}
	s.events.Publish(events...)
	return &out, nil
}

// WaitlistPosition returns the student's position in the class waitlist, nil when absent.
func (s *EnrollmentService) WaitlistPosition(ctx context.Context, studentID, classID string) (*models.WaitlistPosition, error) {
	position, err := s.waitlist.PositionOf(ctx, nil, studentID, classID)
	if err != nil {
		appErr := classify(err, nil, "waitlist position")
		s.reject("waitlist_position", appErr, studentID, classID)
		return nil, appErr
	}
	return &models.WaitlistPosition{StudentID: studentID, ClassID: classID, Position: position}, nil
}

// LeaveWaitlist removes the student from the class waitlist and closes the gap.
// Leaving a waitlist the student is not on succeeds with Removed=false.
func (s *EnrollmentService) LeaveWaitlist(ctx context.Context, studentID, classID string) (result *models.LeaveWaitlistResult, err error) {
	ctx, span := startSpan(ctx, "EnrollmentService.LeaveWaitlist", attribute.String("student_id", studentID), attribute.String("class_id", classID))
	defer func() { endSpan(span, err) }()

	removed := false
	txErr := s.inTx(ctx, "leave_waitlist", func(exec sqlx.ExtContext) error {
		if _, err := s.classes.FindByIDForUpdate(ctx, exec, classID); err != nil {
			return err
		}
		var err error
		removed, err = s.waitlist.Remove(ctx, exec, studentID, classID)
		return err
	})
	if txErr != nil && !isNoRows(txErr) {
		appErr := classify(txErr, nil, "leave waitlist")
		s.reject("leave_waitlist", appErr, studentID, classID)
		return nil, appErr
	}

	if removed {
		s.events.Publish(EnrollmentEvent{Type: EventWaitlistLeft, StudentID: studentID, ClassID: classID})
	}
	return &models.LeaveWaitlistResult{StudentID: studentID, ClassID: classID, Removed: removed}, nil
}

// StudentWaitlists lists the student's waitlist memberships and the cap in force.
func (s *EnrollmentService) StudentWaitlists(ctx context.Context, studentID string) (*models.StudentWaitlistSummary, error) {
	student, err := s.students.FindByID(ctx, nil, studentID)
	if err != nil {
		return nil, classify(err, appErrors.Clone(appErrors.ErrNotFound, "student not found"), "student waitlists")
	}
	items, err := s.views.ListByStudent(ctx, studentID)
	if err != nil {
		appErr := classify(err, nil, "student waitlists")
		s.reject("student_waitlists", appErr, studentID, "")
		return nil, appErr
	}
	if items == nil {
		items = []models.StudentWaitlist{}
	}
	return &models.StudentWaitlistSummary{StudentID: studentID, Cap: s.policy.WaitlistCap(student), Waitlists: items}, nil
}

func (s *EnrollmentService) seat(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) error {
	err := s.enrollments.Create(ctx, exec, &models.Enrollment{StudentID: studentID, ClassID: classID})
	if err != nil && repository.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrAlreadyEnrolled, "")
	}
	return err
}

func (s *EnrollmentService) inTx(ctx context.Context, operation string, fn repository.TxFunc) error {
	start := time.Now()
	err := s.tx.WithTx(ctx, fn)
	s.metrics.ObserveTransaction(operation, time.Since(start))
	return err
}

func (s *EnrollmentService) reject(operation string, appErr *appErrors.Error, studentID, classID string) {
	s.metrics.RecordRejection(operation, appErr.Code)
	logFailure(s.logger, operation, appErr, zap.String("student_id", studentID), zap.String("class_id", classID))
}
