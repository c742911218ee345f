package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/pkg/jobs"
)

// Enrollment event types.
const (
	EventEnrolled     = "enrolled"
	EventWaitlisted   = "waitlisted"
	EventDropped      = "dropped"
	EventPromoted     = "promoted"
	EventWaitlistLeft = "waitlist_left"
)

// EnrollmentEvent describes a committed state change of one student in one class.
type EnrollmentEvent struct {
	Type      string
	StudentID string
	ClassID   string
	Position  int
	At        time.Time
}

// EventDispatcher hands committed enrollment events to a background queue whose
// worker notifies students and counts outcomes. Publishing never fails the caller.
type EventDispatcher struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEventDispatcher constructs a dispatcher with its own worker queue.
func NewEventDispatcher(workers, retries int, metrics *MetricsService, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &EventDispatcher{metrics: metrics, logger: logger}
	d.queue = jobs.NewQueue("enrollment-events", d.handle, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return d
}

// Start launches the workers.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains queued events and stops the workers.
func (d *EventDispatcher) Stop() {
	d.queue.Stop()
}

// Publish enqueues events. Failures are logged and dropped.
func (d *EventDispatcher) Publish(events ...EnrollmentEvent) {
	if d == nil {
		return
	}
	for _, evt := range events {
		if evt.At.IsZero() {
			evt.At = time.Now().UTC()
		}
		if err := d.queue.Enqueue(jobs.Job{Type: evt.Type, Payload: evt}); err != nil {
			d.logger.Warn("enrollment event dropped",
				zap.String("type", evt.Type),
				zap.String("student_id", evt.StudentID),
				zap.String("class_id", evt.ClassID),
				zap.Error(err))
		}
	}
}

func (d *EventDispatcher) handle(_ context.Context, job jobs.Job) error {
	evt, ok := job.Payload.(EnrollmentEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}

	fields := []zap.Field{
		zap.String("event", evt.Type),
		zap.String("student_id", evt.StudentID),
		zap.String("class_id", evt.ClassID),
		zap.Time("at", evt.At),
	}
	switch evt.Type {
	case EventPromoted:
		d.logger.Info("student promoted from waitlist; notifying", fields...)
		d.metrics.RecordPromotion()
	case EventWaitlisted:
		d.logger.Info("student waitlisted", append(fields, zap.Int("position", evt.Position))...)
	default:
		d.logger.Info("enrollment event", fields...)
	}
	d.metrics.RecordEvent(evt.Type)
	return nil
}
