package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
)

type transactor interface {
	WithTx(ctx context.Context, fn repository.TxFunc) error
}

type classStore interface {
	List(ctx context.Context) ([]models.ClassSection, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassSection, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassSection, error)
	Create(ctx context.Context, exec sqlx.ExtContext, class *models.ClassSection) error
	UpdateEnrollmentCount(ctx context.Context, exec sqlx.ExtContext, id string, count int) error
	SetFrozen(ctx context.Context, exec sqlx.ExtContext, id string, frozen bool) (int64, error)
	SetFrozenAll(ctx context.Context, exec sqlx.ExtContext, frozen bool) (int64, error)
	UpdateInstructor(ctx context.Context, exec sqlx.ExtContext, id, instructorID string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorClassEnrollment, error)
}

type studentReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error)
}

type instructorReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Instructor, error)
}

type enrollmentStore interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	Delete(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error)
	DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error
	ListRoster(ctx context.Context, classID string) ([]models.RosterEntry, error)
}

type dropStore interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, classID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, record *models.DropRecord) error
	DeleteByClass(ctx context.Context, exec sqlx.ExtContext, classID string) error
	ListByClass(ctx context.Context, classID string) ([]models.DroppedStudent, error)
}

type waitlistViewReader interface {
	ListViewByClass(ctx context.Context, classID string) ([]models.WaitlistView, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentWaitlist, error)
}
