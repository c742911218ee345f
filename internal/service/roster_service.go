package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
	"github.com/noah-isme/course-enrollment-api/pkg/export"
)

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
}

// RosterFile is a rendered class roster.
type RosterFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RosterService renders the enrolled students and waitlist of a class as CSV or PDF.
type RosterService struct {
	classes     classStore
	enrollments enrollmentStore
	waitlists   waitlistViewReader
	renderers   map[string]documentRenderer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRosterService constructs the service with CSV and PDF renderers.
func NewRosterService(classes classStore, enrollments enrollmentStore, waitlists waitlistViewReader, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		classes:     classes,
		enrollments: enrollments,
		waitlists:   waitlists,
		renderers: map[string]documentRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
	}
}

// Export renders the roster of a class. Format defaults to csv.
func (s *RosterService) Export(ctx context.Context, classID string, query dto.RosterQuery) (*RosterFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "format must be csv or pdf")
	}
	format := query.Format
	if format == "" {
		format = "csv"
	}

	class, err := s.classes.FindByID(ctx, nil, classID)
	if err != nil {
		appErr := classify(err, appErrors.Clone(appErrors.ErrNotFound, "class not found"), "export roster")
		logFailure(s.logger, "export_roster", appErr, zap.String("class_id", classID))
		return nil, appErr
	}
	roster, err := s.enrollments.ListRoster(ctx, classID)
	if err != nil {
		return nil, s.storageFailure(err, classID)
	}
	waitlist, err := s.waitlists.ListViewByClass(ctx, classID)
	if err != nil {
		return nil, s.storageFailure(err, classID)
	}

	enrolled := export.Table{Name: "Enrolled", Headers: []string{"student_id", "name", "enrolled_at"}}
	for _, entry := range roster {
		enrolled.Rows = append(enrolled.Rows, []string{entry.StudentID, entry.Name, entry.EnrolledAt.UTC().Format(time.RFC3339)})
	}
	waiting := export.Table{Name: "Waitlist", Headers: []string{"position", "student_id", "name", "date_added"}}
	for _, entry := range waitlist {
		waiting.Rows = append(waiting.Rows, []string{strconv.Itoa(entry.Position), entry.StudentID, entry.Name, entry.DateAdded.UTC().Format(time.RFC3339Nano)})
	}

	doc := export.Document{
		Title:  fmt.Sprintf("%s section %d (%d/%d)", class.CourseCode, class.SectionNumber, class.CurrentEnrollment, class.MaxEnrollment),
		Tables: []export.Table{enrolled, waiting},
	}
	renderer := s.renderers[format]
	body, err := renderer.Render(doc)
	if err != nil {
		return nil, s.storageFailure(err, classID)
	}
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s-%d.%s", class.CourseCode, class.SectionNumber, format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *RosterService) storageFailure(err error, classID string) *appErrors.Error {
	appErr := classify(err, nil, "export roster")
	logFailure(s.logger, "export_roster", appErr, zap.String("class_id", classID))
	return appErr
}
