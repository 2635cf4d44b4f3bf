package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
	"github.com/TravisChandler1/ewaede/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Report is a rendered export ready to stream to the client.
type Report struct {
	FileName    string
	ContentType string
	Data        []byte
}

type reportProfileRepository interface {
	List(ctx context.Context, filter models.ProfileFilter) ([]models.UserProfile, int, error)
}

type reportApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.TeacherApplication, int, error)
}

// ReportService renders admin exports of users and teacher applications.
type ReportService struct {
	profiles     reportProfileRepository
	applications reportApplicationRepository
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(profiles reportProfileRepository, applications reportApplicationRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		profiles:     profiles,
		applications: applications,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// Users renders the user roster export.
func (s *ReportService) Users(ctx context.Context, format ReportFormat) (*Report, error) {
	profiles, _, err := s.profiles.List(ctx, models.ProfileFilter{PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}

	data := export.Dataset{
		Headers: []string{"Name", "Email", "Role", "Level", "Active", "Joined"},
	}
	for _, p := range profiles {
		level := ""
		if p.LearningLevel != nil {
			level = *p.LearningLevel
		}
		data.Rows = append(data.Rows, map[string]string{
			"Name":   p.FullName,
			"Email":  p.Email,
			"Role":   string(p.Role),
			"Level":  level,
			"Active": strconv.FormatBool(p.IsActive),
			"Joined": p.CreatedAt.Format("2006-01-02"),
		})
	}

	return s.render(data, "users", "Ewa Ede Users", format)
}

// Applications renders the teacher application export.
func (s *ReportService) Applications(ctx context.Context, format ReportFormat) (*Report, error) {
	apps, _, err := s.applications.List(ctx, models.ApplicationFilter{PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}

	data := export.Dataset{
		Headers: []string{"Name", "Email", "Experience", "Subjects", "Status", "Applied"},
	}
	for _, a := range apps {
		data.Rows = append(data.Rows, map[string]string{
			"Name":       a.FullName,
			"Email":      a.Email,
			"Experience": fmt.Sprintf("%d years", a.ExperienceYears),
			"Subjects":   strings.Join(a.TeachingSubjects, ", "),
			"Status":     string(a.Status),
			"Applied":    a.AppliedAt.Format("2006-01-02"),
		})
	}

	return s.render(data, "teacher-applications", "Teacher Applications", format)
}

func (s *ReportService) render(data export.Dataset, name, title string, format ReportFormat) (*Report, error) {
	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ReportFormatPDF:
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &Report{
			FileName:    fmt.Sprintf("%s-%s.pdf", name, stamp),
			ContentType: "application/pdf",
			Data:        payload,
		}, nil
	case ReportFormatCSV, "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &Report{
			FileName:    fmt.Sprintf("%s-%s.csv", name, stamp),
			ContentType: "text/csv",
			Data:        payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
