package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type courseRepository interface {
	ListActive(ctx context.Context) ([]models.Course, error)
	ProgressByUser(ctx context.Context, userID string) ([]models.CourseProgress, error)
}

// CourseService exposes the course catalogue and per-user progress.
type CourseService struct {
	repo   courseRepository
	logger *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, logger: logger}
}

// List returns the active course catalogue.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Progress returns the caller's course progress.
func (s *CourseService) Progress(ctx context.Context, userID string) ([]models.CourseProgress, error) {
	progress, err := s.repo.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	return progress, nil
}
