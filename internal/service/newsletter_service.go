package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
	"github.com/TravisChandler1/ewaede/pkg/jobs"
)

// WelcomeJobType identifies queued welcome email dispatch jobs.
const WelcomeJobType = "newsletter.welcome"

type newsletterRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error)
	Create(ctx context.Context, sub *models.NewsletterSubscription) error
}

type welcomeDispatcher interface {
	Enqueue(job jobs.Job) error
}

// SubscribeRequest is the public newsletter opt-in payload.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsletterService implements newsletter subscription. A nil dispatcher
// disables welcome dispatch without affecting the subscription itself.
type NewsletterService struct {
	repo       newsletterRepository
	dispatcher welcomeDispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewNewsletterService constructs a NewsletterService instance.
func NewNewsletterService(repo newsletterRepository, dispatcher welcomeDispatcher, validate *validator.Validate, logger *zap.Logger) *NewsletterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NewsletterService{repo: repo, dispatcher: dispatcher, validator: validate, logger: logger}
}

// Subscribe records an opt-in. Subscribing an already subscribed email is
// idempotent and does not re-send the welcome message.
func (s *NewsletterService) Subscribe(ctx context.Context, req SubscribeRequest) (*models.NewsletterSubscription, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscription payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}

	sub := &models.NewsletterSubscription{Email: email}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}

	if s.dispatcher != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: WelcomeJobType, Payload: email}
		if err := s.dispatcher.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue welcome dispatch", zap.String("email", email), zap.Error(err))
		}
	}

	return sub, nil
}
