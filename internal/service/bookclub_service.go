package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	"github.com/TravisChandler1/ewaede/internal/repository"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type bookClubRepository interface {
	Create(ctx context.Context, club *models.BookClub) error
	FindSummaryByID(ctx context.Context, id, viewerID string) (*models.BookClubSummary, error)
	ListActive(ctx context.Context, viewerID string) ([]models.BookClubSummary, error)
	ListJoined(ctx context.Context, viewerID string) ([]models.BookClubSummary, error)
	Join(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error)
	Leave(ctx context.Context, clubID, userID string) error
	FindMembership(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error)
	UpdateProgress(ctx context.Context, clubID, userID string, chapter int) error
	Members(ctx context.Context, clubID string) ([]models.BookClubMember, error)
	CreateDiscussion(ctx context.Context, post *models.BookClubDiscussion) error
	Discussions(ctx context.Context, clubID string, limit int) ([]models.BookClubDiscussion, error)
}

// CreateBookClubRequest is the payload for starting a book club.
type CreateBookClubRequest struct {
	BookTitle       string  `json:"book_title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	Description     string  `json:"description"`
	TotalChapters   int     `json:"total_chapters" validate:"required,gt=0"`
	ReadingSchedule string  `json:"reading_schedule" validate:"required"`
	DiscussionDay   string  `json:"discussion_day" validate:"required"`
	LearningLevel   *string `json:"learning_level,omitempty"`
	MaxMembers      int     `json:"max_members" validate:"required,gt=1"`
}

// UpdateProgressRequest sets a member's reading position.
type UpdateProgressRequest struct {
	Chapter int `json:"chapter" validate:"gte=0"`
}

// PostClubDiscussionRequest is the payload for a club discussion post.
type PostClubDiscussionRequest struct {
	Content       string `json:"content" validate:"required"`
	ChapterNumber *int   `json:"chapter_number,omitempty" validate:"omitempty,gt=0"`
}

// BookClubService implements book club membership, reading progress and
// discussion.
type BookClubService struct {
	repo      bookClubRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookClubService constructs a BookClubService instance.
func NewBookClubService(repo bookClubRepository, validate *validator.Validate, logger *zap.Logger) *BookClubService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BookClubService{repo: repo, validator: validate, logger: logger}
}

// Create starts a club. The creator automatically becomes a member at
// chapter zero.
func (s *BookClubService) Create(ctx context.Context, creatorID string, req CreateBookClubRequest) (*models.BookClub, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid book club payload")
	}

	club := &models.BookClub{
		BookTitle:       req.BookTitle,
		Author:          req.Author,
		Description:     req.Description,
		TotalChapters:   req.TotalChapters,
		CreatorID:       creatorID,
		ReadingSchedule: req.ReadingSchedule,
		DiscussionDay:   req.DiscussionDay,
		LearningLevel:   req.LearningLevel,
		MaxMembers:      req.MaxMembers,
		CurrentChapter:  0,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, club); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create book club")
	}
	return club, nil
}

// List returns clubs for the viewer, either all active or only joined.
func (s *BookClubService) List(ctx context.Context, viewerID string, joinedOnly bool) ([]models.BookClubSummary, error) {
	var (
		clubs []models.BookClubSummary
		err   error
	)
	if joinedOnly {
		clubs, err = s.repo.ListJoined(ctx, viewerID)
	} else {
		clubs, err = s.repo.ListActive(ctx, viewerID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list book clubs")
	}
	return clubs, nil
}

// Get returns a club summary as seen by the viewer.
func (s *BookClubService) Get(ctx context.Context, id, viewerID string) (*models.BookClubSummary, error) {
	summary, err := s.repo.FindSummaryByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book club not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book club")
	}
	return summary, nil
}

// Join adds the viewer as a member starting at chapter zero.
func (s *BookClubService) Join(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error) {
	membership, err := s.repo.Join(ctx, clubID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book club not found")
		case errors.Is(err, repository.ErrCapacityFull):
			return nil, appErrors.Clone(appErrors.ErrConflict, "book club is full")
		case errors.Is(err, repository.ErrDuplicateMember):
			return nil, appErrors.Clone(appErrors.ErrConflict, "you are already a member of this book club")
		case errors.Is(err, repository.ErrNotJoinable):
			return nil, appErrors.Clone(appErrors.ErrConflict, "this book club is no longer active")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join book club")
	}
	return membership, nil
}

// Leave removes the viewer's membership.
func (s *BookClubService) Leave(ctx context.Context, clubID, userID string) error {
	if err := s.repo.Leave(ctx, clubID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "you are not a member of this book club")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to leave book club")
	}
	return nil
}

// UpdateProgress moves the member's bookmark. The chapter cannot exceed the
// book's total.
func (s *BookClubService) UpdateProgress(ctx context.Context, clubID, userID string, req UpdateProgressRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	summary, err := s.Get(ctx, clubID, userID)
	if err != nil {
		return err
	}
	if req.Chapter > summary.TotalChapters {
		return appErrors.Clone(appErrors.ErrValidation, "chapter exceeds the book's total chapters")
	}

	if err := s.repo.UpdateProgress(ctx, clubID, userID, req.Chapter); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "you are not a member of this book club")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}
	return nil
}

// Members lists the club roster. Members only.
func (s *BookClubService) Members(ctx context.Context, clubID, viewerID string) ([]models.BookClubMember, error) {
	if err := s.requireMembership(ctx, clubID, viewerID); err != nil {
		return nil, err
	}
	members, err := s.repo.Members(ctx, clubID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return members, nil
}

// Discussions lists the club feed. Members only.
func (s *BookClubService) Discussions(ctx context.Context, clubID, viewerID string, limit int) ([]models.BookClubDiscussion, error) {
	if err := s.requireMembership(ctx, clubID, viewerID); err != nil {
		return nil, err
	}
	posts, err := s.repo.Discussions(ctx, clubID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list discussions")
	}
	return posts, nil
}

// PostDiscussion appends a post to the club feed. Members only.
func (s *BookClubService) PostDiscussion(ctx context.Context, clubID, userID string, req PostClubDiscussionRequest) (*models.BookClubDiscussion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid discussion payload")
	}
	if err := s.requireMembership(ctx, clubID, userID); err != nil {
		return nil, err
	}

	post := &models.BookClubDiscussion{
		BookClubID:    clubID,
		UserID:        userID,
		Content:       req.Content,
		ChapterNumber: req.ChapterNumber,
	}
	if err := s.repo.CreateDiscussion(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post discussion")
	}
	return post, nil
}

func (s *BookClubService) requireMembership(ctx context.Context, clubID, userID string) error {
	if _, err := s.repo.FindMembership(ctx, clubID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "you are not a member of this book club")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	return nil
}
