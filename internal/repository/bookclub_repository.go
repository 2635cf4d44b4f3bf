package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/TravisChandler1/ewaede/internal/models"
)

const bookClubColumns = `bc.id, bc.book_title, bc.author, bc.description, bc.total_chapters, bc.creator_id, bc.reading_schedule, bc.discussion_day, bc.learning_level, bc.max_members, bc.current_chapter, bc.is_active, bc.created_at`

// BookClubRepository provides database access for book clubs, memberships and
// discussions.
type BookClubRepository struct {
	db *sqlx.DB
}

// NewBookClubRepository creates a new instance of BookClubRepository.
func NewBookClubRepository(db *sqlx.DB) *BookClubRepository {
	return &BookClubRepository{db: db}
}

// Create inserts a club and the creator's membership in one transaction.
func (r *BookClubRepository) Create(ctx context.Context, club *models.BookClub) error {
	if club.ID == "" {
		club.ID = uuid.NewString()
	}
	if club.CreatedAt.IsZero() {
		club.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create club tx: %w", err)
	}
	defer tx.Rollback()

	const clubQuery = `INSERT INTO book_clubs (id, book_title, author, description, total_chapters, creator_id, reading_schedule, discussion_day, learning_level, max_members, current_chapter, is_active, created_at) VALUES (:id, :book_title, :author, :description, :total_chapters, :creator_id, :reading_schedule, :discussion_day, :learning_level, :max_members, :current_chapter, :is_active, :created_at)`
	if _, err := tx.NamedExecContext(ctx, clubQuery, club); err != nil {
		return fmt.Errorf("create book club: %w", err)
	}

	const memberQuery = `INSERT INTO book_club_memberships (id, book_club_id, user_id, progress_chapter, joined_at) VALUES ($1, $2, $3, 0, $4)`
	if _, err := tx.ExecContext(ctx, memberQuery, uuid.NewString(), club.ID, club.CreatorID, club.CreatedAt); err != nil {
		return fmt.Errorf("create club membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create club tx: %w", err)
	}
	return nil
}

// FindSummaryByID returns a club with member count and the viewer's
// membership state.
func (r *BookClubRepository) FindSummaryByID(ctx context.Context, id, viewerID string) (*models.BookClubSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM book_club_memberships bm WHERE bm.book_club_id = bc.id) AS member_count,
		EXISTS (SELECT 1 FROM book_club_memberships bm WHERE bm.book_club_id = bc.id AND bm.user_id = $2) AS is_member,
		(SELECT bm.progress_chapter FROM book_club_memberships bm WHERE bm.book_club_id = bc.id AND bm.user_id = $2) AS progress_chapter,
		(SELECT bm.joined_at FROM book_club_memberships bm WHERE bm.book_club_id = bc.id AND bm.user_id = $2) AS joined_at
		FROM book_clubs bc
		LEFT JOIN user_profiles cp ON cp.user_id = bc.creator_id
		WHERE bc.id = $1 LIMIT 1`, bookClubColumns)
	var summary models.BookClubSummary
	if err := r.db.GetContext(ctx, &summary, query, id, viewerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find club summary: %w", err)
	}
	return &summary, nil
}

// ListActive returns active clubs with the viewer's membership state.
func (r *BookClubRepository) ListActive(ctx context.Context, viewerID string) ([]models.BookClubSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM book_club_memberships bm WHERE bm.book_club_id = bc.id) AS member_count,
		EXISTS (SELECT 1 FROM book_club_memberships bm WHERE bm.book_club_id = bc.id AND bm.user_id = $1) AS is_member,
		(SELECT bm.progress_chapter FROM book_club_memberships bm WHERE bm.book_club_id = bc.id AND bm.user_id = $1) AS progress_chapter
		FROM book_clubs bc
		LEFT JOIN user_profiles cp ON cp.user_id = bc.creator_id
		WHERE bc.is_active = TRUE
		ORDER BY bc.created_at DESC`, bookClubColumns)
	var clubs []models.BookClubSummary
	if err := r.db.SelectContext(ctx, &clubs, query, viewerID); err != nil {
		return nil, fmt.Errorf("list active clubs: %w", err)
	}
	return clubs, nil
}

// ListJoined returns clubs the viewer belongs to.
func (r *BookClubRepository) ListJoined(ctx context.Context, viewerID string) ([]models.BookClubSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM book_club_memberships bmc WHERE bmc.book_club_id = bc.id) AS member_count,
		TRUE AS is_member,
		bm.progress_chapter AS progress_chapter,
		bm.joined_at AS joined_at
		FROM book_club_memberships bm
		JOIN book_clubs bc ON bc.id = bm.book_club_id
		LEFT JOIN user_profiles cp ON cp.user_id = bc.creator_id
		WHERE bm.user_id = $1
		ORDER BY bm.joined_at DESC`, bookClubColumns)
	var clubs []models.BookClubSummary
	if err := r.db.SelectContext(ctx, &clubs, query, viewerID); err != nil {
		return nil, fmt.Errorf("list joined clubs: %w", err)
	}
	return clubs, nil
}

// Join atomically checks capacity and inserts a membership, same locking
// scheme as session registration.
func (r *BookClubRepository) Join(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin join tx: %w", err)
	}
	defer tx.Rollback()

	var club struct {
		MaxMembers int  `db:"max_members"`
		IsActive   bool `db:"is_active"`
	}
	const lockQuery = `SELECT max_members, is_active FROM book_clubs WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &club, lockQuery, clubID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock club: %w", err)
	}

	if !club.IsActive {
		return nil, ErrNotJoinable
	}

	var members int
	const countQuery = `SELECT COUNT(*) FROM book_club_memberships WHERE book_club_id = $1`
	if err := tx.GetContext(ctx, &members, countQuery, clubID); err != nil {
		return nil, fmt.Errorf("count club memberships: %w", err)
	}
	if members >= club.MaxMembers {
		return nil, ErrCapacityFull
	}

	membership := &models.BookClubMembership{
		ID:         uuid.NewString(),
		BookClubID: clubID,
		UserID:     userID,
		JoinedAt:   time.Now().UTC(),
	}
	const insertQuery = `INSERT INTO book_club_memberships (id, book_club_id, user_id, progress_chapter, joined_at) VALUES ($1, $2, $3, 0, $4)`
	if _, err := tx.ExecContext(ctx, insertQuery, membership.ID, membership.BookClubID, membership.UserID, membership.JoinedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateMember
		}
		return nil, fmt.Errorf("insert club membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit join tx: %w", err)
	}
	return membership, nil
}

// Leave removes a membership. Returns sql.ErrNoRows when the user was not a
// member.
func (r *BookClubRepository) Leave(ctx context.Context, clubID, userID string) error {
	const query = `DELETE FROM book_club_memberships WHERE book_club_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, clubID, userID)
	if err != nil {
		return fmt.Errorf("leave club: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("leave club rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindMembership returns the viewer's membership in a club, or sql.ErrNoRows.
func (r *BookClubRepository) FindMembership(ctx context.Context, clubID, userID string) (*models.BookClubMembership, error) {
	const query = `SELECT id, book_club_id, user_id, progress_chapter, joined_at, last_updated FROM book_club_memberships WHERE book_club_id = $1 AND user_id = $2 LIMIT 1`
	var membership models.BookClubMembership
	if err := r.db.GetContext(ctx, &membership, query, clubID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find club membership: %w", err)
	}
	return &membership, nil
}

// UpdateProgress sets a member's reading position.
func (r *BookClubRepository) UpdateProgress(ctx context.Context, clubID, userID string, chapter int) error {
	const query = `UPDATE book_club_memberships SET progress_chapter = $3, last_updated = $4 WHERE book_club_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, clubID, userID, chapter, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update reading progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reading progress rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Members lists club members in join order.
func (r *BookClubRepository) Members(ctx context.Context, clubID string) ([]models.BookClubMember, error) {
	const query = `SELECT bm.id, bm.book_club_id, bm.user_id, bm.progress_chapter, bm.joined_at, bm.last_updated, up.full_name, up.learning_level, up.avatar_url
		FROM book_club_memberships bm
		JOIN user_profiles up ON up.user_id = bm.user_id
		WHERE bm.book_club_id = $1
		ORDER BY bm.joined_at ASC`
	var members []models.BookClubMember
	if err := r.db.SelectContext(ctx, &members, query, clubID); err != nil {
		return nil, fmt.Errorf("list club members: %w", err)
	}
	return members, nil
}

// CreateDiscussion appends a post to a club's discussion feed.
func (r *BookClubRepository) CreateDiscussion(ctx context.Context, post *models.BookClubDiscussion) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO book_club_discussions (id, book_club_id, user_id, content, chapter_number, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, post.ID, post.BookClubID, post.UserID, post.Content, post.ChapterNumber, post.CreatedAt); err != nil {
		return fmt.Errorf("create club discussion: %w", err)
	}
	return nil
}

// Discussions lists club posts, newest first.
func (r *BookClubRepository) Discussions(ctx context.Context, clubID string, limit int) ([]models.BookClubDiscussion, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT bd.id, bd.book_club_id, bd.user_id, bd.content, bd.chapter_number, bd.created_at, up.full_name AS author_name, up.avatar_url AS author_avatar
		FROM book_club_discussions bd
		JOIN user_profiles up ON up.user_id = bd.user_id
		WHERE bd.book_club_id = $1
		ORDER BY bd.created_at DESC
		LIMIT $2`
	var posts []models.BookClubDiscussion
	if err := r.db.SelectContext(ctx, &posts, query, clubID, limit); err != nil {
		return nil, fmt.Errorf("list club discussions: %w", err)
	}
	return posts, nil
}
