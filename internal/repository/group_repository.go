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

const groupColumns = `sg.id, sg.name, sg.description, sg.creator_id, sg.learning_level, sg.is_public, sg.max_members, sg.created_at`

// GroupRepository provides database access for study groups, memberships and
// discussions.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group and its creator's admin membership in one
// transaction.
func (r *GroupRepository) Create(ctx context.Context, group *models.StudyGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group tx: %w", err)
	}
	defer tx.Rollback()

	const groupQuery = `INSERT INTO study_groups (id, name, description, creator_id, learning_level, is_public, max_members, created_at) VALUES (:id, :name, :description, :creator_id, :learning_level, :is_public, :max_members, :created_at)`
	if _, err := tx.NamedExecContext(ctx, groupQuery, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	const memberQuery = `INSERT INTO group_memberships (id, group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, memberQuery, uuid.NewString(), group.ID, group.CreatorID, models.MemberRoleAdmin, group.CreatedAt); err != nil {
		return fmt.Errorf("create group membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create group tx: %w", err)
	}
	return nil
}

// FindSummaryByID returns a group with member count and the viewer's
// membership state.
func (r *GroupRepository) FindSummaryByID(ctx context.Context, id, viewerID string) (*models.GroupSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM group_memberships gm WHERE gm.group_id = sg.id) AS member_count,
		EXISTS (SELECT 1 FROM group_memberships gm WHERE gm.group_id = sg.id AND gm.user_id = $2) AS is_member,
		(SELECT gm.role FROM group_memberships gm WHERE gm.group_id = sg.id AND gm.user_id = $2) AS membership_role,
		(SELECT gm.joined_at FROM group_memberships gm WHERE gm.group_id = sg.id AND gm.user_id = $2) AS joined_at
		FROM study_groups sg
		LEFT JOIN user_profiles cp ON cp.user_id = sg.creator_id
		WHERE sg.id = $1 LIMIT 1`, groupColumns)
	var summary models.GroupSummary
	if err := r.db.GetContext(ctx, &summary, query, id, viewerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group summary: %w", err)
	}
	return &summary, nil
}

// ListJoined returns groups the viewer belongs to.
func (r *GroupRepository) ListJoined(ctx context.Context, viewerID string) ([]models.GroupSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM group_memberships gmc WHERE gmc.group_id = sg.id) AS member_count,
		TRUE AS is_member,
		gm.role AS membership_role,
		gm.joined_at AS joined_at
		FROM group_memberships gm
		JOIN study_groups sg ON sg.id = gm.group_id
		LEFT JOIN user_profiles cp ON cp.user_id = sg.creator_id
		WHERE gm.user_id = $1
		ORDER BY gm.joined_at DESC`, groupColumns)
	var groups []models.GroupSummary
	if err := r.db.SelectContext(ctx, &groups, query, viewerID); err != nil {
		return nil, fmt.Errorf("list joined groups: %w", err)
	}
	return groups, nil
}

// ListAvailable returns public groups the viewer has not joined.
func (r *GroupRepository) ListAvailable(ctx context.Context, viewerID string) ([]models.GroupSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM group_memberships gm WHERE gm.group_id = sg.id) AS member_count,
		FALSE AS is_member
		FROM study_groups sg
		LEFT JOIN user_profiles cp ON cp.user_id = sg.creator_id
		WHERE sg.is_public = TRUE
		AND NOT EXISTS (SELECT 1 FROM group_memberships gm WHERE gm.group_id = sg.id AND gm.user_id = $1)
		ORDER BY sg.created_at DESC`, groupColumns)
	var groups []models.GroupSummary
	if err := r.db.SelectContext(ctx, &groups, query, viewerID); err != nil {
		return nil, fmt.Errorf("list available groups: %w", err)
	}
	return groups, nil
}

// ListCreated returns groups created by the viewer.
func (r *GroupRepository) ListCreated(ctx context.Context, creatorID string) ([]models.GroupSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
		cp.full_name AS creator_name,
		(SELECT COUNT(*) FROM group_memberships gm WHERE gm.group_id = sg.id) AS member_count,
		EXISTS (SELECT 1 FROM group_memberships gm WHERE gm.group_id = sg.id AND gm.user_id = $1) AS is_member
		FROM study_groups sg
		LEFT JOIN user_profiles cp ON cp.user_id = sg.creator_id
		WHERE sg.creator_id = $1
		ORDER BY sg.created_at DESC`, groupColumns)
	var groups []models.GroupSummary
	if err := r.db.SelectContext(ctx, &groups, query, creatorID); err != nil {
		return nil, fmt.Errorf("list created groups: %w", err)
	}
	return groups, nil
}

// Join atomically checks capacity and inserts a membership. Mirrors session
// registration: the group row is locked so concurrent joins for the last spot
// serialize, and the unique (group_id, user_id) constraint backs the
// duplicate check.
func (r *GroupRepository) Join(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin join tx: %w", err)
	}
	defer tx.Rollback()

	var group struct {
		MaxMembers int  `db:"max_members"`
		IsPublic   bool `db:"is_public"`
	}
	const lockQuery = `SELECT max_members, is_public FROM study_groups WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &group, lockQuery, groupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock group: %w", err)
	}

	if !group.IsPublic {
		return nil, ErrNotJoinable
	}

	var members int
	const countQuery = `SELECT COUNT(*) FROM group_memberships WHERE group_id = $1`
	if err := tx.GetContext(ctx, &members, countQuery, groupID); err != nil {
		return nil, fmt.Errorf("count memberships: %w", err)
	}
	if members >= group.MaxMembers {
		return nil, ErrCapacityFull
	}

	membership := &models.GroupMembership{
		ID:       uuid.NewString(),
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.MemberRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	const insertQuery = `INSERT INTO group_memberships (id, group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insertQuery, membership.ID, membership.GroupID, membership.UserID, membership.Role, membership.JoinedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateMember
		}
		return nil, fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit join tx: %w", err)
	}
	return membership, nil
}

// Leave removes a membership. Returns sql.ErrNoRows when the user was not a
// member.
func (r *GroupRepository) Leave(ctx context.Context, groupID, userID string) error {
	const query = `DELETE FROM group_memberships WHERE group_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("leave group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("leave group rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindMembership returns the viewer's membership in a group, or sql.ErrNoRows.
func (r *GroupRepository) FindMembership(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	const query = `SELECT id, group_id, user_id, role, joined_at FROM group_memberships WHERE group_id = $1 AND user_id = $2 LIMIT 1`
	var membership models.GroupMembership
	if err := r.db.GetContext(ctx, &membership, query, groupID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &membership, nil
}

// Members lists group members in join order.
func (r *GroupRepository) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	const query = `SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, up.full_name, up.learning_level, up.avatar_url
		FROM group_memberships gm
		JOIN user_profiles up ON up.user_id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at ASC`
	var members []models.GroupMember
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

// CreateDiscussion appends a post to a group's discussion feed.
func (r *GroupRepository) CreateDiscussion(ctx context.Context, post *models.GroupDiscussion) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO group_discussions (id, group_id, user_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, post.ID, post.GroupID, post.UserID, post.Content, post.CreatedAt); err != nil {
		return fmt.Errorf("create discussion: %w", err)
	}
	return nil
}

// Discussions lists group posts, newest first.
func (r *GroupRepository) Discussions(ctx context.Context, groupID string, limit int) ([]models.GroupDiscussion, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT gd.id, gd.group_id, gd.user_id, gd.content, gd.created_at, up.full_name AS author_name, up.avatar_url AS author_avatar
		FROM group_discussions gd
		JOIN user_profiles up ON up.user_id = gd.user_id
		WHERE gd.group_id = $1
		ORDER BY gd.created_at DESC
		LIMIT $2`
	var posts []models.GroupDiscussion
	if err := r.db.SelectContext(ctx, &posts, query, groupID, limit); err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return posts, nil
}
