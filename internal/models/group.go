package models

import "time"

// MembershipRole is the per-group role carried by a membership row.
type MembershipRole string

const (
	MemberRoleMember    MembershipRole = "member"
	MemberRoleModerator MembershipRole = "moderator"
	MemberRoleAdmin     MembershipRole = "admin"
)

// StudyGroup is a member-run study circle.
type StudyGroup struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	CreatorID     string    `db:"creator_id" json:"creator_id"`
	LearningLevel *string   `db:"learning_level" json:"learning_level,omitempty"`
	IsPublic      bool      `db:"is_public" json:"is_public"`
	MaxMembers    int       `db:"max_members" json:"max_members"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// GroupSummary decorates a group with listing metadata.
type GroupSummary struct {
	StudyGroup
	CreatorName    *string         `db:"creator_name" json:"creator_name,omitempty"`
	MemberCount    int             `db:"member_count" json:"member_count"`
	IsMember       bool            `db:"is_member" json:"is_member"`
	MembershipRole *MembershipRole `db:"membership_role" json:"membership_role,omitempty"`
	JoinedAt       *time.Time      `db:"joined_at" json:"joined_at,omitempty"`
}

// GroupMembership links a user to a study group.
type GroupMembership struct {
	ID       string         `db:"id" json:"id"`
	GroupID  string         `db:"group_id" json:"group_id"`
	UserID   string         `db:"user_id" json:"user_id"`
	Role     MembershipRole `db:"role" json:"role"`
	JoinedAt time.Time      `db:"joined_at" json:"joined_at"`
}

// GroupMember is a membership joined with profile details.
type GroupMember struct {
	GroupMembership
	FullName      string  `db:"full_name" json:"full_name"`
	LearningLevel *string `db:"learning_level" json:"learning_level,omitempty"`
	AvatarURL     *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// GroupDiscussion is an append-only post inside a group.
type GroupDiscussion struct {
	ID           string    `db:"id" json:"id"`
	GroupID      string    `db:"group_id" json:"group_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	AuthorAvatar *string   `db:"author_avatar" json:"author_avatar,omitempty"`
}

// GroupListType selects which listing a caller wants.
type GroupListType string

const (
	GroupListJoined    GroupListType = "joined"
	GroupListAvailable GroupListType = "available"
	GroupListCreated   GroupListType = "created"
)
