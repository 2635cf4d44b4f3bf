package models

import "time"

// BookClub is a reading circle working through a single book.
type BookClub struct {
	ID              string    `db:"id" json:"id"`
	BookTitle       string    `db:"book_title" json:"book_title"`
	Author          string    `db:"author" json:"author"`
	Description     string    `db:"description" json:"description"`
	TotalChapters   int       `db:"total_chapters" json:"total_chapters"`
	CreatorID       string    `db:"creator_id" json:"creator_id"`
	ReadingSchedule string    `db:"reading_schedule" json:"reading_schedule"`
	DiscussionDay   string    `db:"discussion_day" json:"discussion_day"`
	LearningLevel   *string   `db:"learning_level" json:"learning_level,omitempty"`
	MaxMembers      int       `db:"max_members" json:"max_members"`
	CurrentChapter  int       `db:"current_chapter" json:"current_chapter"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// BookClubSummary decorates a book club with listing metadata.
type BookClubSummary struct {
	BookClub
	CreatorName     *string    `db:"creator_name" json:"creator_name,omitempty"`
	MemberCount     int        `db:"member_count" json:"member_count"`
	IsMember        bool       `db:"is_member" json:"is_member"`
	ProgressChapter *int       `db:"progress_chapter" json:"progress_chapter,omitempty"`
	JoinedAt        *time.Time `db:"joined_at" json:"joined_at,omitempty"`
}

// BookClubMembership links a user to a book club and tracks reading progress.
type BookClubMembership struct {
	ID              string     `db:"id" json:"id"`
	BookClubID      string     `db:"book_club_id" json:"book_club_id"`
	UserID          string     `db:"user_id" json:"user_id"`
	ProgressChapter int        `db:"progress_chapter" json:"progress_chapter"`
	JoinedAt        time.Time  `db:"joined_at" json:"joined_at"`
	LastUpdated     *time.Time `db:"last_updated" json:"last_updated,omitempty"`
}

// BookClubMember is a membership joined with profile details.
type BookClubMember struct {
	BookClubMembership
	FullName      string  `db:"full_name" json:"full_name"`
	LearningLevel *string `db:"learning_level" json:"learning_level,omitempty"`
	AvatarURL     *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// BookClubDiscussion is an append-only post inside a book club.
type BookClubDiscussion struct {
	ID            string    `db:"id" json:"id"`
	BookClubID    string    `db:"book_club_id" json:"book_club_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Content       string    `db:"content" json:"content"`
	ChapterNumber *int      `db:"chapter_number" json:"chapter_number,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	AuthorName    string    `db:"author_name" json:"author_name"`
	AuthorAvatar  *string   `db:"author_avatar" json:"author_avatar,omitempty"`
}
