package models

import "time"

// Course is a structured Yoruba course in the catalogue.
type Course struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Level         string    `db:"level" json:"level"`
	DurationWeeks int       `db:"duration_weeks" json:"duration_weeks"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// UserProgress tracks a student's position inside a course.
type UserProgress struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	CourseID           string    `db:"course_id" json:"course_id"`
	CompletedLessons   int       `db:"completed_lessons" json:"completed_lessons"`
	TotalLessons       int       `db:"total_lessons" json:"total_lessons"`
	ProgressPercentage float64   `db:"progress_percentage" json:"progress_percentage"`
	LastAccessed       time.Time `db:"last_accessed" json:"last_accessed"`
}

// CourseProgress is a progress row joined with its course.
type CourseProgress struct {
	UserProgress
	CourseTitle   string `db:"course_title" json:"course_title"`
	Level         string `db:"level" json:"level"`
	DurationWeeks int    `db:"duration_weeks" json:"duration_weeks"`
}
