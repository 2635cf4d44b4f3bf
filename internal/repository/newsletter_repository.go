package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/TravisChandler1/ewaede/internal/models"
)

// NewsletterRepository provides database access for newsletter subscriptions.
type NewsletterRepository struct {
	db *sqlx.DB
}

// NewNewsletterRepository creates a new instance of NewsletterRepository.
func NewNewsletterRepository(db *sqlx.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// FindByEmail returns an existing subscription for the email, or
// sql.ErrNoRows.
func (r *NewsletterRepository) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	const query = `SELECT id, email, subscribed_at FROM newsletter_subscriptions WHERE email = $1 LIMIT 1`
	var sub models.NewsletterSubscription
	if err := r.db.GetContext(ctx, &sub, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

// Create inserts a new subscription.
func (r *NewsletterRepository) Create(ctx context.Context, sub *models.NewsletterSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now().UTC()
	}
	const query = `INSERT INTO newsletter_subscriptions (id, email, subscribed_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, sub.ID, sub.Email, sub.SubscribedAt); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}
