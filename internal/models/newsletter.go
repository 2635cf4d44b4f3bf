package models

import "time"

// NewsletterSubscription records an email opted into the newsletter.
type NewsletterSubscription struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	SubscribedAt time.Time `db:"subscribed_at" json:"subscribed_at"`
}
