package domain

import "time"

// Subscriber is a newsletter signup. Rows are never deleted; unsubscribing
// only flips Unsubscribed.
type Subscriber struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
	EmailSent    bool      `json:"email_sent" db:"email_sent"`
	Unsubscribed bool      `json:"unsubscribed" db:"unsubscribed"`
}

// UnsubscribeStatus is the status flag appended to the unsubscribe landing page.
type UnsubscribeStatus string

const (
	UnsubscribeSuccess UnsubscribeStatus = "success"
	UnsubscribeInvalid UnsubscribeStatus = "invalid"
	UnsubscribeError   UnsubscribeStatus = "error"
)
