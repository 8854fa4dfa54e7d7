package domain

import "time"

// ContactSubmission is a lead captured by the public contact form. Immutable.
type ContactSubmission struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	Service     string    `json:"service" db:"service"`
	Requirement string    `json:"requirement" db:"requirement"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}
