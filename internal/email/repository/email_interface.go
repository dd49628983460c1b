package repository

import (
	emaildomain "email-sorter-backend/internal/email/domain"
)

// EmailRepository defines the interface for ingested-email operations
type EmailRepository interface {
	// FindByID retrieves an email by primary key. Returns (nil, nil) when absent.
	FindByID(id string) (*emaildomain.Email, error)
	// FindByGmailID retrieves an email by its Gmail message id, the dedup key.
	// Returns (nil, nil) when absent.
	FindByGmailID(gmailID string) (*emaildomain.Email, error)
	// Create inserts a new email row
	Create(email *emaildomain.Email) error
}

// UnsubscribeAttemptRepository defines the interface for attempt records
type UnsubscribeAttemptRepository interface {
	// Create inserts a new attempt row
	Create(attempt *emaildomain.UnsubscribeAttempt) error
	// FindByEmailID retrieves all attempts for an email, newest first
	FindByEmailID(emailID string) ([]emaildomain.UnsubscribeAttempt, error)
}
