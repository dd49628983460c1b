package repository

import (
	accountdomain "email-sorter-backend/internal/account/domain"
)

// AccountRepository defines the interface for connected-account operations
type AccountRepository interface {
	// FindByID retrieves an account by id. Returns (nil, nil) when absent.
	FindByID(id string) (*accountdomain.ConnectedAccount, error)
	// FindAll retrieves every connected account
	FindAll() ([]accountdomain.ConnectedAccount, error)
	// UpdateHistoryID persists a new incremental-sync cursor
	UpdateHistoryID(id, historyID string) error
	// UpdateTokens persists re-encrypted OAuth tokens after a refresh
	UpdateTokens(id, accessTokenEnc, refreshTokenEnc string) error
}

// CategoryRepository defines the interface for category reads
type CategoryRepository interface {
	// FindByUserID retrieves all categories owned by a user
	FindByUserID(userID string) ([]accountdomain.Category, error)
}
