package domain

import "time"

// User is the owning identity for accounts, categories and emails. The worker only
// ever reads it through foreign keys; provisioning lives in the API service.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectedAccount is a Gmail mailbox connected via OAuth. Tokens are stored
// encrypted; HistoryID is the opaque incremental-sync cursor ("" means no cursor,
// forcing a windowed full sync).
type ConnectedAccount struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	UserID          string    `json:"user_id" gorm:"index;not null"`
	Email           string    `json:"email" gorm:"not null"`
	AccessTokenEnc  string    `json:"-" gorm:"type:text;not null"`
	RefreshTokenEnc string    `json:"-" gorm:"type:text"`
	HistoryID       string    `json:"history_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Category is a user-defined sorting bucket. Read-only input to classification;
// the pipeline never mutates it.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}
