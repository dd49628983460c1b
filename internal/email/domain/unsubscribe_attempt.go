package domain

import "time"

// Unsubscribe methods, in selection priority order.
const (
	MethodMailto = "mailto"
	MethodLink   = "link"
	MethodNone   = "none"
)

// Unsubscribe attempt outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// UnsubscribeAttempt records the outcome of one unsubscribe job execution.
// Exactly one row is created per executed job.
type UnsubscribeAttempt struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	EmailID   string    `json:"email_id" gorm:"index;not null"`
	Method    string    `json:"method" gorm:"not null"`
	Status    string    `json:"status" gorm:"not null"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
