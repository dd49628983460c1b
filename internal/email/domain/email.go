package domain

import "time"

// Email is one ingested message. GmailID carries a unique index and is the sole
// deduplication key for the sync pipeline; a row is created exactly once per Gmail
// message and never updated afterwards.
type Email struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"index;not null"`
	AccountID         string     `json:"account_id" gorm:"index;not null"`
	GmailID           string     `json:"gmail_id" gorm:"uniqueIndex;not null"`
	ThreadID          string     `json:"thread_id"`
	Subject           string     `json:"subject"`
	From              string     `json:"from"`
	ReceivedAt        time.Time  `json:"received_at"`
	Snippet           string     `json:"snippet" gorm:"type:text"`
	HTML              string     `json:"html" gorm:"type:text"`
	Text              string     `json:"text" gorm:"type:text"`
	AISummary         string     `json:"ai_summary" gorm:"type:text"`
	CategoryID        *string    `json:"category_id" gorm:"index"`
	UnsubscribeURL    string     `json:"unsubscribe_url" gorm:"type:text"`
	UnsubscribeMailto string     `json:"unsubscribe_mailto"`
	ArchivedAt        *time.Time `json:"archived_at"`
	CreatedAt         time.Time  `json:"created_at"`
}
