package queue

import "time"

// SyncJob asks the sync processor to reconcile one connected account.
type SyncJob struct {
	AccountID string `json:"accountId"`
	FullSync  bool   `json:"fullSync,omitempty"`
}

// UnsubscribeJob asks the unsubscribe processor to act on one ingested email.
type UnsubscribeJob struct {
	EmailID string `json:"emailId"`
}

// RetryPolicy caps delivery attempts and spaces redeliveries with exponential
// backoff from BackoffBase.
type RetryPolicy struct {
	Attempts    int
	BackoffBase time.Duration
}

var (
	SyncRetry        = RetryPolicy{Attempts: 3, BackoffBase: 2 * time.Second}
	UnsubscribeRetry = RetryPolicy{Attempts: 2, BackoffBase: 5 * time.Second}
)

// Delay returns the redelivery delay after the given delivery attempt (1-based).
func (p RetryPolicy) Delay(delivered int) time.Duration {
	if delivered < 1 {
		delivered = 1
	}
	return p.BackoffBase << (delivered - 1)
}
