package worker

import (
	"log"
	"sync"
	"time"

	accountrepo "email-sorter-backend/internal/account/repository"
	"email-sorter-backend/internal/queue"
)

// SyncEnqueuer is the queue surface the scheduler needs.
type SyncEnqueuer interface {
	EnqueueSync(job queue.SyncJob) error
}

// Scheduler enqueues one sync job per connected account on a fixed interval.
// In-flight jobs are deliberately not deduplicated; overlapping syncs are
// harmless because ingestion is idempotent on the Gmail message id.
type Scheduler struct {
	accounts accountrepo.AccountRepository
	queue    SyncEnqueuer
	interval time.Duration
	stopChan chan struct{}

	mu      sync.Mutex
	lastRun time.Time
}

// NewScheduler creates a scheduler. interval <= 0 defaults to 2 minutes.
func NewScheduler(accounts accountrepo.AccountRepository, q SyncEnqueuer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Scheduler{
		accounts: accounts,
		queue:    q,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop. An immediate pass runs before the first tick.
func (s *Scheduler) Start() {
	log.Printf("[Scheduler] Starting sync scheduler (interval: %s)", s.interval)

	go func() {
		s.scheduleSyncs()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.scheduleSyncs()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// LastRun returns when the scheduler last enumerated accounts.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// scheduleSyncs enqueues a sync job for every connected account. A failure for
// one account never aborts the rest.
func (s *Scheduler) scheduleSyncs() {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	accounts, err := s.accounts.FindAll()
	if err != nil {
		log.Printf("[Scheduler] Error listing accounts: %v", err)
		return
	}

	for _, account := range accounts {
		if err := s.queue.EnqueueSync(queue.SyncJob{AccountID: account.ID}); err != nil {
			log.Printf("[Scheduler] Error scheduling sync for %s: %v", account.Email, err)
			continue
		}
		log.Printf("[Scheduler] Scheduled sync for account %s", account.Email)
	}
}
