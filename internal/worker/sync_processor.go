package worker

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	accountdomain "email-sorter-backend/internal/account/domain"
	accountrepo "email-sorter-backend/internal/account/repository"
	emaildomain "email-sorter-backend/internal/email/domain"
	emailrepo "email-sorter-backend/internal/email/repository"
	"email-sorter-backend/internal/queue"
	"email-sorter-backend/pkg/ai"
	"email-sorter-backend/pkg/crypto"
	"email-sorter-backend/pkg/gmail"
)

// SyncConfig tunes the sync processor. Zero values take defaults.
type SyncConfig struct {
	EncryptionKey string
	// Window bounds full syncs to recently received mail. Defaults to 7 days.
	Window time.Duration
	// MaxResults caps a full sync listing. Defaults to 100.
	MaxResults int64
}

// SyncProcessor ingests new mail for one account per job: list new message
// ids (incrementally via the history cursor when possible), then classify,
// analyze, archive and persist each message.
type SyncProcessor struct {
	accounts   accountrepo.AccountRepository
	categories accountrepo.CategoryRepository
	emails     emailrepo.EmailRepository
	transport  gmail.Transport
	ai         ai.Service
	cfg        SyncConfig

	now func() time.Time
}

func NewSyncProcessor(
	accounts accountrepo.AccountRepository,
	categories accountrepo.CategoryRepository,
	emails emailrepo.EmailRepository,
	transport gmail.Transport,
	aiService ai.Service,
	cfg SyncConfig,
) *SyncProcessor {
	if cfg.Window <= 0 {
		cfg.Window = 7 * 24 * time.Hour
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	return &SyncProcessor{
		accounts:   accounts,
		categories: categories,
		emails:     emails,
		transport:  transport,
		ai:         aiService,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Process runs one sync pass for the job's account. A returned error fails
// the job and triggers a queue-level retry; per-message failures are logged
// and skipped so one bad message never stalls the account.
func (p *SyncProcessor) Process(ctx context.Context, job queue.SyncJob) error {
	log.Printf("[SyncWorker] Processing sync for account %s (fullSync: %v)", job.AccountID, job.FullSync)

	account, err := p.accounts.FindByID(job.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", job.AccountID, err)
	}
	if account == nil {
		return fmt.Errorf("account %s not found", job.AccountID)
	}

	categories, err := p.categories.FindByUserID(account.UserID)
	if err != nil {
		return fmt.Errorf("failed to load categories for user %s: %w", account.UserID, err)
	}

	creds, err := p.credentials(account)
	if err != nil {
		return err
	}

	var messageIDs []string
	fullSync := job.FullSync
	// A full sync normally reseeds the cursor. The exception is the fallback
	// after a transient history error, where the existing cursor stays valid.
	reseedCursor := account.HistoryID == "" || job.FullSync

	if account.HistoryID != "" && !fullSync {
		page, err := p.transport.ListHistory(ctx, creds, account.HistoryID)
		switch {
		case err != nil:
			log.Printf("[SyncWorker] History fetch failed for account %s, falling back to full sync: %v", account.ID, err)
			fullSync = true
		case page.NeedsFullSync:
			// The cursor is too old for Gmail to serve. Reset via a single
			// forced full sync, which also stores a fresh cursor.
			log.Printf("[SyncWorker] History cursor expired for account %s, doing full sync", account.ID)
			return p.Process(ctx, queue.SyncJob{AccountID: job.AccountID, FullSync: true})
		default:
			messageIDs = page.AddedIDs
			// Advance the cursor before per-message work so a retry after a
			// partial failure never re-reads the same history window.
			if page.HistoryID != "" {
				if err := p.accounts.UpdateHistoryID(account.ID, page.HistoryID); err != nil {
					log.Printf("[SyncWorker] Failed to update history cursor for account %s: %v", account.ID, err)
				}
			}
		}
	} else {
		fullSync = true
	}

	if fullSync {
		query := fmt.Sprintf("after:%d", p.now().Add(-p.cfg.Window).Unix())
		ids, err := p.transport.ListMessages(ctx, creds, query, p.cfg.MaxResults)
		if err != nil {
			return fmt.Errorf("failed to list messages for account %s: %w", account.ID, err)
		}
		messageIDs = ids

		// Seed a fresh cursor so the next run can go back to incremental mode.
		if reseedCursor {
			if historyID, err := p.transport.ProfileHistoryID(ctx, creds); err != nil {
				log.Printf("[SyncWorker] Failed to fetch profile history id for account %s: %v", account.ID, err)
			} else if err := p.accounts.UpdateHistoryID(account.ID, historyID); err != nil {
				log.Printf("[SyncWorker] Failed to update history cursor for account %s: %v", account.ID, err)
			}
		}
	}

	log.Printf("[SyncWorker] Found %d messages to process for account %s", len(messageIDs), account.ID)

	for _, messageID := range messageIDs {
		if err := p.processMessage(ctx, account, categories, creds, messageID); err != nil {
			log.Printf("[SyncWorker] Error processing message %s: %v", messageID, err)
		}
	}

	log.Printf("[SyncWorker] Sync completed for account %s", account.ID)
	return nil
}

// processMessage runs the pipeline for a single message: dedup, fetch, parse,
// classify, analyze, archive, persist.
func (p *SyncProcessor) processMessage(
	ctx context.Context,
	account *accountdomain.ConnectedAccount,
	categories []accountdomain.Category,
	creds gmail.Credentials,
	messageID string,
) error {
	existing, err := p.emails.FindByGmailID(messageID)
	if err != nil {
		return fmt.Errorf("dedup check failed: %w", err)
	}
	if existing != nil {
		log.Printf("[SyncWorker] Skipping already processed message %s", messageID)
		return nil
	}

	parsed, err := p.transport.GetMessage(ctx, creds, messageID)
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	content := ai.EmailContent{
		Subject: parsed.Subject,
		From:    parsed.From,
		Text:    parsed.Text,
		HTML:    parsed.HTML,
		Snippet: parsed.Snippet,
	}

	var categoryID *string
	if len(categories) > 0 {
		options := make([]ai.CategoryOption, len(categories))
		for i, category := range categories {
			options[i] = ai.CategoryOption{Name: category.Name, Description: category.Description}
		}
		classification := p.ai.Classify(ctx, content, options)
		for i := range categories {
			if categories[i].Name == classification.CategoryName {
				id := categories[i].ID
				categoryID = &id
				break
			}
		}
		log.Printf("[SyncWorker] Classified message %s as %q (confidence: %.2f)", messageID, classification.CategoryName, classification.Confidence)
	}

	analysis := p.ai.Analyze(ctx, content)
	if analysis.UnsubscribeURL == "" && analysis.UnsubscribeMailto == "" {
		info := gmail.ExtractUnsubscribeInfo(parsed)
		analysis.UnsubscribeURL = info.URL
		analysis.UnsubscribeMailto = info.Mailto
	}

	receivedAt := p.now()
	if parsed.Date != "" {
		if ts, err := mail.ParseDate(parsed.Date); err == nil {
			receivedAt = ts
		}
	}

	// Archive last among the remote steps so the message stays in the inbox
	// when fetch or analysis fails and a later pass can pick it up again.
	if err := p.transport.Archive(ctx, creds, messageID); err != nil {
		return fmt.Errorf("failed to archive message: %w", err)
	}

	archivedAt := p.now()
	email := &emaildomain.Email{
		ID:                uuid.New().String(),
		UserID:            account.UserID,
		AccountID:         account.ID,
		GmailID:           messageID,
		ThreadID:          parsed.ThreadID,
		Subject:           parsed.Subject,
		From:              parsed.From,
		ReceivedAt:        receivedAt,
		Snippet:           parsed.Snippet,
		HTML:              parsed.HTML,
		Text:              parsed.Text,
		AISummary:         analysis.Summary,
		CategoryID:        categoryID,
		UnsubscribeURL:    analysis.UnsubscribeURL,
		UnsubscribeMailto: analysis.UnsubscribeMailto,
		ArchivedAt:        &archivedAt,
	}
	if err := p.emails.Create(email); err != nil {
		return fmt.Errorf("failed to persist email: %w", err)
	}

	log.Printf("[SyncWorker] Processed email: %s", parsed.Subject)
	return nil
}

// credentials decrypts the account's tokens and wires a refresh callback that
// re-encrypts and persists rotated tokens.
func (p *SyncProcessor) credentials(account *accountdomain.ConnectedAccount) (gmail.Credentials, error) {
	accessToken, err := crypto.DecryptToken(account.AccessTokenEnc, p.cfg.EncryptionKey)
	if err != nil {
		return gmail.Credentials{}, fmt.Errorf("failed to decrypt access token for account %s: %w", account.ID, err)
	}

	refreshToken := ""
	if account.RefreshTokenEnc != "" {
		refreshToken, err = crypto.DecryptToken(account.RefreshTokenEnc, p.cfg.EncryptionKey)
		if err != nil {
			return gmail.Credentials{}, fmt.Errorf("failed to decrypt refresh token for account %s: %w", account.ID, err)
		}
	}

	accountID := account.ID
	refreshTokenEnc := account.RefreshTokenEnc
	return gmail.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		OnRefresh: func(token *oauth2.Token) error {
			accessEnc, err := crypto.EncryptToken(token.AccessToken, p.cfg.EncryptionKey)
			if err != nil {
				return err
			}
			newRefreshEnc := refreshTokenEnc
			if token.RefreshToken != "" && token.RefreshToken != refreshToken {
				newRefreshEnc, err = crypto.EncryptToken(token.RefreshToken, p.cfg.EncryptionKey)
				if err != nil {
					return err
				}
			}
			return p.accounts.UpdateTokens(accountID, accessEnc, newRefreshEnc)
		},
	}, nil
}
