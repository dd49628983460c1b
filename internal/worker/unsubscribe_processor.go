package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	accountrepo "email-sorter-backend/internal/account/repository"
	emaildomain "email-sorter-backend/internal/email/domain"
	emailrepo "email-sorter-backend/internal/email/repository"
	"email-sorter-backend/internal/queue"
	"email-sorter-backend/pkg/browser"
	"email-sorter-backend/pkg/crypto"
	"email-sorter-backend/pkg/gmail"
)

// PageFactory opens a fresh browser page. The returned func releases it.
type PageFactory func(ctx context.Context) (browser.Page, func(), error)

// UnsubscribeProcessor attempts automated removal from a mailing list, by
// mailto when the message advertises one, otherwise by driving the
// unsubscribe web page. Every executed job records exactly one attempt.
type UnsubscribeProcessor struct {
	emails        emailrepo.EmailRepository
	attempts      emailrepo.UnsubscribeAttemptRepository
	accounts      accountrepo.AccountRepository
	transport     gmail.Transport
	newPage       PageFactory
	encryptionKey string

	// settleDelay gives the page time to react after a click before the
	// confirmation step and final phrase scan.
	settleDelay time.Duration
}

func NewUnsubscribeProcessor(
	emails emailrepo.EmailRepository,
	attempts emailrepo.UnsubscribeAttemptRepository,
	accounts accountrepo.AccountRepository,
	transport gmail.Transport,
	newPage PageFactory,
	encryptionKey string,
) *UnsubscribeProcessor {
	return &UnsubscribeProcessor{
		emails:        emails,
		attempts:      attempts,
		accounts:      accounts,
		transport:     transport,
		newPage:       newPage,
		encryptionKey: encryptionKey,
		settleDelay:   2 * time.Second,
	}
}

// Process runs one unsubscribe attempt. Only infrastructure failures (email
// row missing, attempt row not persistable) return an error and retry; an
// unsubscribe that could not be completed is recorded as a failed attempt and
// the job completes.
func (p *UnsubscribeProcessor) Process(ctx context.Context, job queue.UnsubscribeJob) error {
	log.Printf("[UnsubscribeWorker] Processing unsubscribe for email %s", job.EmailID)

	email, err := p.emails.FindByID(job.EmailID)
	if err != nil {
		return fmt.Errorf("failed to load email %s: %w", job.EmailID, err)
	}
	if email == nil {
		return fmt.Errorf("email %s not found", job.EmailID)
	}

	method := emaildomain.MethodNone
	status := emaildomain.StatusFailed
	notes := "No unsubscribe method available"

	switch {
	case email.UnsubscribeMailto != "":
		method = emaildomain.MethodMailto
		status, notes = p.viaMailto(ctx, email)
	case email.UnsubscribeURL != "":
		method = emaildomain.MethodLink
		status, notes = p.viaLink(ctx, email)
	}

	attempt := &emaildomain.UnsubscribeAttempt{
		EmailID: email.ID,
		Method:  method,
		Status:  status,
		Notes:   notes,
	}
	if err := p.attempts.Create(attempt); err != nil {
		return fmt.Errorf("failed to record unsubscribe attempt for email %s: %w", email.ID, err)
	}

	log.Printf("[UnsubscribeWorker] Unsubscribe for email %s finished: %s (%s)", email.ID, status, method)
	return nil
}

// viaMailto sends the unsubscribe request from the account that received the
// message.
func (p *UnsubscribeProcessor) viaMailto(ctx context.Context, email *emaildomain.Email) (string, string) {
	account, err := p.accounts.FindByID(email.AccountID)
	if err != nil {
		return emaildomain.StatusFailed, "Failed to load account: " + err.Error()
	}
	if account == nil {
		return emaildomain.StatusFailed, fmt.Sprintf("Account %s not found", email.AccountID)
	}

	accessToken, err := crypto.DecryptToken(account.AccessTokenEnc, p.encryptionKey)
	if err != nil {
		return emaildomain.StatusFailed, "Failed to decrypt access token: " + err.Error()
	}
	creds := gmail.Credentials{AccessToken: accessToken}

	to := mailtoAddress(email.UnsubscribeMailto)
	raw := gmail.BuildRawMessage(to, "Unsubscribe", "Please unsubscribe me from this mailing list.")
	if err := p.transport.Send(ctx, creds, raw); err != nil {
		return emaildomain.StatusFailed, "Failed to send unsubscribe email: " + err.Error()
	}
	return emaildomain.StatusSuccess, fmt.Sprintf("Unsubscribe email sent to %s", to)
}

func (p *UnsubscribeProcessor) viaLink(ctx context.Context, email *emaildomain.Email) (string, string) {
	page, release, err := p.newPage(ctx)
	if err != nil {
		return emaildomain.StatusFailed, "Failed to launch browser: " + err.Error()
	}
	defer release()
	return p.automate(ctx, page, email)
}

// automate drives the unsubscribe page: navigate, short-circuit on an
// already-unsubscribed page, bail on captcha or login walls, prime the form,
// click the best candidate control, then re-scan for confirmation text.
func (p *UnsubscribeProcessor) automate(ctx context.Context, page browser.Page, email *emaildomain.Email) (string, string) {
	if err := page.Navigate(ctx, email.UnsubscribeURL); err != nil {
		if !errors.Is(err, browser.ErrNavigationTimeout) {
			return emaildomain.StatusFailed, "Failed to open unsubscribe page: " + err.Error()
		}
		log.Printf("[UnsubscribeWorker] Navigation timed out for %s, continuing with partial page", email.UnsubscribeURL)
	}

	if phrase, ok := p.findSuccessPhrase(ctx, page); ok {
		return emaildomain.StatusSuccess, fmt.Sprintf("Page already confirmed unsubscribe: %q", phrase)
	}

	if visible, err := page.AnyVisible(ctx, captchaSelectors); err == nil && visible {
		return emaildomain.StatusFailed, "Manual intervention required: captcha detected"
	}
	if visible, err := page.AnyVisible(ctx, loginSelectors); err == nil && visible {
		return emaildomain.StatusFailed, "Manual intervention required: login required"
	}

	if err := page.PrepareForm(ctx, senderAddress(email.From)); err != nil {
		log.Printf("[UnsubscribeWorker] Form preparation failed for %s: %v", email.UnsubscribeURL, err)
	}

	for _, target := range clickTargets {
		clicked, err := page.ClickFirst(ctx, target)
		if errors.Is(err, browser.ErrPageClosed) {
			// Some pages close themselves once the action lands.
			return emaildomain.StatusSuccess, fmt.Sprintf("Page closed after clicking %q", target.Name)
		}
		if err != nil {
			log.Printf("[UnsubscribeWorker] Click %q failed: %v", target.Name, err)
			continue
		}
		if !clicked {
			continue
		}

		p.settle()
		confirmed, err := page.ClickFirst(ctx, confirmTarget)
		if errors.Is(err, browser.ErrPageClosed) {
			return emaildomain.StatusSuccess, fmt.Sprintf("Page closed after confirming %q", target.Name)
		}
		if confirmed {
			p.settle()
		}
		return emaildomain.StatusSuccess, fmt.Sprintf("Clicked %q", target.Name)
	}

	if phrase, ok := p.findSuccessPhrase(ctx, page); ok {
		return emaildomain.StatusSuccess, fmt.Sprintf("Page confirmed unsubscribe: %q", phrase)
	}
	return emaildomain.StatusFailed, "No unsubscribe control found on page"
}

func (p *UnsubscribeProcessor) findSuccessPhrase(ctx context.Context, page browser.Page) (string, bool) {
	text, err := page.BodyText(ctx)
	if err != nil {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, phrase := range successPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func (p *UnsubscribeProcessor) settle() {
	if p.settleDelay > 0 {
		time.Sleep(p.settleDelay)
	}
}

// mailtoAddress extracts the bare address from a mailto value, dropping any
// scheme prefix and query parameters.
func mailtoAddress(value string) string {
	addr := strings.TrimPrefix(value, "mailto:")
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	return addr
}

// senderAddress extracts the bare address from a From header like
// "Name <a@b.com>".
func senderAddress(from string) string {
	if parsed, err := mail.ParseAddress(from); err == nil {
		return parsed.Address
	}
	return from
}
