package worker

import (
	"context"
	"testing"

	accountdomain "email-sorter-backend/internal/account/domain"
	emaildomain "email-sorter-backend/internal/email/domain"
	"email-sorter-backend/internal/queue"
	"email-sorter-backend/pkg/ai"
	"email-sorter-backend/pkg/browser"
	"email-sorter-backend/pkg/crypto"
	"email-sorter-backend/pkg/gmail"
)

// 32-byte key as 64 hex chars, fixed for deterministic test setup.
const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func encryptForTest(t *testing.T, plaintext string) string {
	t.Helper()
	enc, err := crypto.EncryptToken(plaintext, testKey)
	if err != nil {
		t.Fatalf("EncryptToken() error = %v", err)
	}
	return enc
}

func testAccount(t *testing.T, id, historyID string) *accountdomain.ConnectedAccount {
	t.Helper()
	return &accountdomain.ConnectedAccount{
		ID:              id,
		UserID:          "user-1",
		Email:           "inbox@example.com",
		AccessTokenEnc:  encryptForTest(t, "access-token"),
		RefreshTokenEnc: encryptForTest(t, "refresh-token"),
		HistoryID:       historyID,
	}
}

type fakeAccountRepo struct {
	accounts       map[string]*accountdomain.ConnectedAccount
	findErr        error
	historyUpdates []string
	tokenUpdates   int
}

func (f *fakeAccountRepo) FindByID(id string) (*accountdomain.ConnectedAccount, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.accounts[id], nil
}

func (f *fakeAccountRepo) FindAll() ([]accountdomain.ConnectedAccount, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]accountdomain.ConnectedAccount, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdateHistoryID(id, historyID string) error {
	f.historyUpdates = append(f.historyUpdates, historyID)
	return nil
}

func (f *fakeAccountRepo) UpdateTokens(id, accessTokenEnc, refreshTokenEnc string) error {
	f.tokenUpdates++
	return nil
}

type fakeCategoryRepo struct {
	categories []accountdomain.Category
	err        error
}

func (f *fakeCategoryRepo) FindByUserID(userID string) ([]accountdomain.Category, error) {
	return f.categories, f.err
}

type fakeEmailRepo struct {
	byID      map[string]*emaildomain.Email
	byGmailID map[string]*emaildomain.Email
	created   []*emaildomain.Email
	findErr   error
	createErr error
}

func (f *fakeEmailRepo) FindByID(id string) (*emaildomain.Email, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byID[id], nil
}

func (f *fakeEmailRepo) FindByGmailID(gmailID string) (*emaildomain.Email, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byGmailID[gmailID], nil
}

func (f *fakeEmailRepo) Create(email *emaildomain.Email) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, email)
	return nil
}

type fakeAttemptRepo struct {
	created   []*emaildomain.UnsubscribeAttempt
	createErr error
}

func (f *fakeAttemptRepo) Create(attempt *emaildomain.UnsubscribeAttempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, attempt)
	return nil
}

func (f *fakeAttemptRepo) FindByEmailID(emailID string) ([]emaildomain.UnsubscribeAttempt, error) {
	var out []emaildomain.UnsubscribeAttempt
	for _, a := range f.created {
		if a.EmailID == emailID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeTransport struct {
	listIDs      []string
	listErr      error
	listQueries  []string
	history      gmail.HistoryPage
	historyErr   error
	historyCalls []string
	messages     map[string]*gmail.ParsedMessage
	getErr       map[string]error
	archived     []string
	archiveErr   map[string]error
	trashed      []string
	sent         []string
	sendErr      error
	profileID    string
	profileErr   error
}

func (f *fakeTransport) ListMessages(ctx context.Context, creds gmail.Credentials, query string, maxResults int64) ([]string, error) {
	f.listQueries = append(f.listQueries, query)
	return f.listIDs, f.listErr
}

func (f *fakeTransport) GetMessage(ctx context.Context, creds gmail.Credentials, id string) (*gmail.ParsedMessage, error) {
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	return f.messages[id], nil
}

func (f *fakeTransport) ListHistory(ctx context.Context, creds gmail.Credentials, startHistoryID string) (gmail.HistoryPage, error) {
	f.historyCalls = append(f.historyCalls, startHistoryID)
	return f.history, f.historyErr
}

func (f *fakeTransport) ProfileHistoryID(ctx context.Context, creds gmail.Credentials) (string, error) {
	return f.profileID, f.profileErr
}

func (f *fakeTransport) ModifyLabels(ctx context.Context, creds gmail.Credentials, id string, addLabelIDs, removeLabelIDs []string) error {
	return nil
}

func (f *fakeTransport) Archive(ctx context.Context, creds gmail.Credentials, id string) error {
	if err := f.archiveErr[id]; err != nil {
		return err
	}
	f.archived = append(f.archived, id)
	return nil
}

func (f *fakeTransport) Trash(ctx context.Context, creds gmail.Credentials, id string) error {
	f.trashed = append(f.trashed, id)
	return nil
}

func (f *fakeTransport) Send(ctx context.Context, creds gmail.Credentials, raw string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, raw)
	return nil
}

type fakeAI struct {
	classification ai.Classification
	analysis       ai.Analysis
	classifyCalls  int
}

func (f *fakeAI) Classify(ctx context.Context, email ai.EmailContent, categories []ai.CategoryOption) ai.Classification {
	f.classifyCalls++
	return f.classification
}

func (f *fakeAI) Analyze(ctx context.Context, email ai.EmailContent) ai.Analysis {
	return f.analysis
}

type fakePage struct {
	navigated  []string
	navErr     error
	bodyText   string
	bodyErr    error
	visible    map[string]bool
	prepared   []string
	prepareErr error
	clicks     map[string]bool
	clickErr   map[string]error
	clickOrder []string
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakePage) BodyText(ctx context.Context) (string, error) {
	return f.bodyText, f.bodyErr
}

func (f *fakePage) AnyVisible(ctx context.Context, selectors []string) (bool, error) {
	for _, sel := range selectors {
		if f.visible[sel] {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePage) PrepareForm(ctx context.Context, emailAddress string) error {
	f.prepared = append(f.prepared, emailAddress)
	return f.prepareErr
}

func (f *fakePage) ClickFirst(ctx context.Context, pattern browser.Pattern) (bool, error) {
	f.clickOrder = append(f.clickOrder, pattern.Name)
	if err := f.clickErr[pattern.Name]; err != nil {
		return false, err
	}
	return f.clicks[pattern.Name], nil
}

type fakeEnqueuer struct {
	jobs    []queue.SyncJob
	failFor map[string]error
}

func (f *fakeEnqueuer) EnqueueSync(job queue.SyncJob) error {
	if err := f.failFor[job.AccountID]; err != nil {
		return err
	}
	f.jobs = append(f.jobs, job)
	return nil
}
