package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback invoked when the OAuth token is refreshed
type TokenUpdateFunc func(token *oauth2.Token) error

// Credentials carries decrypted OAuth tokens for one request. OnRefresh, when set,
// is called so the caller can persist a refreshed access token.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	OnRefresh    TokenUpdateFunc
}

// HistoryPage is the result of one incremental fetch. NeedsFullSync is set when the
// start cursor is too old for Gmail to serve a delta.
type HistoryPage struct {
	AddedIDs      []string
	HistoryID     string
	NeedsFullSync bool
}

// Transport is the narrow Gmail surface the worker consumes.
type Transport interface {
	ListMessages(ctx context.Context, creds Credentials, query string, maxResults int64) ([]string, error)
	GetMessage(ctx context.Context, creds Credentials, id string) (*ParsedMessage, error)
	ListHistory(ctx context.Context, creds Credentials, startHistoryID string) (HistoryPage, error)
	ProfileHistoryID(ctx context.Context, creds Credentials) (string, error)
	ModifyLabels(ctx context.Context, creds Credentials, id string, addLabelIDs, removeLabelIDs []string) error
	Archive(ctx context.Context, creds Credentials, id string) error
	Trash(ctx context.Context, creds Credentials, id string) error
	Send(ctx context.Context, creds Credentials, raw string) error
}

type Service struct {
	clientID     string
	clientSecret string
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

// service creates a Gmail API client bound to the given credentials.
func (s *Service) service(ctx context.Context, creds Credentials) (*gmailapi.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if creds.RefreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: creds.OnRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmailapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// ListMessages returns message ids matching the query, capped at maxResults.
func (s *Service) ListMessages(ctx context.Context, creds Credentials, query string, maxResults int64) ([]string, error) {
	srv, err := s.service(ctx, creds)
	if err != nil {
		return nil, err
	}

	call := srv.Users.Messages.List("me").MaxResults(maxResults)
	if query != "" {
		call = call.Q(query)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMessage fetches one message in full format and parses it.
func (s *Service) GetMessage(ctx context.Context, creds Credentials, id string) (*ParsedMessage, error) {
	srv, err := s.service(ctx, creds)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", id).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %w", err)
	}
	return ParseMessage(msg), nil
}

// ListHistory fetches mailbox changes since startHistoryID. An unusable cursor
// (unparseable or rejected with 404) is reported as NeedsFullSync rather than an
// error so the caller can fall back to a windowed sync.
func (s *Service) ListHistory(ctx context.Context, creds Credentials, startHistoryID string) (HistoryPage, error) {
	start, err := strconv.ParseUint(startHistoryID, 10, 64)
	if err != nil {
		return HistoryPage{NeedsFullSync: true}, nil
	}

	srv, err := s.service(ctx, creds)
	if err != nil {
		return HistoryPage{}, err
	}

	resp, err := srv.Users.History.List("me").
		StartHistoryId(start).
		HistoryTypes("messageAdded").
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			// History ID is too old, need full sync
			return HistoryPage{NeedsFullSync: true}, nil
		}
		return HistoryPage{}, fmt.Errorf("unable to list history: %w", err)
	}

	page := HistoryPage{}
	for _, record := range resp.History {
		for _, added := range record.MessagesAdded {
			if added.Message != nil {
				page.AddedIDs = append(page.AddedIDs, added.Message.Id)
			}
		}
	}
	if resp.HistoryId != 0 {
		page.HistoryID = strconv.FormatUint(resp.HistoryId, 10)
	}
	return page, nil
}

// ProfileHistoryID returns the mailbox's current history id, used to seed the
// incremental cursor after a full sync.
func (s *Service) ProfileHistoryID(ctx context.Context, creds Credentials) (string, error) {
	srv, err := s.service(ctx, creds)
	if err != nil {
		return "", err
	}
	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", fmt.Errorf("unable to fetch profile: %w", err)
	}
	return strconv.FormatUint(profile.HistoryId, 10), nil
}

// ModifyLabels adds and/or removes labels from a message.
func (s *Service) ModifyLabels(ctx context.Context, creds Credentials, id string, addLabelIDs, removeLabelIDs []string) error {
	srv, err := s.service(ctx, creds)
	if err != nil {
		return err
	}

	req := &gmailapi.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}
	if _, err := srv.Users.Messages.Modify("me", id, req).Do(); err != nil {
		return fmt.Errorf("unable to modify message labels: %w", err)
	}
	return nil
}

// Archive removes the INBOX label from a message.
func (s *Service) Archive(ctx context.Context, creds Credentials, id string) error {
	return s.ModifyLabels(ctx, creds, id, nil, []string{"INBOX"})
}

// Trash moves a message to the trash.
func (s *Service) Trash(ctx context.Context, creds Credentials, id string) error {
	srv, err := s.service(ctx, creds)
	if err != nil {
		return err
	}
	if _, err := srv.Users.Messages.Trash("me", id).Do(); err != nil {
		return fmt.Errorf("unable to trash message: %w", err)
	}
	return nil
}

// Send sends a base64url-encoded RFC 2822 message.
func (s *Service) Send(ctx context.Context, creds Credentials, raw string) error {
	srv, err := s.service(ctx, creds)
	if err != nil {
		return err
	}
	if _, err := srv.Users.Messages.Send("me", &gmailapi.Message{Raw: raw}).Do(); err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}
	return nil
}

// BuildRawMessage encodes a minimal plaintext message for Send.
func BuildRawMessage(to, subject, body string) string {
	msg := strings.Join([]string{
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	return base64.RawURLEncoding.EncodeToString([]byte(msg))
}
