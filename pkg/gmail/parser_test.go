package gmail

import (
	"encoding/base64"
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseMessage(t *testing.T) {
	msg := &gmailapi.Message{
		Id:       "msg-1",
		ThreadId: "thread-1",
		Snippet:  "Weekly deals inside",
		Payload: &gmailapi.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "Subject", Value: "Weekly deals"},
				{Name: "From", Value: "Deals <deals@shop.example>"},
				{Name: "Date", Value: "Mon, 02 Jan 2006 15:04:05 -0700"},
				{Name: "List-Unsubscribe", Value: "<https://shop.example/unsub>, <mailto:unsub@shop.example>"},
			},
			Parts: []*gmailapi.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmailapi.MessagePartBody{Data: b64url("plain body")},
				},
				{
					MimeType: "multipart/related",
					Parts: []*gmailapi.MessagePart{
						{
							MimeType: "text/html",
							Body:     &gmailapi.MessagePartBody{Data: b64url("<p>html body</p>")},
						},
					},
				},
			},
		},
	}

	parsed := ParseMessage(msg)

	if parsed.ID != "msg-1" || parsed.ThreadID != "thread-1" {
		t.Fatalf("unexpected ids: %+v", parsed)
	}
	if parsed.Subject != "Weekly deals" {
		t.Errorf("subject: got %q", parsed.Subject)
	}
	if parsed.From != "Deals <deals@shop.example>" {
		t.Errorf("from: got %q", parsed.From)
	}
	if parsed.Text != "plain body" {
		t.Errorf("text: got %q", parsed.Text)
	}
	if parsed.HTML != "<p>html body</p>" {
		t.Errorf("html: got %q", parsed.HTML)
	}
	if parsed.ListUnsubscribe == "" {
		t.Error("expected list-unsubscribe header")
	}
}

func TestParseMessageKeepsFirstBodyOfEachType(t *testing.T) {
	msg := &gmailapi.Message{
		Id: "msg-2",
		Payload: &gmailapi.MessagePart{
			Parts: []*gmailapi.MessagePart{
				{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: b64url("first")}},
				{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: b64url("second")}},
			},
		},
	}

	parsed := ParseMessage(msg)
	if parsed.Text != "first" {
		t.Fatalf("expected first text part, got %q", parsed.Text)
	}
}

func TestExtractUnsubscribeInfo(t *testing.T) {
	tests := []struct {
		name       string
		msg        *ParsedMessage
		wantURL    string
		wantMailto string
	}{
		{
			name:    "header with URL",
			msg:     &ParsedMessage{ListUnsubscribe: "<https://example.com/unsubscribe>"},
			wantURL: "https://example.com/unsubscribe",
		},
		{
			name:       "header with mailto",
			msg:        &ParsedMessage{ListUnsubscribe: "<mailto:unsubscribe@example.com>"},
			wantMailto: "unsubscribe@example.com",
		},
		{
			name:       "header with both",
			msg:        &ParsedMessage{ListUnsubscribe: "<https://example.com/unsub>, <mailto:unsub@example.com>"},
			wantURL:    "https://example.com/unsub",
			wantMailto: "unsub@example.com",
		},
		{
			name:    "html fallback",
			msg:     &ParsedMessage{HTML: `<a href="https://example.com/unsubscribe">Unsubscribe here</a>`},
			wantURL: "https://example.com/unsubscribe",
		},
		{
			name: "nothing found",
			msg:  &ParsedMessage{HTML: "<p>No links here</p>"},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			info := ExtractUnsubscribeInfo(tc.msg)
			if info.URL != tc.wantURL {
				t.Errorf("url: got %q want %q", info.URL, tc.wantURL)
			}
			if info.Mailto != tc.wantMailto {
				t.Errorf("mailto: got %q want %q", info.Mailto, tc.wantMailto)
			}
		})
	}
}

func TestFindUnsubscribeLinkInHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "link text match",
			html: `<a href="https://example.com/u">Unsubscribe</a>`,
			want: "https://example.com/u",
		},
		{
			name: "href match",
			html: `<a href="https://example.com/unsubscribe?id=1">click</a>`,
			want: "https://example.com/unsubscribe?id=1",
		},
		{
			name: "opt out text",
			html: `<a href="https://example.com/prefs">Opt out of these emails</a>`,
			want: "https://example.com/prefs",
		},
		{
			name: "prefers later match",
			html: `<a href="https://example.com/header-unsubscribe">unsubscribe</a>` +
				`<p>lots of content</p>` +
				`<a href="https://example.com/footer-unsubscribe">unsubscribe</a>`,
			want: "https://example.com/footer-unsubscribe",
		},
		{
			name: "decodes entities",
			html: `<a href="https://example.com/unsub?a=1&amp;b=2">stop receiving</a>`,
			want: "https://example.com/unsub?a=1&b=2",
		},
		{
			name: "protocol-relative",
			html: `<a href="//example.com/unsubscribe">unsubscribe</a>`,
			want: "https://example.com/unsubscribe",
		},
		{
			name: "no match",
			html: `<a href="https://example.com/shop">Shop now</a>`,
			want: "",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			if got := FindUnsubscribeLinkInHTML(tc.html); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
