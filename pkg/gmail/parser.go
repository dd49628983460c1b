package gmail

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// ParsedMessage holds the structured fields the pipeline extracts from a raw
// Gmail message.
type ParsedMessage struct {
	ID              string
	ThreadID        string
	Snippet         string
	Subject         string
	From            string
	To              string
	Date            string
	ListUnsubscribe string
	Text            string
	HTML            string
	Headers         map[string]string
}

// ParseMessage flattens headers and body parts out of a full-format message.
func ParseMessage(msg *gmailapi.Message) *ParsedMessage {
	parsed := &ParsedMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Headers:  make(map[string]string),
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			parsed.Headers[strings.ToLower(header.Name)] = header.Value
		}
	}

	parsed.Subject = parsed.Headers["subject"]
	parsed.From = parsed.Headers["from"]
	parsed.To = parsed.Headers["to"]
	parsed.Date = parsed.Headers["date"]
	parsed.ListUnsubscribe = parsed.Headers["list-unsubscribe"]

	extractParts(msg.Payload, parsed)

	return parsed
}

// extractParts walks the MIME tree keeping the first text/plain and text/html
// bodies encountered.
func extractParts(payload *gmailapi.MessagePart, parsed *ParsedMessage) {
	if payload == nil {
		return
	}

	if payload.Body != nil && payload.Body.Data != "" {
		switch payload.MimeType {
		case "text/plain":
			if parsed.Text == "" {
				parsed.Text = decodeBody(payload.Body.Data)
			}
		case "text/html":
			if parsed.HTML == "" {
				parsed.HTML = decodeBody(payload.Body.Data)
			}
		}
	}

	for _, part := range payload.Parts {
		extractParts(part, parsed)
	}
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail omits padding on some parts
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}
