package ai

import (
	"context"
	"errors"
	"testing"
)

func fixedCompletion(response string, err error) completeFunc {
	return func(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
		return response, err
	}
}

var testCategories = []CategoryOption{
	{Name: "Newsletters", Description: "Recurring mailing lists"},
	{Name: "Receipts", Description: "Purchase confirmations"},
}

func TestClassifyValidResponse(t *testing.T) {
	c := &Client{complete: fixedCompletion(`{"categoryName": "Receipts", "confidence": 0.92}`, nil)}

	got := c.Classify(context.Background(), EmailContent{Subject: "Your order"}, testCategories)
	if got.CategoryName != "Receipts" || got.Confidence != 0.92 {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClassifyFencedResponse(t *testing.T) {
	c := &Client{complete: fixedCompletion("```json\n{\"categoryName\": \"Newsletters\", \"confidence\": 0.8}\n```", nil)}

	got := c.Classify(context.Background(), EmailContent{}, testCategories)
	if got.CategoryName != "Newsletters" {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClassifyFallsBackDeterministically(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "completion error", err: errors.New("rate limited")},
		{name: "invalid JSON", response: "Sure! This looks like a newsletter."},
		{name: "unknown category", response: `{"categoryName": "Spam", "confidence": 0.99}`},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{complete: fixedCompletion(tc.response, tc.err)}
			got := c.Classify(context.Background(), EmailContent{}, testCategories)
			if got.CategoryName != testCategories[0].Name {
				t.Errorf("expected fallback to first category, got %q", got.CategoryName)
			}
			if got.Confidence > 0.5 {
				t.Errorf("fallback confidence must be <= 0.5, got %v", got.Confidence)
			}
		})
	}
}

func TestClassifyNoCategories(t *testing.T) {
	c := &Client{complete: fixedCompletion("", errors.New("should not be called"))}

	got := c.Classify(context.Background(), EmailContent{}, nil)
	if got.CategoryName != "Uncategorized" || got.Confidence != 0 {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestAnalyzeValidResponse(t *testing.T) {
	c := &Client{complete: fixedCompletion(
		`{"summary": "Weekly newsletter with offers.", "unsubscribeUrl": "https://ex.com/u", "unsubscribeMailto": ""}`, nil)}

	got := c.Analyze(context.Background(), EmailContent{})
	if got.Summary != "Weekly newsletter with offers." {
		t.Errorf("summary: got %q", got.Summary)
	}
	if got.UnsubscribeURL != "https://ex.com/u" {
		t.Errorf("url: got %q", got.UnsubscribeURL)
	}
}

func TestAnalyzeFallsBackToSnippet(t *testing.T) {
	email := EmailContent{Snippet: "Big sale this weekend only"}

	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "completion error", err: errors.New("timeout")},
		{name: "malformed response", response: "here is the summary you asked for"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{complete: fixedCompletion(tc.response, tc.err)}
			got := c.Analyze(context.Background(), email)
			if got.Summary != email.Snippet {
				t.Errorf("expected snippet fallback, got %q", got.Summary)
			}
			if got.UnsubscribeURL != "" || got.UnsubscribeMailto != "" {
				t.Errorf("fallback must leave unsubscribe fields empty: %+v", got)
			}
		})
	}
}
