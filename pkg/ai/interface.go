package ai

import "context"

// EmailContent is the slice of a message handed to the AI contracts.
type EmailContent struct {
	Subject string
	From    string
	Text    string
	HTML    string
	Snippet string
}

// CategoryOption is one classification candidate.
type CategoryOption struct {
	Name        string
	Description string
}

// Classification is the result of classifying an email into a user category.
type Classification struct {
	CategoryName string  `json:"categoryName"`
	Confidence   float64 `json:"confidence"`
}

// Analysis is the result of summarizing an email and hunting for unsubscribe
// targets.
type Analysis struct {
	Summary           string `json:"summary"`
	UnsubscribeURL    string `json:"unsubscribeUrl"`
	UnsubscribeMailto string `json:"unsubscribeMailto"`
}

// Service is the AI completion surface the pipeline consumes. Implementations
// never propagate provider failures: malformed or missing responses collapse to
// deterministic fallback values so callers need no error handling.
type Service interface {
	Classify(ctx context.Context, email EmailContent, categories []CategoryOption) Classification
	Analyze(ctx context.Context, email EmailContent) Analysis
}
