package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

const (
	classifyContentLimit = 1000
	analyzeContentLimit  = 2000
	summaryFallbackLimit = 100
)

// Classify asks the model to place the email into one of the user's categories.
// On any provider failure, malformed response, or a category name that does not
// exist, it falls back to the first category with low confidence. It never
// invents a category and never returns an error.
func (c *Client) Classify(ctx context.Context, email EmailContent, categories []CategoryOption) Classification {
	if len(categories) == 0 {
		return Classification{CategoryName: "Uncategorized", Confidence: 0}
	}

	var list strings.Builder
	for i, cat := range categories {
		desc := cat.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&list, "%d. %s: %s\n", i+1, cat.Name, desc)
	}

	system := `You are an email classification assistant. Classify emails into one of the provided categories. Respond ONLY with valid JSON in this exact format: {"categoryName": "Category Name", "confidence": 0.95}`
	user := fmt.Sprintf("Categories:\n%s\nEmail to classify:\n%s\n\nClassify this email into the most appropriate category. Return JSON only.",
		list.String(), renderContent(email, classifyContentLimit))

	response, err := c.complete(ctx, system, user, 0.2, 100)
	if err != nil {
		log.Printf("[AI] Classification error: %v", err)
		return Classification{CategoryName: categories[0].Name, Confidence: 0.3}
	}

	var parsed Classification
	if err := json.Unmarshal([]byte(stripFences(response)), &parsed); err != nil {
		log.Printf("[AI] Classification returned malformed JSON: %v", err)
		return Classification{CategoryName: categories[0].Name, Confidence: 0.3}
	}

	for _, cat := range categories {
		if cat.Name == parsed.CategoryName {
			return parsed
		}
	}
	return Classification{CategoryName: categories[0].Name, Confidence: 0.5}
}

// Analyze asks the model for a short summary plus any unsubscribe targets it can
// spot. Provider failures or malformed responses collapse to a snippet-derived
// summary with no unsubscribe fields; the deterministic header/HTML extraction
// downstream covers the rest.
func (c *Client) Analyze(ctx context.Context, email EmailContent) Analysis {
	system := `You are an email analysis assistant. Summarize emails in 1-3 clear, concise sentences, and extract unsubscribe information if present. Respond ONLY with valid JSON in this exact format: {"summary": "...", "unsubscribeUrl": "", "unsubscribeMailto": ""}. Leave unsubscribe fields empty when the email has none.`
	user := fmt.Sprintf("Analyze this email:\n\n%s", renderContent(email, analyzeContentLimit))

	response, err := c.complete(ctx, system, user, 0.3, 300)
	if err != nil {
		log.Printf("[AI] Analysis error: %v", err)
		return Analysis{Summary: fallbackSummary(email)}
	}

	var parsed Analysis
	if err := json.Unmarshal([]byte(stripFences(response)), &parsed); err != nil {
		log.Printf("[AI] Analysis returned malformed JSON: %v", err)
		return Analysis{Summary: fallbackSummary(email)}
	}

	parsed.Summary = strings.TrimSpace(parsed.Summary)
	if parsed.Summary == "" {
		parsed.Summary = fallbackSummary(email)
	}
	return parsed
}

func renderContent(email EmailContent, limit int) string {
	subject := email.Subject
	if subject == "" {
		subject = "No subject"
	}
	from := email.From
	if from == "" {
		from = "Unknown"
	}

	body := email.Text
	if body == "" {
		body = email.HTML
	}
	if body == "" {
		body = email.Snippet
	}

	return fmt.Sprintf("Subject: %s\nFrom: %s\nContent: %s", subject, from, truncate(body, limit))
}

func fallbackSummary(email EmailContent) string {
	if email.Snippet != "" {
		return truncate(email.Snippet, summaryFallbackLimit)
	}
	return "No summary available"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// stripFences removes a markdown code fence some models wrap JSON answers in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
