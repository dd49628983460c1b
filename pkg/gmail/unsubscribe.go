package gmail

import (
	"regexp"
	"strings"
)

// UnsubscribeInfo is the deterministic extraction result used when AI analysis
// finds no unsubscribe target.
type UnsubscribeInfo struct {
	URL    string
	Mailto string
}

var (
	mailtoHeaderRe = regexp.MustCompile(`<mailto:([^>]+)>`)
	urlHeaderRe    = regexp.MustCompile(`<(https?://[^>]+)>`)
	anchorRe       = regexp.MustCompile(`(?is)<a\s[^>]*?href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
)

// Keywords that mark a link as unsubscribe-intent in either its visible text or
// its target URL.
var unsubscribeKeywords = []string{
	"unsubscribe",
	"opt out",
	"opt-out",
	"optout",
	"remove",
	"stop receiving",
}

// ExtractUnsubscribeInfo parses the List-Unsubscribe header and, failing that,
// scans the HTML body for an unsubscribe link.
func ExtractUnsubscribeInfo(msg *ParsedMessage) UnsubscribeInfo {
	info := UnsubscribeInfo{}

	if msg.ListUnsubscribe != "" {
		if m := mailtoHeaderRe.FindStringSubmatch(msg.ListUnsubscribe); m != nil {
			info.Mailto = m[1]
		}
		if m := urlHeaderRe.FindStringSubmatch(msg.ListUnsubscribe); m != nil {
			info.URL = m[1]
		}
	}

	if info.URL == "" && msg.HTML != "" {
		info.URL = FindUnsubscribeLinkInHTML(msg.HTML)
	}

	return info
}

// FindUnsubscribeLinkInHTML scans anchor tags for unsubscribe-indicative keywords
// in the link text or href. Footer links are the usual home of the real
// unsubscribe target, so the last match in document order wins.
func FindUnsubscribeLinkInHTML(html string) string {
	if html == "" {
		return ""
	}

	var best string
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		href := m[1]
		text := strings.ToLower(tagRe.ReplaceAllString(m[2], " "))
		lowerHref := strings.ToLower(href)

		matched := false
		for _, kw := range unsubscribeKeywords {
			if strings.Contains(text, kw) || strings.Contains(lowerHref, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		url := decodeEntities(href)
		if strings.HasPrefix(url, "//") {
			url = "https:" + url
		}
		if strings.HasPrefix(url, "http") {
			best = url
		}
	}
	return best
}

func decodeEntities(s string) string {
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	return s
}
