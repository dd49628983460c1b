package worker

import "email-sorter-backend/pkg/browser"

// successPhrases are body-text fragments that indicate the mailing list has
// already confirmed removal. Matched case-insensitively.
var successPhrases = []string{
	"successfully unsubscribed",
	"you have been unsubscribed",
	"you've been unsubscribed",
	"unsubscribed successfully",
	"unsubscribe successful",
	"removed from our list",
	"removed from the list",
	"removed from this list",
	"you will no longer receive",
	"your preferences have been updated",
	"subscription cancelled",
	"subscription canceled",
}

// captchaSelectors detect human-verification challenges. A visible match means
// the page cannot be automated.
var captchaSelectors = []string{
	"iframe[src*='recaptcha']",
	"iframe[src*='hcaptcha']",
	"iframe[src*='turnstile']",
	".g-recaptcha",
	".h-captcha",
	".cf-turnstile",
	"#captcha",
	"[class*='captcha']",
}

// loginSelectors detect login walls in front of the unsubscribe page.
var loginSelectors = []string{
	"input[type='password']",
	"form[action*='login']",
	"form[action*='signin']",
	"form[action*='sign-in']",
	"button[id*='login']",
	"button[class*='login']",
	"button[class*='signin']",
}

// clickTargets is the ordered candidate list for the unsubscribe control.
// Most specific first so a page offering both "unsubscribe from all" and a
// generic "submit" gets the stronger action.
var clickTargets = []browser.Pattern{
	{Name: "unsubscribe from all", Texts: []string{"unsubscribe from all", "unsubscribe all"}},
	{Name: "unsubscribe", Texts: []string{"unsubscribe"}, Attrs: []string{"unsubscribe"}},
	{Name: "opt out", Texts: []string{"opt out", "opt-out", "optout"}, Attrs: []string{"optout", "opt-out"}},
	{Name: "remove me", Texts: []string{"remove me", "remove from list", "stop receiving"}},
	{Name: "save preferences", Texts: []string{"save preferences", "update preferences"}},
	{Name: "confirm", Texts: []string{"confirm", "yes"}},
	{Name: "submit", Texts: []string{"submit"}, Attrs: []string{"submit"}},
}

// confirmTarget handles a confirmation step that appears after the primary
// unsubscribe control was clicked.
var confirmTarget = browser.Pattern{
	Name:  "confirmation",
	Texts: []string{"confirm", "yes", "unsubscribe"},
	Attrs: []string{"confirm"},
}
