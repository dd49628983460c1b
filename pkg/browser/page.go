package browser

import (
	"context"
	"errors"
)

var (
	// ErrNavigationTimeout is returned when a page load exceeds the navigation
	// timeout. Callers may keep working with whatever rendered.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrPageClosed is returned when the page or browser went away mid-operation.
	ErrPageClosed = errors.New("page closed")
)

// Pattern describes an actionable control by substrings of its visible text and
// of its identifying attributes (id, class, name, value, aria-label). All
// substrings are matched case-insensitively.
type Pattern struct {
	Name  string
	Texts []string
	Attrs []string
}

// Page is the scriptable-page surface the unsubscribe automation drives. The
// chromedp session implements it; tests substitute a scripted fake.
type Page interface {
	// Navigate loads the url. A timeout is reported as ErrNavigationTimeout and
	// leaves the partially rendered page usable.
	Navigate(ctx context.Context, url string) error
	// BodyText returns the full visible text of the document body.
	BodyText(ctx context.Context) (string, error)
	// AnyVisible reports whether any element matching one of the CSS selectors
	// is rendered.
	AnyVisible(ctx context.Context, selectors []string) (bool, error)
	// PrepareForm best-effort fills unsubscribe form controls: empty email
	// inputs get emailAddress, reason selects get their first real option,
	// "unsubscribe from all" radios are chosen, subscription checkboxes are
	// unchecked, confirmation checkboxes checked, on-state toggles switched off.
	PrepareForm(ctx context.Context, emailAddress string) error
	// ClickFirst clicks the first visible control matching the pattern and
	// reports whether anything was clicked.
	ClickFirst(ctx context.Context, pattern Pattern) (bool, error)
}
