package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures one isolated browser session.
type Options struct {
	UserAgent         string
	Width             int
	Height            int
	DefaultTimeout    time.Duration
	NavigationTimeout time.Duration
}

// DefaultOptions mirrors a realistic desktop browser.
func DefaultOptions() Options {
	return Options{
		UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Width:             1280,
		Height:            720,
		DefaultTimeout:    45 * time.Second,
		NavigationTimeout: 30 * time.Second,
	}
}

// Session is a fresh headless Chrome context implementing Page.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    Options
}

// NewSession launches an isolated headless browser context.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		opts:    opts,
	}

	// Start the browser process eagerly so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return s, nil
}

// Close tears the browser session down. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ctx.Err() != nil {
		return ErrPageClosed
	}

	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	err := chromedp.Run(tctx, actions...)
	if err == nil {
		return nil
	}
	if s.ctx.Err() != nil || isClosedErr(err) {
		return ErrPageClosed
	}
	return err
}

func isClosedErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "session closed") ||
		strings.Contains(msg, "websocket") && strings.Contains(msg, "closed")
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, s.opts.NavigationTimeout, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNavigationTimeout
	}
	return err
}

func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	if err := s.run(ctx, s.opts.DefaultTimeout, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return text, nil
}

func (s *Session) AnyVisible(ctx context.Context, selectors []string) (bool, error) {
	arg, err := json.Marshal(selectors)
	if err != nil {
		return false, err
	}

	var found bool
	expr := "(" + anyVisibleScript + ")(" + string(arg) + ")"
	if err := s.run(ctx, s.opts.DefaultTimeout, chromedp.Evaluate(expr, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (s *Session) PrepareForm(ctx context.Context, emailAddress string) error {
	arg, err := json.Marshal(emailAddress)
	if err != nil {
		return err
	}

	var ignored bool
	expr := "(" + prepareFormScript + ")(" + string(arg) + ")"
	return s.run(ctx, s.opts.DefaultTimeout, chromedp.Evaluate(expr, &ignored))
}

func (s *Session) ClickFirst(ctx context.Context, pattern Pattern) (bool, error) {
	arg, err := json.Marshal(map[string][]string{
		"texts": pattern.Texts,
		"attrs": pattern.Attrs,
	})
	if err != nil {
		return false, err
	}

	var clicked bool
	expr := "(" + clickFirstScript + ")(" + string(arg) + ")"
	if err := s.run(ctx, s.opts.DefaultTimeout, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, err
	}
	return clicked, nil
}
