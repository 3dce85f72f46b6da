package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Options bound a session's navigations. NavigationTimeout covers
// loading a page, SelectorTimeout covers waiting for a selector to
// become visible on the loaded page.
type Options struct {
	UserAgent         string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
}

// Session is one headless-browser instance. Browser processes are
// heavyweight; one session is acquired per retailer run and must be
// released with Close on every exit path.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	opts        Options
}

// NewSession launches a headless browser. The returned session is tied
// to parent: cancelling parent tears the browser down.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	if opts.NavigationTimeout == 0 {
		opts.NavigationTimeout = 60 * time.Second
	}
	if opts.SelectorTimeout == 0 {
		opts.SelectorTimeout = 15 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser process up front so a broken environment fails
	// the session acquisition, not the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		opts:        opts,
	}, nil
}

// Fetch navigates to pageURL, waits for waitSelector to become visible,
// and returns the rendered document HTML. Both phases are individually
// bounded; exceeding either fails this fetch only.
func (s *Session) Fetch(ctx context.Context, pageURL string, waitSelector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	navCtx, cancelNav := context.WithTimeout(s.ctx, s.opts.NavigationTimeout)
	defer cancelNav()

	if err := chromedp.Run(navCtx, chromedp.Navigate(pageURL)); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}

	waitCtx, cancelWait := context.WithTimeout(s.ctx, s.opts.SelectorTimeout)
	defer cancelWait()

	var html string
	err := chromedp.Run(waitCtx,
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("selector '%s' did not appear on %s: %w", waitSelector, pageURL, err)
	}

	return html, nil
}

// Close releases the browser process and all its resources.
func (s *Session) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}
