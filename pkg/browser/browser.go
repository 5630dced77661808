// Package browser owns the Playwright lifecycle for a driver session: one
// Chromium instance, one context, one page pointed at the target site.
package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/fieldnote/obsmap/pkg/logging"
)

const (
	// DefaultViewportWidth is the initial browser viewport width.
	DefaultViewportWidth = 1440

	// DefaultViewportHeight is the initial browser viewport height.
	DefaultViewportHeight = 900

	// DefaultTimeout is the default page operation timeout.
	DefaultTimeout = 30 * time.Second
)

// Options configures a browser session.
type Options struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration
}

// Session is a live browser with a single page attached.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logging.Logger
}

// Launch installs Playwright if needed, starts it, and opens a Chromium
// page with the given options.
func Launch(opts Options, logger *logging.Logger) (*Session, error) {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	// Discard installer output so it doesn't interleave with our own logs.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	logger.Infof("browser session started (headless=%v)", opts.Headless)
	return &Session{
		pw:      pw,
		browser: browser,
		context: context,
		page:    page,
		logger:  logger,
	}, nil
}

// Page returns the session's page.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Navigate loads a URL and waits for the load event.
func (s *Session) Navigate(url string) error {
	s.logger.Infof("navigating to %s", url)
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Close tears the session down. Individual close failures are logged and
// the teardown continues; the first error is returned.
func (s *Session) Close() error {
	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		s.logger.Warnf("failed to close %s: %v", what, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if s.page != nil {
		record("page", s.page.Close())
	}
	if s.context != nil {
		record("context", s.context.Close())
	}
	if s.browser != nil {
		record("browser", s.browser.Close())
	}
	if s.pw != nil {
		record("playwright", s.pw.Stop())
	}
	return firstErr
}
