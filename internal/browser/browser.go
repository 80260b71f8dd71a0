package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/chromedp/chromedp"

	"shoutdesk/internal/logging"
)

// defaultWaitTimeout bounds Navigate and AttachFile when the caller does not
// configure a budget. Page loads and file inputs that take longer than this
// are treated as failures rather than left to hang the batch.
const defaultWaitTimeout = 30 * time.Second

// Options controls browser startup.
type Options struct {
	Headless bool
	Logger   *slog.Logger

	// WaitTimeout caps how long Navigate and AttachFile wait for the page.
	// Zero means defaultWaitTimeout.
	WaitTimeout time.Duration
}

// Context owns a running browser and the single tab the workflow drives.
// Close releases both; the tab is never shared across concurrent workflows.
type Context struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	spoolDir    string
	waitTimeout time.Duration
	logger      *slog.Logger
}

// waitContext derives a deadline-bounded context for actions that wait on the
// page, so a selector that never materializes fails instead of hanging.
func (c *Context) waitContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := c.waitTimeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// NewContext launches a browser and opens one tab, verifying the browser
// actually starts before returning.
func NewContext(parent context.Context, opts Options) (*Context, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	spoolDir, err := os.MkdirTemp("", "shoutdesk-uploads-*")
	if err != nil {
		return nil, fmt.Errorf("create upload spool dir: %w", err)
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		_ = os.RemoveAll(spoolDir)
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Context{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		spoolDir:    spoolDir,
		waitTimeout: opts.WaitTimeout,
		logger:      logging.WithComponent(logger, "browser"),
	}, nil
}

// Page returns the workflow-facing driver for this context's tab.
func (c *Context) Page() *Page {
	return &Page{browser: c}
}

// Close shuts the tab and browser down and removes spooled upload files.
func (c *Context) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	if c.spoolDir != "" {
		if err := os.RemoveAll(c.spoolDir); err != nil {
			c.logger.Warn("failed to remove spool dir", logging.String("path", c.spoolDir), logging.Error(err))
		}
	}
}
