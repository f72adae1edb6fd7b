package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// Session is the slice of a browser tab the harvester needs. One session is
// driven serially; implementations need not be safe for concurrent use.
type Session interface {
	// Navigate loads url in the tab and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitPresent blocks until selector matches at least one node or ctx ends.
	WaitPresent(ctx context.Context, selector string) error
	// HTML returns the current document markup.
	HTML(ctx context.Context) (string, error)
	// Close releases the browser. Further calls are no-ops.
	Close() error
}

// Opener creates a new Session.
type Opener func(ctx context.Context) (Session, error)

// SessionError reports that the browser could not be launched.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("failed to open browser session: %v", e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// Options configures the Chrome launch.
type Options struct {
	ExecPath string
	Headless bool
	Logger   *log.Logger
}

// flags are the command-line switches passed to Chrome on top of chromedp's
// defaults. The automation switches are turned off so the catalog does not
// see navigator.webdriver and serve a challenge on every page.
func (o Options) flags() map[string]interface{} {
	return map[string]interface{}{
		"headless":               o.Headless,
		"start-maximized":        true,
		"disable-blink-features": "AutomationControlled",
		"enable-automation":      false,
		"disable-gpu":            true,
	}
}

func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range o.flags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}

// Opener returns an Opener launching Chrome with these options.
func (o Options) Opener() Opener {
	return func(ctx context.Context) (Session, error) {
		return Open(ctx, o)
	}
}

// Chrome is a Session backed by a chromedp-controlled browser.
type Chrome struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	closeOnce     sync.Once
	logger        *log.Logger
}

// Open launches Chrome and attaches to its first tab. The browser lives until
// Close, independent of ctx, which only bounds the launch itself.
func Open(ctx context.Context, o Options) (*Chrome, error) {
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), o.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        logger,
	}

	// The first Run allocates the browser and ties its process to the
	// context it is given, so it must be browserCtx itself.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.Close()
		return nil, &SessionError{Err: err}
	}

	logger.Info("browser session opened", "headless", o.Headless, "exec", o.ExecPath)
	return c, nil
}

// run executes actions on the tab, aborting when ctx is done.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.browserCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

func (c *Chrome) WaitPresent(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, chromedp.Evaluate(`document.documentElement.outerHTML`, &html))
	return html, err
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.browserCancel()
		c.allocCancel()
		c.logger.Info("browser session closed")
	})
	return nil
}
