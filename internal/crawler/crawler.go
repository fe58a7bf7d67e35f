package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Options configures the browser session
type Options struct {
	Width      int
	Height     int
	Timeout    time.Duration
	Headless   bool
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
}

// Browser wraps the Rod browser and the page being filled
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	logger  *zap.Logger
}

// Close cleans up browser resources
func (b *Browser) Close() {
	if b.page != nil {
		b.page.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
}

// Page returns the underlying Rod page
func (b *Browser) Page() *rod.Page {
	return b.page
}

// Open launches a browser, navigates to url and waits for the page and any
// client-side rendering to settle.
func Open(ctx context.Context, url string, opts Options, logger *zap.Logger) (*Browser, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("crawler")

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	browser, err := connect(l, func(u string) (*rod.Browser, error) {
		b := rod.New().ControlURL(u).Context(ctx)
		return b, b.Connect()
	})
	if err != nil {
		return nil, err
	}

	b := &Browser{browser: browser, logger: logger}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	b.page = page

	if opts.Width > 0 && opts.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	if err := b.Navigate(ctx, url, opts.Timeout); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// process is the launched browser executable.
type process interface {
	Launch() (string, error)
	Kill()
}

// connect launches the browser and dials its control URL. The process is
// killed when dialing fails so no orphan Chromium is left behind.
func connect(p process, dial func(controlURL string) (*rod.Browser, error)) (*rod.Browser, error) {
	u, err := p.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	b, err := dial(u)
	if err != nil {
		p.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return b, nil
}

// Navigate loads url in the current page and waits for it to settle.
func (b *Browser) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page := b.page.Context(ctx).Timeout(timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for %s to load: %w", url, err)
	}
	b.Settle(ctx)
	return nil
}

// Settle waits for network idle and, on single page apps, for form
// controls to render.
func (b *Browser) Settle(ctx context.Context) {
	page := b.page.Context(ctx)

	// Use timeout to avoid hanging on persistent connections (WebSockets, polling, etc.)
	page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()

	if detectSPA(page) {
		b.logger.Debug("single page app detected, waiting for form controls")
		waitForFormControls(page, 5*time.Second)
	}
}

// Info returns a summary of the current page.
func (b *Browser) Info(ctx context.Context) (*PageInfo, error) {
	page := b.page.Context(ctx)
	res, err := page.Eval(`() => ({
		url: window.location.href,
		title: document.title,
		forms: document.querySelectorAll('form').length,
		inputs: document.querySelectorAll('input, textarea, select').length
	})`)
	if err != nil {
		return nil, fmt.Errorf("failed to read page info: %w", err)
	}
	v := res.Value
	return &PageInfo{
		URL:    v.Get("url").String(),
		Title:  v.Get("title").String(),
		Forms:  v.Get("forms").Int(),
		Inputs: v.Get("inputs").Int(),
		IsSPA:  detectSPA(page),
	}, nil
}

// waitForFormControls polls until a visible form control appears or timeout
func waitForFormControls(page *rod.Page, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	checkInterval := 200 * time.Millisecond

	for time.Now().Before(deadline) {
		res, err := page.Eval(`() => {
			let visible = 0;
			document.querySelectorAll('input:not([type="hidden"]), textarea, select').forEach(el => {
				if (el.getClientRects().length > 0) visible++;
			});
			return visible;
		}`)
		if err != nil {
			return
		}
		if res.Value.Int() > 0 {
			// Found controls, wait a tiny bit more for any final renders
			time.Sleep(300 * time.Millisecond)
			return
		}

		time.Sleep(checkInterval)
	}
}

// detectSPA checks if the page is a Single Page Application
func detectSPA(page *rod.Page) bool {
	// Check for common SPA framework markers
	res, err := page.Eval(`() => {
		// React
		if (window.__REACT_DEVTOOLS_GLOBAL_HOOK__ || document.querySelector('[data-reactroot]') || document.querySelector('#__next')) return true;
		// Vue
		if (window.__VUE__ || document.querySelector('[data-v-app]')) return true;
		// Angular
		if (window.ng || document.querySelector('[ng-version]') || document.querySelector('app-root')) return true;
		// Svelte
		if (document.querySelector('[class*="svelte-"]')) return true;
		return false;
	}`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}
