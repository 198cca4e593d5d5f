package fetch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdpfetch "github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted posting accepted from a plain HTTP fetch.
// Shorter text usually means the page renders its content with JavaScript.
const MinContentLength = 500

// ShouldUseBrowser reports whether extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// HTMLRenderer returns the HTML of a page after scripts have run.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, url string) (string, error)
}

// Browser renders pages in headless Chrome. It requires Chrome or Chromium on the host.
// Every request the page makes, redirects included, must reach a public address
// unless AllowPrivateHosts is set.
type Browser struct {
	Timeout time.Duration
	// Settle is how long to wait after the body is ready for client-side rendering.
	Settle            time.Duration
	AllowPrivateHosts bool
}

// NewBrowser returns a Browser with the default timeout.
func NewBrowser() *Browser {
	return &Browser{Timeout: DefaultTimeout, Settle: 2 * time.Second}
}

// RenderHTML implements HTMLRenderer.
func (b *Browser) RenderHTML(ctx context.Context, url string) (string, error) {
	if !b.AllowPrivateHosts {
		if err := RequirePublicHost(ctx, url); err != nil {
			return "", err
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
	if p := os.Getenv("CHROME_PATH"); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	browserCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var actions []chromedp.Action
	if !b.AllowPrivateHosts {
		guardRequests(browserCtx)
		actions = append(actions, cdpfetch.Enable())
	}

	var html string
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.Settle),
		chromedp.OuterHTML("html", &html),
	)
	err := chromedp.Run(browserCtx, actions...)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}
	if html == "" {
		return "", &Error{URL: url, Message: fmt.Sprintf("browser returned an empty page after %s", b.Settle)}
	}
	return html, nil
}

// guardRequests pauses every request of the tab and fails those aimed at non-public addresses.
func guardRequests(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev any) {
		paused, ok := ev.(*cdpfetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			exec := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Target)
			if err := browserRequestAllowed(ctx, paused.Request.URL); err != nil {
				_ = cdpfetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(exec)
				return
			}
			_ = cdpfetch.ContinueRequest(paused.RequestID).Do(exec)
		}()
	})
}
