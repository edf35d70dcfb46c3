// Package capture loads a market page in a headless browser and harvests
// the JSON network responses the page makes while rendering.
package capture

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// marketURLPattern selects responses whose URL looks order-book related.
// Everything else the page loads (assets, analytics) is ignored.
var marketURLPattern = regexp.MustCompile(`(?i)(orderbook|order-book|book|orders|bids?|buy)`)

// Options tune the browser session.
type Options struct {
	Headless    bool
	PageTimeout time.Duration
	SettleDelay time.Duration
}

// Capturer drives one Chrome tab per Capture call.
type Capturer struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Capturer.
func New(opts Options, logger zerolog.Logger) *Capturer {
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 60 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 4500 * time.Millisecond
	}
	return &Capturer{opts: opts, logger: logger.With().Str("component", "capture").Logger()}
}

// Capture navigates to pageURL, waits for the page's XHR traffic to settle,
// and returns the bodies of JSON responses with market-looking URLs. Bodies
// that cannot be fetched back from the browser are skipped.
func (c *Capturer) Capture(ctx context.Context, pageURL string) ([]string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if !c.opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	actx, acancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer acancel()

	// Route chromedp's own logging away from stdout; zerolog owns output.
	cctx, cancel := chromedp.NewContext(actx,
		chromedp.WithLogf(func(string, ...any) {}),
		chromedp.WithDebugf(func(string, ...any) {}),
		chromedp.WithErrorf(func(string, ...any) {}),
	)
	defer cancel()

	cctx, tcancel := context.WithTimeout(cctx, c.opts.PageTimeout)
	defer tcancel()

	var mu sync.Mutex
	var hits []network.RequestID
	chromedp.ListenTarget(cctx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if !strings.Contains(strings.ToLower(resp.Response.MimeType), "json") {
			return
		}
		if !marketURLPattern.MatchString(resp.Response.URL) {
			return
		}
		mu.Lock()
		hits = append(hits, resp.RequestID)
		mu.Unlock()
	})

	err := chromedp.Run(cctx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(c.opts.SettleDelay),
	)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	ids := make([]network.RequestID, len(hits))
	copy(ids, hits)
	mu.Unlock()

	var payloads []string
	for _, id := range ids {
		reqID := id
		var body []byte
		fetchErr := chromedp.Run(cctx, chromedp.ActionFunc(func(ctx context.Context) error {
			b, err := network.GetResponseBody(reqID).Do(ctx)
			if err != nil {
				return err
			}
			body = b
			return nil
		}))
		if fetchErr != nil {
			c.logger.Debug().Err(fetchErr).Str("url", pageURL).Msg("response body unavailable")
			continue
		}
		payloads = append(payloads, string(body))
	}

	c.logger.Debug().Str("url", pageURL).
		Int("matched", len(ids)).
		Int("captured", len(payloads)).
		Msg("network snapshot complete")

	return payloads, nil
}
