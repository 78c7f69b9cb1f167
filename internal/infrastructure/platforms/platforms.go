// Package platforms holds the per-site adapters: the selectors and page
// choreography each publishing destination needs. Everything generic
// (lifecycle order, retries, credentials) lives in internal/publisher.
package platforms

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticlePublisher/internal/ports"
)

const loginPollInterval = 2 * time.Second

// probeSelector snapshots the page and reports whether the selector matches
// anything. Used for login probes and success banners, where waiting for
// visibility would block on elements that legitimately may not exist.
func probeSelector(tab ports.Tab, selector string, timeout time.Duration) bool {
	html, err := tab.OuterHTML(timeout)
	if err != nil {
		return false
	}
	return htmlHasSelector(html, selector)
}

func htmlHasSelector(html, selector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

// pollUntil re-runs probe until it succeeds, the timeout expires or the
// context is cancelled. The bounded poll is what keeps interactive-login
// waits interruptible.
func pollUntil(ctx context.Context, timeout time.Duration, probe func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if probe() {
			return true
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(loginPollInterval):
		}
	}
}
