package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

const (
	actionBackoff   = 500 * time.Millisecond
	locationTimeout = 5 * time.Second
	reloadSettle    = 2 * time.Second
)

// Tab is one page in the shared browser. All element interaction runs
// against this tab's chromedp context with an explicit per-call timeout.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

var _ ports.Tab = (*Tab)(nil)

func (t *Tab) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads url and waits for the page load to settle.
func (t *Tab) Navigate(target string, timeout time.Duration) error {
	if err := t.run(timeout, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("navigate %s: %w", target, err)
	}
	return nil
}

// Reload refreshes the page, used after cookie injection so the browser
// applies the new jar.
func (t *Tab) Reload(timeout time.Duration) error {
	if err := t.run(timeout, chromedp.Reload(), chromedp.Sleep(reloadSettle)); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// WaitVisible blocks until the selector is visible or the timeout expires.
// It never retries; retry policy belongs to the caller so that transient
// layout races and genuinely absent elements stay distinguishable.
func (t *Tab) WaitVisible(selector string, timeout time.Duration) error {
	if err := t.run(timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

// SafeClick waits for the element once, then retries the click itself on
// interaction failures with a short fixed backoff. Reports success.
func (t *Tab) SafeClick(selector string, timeout time.Duration, retries int) bool {
	if err := t.WaitVisible(selector, timeout); err != nil {
		t.warn("element never appeared", "selector", selector, "error", err)
		return false
	}

	for attempt := 0; attempt <= retries; attempt++ {
		err := t.run(timeout, chromedp.Click(selector, chromedp.ByQuery))
		if err == nil {
			return true
		}
		t.warn("click failed", "selector", selector, "attempt", attempt+1, "error", err)
		if t.ctx.Err() != nil {
			return false
		}
		time.Sleep(actionBackoff)
	}
	return false
}

// SafeInput waits for the element once, then retries clearing and typing.
func (t *Tab) SafeInput(selector, text string, timeout time.Duration, retries int) bool {
	if err := t.WaitVisible(selector, timeout); err != nil {
		t.warn("input never appeared", "selector", selector, "error", err)
		return false
	}

	for attempt := 0; attempt <= retries; attempt++ {
		err := t.run(timeout,
			chromedp.Clear(selector, chromedp.ByQuery),
			chromedp.SendKeys(selector, text, chromedp.ByQuery),
		)
		if err == nil {
			return true
		}
		t.warn("input failed", "selector", selector, "attempt", attempt+1, "error", err)
		if t.ctx.Err() != nil {
			return false
		}
		time.Sleep(actionBackoff)
	}
	return false
}

// OuterHTML snapshots the full document for DOM probes.
func (t *Tab) OuterHTML(timeout time.Duration) (string, error) {
	var html string
	if err := t.run(timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot page: %w", err)
	}
	return html, nil
}

// Location returns the tab's current URL.
func (t *Tab) Location() (string, error) {
	var loc string
	if err := t.run(locationTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

type elementRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
	// Track is the width of the element's parent, the slide target.
	Track float64 `json:"track"`
}

// DragHorizontal drags the selected element to the right edge of its parent
// track, approximating a human slide: a fast first leg, then short jittered
// segments.
func (t *Tab) DragHorizontal(selector string, timeout time.Duration) error {
	if err := t.WaitVisible(selector, timeout); err != nil {
		return err
	}

	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		const r = el.getBoundingClientRect();
		const p = el.parentElement.getBoundingClientRect();
		return {x: r.x, y: r.y, w: r.width, h: r.height, track: p.width};
	})()`, selector)

	var rect elementRect
	if err := t.run(timeout, chromedp.Evaluate(expr, &rect)); err != nil {
		return fmt.Errorf("measure slider %s: %w", selector, err)
	}

	// Overshoot a little so the handle definitely reaches the end.
	distance := rect.Track - rect.W + 20
	startX := rect.X + rect.W/2
	startY := rect.Y + rect.H/2

	drag := chromedp.ActionFunc(func(ctx context.Context) error {
		press := input.DispatchMouseEvent(input.MousePressed, startX, startY).
			WithButton(input.Left).WithClickCount(1)
		if err := press.Do(ctx); err != nil {
			return err
		}
		time.Sleep(200 * time.Millisecond)

		firstLeg := distance * 0.8
		move := input.DispatchMouseEvent(input.MouseMoved, startX+firstLeg, startY).
			WithButton(input.Left)
		if err := move.Do(ctx); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)

		const segments = 3
		x := startX + firstLeg
		step := (distance - firstLeg) / segments
		for i := 0; i < segments; i++ {
			x += step + rand.Float64()*2
			y := startY + rand.Float64()*2 - 1
			move := input.DispatchMouseEvent(input.MouseMoved, x, y).
				WithButton(input.Left)
			if err := move.Do(ctx); err != nil {
				return err
			}
			time.Sleep(time.Duration(80+rand.Intn(70)) * time.Millisecond)
		}

		release := input.DispatchMouseEvent(input.MouseReleased, x, startY).
			WithButton(input.Left).WithClickCount(1)
		return release.Do(ctx)
	})

	if err := t.run(timeout, drag); err != nil {
		return fmt.Errorf("drag %s: %w", selector, err)
	}
	return nil
}

// InjectCookies filters the stored cookies against the tab's current domain,
// adds the matching ones individually (a single bad cookie is logged, not
// fatal) and reloads the page. Fields the browser rejects on injection,
// expiry above all, are stripped so restored cookies become session-scoped.
func (t *Tab) InjectCookies(cookies []domain.Cookie) (added, skipped int, err error) {
	loc, err := t.Location()
	if err != nil {
		return 0, 0, err
	}
	parsed, err := url.Parse(loc)
	if err != nil {
		return 0, 0, fmt.Errorf("parse location %s: %w", loc, err)
	}
	currentDomain := parsed.Hostname()

	matched, unmatched := FilterForDomain(cookies, currentDomain)
	skipped = len(unmatched)
	for _, c := range unmatched {
		t.debug("cookie domain mismatch", "cookie", c.Name, "domain", c.Domain, "current", currentDomain)
	}

	inject := chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range matched {
			path := c.Path
			if path == "" {
				path = "/"
			}
			setErr := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly).
				Do(ctx)
			if setErr != nil {
				t.warn("cookie injection failed", "cookie", c.Name, "error", setErr)
				skipped++
				continue
			}
			added++
		}
		return nil
	})

	if err := t.run(locationTimeout+reloadSettle, inject); err != nil {
		return added, skipped, fmt.Errorf("inject cookies: %w", err)
	}
	if err := t.Reload(locationTimeout + reloadSettle); err != nil {
		return added, skipped, err
	}

	t.debug("cookies injected", "added", added, "skipped", skipped)
	return added, skipped, nil
}

// Cookies snapshots the browser's current cookie jar.
func (t *Tab) Cookies() ([]domain.Cookie, error) {
	var out []domain.Cookie
	snapshot := chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		out = make([]domain.Cookie, 0, len(raw))
		for _, c := range raw {
			out = append(out, domain.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
				Expiry:   c.Expires,
			})
		}
		return nil
	})

	if err := t.run(locationTimeout, snapshot); err != nil {
		return nil, fmt.Errorf("extract cookies: %w", err)
	}
	return out, nil
}

// Close discards the tab. The browser stays up for the next task.
func (t *Tab) Close() {
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Tab) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

func (t *Tab) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
