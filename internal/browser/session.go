package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/chromedp/chromedp"

	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/pkg/logger"
)

const preflightTimeout = 5 * time.Second

// Session owns exactly one automation-controllable browser process for the
// lifetime of a run. Tabs are opened per platform publish; the process is
// shared.
type Session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	logger        *slog.Logger
}

var _ ports.BrowserSession = (*Session)(nil)

// Connect either attaches to an already-running browser at the configured
// debug address or spawns a fresh instance. Attach failures surface as
// browser_unreachable with remediation text, distinct from any login or
// selector error.
func Connect(ctx context.Context, cfg config.BrowserConfig, log *slog.Logger) (*Session, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)

	if cfg.Attach() {
		if err := preflight(cfg.DebugAddress); err != nil {
			return nil, domain.NewTaskError(domain.KindBrowserUnreachable, "connect",
				fmt.Errorf("debug address %s is not reachable: %w\n%s", cfg.DebugAddress, err, remediation(cfg.DebugAddress)))
		}
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx,
			"http://"+cfg.DebugAddress, chromedp.NoModifyURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.IsHeadless()),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-popup-blocking", true),
			chromedp.Flag("disable-notifications", true),
			chromedp.Flag("start-maximized", true),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}

	cdpLog := logger.New("chromedp")
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(cdpLog.Printf),
		chromedp.WithErrorf(cdpLog.Printf),
	)

	// Materialize the browser now so a dead endpoint fails the run up
	// front instead of on the first task.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, domain.NewTaskError(domain.KindBrowserUnreachable, "connect",
			fmt.Errorf("start browser session: %w", err))
	}

	if log != nil {
		log.Info("browser session ready", "attach", cfg.Attach(), "address", cfg.DebugAddress)
	}

	return &Session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        log,
	}, nil
}

// OpenTab creates a new tab in the shared browser.
func (s *Session) OpenTab() (ports.Tab, error) {
	if s.browserCtx == nil || s.browserCtx.Err() != nil {
		return nil, domain.NewTaskError(domain.KindBrowserUnreachable, "open_tab",
			fmt.Errorf("browser session is gone"))
	}

	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	return &Tab{ctx: tabCtx, cancel: cancel, logger: s.logger}, nil
}

// Close tears the browser context down. When attached to an external
// browser this detaches without killing the operator's instance.
func (s *Session) Close() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// preflight dials the debug address so attach failures are caught with a
// short bounded timeout rather than a long CDP handshake.
func preflight(address string) error {
	conn, err := net.DialTimeout("tcp", address, preflightTimeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

func remediation(address string) string {
	return fmt.Sprintf(`no browser is listening on %s. Start one with remote debugging enabled, e.g.:
  google-chrome --remote-debugging-port=%s --user-data-dir=/tmp/chrome_automation about:blank
or disable attachExisting in the configuration to spawn a managed instance.`, address, portOf(address))
}

func portOf(address string) string {
	if _, port, err := net.SplitHostPort(address); err == nil {
		return port
	}
	return "9222"
}
