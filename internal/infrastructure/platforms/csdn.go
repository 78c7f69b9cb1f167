package platforms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/publisher"
)

// CSDN editor selectors. The title input only renders for a logged-in
// account, which is why it doubles as the login probe.
const (
	csdnTitleInput    = ".article-bar input.article-bar__title"
	csdnEditor        = ".editor .cledit-section .editor__inner"
	csdnPublishButton = ".article-bar button.btn-b-red"
	csdnTagInput      = ".mark_selection .tag__options input"
	csdnDescription   = ".desc-box textarea"
	csdnConfirmButton = ".modal__button-bar button.button--red"
	csdnSliderHint    = "span.nc-lang-cnt"
	csdnSliderHandle  = "#nc_1_n1z"
	csdnSuccessMarker = ".success-modal, .pass-status"
)

// CSDN publishes through the markdown editor at editor.csdn.net.
type CSDN struct {
	cfg    config.PublishConfig
	logger *slog.Logger
}

var _ publisher.Adapter = (*CSDN)(nil)

// NewCSDN wires driver timeouts into the adapter.
func NewCSDN(cfg config.PublishConfig, logger *slog.Logger) *CSDN {
	return &CSDN{cfg: cfg, logger: logger}
}

func (c *CSDN) PlatformName() string { return "csdn" }

// CheckLoggedIn probes for the title input without blocking on it.
func (c *CSDN) CheckLoggedIn(_ context.Context, tab ports.Tab) bool {
	return probeSelector(tab, ".article-bar input", c.cfg.ElementTimeout())
}

// WaitForLogin polls the same probe until the operator finishes the login.
func (c *CSDN) WaitForLogin(ctx context.Context, tab ports.Tab, timeout time.Duration) bool {
	return pollUntil(ctx, timeout, func() bool {
		return probeSelector(tab, ".article-bar input", c.cfg.ElementTimeout())
	})
}

// FillContent types the title and the markdown body into the editor.
func (c *CSDN) FillContent(_ context.Context, tab ports.Tab, article domain.Article) error {
	if !tab.SafeInput(csdnTitleInput, article.Title, c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
		return fmt.Errorf("title input not fillable")
	}
	if !tab.SafeInput(csdnEditor, article.Body, c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
		return fmt.Errorf("editor not fillable")
	}
	return nil
}

// FillMetadata opens the publish panel and fills tags and the summary.
// Both fields are optional on CSDN, so their failures are advisory.
func (c *CSDN) FillMetadata(_ context.Context, tab ports.Tab, article domain.Article) error {
	if !tab.SafeClick(csdnPublishButton, c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
		return fmt.Errorf("publish panel did not open")
	}

	var advisory []string
	for _, tag := range article.Tags {
		if !tab.SafeInput(csdnTagInput, tag+"\n", c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
			advisory = append(advisory, "tag "+tag)
			break
		}
	}
	if article.Description != "" {
		if !tab.SafeInput(csdnDescription, article.Description, c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
			advisory = append(advisory, "description")
		}
	}

	if len(advisory) > 0 {
		return domain.Advisory(fmt.Errorf("optional fields not filled: %s", strings.Join(advisory, ", ")))
	}
	return nil
}

// Submit confirms the publish panel. CSDN sometimes raises a slide-to-verify
// challenge here; a failed slide is retryable up to the driver's bound.
func (c *CSDN) Submit(_ context.Context, tab ports.Tab) error {
	if !tab.SafeClick(csdnConfirmButton, c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
		return fmt.Errorf("confirm button not clickable")
	}

	if probeSelector(tab, csdnSliderHint, c.cfg.ElementTimeout()) {
		c.logger.Info("slide-to-verify challenge detected", "platform", c.PlatformName())
		if err := tab.DragHorizontal(csdnSliderHandle, c.cfg.ElementTimeout()); err != nil {
			return domain.Retryable(fmt.Errorf("slider challenge: %w", err))
		}
		// The challenge swallows the click; confirm again once it is gone.
		if probeSelector(tab, csdnSliderHint, c.cfg.ElementTimeout()) {
			return domain.Retryable(fmt.Errorf("slider challenge still present after drag"))
		}
		if !tab.SafeClick(csdnConfirmButton, c.cfg.ElementTimeout(), c.cfg.ActionRetries) {
			return fmt.Errorf("confirm button not clickable after challenge")
		}
	}
	return nil
}

// Verify looks for the success modal or a redirect away from the editor.
func (c *CSDN) Verify(_ context.Context, tab ports.Tab, timeout time.Duration) bool {
	if probeSelector(tab, csdnSuccessMarker, timeout) {
		return true
	}
	loc, err := tab.Location()
	if err != nil {
		return false
	}
	return !strings.Contains(loc, "editor.csdn.net")
}
