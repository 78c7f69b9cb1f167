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

const (
	juejinAvatar        = ".user-dropdown .avatar"
	juejinTitleInput    = "input.title-input"
	juejinEditor        = ".bytemd-editor .CodeMirror textarea"
	juejinPublishButton = ".publish-popup-btn, button.publish-btn"
	juejinCategory      = ".category-list .item.active, .category-list .item"
	juejinTagInput      = ".tag-input input"
	juejinSummary       = ".summary-box textarea"
	juejinConfirm       = ".publish-panel button.primary"
	juejinSuccessBanner = ".publish-success, .result-success"
)

// Juejin publishes through the draft editor at juejin.cn.
type Juejin struct {
	cfg    config.PublishConfig
	logger *slog.Logger
}

var _ publisher.Adapter = (*Juejin)(nil)

// NewJuejin wires driver timeouts into the adapter.
func NewJuejin(cfg config.PublishConfig, logger *slog.Logger) *Juejin {
	return &Juejin{cfg: cfg, logger: logger}
}

func (j *Juejin) PlatformName() string { return "juejin" }

// CheckLoggedIn probes for the account avatar in the editor header.
func (j *Juejin) CheckLoggedIn(_ context.Context, tab ports.Tab) bool {
	return probeSelector(tab, juejinAvatar, j.cfg.ElementTimeout())
}

func (j *Juejin) WaitForLogin(ctx context.Context, tab ports.Tab, timeout time.Duration) bool {
	return pollUntil(ctx, timeout, func() bool {
		return probeSelector(tab, juejinAvatar, j.cfg.ElementTimeout())
	})
}

func (j *Juejin) FillContent(_ context.Context, tab ports.Tab, article domain.Article) error {
	if !tab.SafeInput(juejinTitleInput, article.Title, j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
		return fmt.Errorf("title input not fillable")
	}
	if !tab.SafeInput(juejinEditor, article.Body, j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
		return fmt.Errorf("editor not fillable")
	}
	return nil
}

// FillMetadata opens the publish panel, picks a category and fills tags and
// summary. Juejin insists on a category; tags and summary are advisory.
func (j *Juejin) FillMetadata(_ context.Context, tab ports.Tab, article domain.Article) error {
	if !tab.SafeClick(juejinPublishButton, j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
		return fmt.Errorf("publish panel did not open")
	}
	if !tab.SafeClick(juejinCategory, j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
		return fmt.Errorf("category not selectable")
	}

	var advisory []string
	for _, tag := range article.Tags {
		if !tab.SafeInput(juejinTagInput, tag+"\n", j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
			advisory = append(advisory, "tag "+tag)
			break
		}
	}
	summary := article.Description
	if summary == "" {
		summary = summarize(article.Body)
	}
	if !tab.SafeInput(juejinSummary, summary, j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
		advisory = append(advisory, "summary")
	}

	if len(advisory) > 0 {
		return domain.Advisory(fmt.Errorf("optional fields not filled: %s", strings.Join(advisory, ", ")))
	}
	return nil
}

func (j *Juejin) Submit(_ context.Context, tab ports.Tab) error {
	if !tab.SafeClick(juejinConfirm, j.cfg.ElementTimeout(), j.cfg.ActionRetries) {
		return fmt.Errorf("confirm button not clickable")
	}
	return nil
}

// Verify checks for the success banner or the redirect to the published
// post URL.
func (j *Juejin) Verify(_ context.Context, tab ports.Tab, timeout time.Duration) bool {
	if probeSelector(tab, juejinSuccessBanner, timeout) {
		return true
	}
	loc, err := tab.Location()
	if err != nil {
		return false
	}
	return strings.Contains(loc, "/post/")
}

// summarize trims the body into a panel-sized abstract. Juejin rejects an
// empty summary field.
func summarize(body string) string {
	const maxRunes = 100
	text := strings.Join(strings.Fields(strings.ReplaceAll(body, "#", "")), " ")
	runes := []rune(text)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return text
}
