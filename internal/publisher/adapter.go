package publisher

import (
	"context"
	"time"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// Adapter is the capability set every platform implementation provides.
// Adapters own the selectors and page knowledge; the lifecycle driver owns
// sequencing, retry policy and credential handling.
type Adapter interface {
	PlatformName() string

	// CheckLoggedIn is a short non-blocking DOM probe. It decides both
	// whether a redundant login can be skipped and whether the driver must
	// wait for a manual one.
	CheckLoggedIn(ctx context.Context, tab ports.Tab) bool

	// WaitForLogin blocks until CheckLoggedIn would succeed or the timeout
	// expires. Only called when not already authenticated.
	WaitForLogin(ctx context.Context, tab ports.Tab, timeout time.Duration) bool

	// FillContent and FillMetadata populate platform-specific fields.
	// Metadata failures on non-essential fields should be wrapped with
	// domain.Advisory so the publish continues.
	FillContent(ctx context.Context, tab ports.Tab, article domain.Article) error
	FillMetadata(ctx context.Context, tab ports.Tab, article domain.Article) error

	// Submit triggers publication. Anti-automation challenges that are
	// worth another bounded attempt should be wrapped with domain.Retryable.
	Submit(ctx context.Context, tab ports.Tab) error

	// Verify confirms submission best-effort (URL change, success banner).
	// False means "could not confirm", not "failed".
	Verify(ctx context.Context, tab ports.Tab, timeout time.Duration) bool
}
