package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

const navigateTimeout = 45 * time.Second

// DriverDeps wires the shared browser session and credential store into the
// lifecycle driver.
type DriverDeps struct {
	Session     ports.BrowserSession
	Credentials ports.CredentialStore
	Registry    *Registry
	Publish     config.PublishConfig
	Logger      *slog.Logger
}

// Driver runs the generic publish lifecycle every platform shares:
// open tab, restore credentials, authenticate, fill, submit, verify. The
// per-platform knowledge stays inside the resolved Adapter.
type Driver struct {
	session     ports.BrowserSession
	credentials ports.CredentialStore
	registry    *Registry
	cfg         config.PublishConfig
	logger      *slog.Logger
}

var _ ports.PublishDriver = (*Driver)(nil)

// NewDriver constructs the lifecycle driver.
func NewDriver(deps DriverDeps) *Driver {
	return &Driver{
		session:     deps.Session,
		credentials: deps.Credentials,
		registry:    deps.Registry,
		cfg:         deps.Publish,
		logger:      deps.Logger,
	}
}

// Publish drives one (article, platform) task through the state machine
// Pending -> SessionReady -> Authenticated -> ContentFilled ->
// MetadataFilled -> Submitted -> Verified/SubmittedUnverified, or Failed.
// Every outcome is returned as a result; nothing is silently dropped.
func (d *Driver) Publish(ctx context.Context, target domain.PlatformTarget, article domain.Article) domain.PublishResult {
	result := domain.PublishResult{
		ArticleID: article.ID,
		Article:   article.Title,
		Platform:  target.Name,
		Status:    domain.StatusPending,
	}

	adapter, err := d.registry.Resolve(target.Name)
	if err != nil {
		return d.fail(result, domain.NewTaskError(domain.KindUnknownPlatform, "resolve", err))
	}

	tab, err := d.session.OpenTab()
	if err != nil {
		return d.fail(result, err)
	}
	defer tab.Close()

	if err := d.prepareSession(tab, target); err != nil {
		return d.fail(result, err)
	}
	result.Status = domain.StatusSessionReady

	interactive, err := d.authenticate(ctx, adapter, tab)
	if err != nil {
		return d.fail(result, err)
	}
	result.Status = domain.StatusAuthenticated
	d.saveCookies(tab, target.Name, interactive)

	if err := adapter.FillContent(ctx, tab, article); err != nil {
		return d.fail(result, domain.NewTaskError(domain.KindOf(err), "fill_content", err))
	}
	result.Status = domain.StatusContentFilled

	if err := adapter.FillMetadata(ctx, tab, article); err != nil {
		if !domain.IsAdvisory(err) {
			return d.fail(result, domain.NewTaskError(domain.KindOf(err), "fill_metadata", err))
		}
		d.logger.Warn("metadata partially filled",
			"platform", target.Name, "article", article.Title, "error", err)
	}
	result.Status = domain.StatusMetadataFilled

	if err := d.submit(ctx, adapter, tab, target.Name); err != nil {
		return d.fail(result, domain.NewTaskError(domain.KindOf(err), "submit", err))
	}
	result.Status = domain.StatusSubmitted

	result.Success = true
	result.Timestamp = time.Now()
	if adapter.Verify(ctx, tab, d.cfg.ElementTimeout()) {
		result.Status = domain.StatusVerified
	} else {
		// The publish may well have succeeded; surface it distinctly so an
		// operator can check by hand instead of re-running blindly.
		result.Status = domain.StatusSubmittedUnverified
		result.ErrorKind = domain.KindVerificationAmbiguous
	}

	d.saveCookies(tab, target.Name, false)
	d.logger.Info("publish finished",
		"platform", target.Name, "article", article.Title, "status", result.Status)
	return result
}

// prepareSession opens the platform's entry page and restores any stored
// credentials. A corrupt credential file is treated the same as an absent
// one; the next successful login overwrites it.
func (d *Driver) prepareSession(tab ports.Tab, target domain.PlatformTarget) error {
	if err := tab.Navigate(target.EntryURL, navigateTimeout); err != nil {
		return domain.NewTaskError(domain.KindElementInteraction, "navigate", err)
	}

	stored, err := d.credentials.Load(target.Name)
	if err != nil {
		d.logger.Warn("stored credentials unreadable, treating as absent",
			"platform", target.Name, "error", err)
		return nil
	}
	if len(stored) == 0 {
		d.logger.Info("no stored credentials, manual login may be required",
			"platform", target.Name)
		return nil
	}

	added, skipped, err := tab.InjectCookies(stored)
	if err != nil {
		return domain.NewTaskError(domain.KindElementInteraction, "restore_credentials", err)
	}
	d.logger.Info("credentials restored",
		"platform", target.Name, "added", added, "skipped", skipped)
	return nil
}

// authenticate probes the login state and, when absent, blocks for an
// interactive login up to the configured wait. Returns whether the login
// was interactive.
func (d *Driver) authenticate(ctx context.Context, adapter Adapter, tab ports.Tab) (bool, error) {
	if adapter.CheckLoggedIn(ctx, tab) {
		return false, nil
	}

	d.logger.Info("not logged in, waiting for operator",
		"platform", adapter.PlatformName(), "timeout", d.cfg.LoginWait())
	if adapter.WaitForLogin(ctx, tab, d.cfg.LoginWait()) {
		return true, nil
	}

	return false, domain.NewTaskError(domain.KindLoginTimeout, "authenticate",
		fmt.Errorf("login not completed within %s", d.cfg.LoginWait()))
}

// saveCookies snapshots the live jar into the credential store. A login is
// exactly the event that invalidates previously stored cookies, so the
// post-login save is forced; the post-publish one may no-op.
func (d *Driver) saveCookies(tab ports.Tab, platform string, force bool) {
	jar, err := tab.Cookies()
	if err != nil {
		d.logger.Warn("cookie snapshot failed", "platform", platform, "error", err)
		return
	}
	wrote, err := d.credentials.Save(platform, jar, force)
	if err != nil {
		d.logger.Warn("credential save failed", "platform", platform, "error", err)
		return
	}
	if wrote {
		d.logger.Info("credentials saved", "platform", platform, "cookies", len(jar))
	}
}

// submit retries the adapter's submit step up to the configured bound while
// it keeps failing on a retryable challenge. Attempt N+1 only starts after
// attempt N's definitive failure.
func (d *Driver) submit(ctx context.Context, adapter Adapter, tab ports.Tab, platform string) error {
	attempts := d.cfg.ChallengeRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = adapter.Submit(ctx, tab)
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) {
			return err
		}
		d.logger.Warn("submit challenge failed",
			"platform", platform, "attempt", attempt, "of", attempts, "error", err)
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (d *Driver) fail(result domain.PublishResult, err error) domain.PublishResult {
	result.Status = domain.StatusFailed
	result.Success = false
	result.ErrorKind = domain.KindOf(err)
	result.Error = err.Error()
	result.Timestamp = time.Now()
	d.logger.Error("publish failed",
		"platform", result.Platform, "article", result.Article,
		"kind", result.ErrorKind, "error", err)
	return result
}
