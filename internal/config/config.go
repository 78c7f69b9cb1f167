package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ArticlePublisher/internal/domain"
)

const (
	configPathEnv    = "ARTICLE_PUBLISHER_CONFIG"
	debugAddressEnv  = "PUBLISHER_DEBUG_ADDRESS"
	contentDirEnv    = "PUBLISHER_CONTENT_DIR"
	reportDSNEnv     = "PUBLISHER_REPORT_DSN"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Browser       BrowserConfig      `yaml:"browser"`
	Credentials   CredentialConfig   `yaml:"credentials"`
	Content       ContentConfig      `yaml:"content"`
	Publish       PublishConfig      `yaml:"publish"`
	Report        ReportConfig       `yaml:"report"`
	Notifications NotificationConfig `yaml:"notifications"`
	Platforms     []PlatformConfig   `yaml:"platforms"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BrowserConfig decides between attaching to a running browser and
// spawning a fresh one. The switches are pointers so a file writing
// `attachExisting: false` overrides the default instead of vanishing in
// the merge.
type BrowserConfig struct {
	AttachExisting *bool  `yaml:"attachExisting"`
	DebugAddress   string `yaml:"debugAddress"`
	Headless       *bool  `yaml:"headless"`
}

// Attach reports whether the session attaches to an already-running browser.
func (b BrowserConfig) Attach() bool {
	return b.AttachExisting != nil && *b.AttachExisting
}

// IsHeadless reports whether a spawned browser runs without a window.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless != nil && *b.Headless
}

// CredentialConfig points at the on-disk cookie directory.
type CredentialConfig struct {
	Dir string `yaml:"dir"`
}

// ContentConfig points at the directory of generated articles.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// PublishConfig tunes the lifecycle driver and batch pacing. Durations are
// plain seconds so the YAML stays readable.
type PublishConfig struct {
	LoginWaitSeconds      int `yaml:"loginWaitSeconds"`
	ElementTimeoutSeconds int `yaml:"elementTimeoutSeconds"`
	ActionRetries         int `yaml:"actionRetries"`
	ChallengeRetries      int `yaml:"challengeRetries"`
	InterTaskDelaySeconds int `yaml:"interTaskDelaySeconds"`
}

// LoginWait is how long the driver blocks for an interactive login.
func (p PublishConfig) LoginWait() time.Duration {
	return time.Duration(p.LoginWaitSeconds) * time.Second
}

// ElementTimeout bounds every element wait inside adapters.
func (p PublishConfig) ElementTimeout() time.Duration {
	return time.Duration(p.ElementTimeoutSeconds) * time.Second
}

// InterTaskDelay is the politeness pause between batch tasks.
func (p PublishConfig) InterTaskDelay() time.Duration {
	return time.Duration(p.InterTaskDelaySeconds) * time.Second
}

// ReportConfig describes the SQLite audit database.
type ReportConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send report summaries.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// PlatformConfig describes a single publishing destination.
type PlatformConfig struct {
	Name     string            `yaml:"name"`
	Enabled  bool              `yaml:"enabled"`
	EntryURL string            `yaml:"entryUrl"`
	Options  map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Platforms) == 0 {
		cfg.Platforms = defaultConfig().Platforms
	}

	return cfg
}

// EnabledTargets converts configured platforms into domain targets,
// dropping disabled ones from the cross-product.
func (c Config) EnabledTargets() []domain.PlatformTarget {
	targets := make([]domain.PlatformTarget, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		if !p.Enabled {
			continue
		}
		targets = append(targets, domain.PlatformTarget{
			Name:     p.Name,
			EntryURL: p.EntryURL,
			Enabled:  true,
			Settings: p.Options,
		})
	}
	return targets
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(debugAddressEnv); v != "" {
		c.Browser.DebugAddress = v
		c.Browser.AttachExisting = boolRef(true)
	}

	if v := os.Getenv(contentDirEnv); v != "" {
		c.Content.Dir = v
	}

	if v := os.Getenv(reportDSNEnv); v != "" {
		c.Report.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Browser.DebugAddress != "" {
		base.Browser.DebugAddress = override.Browser.DebugAddress
	}
	if override.Browser.AttachExisting != nil {
		base.Browser.AttachExisting = override.Browser.AttachExisting
	}
	if override.Browser.Headless != nil {
		base.Browser.Headless = override.Browser.Headless
	}

	if override.Credentials.Dir != "" {
		base.Credentials = override.Credentials
	}

	if override.Content.Dir != "" {
		base.Content = override.Content
	}

	if override.Publish.LoginWaitSeconds > 0 {
		base.Publish.LoginWaitSeconds = override.Publish.LoginWaitSeconds
	}
	if override.Publish.ElementTimeoutSeconds > 0 {
		base.Publish.ElementTimeoutSeconds = override.Publish.ElementTimeoutSeconds
	}
	if override.Publish.ActionRetries > 0 {
		base.Publish.ActionRetries = override.Publish.ActionRetries
	}
	if override.Publish.ChallengeRetries > 0 {
		base.Publish.ChallengeRetries = override.Publish.ChallengeRetries
	}
	if override.Publish.InterTaskDelaySeconds > 0 {
		base.Publish.InterTaskDelaySeconds = override.Publish.InterTaskDelaySeconds
	}

	if override.Report.DSN != "" {
		base.Report = override.Report
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Platforms) > 0 {
		base.Platforms = override.Platforms
	}

	return base
}

func boolRef(v bool) *bool { return &v }

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Browser: BrowserConfig{
			AttachExisting: boolRef(true),
			DebugAddress:   "127.0.0.1:9222",
		},
		Credentials: CredentialConfig{Dir: "data/cookies"},
		Content:     ContentConfig{Dir: "data/articles"},
		Publish: PublishConfig{
			LoginWaitSeconds:      120,
			ElementTimeoutSeconds: 10,
			ActionRetries:         2,
			ChallengeRetries:      3,
			InterTaskDelaySeconds: 3,
		},
		Report: ReportConfig{DSN: "data/publish_runs.db"},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Platforms: []PlatformConfig{
			{
				Name:     "csdn",
				Enabled:  true,
				EntryURL: "https://editor.csdn.net/md/",
			},
			{
				Name:     "juejin",
				Enabled:  true,
				EntryURL: "https://juejin.cn/editor/drafts/new?v=2",
			},
		},
	}
}
