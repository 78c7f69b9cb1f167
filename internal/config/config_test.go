package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
logging:
  level: debug
publish:
  loginWaitSeconds: 30
platforms:
  - name: csdn
    enabled: true
    entryUrl: https://editor.csdn.net/md/
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Publish.LoginWaitSeconds != 30 {
		t.Errorf("expected loginWaitSeconds 30, got %d", cfg.Publish.LoginWaitSeconds)
	}
	// Unset fields keep their defaults.
	if cfg.Publish.ChallengeRetries != 3 {
		t.Errorf("expected default challengeRetries 3, got %d", cfg.Publish.ChallengeRetries)
	}
	if len(cfg.Platforms) != 1 || cfg.Platforms[0].Name != "csdn" {
		t.Errorf("expected platform list replaced, got %+v", cfg.Platforms)
	}
}

func TestDebugAddressEnvForcesAttach(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(debugAddressEnv, "127.0.0.1:9333")

	cfg := Load()

	if !cfg.Browser.Attach() {
		t.Error("expected attach mode to be forced on")
	}
	if cfg.Browser.DebugAddress != "127.0.0.1:9333" {
		t.Errorf("unexpected debug address %q", cfg.Browser.DebugAddress)
	}
}

func TestAttachExistingFalseSelectsSpawn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
browser:
  attachExisting: false
  headless: true
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(debugAddressEnv, "")

	cfg := Load()

	if cfg.Browser.Attach() {
		t.Error("attachExisting: false in the file must select spawn mode")
	}
	if !cfg.Browser.IsHeadless() {
		t.Error("headless: true must survive the merge")
	}
	// The file left the address alone, so the default remains for a later
	// switch back to attach mode.
	if cfg.Browser.DebugAddress != "127.0.0.1:9222" {
		t.Errorf("unexpected debug address %q", cfg.Browser.DebugAddress)
	}
}

func TestEnabledTargetsFiltersDisabled(t *testing.T) {
	cfg := Config{Platforms: []PlatformConfig{
		{Name: "csdn", Enabled: true, EntryURL: "https://editor.csdn.net/md/"},
		{Name: "juejin", Enabled: false, EntryURL: "https://juejin.cn/editor/drafts/new?v=2"},
		{Name: "zhihu", Enabled: true, EntryURL: "https://zhuanlan.zhihu.com/write",
			Options: map[string]string{"column": "go-notes"}},
	}}

	targets := cfg.EnabledTargets()

	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Name != "csdn" || targets[1].Name != "zhihu" {
		t.Errorf("unexpected order: %s, %s", targets[0].Name, targets[1].Name)
	}
	if got := targets[1].Setting("column", ""); got != "go-notes" {
		t.Errorf("expected option passthrough, got %q", got)
	}
}
