package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// ErrCorrupt marks a credential file that exists but cannot be decoded.
// Callers treat it the same as "no stored credential" and overwrite the
// file after the next successful login.
var ErrCorrupt = errors.New("credential file corrupt")

// FileStore persists cookies as one JSON file per platform under a root
// directory, surviving across runs.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

var _ ports.CredentialStore = (*FileStore)(nil)

// NewFileStore creates the root directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create credential dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Save writes the cookie set for a platform. Unless force is set, a save
// whose name->value projection equals the stored one is skipped so the file
// modification time stays meaningful. Returns whether a write happened.
func (s *FileStore) Save(platform string, cookies []domain.Cookie, force bool) (bool, error) {
	if !force {
		previous, err := s.Load(platform)
		if err == nil && previous != nil && sameValues(previous, cookies) {
			s.debug("cookies unchanged, skipping save", "platform", platform)
			return false, nil
		}
		// A corrupt file is overwritten below.
	}

	raw, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal cookies for %s: %w", platform, err)
	}

	path := s.path(platform)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	s.debug("saved cookies", "platform", platform, "count", len(cookies))
	return true, nil
}

// Load returns the stored cookie set, or nil, nil when the platform was
// never saved (first run is not an error).
func (s *FileStore) Load(platform string) ([]domain.Cookie, error) {
	raw, err := os.ReadFile(s.path(platform))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials for %s: %w", platform, err)
	}

	var cookies []domain.Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("decode credentials for %s: %w", platform, ErrCorrupt)
	}

	return cookies, nil
}

// Clear deletes the platform's credential file; a missing file is fine.
func (s *FileStore) Clear(platform string) error {
	err := os.Remove(s.path(platform))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials for %s: %w", platform, err)
	}
	return nil
}

func (s *FileStore) path(platform string) string {
	return filepath.Join(s.dir, platform+".json")
}

// sameValues compares the name->value projection of two cookie sets.
func sameValues(a, b []domain.Cookie) bool {
	if len(a) != len(b) {
		return false
	}
	values := make(map[string]string, len(a))
	for _, c := range a {
		values[c.Name] = c.Value
	}
	for _, c := range b {
		if v, ok := values[c.Name]; !ok || v != c.Value {
			return false
		}
	}
	return true
}

func (s *FileStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
