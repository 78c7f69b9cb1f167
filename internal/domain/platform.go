package domain

// PlatformTarget identifies one publishing destination. Loaded from
// configuration and immutable during a run; Settings are opaque to the core
// and interpreted by the matching adapter.
type PlatformTarget struct {
	Name     string
	EntryURL string
	Enabled  bool
	Settings map[string]string
}

// Setting returns a platform option with a fallback.
func (p PlatformTarget) Setting(key, fallback string) string {
	if v, ok := p.Settings[key]; ok && v != "" {
		return v
	}
	return fallback
}
