package domain

// Article is an immutable unit of content handed over by the content
// pipeline, ready to publish.
type Article struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	CoverImage  string
	Body        string
	SourcePath  string
}

// Cookie is one authentication cookie record persisted per platform.
// The field set is exactly what must survive a credential-file round trip.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Secure   bool    `json:"secure"`
	HTTPOnly bool    `json:"httpOnly"`
	Expiry   float64 `json:"expiry,omitempty"`
}

// TaskStatus enumerates lifecycle milestones of a single publish task.
type TaskStatus string

const (
	StatusPending             TaskStatus = "pending"
	StatusSessionReady        TaskStatus = "session_ready"
	StatusAuthenticated       TaskStatus = "authenticated"
	StatusContentFilled       TaskStatus = "content_filled"
	StatusMetadataFilled      TaskStatus = "metadata_filled"
	StatusSubmitted           TaskStatus = "submitted"
	StatusVerified            TaskStatus = "verified"
	StatusSubmittedUnverified TaskStatus = "submitted_unverified"
	StatusFailed              TaskStatus = "failed"
)
