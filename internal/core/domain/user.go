package domain

// BackendConfig holds the connection settings for one document-store
// instance and its optional AI-search companion.
type BackendConfig struct {
	BaseURL    string
	APIToken   string
	AIBaseURL  string
	AIAPIToken string
}

func (c BackendConfig) AIConfigured() bool {
	return c.AIBaseURL != "" && c.AIAPIToken != ""
}

// UserContext is the resolved identity of an authorized chat user.
// Instances are built once at startup and never mutated.
type UserContext struct {
	UserID  int64
	Name    string
	Backend BackendConfig
}
