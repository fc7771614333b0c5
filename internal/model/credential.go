package model

// GitHubCredentials is the GitHub App credential material kept in the
// credential store. It is never stored on environment records.
type GitHubCredentials struct {
	AppID          string `json:"app_id"`
	InstallationID string `json:"installation_id"`
	PrivateKey     string `json:"-"`
	ClientSecret   string `json:"-"`
}

// Configured reports whether the identifiers needed for a token exchange are present.
func (c GitHubCredentials) Configured() bool {
	return c.AppID != "" && c.InstallationID != "" && c.PrivateKey != ""
}

// Merge fills empty fields of c from fallback.
func (c GitHubCredentials) Merge(fallback GitHubCredentials) GitHubCredentials {
	if c.AppID == "" {
		c.AppID = fallback.AppID
	}
	if c.InstallationID == "" {
		c.InstallationID = fallback.InstallationID
	}
	if c.PrivateKey == "" {
		c.PrivateKey = fallback.PrivateKey
	}
	if c.ClientSecret == "" {
		c.ClientSecret = fallback.ClientSecret
	}
	return c
}

// Repository is a source repository visible to the GitHub App installation.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    string `json:"owner"`
	URL      string `json:"url"`
}

// Branch is a branch of a source repository.
type Branch struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
}

// SourceConfig is the externally visible view of the stored credentials.
// Secret material is reported only by presence.
type SourceConfig struct {
	AppID           string `json:"app_id"`
	InstallationID  string `json:"installation_id"`
	HasPrivateKey   bool   `json:"has_private_key"`
	HasClientSecret bool   `json:"has_client_secret"`
	Configured      bool   `json:"configured"`
}

// View returns the redacted view of c.
func (c GitHubCredentials) View() SourceConfig {
	return SourceConfig{
		AppID:           c.AppID,
		InstallationID:  c.InstallationID,
		HasPrivateKey:   c.PrivateKey != "",
		HasClientSecret: c.ClientSecret != "",
		Configured:      c.Configured(),
	}
}
