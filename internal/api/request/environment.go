package request

import (
	"encoding/json"
	"errors"

	"github.com/edvin/branchbox/internal/model"
)

// Service is one service of a create or deploy request.
type Service struct {
	Repo      string `json:"repo" validate:"required,repo"`
	Branch    string `json:"branch" validate:"required,max=255"`
	BuildSpec string `json:"buildspec" validate:"max=255"`
	AppSpec   string `json:"appspec" validate:"max=255"`
}

func toServices(in []Service) []model.Service {
	out := make([]model.Service, 0, len(in))
	for _, s := range in {
		out = append(out, model.Service{
			Repo:      s.Repo,
			Branch:    s.Branch,
			BuildSpec: s.BuildSpec,
			AppSpec:   s.AppSpec,
		})
	}
	return out
}

// Hour is a schedule hour that remembers whether the field was present.
// An explicit null reads the same as "".
type Hour struct {
	Set   bool
	Value string
}

func (h *Hour) UnmarshalJSON(b []byte) error {
	h.Set = true
	if string(b) == "null" {
		h.Value = ""
		return nil
	}
	return json.Unmarshal(b, &h.Value)
}

// Ptr returns nil for an absent field and a pointer to the value otherwise.
func (h Hour) Ptr() *string {
	if !h.Set {
		return nil
	}
	v := h.Value
	return &v
}

// CreateEnvironment accepts either a service list or the single-service
// {repo, branch} form. An explicit empty or null stop_time disables auto-stop.
type CreateEnvironment struct {
	Services  []Service `json:"services" validate:"omitempty,dive"`
	Repo      string    `json:"repo" validate:"omitempty,repo"`
	Branch    string    `json:"branch" validate:"max=255"`
	Alias     string    `json:"alias" validate:"max=128"`
	StopTime  Hour      `json:"stop_time" swaggertype:"string"`
	StartTime Hour      `json:"start_time" swaggertype:"string"`
	Owner     string    `json:"owner" validate:"max=255"`
}

// ServiceList returns the requested services, falling back to the
// single-service form when no list was given.
func (c *CreateEnvironment) ServiceList() ([]model.Service, error) {
	if len(c.Services) > 0 {
		return toServices(c.Services), nil
	}
	if c.Repo == "" || c.Branch == "" {
		return nil, errors.New("services or repo and branch are required")
	}
	return []model.Service{{Repo: c.Repo, Branch: c.Branch}}, nil
}

// Deploy addresses a tracked environment by {repo, branch}, or names a stack
// and its services directly.
type Deploy struct {
	Repo      string    `json:"repo" validate:"omitempty,repo"`
	Branch    string    `json:"branch" validate:"max=255"`
	StackName string    `json:"stack_name" validate:"max=128"`
	Services  []Service `json:"services" validate:"omitempty,dive"`
}

// ByKey reports whether the request addresses a registry entry.
func (d *Deploy) ByKey() bool {
	return d.Repo != "" && d.Branch != ""
}

// Check rejects requests that match neither form.
func (d *Deploy) Check() error {
	if d.ByKey() {
		return nil
	}
	if d.StackName != "" && len(d.Services) > 0 {
		return nil
	}
	return errors.New("repo and branch, or stack_name and services, are required")
}

// ServiceList converts the explicit service list.
func (d *Deploy) ServiceList() []model.Service {
	return toServices(d.Services)
}

// Sweep optionally pins the hour a sweep runs for.
type Sweep struct {
	Hour *int `json:"hour" validate:"omitempty,min=0,max=23"`
}

// SourceConfig updates the stored source-host credentials. Empty fields are
// left unchanged.
type SourceConfig struct {
	AppID          string `json:"app_id" validate:"omitempty,numeric"`
	InstallationID string `json:"installation_id" validate:"omitempty,numeric"`
	PrivateKey     string `json:"private_key"`
	ClientSecret   string `json:"client_secret"`
}

func (c *SourceConfig) Credentials() model.GitHubCredentials {
	return model.GitHubCredentials{
		AppID:          c.AppID,
		InstallationID: c.InstallationID,
		PrivateKey:     c.PrivateKey,
		ClientSecret:   c.ClientSecret,
	}
}
