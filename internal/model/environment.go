package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default spec file names used when a service does not override them.
const (
	DefaultBuildSpec = "buildspec.yml"
	DefaultAppSpec   = "appspec.yml"

	// DefaultStopTime is applied when a create request omits the stop time.
	DefaultStopTime = "18:00"
)

var hourRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Service is one deployable unit of an environment.
type Service struct {
	Repo      string `json:"repo"`
	Branch    string `json:"branch"`
	BuildSpec string `json:"buildspec,omitempty"`
	AppSpec   string `json:"appspec,omitempty"`
}

// BuildSpecPath returns the configured build spec path or the default.
func (s Service) BuildSpecPath() string {
	if s.BuildSpec == "" {
		return DefaultBuildSpec
	}
	return s.BuildSpec
}

// AppSpecPath returns the configured deploy spec path or the default.
func (s Service) AppSpecPath() string {
	if s.AppSpec == "" {
		return DefaultAppSpec
	}
	return s.AppSpec
}

// OwnerRepo splits the "owner/name" repository identifier.
func (s Service) OwnerRepo() (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(s.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository %q is not in owner/name form", s.Repo)
	}
	return owner, repo, nil
}

// Matches reports whether the service tracks the given repository and branch.
func (s Service) Matches(repo, branch string) bool {
	return s.Repo == repo && s.Branch == branch
}

// Key identifies an environment in the registry.
type Key struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

func (k Key) String() string {
	return k.Repo + "@" + k.Branch
}

// Environment is a group of services deployed together onto one host.
type Environment struct {
	ID         string    `json:"id" db:"id"`
	RepoName   string    `json:"repo_name" db:"repo_name"`
	BranchName string    `json:"branch_name" db:"branch_name"`
	StackID    string    `json:"stack_id" db:"stack_id"`
	StackName  string    `json:"stack_name" db:"stack_name"`
	Alias      string    `json:"alias" db:"alias"`
	StopTime   string    `json:"stop_time" db:"stop_time"`
	StartTime  string    `json:"start_time" db:"start_time"`
	Status     string    `json:"status" db:"status"`
	Services   []Service `json:"services" db:"services"`
	Owner      string    `json:"owner" db:"owner"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IdentityOf returns the registry key of an environment. The key is derived
// from the first service; callers must not derive it any other way.
func IdentityOf(env *Environment) Key {
	if len(env.Services) == 0 {
		return Key{Repo: env.RepoName, Branch: env.BranchName}
	}
	return Key{Repo: env.Services[0].Repo, Branch: env.Services[0].Branch}
}

// HasService reports whether any service of the environment tracks repo/branch.
func (e *Environment) HasService(repo, branch string) bool {
	for _, s := range e.Services {
		if s.Matches(repo, branch) {
			return true
		}
	}
	return false
}

// ValidHour reports whether s is an "HH:MM" schedule time. The empty string
// is not a valid hour; callers treat it as "disabled" before calling this.
func ValidHour(s string) bool {
	return hourRegex.MatchString(s)
}

// ScheduleHour extracts the hour component of an "HH:MM" schedule time.
// ok is false for the empty (disabled) value.
func ScheduleHour(s string) (hour int, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	if !ValidHour(s) {
		return 0, false, fmt.Errorf("invalid schedule time %q", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, false, fmt.Errorf("invalid schedule time %q: %w", s, err)
	}
	return h, true, nil
}
