package model

// Environment status constants.
const (
	StatusCreating = "CREATING"
	StatusRunning  = "RUNNING"
	StatusStopped  = "STOPPED"
	StatusArchived = "ARCHIVED"
	StatusFailed   = "FAILED"
)

// transitions lists the allowed status changes. ARCHIVED is terminal.
var transitions = map[string][]string{
	StatusCreating: {StatusRunning, StatusFailed, StatusArchived},
	StatusRunning:  {StatusStopped, StatusArchived},
	StatusStopped:  {StatusRunning, StatusArchived},
	StatusFailed:   {StatusArchived},
}

// ValidStatus reports whether s is a known environment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusCreating, StatusRunning, StatusStopped, StatusArchived, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether an environment may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
