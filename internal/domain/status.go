package domain

import "strings"

// Courier job and point statuses used for tracking decisions.
const (
	JobStatusActive    = "active"
	JobStatusCompleted = "completed"
	JobStatusFinished  = "finished"
	JobStatusCanceled  = "canceled"
)

var terminalStatuses = [...]string{JobStatusCompleted, JobStatusFinished, JobStatusCanceled}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsTerminalStatus reports whether a job status will not change any more.
func IsTerminalStatus(s string) bool {
	s = normalize(s)
	for _, v := range terminalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsActiveStatus reports whether a job or point is currently being worked on.
func IsActiveStatus(s string) bool {
	return normalize(s) == JobStatusActive
}

// Terminal reports whether the job reached a final state.
func (s JobStatus) Terminal() bool {
	return IsTerminalStatus(s.Status)
}

// Active reports whether the job or any of its stops is active.
func (s JobStatus) Active() bool {
	if IsActiveStatus(s.Status) {
		return true
	}
	for _, p := range s.Points {
		if IsActiveStatus(p.Status) {
			return true
		}
	}
	return false
}
