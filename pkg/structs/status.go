package structs

import (
	"strings"
)

type Status string

const (
	// transient states
	QUEUED  Status = "queued"
	RUNNING Status = "running"

	// end states
	COMPLETED Status = "completed"
	FAILED    Status = "failed"
)

// transitions lists the states a job may move to from each non final state.
// Jobs that fail to enqueue go straight from queued to failed.
var transitions = map[Status][]Status{
	QUEUED:  {RUNNING, FAILED},
	RUNNING: {COMPLETED, FAILED},
}

// CanTransition reports whether a job in state from may be set to state to.
// Re-setting the current state is allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsFinalStatus(status Status) bool {
	switch status {
	case COMPLETED, FAILED:
		return true
	default:
		return false
	}
}

func ToStatus(s string) Status {
	switch strings.ToLower(s) {
	case "queued":
		return QUEUED
	case "running":
		return RUNNING
	case "completed":
		return COMPLETED
	case "failed":
		return FAILED
	default:
		return ""
	}
}
