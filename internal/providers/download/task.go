package download

import (
	"time"

	"github.com/GriffinCanCode/storefetch/internal/shared/id"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
)

// State is the lifecycle position of a download
type State string

const (
	StatePending     State = "pending"
	StateDownloading State = "downloading"
	StateCompleted   State = "completed"
	StateCancelled   State = "cancelled"
	StateInterrupted State = "interrupted"
)

// Terminal reports whether no further transitions happen
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateInterrupted:
		return true
	default:
		return false
	}
}

// Task is a snapshot of one download
type Task struct {
	ID         id.DownloadID        `json:"id"`
	File       types.FileDescriptor `json:"file"`
	Path       string               `json:"path"`
	State      State                `json:"state"`
	Received   int64                `json:"received"`
	Total      int64                `json:"total"`
	Error      string               `json:"error,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

// Percent is Received as a share of Total, 0 while the size is unknown
func (t Task) Percent() float64 {
	if t.Total <= 0 {
		return 0
	}
	return float64(t.Received) * 100 / float64(t.Total)
}

// Done reports whether the task reached a terminal state
func (t Task) Done() bool {
	return t.State.Terminal()
}

// Elapsed is the time spent so far, or in total once done
func (t Task) Elapsed() time.Duration {
	if t.FinishedAt != nil {
		return t.FinishedAt.Sub(t.StartedAt)
	}
	return time.Since(t.StartedAt)
}
