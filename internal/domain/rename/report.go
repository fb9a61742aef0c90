package rename

import (
	"fmt"
	"os"
	"os/user"
	"time"
)

// Mode names the workflow that produced a Report.
type Mode string

const (
	// ModeTable renames the fixed Pair table.
	ModeTable Mode = "table"
	// ModeSlug renames every directory to its slug.
	ModeSlug Mode = "slug"
)

// Actor identifies who ran the tool.
type Actor struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

// Outcome is the result of one attempted rename. A non-nil Err is the only
// failure signal; callers do not branch on its kind.
type Outcome struct {
	Pair    Pair
	Renamed bool
	Err     error
}

// Report describes a complete run.
type Report struct {
	Mode       Mode
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Actor      *Actor
	Outcomes   []Outcome
}

// Renamed returns how many attempts succeeded.
func (r *Report) Renamed() int {
	n := 0

	for _, o := range r.Outcomes {
		if o.Renamed {
			n++
		}
	}

	return n
}

// Failed returns how many attempts failed.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Renamed()
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}

// DetectActor gathers host and user information for the journal.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
