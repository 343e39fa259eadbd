package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external decoder binary. Video sampling shells out to
// ffmpeg for pixels and ffprobe for geometry and timing; stills need neither.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements are reported but never fail doctor.
	Optional bool
}

// Status is the resolved state of one Requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// Blocking reports whether a missing binary should stop video sampling.
func (s Status) Blocking() bool {
	return !s.Available && !s.Optional
}

// Summary returns the resolved path, or why resolution failed.
func (s Status) Summary() string {
	if s.Available {
		return s.Path
	}
	return s.Detail
}

// CheckBinaries resolves each requirement on PATH, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = lookup(req)
	}
	return statuses
}

func lookup(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}
