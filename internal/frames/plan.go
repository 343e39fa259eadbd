package frames

import "math"

// DefaultFPS is assumed when a container reports no frame rate.
const DefaultFPS = 30.0

// Plan is the decoded-frame selection derived from a SampleSpec and the
// source's frame rate and frame count.
type Plan struct {
	// Step keeps every Step-th decoded frame, starting with frame 0.
	Step int
	// Limit caps the number of kept frames. Zero means unbounded.
	Limit int
}

// NewPlan computes the selection step. fps <= 0 falls back to DefaultFPS;
// total <= 0 means the frame count is unknown.
func NewPlan(spec SampleSpec, fps float64, total int) Plan {
	if !(fps > 0) {
		fps = DefaultFPS
	}
	switch spec.Strategy {
	case ByCount:
		k := int(spec.Value)
		if k < 1 {
			k = 1
		}
		step := int(math.Round(fps))
		if total > 0 {
			step = total / k
		}
		return Plan{Step: max(1, step), Limit: k}
	default:
		return Plan{Step: max(1, int(math.Round(fps*spec.Value)))}
	}
}

// Selects reports whether decoded frame n is kept.
func (p Plan) Selects(n int) bool {
	return n%p.Step == 0
}

// Done reports whether kept frames already satisfy the limit.
func (p Plan) Done(kept int) bool {
	return p.Limit > 0 && kept >= p.Limit
}

// Expected estimates how many frames will be kept from total decoded frames,
// or the limit (possibly 0) when total is unknown.
func (p Plan) Expected(total int) int {
	if total <= 0 {
		return p.Limit
	}
	n := (total + p.Step - 1) / p.Step
	if p.Limit > 0 && n > p.Limit {
		return p.Limit
	}
	return n
}
