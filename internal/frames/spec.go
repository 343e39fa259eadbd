package frames

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects how frames are spaced.
type Strategy int

const (
	// ByInterval samples one frame every Value seconds.
	ByInterval Strategy = iota
	// ByCount samples at most Value frames spread over the source.
	ByCount
)

func (s Strategy) String() string {
	switch s {
	case ByInterval:
		return "interval"
	case ByCount:
		return "count"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a config or flag value into a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "interval", "by_interval", "seconds":
		return ByInterval, nil
	case "count", "by_count", "frames":
		return ByCount, nil
	default:
		return 0, fmt.Errorf("unknown sampling strategy %q", value)
	}
}

// SampleSpec describes the active sampling strategy.
type SampleSpec struct {
	Strategy Strategy
	Value    float64
}

// Interval returns a spec sampling every sec seconds.
func Interval(sec float64) SampleSpec {
	return SampleSpec{Strategy: ByInterval, Value: sec}
}

// Count returns a spec sampling k frames.
func Count(k int) SampleSpec {
	return SampleSpec{Strategy: ByCount, Value: float64(k)}
}

// Validate checks the value against the strategy.
func (s SampleSpec) Validate() error {
	switch s.Strategy {
	case ByInterval:
		if !(s.Value > 0) || math.IsInf(s.Value, 0) {
			return fmt.Errorf("interval must be positive seconds, got %v", s.Value)
		}
	case ByCount:
		if s.Value < 1 || s.Value != math.Trunc(s.Value) {
			return fmt.Errorf("count must be a positive integer, got %v", s.Value)
		}
	default:
		return fmt.Errorf("unknown sampling strategy %d", int(s.Strategy))
	}
	return nil
}

func (s SampleSpec) String() string {
	if s.Strategy == ByCount {
		return fmt.Sprintf("count=%d", int(s.Value))
	}
	return fmt.Sprintf("interval=%gs", s.Value)
}
