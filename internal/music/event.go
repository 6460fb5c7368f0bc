package music

import (
	"math"
	"sort"
)

// GridResolution is the duration quantization grid: durations are snapped to
// the nearest 1/24 of a quarter note before encoding. Near-equal durations
// collapse to one token, which bounds vocabulary size. This is a deliberate
// lossy step.
const GridResolution = 24

// Event is one symbolic music event: a rest (no pitches), a single note, or a
// chord (simultaneous pitch set). Pitches are MIDI note numbers sorted
// ascending. Duration is in quarter-note units, quantized to the grid.
// Events are immutable once produced by the codec.
type Event struct {
	Pitches  []int   `json:"pitches"`
	Duration float64 `json:"duration"`
}

// NewEvent builds an Event with canonical pitch order and grid-quantized
// duration. Duplicate pitches are collapsed so the same simultaneity always
// yields the same event regardless of source ordering.
func NewEvent(pitches []int, duration float64) Event {
	canonical := make([]int, 0, len(pitches))
	seen := make(map[int]bool, len(pitches))
	for _, p := range pitches {
		if !seen[p] {
			seen[p] = true
			canonical = append(canonical, p)
		}
	}
	sort.Ints(canonical)
	return Event{
		Pitches:  canonical,
		Duration: QuantizeDuration(duration),
	}
}

// Rest builds a rest event of the given duration.
func Rest(duration float64) Event {
	return Event{Duration: QuantizeDuration(duration)}
}

// IsRest reports whether the event carries no pitches.
func (e Event) IsRest() bool {
	return len(e.Pitches) == 0
}

// IsChord reports whether the event is a simultaneous pitch set.
func (e Event) IsChord() bool {
	return len(e.Pitches) > 1
}

// Equal compares two events by pitch set and duration.
func (e Event) Equal(other Event) bool {
	if e.Duration != other.Duration || len(e.Pitches) != len(other.Pitches) {
		return false
	}
	for i, p := range e.Pitches {
		if other.Pitches[i] != p {
			return false
		}
	}
	return true
}

// QuantizeDuration snaps a quarter-note duration to the nearest grid step.
// Negative durations clamp to zero.
func QuantizeDuration(d float64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(d*GridResolution) / GridResolution
}
