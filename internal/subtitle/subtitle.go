package subtitle

import (
	"fmt"
	"sort"
	"time"
)

// represents a single time-ranged subtitle cue
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// start time as HH:MM:SS,mmm
func (c Cue) StartFormatted() string {
	return FormatTimestamp(c.Start)
}

// end time as HH:MM:SS,mmm
func (c Cue) EndFormatted() string {
	return FormatTimestamp(c.End)
}

// ordered, immutable set of cues sorted ascending by start time.
// Built once by Parse (or NewCueSet) and never mutated afterwards.
type CueSet struct {
	cues    []Cue
	skipped int
}

// builds a set from the given cues, sorting them by start time
func NewCueSet(cues []Cue) *CueSet {
	sorted := make([]Cue, len(cues))
	copy(sorted, cues)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return &CueSet{cues: sorted}
}

// number of cues in the set
func (s *CueSet) Len() int {
	return len(s.cues)
}

// cues in start order; callers must not modify the returned slice
func (s *CueSet) Cues() []Cue {
	return s.cues
}

// number of malformed blocks dropped during parsing
func (s *CueSet) Skipped() int {
	return s.skipped
}

// end time of the last cue, or 0 for an empty set
func (s *CueSet) Duration() time.Duration {
	if len(s.cues) == 0 {
		return 0
	}
	return s.cues[len(s.cues)-1].End
}

// At finds the cue active at time t via binary search over the
// start-sorted cues. Both range boundaries are inclusive. Returns
// false when t falls in a gap between cues or outside the set.
func (s *CueSet) At(t time.Duration) (Cue, bool) {
	left, right := 0, len(s.cues)-1

	for left <= right {
		mid := (left + right) / 2
		cue := s.cues[mid]

		switch {
		case cue.Start <= t && t <= cue.End:
			return cue, true
		case t < cue.Start:
			right = mid - 1
		default:
			left = mid + 1
		}
	}

	return Cue{}, false
}

// converts a duration to an SRT timestamp (HH:MM:SS,mmm)
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
