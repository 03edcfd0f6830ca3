package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/Tantawi65/VLCSub/internal/subtitle"
)

// playback run state
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Engine owns the logical playback clock for a loaded cue set: elapsed
// time, the user sync offset, and the run state. It performs no I/O and
// never fails; an external driver feeds it ticks and position samples.
//
// All methods are safe for concurrent use, though the intended model is
// a single driver goroutine polling at a small fixed interval.
type Engine struct {
	mu   sync.Mutex
	cues *subtitle.CueSet
	now  func() time.Time

	// exactly one of anchor/paused is authoritative: anchor while
	// running, paused otherwise. started distinguishes a fresh engine
	// (or one after Reset) from one paused mid-playback.
	anchor  time.Time
	paused  time.Duration
	running bool
	started bool

	offset time.Duration
}

// creates an engine over the given cue set using the wall clock
func NewEngine(cues *subtitle.CueSet) *Engine {
	return NewEngineWithClock(cues, time.Now)
}

// NewEngineWithClock injects the time source; tests use a fake clock so
// state transitions are deterministic without sleeping.
func NewEngineWithClock(cues *subtitle.CueSet, now func() time.Time) *Engine {
	return &Engine{cues: cues, now: now}
}

// Start begins playback, or resumes it after a pause. Resuming
// re-anchors the clock so elapsed time continues from where it was
// frozen rather than jumping. No-op while already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}

	if !e.started {
		e.anchor = e.now()
		e.paused = 0
		e.started = true
	} else {
		e.anchor = e.now().Add(-e.paused)
	}
	e.running = true
}

// Pause freezes elapsed time at its current value. No-op while not running.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.paused = e.now().Sub(e.anchor)
	e.running = false
}

// Toggle pauses when running and starts otherwise.
func (e *Engine) Toggle() {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	if running {
		e.Pause()
	} else {
		e.Start()
	}
}

// Reset returns the clock to zero and stops playback. The user offset
// survives: a sync correction should not be lost by going back to the
// beginning.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.anchor = time.Time{}
	e.paused = 0
	e.running = false
	e.started = false
}

// reports whether the clock is currently advancing
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.running:
		return StateRunning
	case e.started:
		return StatePaused
	default:
		return StateStopped
	}
}

// SetPlaybackTime reconciles the clock against an authoritative
// external position (e.g. VLC's reported time). The position is stored
// unconditionally so it holds while paused; while running the anchor is
// re-derived so free-running computation stays consistent with the
// external source until the next sample.
func (e *Engine) SetPlaybackTime(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = pos
	if e.running {
		e.anchor = e.now().Add(-pos)
	}
}

// SeekTo jumps to a specific position; same mechanics as an external
// reconciliation.
func (e *Engine) SeekTo(pos time.Duration) {
	e.SetPlaybackTime(pos)
}

// AdjustOffset adds a signed delta to the sync offset. A positive
// offset makes cues appear later, a negative one earlier.
func (e *Engine) AdjustOffset(delta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset += delta
}

// SetOffset assigns the sync offset absolutely.
func (e *Engine) SetOffset(offset time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset = offset
}

func (e *Engine) Offset() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

// Elapsed returns the raw logical playback position.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedLocked()
}

func (e *Engine) elapsedLocked() time.Duration {
	if !e.started {
		return 0
	}
	if !e.running {
		return e.paused
	}
	return e.now().Sub(e.anchor)
}

// AdjustedTime is elapsed time shifted by the user offset; it is the
// only time value used for cue lookups.
func (e *Engine) AdjustedTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedLocked() + e.offset
}

// CurrentCue returns the cue active at the adjusted time, or false when
// none is (gap, before the first cue, past the last, or no cues loaded).
func (e *Engine) CurrentCue() (subtitle.Cue, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cues == nil || e.cues.Len() == 0 {
		return subtitle.Cue{}, false
	}
	return e.cues.At(e.elapsedLocked() + e.offset)
}

// Nearby returns up to count cues around the adjusted time, for preview
// display. The window is centered on the cue whose start is closest.
func (e *Engine) Nearby(count int) []subtitle.Cue {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cues == nil || e.cues.Len() == 0 || count <= 0 {
		return nil
	}

	cues := e.cues.Cues()
	adjusted := e.elapsedLocked() + e.offset

	closest := 0
	minDiff := time.Duration(-1)
	for i, cue := range cues {
		diff := cue.Start - adjusted
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			closest = i
		}
	}

	start := closest - count/2
	if start < 0 {
		start = 0
	}
	end := start + count
	if end > len(cues) {
		end = len(cues)
	}

	return cues[start:end]
}

// snapshot of the playback position for status display
type ProgressInfo struct {
	Elapsed          time.Duration
	ElapsedFormatted string
	Adjusted         time.Duration
	Total            time.Duration
	TotalFormatted   string
	Offset           time.Duration
	OffsetFormatted  string
	Running          bool
}

// Progress reports the current position, total duration and offset.
// Pure read; it never changes engine state.
func (e *Engine) Progress() ProgressInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := e.elapsedLocked()

	var total time.Duration
	if e.cues != nil {
		total = e.cues.Duration()
	}

	return ProgressInfo{
		Elapsed:          elapsed,
		ElapsedFormatted: formatClock(elapsed),
		Adjusted:         elapsed + e.offset,
		Total:            total,
		TotalFormatted:   formatClock(total),
		Offset:           e.offset,
		OffsetFormatted:  fmt.Sprintf("%+dms", e.offset.Milliseconds()),
		Running:          e.running,
	}
}

// formats a position as MM:SS, clamping negatives to zero
func formatClock(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
