package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Tantawi65/VLCSub/internal/logging"
	"github.com/Tantawi65/VLCSub/internal/playback"
	"github.com/Tantawi65/VLCSub/internal/subtitle"
)

// reported by a Source when the external player cannot be reached
var ErrUnavailable = errors.New("playback source unavailable")

// Source reports an authoritative external playback position, e.g. a
// media player's status endpoint. A failed or timed-out sample means
// the source is unavailable for this tick, nothing more.
type Source interface {
	Position(ctx context.Context) (time.Duration, error)
}

// Renderer displays the active cue and playback status. The driver
// calls ShowCue/ClearCue only when the active cue changes.
type Renderer interface {
	ShowCue(cue subtitle.Cue)
	ClearCue()
	ShowStatus(info playback.ProgressInfo)
}

// WordSink receives words the user saves from the displayed cue,
// together with the full cue text and its start position for context.
type WordSink interface {
	SaveWord(word, sentence string, position time.Duration) error
}

type Options struct {
	Source        Source   // optional external clock source
	Words         WordSink // optional vocabulary collaborator
	SampleTimeout time.Duration
	Logger        *logging.Logger
}

const defaultSampleTimeout = 50 * time.Millisecond

// Driver polls the sync engine once per tick, reconciles it against an
// external source when one is configured, and forwards cue changes to
// the renderer. It is the single writer of engine state during playback;
// control methods may be called from another goroutine.
type Driver struct {
	mu       sync.Mutex
	engine   *playback.Engine
	source   Source
	renderer Renderer
	words    WordSink
	log      *logging.Logger
	timeout  time.Duration

	lastCue  subtitle.Cue
	hasCue   bool
	sourceOK bool
}

func New(engine *playback.Engine, renderer Renderer, opts Options) *Driver {
	timeout := opts.SampleTimeout
	if timeout <= 0 {
		timeout = defaultSampleTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	return &Driver{
		engine:   engine,
		source:   opts.Source,
		renderer: renderer,
		words:    opts.Words,
		log:      log,
		timeout:  timeout,
		// assume reachable so the first failure logs a fallback notice
		sourceOK: opts.Source != nil,
	}
}

// Run ticks the driver at the given interval until ctx is cancelled.
func (d *Driver) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick performs one driver cycle: sample the external source if
// configured, refresh the displayed cue, and publish status.
func (d *Driver) Tick(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	external := false
	if d.source != nil {
		sampleCtx, cancel := context.WithTimeout(ctx, d.timeout)
		pos, err := d.source.Position(sampleCtx)
		cancel()

		if err != nil {
			if d.sourceOK {
				d.log.Warnw("Playback source unreachable, falling back to internal clock",
					"error", err,
				)
			}
			d.sourceOK = false
		} else {
			if !d.sourceOK {
				d.log.Infow("Playback source reachable again, following external position")
			}
			d.sourceOK = true
			d.engine.SetPlaybackTime(pos)
			external = true
		}
	}

	// without an authoritative position, only advance the display
	// while the internal clock is running
	if external || d.engine.Running() {
		d.refreshCueLocked()
	}

	d.renderer.ShowStatus(d.engine.Progress())
}

func (d *Driver) refreshCueLocked() {
	cue, ok := d.engine.CurrentCue()
	if ok == d.hasCue && (!ok || cue == d.lastCue) {
		return
	}

	d.lastCue = cue
	d.hasCue = ok
	if ok {
		d.renderer.ShowCue(cue)
	} else {
		d.renderer.ClearCue()
	}
}

// Toggle switches between play and pause.
func (d *Driver) Toggle() {
	d.engine.Toggle()
	d.log.Infow("Playback toggled", "state", d.engine.State().String())
}

// Reset returns playback to the beginning and clears the display.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.engine.Reset()
	d.lastCue = subtitle.Cue{}
	d.hasCue = false
	d.renderer.ClearCue()
	d.log.Infow("Playback reset")
}

// Adjust shifts the sync offset by delta.
func (d *Driver) Adjust(delta time.Duration) {
	d.engine.AdjustOffset(delta)
	d.log.Infow("Sync offset adjusted",
		"offset", d.engine.Progress().OffsetFormatted,
	)
}

// Save forwards a word from the currently displayed cue to the word
// sink, together with the cue text and start position.
func (d *Driver) Save(word string) error {
	d.mu.Lock()
	cue, ok := d.lastCue, d.hasCue
	d.mu.Unlock()

	if d.words == nil {
		return fmt.Errorf("no vocabulary store configured")
	}
	if !ok {
		return fmt.Errorf("no cue on screen to save from")
	}
	return d.words.SaveWord(word, cue.Text, cue.Start)
}
