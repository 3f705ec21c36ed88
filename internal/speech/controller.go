package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// State is the playback slot state.
type State string

const (
	StateIdle     State = "idle"
	StateSpeaking State = "speaking"
)

// Controller owns the single "currently speaking" slot for one session.
// Starting a new utterance while speaking first cancels the prior one as
// a normal terminal transition. Transitions are guarded by a generation
// counter: last transition wins, and terminal events from a superseded
// utterance are discarded.
type Controller struct {
	synth  Synthesizer
	logger zerolog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

func NewController(synth Synthesizer, logger zerolog.Logger) *Controller {
	return &Controller{synth: synth, logger: logger, state: StateIdle}
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a new utterance, cancelling any active one. Only admitted
// actions may reach this call.
func (c *Controller) Start(text string) error {
	c.mu.Lock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.synth.Speak(ctx, text)
	if err != nil {
		cancel()
		c.state = StateIdle
		c.mu.Unlock()
		return fmt.Errorf("start synthesis: %w", err)
	}

	c.state = StateSpeaking
	c.cancel = cancel
	c.mu.Unlock()

	go c.watch(gen, events, cancel)
	return nil
}

// Stop cancels the current utterance. Stopping an idle controller is a
// no-op, not an error, and stopping twice is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSpeaking {
		return
	}
	// Synchronous transition: the slot is free immediately, and the
	// superseded watcher's terminal event will be discarded by generation.
	c.gen++
	c.state = StateIdle
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) watch(gen uint64, events <-chan Event, cancel context.CancelFunc) {
	defer cancel()
	for ev := range events {
		if !ev.Terminal() {
			continue
		}
		c.finish(gen, ev)
		return
	}
	// Channel closed without a terminal event; treat as ended.
	c.finish(gen, Event{Kind: EventEnded})
}

func (c *Controller) finish(gen uint64, ev Event) {
	c.mu.Lock()
	stale := gen != c.gen
	if !stale {
		c.state = StateIdle
		c.cancel = nil
	}
	c.mu.Unlock()

	if stale {
		// A terminal event arriving after a newer utterance began (or
		// after an explicit stop) is discarded.
		return
	}

	if ev.Kind == EventErrored && ev.Err != ErrInterrupted {
		c.logger.Warn().Str("error", ev.Err).Msg("speech synthesis failed")
	}
}
