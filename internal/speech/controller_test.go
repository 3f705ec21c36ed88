package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// scriptedSynth hands the test one event channel per Speak call.
type scriptedSynth struct {
	mu       sync.Mutex
	channels []chan Event
	speakErr error
}

func (s *scriptedSynth) Speak(ctx context.Context, text string) (<-chan Event, error) {
	if s.speakErr != nil {
		return nil, s.speakErr
	}
	ch := make(chan Event, 4)
	s.mu.Lock()
	s.channels = append(s.channels, ch)
	s.mu.Unlock()
	return ch, nil
}

func (s *scriptedSynth) channel(i int) chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[i]
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("controller never reached state %q, stuck at %q", want, c.State())
}

func TestControllerSpeakingToIdleOnEnd(t *testing.T) {
	synth := &scriptedSynth{}
	c := NewController(synth, zerolog.Nop())

	if c.State() != StateIdle {
		t.Fatalf("fresh controller not idle: %q", c.State())
	}
	if err := c.Start("hello"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.State() != StateSpeaking {
		t.Fatalf("state after start = %q, want speaking", c.State())
	}

	ch := synth.channel(0)
	ch <- Event{Kind: EventStarted}
	ch <- Event{Kind: EventEnded}
	close(ch)

	waitState(t, c, StateIdle)
}

func TestControllerStopIsSynchronousAndIdempotent(t *testing.T) {
	synth := &scriptedSynth{}
	c := NewController(synth, zerolog.Nop())

	// Stopping while idle is a no-op, not an error.
	c.Stop()
	if c.State() != StateIdle {
		t.Fatalf("stop on idle changed state to %q", c.State())
	}

	if err := c.Start("hello"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Stop()
	if c.State() != StateIdle {
		t.Fatalf("stop must transition synchronously, state = %q", c.State())
	}
	c.Stop() // second stop is a no-op

	// The superseded utterance's terminal event is discarded.
	ch := synth.channel(0)
	ch <- Event{Kind: EventCancelled}
	close(ch)
	time.Sleep(10 * time.Millisecond)
	if c.State() != StateIdle {
		t.Fatalf("late cancelled event changed state to %q", c.State())
	}
}

func TestControllerStartWhileSpeakingCancelsPrior(t *testing.T) {
	synth := &scriptedSynth{}
	c := NewController(synth, zerolog.Nop())

	if err := c.Start("first"); err != nil {
		t.Fatalf("start first: %v", err)
	}
	if err := c.Start("second"); err != nil {
		t.Fatalf("start second: %v", err)
	}
	if c.State() != StateSpeaking {
		t.Fatalf("state = %q, want speaking for second utterance", c.State())
	}

	// The first utterance reports cancelled after the second began: last
	// transition wins, the stale event must not flip the slot to idle.
	first := synth.channel(0)
	first <- Event{Kind: EventCancelled}
	close(first)
	time.Sleep(10 * time.Millisecond)
	if c.State() != StateSpeaking {
		t.Fatalf("stale cancelled event ended the new utterance")
	}

	second := synth.channel(1)
	second <- Event{Kind: EventStarted}
	second <- Event{Kind: EventEnded}
	close(second)
	waitState(t, c, StateIdle)
}

func TestControllerInterruptedErrorIsBenign(t *testing.T) {
	synth := &scriptedSynth{}
	c := NewController(synth, zerolog.Nop())

	if err := c.Start("hello"); err != nil {
		t.Fatalf("start: %v", err)
	}
	ch := synth.channel(0)
	ch <- Event{Kind: EventErrored, Err: ErrInterrupted}
	close(ch)

	waitState(t, c, StateIdle)

	// The slot is reusable afterwards.
	if err := c.Start("again"); err != nil {
		t.Fatalf("restart after interruption: %v", err)
	}
	if c.State() != StateSpeaking {
		t.Fatalf("state = %q, want speaking", c.State())
	}
}

func TestControllerStartErrorLeavesIdle(t *testing.T) {
	synth := &scriptedSynth{speakErr: errors.New("device busy")}
	c := NewController(synth, zerolog.Nop())

	if err := c.Start("hello"); err == nil {
		t.Fatal("expected start error")
	}
	if c.State() != StateIdle {
		t.Fatalf("failed start left state %q", c.State())
	}
}

func TestSimulatorEmitsStartedThenEnded(t *testing.T) {
	s := NewSimulator(time.Microsecond)
	events, err := s.Speak(context.Background(), "hi")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}

	var kinds []EventKind
	for ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) != 2 || kinds[0] != EventStarted || kinds[1] != EventEnded {
		t.Fatalf("unexpected event sequence: %v", kinds)
	}
}

func TestSimulatorCancellation(t *testing.T) {
	s := NewSimulator(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	events, err := s.Speak(ctx, "a very long utterance")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}

	if ev := <-events; ev.Kind != EventStarted {
		t.Fatalf("first event = %q, want started", ev.Kind)
	}
	cancel()
	if ev := <-events; ev.Kind != EventCancelled {
		t.Fatalf("terminal event = %q, want cancelled", ev.Kind)
	}
}

func TestSessionsReturnOneControllerPerUser(t *testing.T) {
	sessions := NewSessions(&scriptedSynth{}, zerolog.Nop())

	a := sessions.For("user-1")
	b := sessions.For("user-1")
	other := sessions.For("user-2")

	if a != b {
		t.Fatal("same user got two controllers")
	}
	if a == other {
		t.Fatal("different users share a controller")
	}
}
