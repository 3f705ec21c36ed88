package speech

import (
	"context"
	"time"
	"unicode/utf8"
)

// EventKind classifies synthesis lifecycle events.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventEnded     EventKind = "ended"
	EventErrored   EventKind = "errored"
	EventCancelled EventKind = "cancelled"
)

// ErrInterrupted is the error label a synthesizer reports when an
// utterance was cut off by cancellation. It is a normal terminal
// transition, not a failure.
const ErrInterrupted = "interrupted"

// Event is one synthesis lifecycle notification.
type Event struct {
	Kind EventKind
	Err  string // set for EventErrored
}

// Terminal reports whether the event ends the utterance.
func (e Event) Terminal() bool {
	return e.Kind != EventStarted
}

// Synthesizer starts one utterance and reports lifecycle events on the
// returned channel until a terminal event, after which the channel is
// closed. Cancelling the context must terminate the utterance with an
// EventCancelled or an interrupted EventErrored.
type Synthesizer interface {
	Speak(ctx context.Context, text string) (<-chan Event, error)
}

// Simulator is a Synthesizer that plays nothing: it emits started, waits
// in proportion to the text length and emits ended. Used in development
// and tests, where the real synthesis capability lives outside this
// service.
type Simulator struct {
	PerChar time.Duration
}

func NewSimulator(perChar time.Duration) *Simulator {
	if perChar <= 0 {
		perChar = 10 * time.Millisecond
	}
	return &Simulator{PerChar: perChar}
}

func (s *Simulator) Speak(ctx context.Context, text string) (<-chan Event, error) {
	events := make(chan Event, 2)
	duration := time.Duration(utf8.RuneCountInString(text)) * s.PerChar

	go func() {
		defer close(events)
		events <- Event{Kind: EventStarted}

		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			events <- Event{Kind: EventEnded}
		case <-ctx.Done():
			events <- Event{Kind: EventCancelled}
		}
	}()

	return events, nil
}
