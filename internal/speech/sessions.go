package speech

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sessions hands out one playback controller per user session.
type Sessions struct {
	synth  Synthesizer
	logger zerolog.Logger

	mu     sync.Mutex
	byUser map[string]*Controller
}

func NewSessions(synth Synthesizer, logger zerolog.Logger) *Sessions {
	return &Sessions{synth: synth, logger: logger, byUser: make(map[string]*Controller)}
}

// For returns the controller for the user, creating it on first use.
func (s *Sessions) For(userID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl, ok := s.byUser[userID]
	if !ok {
		ctrl = NewController(s.synth, s.logger.With().Str("user_id", userID).Logger())
		s.byUser[userID] = ctrl
	}
	return ctrl
}
