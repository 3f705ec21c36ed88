package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

type speakRequest struct {
	Text string `json:"text"`
}

type speakResponse struct {
	Admitted   bool   `json:"admitted"`
	Remaining  int    `json:"remaining"`
	DenyReason string `json:"deny_reason,omitempty"`
	Playback   string `json:"playback,omitempty"`
}

// TTSSpeak admits or denies the utterance and, on admission, starts
// playback for the caller's session.
func (a *App) TTSSpeak(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		a.json(w, http.StatusBadRequest, speakResponse{
			DenyReason: string(domain.DenyEmptyInput),
		})
		return
	}

	dec, err := a.Gate.Attempt(r.Context(), userID, req.Text)
	if err != nil {
		// Dependency failures deny; they were already logged as incidents
		// by the gate.
		a.json(w, http.StatusServiceUnavailable, speakResponse{
			Remaining:  dec.Remaining,
			DenyReason: string(dec.Reason),
		})
		return
	}
	if !dec.Admitted {
		status := http.StatusBadRequest
		if dec.Reason == domain.DenyDailyLimitExceeded {
			status = http.StatusForbidden
		}
		a.json(w, status, speakResponse{
			Remaining:  dec.Remaining,
			DenyReason: string(dec.Reason),
		})
		return
	}

	ctrl := a.Sessions.For(userID)
	playback := "speaking"
	if err := ctrl.Start(req.Text); err != nil {
		// Usage is already committed; synthesis failure does not refund it.
		a.Logger.Warn().Err(err).Str("user_id", userID).Msg("playback start failed")
		playback = "failed"
	}

	a.json(w, http.StatusOK, speakResponse{
		Admitted:  true,
		Remaining: dec.Remaining,
		Playback:  playback,
	})
}

// TTSStop cancels the caller's current utterance. Stopping while idle is
// a no-op.
func (a *App) TTSStop(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	ctrl := a.Sessions.For(userID)
	ctrl.Stop()
	a.json(w, http.StatusOK, map[string]string{"playback": string(ctrl.State())})
}

type usageResponse struct {
	Tier       string `json:"tier"`
	Used       int    `json:"used"`
	DailyLimit int    `json:"daily_limit"`
	CharLimit  int    `json:"char_limit"`
	Remaining  int    `json:"remaining"`
	ResetsAt   string `json:"resets_at"`
}

// TTSUsage reports the caller's current standing so the client can render
// usage without attempting an action.
func (a *App) TTSUsage(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	standing, err := a.Gate.Standing(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrResolutionFailure) {
			a.error(w, http.StatusServiceUnavailable, "resolution_error", "entitlement lookup failed")
			return
		}
		a.error(w, http.StatusServiceUnavailable, "persistence_error", "usage lookup failed")
		return
	}

	a.json(w, http.StatusOK, usageResponse{
		Tier:       string(standing.Tier),
		Used:       standing.Used,
		DailyLimit: standing.Limits.MaxActionsPerDay,
		CharLimit:  standing.Limits.MaxCharsPerAction,
		Remaining:  standing.Remaining,
		ResetsAt:   standing.ResetsAt.Format(time.RFC3339),
	})
}
