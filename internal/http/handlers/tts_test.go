package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/entitlement"
	"server/internal/gate"
	"server/internal/middleware"
	"server/internal/speech"
)

func newTestApp(t *testing.T, tier domain.Tier) (*App, *repo.MemoryUsageLog) {
	t.Helper()
	log := repo.NewMemoryUsageLog()
	g := gate.New(gate.Options{
		Resolver: entitlement.Static{Tier: tier},
		UsageLog: log,
		Logger:   zerolog.Nop(),
	})
	sessions := speech.NewSessions(speech.NewSimulator(time.Microsecond), zerolog.Nop())
	return NewApp(nil, g, sessions, zerolog.Nop()), log
}

func speakReq(t *testing.T, userID, text string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", "/v1/tts/speak", bytes.NewReader(body))
	return req.WithContext(middleware.ContextWithUserID(context.Background(), userID))
}

func decodeSpeak(t *testing.T, rr *httptest.ResponseRecorder) speakResponse {
	t.Helper()
	var resp speakResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestTTSSpeakFreeTierEndToEnd(t *testing.T) {
	app, log := newTestApp(t, domain.TierFree)

	want := []int{4, 3, 2, 1, 0}
	for i, expected := range want {
		rr := httptest.NewRecorder()
		app.TTSSpeak(rr, speakReq(t, "user-1", "hello tts!"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d body %s", i+1, rr.Code, rr.Body.String())
		}
		resp := decodeSpeak(t, rr)
		if !resp.Admitted || resp.Remaining != expected {
			t.Fatalf("request %d: got %+v, want remaining %d", i+1, resp, expected)
		}
	}

	rr := httptest.NewRecorder()
	app.TTSSpeak(rr, speakReq(t, "user-1", "hello tts!"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("sixth request status = %d, want 403", rr.Code)
	}
	resp := decodeSpeak(t, rr)
	if resp.Admitted || resp.DenyReason != string(domain.DenyDailyLimitExceeded) || resp.Remaining != 0 {
		t.Fatalf("sixth request: %+v", resp)
	}
	if log.Len() != 5 {
		t.Fatalf("log holds %d records, want 5", log.Len())
	}
}

func TestTTSSpeakEmptyInput(t *testing.T) {
	app, log := newTestApp(t, domain.TierFree)

	rr := httptest.NewRecorder()
	app.TTSSpeak(rr, speakReq(t, "user-1", "   "))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decodeSpeak(t, rr)
	if resp.DenyReason != string(domain.DenyEmptyInput) {
		t.Fatalf("deny reason = %q, want EmptyInput", resp.DenyReason)
	}
	if log.Len() != 0 {
		t.Fatalf("empty input consumed quota")
	}
}

func TestTTSSpeakPremiumTooLong(t *testing.T) {
	app, log := newTestApp(t, domain.TierPremium)

	rr := httptest.NewRecorder()
	app.TTSSpeak(rr, speakReq(t, "user-1", strings.Repeat("a", 2001)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decodeSpeak(t, rr)
	if resp.DenyReason != string(domain.DenyTextTooLong) || resp.Remaining != 50 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if log.Len() != 0 {
		t.Fatalf("denied request consumed quota")
	}
}

func TestTTSSpeakRequiresUser(t *testing.T) {
	app, _ := newTestApp(t, domain.TierFree)

	body := bytes.NewReader([]byte(`{"text":"hi"}`))
	rr := httptest.NewRecorder()
	app.TTSSpeak(rr, httptest.NewRequest("POST", "/v1/tts/speak", body))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

type downResolver struct{}

func (downResolver) ResolveTier(context.Context, string) (domain.Tier, error) {
	return "", domain.ErrResolutionFailure
}

func TestTTSSpeakResolutionFailure(t *testing.T) {
	log := repo.NewMemoryUsageLog()
	g := gate.New(gate.Options{
		Resolver: downResolver{},
		UsageLog: log,
		Logger:   zerolog.Nop(),
	})
	sessions := speech.NewSessions(speech.NewSimulator(time.Microsecond), zerolog.Nop())
	app := NewApp(nil, g, sessions, zerolog.Nop())

	rr := httptest.NewRecorder()
	app.TTSSpeak(rr, speakReq(t, "user-1", "hello"))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	resp := decodeSpeak(t, rr)
	if resp.Admitted || resp.DenyReason != string(domain.DenyResolutionError) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if log.Len() != 0 {
		t.Fatalf("failed resolution consumed quota")
	}
}

func TestTTSUsageStanding(t *testing.T) {
	app, _ := newTestApp(t, domain.TierFree)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		app.TTSSpeak(rr, speakReq(t, "user-1", "hello"))
		if rr.Code != http.StatusOK {
			t.Fatalf("speak %d status = %d", i+1, rr.Code)
		}
	}

	req := httptest.NewRequest("GET", "/v1/tts/usage", nil)
	req = req.WithContext(middleware.ContextWithUserID(context.Background(), "user-1"))
	rr := httptest.NewRecorder()
	app.TTSUsage(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("usage status = %d body %s", rr.Code, rr.Body.String())
	}

	var resp usageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if resp.Tier != "free" || resp.Used != 2 || resp.Remaining != 3 {
		t.Fatalf("unexpected usage: %+v", resp)
	}
	if resp.DailyLimit != 5 || resp.CharLimit != 200 {
		t.Fatalf("unexpected limits: %+v", resp)
	}
}

func TestTTSStopWhileIdle(t *testing.T) {
	app, _ := newTestApp(t, domain.TierFree)

	req := httptest.NewRequest("POST", "/v1/tts/stop", nil)
	req = req.WithContext(middleware.ContextWithUserID(context.Background(), "user-1"))
	rr := httptest.NewRecorder()
	app.TTSStop(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["playback"] != "idle" {
		t.Fatalf("playback = %q, want idle", resp["playback"])
	}
}
