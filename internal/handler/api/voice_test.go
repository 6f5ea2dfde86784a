package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "WhaleWhisperer/internal/domain/models"
	"WhaleWhisperer/internal/usecase"
	xlogger "WhaleWhisperer/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubStore struct {
	portfolios map[string]*models.Portfolio
}

func (s *stubStore) Get(_ context.Context, user string) (*models.Portfolio, error) {
	if p, ok := s.portfolios[user]; ok {
		return p, nil
	}
	return &models.Portfolio{User: user, Balance: 10000}, nil
}

func (s *stubStore) Save(_ context.Context, p *models.Portfolio) error {
	s.portfolios[p.User] = p
	return nil
}

func (s *stubStore) Reset(_ context.Context, user string) (*models.Portfolio, error) {
	p := &models.Portfolio{User: user, Balance: 10000}
	s.portfolios[user] = p
	return p, nil
}

func (s *stubStore) Leaderboard(context.Context, int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func (s *stubStore) Close() error { return nil }

type stubMarket struct {
	tokens []models.Token
}

func (m *stubMarket) Catalog() []models.Token { return m.tokens }

func (m *stubMarket) Price(symbol string) (float64, bool) {
	for _, t := range m.tokens {
		if t.Symbol == symbol {
			return t.Price, true
		}
	}
	return 0, false
}

type stubMetrics struct{}

func (stubMetrics) RecordCommand(string, float64)      {}
func (stubMetrics) RecordConfirmation(string)          {}
func (stubMetrics) RecordTradeExecuted(string, string) {}
func (stubMetrics) RecordLastPrice(string, float64)    {}
func (stubMetrics) RecordError(string)                 {}
func (stubMetrics) RecordLatency(string, float64)      {}

// failingTranscriber simulates a speech service outage.
type failingTranscriber struct{}

func (failingTranscriber) Transcribe(context.Context, string) (string, error) {
	return "", errors.New("speech service unavailable")
}

func newVoiceTestHandler(t *testing.T) *VoiceHandler {
	t.Helper()
	lgr, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	market := &stubMarket{tokens: []models.Token{
		{ID: "pepe", Name: "Pepe Coin", Symbol: "PEPE", DisplayName: "Pepe", Price: 0.5},
	}}
	store := &stubStore{portfolios: make(map[string]*models.Portfolio)}
	exec := usecase.NewTradeExecutor(lgr, store, nil, market, stubMetrics{})
	sessions := usecase.NewSessionManager(lgr, exec, market, stubMetrics{}, time.Minute, 30*time.Second)
	return NewVoiceHandler(lgr, sessions, failingTranscriber{}, nil, stubMetrics{})
}

func postVoice(t *testing.T, h func(echo.Context) error, path, payload string) (*httptest.ResponseRecorder, models.UtteranceResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	var body struct {
		Status int                      `json:"status"`
		Data   models.UtteranceResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusOK {
		t.Fatalf("status %d, body %s", body.Status, rec.Body.String())
	}
	return rec, body.Data
}

func TestUtteranceTranscriptionFailureIsSilence(t *testing.T) {
	h := newVoiceTestHandler(t)

	_, data := postVoice(t, h.Utterance, "/api/v1/voice/utterance",
		`{"user":"alice","audio":"Zm9v"}`)
	if data.Response != "I didn't catch that." {
		t.Fatalf("response = %q", data.Response)
	}
	if data.AwaitingConfirm {
		t.Fatalf("silence must not await confirmation")
	}
	if data.Transcript != "" {
		t.Fatalf("transcript = %q, want empty", data.Transcript)
	}
}

func TestConfirmTranscriptionFailureCancelsNothing(t *testing.T) {
	h := newVoiceTestHandler(t)

	// park a command by text, then lose the confirmation audio
	_, data := postVoice(t, h.Utterance, "/api/v1/voice/utterance",
		`{"user":"alice","text":"buy 100 dollars of pepe"}`)
	if !data.AwaitingConfirm {
		t.Fatalf("expected a pending confirmation")
	}

	_, data = postVoice(t, h.Confirm, "/api/v1/voice/confirm",
		`{"user":"alice","audio":"Zm9v"}`)
	if data.AwaitingConfirm {
		t.Fatalf("garbled confirmation must not keep the trade live")
	}
	if !strings.Contains(data.Response, "cancelled") {
		t.Fatalf("response = %q", data.Response)
	}
}
