package api

import (
	"time"

	models "WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/internal/service/ratelimit"
	"WhaleWhisperer/internal/usecase"
	xhttp "WhaleWhisperer/pkg/http"
	xlogger "WhaleWhisperer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// VoiceHandler exposes the utterance and confirmation endpoints.
type VoiceHandler struct {
	logger      *xlogger.Logger
	sessions    *usecase.SessionManager
	transcriber domrepo.Transcriber
	transcripts *usecase.TranscriptLog
	metrics     domrepo.Metrics
	limiter     *ratelimit.Limiter
}

func NewVoiceHandler(logger *xlogger.Logger, sessions *usecase.SessionManager, transcriber domrepo.Transcriber, transcripts *usecase.TranscriptLog, metrics domrepo.Metrics) *VoiceHandler {
	return &VoiceHandler{
		logger:      logger,
		sessions:    sessions,
		transcriber: transcriber,
		transcripts: transcripts,
		metrics:     metrics,
		limiter:     ratelimit.New(),
	}
}

func (h *VoiceHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/voice")
	g.POST("/utterance", h.Utterance)
	g.POST("/confirm", h.Confirm)
}

func (h *VoiceHandler) Utterance(c echo.Context) error {
	start := time.Now()
	req := &models.UtteranceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.limiter.AllowUser(req.User) {
		h.metrics.RecordError("rate_limited")
		return xhttp.TooManyRequestsResponse(c, "slow down, one command at a time")
	}

	ctx := c.Request().Context()
	text := h.resolveTranscript(c, req.User, req.Text, req.Audio)

	res, err := h.sessions.HandleUtterance(ctx, req.User, text)
	if err != nil {
		h.logger.Error("utterance usecase error", xlogger.Error(err), xlogger.String("user", req.User))
		return xhttp.AppErrorResponse(c, err)
	}
	h.metrics.RecordLatency("voice_utterance", time.Since(start).Seconds())
	h.recordTranscript(req.User, text, res)

	return xhttp.SuccessResponse(c, &models.UtteranceResponse{
		Intent:           string(res.Command.Intent),
		TokenSymbol:      res.Command.TokenSymbol,
		Confidence:       res.Command.Confidence,
		AwaitingConfirm:  res.AwaitingConfirm,
		Response:         res.Response,
		ConfirmationText: res.ConfirmationText,
		Transcript:       text,
	})
}

func (h *VoiceHandler) Confirm(c echo.Context) error {
	start := time.Now()
	req := &models.ConfirmRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	text := h.resolveTranscript(c, req.User, req.Text, req.Audio)

	res, err := h.sessions.HandleConfirmation(ctx, req.User, text)
	if err != nil {
		h.logger.Error("confirm usecase error", xlogger.Error(err), xlogger.String("user", req.User))
		return xhttp.AppErrorResponse(c, err)
	}
	h.metrics.RecordLatency("voice_confirm", time.Since(start).Seconds())
	h.recordTranscript(req.User, text, res)

	return xhttp.SuccessResponse(c, &models.UtteranceResponse{
		Intent:           string(res.Command.Intent),
		TokenSymbol:      res.Command.TokenSymbol,
		Confidence:       res.Command.Confidence,
		AwaitingConfirm:  res.AwaitingConfirm,
		Response:         res.Response,
		ConfirmationText: res.ConfirmationText,
		Transcript:       text,
	})
}

func (h *VoiceHandler) recordTranscript(user, text string, res *usecase.CommandResult) {
	if h.transcripts == nil {
		return
	}
	h.transcripts.Record(usecase.TranscriptEntry{
		User:       user,
		Utterance:  text,
		Intent:     string(res.Command.Intent),
		Confidence: res.Command.Confidence,
		Response:   res.Response,
	})
}

// resolveTranscript prefers supplied text, falling back to STT on the
// attached audio. Transcription failures degrade to an empty
// transcript; the session layer treats that as silence, so a flaky
// speech service can never fail the request.
func (h *VoiceHandler) resolveTranscript(c echo.Context, user, text, audio string) string {
	if text != "" || audio == "" {
		return text
	}
	if h.transcriber == nil {
		return ""
	}
	transcript, err := h.transcriber.Transcribe(c.Request().Context(), audio)
	if err != nil {
		h.metrics.RecordError("transcribe")
		h.logger.Warn("transcription failed", xlogger.Error(err), xlogger.String("user", user))
		return ""
	}
	return transcript
}
