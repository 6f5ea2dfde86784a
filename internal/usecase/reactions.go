package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"sync"
	"time"

	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/pkg/cache"
	"WhaleWhisperer/pkg/logger"
	"WhaleWhisperer/pkg/queue"
)

// Commentary lines for big portfolio swings. Taunts fire on losses,
// appreciations on gains.
var (
	taunts = []string{
		"Ouch! That portfolio is looking rough. Maybe stick to a savings account?",
		"Have you considered that the charts go up too?",
		"Red everywhere. Bold strategy, let's see how it plays out.",
		"Your bags are getting heavy. Diamond hands or denial?",
		"That dip wasn't the buy-the-dip kind, huh.",
	}
	appreciations = []string{
		"Look at you go! Wall Street should be taking notes.",
		"Green candles everywhere! Someone's feeling lucky.",
		"Your portfolio is mooning! Don't forget the little people.",
		"Nice gains! Maybe you do know what you're doing.",
		"Number go up! The prophecy is fulfilled.",
	}
)

// ReactionSpeechType is the queue message type for reaction TTS jobs.
const ReactionSpeechType = "reaction.speech"

// ReactionSpeechPayload is the queued request to synthesize one
// commentary line for a user.
type ReactionSpeechPayload struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// ReactionEngine watches per-user net worth and queues spoken
// commentary when it swings past the threshold. A per-user cooldown
// keeps the commentary from becoming a heckler.
type ReactionEngine struct {
	logger       *logger.Logger
	queue        queue.QueueService
	metrics      domrepo.Metrics
	thresholdPct float64
	cooldown     time.Duration

	mu        sync.Mutex
	baselines map[string]float64
	lastFired map[string]time.Time
	rng       *rand.Rand
}

func NewReactionEngine(lgr *logger.Logger, q queue.QueueService, metrics domrepo.Metrics, thresholdPct float64, cooldown time.Duration) *ReactionEngine {
	return &ReactionEngine{
		logger:       lgr,
		queue:        q,
		metrics:      metrics,
		thresholdPct: thresholdPct,
		cooldown:     cooldown,
		baselines:    make(map[string]float64),
		lastFired:    make(map[string]time.Time),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Observe records a fresh net-worth sample for user and queues a
// reaction if it moved past the threshold since the last trigger.
func (r *ReactionEngine) Observe(ctx context.Context, user string, netWorth float64) {
	if netWorth <= 0 {
		return
	}

	r.mu.Lock()
	base, ok := r.baselines[user]
	if !ok || base <= 0 {
		r.baselines[user] = netWorth
		r.mu.Unlock()
		return
	}
	changePct := (netWorth - base) / base * 100
	if changePct < r.thresholdPct && changePct > -r.thresholdPct {
		r.mu.Unlock()
		return
	}
	if time.Since(r.lastFired[user]) < r.cooldown {
		r.mu.Unlock()
		return
	}
	r.lastFired[user] = time.Now()
	r.baselines[user] = netWorth

	var line string
	if changePct > 0 {
		line = appreciations[r.rng.Intn(len(appreciations))]
	} else {
		line = taunts[r.rng.Intn(len(taunts))]
	}
	r.mu.Unlock()

	if err := r.queue.PublishMessage(ctx, ReactionSpeechType, ReactionSpeechPayload{User: user, Text: line}); err != nil {
		r.metrics.RecordError("reaction_enqueue")
		r.logger.Error("failed to queue reaction", logger.Error(err), logger.String("user", user))
		return
	}
	r.logger.Debug("reaction queued", logger.String("user", user), logger.String("text", line))
}

// ReactionSpeechJob synthesizes queued commentary lines and caches
// the audio so clients can fetch it. Identical lines share one cache
// entry keyed by a text digest.
type ReactionSpeechJob struct {
	logger      *logger.Logger
	synthesizer domrepo.Synthesizer
	cache       cache.Service
	ttl         time.Duration
}

func NewReactionSpeechJob(lgr *logger.Logger, synth domrepo.Synthesizer, cacheSvc cache.Service, ttl time.Duration) *ReactionSpeechJob {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReactionSpeechJob{
		logger:      lgr,
		synthesizer: synth,
		cache:       cacheSvc,
		ttl:         ttl,
	}
}

func (j *ReactionSpeechJob) Name() string { return "reaction-speech" }

func (j *ReactionSpeechJob) Type() string { return ReactionSpeechType }

func (j *ReactionSpeechJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[ReactionSpeechPayload](payload)
	if err != nil {
		return fmt.Errorf("parse reaction payload: %w", err)
	}
	if req.Text == "" {
		return nil
	}

	audioKey := speechCacheKey(req.Text)
	var cached string
	if err := j.cache.Get(ctx, audioKey, &cached); err == nil && cached != "" {
		// already synthesized, just repoint the user's slot
		return j.cache.Set(ctx, userSpeechKey(req.User), cached, j.ttl)
	}

	audio, err := j.synthesizer.Synthesize(ctx, req.Text)
	if err != nil {
		return fmt.Errorf("synthesize reaction: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(audio)
	if err := j.cache.Set(ctx, audioKey, encoded, j.ttl); err != nil {
		j.logger.Warn("failed to cache reaction audio", logger.Error(err))
	}
	return j.cache.Set(ctx, userSpeechKey(req.User), encoded, j.ttl)
}

func speechCacheKey(text string) string {
	return cache.GenerateKey("speech:line", cache.HashKey(text))
}

func userSpeechKey(user string) string {
	return cache.GenerateKey("speech:user", user)
}
