package usecase

import (
	"context"
	"sync"
	"time"

	"WhaleWhisperer/pkg/logger"
	"WhaleWhisperer/pkg/queue"
)

// TranscriptMessageType is the queue message type for flushed
// transcript batches.
const TranscriptMessageType = "transcript.batch"

// TranscriptEntry is one utterance/response exchange.
type TranscriptEntry struct {
	User       string    `json:"user"`
	Utterance  string    `json:"utterance"`
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	Response   string    `json:"response"`
	At         time.Time `json:"at"`
}

// TranscriptLog buffers spoken exchanges in memory and flushes them
// in batches, either on an interval or when the buffer fills.
type TranscriptLog struct {
	logger    *logger.Logger
	publisher queue.QueueService
	interval  time.Duration
	threshold int

	mu      sync.Mutex
	entries []TranscriptEntry
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewTranscriptLog(lgr *logger.Logger, publisher queue.QueueService, interval time.Duration, threshold int) *TranscriptLog {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if threshold <= 0 {
		threshold = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &TranscriptLog{
		logger:    lgr,
		publisher: publisher,
		interval:  interval,
		threshold: threshold,
		ctx:       ctx,
		cancel:    cancel,
	}
	t.wg.Add(1)
	go t.periodicFlush()
	return t
}

// Record buffers one exchange. Triggers a flush when the buffer hits
// the threshold.
func (t *TranscriptLog) Record(entry TranscriptEntry) {
	entry.At = time.Now()

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	full := len(t.entries) >= t.threshold
	t.mu.Unlock()

	if full {
		t.Flush()
	}
}

func (t *TranscriptLog) periodicFlush() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Flush()
		case <-t.ctx.Done():
			t.Flush()
			return
		}
	}
}

// Flush publishes the buffered batch, if any.
func (t *TranscriptLog) Flush() {
	t.mu.Lock()
	if len(t.entries) == 0 {
		t.mu.Unlock()
		return
	}
	batch := t.entries
	t.entries = nil
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.publisher.PublishMessage(ctx, TranscriptMessageType, batch); err != nil {
		t.logger.Warn("failed to flush transcript batch",
			logger.Error(err), logger.Int("entries", len(batch)))
	}
}

// Close flushes whatever is buffered and stops the timer.
func (t *TranscriptLog) Close() {
	t.cancel()
	t.wg.Wait()
}
