package usecase

import (
	"context"
	"testing"
	"time"
)

type capturingQueue struct {
	types    []string
	payloads []interface{}
}

func (q *capturingQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	q.types = append(q.types, msgType)
	q.payloads = append(q.payloads, payload)
	return nil
}

func newTestReactionEngine(t *testing.T, q *capturingQueue) *ReactionEngine {
	t.Helper()
	return NewReactionEngine(testLogger(t), q, nopMetrics{}, 5.0, time.Minute)
}

func TestObserveFirstSampleSetsBaseline(t *testing.T) {
	q := &capturingQueue{}
	eng := newTestReactionEngine(t, q)

	eng.Observe(context.Background(), "whale", 10000)
	if len(q.types) != 0 {
		t.Fatalf("baseline sample must not fire a reaction")
	}
}

func TestObserveSmallMoveStaysQuiet(t *testing.T) {
	q := &capturingQueue{}
	eng := newTestReactionEngine(t, q)

	eng.Observe(context.Background(), "whale", 10000)
	eng.Observe(context.Background(), "whale", 10200) // +2%, below 5%
	if len(q.types) != 0 {
		t.Fatalf("sub-threshold move fired a reaction")
	}
}

func TestObserveLossFiresTaunt(t *testing.T) {
	q := &capturingQueue{}
	eng := newTestReactionEngine(t, q)

	eng.Observe(context.Background(), "whale", 10000)
	eng.Observe(context.Background(), "whale", 9000) // -10%
	if len(q.types) != 1 {
		t.Fatalf("expected one reaction, got %d", len(q.types))
	}
	if q.types[0] != ReactionSpeechType {
		t.Fatalf("message type %q", q.types[0])
	}
	p, ok := q.payloads[0].(ReactionSpeechPayload)
	if !ok {
		t.Fatalf("payload type %T", q.payloads[0])
	}
	if p.User != "whale" || p.Text == "" {
		t.Fatalf("payload %+v", p)
	}
	found := false
	for _, line := range taunts {
		if line == p.Text {
			found = true
		}
	}
	if !found {
		t.Fatalf("loss reaction %q is not a taunt", p.Text)
	}
}

func TestObserveGainFiresAppreciation(t *testing.T) {
	q := &capturingQueue{}
	eng := newTestReactionEngine(t, q)

	eng.Observe(context.Background(), "whale", 10000)
	eng.Observe(context.Background(), "whale", 12000) // +20%
	if len(q.types) != 1 {
		t.Fatalf("expected one reaction, got %d", len(q.types))
	}
	p := q.payloads[0].(ReactionSpeechPayload)
	found := false
	for _, line := range appreciations {
		if line == p.Text {
			found = true
		}
	}
	if !found {
		t.Fatalf("gain reaction %q is not an appreciation", p.Text)
	}
}

func TestObserveCooldownSuppressesRepeatFires(t *testing.T) {
	q := &capturingQueue{}
	eng := newTestReactionEngine(t, q)

	eng.Observe(context.Background(), "whale", 10000)
	eng.Observe(context.Background(), "whale", 9000)
	eng.Observe(context.Background(), "whale", 8000) // still cooling down
	if len(q.types) != 1 {
		t.Fatalf("cooldown violated, %d reactions fired", len(q.types))
	}
}

func TestObserveRebaselinesAfterFire(t *testing.T) {
	q := &capturingQueue{}
	eng := newTestReactionEngine(t, q)

	eng.Observe(context.Background(), "whale", 10000)
	eng.Observe(context.Background(), "whale", 9000)

	eng.mu.Lock()
	base := eng.baselines["whale"]
	eng.mu.Unlock()
	if base != 9000 {
		t.Fatalf("baseline after fire = %v, want 9000", base)
	}
}
