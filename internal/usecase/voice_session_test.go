package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"WhaleWhisperer/internal/service/voice"
)

func newTestSessionManager(t *testing.T, timeout, reminder time.Duration, opts ...SessionManagerOption) *SessionManager {
	t.Helper()
	exec, _ := newTestExecutor(t)
	return NewSessionManager(testLogger(t), exec, testMarket(), nopMetrics{}, timeout, reminder, opts...)
}

func TestUtteranceParksMoneyMovingCommand(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)

	res, err := m.HandleUtterance(context.Background(), "alice", "buy 100 dollars of pepe")
	if err != nil {
		t.Fatalf("utterance: %v", err)
	}
	if !res.AwaitingConfirm {
		t.Fatalf("expected the command to await confirmation")
	}
	if res.ConfirmationText != "Buy $100 worth of PEPE?" {
		t.Fatalf("prompt = %q", res.ConfirmationText)
	}
	if _, ok := m.Pending("alice"); !ok {
		t.Fatalf("expected a pending command for alice")
	}
}

func TestConfirmExecutesPending(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	res, err := m.HandleConfirmation(ctx, "alice", "yes do it")
	if err != nil {
		t.Fatalf("confirmation: %v", err)
	}
	if !strings.Contains(res.Response, "Bought") {
		t.Fatalf("unexpected response: %q", res.Response)
	}
	if _, ok := m.Pending("alice"); ok {
		t.Fatalf("pending command should be cleared after execution")
	}
}

func TestCancelDiscardsPending(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "sell all my pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	res, err := m.HandleConfirmation(ctx, "alice", "no, cancel that")
	if err != nil {
		t.Fatalf("confirmation: %v", err)
	}
	if !strings.Contains(res.Response, "cancelled") {
		t.Fatalf("unexpected response: %q", res.Response)
	}
	if _, ok := m.Pending("alice"); ok {
		t.Fatalf("pending command should be cleared after cancel")
	}
}

func TestModifyRepromptsWithNewAmount(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	res, err := m.HandleConfirmation(ctx, "alice", "make it 50 dollars")
	if err != nil {
		t.Fatalf("confirmation: %v", err)
	}
	if !res.AwaitingConfirm {
		t.Fatalf("modify should keep the command pending")
	}
	if res.ConfirmationText != "Buy $50 worth of PEPE?" {
		t.Fatalf("prompt = %q", res.ConfirmationText)
	}

	pending, ok := m.Pending("alice")
	if !ok {
		t.Fatalf("expected a pending command after modify")
	}
	if pending.Amount == nil || pending.Amount.Value != 50 {
		t.Fatalf("pending amount = %+v, want 50", pending.Amount)
	}
}

func TestAmbiguousConfirmationCancels(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	res, err := m.HandleConfirmation(ctx, "alice", "what's the weather like")
	if err != nil {
		t.Fatalf("confirmation: %v", err)
	}
	if !strings.Contains(res.Response, "cancelled") {
		t.Fatalf("ambiguous confirmation must cancel, got %q", res.Response)
	}
}

func TestNewUtteranceReplacesPending(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("first utterance: %v", err)
	}
	if _, err := m.HandleUtterance(ctx, "alice", "buy 200 dollars of bonk"); err != nil {
		t.Fatalf("second utterance: %v", err)
	}

	pending, ok := m.Pending("alice")
	if !ok {
		t.Fatalf("expected a pending command")
	}
	if pending.TokenSymbol != "BONK" {
		t.Fatalf("pending symbol = %q, want BONK", pending.TokenSymbol)
	}
}

func TestEmptyTranscriptCancelsPending(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	if _, err := m.HandleUtterance(ctx, "alice", "   "); err != nil {
		t.Fatalf("blank utterance: %v", err)
	}
	if _, ok := m.Pending("alice"); ok {
		t.Fatalf("blank transcript must drop the pending command")
	}
}

func TestPendingExpiresAfterTimeout(t *testing.T) {
	m := newTestSessionManager(t, 30*time.Millisecond, 10*time.Millisecond)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := m.Pending("alice"); !ok {
			res, err := m.HandleConfirmation(ctx, "alice", "yes")
			if err != nil {
				t.Fatalf("confirmation: %v", err)
			}
			if !strings.Contains(res.Response, "nothing waiting") {
				t.Fatalf("confirming after expiry should be a no-op, got %q", res.Response)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("pending command never expired")
}

func TestModifyDoesNotExtendTimeout(t *testing.T) {
	m := newTestSessionManager(t, 60*time.Millisecond, time.Hour)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := m.HandleConfirmation(ctx, "alice", "make it 50 dollars"); err != nil {
		t.Fatalf("modify: %v", err)
	}
	// the original deadline still applies
	time.Sleep(60 * time.Millisecond)
	if _, ok := m.Pending("alice"); ok {
		t.Fatalf("modify must not extend the confirmation deadline")
	}
}

func TestReminderFires(t *testing.T) {
	fired := make(chan string, 1)
	m := newTestSessionManager(t, time.Minute, 20*time.Millisecond,
		WithReminderFunc(func(user, prompt string) {
			select {
			case fired <- prompt:
			default:
			}
		}))

	if _, err := m.HandleUtterance(context.Background(), "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}

	select {
	case prompt := <-fired:
		if !strings.Contains(prompt, "Buy $100 worth of PEPE?") {
			t.Fatalf("reminder prompt = %q", prompt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("reminder never fired")
	}
}

func TestHelpAndUnknownRunImmediately(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	res, err := m.HandleUtterance(ctx, "alice", "help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if res.AwaitingConfirm {
		t.Fatalf("help must not require confirmation")
	}
	if !strings.Contains(res.Response, "buy") {
		t.Fatalf("help response = %q", res.Response)
	}

	res, err = m.HandleUtterance(ctx, "alice", "zzqx qwerty")
	if err != nil {
		t.Fatalf("unknown: %v", err)
	}
	if res.Command.Intent != voice.IntentUnknown {
		t.Fatalf("intent = %q, want unknown", res.Command.Intent)
	}
	if res.AwaitingConfirm {
		t.Fatalf("unknown must not require confirmation")
	}
}

func TestConfirmWithoutAmountReprompts(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	res, err := m.HandleUtterance(ctx, "alice", "buy some pepe")
	if err != nil {
		t.Fatalf("utterance: %v", err)
	}
	if res.ConfirmationText != "Buy PEPE? (Please specify an amount)" {
		t.Fatalf("prompt = %q", res.ConfirmationText)
	}

	// saying yes to a command with no amount cannot execute anything
	res, err = m.HandleConfirmation(ctx, "alice", "yes")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !res.AwaitingConfirm {
		t.Fatalf("amount-less confirm must keep awaiting")
	}
	if !strings.Contains(res.Response, "Please specify an amount") {
		t.Fatalf("response = %q", res.Response)
	}
	if _, ok := m.Pending("alice"); !ok {
		t.Fatalf("pending command must survive an amount-less confirm")
	}

	// supplying the amount completes the flow
	res, err = m.HandleConfirmation(ctx, "alice", "make it 100 dollars")
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if res.ConfirmationText != "Buy $100 worth of PEPE?" {
		t.Fatalf("re-prompt = %q", res.ConfirmationText)
	}
	res, err = m.HandleConfirmation(ctx, "alice", "yes")
	if err != nil {
		t.Fatalf("final confirm: %v", err)
	}
	if !strings.Contains(res.Response, "Bought") {
		t.Fatalf("response = %q", res.Response)
	}
}

func TestStaleConfirmCannotExecute(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	m.mu.Lock()
	gen := m.sessions["alice"].generation
	m.mu.Unlock()

	// timeout lands after the confirm path already read the slot
	m.expire("alice", gen)
	if m.clear("alice", gen) {
		t.Fatalf("clear must report the session gone after expiry")
	}

	// a replacement parked in that window must survive the stale clear
	if _, err := m.HandleUtterance(ctx, "alice", "buy 50 dollars of bonk"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	if m.clear("alice", gen) {
		t.Fatalf("stale generation cleared a fresh session")
	}
	if _, ok := m.Pending("alice"); !ok {
		t.Fatalf("fresh pending command was lost")
	}
}

func TestShutdownDropsPendingSessions(t *testing.T) {
	m := newTestSessionManager(t, time.Minute, 30*time.Second)
	ctx := context.Background()

	if _, err := m.HandleUtterance(ctx, "alice", "buy 100 dollars of pepe"); err != nil {
		t.Fatalf("utterance: %v", err)
	}
	if _, err := m.HandleUtterance(ctx, "bob", "sell all my bonk"); err != nil {
		t.Fatalf("utterance: %v", err)
	}

	m.Shutdown()

	if _, ok := m.Pending("alice"); ok {
		t.Fatalf("alice still pending after shutdown")
	}
	if _, ok := m.Pending("bob"); ok {
		t.Fatalf("bob still pending after shutdown")
	}
}
