package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/internal/service/voice"
	"WhaleWhisperer/pkg/logger"
)

// CommandResult is what a single utterance or confirmation produced.
type CommandResult struct {
	Command          voice.InterpretedCommand `json:"command"`
	Response         string                   `json:"response"`
	AwaitingConfirm  bool                     `json:"awaitingConfirm"`
	ConfirmationText string                   `json:"confirmationText,omitempty"`
}

// session is one user's pending confirmation state. Generation guards
// against stale timer fires after the slot has been replaced.
type session struct {
	pending    voice.InterpretedCommand
	generation uint64
	timeout    *time.Timer
	reminder   *time.Timer
}

// SessionManagerOption configures a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithReminderFunc sets the callback invoked when a pending
// confirmation has gone unanswered for the reminder interval.
func WithReminderFunc(fn func(user, prompt string)) SessionManagerOption {
	return func(m *SessionManager) {
		m.remindFn = fn
	}
}

// SessionManager drives the confirmation dialogue. Each user has at
// most one pending command; a new utterance always replaces it. The
// pending slot expires on a hard timeout that modifications do not
// extend.
type SessionManager struct {
	logger   *logger.Logger
	executor *TradeExecutor
	market   priceSource
	metrics  domrepo.Metrics

	confirmTimeout time.Duration
	reminderAfter  time.Duration
	remindFn       func(user, prompt string)

	mu       sync.Mutex
	sessions map[string]*session
	gen      uint64
}

// NewSessionManager wires the dialogue driver.
func NewSessionManager(lgr *logger.Logger, executor *TradeExecutor, market priceSource, metrics domrepo.Metrics, confirmTimeout, reminderAfter time.Duration, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		logger:         lgr,
		executor:       executor,
		market:         market,
		metrics:        metrics,
		confirmTimeout: confirmTimeout,
		reminderAfter:  reminderAfter,
		sessions:       make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleUtterance interprets one free-form utterance. A blank
// transcript cancels whatever is pending. Commands that need
// confirmation park in the session slot, replacing any previous
// pending command without executing it.
func (m *SessionManager) HandleUtterance(ctx context.Context, user, text string) (*CommandResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		m.cancelPending(user, "empty_transcript")
		return &CommandResult{Response: "I didn't catch that."}, nil
	}

	cmd := voice.Interpret(text, m.market.Catalog())
	m.metrics.RecordCommand(string(cmd.Intent), cmd.Confidence)

	if !cmd.NeedsConfirmation {
		// drop any stale pending command before acting
		m.cancelPending(user, "superseded")
		return m.runImmediate(ctx, user, cmd)
	}

	prompt := voice.ConfirmationText(cmd)
	m.park(user, cmd)
	return &CommandResult{
		Command:          cmd,
		Response:         prompt,
		AwaitingConfirm:  true,
		ConfirmationText: prompt,
	}, nil
}

// HandleConfirmation resolves the pending command with a follow-up
// utterance. Confirm executes, cancel discards, modify swaps the
// amount and re-prompts without extending the hard timeout.
func (m *SessionManager) HandleConfirmation(ctx context.Context, user, text string) (*CommandResult, error) {
	m.mu.Lock()
	s, ok := m.sessions[user]
	if !ok {
		m.mu.Unlock()
		return &CommandResult{Response: "There's nothing waiting for confirmation."}, nil
	}
	cmd := s.pending
	gen := s.generation
	m.mu.Unlock()

	resp := voice.ParseConfirmation(strings.TrimSpace(text))
	switch resp.Kind {
	case voice.ResponseConfirm:
		// a yes to an amount-less command re-asks, it cannot execute
		if cmd.Amount == nil && !cmd.SellAll {
			prompt := voice.ConfirmationText(cmd)
			m.metrics.RecordConfirmation("needs_amount")
			return &CommandResult{
				Command:          cmd,
				Response:         prompt,
				AwaitingConfirm:  true,
				ConfirmationText: prompt,
			}, nil
		}
		if !m.clear(user, gen) {
			// timed out between parse and clear
			return &CommandResult{Response: "That command expired. Please start over."}, nil
		}
		m.metrics.RecordConfirmation("confirmed")
		answer, err := m.executor.Execute(ctx, user, cmd.Action())
		if err != nil {
			m.metrics.RecordError("execute")
			return nil, err
		}
		return &CommandResult{Command: cmd, Response: answer}, nil

	case voice.ResponseModify:
		modified := cmd.WithAmount(resp.Amount)
		prompt := voice.ConfirmationText(modified)
		if !m.replacePending(user, modified) {
			// timed out between parse and swap
			return &CommandResult{Response: "That command expired. Please start over."}, nil
		}
		m.metrics.RecordConfirmation("modified")
		return &CommandResult{
			Command:          modified,
			Response:         prompt,
			AwaitingConfirm:  true,
			ConfirmationText: prompt,
		}, nil

	default:
		m.clear(user, gen)
		m.metrics.RecordConfirmation("cancelled")
		return &CommandResult{Command: cmd, Response: "Trade cancelled. Your money is safe... for now."}, nil
	}
}

// Pending reports whether user has a command awaiting confirmation.
func (m *SessionManager) Pending(user string) (voice.InterpretedCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[user]
	if !ok {
		return voice.InterpretedCommand{}, false
	}
	return s.pending, true
}

func (m *SessionManager) runImmediate(ctx context.Context, user string, cmd voice.InterpretedCommand) (*CommandResult, error) {
	switch cmd.Intent {
	case voice.IntentCheck, voice.IntentReset:
		answer, err := m.executor.Execute(ctx, user, cmd.Action())
		if err != nil {
			m.metrics.RecordError("execute")
			return nil, err
		}
		return &CommandResult{Command: cmd, Response: answer}, nil
	case voice.IntentHelp:
		return &CommandResult{
			Command:  cmd,
			Response: "You can say things like: buy 100 dollars of Pepe, sell all my Dogecoin, check my portfolio, or reset my account.",
		}, nil
	default:
		return &CommandResult{
			Command:  cmd,
			Response: "I didn't understand that command. Try something like: buy 50 dollars of Bonk.",
		}, nil
	}
}

// park installs cmd as the pending command, replacing anything there,
// and arms the timeout and reminder timers.
func (m *SessionManager) park(user string, cmd voice.InterpretedCommand) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, had := m.sessions[user]; had {
		old.stopTimers()
		m.metrics.RecordConfirmation("superseded")
	}

	m.gen++
	s := &session{pending: cmd, generation: m.gen}
	gen := s.generation
	s.timeout = time.AfterFunc(m.confirmTimeout, func() {
		m.expire(user, gen)
	})
	s.reminder = time.AfterFunc(m.reminderAfter, func() {
		m.remind(user, gen)
	})
	m.sessions[user] = s
}

// replacePending swaps the command in-place for a modify. The hard
// timeout keeps its original deadline; only the reminder restarts.
func (m *SessionManager) replacePending(user string, cmd voice.InterpretedCommand) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[user]
	if !ok {
		return false
	}
	s.pending = cmd
	if s.reminder != nil {
		s.reminder.Stop()
	}
	gen := s.generation
	s.reminder = time.AfterFunc(m.reminderAfter, func() {
		m.remind(user, gen)
	})
	return true
}

func (m *SessionManager) expire(user string, gen uint64) {
	m.mu.Lock()
	s, ok := m.sessions[user]
	if !ok || s.generation != gen {
		m.mu.Unlock()
		return
	}
	s.stopTimers()
	delete(m.sessions, user)
	m.mu.Unlock()

	m.metrics.RecordConfirmation("timeout")
	m.logger.Info("confirmation timed out", logger.String("user", user))
}

func (m *SessionManager) remind(user string, gen uint64) {
	m.mu.Lock()
	s, ok := m.sessions[user]
	if !ok || s.generation != gen {
		m.mu.Unlock()
		return
	}
	prompt := voice.ConfirmationText(s.pending)
	m.mu.Unlock()

	if m.remindFn != nil {
		m.remindFn(user, "Still there? "+prompt)
	}
}

func (m *SessionManager) cancelPending(user, reason string) {
	m.mu.Lock()
	s, ok := m.sessions[user]
	if ok {
		s.stopTimers()
		delete(m.sessions, user)
	}
	m.mu.Unlock()
	if ok {
		m.metrics.RecordConfirmation(reason)
	}
}

// clear removes the pending session if it is still the same one the
// caller read. Returns false when the slot already expired or was
// replaced, so a stale confirm cannot execute.
func (m *SessionManager) clear(user string, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[user]
	if !ok || s.generation != gen {
		return false
	}
	s.stopTimers()
	delete(m.sessions, user)
	return true
}

// Shutdown drops all sessions and stops their timers.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for user, s := range m.sessions {
		s.stopTimers()
		delete(m.sessions, user)
	}
}

func (s *session) stopTimers() {
	if s.timeout != nil {
		s.timeout.Stop()
	}
	if s.reminder != nil {
		s.reminder.Stop()
	}
}
