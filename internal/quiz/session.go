// Package quiz owns the session state machine: start → answer* → finalize.
// The orchestrator drives one attempt at a time; a finalized session is
// never resumed, only replaced by starting a new one.
package quiz

import (
	"context"
	"sync"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/signal"
)

type State string

const (
	StateIdle       State = "idle"
	StateStarted    State = "started"
	StateFinalizing State = "finalizing"
	StateCompleted  State = "completed"
)

// API is the slice of the quiz API the orchestrator needs.
type API interface {
	StartSession(ctx context.Context, id identity.Identity) (domain.Session, error)
	SubmitAnswer(ctx context.Context, id identity.Identity, answer domain.Answer) error
	FinalizeSession(ctx context.Context, id identity.Identity, sessionID string) (domain.FinalizeResult, error)
}

// Orchestrator guards the lifecycle with a mutex; network calls run outside
// the lock, so answers for distinct questions may be in flight concurrently.
// Calling an operation in the wrong state fails with invalid_state; that
// is a programming error in the caller, never a recoverable condition.
type Orchestrator struct {
	log *logger.Logger
	api API
	bus *signal.Bus

	mu       sync.Mutex
	state    State
	id       identity.Identity
	starting bool
	session  domain.Session
	answered map[string][]string
	result   *domain.FinalizeResult
}

// NewOrchestrator builds an idle orchestrator. bus is optional; when set,
// successful finalizes publish a QuizCompleted event on it.
func NewOrchestrator(log *logger.Logger, api API, id identity.Identity, bus *signal.Bus) (*Orchestrator, error) {
	if log == nil {
		return nil, apperrors.New(apperrors.KindValidation, "logger required")
	}
	if api == nil {
		return nil, apperrors.New(apperrors.KindValidation, "quiz api client required")
	}
	return &Orchestrator{
		log:      log.With("component", "QuizOrchestrator"),
		api:      api,
		bus:      bus,
		state:    StateIdle,
		id:       id,
		answered: map[string][]string{},
	}, nil
}

// Start opens a new server-tracked session. Permitted from idle and from
// completed (starting over); a server rejection is surfaced as-is and the
// machine stays where it was; retrying is the caller's decision.
func (o *Orchestrator) Start(ctx context.Context) (domain.Session, error) {
	o.mu.Lock()
	if o.starting {
		o.mu.Unlock()
		return domain.Session{}, apperrors.New(apperrors.KindInvalidState, "start already in progress")
	}
	if o.state != StateIdle && o.state != StateCompleted {
		state := o.state
		o.mu.Unlock()
		return domain.Session{}, apperrors.Newf(apperrors.KindInvalidState, "start not allowed in state %q", state)
	}
	o.starting = true
	id := o.id
	o.mu.Unlock()

	session, err := o.api.StartSession(ctxutil.Default(ctx), id)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.starting = false
	if err != nil {
		return domain.Session{}, err
	}
	o.state = StateStarted
	o.session = session
	o.answered = map[string][]string{}
	o.result = nil
	o.log.Debug("quiz session started", "session_id", session.ID)
	return session, nil
}

// SubmitAnswer records the caller's choices for one question. Callable
// repeatedly for the same question (the server keeps the last write) and
// concurrently for distinct questions.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, questionID string, choiceIDs []string) error {
	o.mu.Lock()
	if o.state != StateStarted {
		state := o.state
		o.mu.Unlock()
		return apperrors.Newf(apperrors.KindInvalidState, "submit answer requires a started session (state %q)", state)
	}
	session := o.session
	id := o.id
	o.mu.Unlock()

	err := o.api.SubmitAnswer(ctxutil.Default(ctx), id, domain.Answer{
		SessionID:  session.ID,
		QuestionID: questionID,
		ChoiceIDs:  choiceIDs,
	})
	if err != nil {
		return err
	}

	o.mu.Lock()
	// Record only when still on the same attempt; a concurrent Start would
	// have replaced the session.
	if o.session.ID == session.ID {
		o.answered[questionID] = append([]string(nil), choiceIDs...)
	}
	o.mu.Unlock()
	return nil
}

// Finalize submits the session for scoring. On success the machine reaches
// completed and the result is retained; on failure it returns to started so
// the caller can answer what was missing and finalize again. The server's
// error passes through unreinterpreted.
func (o *Orchestrator) Finalize(ctx context.Context) (domain.FinalizeResult, error) {
	o.mu.Lock()
	if o.state != StateStarted {
		state := o.state
		o.mu.Unlock()
		return domain.FinalizeResult{}, apperrors.Newf(apperrors.KindInvalidState, "finalize requires a started session (state %q)", state)
	}
	o.state = StateFinalizing
	session := o.session
	id := o.id
	o.mu.Unlock()

	result, err := o.api.FinalizeSession(ctxutil.Default(ctx), id, session.ID)

	o.mu.Lock()
	if err != nil {
		o.state = StateStarted
		o.mu.Unlock()
		return domain.FinalizeResult{}, err
	}
	o.state = StateCompleted
	o.result = &result
	bus := o.bus
	o.mu.Unlock()

	if bus != nil {
		bus.Publish(signal.QuizCompleted{SessionID: session.ID})
	}
	o.log.Info("quiz session completed",
		"session_id", session.ID,
		"requires_auth", result.RequiresAuth,
		"recommendations", len(result.Recommendations),
	)
	return result, nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the active session; ok is false before the first
// successful Start.
func (o *Orchestrator) Current() (domain.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session, o.session.ID != ""
}

// Result returns the finalize result of the completed attempt.
func (o *Orchestrator) Result() (domain.FinalizeResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateCompleted || o.result == nil {
		return domain.FinalizeResult{}, false
	}
	return *o.result, true
}

func (o *Orchestrator) HasAnswered(questionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.answered[questionID]
	return ok
}

// SetIdentity swaps the identity used for subsequent calls, e.g. continuing
// after the user logs in mid-quiz.
func (o *Orchestrator) SetIdentity(id identity.Identity) {
	o.mu.Lock()
	o.id = id
	o.mu.Unlock()
}

func (o *Orchestrator) Identity() identity.Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.id
}
