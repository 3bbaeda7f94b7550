// Package session drives investigations: it owns every live session, runs one
// counterparty turn at a time per session and persists the result.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sush8471/ScamDEX-AI/internal/agent"
	"github.com/sush8471/ScamDEX-AI/internal/domain"
	"github.com/sush8471/ScamDEX-AI/internal/fallback"
	"github.com/sush8471/ScamDEX-AI/internal/identity"
	"github.com/sush8471/ScamDEX-AI/internal/intel"
	"github.com/sush8471/ScamDEX-AI/internal/metrics"
	"github.com/sush8471/ScamDEX-AI/internal/sanitize"
)

var (
	// ErrBusy is returned when a turn is already in flight for the session.
	ErrBusy = errors.New("session is busy")
	// ErrInvalidID is returned for a blank session identifier.
	ErrInvalidID = errors.New("invalid session id")
	// ErrEmptyTranscript is returned when exporting a session with no messages.
	ErrEmptyTranscript = errors.New("session has no messages")
	// ErrReset is returned when the session was reset while a turn was in flight.
	ErrReset = errors.New("session was reset")
)

// DefaultReply is the operator line used when the collaborator sends none.
const DefaultReply = "How do I proceed? Is this safe?"

// Persister loads and saves session snapshots.
type Persister interface {
	Load(ctx context.Context, sessionID string) (*domain.SessionState, bool)
	Save(ctx context.Context, state *domain.SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// Notifier receives session change events.
type Notifier interface {
	Notify(Event)
}

// Event types.
const (
	EventState    = "state"
	EventComplete = "complete"
	EventReset    = "reset"
)

// Event describes a change to one session.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	View      *View  `json:"view,omitempty"`
}

// View is a read-only snapshot of a session for presentation.
type View struct {
	State          domain.SessionState `json:"session"`
	Typing         bool                `json:"isTyping"`
	ResultMode     bool                `json:"resultMode"`
	IndicatorCount int                 `json:"indicatorCount"`
	Elapsed        string              `json:"elapsed"`
}

// RejectReason explains why a submission was ignored.
type RejectReason string

const (
	RejectEmpty      RejectReason = "empty"
	RejectComplete   RejectReason = "complete"
	RejectResultMode RejectReason = "result_mode"
)

// Outcome reports what Submit did with a message.
type Outcome struct {
	Accepted bool            `json:"accepted"`
	Reason   RejectReason    `json:"reason,omitempty"`
	Path     string          `json:"path,omitempty"`
	Reply    *domain.Message `json:"reply,omitempty"`
	View     View            `json:"view"`
}

// Options configures an Engine. Zero values fall back to DefaultOptions.
type Options struct {
	Platform                string
	FallbackDelay           time.Duration
	CompletionDelay         time.Duration
	FallbackCompletionDelay time.Duration

	Scheduler       Scheduler
	Now             func() time.Time
	Logger          *slog.Logger
	Metrics         *metrics.EngineMetrics
	ConversationLog agent.ConversationLogger
	Notifier        Notifier
	// OnComplete runs when a session enters result mode.
	OnComplete func(sessionID string)
}

// DefaultOptions returns the production delays.
func DefaultOptions() Options {
	return Options{
		Platform:                domain.DefaultPlatform,
		FallbackDelay:           time.Second,
		CompletionDelay:         2 * time.Second,
		FallbackCompletionDelay: 1500 * time.Millisecond,
	}
}

type live struct {
	mu          sync.Mutex
	busy        atomic.Bool
	state       *domain.SessionState
	resultMode  bool
	pending     Task
	discarded   bool
	lastTouched time.Time
}

// Engine owns the live sessions.
type Engine struct {
	collab agent.Collaborator
	store  Persister
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*live
}

// NewEngine creates an engine. A nil collaborator means every turn takes the
// fallback path.
func NewEngine(collab agent.Collaborator, store Persister, opts Options) *Engine {
	if collab == nil {
		collab = agent.Offline{}
	}
	if opts.Platform == "" {
		opts.Platform = domain.DefaultPlatform
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConversationLog == nil {
		opts.ConversationLog = agent.NoopConversationLogger{}
	}
	return &Engine{
		collab:   collab,
		store:    store,
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*live),
	}
}

// Start opens a fresh investigation. It is not persisted until the first message.
func (e *Engine) Start(_ context.Context) View {
	now := e.opts.Now()
	l := &live{state: domain.NewSessionState(identity.NewSessionID(), now), lastTouched: now}

	e.mu.Lock()
	e.sessions[l.state.SessionID] = l
	n := len(e.sessions)
	e.mu.Unlock()

	e.opts.Metrics.SetActiveSessions(n)
	e.logger.Info("investigation started", "session_id", l.state.SessionID)

	v := e.view(l)
	e.notify(EventState, &v)
	return v
}

// Get returns the session view, restoring it from the store if needed.
func (e *Engine) Get(ctx context.Context, sessionID string) (View, error) {
	l, err := e.acquire(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return e.view(l), nil
}

// Submit runs one counterparty turn. Empty text and sessions that are complete
// or showing results are rejected without mutation. A second Submit while a
// turn is in flight returns ErrBusy.
func (e *Engine) Submit(ctx context.Context, sessionID, text string) (Outcome, error) {
	l, err := e.acquire(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	if strings.TrimSpace(text) == "" {
		e.opts.Metrics.ObserveRejection(string(RejectEmpty))
		return Outcome{Reason: RejectEmpty, View: e.view(l)}, nil
	}
	if l, err = e.claim(ctx, sessionID, l); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	func() {
		defer l.busy.Store(false)
		// The turn always finishes, even if the caller goes away.
		out, err = e.turn(context.WithoutCancel(ctx), l, text)
	}()
	if err != nil {
		return Outcome{}, err
	}

	out.View = e.view(l)
	if out.Accepted {
		e.notify(EventState, &out.View)
	}
	return out, nil
}

// claim marks l busy. If l was evicted after acquire, the session is
// reloaded so at most one live entry per session can run a turn.
func (e *Engine) claim(ctx context.Context, sessionID string, l *live) (*live, error) {
	for {
		if !l.busy.CompareAndSwap(false, true) {
			e.opts.Metrics.ObserveRejection("busy")
			return nil, ErrBusy
		}
		e.mu.Lock()
		current := e.sessions[sessionID] == l
		e.mu.Unlock()
		if current {
			return l, nil
		}
		l.busy.Store(false)

		l.mu.Lock()
		discarded := l.discarded
		l.mu.Unlock()
		if discarded {
			return nil, ErrReset
		}
		var err error
		if l, err = e.acquire(ctx, sessionID); err != nil {
			return nil, err
		}
	}
}

func (e *Engine) turn(ctx context.Context, l *live, text string) (Outcome, error) {
	l.mu.Lock()
	switch {
	case l.resultMode:
		l.mu.Unlock()
		e.opts.Metrics.ObserveRejection(string(RejectResultMode))
		return Outcome{Reason: RejectResultMode}, nil
	case l.state.InvestigationComplete:
		l.mu.Unlock()
		e.opts.Metrics.ObserveRejection(string(RejectComplete))
		return Outcome{Reason: RejectComplete}, nil
	}
	sessionID := l.state.SessionID
	now := e.opts.Now()
	l.state.Append(domain.SenderCounterparty, text, now)
	history := append([]domain.Message(nil), l.state.Messages...)
	e.persistLocked(ctx, l)
	l.mu.Unlock()

	typing := e.view(l)
	e.notify(EventState, &typing)
	e.logConversation(sessionID, "inbound", "counterparty_message", text, nil)

	started := time.Now()
	verdict, err := e.collab.Converse(ctx, agent.Request{
		SessionID: sessionID,
		Message:   text,
		History:   history,
		Metadata:  agent.Metadata{Platform: e.opts.Platform, Timestamp: now},
	})
	e.opts.Metrics.ObserveCollaborator(err == nil, time.Since(started))

	if err != nil {
		e.logger.Warn("collaborator failed, using fallback reply", "session_id", sessionID, "error", err)
		e.logConversation(sessionID, "internal", "collaborator_error", err.Error(), nil)
		sleep(e.opts.FallbackDelay)
		return e.finishFallback(ctx, l, text)
	}
	return e.finishVerdict(ctx, l, text, verdict)
}

func (e *Engine) finishVerdict(ctx context.Context, l *live, text string, v agent.Verdict) (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.discarded {
		return Outcome{}, ErrReset
	}

	now := e.opts.Now()
	reply := l.state.Append(domain.SenderOperator, sanitize.Reply(v.Reply.Or(DefaultReply)), now)
	if applyVerdict(&l.state.Intel, text, v, now) {
		e.opts.Metrics.ObserveDetection()
	}
	if v.InvestigationComplete.Or(false) {
		l.state.MarkComplete(now)
	}
	if v.RequestsCompletion() {
		e.scheduleCompletionLocked(l, e.opts.CompletionDelay)
	}
	e.persistLocked(ctx, l)
	e.opts.Metrics.ObserveTurn(metrics.PathCollaborator)
	e.afterTurn(l, reply, metrics.PathCollaborator, v.Kind().String())
	return Outcome{Accepted: true, Path: metrics.PathCollaborator, Reply: &reply}, nil
}

func (e *Engine) finishFallback(ctx context.Context, l *live, text string) (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.discarded {
		return Outcome{}, ErrReset
	}

	now := e.opts.Now()
	r := fallback.Respond(text)
	reply := l.state.Append(domain.SenderOperator, sanitize.Reply(r.Text), now)
	if applyFallback(&l.state.Intel, text, r, now) {
		e.opts.Metrics.ObserveDetection()
	}
	if r.Terminal {
		l.state.MarkComplete(now)
		e.scheduleCompletionLocked(l, e.opts.FallbackCompletionDelay)
	}
	e.persistLocked(ctx, l)
	e.opts.Metrics.ObserveTurn(metrics.PathFallback)
	e.afterTurn(l, reply, metrics.PathFallback, "")
	return Outcome{Accepted: true, Path: metrics.PathFallback, Reply: &reply}, nil
}

func (e *Engine) afterTurn(l *live, reply domain.Message, path, verdict string) {
	meta := map[string]any{"path": path, "confidence": l.state.Intel.Confidence}
	if verdict != "" {
		meta["verdict"] = verdict
	}
	e.logConversation(l.state.SessionID, "outbound", "operator_reply", reply.Text, meta)
	e.logger.Info("turn processed",
		"session_id", l.state.SessionID,
		"path", path,
		"confidence", l.state.Intel.Confidence,
		"scam_type", l.state.Intel.ScamType,
		"complete", l.state.InvestigationComplete)
}

// scheduleCompletionLocked arranges for the session to enter result mode.
// At most one completion is pending per session.
func (e *Engine) scheduleCompletionLocked(l *live, d time.Duration) {
	if l.pending != nil || l.resultMode {
		return
	}
	l.pending = e.opts.Scheduler.After(d, func() { e.complete(l) })
}

func (e *Engine) complete(l *live) {
	l.mu.Lock()
	if l.discarded || l.resultMode {
		l.mu.Unlock()
		return
	}
	l.resultMode = true
	l.pending = nil
	sessionID := l.state.SessionID
	l.mu.Unlock()

	e.opts.Metrics.ObserveCompletion()
	e.logger.Info("investigation complete", "session_id", sessionID)
	if e.opts.OnComplete != nil {
		e.opts.OnComplete(sessionID)
	}
	v := e.view(l)
	e.notify(EventComplete, &v)
}

// Reset discards the session: the persisted slot is removed, any pending
// completion is cancelled and an in-flight turn is dropped.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidID
	}

	e.mu.Lock()
	l := e.sessions[sessionID]
	if l != nil {
		l.mu.Lock()
		l.discarded = true
		if l.pending != nil {
			l.pending.Cancel()
			l.pending = nil
		}
		l.mu.Unlock()
	}
	delete(e.sessions, sessionID)
	n := len(e.sessions)
	e.mu.Unlock()
	e.opts.Metrics.SetActiveSessions(n)

	if err := e.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	e.logger.Info("investigation reset", "session_id", sessionID)
	e.opts.ConversationLog.Log(agent.ConversationLogEvent{
		Timestamp: e.opts.Now().UTC().Format(time.RFC3339Nano),
		SessionID: sessionID,
		Channel:   "engine",
		Direction: "internal",
		EventType: "reset",
	})
	e.notify(EventReset, &View{State: domain.SessionState{SessionID: sessionID}})
	return nil
}

// Export builds the transcript artifact for a session with at least one message.
func (e *Engine) Export(ctx context.Context, sessionID string) (domain.Transcript, error) {
	l, err := e.acquire(ctx, sessionID)
	if err != nil {
		return domain.Transcript{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.state.Messages) == 0 {
		return domain.Transcript{}, ErrEmptyTranscript
	}
	return domain.NewTranscript(l.state, e.opts.Platform, e.opts.Now()), nil
}

// Evict drops the in-memory session. Busy sessions and sessions waiting on a
// completion are kept. A Submit that acquired the session before eviction
// reloads it from the store. It reports whether the session was dropped.
func (e *Engine) Evict(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.sessions[sessionID]
	if !ok || !evictable(l) {
		return false
	}
	delete(e.sessions, sessionID)
	e.opts.Metrics.SetActiveSessions(len(e.sessions))
	return true
}

// EvictIdle drops sessions untouched for longer than maxIdle.
func (e *Engine) EvictIdle(maxIdle time.Duration) []string {
	cutoff := e.opts.Now().Add(-maxIdle)

	e.mu.Lock()
	defer e.mu.Unlock()
	var evicted []string
	for id, l := range e.sessions {
		l.mu.Lock()
		stale := l.lastTouched.Before(cutoff)
		l.mu.Unlock()
		if stale && evictable(l) {
			delete(e.sessions, id)
			evicted = append(evicted, id)
		}
	}
	e.opts.Metrics.SetActiveSessions(len(e.sessions))
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (e *Engine) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) error {
	if interval <= 0 || maxIdle <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ids := e.EvictIdle(maxIdle); len(ids) > 0 {
				e.logger.Info("evicted idle sessions", "count", len(ids))
			}
		}
	}
}

// Len returns the number of sessions held in memory.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func evictable(l *live) bool {
	if l.busy.Load() {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending == nil
}

// acquire returns the live session, restoring it from the store on first use.
func (e *Engine) acquire(ctx context.Context, sessionID string) (*live, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidID
	}
	now := e.opts.Now()

	e.mu.Lock()
	l, ok := e.sessions[sessionID]
	e.mu.Unlock()
	if ok {
		l.mu.Lock()
		l.lastTouched = now
		l.mu.Unlock()
		return l, nil
	}

	state, restored := e.store.Load(ctx, sessionID)
	if restored {
		e.logger.Info("investigation restored", "session_id", sessionID, "messages", len(state.Messages))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.sessions[sessionID]; ok {
		return existing, nil
	}
	l = &live{state: state, lastTouched: now}
	e.sessions[sessionID] = l
	e.opts.Metrics.SetActiveSessions(len(e.sessions))
	return l, nil
}

func (e *Engine) view(l *live) View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return View{
		State:          l.state.Clone(),
		Typing:         l.busy.Load(),
		ResultMode:     l.resultMode,
		IndicatorCount: intel.IndicatorCount(&l.state.Intel),
		Elapsed:        domain.FormatElapsed(l.state.Elapsed(e.opts.Now())),
	}
}

func (e *Engine) persistLocked(ctx context.Context, l *live) {
	if l.discarded {
		return
	}
	if err := e.store.Save(ctx, l.state); err != nil {
		e.logger.Warn("failed to persist session", "session_id", l.state.SessionID, "error", err)
	}
}

func (e *Engine) notify(eventType string, v *View) {
	if e.opts.Notifier == nil {
		return
	}
	e.opts.Notifier.Notify(Event{Type: eventType, SessionID: v.State.SessionID, View: v})
}

func (e *Engine) logConversation(sessionID, direction, eventType, content string, meta map[string]any) {
	e.opts.ConversationLog.Log(agent.ConversationLogEvent{
		Timestamp:  e.opts.Now().UTC().Format(time.RFC3339Nano),
		SessionID:  sessionID,
		Channel:    "engine",
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Meta:       meta,
	})
}

func sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	<-t.C
}
