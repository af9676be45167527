package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/pkg/domain"
	"github.com/kinoflow/kinoflow/pkg/ports"
)

// Engine drives a visitor session through a read-only graph. It holds no
// per-session state itself; callers pass the SessionState in and persist
// it between submissions.
type Engine struct {
	graph    *domain.Graph
	resolver *Resolver
	recorder ports.ResponseRecorder
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithRecorder attaches the response-recording collaborator.
func WithRecorder(rec ports.ResponseRecorder) EngineOption {
	return func(e *Engine) { e.recorder = rec }
}

// WithHooks registers observability callbacks on the engine and its
// resolver.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// NewEngine creates a playback engine over the graph.
func NewEngine(graph *domain.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:  graph,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = NewResolver(
		WithResolverLogger(e.logger),
		WithResolverHooks(e.hooks),
	)
	return e
}

// Graph returns the graph under playback.
func (e *Engine) Graph() *domain.Graph { return e.graph }

// Start creates a session positioned at the first step by order.
// A graph with no steps starts already completed.
func (e *Engine) Start(ctx context.Context) *domain.SessionState {
	now := time.Now()
	st := &domain.SessionState{
		SessionID: uuid.NewString(),
		GraphID:   e.graph.ID,
		StartedAt: now,
		UpdatedAt: now,
	}
	first := e.graph.FirstStep()
	if first == nil {
		st.Completed = true
		return st
	}
	st.CurrentNodeID = first.ID
	e.emitStepEnter(ctx, st, first)
	return st
}

// SubmitAnswer records the answer for the session's current step and
// applies the resolved transition. The transition is decided before any
// recording I/O happens; a recorder failure is logged and never blocks
// the visitor. Resubmitting on the same step updates the recorded answer
// in place.
func (e *Engine) SubmitAnswer(ctx context.Context, st *domain.SessionState, ans domain.Answer) (domain.Outcome, error) {
	if st.Completed {
		return domain.Outcome{}, domain.ErrSessionEnded
	}

	node := e.graph.NodeByID(st.CurrentNodeID)
	if node == nil {
		return domain.Outcome{}, fmt.Errorf("current step %s: %w", st.CurrentNodeID, domain.ErrNodeNotFound)
	}

	out := e.resolver.Resolve(ctx, e.graph, node, ans)

	st.RecordAnswer(domain.AnswerRecord{
		NodeID:     node.ID,
		StepOrder:  node.Order,
		Mechanism:  node.Mechanism,
		Answer:     ans,
		RecordedAt: time.Now(),
	})
	st.UpdatedAt = time.Now()

	e.applyOutcome(ctx, st, node, out)
	e.record(ctx, st, node, ans)
	return out, nil
}

func (e *Engine) applyOutcome(ctx context.Context, st *domain.SessionState, node *domain.Node, out domain.Outcome) {
	switch out.Kind {
	case domain.OutcomeNode:
		e.emitStepLeave(ctx, st, node)
		st.CurrentNodeID = out.NodeID
		if next := e.graph.NodeByID(out.NodeID); next != nil {
			e.emitStepEnter(ctx, st, next)
		}
	case domain.OutcomeEnd, domain.OutcomeURL:
		e.emitStepLeave(ctx, st, node)
		st.Completed = true
		if e.hooks.OnSessionEnd != nil {
			e.hooks.OnSessionEnd(ctx, st.SessionID)
		}
	case domain.OutcomeText:
		// An inline message is a dead end within playback: the session
		// stays open on the current step and does not auto-advance.
	}
}

// record hands the submission to the recording collaborator. It runs
// after the transition decision so persistence latency never delays the
// visitor.
func (e *Engine) record(ctx context.Context, st *domain.SessionState, node *domain.Node, ans domain.Answer) {
	if e.recorder == nil {
		return
	}
	sub := domain.Submission{
		SessionID:       st.SessionID,
		StepID:          node.ID,
		StepOrder:       node.Order,
		Mechanism:       node.Mechanism,
		Answer:          ans,
		Completed:       st.Completed,
		DurationSeconds: ans.DurationSeconds,
	}
	if err := e.recorder.Record(ctx, sub); err != nil {
		e.logger.Warn("response recording failed", "session", st.SessionID, "step", node.ID, "err", err)
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, st *domain.SessionState, n *domain.Node) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		Timestamp: time.Now(),
		SessionID: st.SessionID,
		NodeID:    n.ID,
		Label:     n.Label,
		Mechanism: n.Mechanism,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, st *domain.SessionState, n *domain.Node) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		Timestamp: time.Now(),
		SessionID: st.SessionID,
		NodeID:    n.ID,
		Label:     n.Label,
		Mechanism: n.Mechanism,
	})
}
