// Package runtime executes conversation playback: the rule resolver that
// turns a submitted answer into exactly one transition decision, and the
// engine that drives a visitor session through the graph.
package runtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Resolver selects one outcome for a submitted answer: jump to a node,
// redirect externally, show a message, end the session, or fall through
// to the next step in order. Resolution is synchronous and performs no
// I/O; it must stay responsive even when persistence is slow.
type Resolver struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the resolver's structured logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithResolverHooks registers observability callbacks.
func WithResolverHooks(hooks domain.LifecycleHooks) ResolverOption {
	return func(r *Resolver) { r.hooks = hooks }
}

// NewResolver creates a resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the outcome for the answer submitted on the node.
// Match priority: the answer's condition token first, then the selected
// option/button value against the indexed configuration text, then the
// legacy label-substring path, then the sequential fallback.
func (r *Resolver) Resolve(ctx context.Context, g *domain.Graph, node *domain.Node, ans domain.Answer) domain.Outcome {
	rule, ok := r.matchRule(node, ans)
	if !ok {
		out := r.sequentialFallback(g, node)
		r.emitResolve(ctx, node.ID, "", out, false)
		return out
	}

	out, targetMissing := r.apply(g, node, rule)
	out.Condition = rule.Condition
	r.emitResolve(ctx, node.ID, rule.Condition, out, targetMissing)
	return out
}

// matchRule finds the first rule covering the answer.
func (r *Resolver) matchRule(node *domain.Node, ans domain.Answer) (domain.LogicRule, bool) {
	if token := conditionToken(node.Mechanism, ans); token != "" {
		for _, rule := range node.Rules {
			if rule.Condition == token {
				return rule, true
			}
		}
		return domain.LogicRule{}, false
	}

	if ans.Value == "" {
		return domain.LogicRule{}, false
	}

	// Primary: index-keyed token with the configured text at that index
	// equal to the submitted value.
	for _, rule := range node.Rules {
		if i, ok := domain.OptionIndex(rule.Condition); ok {
			if i < len(node.Config.Options) && node.Config.Options[i] == ans.Value {
				return rule, true
			}
		}
		if i, ok := domain.ButtonIndex(rule.Condition); ok {
			if i < len(node.Config.Buttons) && node.Config.Buttons[i].Text == ans.Value {
				return rule, true
			}
		}
	}

	return r.legacyLabelMatch(node, ans.Value)
}

// legacyLabelMatch accepts a rule whose human label contains the submitted
// value. It exists for resilience against index drift in graphs wired
// before tokens were stable; the token match above is always preferred.
func (r *Resolver) legacyLabelMatch(node *domain.Node, value string) (domain.LogicRule, bool) {
	for _, rule := range node.Rules {
		if strings.Contains(rule.Label, value) {
			r.logger.Debug("rule matched by legacy label path", "node", node.ID, "condition", rule.Condition)
			return rule, true
		}
	}
	return domain.LogicRule{}, false
}

// conditionToken maps the answer to a stable token for mechanisms whose
// rules are keyed directly, or "" for value-matched mechanisms.
func conditionToken(m domain.Mechanism, ans domain.Answer) string {
	if ans.Skipped {
		return domain.ConditionSkipped
	}
	switch m {
	case domain.MechanismOpenEnded:
		return ans.Channel
	case domain.MechanismNPS:
		if ans.NPSScore == nil {
			return ""
		}
		return domain.NPSBand(*ans.NPSScore)
	case domain.MechanismContactForm:
		return domain.ConditionFormSubmitted
	case domain.MechanismCalendar:
		return domain.ConditionDateSelected
	case domain.MechanismFileUpload:
		return domain.ConditionTextSubmitted
	default:
		return ""
	}
}

// apply turns the selected rule into an outcome. A node rule whose target
// cannot be resolved is an inconsistency, not a crash: it is reported and
// degrades to the sequential fallback so the session never stalls.
func (r *Resolver) apply(g *domain.Graph, node *domain.Node, rule domain.LogicRule) (domain.Outcome, bool) {
	switch rule.TargetType {
	case domain.TargetEnd:
		msg := rule.EndMessage
		if msg == "" {
			msg = domain.DefaultEndMessage
		}
		return domain.Outcome{
			Kind:       domain.OutcomeEnd,
			EndMessage: msg,
			CTAText:    rule.CTAText,
			CTAURL:     rule.CTAURL,
		}, false

	case domain.TargetURL:
		return domain.Outcome{
			Kind: domain.OutcomeURL,
			URL:  ensureScheme(rule.URL),
		}, false

	case domain.TargetText:
		return domain.Outcome{
			Kind: domain.OutcomeText,
			Text: rule.Text,
		}, false

	case domain.TargetNode:
		if rule.Target == "" {
			return r.sequentialFallback(g, node), false
		}
		if dest := g.NodeByID(rule.Target); dest != nil {
			return domain.Outcome{Kind: domain.OutcomeNode, NodeID: dest.ID}, false
		}
		r.logger.Warn("rule target missing from graph, using sequential fallback",
			"node", node.ID, "condition", rule.Condition, "target", rule.Target)
		return r.sequentialFallback(g, node), true

	default:
		return r.sequentialFallback(g, node), false
	}
}

// sequentialFallback advances to the next step by order, or ends with the
// generic completion message when the current step is the last.
func (r *Resolver) sequentialFallback(g *domain.Graph, node *domain.Node) domain.Outcome {
	if next := g.NextStepAfter(node.Order); next != nil {
		return domain.Outcome{Kind: domain.OutcomeNode, NodeID: next.ID, Fallback: true}
	}
	return domain.Outcome{
		Kind:       domain.OutcomeEnd,
		EndMessage: domain.DefaultEndMessage,
		Fallback:   true,
	}
}

// ensureScheme prepends https:// to a destination lacking a scheme.
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if strings.Contains(url, "://") {
		return url
	}
	return "https://" + url
}

func (r *Resolver) emitResolve(ctx context.Context, nodeID, condition string, out domain.Outcome, targetMissing bool) {
	if r.hooks.OnResolve == nil {
		return
	}
	r.hooks.OnResolve(ctx, &domain.ResolveEvent{
		Timestamp:     time.Now(),
		NodeID:        nodeID,
		Condition:     condition,
		Outcome:       out.Kind,
		Fallback:      out.Fallback,
		TargetMissing: targetMissing,
	})
}
