package builder

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/pkg/domain"
	"github.com/kinoflow/kinoflow/pkg/rules"
)

// duplicateOffset is how far a duplicated step lands from its source on
// the canvas.
const duplicateOffset = 40.0

// Editor exposes the structural operations an interactive canvas drives.
// Operations referencing a nonexistent node id are no-ops, never errors:
// stale UI event handlers fire after nodes are gone and the editor must
// stay responsive.
type Editor struct {
	store  *Store
	canvas Canvas
	saver  *Autosaver
	logger *slog.Logger
}

// Option configures the Editor.
type Option func(*Editor)

// WithLogger sets the editor's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

// WithAutosaver attaches a debounced autosaver; every mutating operation
// marks it dirty.
func WithAutosaver(s *Autosaver) Option {
	return func(e *Editor) { e.saver = s }
}

// NewEditor creates an editor over the store.
func NewEditor(store *Store, opts ...Option) *Editor {
	e := &Editor{
		store:  store,
		canvas: NewCanvas(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying graph store.
func (e *Editor) Store() *Store { return e.store }

// Canvas returns the view transform for reading and mutation.
func (e *Editor) Canvas() *Canvas { return &e.canvas }

func (e *Editor) touched() {
	if e.saver != nil {
		e.saver.MarkDirty()
	}
}

// AddStep creates a step at the position with the next free order, the
// default open-ended mechanism and its derived rules.
func (e *Editor) AddStep(pos domain.Position) *domain.Node {
	order := e.store.MaxOrder() + 1
	cfg := domain.DefaultOpenEndedConfig()
	n := domain.Node{
		ID:        uuid.NewString(),
		Kind:      domain.NodeKindStep,
		Position:  pos,
		Order:     order,
		Label:     fmt.Sprintf("Step %d", order),
		Mechanism: domain.MechanismOpenEnded,
		Config:    cfg,
		Rules:     rules.Derive(domain.MechanismOpenEnded, cfg),
	}
	added := e.store.AddNode(n)
	e.logger.Debug("step added", "node", added.ID, "order", order)
	e.touched()
	return added
}

// DuplicateStep clones a step under a new id with an offset position, a
// "(Copy)" label suffix and a fresh order. Rules and configuration are
// copied verbatim, wiring included.
func (e *Editor) DuplicateStep(id string) *domain.Node {
	src := e.store.NodeByID(id)
	if src == nil || !src.IsStep() {
		return nil
	}
	clone := src.Clone()
	clone.ID = uuid.NewString()
	clone.LegacyID = ""
	clone.Position.X += duplicateOffset
	clone.Position.Y += duplicateOffset
	clone.Order = e.store.MaxOrder() + 1
	clone.Label = src.Label + " (Copy)"
	added := e.store.AddNode(clone)
	e.logger.Debug("step duplicated", "source", id, "node", added.ID)
	e.touched()
	return added
}

// DeleteStep removes a step and every connection touching it. The caller
// owns any confirmation flow. Reports whether a step was deleted.
func (e *Editor) DeleteStep(id string) bool {
	if !e.store.RemoveNode(id) {
		return false
	}
	e.logger.Debug("step deleted", "node", id)
	e.touched()
	return true
}

// RenameStep updates the step's label.
func (e *Editor) RenameStep(id, label string) {
	n := e.store.NodeByID(id)
	if n == nil || !n.IsStep() {
		return
	}
	n.Label = label
	e.touched()
}

// MoveStep repositions the step on the canvas.
func (e *Editor) MoveStep(id string, pos domain.Position) {
	n := e.store.NodeByID(id)
	if n == nil {
		return
	}
	n.Position = pos
	e.touched()
}

// SetMediaRef attaches (or clears) the step's media reference.
func (e *Editor) SetMediaRef(id, mediaRef string) {
	n := e.store.NodeByID(id)
	if n == nil || !n.IsStep() {
		return
	}
	n.MediaRef = mediaRef
	e.touched()
}

// SetAnswerMechanism switches the step's mechanism and regenerates its
// rules, preserving wiring for condition tokens that survive the change.
func (e *Editor) SetAnswerMechanism(id string, m domain.Mechanism, cfg domain.MechanismConfig) {
	n := e.store.NodeByID(id)
	if n == nil || !n.IsStep() || !m.Valid() {
		return
	}
	n.Mechanism = m
	n.Config = cfg
	e.rederive(n)
}

// SetOptions replaces a multiple-choice step's option list and re-derives
// its rules. Targets wired to retained option indexes are preserved.
func (e *Editor) SetOptions(id string, options []string) {
	n := e.store.NodeByID(id)
	if n == nil || n.Mechanism != domain.MechanismMultipleChoice {
		return
	}
	n.Config.Options = append([]string(nil), options...)
	e.rederive(n)
}

// SetButtons replaces a button step's button list and re-derives its rules.
func (e *Editor) SetButtons(id string, buttons []domain.ButtonSpec) {
	n := e.store.NodeByID(id)
	if n == nil || n.Mechanism != domain.MechanismButton {
		return
	}
	n.Config.Buttons = append([]domain.ButtonSpec(nil), buttons...)
	e.rederive(n)
}

// SetFormFields replaces a contact-form step's field list and re-derives
// its rules. The rule set for this mechanism is fixed, so wiring always
// survives.
func (e *Editor) SetFormFields(id string, fields []domain.FormField) {
	n := e.store.NodeByID(id)
	if n == nil || n.Mechanism != domain.MechanismContactForm {
		return
	}
	n.Config.Fields = append([]domain.FormField(nil), fields...)
	e.rederive(n)
}

// SetResponseChannels updates an open-ended step's enabled channels and
// re-derives its rules.
func (e *Editor) SetResponseChannels(id string, video, audio, text bool) {
	n := e.store.NodeByID(id)
	if n == nil || n.Mechanism != domain.MechanismOpenEnded {
		return
	}
	n.Config.Video = video
	n.Config.Audio = audio
	n.Config.Text = text
	e.rederive(n)
}

// rederive recomputes the node's rule set as a merge keyed by condition
// token, never a blind replace.
func (e *Editor) rederive(n *domain.Node) {
	fresh := rules.Derive(n.Mechanism, n.Config)
	n.Rules = rules.Merge(n.Rules, fresh)
	e.touched()
}

// RuleField names the mutable fields of a rule destination.
type RuleField string

const (
	FieldTargetType RuleField = "targetType"
	FieldTarget     RuleField = "target"
	FieldURL        RuleField = "url"
	FieldText       RuleField = "text"
	FieldEndMessage RuleField = "endMessage"
	FieldCTAText    RuleField = "ctaText"
	FieldCTAURL     RuleField = "ctaUrl"
)

// SetRuleTarget updates a single field of the step's ruleIndex-th rule.
// Switching the target type away from node clears any stale node target so
// no dangling reference survives.
func (e *Editor) SetRuleTarget(id string, ruleIndex int, field RuleField, value string) {
	n := e.store.NodeByID(id)
	if n == nil || ruleIndex < 0 || ruleIndex >= len(n.Rules) {
		return
	}
	r := &n.Rules[ruleIndex]
	switch field {
	case FieldTargetType:
		tt := domain.TargetType(value)
		switch tt {
		case domain.TargetNode, domain.TargetURL, domain.TargetText, domain.TargetEnd:
		default:
			return
		}
		r.TargetType = tt
		if tt != domain.TargetNode {
			r.Target = ""
		}
	case FieldTarget:
		r.Target = value
	case FieldURL:
		r.URL = value
	case FieldText:
		r.Text = value
	case FieldEndMessage:
		r.EndMessage = value
	case FieldCTAText:
		r.CTAText = value
	case FieldCTAURL:
		r.CTAURL = value
	default:
		return
	}
	e.touched()
}

// Warning flags an incomplete rule at commit time. Commit may proceed
// despite warnings; the author decides.
type Warning struct {
	NodeID    string `json:"nodeId"`
	RuleIndex int    `json:"ruleIndex"`
	Condition string `json:"condition"`
	Message   string `json:"message"`
}

// CommitStep validates the step's rules and recomputes its rule-derived
// connections: all prior rule edges from this node are dropped, then one
// edge is added per node rule with a non-empty target.
func (e *Editor) CommitStep(id string) []Warning {
	n := e.store.NodeByID(id)
	if n == nil || !n.IsStep() {
		return nil
	}

	var warnings []Warning
	edges := make([]domain.Connection, 0, len(n.Rules))
	for i, r := range n.Rules {
		if r.Incomplete() {
			warnings = append(warnings, Warning{
				NodeID:    n.ID,
				RuleIndex: i,
				Condition: r.Condition,
				Message:   fmt.Sprintf("rule %q has no destination step", r.Condition),
			})
			continue
		}
		if r.TargetType == domain.TargetNode {
			edges = append(edges, domain.Connection{
				From: n.ID,
				To:   r.Target,
				Kind: domain.ConnectionRule,
			})
		}
	}
	e.store.ReplaceConnections(n.ID, domain.ConnectionRule, edges)
	e.logger.Debug("step committed", "node", n.ID, "edges", len(edges), "warnings", len(warnings))
	e.touched()
	return warnings
}
