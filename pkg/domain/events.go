package domain

import (
	"context"
	"time"
)

// StepEvent marks a visitor entering or leaving a step.
type StepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
	NodeID    string    `json:"nodeId"`
	Label     string    `json:"label"`
	Mechanism Mechanism `json:"answerMechanism"`
}

// ResolveEvent reports one rule-resolution decision.
type ResolveEvent struct {
	Timestamp     time.Time   `json:"timestamp"`
	SessionID     string      `json:"sessionId"`
	NodeID        string      `json:"nodeId"`
	Condition     string      `json:"condition,omitempty"`
	Outcome       OutcomeKind `json:"outcome"`
	Fallback      bool        `json:"fallback,omitempty"`
	TargetMissing bool        `json:"targetMissing,omitempty"`
}

// LifecycleHooks defines callbacks for playback observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnStepEnter  func(context.Context, *StepEvent)
	OnStepLeave  func(context.Context, *StepEvent)
	OnResolve    func(context.Context, *ResolveEvent)
	OnSessionEnd func(context.Context, string)
}
