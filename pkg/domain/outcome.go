package domain

// DefaultEndMessage is shown when a session terminates without a
// configured end message.
const DefaultEndMessage = "Thanks for watching!"

// OutcomeKind is the resolved destination class of a submitted answer.
type OutcomeKind string

const (
	// OutcomeNode advances to another step.
	OutcomeNode OutcomeKind = "node"
	// OutcomeURL redirects externally; the session is abandoned from the
	// graph's perspective.
	OutcomeURL OutcomeKind = "url"
	// OutcomeText shows an inline message; playback stays on the step.
	OutcomeText OutcomeKind = "text"
	// OutcomeEnd terminates the session.
	OutcomeEnd OutcomeKind = "end"
)

// Outcome is the transition decision for one submitted answer.
// Exactly one is produced per submission.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// NodeID is the destination step for OutcomeNode.
	NodeID string `json:"nodeId,omitempty"`

	// URL is the external destination for OutcomeURL, always carrying a
	// scheme.
	URL string `json:"url,omitempty"`

	// Text is the inline message for OutcomeText.
	Text string `json:"text,omitempty"`

	// End message and optional call-to-action for OutcomeEnd.
	EndMessage string `json:"endMessage,omitempty"`
	CTAText    string `json:"ctaText,omitempty"`
	CTAURL     string `json:"ctaUrl,omitempty"`

	// Condition is the token of the matched rule, empty when the answer
	// fell through to the sequential default.
	Condition string `json:"condition,omitempty"`

	// Fallback marks outcomes produced by the sequential default rather
	// than an explicit rule match.
	Fallback bool `json:"fallback,omitempty"`
}

// Ended reports whether the session is over after this outcome.
func (o Outcome) Ended() bool {
	return o.Kind == OutcomeEnd || o.Kind == OutcomeURL
}
