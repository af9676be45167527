package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetType discriminates what a rule resolves to when it matches.
type TargetType string

const (
	// TargetNode jumps to another node in the graph.
	TargetNode TargetType = "node"
	// TargetURL redirects the visitor externally.
	TargetURL TargetType = "url"
	// TargetText shows an inline message; playback does not auto-advance.
	TargetText TargetType = "text"
	// TargetEnd terminates the session.
	TargetEnd TargetType = "end"
)

// Response channel tokens for open-ended steps.
const (
	ChannelVideo = "video"
	ChannelAudio = "audio"
	ChannelText  = "text"
)

// Fixed condition tokens shared across mechanisms.
const (
	ConditionSkipped       = "skipped"
	ConditionFormSubmitted = "form_submitted"
	ConditionDateSelected  = "date_selected"
	ConditionTextSubmitted = "text_submitted"
	ConditionDetractor     = "detractor"
	ConditionPassive       = "passive"
	ConditionPromoter      = "promoter"
)

// Prefixes for index-keyed condition tokens.
const (
	optionConditionPrefix = "option_"
	buttonConditionPrefix = "button_"
)

// LogicRule is one conditional branch of a step. Condition is a stable
// token keyed to the step's mechanism configuration (a channel name, an
// option index, an NPS band); it is never the edited display text itself.
//
// The payload fields are per-variant: Target holds a node id only when
// TargetType is node, URL only applies to url, Text to text, and the
// End*/CTA* fields to end. A node rule with an empty Target is incomplete:
// valid to persist, surfaced as a warning at commit, fallback at runtime.
type LogicRule struct {
	Condition  string     `json:"condition"`
	Label      string     `json:"label"`
	TargetType TargetType `json:"targetType"`
	Target     string     `json:"target,omitempty"`
	URL        string     `json:"url,omitempty"`
	Text       string     `json:"text,omitempty"`
	EndMessage string     `json:"endMessage,omitempty"`
	CTAText    string     `json:"ctaText,omitempty"`
	CTAURL     string     `json:"ctaUrl,omitempty"`
}

// Incomplete reports whether the rule points at a node without naming one.
func (r LogicRule) Incomplete() bool {
	return r.TargetType == TargetNode && r.Target == ""
}

// OptionCondition builds the condition token for option index i.
func OptionCondition(i int) string {
	return fmt.Sprintf("%s%d", optionConditionPrefix, i)
}

// ButtonCondition builds the condition token for button index i.
func ButtonCondition(i int) string {
	return fmt.Sprintf("%s%d", buttonConditionPrefix, i)
}

// OptionIndex extracts the index from an option_<i> token.
func OptionIndex(condition string) (int, bool) {
	return indexOf(condition, optionConditionPrefix)
}

// ButtonIndex extracts the index from a button_<i> token.
func ButtonIndex(condition string) (int, bool) {
	return indexOf(condition, buttonConditionPrefix)
}

func indexOf(condition, prefix string) (int, bool) {
	if !strings.HasPrefix(condition, prefix) {
		return 0, false
	}
	i, err := strconv.Atoi(condition[len(prefix):])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// NPSBand maps a 0-10 score to its fixed condition token:
// detractor (0-6), passive (7-8), promoter (9-10). Scores outside the
// scale clamp to the nearest band.
func NPSBand(score int) string {
	switch {
	case score <= 6:
		return ConditionDetractor
	case score <= 8:
		return ConditionPassive
	default:
		return ConditionPromoter
	}
}
