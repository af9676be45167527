// Package rules derives the canonical logic-rule set for each answer
// mechanism. Derive is pure and deterministic: identical inputs yield
// structurally identical rule lists, always with empty targets. Carrying
// wired targets across a configuration edit is the editor's job, done with
// Merge, keyed by condition token.
package rules

import (
	"fmt"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Derive produces the rule set a step must carry for the given mechanism
// and configuration. Rules come back in canonical order with TargetType
// node and empty targets.
func Derive(m domain.Mechanism, cfg domain.MechanismConfig) []domain.LogicRule {
	switch m {
	case domain.MechanismOpenEnded:
		return deriveOpenEnded(cfg)
	case domain.MechanismMultipleChoice:
		return deriveChoices(cfg.Options)
	case domain.MechanismButton:
		return deriveButtons(cfg.Buttons)
	case domain.MechanismNPS:
		return []domain.LogicRule{
			blank(domain.ConditionDetractor, "If detractor (score 0-6)"),
			blank(domain.ConditionPassive, "If passive (score 7-8)"),
			blank(domain.ConditionPromoter, "If promoter (score 9-10)"),
		}
	case domain.MechanismContactForm:
		return []domain.LogicRule{
			blank(domain.ConditionFormSubmitted, "If form submitted"),
			blank(domain.ConditionSkipped, "If skipped"),
		}
	case domain.MechanismCalendar:
		return []domain.LogicRule{
			blank(domain.ConditionDateSelected, "If date selected"),
			blank(domain.ConditionSkipped, "If skipped"),
		}
	case domain.MechanismFileUpload:
		return []domain.LogicRule{
			blank(domain.ConditionTextSubmitted, "If file submitted"),
			blank(domain.ConditionSkipped, "If skipped"),
		}
	default:
		return nil
	}
}

func deriveOpenEnded(cfg domain.MechanismConfig) []domain.LogicRule {
	var out []domain.LogicRule
	for _, ch := range cfg.Channels() {
		out = append(out, blank(ch, fmt.Sprintf("If %s response", ch)))
	}
	out = append(out, blank(domain.ConditionSkipped, "If skipped"))
	return out
}

func deriveChoices(options []string) []domain.LogicRule {
	out := make([]domain.LogicRule, 0, len(options))
	for i, opt := range options {
		out = append(out, blank(domain.OptionCondition(i), fmt.Sprintf("If %q selected", opt)))
	}
	return out
}

func deriveButtons(buttons []domain.ButtonSpec) []domain.LogicRule {
	out := make([]domain.LogicRule, 0, len(buttons))
	for i, b := range buttons {
		out = append(out, blank(domain.ButtonCondition(i), fmt.Sprintf("If %q clicked", b.Text)))
	}
	return out
}

func blank(condition, label string) domain.LogicRule {
	return domain.LogicRule{
		Condition:  condition,
		Label:      label,
		TargetType: domain.TargetNode,
	}
}

// Merge rebases in-progress wiring onto a freshly derived rule list.
// For every fresh rule whose condition token also exists in the previous
// list, the previous destination (target type and its payload) is carried
// over; tokens gone from the configuration drop their rules, new tokens
// start unwired. Recomputing rules is always a merge, never a blind
// replace.
func Merge(previous, fresh []domain.LogicRule) []domain.LogicRule {
	byCondition := make(map[string]domain.LogicRule, len(previous))
	for _, r := range previous {
		byCondition[r.Condition] = r
	}

	out := make([]domain.LogicRule, len(fresh))
	for i, r := range fresh {
		if prev, ok := byCondition[r.Condition]; ok {
			r.TargetType = prev.TargetType
			r.Target = prev.Target
			r.URL = prev.URL
			r.Text = prev.Text
			r.EndMessage = prev.EndMessage
			r.CTAText = prev.CTAText
			r.CTAURL = prev.CTAURL
		}
		out[i] = r
	}
	return out
}
