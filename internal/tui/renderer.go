// Package tui renders playback steps for the terminal. The real product
// plays video; in the terminal a step is presented as markdown built
// from its label, media reference and answer mechanism.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// StepMarkdown builds the markdown presentation of a step.
func StepMarkdown(n *domain.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", n.Label)
	if n.MediaRef != "" {
		fmt.Fprintf(&b, "*[video: %s]*\n\n", n.MediaRef)
	}

	switch n.Mechanism {
	case domain.MechanismMultipleChoice:
		for i, opt := range n.Config.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	case domain.MechanismButton:
		for i, btn := range n.Config.Buttons {
			fmt.Fprintf(&b, "%d. [%s]\n", i+1, btn.Text)
		}
	case domain.MechanismNPS:
		b.WriteString("Rate from **0** (not at all likely) to **10** (extremely likely).\n")
	case domain.MechanismContactForm:
		for _, f := range n.Config.Fields {
			if !f.Enabled {
				continue
			}
			marker := ""
			if f.Required {
				marker = " *"
			}
			fmt.Fprintf(&b, "- %s%s\n", f.Label, marker)
		}
	case domain.MechanismCalendar:
		b.WriteString("Pick a date (YYYY-MM-DD).\n")
	case domain.MechanismFileUpload:
		b.WriteString("Attach a file (enter a path or URL).\n")
	default:
		channels := n.Config.Channels()
		if len(channels) > 0 {
			fmt.Fprintf(&b, "Reply via %s.\n", strings.Join(channels, ", "))
		}
	}
	return b.String()
}

// OutcomeMarkdown builds the markdown shown when a session ends or
// redirects.
func OutcomeMarkdown(out domain.Outcome) string {
	switch out.Kind {
	case domain.OutcomeEnd:
		md := fmt.Sprintf("### %s\n", out.EndMessage)
		if out.CTAText != "" && out.CTAURL != "" {
			md += fmt.Sprintf("\n[%s](%s)\n", out.CTAText, out.CTAURL)
		}
		return md
	case domain.OutcomeURL:
		return fmt.Sprintf("Continuing at <%s>\n", out.URL)
	case domain.OutcomeText:
		return fmt.Sprintf("> %s\n", out.Text)
	}
	return ""
}
