// Package cli drives interactive playback in the terminal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/kinoflow/kinoflow"
	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/internal/tui"
	"github.com/kinoflow/kinoflow/pkg/domain"
)

// PlayOptions configures an interactive playback run.
type PlayOptions struct {
	GraphPath string
	Debug     bool
	NoBanner  bool
}

// RunPlayback walks a visitor through the graph on stdin/stdout.
// Typing "skip" on any step skips it.
func RunPlayback(opts PlayOptions) error {
	logger := logging.NewNop()
	if opts.Debug {
		logger = logging.New(slog.LevelDebug)
	}

	if !opts.NoBanner {
		tui.PrintBanner(kinoflow.Version)
	}

	flow, err := kinoflow.OpenFile(opts.GraphPath, kinoflow.WithLogger(logger))
	if err != nil {
		return err
	}

	render := tui.NewRenderer()
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	state := flow.Start(ctx)
	for !state.Completed {
		node := flow.Graph().NodeByID(state.CurrentNodeID)
		if node == nil {
			return fmt.Errorf("current step %q not found in graph", state.CurrentNodeID)
		}

		printMarkdown(render, tui.StepMarkdown(node))

		ans, ok := promptAnswer(scanner, node)
		if !ok {
			// stdin closed
			fmt.Println()
			return nil
		}

		outcome, err := flow.Submit(ctx, state, ans)
		if err != nil {
			return err
		}
		if md := tui.OutcomeMarkdown(outcome); md != "" {
			printMarkdown(render, md)
		}
	}
	return nil
}

func printMarkdown(render func(string) (string, error), md string) {
	out, err := render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

func promptAnswer(scanner *bufio.Scanner, node *domain.Node) (domain.Answer, bool) {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return domain.Answer{}, false
		}
		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "skip") {
			return domain.Skip(), true
		}

		ans, err := parseAnswer(node, input)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return ans, true
	}
}

func parseAnswer(node *domain.Node, input string) (domain.Answer, error) {
	switch node.Mechanism {
	case domain.MechanismMultipleChoice:
		return pickLabeled(input, node.Config.Options)

	case domain.MechanismButton:
		labels := make([]string, len(node.Config.Buttons))
		for i, b := range node.Config.Buttons {
			labels[i] = b.Text
		}
		return pickLabeled(input, labels)

	case domain.MechanismNPS:
		score, err := strconv.Atoi(input)
		if err != nil || score < 0 || score > 10 {
			return domain.Answer{}, fmt.Errorf("enter a score between 0 and 10")
		}
		return domain.NPS(score), nil

	case domain.MechanismContactForm:
		return domain.Answer{Value: input}, nil

	case domain.MechanismCalendar:
		if input == "" {
			return domain.Answer{}, fmt.Errorf("enter a date")
		}
		return domain.Answer{Value: input}, nil

	case domain.MechanismFileUpload:
		if input == "" {
			return domain.Answer{}, fmt.Errorf("enter a file path or URL")
		}
		return domain.Answer{FileURL: input}, nil

	default:
		// Open ended: typed replies use the text channel.
		return domain.Answer{Channel: domain.ChannelText, Value: input}, nil
	}
}

// pickLabeled resolves a 1-based index or an exact label.
func pickLabeled(input string, labels []string) (domain.Answer, error) {
	if i, err := strconv.Atoi(input); err == nil {
		if i < 1 || i > len(labels) {
			return domain.Answer{}, fmt.Errorf("pick a number between 1 and %d", len(labels))
		}
		return domain.Selected(labels[i-1]), nil
	}
	for _, label := range labels {
		if strings.EqualFold(label, input) {
			return domain.Selected(label), nil
		}
	}
	return domain.Answer{}, fmt.Errorf("no option matches %q", input)
}
