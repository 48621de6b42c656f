package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentify-dev/agentify/internal/conversation"
	"github.com/agentify-dev/agentify/internal/steering"
	"github.com/agentify-dev/agentify/internal/telemetry"
	"github.com/agentify-dev/agentify/internal/ui"
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate steering documents from the saved wizard session",
	Long: `Generates the steering documents for the current wizard session without
re-running the interactive steps. The session must have reached the demo
strategy step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := GetStateStore()
		defer func() { _ = st.Close() }()

		state, status, err := st.Load()
		if err != nil {
			return err
		}
		switch status {
		case store.StatusNotFound:
			return fmt.Errorf("no saved wizard session; run 'agentify wizard' first")
		case store.StatusCorrupted:
			return fmt.Errorf("the saved session could not be read; run 'agentify wizard' to start over")
		case store.StatusVersionMismatch:
			return fmt.Errorf("the saved session was written by an incompatible version; run 'agentify wizard' to start over")
		}
		if state.HighestStepReached < wizard.StepDemoStrategy {
			return fmt.Errorf("the wizard has only reached step %d of %d; finish it with 'agentify wizard'",
				state.HighestStepReached, wizard.StepCount)
		}

		return runGeneration(cmd.Context(), state, st)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

// newSteeringGenerator wires the generator with a factory that opens a
// fresh conversation per document attempt.
func newSteeringGenerator() *steering.Generator {
	cfg := GetConfig()
	factory := func(ctx context.Context, systemPrompt string) (steering.Sender, error) {
		return conversation.NewClientForConfig(ctx, GetLLMConfig(), systemPrompt)
	}
	return steering.NewGenerator(factory, cfg.Project.TemplatesDir)
}

// consolePrompter resolves steering-directory conflicts interactively.
type consolePrompter struct{}

func (consolePrompter) ResolveConflict(dir string) (steering.ConflictDecision, error) {
	fmt.Printf("%s %s\n", ui.StyleWarning.Render("Steering documents already exist in"), dir)
	idx, _, err := selectOption("How should they be handled", []string{
		"Overwrite them",
		"Back them up first",
		"Cancel generation",
	})
	if err != nil {
		return steering.DecisionCancel, err
	}
	switch idx {
	case 0:
		return steering.DecisionOverwrite, nil
	case 1:
		return steering.DecisionBackup, nil
	default:
		return steering.DecisionCancel, nil
	}
}

// runGeneration is the shared generate-and-write flow used by the wizard's
// final step and the generate command.
func runGeneration(ctx context.Context, state *wizard.WizardState, st *store.StateStore) error {
	g := newSteeringGenerator()
	w := GetSteeringWriter()

	spin := ui.NewSpinner("generating steering documents...")
	g.OnProgress(func(ev steering.ProgressEvent) {
		switch ev.Type {
		case steering.ProgressComplete:
			spin.SetSuffix(fmt.Sprintf("generated %s.md", ev.FileName))
		case steering.ProgressError:
			spin.SetSuffix(fmt.Sprintf("failed %s.md", ev.FileName))
		}
	})

	started := time.Now()
	spin.Start()
	result, err := steering.Run(ctx, g, w, consolePrompter{}, state)
	spin.Stop()
	if err != nil {
		return err
	}

	gen := result.Generation
	if t := telemetry.Get(); t != nil {
		t.TrackGeneration(len(gen.Files)+len(gen.Errors), len(gen.Files), len(gen.Errors),
			gen.Cancelled, time.Since(started).Milliseconds())
	}

	if gen.Cancelled && len(gen.Files) == 0 {
		fmt.Println(ui.StyleSubtle.Render("Generation cancelled; nothing was written."))
		return nil
	}
	if result.BackupPath != "" {
		fmt.Printf("%s %s\n", ui.StylePrefixDone.Render("Backed up existing documents to"), result.BackupPath)
	}
	for _, path := range result.WrittenPaths {
		fmt.Printf("%s %s\n", ui.StylePrefixDone.Render("Wrote"), path)
	}

	if gen.Success {
		fmt.Println()
		fmt.Println(ui.StyleSuccess.Render("All steering documents generated."))
		state.AdvanceTo(wizard.StepGenerate)
		return st.SaveImmediate(state)
	}

	failed := make([]string, 0, len(gen.Errors))
	for name, genErr := range gen.Errors {
		failed = append(failed, name)
		PrintError(fmt.Sprintf("Failed to generate %s.md", name), genErr)
	}
	return offerRetry(ctx, state, st, g, w, failed)
}

// offerRetry loops on the failed documents until they all succeed or the
// user gives up. Successful retries are written immediately.
func offerRetry(ctx context.Context, state *wizard.WizardState, st *store.StateStore, g *steering.Generator, w *steering.Writer, failed []string) error {
	for len(failed) > 0 {
		retry, err := confirm(fmt.Sprintf("Retry the %d failed document(s)", len(failed)))
		if err != nil || !retry {
			fmt.Println(ui.StyleSubtle.Render("You can retry later with 'agentify retry'."))
			return nil
		}
		telemetry.Track(telemetry.NewEvent(telemetry.EventRetryRequested).WithProp("count", len(failed)))

		result := g.RetryFiles(ctx, state, failed)
		if len(result.Files) > 0 {
			written, err := w.WriteFiles(result.Files)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Printf("%s %s\n", ui.StylePrefixDone.Render("Wrote"), path)
			}
		}

		failed = failed[:0]
		for name, genErr := range result.Errors {
			failed = append(failed, name)
			PrintError(fmt.Sprintf("Failed to generate %s.md", name), genErr)
		}
	}

	fmt.Println(ui.StyleSuccess.Render("All steering documents generated."))
	state.AdvanceTo(wizard.StepGenerate)
	return st.SaveImmediate(state)
}
