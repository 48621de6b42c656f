package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentify-dev/agentify/internal/ui"
	"github.com/agentify-dev/agentify/internal/wizard"
	"github.com/agentify-dev/agentify/store"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or clear the saved wizard session",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a summary of the saved wizard session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := GetStateStore()
		defer func() { _ = st.Close() }()

		state, status, err := st.Load()
		if err != nil {
			return err
		}
		switch status {
		case store.StatusNotFound:
			fmt.Println(ui.StyleSubtle.Render("No saved wizard session."))
			return nil
		case store.StatusCorrupted:
			fmt.Println(ui.StyleWarning.Render("The saved session exists but could not be read."))
			return nil
		case store.StatusVersionMismatch:
			fmt.Println(ui.StyleWarning.Render("The saved session was written by an incompatible version."))
			return nil
		}

		fmt.Println(ui.StyleSectionTitle.Render("Wizard session"))
		fmt.Printf("  Step:       %d of %d (highest reached: %d)\n",
			state.CurrentStep, wizard.StepCount, state.HighestStepReached)
		fmt.Printf("  Objective:  %s\n", orDash(state.BusinessObjective))
		fmt.Printf("  Industry:   %s\n", orDash(state.Industry))
		fmt.Printf("  Systems:    %s\n", orDash(strings.Join(state.SelectedSystems, ", ")))
		fmt.Printf("  Outcome:    %s\n", orDash(state.Outcome.Statement))
		if state.Security.Skipped {
			fmt.Println("  Security:   skipped")
		} else {
			fmt.Printf("  Security:   %s, %d framework(s), %d approval gate(s)\n",
				orDash(string(state.Security.DataSensitivity)),
				len(state.Security.Frameworks), len(state.Security.ApprovalGates))
		}
		fmt.Printf("  Agents:     %d (%s pattern)\n",
			len(state.AgentDesign.EffectiveAgents()), state.AgentDesign.EffectivePattern())
		fmt.Printf("  Mocks:      %d\n", len(state.MockData.Mocks))
		fmt.Printf("  Scenes:     %d\n", len(state.DemoStrategy.Scenes))
		if meta := state.UploadedFileMeta; meta != nil {
			fmt.Printf("  Document:   %s (%d bytes, uploaded %s; re-upload required)\n",
				meta.FileName, meta.FileSize,
				time.UnixMilli(meta.UploadedAt).Format("2006-01-02"))
		}
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved wizard session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := GetStateStore()
		defer func() { _ = st.Close() }()

		exists, err := st.Exists()
		if err != nil {
			return err
		}
		if !exists {
			fmt.Println(ui.StyleSubtle.Render("No saved wizard session."))
			return nil
		}

		sure, err := confirm("Delete the saved wizard session")
		if err != nil {
			return err
		}
		if !sure {
			return nil
		}
		if err := st.Clear(); err != nil {
			return err
		}
		fmt.Println(ui.StylePrefixDone.Render("Saved session deleted."))
		return nil
	},
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
