package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentify-dev/agentify/internal/steering"
	"github.com/agentify-dev/agentify/internal/telemetry"
	"github.com/agentify-dev/agentify/internal/ui"
	"github.com/agentify-dev/agentify/store"
)

var retryCmd = &cobra.Command{
	Use:   "retry <document>...",
	Short: "Regenerate specific steering documents",
	Long: `Regenerates the named steering documents (for example 'tech' or
'demo-strategy') from the saved wizard session, leaving the rest
untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			if _, ok := steering.SpecByName(strings.TrimSuffix(name, ".md")); !ok {
				return fmt.Errorf("unknown steering document %q", name)
			}
		}

		st := GetStateStore()
		defer func() { _ = st.Close() }()

		state, status, err := st.Load()
		if err != nil {
			return err
		}
		if status != store.StatusLoaded {
			return fmt.Errorf("no usable wizard session (%s); run 'agentify wizard' first", status)
		}

		names := make([]string, len(args))
		for i, name := range args {
			names[i] = strings.TrimSuffix(name, ".md")
		}
		telemetry.Track(telemetry.NewEvent(telemetry.EventRetryRequested).WithProp("count", len(names)))

		g := newSteeringGenerator()
		spin := ui.NewSpinner("regenerating steering documents...")
		spin.Start()
		result := g.RetryFiles(cmd.Context(), state, names)
		spin.Stop()

		if len(result.Files) > 0 {
			written, err := GetSteeringWriter().WriteFiles(result.Files)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Printf("%s %s\n", ui.StylePrefixDone.Render("Wrote"), path)
			}
		}
		for name, genErr := range result.Errors {
			PrintError(fmt.Sprintf("Failed to generate %s.md", name), genErr)
		}
		if !result.Success {
			return fmt.Errorf("%d document(s) failed", len(result.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
