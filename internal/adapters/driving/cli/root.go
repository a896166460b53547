// Package cli implements the cobra command tree for curator.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	channelsink "github.com/custodia-labs/curator-cli/internal/adapters/driven/eventsink/channel"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
	"github.com/custodia-labs/curator-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services the commands drive. Set once by SetServices before Execute.
var (
	workflowService driving.WorkflowService
	settingsService driving.SettingsService
	eventSink       *channelsink.Sink
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curate free-form text into a deduplicated chunk index",
	Long: `Curator splits free-form text into self-contained chunks with an LLM,
extracts keywords for each chunk, and checks every chunk against the
index of previously accepted chunks. When a near-duplicate is found the
run pauses and asks whether to index the chunk anyway.

Runs suspend and resume across process boundaries: answer later with
'curator resume'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services bundles everything the command tree needs.
type Services struct {
	Workflow driving.WorkflowService
	Settings driving.SettingsService

	// Sink is the engine's event sink. Commands that drive a run stream
	// its events to the terminal.
	Sink *channelsink.Sink
}

// SetServices wires the services into the command tree.
func SetServices(s Services) {
	workflowService = s.Workflow
	settingsService = s.Settings
	eventSink = s.Sink
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
