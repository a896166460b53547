package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id> [y|n]",
	Short: "Answer the pending decision of a suspended run",
	Long: `Supplies the decision a suspended run is waiting on and continues the
run until it completes or hits the next near-duplicate.

Without an answer argument the pending question is shown and the answer
is read interactively. Any answer other than "y" skips the chunk.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return errors.New("workflow service not configured")
	}

	runID := args[0]
	ctx := cmd.Context()

	var answer domain.Decision
	if len(args) == 2 {
		answer = domain.Decision(args[1])
	} else {
		if !stdinIsTerminal() {
			return errors.New("no answer given and stdin is not a terminal")
		}
		handle, err := workflowService.Status(ctx, runID)
		if err != nil {
			return fmt.Errorf("resume failed: %w", err)
		}
		if !handle.Suspended {
			return fmt.Errorf("run %s: %w", runID, domain.ErrNoPendingDecision)
		}
		asked, ok := askDecision(cmd, handle)
		if !ok {
			return errors.New("no answer given")
		}
		answer = asked
	}

	handle, err := driveStreaming(cmd, func() (*driving.RunHandle, error) {
		return workflowService.Resume(ctx, runID, answer)
	})
	if err != nil {
		return fmt.Errorf("resume failed: %w", err)
	}

	return finishRun(cmd, handle)
}
