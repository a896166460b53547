package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

var runsJSON bool

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List suspended runs",
	Long: `Lists every checkpointed run awaiting a decision, with the chunk it is
parked on. Answer with 'curator resume <run-id> <y|n>'.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if workflowService == nil {
		return errors.New("workflow service not configured")
	}

	handles, err := workflowService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if runsJSON {
		return outputRunsJSON(cmd, handles)
	}

	if len(handles) == 0 {
		cmd.Println("No suspended runs.")
		return nil
	}

	cmd.Println("Suspended runs:")
	cmd.Println()
	for i := range handles {
		printRunLine(cmd, &handles[i])
	}
	return nil
}

func printRunLine(cmd *cobra.Command, handle *driving.RunHandle) {
	state := handle.State
	cmd.Printf("  %s\n", handle.RunID)
	if state == nil {
		return
	}
	cmd.Printf("      chunk %d of %d, idle since %s\n",
		state.Cursor+1, len(state.Chunks), state.UpdatedAt.Format("2006-01-02 15:04"))
	if pending := handle.Pending(); pending != nil {
		cmd.Printf("      pending: %s\n", truncate(pending.Chunk.Text, 70))
	}
	cmd.Println()
}

// runsView is the JSON shape for one listed run.
type runsView struct {
	RunID      string `json:"run_id"`
	Suspended  bool   `json:"suspended"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkCount int    `json:"chunk_count"`
	Pending    string `json:"pending_chunk,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func outputRunsJSON(cmd *cobra.Command, handles []driving.RunHandle) error {
	views := make([]runsView, 0, len(handles))
	for i := range handles {
		view := runsView{
			RunID:     handles[i].RunID,
			Suspended: handles[i].Suspended,
		}
		if state := handles[i].State; state != nil {
			view.ChunkIndex = state.Cursor
			view.ChunkCount = len(state.Chunks)
			if !state.UpdatedAt.IsZero() {
				view.UpdatedAt = state.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
			}
		}
		if pending := handles[i].Pending(); pending != nil {
			view.Pending = pending.Chunk.Text
		}
		views = append(views, view)
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal runs: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
