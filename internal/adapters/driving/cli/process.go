package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

var (
	processRunID string
	processFile  string
	processYes   bool
	processNo    bool
)

var processCmd = &cobra.Command{
	Use:   "process [text]",
	Short: "Run a text through the chunking pipeline",
	Long: `Splits the text into chunks, extracts keywords and indexes each chunk,
pausing for a y/n decision whenever a near-duplicate is found.

The text can be given as an argument, read from a file with --file, or
piped on stdin. When stdin is not a terminal, decisions cannot be asked
interactively; the run stays suspended unless --yes or --no is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processRunID, "run-id", "", "stable run identity (generated when empty)")
	processCmd.Flags().StringVarP(&processFile, "file", "f", "", "read the text from a file")
	processCmd.Flags().BoolVar(&processYes, "yes", false, "index near-duplicate chunks without asking")
	processCmd.Flags().BoolVar(&processNo, "no", false, "skip near-duplicate chunks without asking")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return errors.New("workflow service not configured")
	}
	if processYes && processNo {
		return errors.New("--yes and --no are mutually exclusive")
	}

	text, err := resolveText(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	handle, err := driveStreaming(cmd, func() (*driving.RunHandle, error) {
		return workflowService.Start(ctx, processRunID, text)
	})
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	return finishRun(cmd, handle)
}

// resolveText picks the input text: argument, file, then piped stdin.
func resolveText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && processFile != "" {
		return "", errors.New("give the text as an argument or with --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if processFile != "" {
		data, err := os.ReadFile(processFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if stdinIsTerminal() {
		return "", errors.New("no input: give the text as an argument, with --file, or pipe it on stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// finishRun resolves decision points until the run completes or no
// answer source is available, then prints the outcome.
func finishRun(cmd *cobra.Command, handle *driving.RunHandle) error {
	ctx := cmd.Context()

	for handle.Suspended {
		answer, ok := resolveAnswer(cmd, handle)
		if !ok {
			cmd.Printf("\nRun %s is suspended awaiting a decision.\n", handle.RunID)
			cmd.Printf("Answer later with: curator resume %s <y|n>\n", handle.RunID)
			return nil
		}

		runID := handle.RunID
		next, err := driveStreaming(cmd, func() (*driving.RunHandle, error) {
			return workflowService.Resume(ctx, runID, answer)
		})
		if err != nil {
			return fmt.Errorf("resume failed: %w", err)
		}
		handle = next
	}

	printSummary(cmd, handle)
	return nil
}

// resolveAnswer produces the decision for a suspended run. The second
// return value is false when no answer can be obtained here.
func resolveAnswer(cmd *cobra.Command, handle *driving.RunHandle) (domain.Decision, bool) {
	if processYes {
		return domain.DecisionStore, true
	}
	if processNo {
		return "n", true
	}
	if !stdinIsTerminal() {
		return "", false
	}
	return askDecision(cmd, handle)
}

// askDecision prints the pending question and reads one y/n line.
func askDecision(cmd *cobra.Command, handle *driving.RunHandle) (domain.Decision, bool) {
	pending := handle.Pending()
	if pending == nil {
		return "", false
	}

	cmd.Println()
	cmd.Printf("Chunk %d looks like an already indexed chunk:\n", pending.ChunkIndex+1)
	cmd.Printf("  New:      %s\n", truncate(pending.Chunk.Text, 120))
	cmd.Printf("  Existing: %s\n", truncate(pending.Match.Text, 120))
	cmd.Print("Do you still want to index this chunk? [y/n]: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return domain.Decision(strings.TrimSpace(line)), true
}

// driveStreaming executes fn on its own goroutine and relays engine
// events to the terminal until fn returns. Without a sink it simply
// calls fn.
func driveStreaming(cmd *cobra.Command, fn func() (*driving.RunHandle, error)) (*driving.RunHandle, error) {
	if eventSink == nil {
		return fn()
	}

	type result struct {
		handle *driving.RunHandle
		err    error
	}
	done := make(chan result, 1)
	go func() {
		handle, err := fn()
		done <- result{handle, err}
	}()

	for {
		select {
		case event := <-eventSink.Events():
			if event != nil {
				printEvent(cmd, event)
			}
		case res := <-done:
			// Drain anything published before fn returned.
			for {
				select {
				case event := <-eventSink.Events():
					if event != nil {
						printEvent(cmd, event)
					}
					continue
				default:
				}
				break
			}
			return res.handle, res.err
		}
	}
}

// printEvent renders one engine event for the terminal.
func printEvent(cmd *cobra.Command, event domain.Event) {
	switch e := event.(type) {
	case domain.TextSplitEvent:
		cmd.Printf("Split text into %d chunks.\n", e.ChunkCount)

	case domain.ChunkKeywordsEvent:
		cmd.Printf("[%d] %s\n", e.ChunkIndex+1, truncate(e.Chunk.Text, 80))
		cmd.Printf("    keywords: %s\n", e.Chunk.Keywords)

	case domain.SimilarChunkEvent:
		cmd.Printf("    similar to existing chunk: %s\n", truncate(e.Match.Text, 80))

	case domain.ChunkResultEvent:
		switch e.Result {
		case domain.ResultIndexed:
			cmd.Printf("    -> indexed\n")
		case domain.ResultSkipped:
			cmd.Printf("    -> skipped\n")
		}

	case domain.RunCompletedEvent:
		// Summary is printed by the command once the handle is back.
	}
}

// printSummary reports the terminal disposition of a completed run.
func printSummary(cmd *cobra.Command, handle *driving.RunHandle) {
	if handle == nil || handle.State == nil {
		return
	}

	indexed, skipped := 0, 0
	for _, chunk := range handle.State.Chunks {
		if chunk.Result == nil {
			continue
		}
		switch *chunk.Result {
		case domain.ResultIndexed:
			indexed++
		case domain.ResultSkipped:
			skipped++
		}
	}

	cmd.Println()
	cmd.Printf("Run %s completed: %d indexed, %d skipped.\n", handle.RunID, indexed, skipped)
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
