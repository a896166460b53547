// Command curator is the entry point for the curator CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/curator-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/curator-cli/internal/adapters/driven/config/file"
	channelsink "github.com/custodia-labs/curator-cli/internal/adapters/driven/eventsink/channel"
	vectorsim "github.com/custodia-labs/curator-cli/internal/adapters/driven/similarity/vector"
	memstore "github.com/custodia-labs/curator-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/curator-cli/internal/adapters/driven/storage/sqlite"
	memindex "github.com/custodia-labs/curator-cli/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/curator-cli/internal/core/services"
	"github.com/custodia-labs/curator-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// eventBuffer sizes the sink channel. Runs are short; a small buffer
// keeps the engine from blocking on a slow terminal.
const eventBuffer = 64

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// Unconfigured providers come back nil. The engine reports
	// ErrLLMUnavailable when a run is started without one, so the
	// settings and runs commands keep working either way.
	llmService, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("%v", err)
	}
	if llmService != nil {
		promptStore, perr := file.NewPromptStore("")
		if perr != nil {
			logger.Warn("prompt store unavailable, using built-in prompts: %v", perr)
		} else if aware, ok := llmService.(driven.PromptStoreAware); ok {
			aware.SetPromptStore(promptStore)
		}
	}
	embeddingService, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("%v", err)
	}
	defer func() {
		result := ai.InitResult{EmbeddingService: embeddingService, LLMService: llmService}
		result.Close()
	}()

	similarityStore, err := newSimilarityStore(ctx, embeddingService, store, settingsService)
	if err != nil {
		return err
	}
	defer similarityStore.Close()

	sink := channelsink.NewSink(eventBuffer)
	defer sink.Close()

	engine := services.NewWorkflowEngine(llmService, similarityStore, store.RunStateStore(), sink)

	janitorConfig := settingsService.JanitorConfig()
	janitor := services.NewJanitor(janitorConfig, store.RunStateStore())
	if janitorConfig.Enabled {
		go func() {
			if err := janitor.Start(ctx); err != nil {
				logger.Warn("janitor stopped: %v", err)
			}
		}()
		defer janitor.Stop()
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Workflow: engine,
		Settings: settingsService,
		Sink:     sink,
	})

	return cli.Execute(ctx)
}

// newSimilarityStore picks the duplicate detector for this invocation.
// With an embedding service the index is vector-based and persisted
// chunks are reloaded into it; without one, matching falls back to
// exact text and keyword equality.
func newSimilarityStore(
	ctx context.Context,
	embedder driven.EmbeddingService,
	store *sqlite.Store,
	settingsService *services.SettingsService,
) (driven.SimilarityStore, error) {
	if embedder == nil {
		logger.Debug("no embedding service configured, using exact-match similarity")
		return memstore.NewChunkStore(), nil
	}

	similarityStore, err := vectorsim.NewStore(
		ctx, embedder, memindex.NewIndex(), store.ChunkStore(), settingsService.SimilarityPolicy(),
	)
	if err != nil {
		return nil, fmt.Errorf("initialising similarity store: %w", err)
	}
	return similarityStore, nil
}
