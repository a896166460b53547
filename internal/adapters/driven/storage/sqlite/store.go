// Package sqlite provides persistent storage for Curator backed by a
// single SQLite database: checkpointed run state and accepted chunks
// with their embeddings.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/curator-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// run state and chunk store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.curator/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".curator", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunStateStore returns a RunStateStore interface backed by this store.
func (s *Store) RunStateStore() driven.RunStateStore {
	return &runStateStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Run State Store ====================

// runStateStore implements driven.RunStateStore.
type runStateStore struct {
	store *Store
}

var _ driven.RunStateStore = (*runStateStore)(nil)

// Save stores or updates the checkpoint for a run.
func (s *runStateStore) Save(ctx context.Context, state *domain.RunState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling run state: %w", err)
	}

	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, state.RunID, string(stateJSON), updatedAt.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("saving run state: %w", err)
	}
	return nil
}

// Get retrieves the checkpoint for a run.
func (s *runStateStore) Get(ctx context.Context, runID string) (*domain.RunState, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT state FROM runs WHERE id = ?", runID)

	var stateJSON string
	if err := row.Scan(&stateJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run state: %w", err)
	}

	var state domain.RunState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("unmarshalling run state: %w", err)
	}
	return &state, nil
}

// List returns all checkpointed run states.
func (s *runStateStore) List(ctx context.Context) ([]domain.RunState, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT state FROM runs ORDER BY updated_at")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var states []domain.RunState //nolint:prealloc // size unknown from query
	for rows.Next() {
		var stateJSON string
		if err := rows.Scan(&stateJSON); err != nil {
			return nil, fmt.Errorf("scanning run state: %w", err)
		}
		var state domain.RunState
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return nil, fmt.Errorf("unmarshalling run state: %w", err)
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return states, nil
}

// Delete removes the checkpoint for a run.
func (s *runStateStore) Delete(ctx context.Context, runID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("deleting run state: %w", err)
	}
	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunk stores an accepted chunk with its embedding.
func (s *chunkStore) SaveChunk(ctx context.Context, chunk driven.StoredChunk) error {
	if chunk.Chunk.ID == "" {
		return fmt.Errorf("saving chunk: %w: missing chunk ID", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chunks (id, text, keywords, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			keywords = excluded.keywords,
			embedding = excluded.embedding
	`, chunk.Chunk.ID, chunk.Chunk.Text, chunk.Chunk.Keywords,
		encodeEmbedding(chunk.Embedding), time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// GetChunk retrieves a stored chunk by identity.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*driven.StoredChunk, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, text, keywords, embedding FROM chunks WHERE id = ?", id)

	chunk, err := scanStoredChunk(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return chunk, nil
}

// ListChunks returns all stored chunks.
func (s *chunkStore) ListChunks(ctx context.Context) ([]driven.StoredChunk, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, text, keywords, embedding FROM chunks ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []driven.StoredChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanStoredChunk(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// CountChunks returns the number of stored chunks.
func (s *chunkStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// scanStoredChunk reads one chunk row through the given scan function.
func scanStoredChunk(scan func(dest ...any) error) (*driven.StoredChunk, error) {
	var chunk driven.StoredChunk
	var embedding []byte
	if err := scan(&chunk.Chunk.ID, &chunk.Chunk.Text, &chunk.Chunk.Keywords, &embedding); err != nil {
		return nil, err
	}
	chunk.Embedding = decodeEmbedding(embedding)
	return &chunk, nil
}

// encodeEmbedding serialises a vector as big-endian float32 bytes.
// Returns nil for an empty vector so the column stays NULL.
func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding deserialises big-endian float32 bytes.
func decodeEmbedding(buf []byte) []float32 {
	if len(buf) < 4 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.BigEndian.Uint32(buf[i*4:]))
	}
	return vec
}
