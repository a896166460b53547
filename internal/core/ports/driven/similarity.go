package driven

import (
	"context"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

// SimilarityStore is the lookup/insert abstraction over previously
// accepted chunks. The engine never mutates entries already accepted
// into the store.
//
// Implementations must tolerate concurrent FindSimilar/Add calls from
// independent runs. There is no cross-run locking: two runs may insert
// near-duplicate chunks before either observes the other's insert.
// That race is a documented limitation, not a bug.
type SimilarityStore interface {
	// FindSimilar returns the best existing match whose similarity to
	// the chunk's text clears the configured acceptance threshold, or
	// nil when the candidate pool is empty or nothing clears it. Only a
	// bounded window of top-ranked candidates is inspected; the store
	// does not guarantee exhaustive search.
	FindSimilar(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error)

	// Add inserts the chunk's text and keywords into the index and
	// returns the store-internal identity. Duplicate inserts of equal
	// text are allowed: the decision step exists precisely so a human
	// can choose not to insert.
	Add(ctx context.Context, chunk domain.Chunk) (string, error)

	// Size returns the number of stored chunks.
	Size(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// SimilarityPolicy is the tunable matching policy for a similarity
// store. The acceptance threshold and whether keywords must also match
// differ between deployments, so both are configuration, not contract.
type SimilarityPolicy struct {
	// Threshold is the minimum similarity score for a match (0-1).
	Threshold float64

	// CandidateWindow bounds how many top-ranked candidates are
	// inspected per lookup.
	CandidateWindow int

	// MatchKeywords additionally requires exact keyword equality
	// between the candidate and the probe chunk.
	MatchKeywords bool
}

// DefaultSimilarityPolicy returns the stock matching policy.
func DefaultSimilarityPolicy() SimilarityPolicy {
	return SimilarityPolicy{
		Threshold:       0.85,
		CandidateWindow: 5,
		MatchKeywords:   false,
	}
}
