// Package domain defines the core business entities for Curator.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A self-contained passage of text with derived keywords
//   - RunState: The full state of one workflow run, durable across suspension
//   - Event: Progress notifications emitted while a run executes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
