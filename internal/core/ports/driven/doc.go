// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LLMService: Segmentation and keyword extraction run on it
//   - SimilarityStore: Lookup/insert over previously accepted chunks
//   - RunStateStore: Checkpoint persistence across suspension boundaries
//   - EventSink: Receives progress events from the workflow engine
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - EmbeddingService: Generates vectors for the vector-backed
//     SimilarityStore. The in-memory exact-match store needs none.
//   - VectorIndex: Vector storage/search behind the vector-backed
//     SimilarityStore.
//   - PromptStore: User-editable prompt templates. Without it, services
//     fall back to embedded defaults.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
