package driven

import "context"

// LLMService provides language model operations for text segmentation
// and keyword extraction.
//
// Implementations may include:
//   - OpenAI (GPT-4, GPT-3.5)
//   - Anthropic (Claude)
//   - Ollama (local models)
//   - LM Studio (local inference server)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// SegmentText partitions text into self-contained thought units,
	// preserving original wording and punctuation. Units are returned
	// in input order, trimmed, with empties discarded.
	SegmentText(ctx context.Context, text string) ([]string, error)

	// ExtractKeywords derives a short comma-separated keyword string
	// (1-5 terms) for one chunk of text. Named entities, technologies
	// and products are preferred over verbs and generic nouns.
	ExtractKeywords(ctx context.Context, text string) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before starting a run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
