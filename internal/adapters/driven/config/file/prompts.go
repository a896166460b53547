package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSegment: `You are a text processing assistant. Your task is to break a given text into self-contained chunks, each representing a complete thought or idea. Here's the text you'll be working with:

<text>%s</text>

Please follow these steps to process the text:

1. Read and analyze the entire text carefully.

2. Identify natural break points where the text can be divided into self-contained chunks. Each chunk should represent a complete thought or idea. Keep together sentences that complement each other such when an example follows a statement

3. Extract these chunks from the text, maintaining the original wording and punctuation within each chunk.

4. Present each chunk on a new line, with an empty line separating each chunk. Do not use any other formatting such as identation, numbering, etc.

5. Do not include any additional output besides resulting chunks of text

Now, please proceed with processing the input text according to these instructions.`,

	driven.PromptKeywords: `You will be given a short chunk of text. Your task is to extract keywords from this text. Here is the text:

<text>
%s
</text>

To extract keywords, follow these guidelines:
1. Look for names or titles representing technologies, companies, products, or other entities.
2. If there are no clear names or titles, identify unique terms that represent specific areas of work, industries, or concepts.
3. Avoid verbs, common adjectives, and general nouns.
4. Focus on nouns and proper nouns that are central to the main idea of the text.
5. Typically, you should aim to extract 1-5 keywords, depending on the length and complexity of the text.

Here are some examples to guide you:

Good keyword extraction:
Text: "Apple unveiled its latest iPhone model with advanced AI capabilities."
Keywords: Apple, iPhone, AI

Bad keyword extraction:
Text: "The company released a new product last week."
Keywords: company, released, product, week

Present your extracted keywords in a comma-separated list. Do not include any additional output besides the keywords.

Think through your keyword selection process carefully before providing your final answer. Consider the relevance and specificity of each potential keyword.

Now, please extract the keywords from the given text and present them as instructed.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.curator/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".curator", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Curator Prompts

This directory contains customisable prompts used by Curator's LLM features.

## Files

- ` + "`segment.txt`" + ` - Breaks input text into self-contained chunks
- ` + "`keywords.txt`" + ` - Extracts keywords from a single chunk

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command or after restarting the TUI.

## Format Placeholders

Both prompts use a Go fmt placeholder:
- ` + "`%s`" + ` - The input text or chunk

Ensure customised prompts maintain the placeholder in the correct position.
`
	return os.WriteFile(path, []byte(content), 0600)
}
