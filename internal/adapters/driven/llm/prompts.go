// Package llm holds the prompt templates and reply parsing shared by
// the provider-specific LLM adapters. Each provider package (ollama,
// openai, anthropic) implements the transport; the segmentation and
// keyword extraction behaviour is identical across providers.
package llm

import (
	"strings"

	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// DefaultSegmentPrompt is the fallback prompt when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultSegmentPrompt = `You are a text processing assistant. Your task is to break a given text into self-contained chunks, each representing a complete thought or idea. Here's the text you'll be working with:

<text>%s</text>

Please follow these steps to process the text:

1. Read and analyze the entire text carefully.

2. Identify natural break points where the text can be divided into self-contained chunks. Each chunk should represent a complete thought or idea. Keep together sentences that complement each other such when an example follows a statement

3. Extract these chunks from the text, maintaining the original wording and punctuation within each chunk.

4. Present each chunk on a new line, with an empty line separating each chunk. Do not use any other formatting such as identation, numbering, etc.

5. Do not include any additional output besides resulting chunks of text

Now, please proceed with processing the input text according to these instructions.`

// DefaultKeywordsPrompt is the fallback prompt when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultKeywordsPrompt = `You will be given a short chunk of text. Your task is to extract keywords from this text. Here is the text:

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

Now, please extract the keywords from the given text and present them as instructed.`

// LoadPrompt loads a prompt from the store, falling back to the default
// if no store is configured or the load fails.
func LoadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// SplitSegments parses a segmentation reply into individual chunks.
// The model is instructed to separate chunks with blank lines; each
// segment is trimmed and empties are discarded, preserving input order.
func SplitSegments(reply string) []string {
	var segments []string
	for _, part := range strings.Split(reply, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}
