// Package prompt assembles the system prompt sent with every completion.
// Assembly is pure: identical inputs always produce identical prompts.
package prompt

import (
	"fmt"
	"strings"
)

// NoContextFallback replaces the context block when retrieval found
// nothing. Having no grounding is a normal state, not an error.
const NoContextFallback = "No specific business information was found for this question. Answer from general knowledge and invite the user to provide more detail."

const systemTemplate = `You are a customer support assistant for the following business:
%s

Tone: %s

Use the following business information to answer the user's question:

%s

Answer based on the business information above. If the information does not cover the question, say so honestly instead of guessing.`

// BuildSystem renders the system prompt from the bot's voice and the
// retrieved context. Chunks are trimmed and joined by blank lines; zero
// chunks substitute the fallback sentence. A non-blank custom prompt is
// prepended verbatim above the template, separated by a blank line.
func BuildSystem(businessDesc, tone string, contextChunks []string, custom string) string {
	contextBlock := NoContextFallback
	if len(contextChunks) > 0 {
		trimmed := make([]string, len(contextChunks))
		for i, c := range contextChunks {
			trimmed[i] = strings.TrimSpace(c)
		}
		contextBlock = strings.Join(trimmed, "\n\n")
	}

	body := fmt.Sprintf(systemTemplate, businessDesc, tone, contextBlock)

	if strings.TrimSpace(custom) != "" {
		return custom + "\n\n" + body
	}
	return body
}
