package escalation

import "github.com/memesrized/chatbot-escalation/internal/llm"

// LastN returns the trailing window of at most n messages. The classifier
// has no memory beyond what it is handed, so callers truncate with this
// before every Decide call; everything the window drops must already be
// captured in the state counters.
func LastN(messages []llm.ChatMessage, n int) []llm.ChatMessage {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
