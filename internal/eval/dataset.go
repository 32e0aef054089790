package eval

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/memesrized/chatbot-escalation/internal/llm"
)

// TurnRecord is one message of a canned conversation.
type TurnRecord struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Example is a single dataset conversation with an optional expected
// outcome label and optional state seeds for whole-conversation mode.
type Example struct {
	ConversationID      string       `json:"conversation_id"`
	ConversationHistory []TurnRecord `json:"conversation_history"`
	ExpectedEscalation  *bool        `json:"expected_escalation,omitempty"`
	IsEscalationNeeded  *bool        `json:"is_escalation_needed,omitempty"`
	FailedAttemptsTotal int          `json:"failed_attempts_total,omitempty"`
	UnresolvedTurns     int          `json:"unresolved_turns,omitempty"`
}

// Expected returns the expected-escalation label, under either accepted
// field name, or nil when the example is unlabeled.
func (e Example) Expected() *bool {
	if e.ExpectedEscalation != nil {
		return e.ExpectedEscalation
	}
	return e.IsEscalationNeeded
}

// Messages converts the conversation history to chat messages.
func (e Example) Messages() []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(e.ConversationHistory))
	for _, turn := range e.ConversationHistory {
		messages = append(messages, llm.ChatMessage{Role: turn.Role, Content: turn.Message})
	}
	return messages
}

// LoadDataset reads and validates a JSON dataset file. A malformed example
// is a broken fixture, not a runtime condition, so any validation failure
// aborts the whole load.
func LoadDataset(path string) ([]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("eval: failed to read dataset: %w", err)
	}

	var dataset []Example
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("eval: failed to parse dataset: %w", err)
	}

	for i, example := range dataset {
		if err := validateExample(example); err != nil {
			return nil, fmt.Errorf("eval: invalid example %d: %w", i, err)
		}
	}
	return dataset, nil
}

func validateExample(example Example) error {
	if example.ConversationID == "" {
		return fmt.Errorf("missing conversation_id")
	}
	for i, turn := range example.ConversationHistory {
		if turn.Role != llm.RoleUser && turn.Role != llm.RoleAssistant {
			return fmt.Errorf("conversation %s turn %d: invalid role %q", example.ConversationID, i, turn.Role)
		}
		if turn.Message == "" {
			return fmt.Errorf("conversation %s turn %d: empty message", example.ConversationID, i)
		}
	}
	if example.FailedAttemptsTotal < 0 || example.UnresolvedTurns < 0 {
		return fmt.Errorf("conversation %s: negative state seed", example.ConversationID)
	}
	return nil
}
