package escalation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/memesrized/chatbot-escalation/internal/llm"
)

const afterUserPrompt = `You are an escalation decision classifier for a customer support chat system.

Your task is to analyze the recent conversation, where the USER has just spoken, and determine whether it should be escalated to a human agent.

## Current State
- Failed attempts (assistant failures): %d
- Unresolved turns (consecutive): %d

## Recent Conversation
%s

## Your Analysis Task
Based on the conversation above, determine:

1. **escalate_now**: Should this conversation be escalated to a human now?

2. **reason_codes**: Which reason codes apply? Select one or more:

   ESCALATION REASONS (use when escalation is needed):
   - USER_REQUESTED_HUMAN: User explicitly asks for human assistance
   - CHURN_RISK: User shows strong frustration or threatens to leave
   - REPEATED_FAILURE: Assistant keeps failing or conversation is stuck
   - INSTRUCTIONS_DID_NOT_WORK: User followed steps but problem persists
   - URGENT_OR_HIGH_STAKES: Urgent/high-stakes issue remains unresolved

   NON-ESCALATION REASONS (use when escalation is not needed):
   - HOW_TO_SOLVABLE: Straightforward how-to request, assistant can help
   - RESOLVED_CONFIRMED: User confirms problem is solved
   - SMALL_TALK_OR_GREETING: No support request, only greeting/small talk
   - TROUBLESHOOTING_IN_PROGRESS: Troubleshooting progressing without frustration
   - NEED_MORE_INFO: Assistant asks clarifying questions, user cooperating

3. **unresolved**: Is the user's issue STILL unresolved after this exchange?
   - User says problem persists
   - User repeats request or complaint
   - Troubleshooting continues without confirmation

4. **frustration**: User's frustration level (none, mild, or high)

Respond with JSON only, in this exact shape:
{"escalate_now": <bool>, "reason_codes": ["<code>", ...], "unresolved": <bool>, "frustration": "<none|mild|high>"}`

const afterAssistantPrompt = `You are an escalation decision classifier for a customer support chat system.

Your task is to analyze the recent conversation, where the ASSISTANT has just spoken, and determine whether it should be escalated to a human agent.

## Current State
- Failed attempts (assistant failures): %d
- Unresolved turns (consecutive): %d

## Recent Conversation
%s

## Your Analysis Task
Based on the conversation above, determine:

1. **escalate_now**: Should this conversation be escalated to a human now?

2. **reason_codes**: Which reason codes apply? Select one or more:

   ESCALATION REASONS (use when escalation is needed):
   - REPEATED_FAILURE: Assistant keeps failing or conversation is stuck
   - ASSISTANT_IRRELEVANT_OR_INCOMPLETE: Response is irrelevant or incomplete
   - URGENT_OR_HIGH_STAKES: Urgent/high-stakes issue remains unresolved
   - CAPABILITY_OR_POLICY_BLOCK: Assistant cannot perform required action

   NON-ESCALATION REASONS (use when escalation is not needed):
   - HOW_TO_SOLVABLE: Straightforward how-to request, assistant can help
   - TROUBLESHOOTING_IN_PROGRESS: Troubleshooting progressing without frustration
   - NEED_MORE_INFO: Assistant asks clarifying questions, user cooperating

3. **failed_attempt**: Did the assistant's LAST response fail to provide meaningful, actionable help?
   - Generic apology with no next steps
   - Refusal without actionable alternative
   - Irrelevant answer
   - "Something went wrong" type response

Respond with JSON only, in this exact shape:
{"escalate_now": <bool>, "reason_codes": ["<code>", ...], "failed_attempt": <bool>}`

// formatConversation renders the window as a JSON array of role-tagged
// entries, oldest first. Indented output costs tokens but scores better
// than compact JSON in practice, so it stays.
func formatConversation(messages []llm.ChatMessage) string {
	entries := make([]map[string]string, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, map[string]string{
			strings.ToUpper(msg.Role): msg.Content,
		})
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		// Plain string content cannot fail to marshal.
		return ""
	}
	return string(data)
}

// buildPrompt selects the turn-specific template and fills in the window
// and state counters. The last message's role must equal turn; callers own
// that invariant.
func buildPrompt(messages []llm.ChatMessage, state State, turn Turn) string {
	template := afterUserPrompt
	if turn == TurnAssistant {
		template = afterAssistantPrompt
	}
	return fmt.Sprintf(template,
		state.FailedAttemptsTotal,
		state.UnresolvedTurns,
		formatConversation(messages),
	)
}
