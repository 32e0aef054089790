package escalation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/memesrized/chatbot-escalation/internal/llm"
)

// mockOracle records calls and plays back a canned response or error.
type mockOracle struct {
	response string
	err      error
	calls    int
	lastReq  llm.Request
}

func (m *mockOracle) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return llm.Response{}, m.err
	}
	return llm.Response{Text: m.response}, nil
}

func userWindow() []llm.ChatMessage {
	return []llm.ChatMessage{
		{Role: llm.RoleUser, Content: "My payments page keeps erroring out"},
		{Role: llm.RoleAssistant, Content: "Could you try clearing your cache?"},
		{Role: llm.RoleUser, Content: "Still broken, same error"},
	}
}

func assistantWindow() []llm.ChatMessage {
	return append(userWindow(), llm.ChatMessage{
		Role: llm.RoleAssistant, Content: "I'm sorry, something went wrong.",
	})
}

func TestClassifier_EmptyWindowFastPath(t *testing.T) {
	oracle := &mockOracle{}
	c := NewClassifier(oracle, "test-model", nil, nil)

	decision := c.Decide(context.Background(), nil, State{}, TurnUser)

	if oracle.calls != 0 {
		t.Fatalf("empty window must not invoke the oracle, got %d calls", oracle.calls)
	}
	if decision.EscalateNow() {
		t.Fatal("empty window must not escalate")
	}
	d, ok := decision.(DecisionAfterUser)
	if !ok {
		t.Fatalf("expected DecisionAfterUser, got %T", decision)
	}
	if d.Unresolved || d.Frustration != FrustrationNone {
		t.Fatalf("unexpected fast-path decision: %+v", d)
	}
	if len(d.ReasonCodes) != 1 || d.ReasonCodes[0] != ReasonSmallTalkOrGreeting {
		t.Fatalf("expected SMALL_TALK_OR_GREETING, got %v", d.ReasonCodes)
	}
}

func TestClassifier_Decide(t *testing.T) {
	tests := []struct {
		name         string
		turn         Turn
		messages     []llm.ChatMessage
		response     string
		wantEscalate bool
		wantReasons  []ReasonCode
	}{
		{
			name:         "after user escalation",
			turn:         TurnUser,
			messages:     userWindow(),
			response:     `{"escalate_now": true, "reason_codes": ["INSTRUCTIONS_DID_NOT_WORK", "CHURN_RISK"], "unresolved": true, "frustration": "high"}`,
			wantEscalate: true,
			wantReasons:  []ReasonCode{ReasonInstructionsFailed, ReasonChurnRisk},
		},
		{
			name:         "after user no escalation",
			turn:         TurnUser,
			messages:     userWindow(),
			response:     `{"escalate_now": false, "reason_codes": ["TROUBLESHOOTING_IN_PROGRESS"], "unresolved": true, "frustration": "mild"}`,
			wantEscalate: false,
			wantReasons:  []ReasonCode{ReasonTroubleshooting},
		},
		{
			name:         "after assistant failed attempt",
			turn:         TurnAssistant,
			messages:     assistantWindow(),
			response:     `{"escalate_now": false, "reason_codes": ["NEED_MORE_INFO"], "failed_attempt": true}`,
			wantEscalate: false,
			wantReasons:  []ReasonCode{ReasonNeedMoreInfo},
		},
		{
			name:         "json wrapped in prose",
			turn:         TurnAssistant,
			messages:     assistantWindow(),
			response:     "Here is my analysis:\n```json\n{\"escalate_now\": true, \"reason_codes\": [\"REPEATED_FAILURE\"], \"failed_attempt\": true}\n```",
			wantEscalate: true,
			wantReasons:  []ReasonCode{ReasonRepeatedFailure},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &mockOracle{response: tt.response}
			c := NewClassifier(oracle, "test-model", nil, nil)

			decision := c.Decide(context.Background(), tt.messages, State{}, tt.turn)

			if decision.Turn() != tt.turn {
				t.Fatalf("expected %s variant, got %s", tt.turn, decision.Turn())
			}
			if decision.EscalateNow() != tt.wantEscalate {
				t.Fatalf("escalate_now = %v, want %v", decision.EscalateNow(), tt.wantEscalate)
			}
			if len(decision.Reasons()) != len(tt.wantReasons) {
				t.Fatalf("reasons = %v, want %v", decision.Reasons(), tt.wantReasons)
			}
			for i, code := range tt.wantReasons {
				if decision.Reasons()[i] != code {
					t.Fatalf("reasons = %v, want %v", decision.Reasons(), tt.wantReasons)
				}
			}
		})
	}
}

func TestClassifier_FallbackOnOracleError(t *testing.T) {
	for _, turn := range []Turn{TurnUser, TurnAssistant} {
		t.Run(string(turn), func(t *testing.T) {
			oracle := &mockOracle{err: errors.New("connection reset")}
			c := NewClassifier(oracle, "test-model", nil, nil)

			messages := userWindow()
			if turn == TurnAssistant {
				messages = assistantWindow()
			}
			decision := c.Decide(context.Background(), messages, State{}, turn)

			if decision.EscalateNow() {
				t.Fatal("fallback must never escalate")
			}
			if len(decision.Reasons()) != 1 || decision.Reasons()[0] != ReasonNeedMoreInfo {
				t.Fatalf("expected NEED_MORE_INFO fallback, got %v", decision.Reasons())
			}
			switch d := decision.(type) {
			case DecisionAfterUser:
				if turn != TurnUser {
					t.Fatalf("wrong variant %T for %s turn", d, turn)
				}
				if !d.Unresolved {
					t.Fatal("after-user fallback must mark the turn unresolved")
				}
				if d.Frustration != FrustrationNone {
					t.Fatalf("after-user fallback frustration = %q", d.Frustration)
				}
			case DecisionAfterAssistant:
				if turn != TurnAssistant {
					t.Fatalf("wrong variant %T for %s turn", d, turn)
				}
				if d.FailedAttempt {
					t.Fatal("after-assistant fallback must not count a failed attempt")
				}
			}
		})
	}
}

func TestClassifier_FallbackOnMalformedOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "no json at all", response: "I cannot decide."},
		{name: "invalid json", response: `{"escalate_now": maybe}`},
		{name: "missing escalate_now", response: `{"reason_codes": ["NEED_MORE_INFO"], "unresolved": true, "frustration": "none"}`},
		{name: "empty reason codes", response: `{"escalate_now": false, "reason_codes": [], "unresolved": true, "frustration": "none"}`},
		{name: "unknown reason code", response: `{"escalate_now": false, "reason_codes": ["VIBES"], "unresolved": true, "frustration": "none"}`},
		{name: "assistant-only code on user turn", response: `{"escalate_now": true, "reason_codes": ["CAPABILITY_OR_POLICY_BLOCK"], "unresolved": true, "frustration": "none"}`},
		{name: "invalid frustration", response: `{"escalate_now": false, "reason_codes": ["NEED_MORE_INFO"], "unresolved": true, "frustration": "extreme"}`},
		{name: "missing unresolved", response: `{"escalate_now": false, "reason_codes": ["NEED_MORE_INFO"], "frustration": "none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &mockOracle{response: tt.response}
			c := NewClassifier(oracle, "test-model", nil, nil)

			decision := c.Decide(context.Background(), userWindow(), State{}, TurnUser)

			if decision.EscalateNow() {
				t.Fatal("malformed output must fall back to non-escalation")
			}
			d, ok := decision.(DecisionAfterUser)
			if !ok {
				t.Fatalf("expected DecisionAfterUser fallback, got %T", decision)
			}
			if !d.Unresolved {
				t.Fatal("fallback must mark the turn unresolved")
			}
		})
	}
}

func TestClassifier_PromptCarriesStateAndWindow(t *testing.T) {
	oracle := &mockOracle{response: `{"escalate_now": false, "reason_codes": ["TROUBLESHOOTING_IN_PROGRESS"], "unresolved": true, "frustration": "none"}`}
	c := NewClassifier(oracle, "test-model", nil, nil)

	state := State{FailedAttemptsTotal: 3, UnresolvedTurns: 7}
	c.Decide(context.Background(), userWindow(), state, TurnUser)

	if oracle.calls != 1 {
		t.Fatalf("expected exactly one oracle call, got %d", oracle.calls)
	}
	prompt := oracle.lastReq.Messages[0].Content
	for _, want := range []string{
		"Failed attempts (assistant failures): 3",
		"Unresolved turns (consecutive): 7",
		"Still broken, same error",
		"USER_REQUESTED_HUMAN",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "failed_attempt") {
		t.Fatal("after-user prompt must not ask for failed_attempt")
	}
}

func TestClassifier_AssistantPromptAsksForFailedAttempt(t *testing.T) {
	oracle := &mockOracle{response: `{"escalate_now": false, "reason_codes": ["NEED_MORE_INFO"], "failed_attempt": false}`}
	c := NewClassifier(oracle, "test-model", nil, nil)

	c.Decide(context.Background(), assistantWindow(), State{}, TurnAssistant)

	prompt := oracle.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "failed_attempt") {
		t.Fatal("after-assistant prompt must ask for failed_attempt")
	}
	if strings.Contains(prompt, "frustration") {
		t.Fatal("after-assistant prompt must not ask for frustration")
	}
}
