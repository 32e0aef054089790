package chat

import (
	"bytes"
	"context"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memesrized/chatbot-escalation/internal/escalation"
	"github.com/memesrized/chatbot-escalation/internal/llm"
)

type cannedBotClient struct {
	reply string
}

func (c *cannedBotClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: c.reply}, nil
}

// scriptedDecider returns the scripted decisions in order, then keeps
// returning a non-escalating decision for the matching turn.
type scriptedDecider struct {
	decisions []escalation.Decision
	calls     int
}

func (s *scriptedDecider) Decide(ctx context.Context, messages []llm.ChatMessage, state escalation.State, turn escalation.Turn) escalation.Decision {
	idx := s.calls
	s.calls++
	if idx < len(s.decisions) {
		return s.decisions[idx]
	}
	if turn == escalation.TurnAssistant {
		return escalation.DecisionAfterAssistant{
			ReasonCodes: []escalation.ReasonCode{escalation.ReasonTroubleshooting},
		}
	}
	return escalation.DecisionAfterUser{
		ReasonCodes: []escalation.ReasonCode{escalation.ReasonTroubleshooting},
		Unresolved:  true,
	}
}

func TestSession_QuitEndsCleanly(t *testing.T) {
	bot := NewBot(&cannedBotClient{reply: "hello!"}, "test-model", 100, 0)
	classifier := &scriptedDecider{}

	var out bytes.Buffer
	session := NewSession(bot, classifier, 6, nil, nil, strings.NewReader("quit\n"), &out)

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, out.String(), "Goodbye")
	assert.Zero(t, classifier.calls, "quitting before any message must not classify")
}

func TestSession_EscalationStopsConversation(t *testing.T) {
	bot := NewBot(&cannedBotClient{reply: "have you tried turning it off and on?"}, "test-model", 100, 0)
	classifier := &scriptedDecider{
		decisions: []escalation.Decision{
			escalation.DecisionAfterUser{
				Escalate:    true,
				ReasonCodes: []escalation.ReasonCode{escalation.ReasonUserRequestedHuman},
				Unresolved:  true,
				Frustration: escalation.FrustrationHigh,
			},
		},
	}

	input := "get me a human right now\nthis line is never read\n"
	var out bytes.Buffer
	session := NewSession(bot, classifier, 6, nil, nil, strings.NewReader(input), &out)

	require.NoError(t, session.Run(context.Background()))

	assert.Equal(t, 1, classifier.calls, "conversation must stop at the first escalation")
	assert.Contains(t, out.String(), "ESCALATION TRIGGERED")
	assert.Contains(t, out.String(), "USER_REQUESTED_HUMAN")
	assert.NotContains(t, out.String(), "have you tried", "no assistant reply after escalation")
}

func TestSession_AssistantReplyAndAnalysisPrinted(t *testing.T) {
	bot := NewBot(&cannedBotClient{reply: "sure, resetting your password now"}, "test-model", 100, 0)
	classifier := &scriptedDecider{}

	input := "reset my password\nquit\n"
	var out bytes.Buffer
	session := NewSession(bot, classifier, 6, nil, nil, strings.NewReader(input), &out)

	require.NoError(t, session.Run(context.Background()))

	assert.Equal(t, 2, classifier.calls, "both the user and the assistant turn are classified")
	assert.Contains(t, out.String(), "Assistant: sure, resetting your password now")
	assert.Contains(t, out.String(), "Escalation Analysis (turn 1)")
	assert.Contains(t, out.String(), "Escalation Analysis (turn 2)")
	assert.Contains(t, out.String(), "Unresolved: true")
	assert.Contains(t, out.String(), "Failed Attempt: false")
}

func TestSession_PersistsTranscript(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTranscriptStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)

	bot := NewBot(&cannedBotClient{reply: "done"}, "test-model", 100, 0)
	classifier := &scriptedDecider{}

	input := "hello\nquit\n"
	var out bytes.Buffer
	session := NewSession(bot, classifier, 6, store, nil, strings.NewReader(input), &out)

	require.NoError(t, session.Run(context.Background()))

	history, err := store.Load(context.Background(), session.ID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
}
