package escalation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/memesrized/chatbot-escalation/internal/llm"
	"github.com/memesrized/chatbot-escalation/internal/observability/metrics"
	"github.com/memesrized/chatbot-escalation/pkg/logging"
)

var classifierTracer = otel.Tracer("chatbot-escalation/classifier")

// errMalformedDecision marks oracle output that could not be parsed or
// validated into a decision. Distinguished from transport errors only for
// diagnostics; both recover through the same fallback.
var errMalformedDecision = errors.New("escalation: malformed decision output")

const decisionMaxTokens = 300

// Classifier decides, for one bounded message window, whether the
// conversation should be escalated. It is stateless between calls; the
// only cross-call memory is the State the caller threads through.
//
// Decide never returns an error. Oracle failures of any kind collapse into
// a deterministic non-escalating fallback so a classification outage can
// neither crash a live conversation nor falsely hand it off.
type Classifier struct {
	client  llm.Client
	model   string
	logger  *logging.Logger
	metrics *metrics.ClassifierMetrics
}

// NewClassifier creates a classifier over the given completion client.
// model may be empty when the client has a fixed model. metrics may be nil.
func NewClassifier(client llm.Client, model string, logger *logging.Logger, m *metrics.ClassifierMetrics) *Classifier {
	if client == nil {
		panic("escalation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{
		client:  client,
		model:   model,
		logger:  logger,
		metrics: m,
	}
}

// Decide classifies the window and returns the decision variant matching
// turn. An empty window short-circuits to a non-escalating after-user
// decision without touching the oracle. The last message's role must equal
// turn; window/turn consistency is the caller's responsibility.
func (c *Classifier) Decide(ctx context.Context, messages []llm.ChatMessage, state State, turn Turn) Decision {
	ctx, span := classifierTracer.Start(ctx, "escalation.decide")
	defer span.End()
	span.SetAttributes(
		attribute.String("escalation.turn", string(turn)),
		attribute.Int("escalation.window_size", len(messages)),
	)

	if len(messages) == 0 {
		return DecisionAfterUser{
			Escalate:    false,
			ReasonCodes: []ReasonCode{ReasonSmallTalkOrGreeting},
			Unresolved:  false,
			Frustration: FrustrationNone,
		}
	}

	start := time.Now()
	decision, err := c.classify(ctx, messages, state, turn)
	c.metrics.ObserveDecideLatency(string(turn), time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		c.logger.Error("escalation decision failed, returning safe fallback",
			"turn", turn,
			"error", err,
		)
		c.metrics.ObserveOracleFailure(string(turn), failureKind(err))
		decision = fallbackDecision(turn)
	}

	span.SetAttributes(attribute.Bool("escalation.escalate_now", decision.EscalateNow()))
	c.metrics.ObserveDecision(string(turn), decision.EscalateNow())
	return decision
}

func (c *Classifier) classify(ctx context.Context, messages []llm.ChatMessage, state State, turn Turn) (Decision, error) {
	prompt := buildPrompt(messages, state, turn)

	resp, err := c.client.Complete(ctx, llm.Request{
		Model:     c.model,
		Messages:  []llm.ChatMessage{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: decisionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("escalation: oracle call failed: %w", err)
	}

	return parseDecision(resp.Text, turn)
}

// decisionWire is the raw JSON shape the oracle returns. Pointers
// distinguish absent fields from explicit false.
type decisionWire struct {
	EscalateNow   *bool        `json:"escalate_now"`
	ReasonCodes   []ReasonCode `json:"reason_codes"`
	Unresolved    *bool        `json:"unresolved"`
	Frustration   string       `json:"frustration"`
	FailedAttempt *bool        `json:"failed_attempt"`
}

// parseDecision extracts the JSON object from the oracle output and
// validates it into the variant matching turn.
func parseDecision(text string, turn Turn) (Decision, error) {
	content := strings.TrimSpace(text)

	// The model may wrap the object in prose or a code fence.
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx < 0 || endIdx <= startIdx {
		return nil, fmt.Errorf("%w: no JSON object in %q", errMalformedDecision, truncateForLog(content))
	}
	content = content[startIdx : endIdx+1]

	var wire decisionWire
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedDecision, err)
	}

	if wire.EscalateNow == nil {
		return nil, fmt.Errorf("%w: missing escalate_now", errMalformedDecision)
	}
	if len(wire.ReasonCodes) == 0 {
		return nil, fmt.Errorf("%w: empty reason_codes", errMalformedDecision)
	}
	for _, code := range wire.ReasonCodes {
		if !validReasonCode(turn, code) {
			return nil, fmt.Errorf("%w: unknown reason code %q for %s turn", errMalformedDecision, code, turn)
		}
	}

	if turn == TurnAssistant {
		if wire.FailedAttempt == nil {
			return nil, fmt.Errorf("%w: missing failed_attempt", errMalformedDecision)
		}
		return DecisionAfterAssistant{
			Escalate:      *wire.EscalateNow,
			ReasonCodes:   wire.ReasonCodes,
			FailedAttempt: *wire.FailedAttempt,
		}, nil
	}

	if wire.Unresolved == nil {
		return nil, fmt.Errorf("%w: missing unresolved", errMalformedDecision)
	}
	frustration := FrustrationLevel(wire.Frustration)
	switch frustration {
	case FrustrationNone, FrustrationMild, FrustrationHigh:
	default:
		return nil, fmt.Errorf("%w: invalid frustration %q", errMalformedDecision, wire.Frustration)
	}
	return DecisionAfterUser{
		Escalate:    *wire.EscalateNow,
		ReasonCodes: wire.ReasonCodes,
		Unresolved:  *wire.Unresolved,
		Frustration: frustration,
	}, nil
}

// fallbackDecision is the single construction site for the safe fallback.
// It never escalates, but an after-user fallback marks the turn unresolved
// so the counters keep tracking an issue the oracle could not judge.
func fallbackDecision(turn Turn) Decision {
	if turn == TurnAssistant {
		return DecisionAfterAssistant{
			Escalate:      false,
			ReasonCodes:   []ReasonCode{ReasonNeedMoreInfo},
			FailedAttempt: false,
		}
	}
	return DecisionAfterUser{
		Escalate:    false,
		ReasonCodes: []ReasonCode{ReasonNeedMoreInfo},
		Unresolved:  true,
		Frustration: FrustrationNone,
	}
}

func failureKind(err error) string {
	if errors.Is(err, errMalformedDecision) {
		return "malformed_output"
	}
	return "transport"
}

func truncateForLog(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
