package eval

import (
	"context"

	"github.com/memesrized/chatbot-escalation/internal/escalation"
	"github.com/memesrized/chatbot-escalation/internal/llm"
)

// Classifier is what the evaluator needs from the decision layer.
type Classifier interface {
	Decide(ctx context.Context, messages []llm.ChatMessage, state escalation.State, turn escalation.Turn) escalation.Decision
}

// Result is the outcome of evaluating one dataset example.
type Result struct {
	ConversationID     string
	Expected           *bool
	Predicted          bool
	Escalated          bool
	EscalationTurn     *int
	ConversationLength int
}

// Runner drives the classifier over a dataset and reports metrics.
// Examples are processed strictly in input order; the only cross-example
// state is the append-only metric accumulators owned by the run loop.
type Runner struct {
	classifier Classifier
	windowSize int
	output     *Formatter
}

// NewRunner creates a dataset runner. windowSize bounds the message window
// handed to the classifier on every call.
func NewRunner(classifier Classifier, windowSize int, output *Formatter) *Runner {
	if classifier == nil {
		panic("eval: classifier cannot be nil")
	}
	return &Runner{
		classifier: classifier,
		windowSize: windowSize,
		output:     output,
	}
}

// RunTurnByTurn replays each example message by message, classifying after
// every turn and stopping an example at its first escalation. This
// simulates live chat behavior from a fresh session.
func (r *Runner) RunTurnByTurn(ctx context.Context, dataset []Example) []Result {
	results := make([]Result, 0, len(dataset))

	var yTrue, yPred []bool
	var earlyWhenNeeded, earlyWhenNot []int

	for idx, example := range dataset {
		r.output.PrintExampleHeader(idx+1, len(dataset), example.ConversationID)

		result := r.evaluateTurnByTurn(ctx, example)
		results = append(results, result)

		if result.Expected == nil {
			continue
		}
		yTrue = append(yTrue, *result.Expected)
		yPred = append(yPred, result.Predicted)

		r.output.PrintEscalationTurns(result)
		r.output.PrintPredictionComparison(*result.Expected, result.Predicted)

		if result.EscalationTurn != nil {
			turnsEarly := result.ConversationLength - *result.EscalationTurn
			if *result.Expected {
				earlyWhenNeeded = append(earlyWhenNeeded, turnsEarly)
			} else {
				earlyWhenNot = append(earlyWhenNot, turnsEarly)
			}
		}
	}

	if len(yTrue) > 0 {
		r.output.PrintClassificationMetrics(CalculateMetrics(yTrue, yPred))
		r.output.PrintEarlyEscalationMetrics(CalculateEarlyEscalationMetrics(earlyWhenNeeded, earlyWhenNot))
	}

	return results
}

func (r *Runner) evaluateTurnByTurn(ctx context.Context, example Example) Result {
	// Turn-by-turn always starts from zero state: it simulates a live
	// session from scratch, so example-supplied seeds are ignored here.
	state := escalation.State{}
	var history []llm.ChatMessage
	var escalationTurn *int
	var finalDecision escalation.Decision
	escalated := false

	for turnIdx, turn := range example.ConversationHistory {
		history = append(history, llm.ChatMessage{Role: turn.Role, Content: turn.Message})

		window := escalation.LastN(history, r.windowSize)
		decision := r.classifier.Decide(ctx, window, state, escalation.Turn(turn.Role))
		state = escalation.NextState(state, decision)
		finalDecision = decision

		if decision.EscalateNow() {
			t := turnIdx + 1
			escalationTurn = &t
			escalated = true
			break
		}
	}

	predicted := false
	if finalDecision != nil {
		predicted = finalDecision.EscalateNow()
	}

	return Result{
		ConversationID:     example.ConversationID,
		Expected:           example.Expected(),
		Predicted:          predicted,
		Escalated:          escalated,
		EscalationTurn:     escalationTurn,
		ConversationLength: len(example.ConversationHistory),
	}
}

// RunWholeConversation classifies each example once over its complete
// transcript. This measures single-shot judgment quality rather than
// live-simulation behavior: no per-turn iteration and no early stop.
func (r *Runner) RunWholeConversation(ctx context.Context, dataset []Example) []Result {
	results := make([]Result, 0, len(dataset))

	var yTrue, yPred []bool

	for idx, example := range dataset {
		r.output.PrintExampleHeader(idx+1, len(dataset), example.ConversationID)

		result := r.evaluateWholeConversation(ctx, example)
		results = append(results, result)

		if result.Expected == nil {
			continue
		}
		yTrue = append(yTrue, *result.Expected)
		yPred = append(yPred, result.Predicted)
		r.output.PrintPredictionComparison(*result.Expected, result.Predicted)
	}

	if len(yTrue) > 0 {
		r.output.PrintClassificationMetrics(CalculateMetrics(yTrue, yPred))
	}

	return results
}

func (r *Runner) evaluateWholeConversation(ctx context.Context, example Example) Result {
	messages := escalation.LastN(example.Messages(), r.windowSize)

	// Whole-conversation mode seeds state from the example when present.
	state := escalation.State{
		FailedAttemptsTotal: example.FailedAttemptsTotal,
		UnresolvedTurns:     example.UnresolvedTurns,
	}

	turn := escalation.TurnUser
	if n := len(example.ConversationHistory); n > 0 {
		turn = escalation.Turn(example.ConversationHistory[n-1].Role)
	}

	decision := r.classifier.Decide(ctx, messages, state, turn)

	var escalationTurn *int
	if decision.EscalateNow() {
		t := len(example.ConversationHistory)
		escalationTurn = &t
	}

	return Result{
		ConversationID:     example.ConversationID,
		Expected:           example.Expected(),
		Predicted:          decision.EscalateNow(),
		Escalated:          decision.EscalateNow(),
		EscalationTurn:     escalationTurn,
		ConversationLength: len(example.ConversationHistory),
	}
}
