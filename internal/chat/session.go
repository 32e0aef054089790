package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/memesrized/chatbot-escalation/internal/escalation"
	"github.com/memesrized/chatbot-escalation/internal/llm"
	"github.com/memesrized/chatbot-escalation/pkg/logging"
)

// decider is the slice of the classifier the session needs.
type decider interface {
	Decide(ctx context.Context, messages []llm.ChatMessage, state escalation.State, turn escalation.Turn) escalation.Decision
}

// Session runs an interactive support conversation with escalation
// monitoring after every turn. The session owns its ConversationState for
// its whole lifetime; the state is discarded when the session ends.
type Session struct {
	id         string
	bot        *Bot
	classifier decider
	windowSize int
	store      *TranscriptStore
	logger     *logging.Logger
	in         *bufio.Scanner
	out        io.Writer

	alert *color.Color
}

// NewSession wires a live chat session. store may be nil when transcript
// persistence is not configured.
func NewSession(bot *Bot, classifier decider, windowSize int, store *TranscriptStore, logger *logging.Logger, in io.Reader, out io.Writer) *Session {
	if bot == nil {
		panic("chat: bot cannot be nil")
	}
	if classifier == nil {
		panic("chat: classifier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		id:         uuid.New().String(),
		bot:        bot,
		classifier: classifier,
		windowSize: windowSize,
		store:      store,
		logger:     logger,
		in:         bufio.NewScanner(in),
		out:        out,
		alert:      color.New(color.FgRed, color.Bold),
	}
}

// ID returns the session's conversation id.
func (s *Session) ID() string { return s.id }

// Run drives the user/assistant loop until the user quits or the
// conversation escalates. Returns nil on a clean exit.
func (s *Session) Run(ctx context.Context) error {
	var messages []llm.ChatMessage
	state := escalation.State{}
	turnNum := 0

	for {
		// User turn.
		input, ok := s.readUserInput()
		if !ok {
			fmt.Fprintln(s.out, "\nEnding conversation. Goodbye!")
			return nil
		}
		if input == "" {
			continue
		}
		messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: input})
		turnNum++

		var escalated bool
		if state, escalated = s.checkEscalation(ctx, messages, state, escalation.TurnUser, turnNum); escalated {
			s.finish(ctx, messages)
			return nil
		}

		// Assistant turn.
		reply, err := s.bot.Respond(ctx, messages)
		if err != nil {
			return fmt.Errorf("chat: assistant turn failed: %w", err)
		}
		messages = append(messages, llm.ChatMessage{Role: llm.RoleAssistant, Content: reply})
		turnNum++
		fmt.Fprintf(s.out, "\nAssistant: %s\n\n", reply)

		if state, escalated = s.checkEscalation(ctx, messages, state, escalation.TurnAssistant, turnNum); escalated {
			s.finish(ctx, messages)
			return nil
		}

		s.persist(ctx, messages)
	}
}

func (s *Session) readUserInput() (string, bool) {
	fmt.Fprint(s.out, "You: ")
	if !s.in.Scan() {
		return "", false
	}
	input := strings.TrimSpace(s.in.Text())
	lowered := strings.ToLower(input)
	if lowered == "quit" || lowered == "exit" {
		return "", false
	}
	return input, true
}

// checkEscalation classifies the latest window and prints the analysis.
// Returns the advanced state and whether the conversation escalated.
func (s *Session) checkEscalation(ctx context.Context, messages []llm.ChatMessage, state escalation.State, turn escalation.Turn, turnNum int) (escalation.State, bool) {
	window := escalation.LastN(messages, s.windowSize)
	decision := s.classifier.Decide(ctx, window, state, turn)
	next := escalation.NextState(state, decision)

	s.printAnalysis(turnNum, decision, next)

	if decision.EscalateNow() {
		s.printAlert()
		return next, true
	}
	return next, false
}

func (s *Session) printAnalysis(turnNum int, decision escalation.Decision, state escalation.State) {
	fmt.Fprintf(s.out, "\n--- Escalation Analysis (turn %d) ---\n", turnNum)
	fmt.Fprintf(s.out, "Escalate Now: %t\n", decision.EscalateNow())

	codes := make([]string, 0, len(decision.Reasons()))
	for _, code := range decision.Reasons() {
		codes = append(codes, string(code))
	}
	fmt.Fprintf(s.out, "Reason Codes: %s\n", strings.Join(codes, ", "))

	switch d := decision.(type) {
	case escalation.DecisionAfterAssistant:
		fmt.Fprintf(s.out, "Failed Attempt: %t\n", d.FailedAttempt)
	case escalation.DecisionAfterUser:
		fmt.Fprintf(s.out, "Unresolved: %t\n", d.Unresolved)
		fmt.Fprintf(s.out, "Frustration: %s\n", d.Frustration)
	}

	fmt.Fprintln(s.out, "\nState Counters:")
	fmt.Fprintf(s.out, "  Failed Attempts Total: %d\n", state.FailedAttemptsTotal)
	fmt.Fprintf(s.out, "  Unresolved Turns: %d\n", state.UnresolvedTurns)
	fmt.Fprintln(s.out, "--------------------------------------------------")
}

func (s *Session) printAlert() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.alert.Sprint("ESCALATION TRIGGERED"))
	fmt.Fprintln(s.out, "This conversation should be transferred to a human.")
	fmt.Fprintln(s.out)
}

func (s *Session) finish(ctx context.Context, messages []llm.ChatMessage) {
	s.persist(ctx, messages)
}

func (s *Session) persist(ctx context.Context, messages []llm.ChatMessage) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.id, messages); err != nil {
		// Losing a transcript must not end the session.
		s.logger.Warn("failed to persist transcript", "conversation_id", s.id, "error", err)
	}
}
