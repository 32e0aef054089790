package escalation

// Turn identifies which role produced the message a decision follows.
type Turn string

const (
	TurnUser      Turn = "user"
	TurnAssistant Turn = "assistant"
)

// ReasonCode is a categorical label explaining an escalation decision.
type ReasonCode string

// Reason codes that indicate escalation is needed.
const (
	ReasonUserRequestedHuman  ReasonCode = "USER_REQUESTED_HUMAN"
	ReasonChurnRisk           ReasonCode = "CHURN_RISK"
	ReasonRepeatedFailure     ReasonCode = "REPEATED_FAILURE"
	ReasonAssistantIrrelevant ReasonCode = "ASSISTANT_IRRELEVANT_OR_INCOMPLETE"
	ReasonInstructionsFailed  ReasonCode = "INSTRUCTIONS_DID_NOT_WORK"
	ReasonUrgentOrHighStakes  ReasonCode = "URGENT_OR_HIGH_STAKES"
	ReasonCapabilityBlock     ReasonCode = "CAPABILITY_OR_POLICY_BLOCK"
)

// Reason codes that indicate escalation is not needed.
const (
	ReasonHowToSolvable       ReasonCode = "HOW_TO_SOLVABLE"
	ReasonResolvedConfirmed   ReasonCode = "RESOLVED_CONFIRMED"
	ReasonSmallTalkOrGreeting ReasonCode = "SMALL_TALK_OR_GREETING"
	ReasonTroubleshooting     ReasonCode = "TROUBLESHOOTING_IN_PROGRESS"
	ReasonNeedMoreInfo        ReasonCode = "NEED_MORE_INFO"
)

// FrustrationLevel is a coarse estimate of user frustration.
type FrustrationLevel string

const (
	FrustrationNone FrustrationLevel = "none"
	FrustrationMild FrustrationLevel = "mild"
	FrustrationHigh FrustrationLevel = "high"
)

// userTurnReasons and assistantTurnReasons are the code sets each prompt
// variant is allowed to return. NEED_MORE_INFO and the other non-escalation
// codes are shared; escalation codes are split by which side of the exchange
// they describe.
var (
	userTurnReasons = reasonSet(
		ReasonUserRequestedHuman,
		ReasonChurnRisk,
		ReasonRepeatedFailure,
		ReasonInstructionsFailed,
		ReasonUrgentOrHighStakes,
		ReasonHowToSolvable,
		ReasonResolvedConfirmed,
		ReasonSmallTalkOrGreeting,
		ReasonTroubleshooting,
		ReasonNeedMoreInfo,
	)
	assistantTurnReasons = reasonSet(
		ReasonRepeatedFailure,
		ReasonAssistantIrrelevant,
		ReasonUrgentOrHighStakes,
		ReasonCapabilityBlock,
		ReasonHowToSolvable,
		ReasonTroubleshooting,
		ReasonNeedMoreInfo,
	)
)

func reasonSet(codes ...ReasonCode) map[ReasonCode]struct{} {
	set := make(map[ReasonCode]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// validReasonCode reports whether code is allowed for the given turn.
func validReasonCode(turn Turn, code ReasonCode) bool {
	if turn == TurnAssistant {
		_, ok := assistantTurnReasons[code]
		return ok
	}
	_, ok := userTurnReasons[code]
	return ok
}

// Decision is the result of a single classification call. Exactly two
// implementations exist, one per turn type. The turn-specific signals
// (frustration, unresolved, failed attempt) live only on the matching
// variant, so reading a field from the wrong turn does not compile.
type Decision interface {
	// EscalateNow reports whether the conversation should be handed to a
	// human at this step.
	EscalateNow() bool
	// Reasons returns the ordered reason codes behind the decision.
	Reasons() []ReasonCode
	// Turn identifies which variant this decision is.
	Turn() Turn
}

// DecisionAfterUser is the decision produced after a user message.
type DecisionAfterUser struct {
	Escalate    bool
	ReasonCodes []ReasonCode
	Unresolved  bool
	Frustration FrustrationLevel
}

func (d DecisionAfterUser) EscalateNow() bool     { return d.Escalate }
func (d DecisionAfterUser) Reasons() []ReasonCode { return d.ReasonCodes }
func (d DecisionAfterUser) Turn() Turn            { return TurnUser }

// DecisionAfterAssistant is the decision produced after an assistant message.
type DecisionAfterAssistant struct {
	Escalate      bool
	ReasonCodes   []ReasonCode
	FailedAttempt bool
}

func (d DecisionAfterAssistant) EscalateNow() bool     { return d.Escalate }
func (d DecisionAfterAssistant) Reasons() []ReasonCode { return d.ReasonCodes }
func (d DecisionAfterAssistant) Turn() Turn            { return TurnAssistant }
