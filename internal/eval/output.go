package eval

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const rule = "======================================================================"

// Formatter renders evaluation progress and metrics to an output sink,
// mirroring every line (uncolored) into an optional run log.
type Formatter struct {
	out io.Writer
	log *RunLog

	match    *color.Color
	mismatch *color.Color
	heading  *color.Color
}

// NewFormatter creates a formatter over out. log may be nil.
func NewFormatter(out io.Writer, log *RunLog) *Formatter {
	return &Formatter{
		out:      out,
		log:      log,
		match:    color.New(color.FgGreen),
		mismatch: color.New(color.FgRed),
		heading:  color.New(color.Bold),
	}
}

func (f *Formatter) line(text string) {
	fmt.Fprintln(f.out, text)
	f.log.Line(text)
}

func (f *Formatter) linef(format string, args ...any) {
	f.line(fmt.Sprintf(format, args...))
}

// PrintHeader prints the run banner.
func (f *Formatter) PrintHeader(title, modelName, additionalInfo string) {
	f.line(rule)
	f.line(f.heading.Sprint(title))
	f.line(rule)
	f.linef("Using model: %s", modelName)
	if additionalInfo != "" {
		f.line(additionalInfo)
	}
	f.line(rule)
	f.line("")
}

// PrintExampleHeader prints the banner for one dataset example.
func (f *Formatter) PrintExampleHeader(exampleNum, total int, conversationID string) {
	f.line("")
	f.line(rule)
	f.linef("Example %d/%d", exampleNum, total)
	f.linef("Example ID: %s", conversationID)
	f.line(rule)
}

// PrintEscalationTurns prints the expected vs predicted escalation turn for
// turn-by-turn mode.
func (f *Formatter) PrintEscalationTurns(result Result) {
	expected := fmt.Sprintf("no (length %d)", result.ConversationLength)
	if result.Expected != nil && *result.Expected {
		expected = fmt.Sprintf("%d", result.ConversationLength)
	}
	predicted := "none"
	if result.EscalationTurn != nil {
		predicted = fmt.Sprintf("%d", *result.EscalationTurn)
	}
	f.linef("Expected escalation turn: %s | Predicted turn: %s", expected, predicted)
}

// PrintPredictionComparison prints expected vs predicted with a match mark.
func (f *Formatter) PrintPredictionComparison(expected, predicted bool) {
	mark := f.match.Sprint("✓")
	if expected != predicted {
		mark = f.mismatch.Sprint("✗")
	}
	f.line("")
	f.linef("Expected: %t | Predicted: %t %s", expected, predicted, mark)
}

// PrintClassificationMetrics prints the final metrics block.
func (f *Formatter) PrintClassificationMetrics(metrics ClassificationMetrics) {
	cm := metrics.ConfusionMatrix

	f.line("")
	f.line(rule)
	f.line(f.heading.Sprint("EVALUATION METRICS"))
	f.line(rule)
	f.line("")
	f.linef("Total examples: %d", cm.Total())
	f.linef("Correct predictions: %d", cm.Correct())
	f.linef("Incorrect predictions: %d", cm.Total()-cm.Correct())
	f.line("")
	f.line("Confusion Matrix:")
	f.linef("  True Positives (TP):  %d", cm.TruePositives)
	f.linef("  True Negatives (TN):  %d", cm.TrueNegatives)
	f.linef("  False Positives (FP): %d", cm.FalsePositives)
	f.linef("  False Negatives (FN): %d", cm.FalseNegatives)
	f.line("")
	f.linef("Accuracy:  %.3f (%.1f%%)", metrics.Accuracy, metrics.Accuracy*100)
	f.linef("Precision: %.3f", metrics.Precision)
	f.linef("Recall:    %.3f", metrics.Recall)
	f.linef("F1 Score:  %.3f", metrics.F1Score)
	f.line(rule)
	f.line("")
}

// PrintEarlyEscalationMetrics prints the timing block. Empty buckets are
// reported as "No cases" instead of misleading zeros.
func (f *Formatter) PrintEarlyEscalationMetrics(metrics EarlyEscalationMetrics) {
	f.line("")
	f.line(rule)
	f.line(f.heading.Sprint("EARLY ESCALATION METRICS"))
	f.line(rule)

	if metrics.TruePositiveCount > 0 {
		f.line("")
		f.line("When escalation WAS needed (True Positives):")
		f.linef("  Count: %d", metrics.TruePositiveCount)
		f.linef("  Average turns before end: %.1f", metrics.TruePositiveAvgEarly)
		f.linef("  Median turns before end: %.1f", metrics.TruePositiveMedianEarly)
		f.line("  (how many turns early we escalated)")
	} else {
		f.line("")
		f.line("When escalation WAS needed (True Positives): No cases")
	}

	if metrics.FalsePositiveCount > 0 {
		f.line("")
		f.line("When escalation was NOT needed (False Positives):")
		f.linef("  Count: %d", metrics.FalsePositiveCount)
		f.linef("  Average turns before end: %.1f", metrics.FalsePositiveAvgEarly)
		f.linef("  Median turns before end: %.1f", metrics.FalsePositiveMedianEarly)
		f.line("  (at what point in conversation we incorrectly escalated)")
	} else {
		f.line("")
		f.line("When escalation was NOT needed (False Positives): No cases")
	}

	f.line(rule)
	f.line("")
}

// PrintLogLocation reports where the run log landed.
func (f *Formatter) PrintLogLocation() {
	if path := f.log.Path(); path != "" {
		f.line("")
		f.linef("Evaluation log saved to: %s", path)
	}
}
