package eval

import "sort"

// ConfusionMatrix holds the four outcome counts of a binary classifier run.
type ConfusionMatrix struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
}

// Total is the number of predictions counted.
func (cm ConfusionMatrix) Total() int {
	return cm.TruePositives + cm.TrueNegatives + cm.FalsePositives + cm.FalseNegatives
}

// Correct is the number of correct predictions.
func (cm ConfusionMatrix) Correct() int {
	return cm.TruePositives + cm.TrueNegatives
}

// ClassificationMetrics are the aggregate quality numbers for a run.
type ClassificationMetrics struct {
	Accuracy        float64
	Precision       float64
	Recall          float64
	F1Score         float64
	ConfusionMatrix ConfusionMatrix
}

// EarlyEscalationMetrics describe how many turns before conversation end
// escalation fired, split by whether escalation was actually needed.
type EarlyEscalationMetrics struct {
	TruePositiveCount        int
	TruePositiveAvgEarly     float64
	TruePositiveMedianEarly  float64
	FalsePositiveCount       int
	FalsePositiveAvgEarly    float64
	FalsePositiveMedianEarly float64
}

// NewConfusionMatrix counts outcomes over parallel expected/predicted
// slices. Slices must be equal length.
func NewConfusionMatrix(yTrue, yPred []bool) ConfusionMatrix {
	var cm ConfusionMatrix
	for i := range yTrue {
		switch {
		case yTrue[i] && yPred[i]:
			cm.TruePositives++
		case !yTrue[i] && !yPred[i]:
			cm.TrueNegatives++
		case !yTrue[i] && yPred[i]:
			cm.FalsePositives++
		default:
			cm.FalseNegatives++
		}
	}
	return cm
}

// CalculateMetrics computes accuracy, precision, recall and F1. All ratios
// with a zero denominator are reported as 0 rather than NaN.
func CalculateMetrics(yTrue, yPred []bool) ClassificationMetrics {
	cm := NewConfusionMatrix(yTrue, yPred)

	var accuracy float64
	if cm.Total() > 0 {
		accuracy = float64(cm.Correct()) / float64(cm.Total())
	}

	var precision float64
	if cm.TruePositives+cm.FalsePositives > 0 {
		precision = float64(cm.TruePositives) / float64(cm.TruePositives+cm.FalsePositives)
	}

	var recall float64
	if cm.TruePositives+cm.FalseNegatives > 0 {
		recall = float64(cm.TruePositives) / float64(cm.TruePositives+cm.FalseNegatives)
	}

	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return ClassificationMetrics{
		Accuracy:        accuracy,
		Precision:       precision,
		Recall:          recall,
		F1Score:         f1,
		ConfusionMatrix: cm,
	}
}

// CalculateEarlyEscalationMetrics summarizes the two turns-early buckets:
// escalations that were needed and escalations that were not. Empty buckets
// yield zero values; the formatter renders them as "No cases".
func CalculateEarlyEscalationMetrics(whenNeeded, whenNotNeeded []int) EarlyEscalationMetrics {
	return EarlyEscalationMetrics{
		TruePositiveCount:        len(whenNeeded),
		TruePositiveAvgEarly:     mean(whenNeeded),
		TruePositiveMedianEarly:  median(whenNeeded),
		FalsePositiveCount:       len(whenNotNeeded),
		FalsePositiveAvgEarly:    mean(whenNotNeeded),
		FalsePositiveMedianEarly: median(whenNotNeeded),
	}
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
