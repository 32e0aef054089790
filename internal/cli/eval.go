package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memesrized/chatbot-escalation/internal/config"
	"github.com/memesrized/chatbot-escalation/internal/escalation"
	"github.com/memesrized/chatbot-escalation/internal/eval"
	"github.com/memesrized/chatbot-escalation/internal/llm"
	"github.com/memesrized/chatbot-escalation/internal/observability/metrics"
	"github.com/memesrized/chatbot-escalation/pkg/logging"
)

// EvalCmd returns the turn-by-turn dataset evaluation command.
func EvalCmd() *cobra.Command {
	var (
		datasetPath   string
		modelOverride string
		logDir        string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate escalation decisions on a dataset turn-by-turn",
		Long: `Replay each dataset conversation message by message, classifying after
every turn and stopping an example at its first escalation. Reports the
confusion matrix, precision/recall/F1 and early-escalation timing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, datasetPath, modelOverride, logDir, false)
		},
	}

	addEvalFlags(cmd, &datasetPath, &modelOverride, &logDir)
	return cmd
}

// EvalWholeCmd returns the whole-conversation evaluation command.
func EvalWholeCmd() *cobra.Command {
	var (
		datasetPath   string
		modelOverride string
		logDir        string
	)

	cmd := &cobra.Command{
		Use:   "eval-whole",
		Short: "Evaluate escalation decisions on complete conversations",
		Long: `Classify each dataset conversation once over its full transcript,
seeding state counters from the example when present. Measures single-shot
judgment quality instead of live-simulation behavior.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, datasetPath, modelOverride, logDir, true)
		},
	}

	addEvalFlags(cmd, &datasetPath, &modelOverride, &logDir)
	return cmd
}

func addEvalFlags(cmd *cobra.Command, datasetPath, modelOverride, logDir *string) {
	cfg := config.Load()
	cmd.Flags().StringVar(datasetPath, "dataset", cfg.DatasetPath, "path to the JSON dataset")
	cmd.Flags().StringVar(modelOverride, "model", "", "override the configured model id")
	cmd.Flags().StringVar(logDir, "log-dir", cfg.EvalLogDir, "directory for evaluation run logs")
}

func runEval(cmd *cobra.Command, datasetPath, modelOverride, logDir string, whole bool) error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := cmd.Context()

	metrics.Serve(cfg.MetricsAddr, logger)

	client, model, err := llm.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if modelOverride != "" {
		model = modelOverride
	}

	dataset, err := eval.LoadDataset(datasetPath)
	if err != nil {
		return err
	}

	pipeline := "turn_by_turn_eval"
	title := "ESCALATION DECISION SYSTEM - Turn-by-Turn Dataset Analysis"
	if whole {
		pipeline = "whole_conversation_eval"
		title = "ESCALATION DECISION SYSTEM - Whole Conversation Analysis"
	}

	runLog, err := eval.NewRunLog(logDir, pipeline)
	if err != nil {
		return err
	}
	defer runLog.Close()

	output := eval.NewFormatter(os.Stdout, runLog)
	output.PrintHeader(title, model, fmt.Sprintf("Dataset: %s", datasetPath))

	classifier := escalation.NewClassifier(client, model, logger,
		metrics.NewClassifierMetrics(nil))
	runner := eval.NewRunner(classifier, cfg.ContextWindowSize, output)

	if whole {
		runner.RunWholeConversation(ctx, dataset)
	} else {
		runner.RunTurnByTurn(ctx, dataset)
	}

	output.PrintLogLocation()
	return nil
}
