package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/memesrized/chatbot-escalation/internal/cli"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "escalate",
		Short: "Escalation decision system for customer support conversations",
		Long: `escalate decides, turn by turn, whether a support conversation should
be handed off to a human agent, and evaluates that decision quality
against labeled datasets.`,
	}

	rootCmd.AddCommand(cli.ChatCmd())
	rootCmd.AddCommand(cli.EvalCmd())
	rootCmd.AddCommand(cli.EvalWholeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
