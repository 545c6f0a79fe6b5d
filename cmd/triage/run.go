package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/epharma/triage/internal/cli"
	"github.com/epharma/triage/internal/config"
	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Walk an intake conversation in the terminal",
	Long:  `Runs the triage questionnaire interactively in the current terminal, rendering questions as styled markdown.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		graphPath, _ := cmd.Flags().GetString("graph")
		language, _ := cmd.Flags().GetString("language")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if graphPath != "" {
			cfg.GraphPath = graphPath
		}
		if language == "" {
			language = cfg.Language
		}

		logger := logging.New(parseLevel(cfg.LogLevel))

		eng, cleanup, err := cli.BuildEngine(cmd.Context(), cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing triage: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		var render func(string) (string, error)
		if tui.Interactive() {
			tui.PrintBanner()
			render = tui.NewRenderer()
		}

		console := cli.NewConsole(eng, os.Stdin, os.Stdout, render)
		if err := console.Run(cmd.Context(), language); err != nil {
			if errors.Is(err, cli.ErrQuit) {
				fmt.Println("Goodbye.")
				return
			}
			fmt.Printf("Error running intake: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("language", "L", "", "Conversation language (overrides config)")
}
