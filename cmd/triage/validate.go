package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/epharma/triage/internal/config"
	"github.com/epharma/triage/pkg/graph"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a question configuration file",
	Long:  `Loads the question configuration, resolves routing targets and reports anything a live session would trip over.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		graphPath, _ := cmd.Flags().GetString("graph")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if graphPath != "" {
			cfg.GraphPath = graphPath
		}

		g, err := graph.Load(cfg.GraphPath, graph.WithCanonicalLanguage(cfg.Language))
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		for _, w := range g.Warnings() {
			fmt.Printf("Warning: %s\n", w)
		}

		fmt.Printf("Graph is valid! ✅ (%d sections)\n", len(g.Sections()))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
