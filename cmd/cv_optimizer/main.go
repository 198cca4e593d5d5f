// Package main provides the entry point for the CV Optimizer server and command line tools.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-optimizer/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_optimizer",
	Short: "CV Optimizer HTTP API server and tools",
	Long:  "CV Optimizer tailors CVs to job postings with structured LLM output and exposes the capabilities through a REST API.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Init(logger.ConfigFromEnv())
	},
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
