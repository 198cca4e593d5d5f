package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/cv-optimizer/internal/outline"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Print the section outline of a CV text file",
	RunE:  runOutline,
}

var outlineInputFile string

func init() {
	outlineCmd.Flags().StringVarP(&outlineInputFile, "in", "i", "", "Path to the CV text file")
	_ = outlineCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(outlineInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	doc, err := json.Marshal(outline.Parse(string(content)))
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}
	return printJSON(cmd, doc)
}
