package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cv-optimizer/internal/documents"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the text of a PDF or DOCX document",
	RunE:  runExtract,
}

var extractInputFile string

func init() {
	extractCmd.Flags().StringVarP(&extractInputFile, "in", "i", "", "Path to a .pdf or .docx file")
	_ = extractCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(extractInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	text, err := documents.Extract(filepath.Base(extractInputFile), data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
