package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/advisor"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/logger"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <capability>",
	Short: "Run one capability against the configured model and print its JSON",
	Long: `Build the prompt for a capability, call the model selected from the environment
(GOOGLE_GENERATIVE_AI_API_KEY or OPENAI_API_KEY) and print the schema-valid result.

Capabilities: ` + capabilityList(),
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	genCVFile      string
	genJobFile     string
	genRole        string
	genTone        string
	genCount       int
	genQuestion    string
	genTopics      []string
	genAnswer      string
	genPDFFile     string
	genProfileFile string
	genJobsFile    string
	genPriority    string
)

func init() {
	generateCmd.Flags().StringVar(&genCVFile, "cv", "", "Path to the CV text file")
	generateCmd.Flags().StringVar(&genJobFile, "job", "", "Path to the job description text file")
	generateCmd.Flags().StringVar(&genRole, "role", "", "Target role")
	generateCmd.Flags().StringVar(&genTone, "tone", string(capability.ToneProfessional), "Cover letter tone")
	generateCmd.Flags().IntVar(&genCount, "count", 0, "Number of interview questions")
	generateCmd.Flags().StringVar(&genQuestion, "question", "", "Interview question to evaluate")
	generateCmd.Flags().StringSliceVar(&genTopics, "topics", nil, "Expected topics of the interview question")
	generateCmd.Flags().StringVar(&genAnswer, "answer", "", "Candidate answer to evaluate")
	generateCmd.Flags().StringVar(&genPDFFile, "pdf-text", "", "Path to text extracted from a LinkedIn PDF export")
	generateCmd.Flags().StringVar(&genProfileFile, "profile", "", "Path to a LinkedIn profile JSON file")
	generateCmd.Flags().StringVar(&genJobsFile, "jobs", "", `Path to a JSON array of {"id","description"} postings`)
	generateCmd.Flags().StringVar(&genPriority, "priority", string(capability.PriorityBalanced), "Merge priority")

	rootCmd.AddCommand(generateCmd)
}

func capabilityList() string {
	names := make([]string, 0, len(capability.All()))
	for _, c := range capability.All() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	c, err := capability.Parse(args[0])
	if err != nil {
		return err
	}

	in, err := generateInputs()
	if err != nil {
		return err
	}
	pair, err := prompts.Build(c, in)
	if err != nil {
		return err
	}

	cfg := llm.ConfigFromEnv()
	invoker, closeInvoker := newGenerateInvoker(cfg)
	defer closeInvoker()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	doc, err := advisor.New(invoker).Document(ctx, c, pair)
	if err != nil {
		return err
	}
	return printJSON(cmd, doc)
}

// newGenerateInvoker builds the model invoker for generate. Tests replace it.
var newGenerateInvoker = func(cfg *llm.Config) (llm.StructuredInvoker, func()) {
	pool := llm.NewClientPool(llm.NewFactory(cfg))
	return llm.NewInvoker(llm.EnvCredentials{}, cfg, pool, logger.Logger), func() { _ = pool.Close() }
}

// generateInputs reads the file-backed flags into prompt inputs.
func generateInputs() (prompts.Inputs, error) {
	in := prompts.Inputs{
		TargetRole:     genRole,
		Tone:           capability.Tone(genTone),
		QuestionCount:  genCount,
		Question:       genQuestion,
		ExpectedTopics: genTopics,
		Answer:         genAnswer,
		Priority:       capability.MergePriority(genPriority),
	}

	var err error
	if in.CVText, err = readOptional(genCVFile); err != nil {
		return in, err
	}
	if in.JobDescription, err = readOptional(genJobFile); err != nil {
		return in, err
	}
	if in.PDFText, err = readOptional(genPDFFile); err != nil {
		return in, err
	}
	if genJobsFile != "" {
		if err := readJSON(genJobsFile, &in.Jobs); err != nil {
			return in, err
		}
	}
	if genProfileFile != "" {
		if err := readJSON(genProfileFile, &in.LinkedInProfile); err != nil {
			return in, err
		}
	}
	return in, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// printJSON writes doc indented to the command's output.
func printJSON(cmd *cobra.Command, doc []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	buf.WriteByte('\n')
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
