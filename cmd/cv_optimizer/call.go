package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/apiclient"
	"github.com/jonathan/cv-optimizer/internal/logger"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <path>",
	Short: "Send a request to a running server, retrying transient failures",
	Long: `Send a JSON request to a running CV Optimizer server through the retrying API client
and print the response body. Requests with --data are POSTed, others use GET.`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

var (
	callDataFile string
	callBaseURL  string
	callMethod   string
	callToken    string
	callRetries  int
)

func init() {
	callCmd.Flags().StringVarP(&callDataFile, "data", "d", "", "Path to a JSON request body")
	callCmd.Flags().StringVar(&callBaseURL, "base-url", "http://localhost:8080", "Server base URL")
	callCmd.Flags().StringVarP(&callMethod, "method", "X", "", "HTTP method (defaults to POST with --data, GET otherwise)")
	callCmd.Flags().StringVar(&callToken, "token", "", "Session token (overrides CV_OPTIMIZER_TOKEN)")
	callCmd.Flags().IntVar(&callRetries, "retries", apiclient.DefaultRetryConfig().MaxRetries, "Retries on transient failures")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(callMethod)
	var body any
	if callDataFile != "" {
		data, err := os.ReadFile(callDataFile)
		if err != nil {
			return fmt.Errorf("failed to read request body: %w", err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("request body in %s is not valid JSON", callDataFile)
		}
		body = json.RawMessage(data)
		if method == "" {
			method = http.MethodPost
		}
	}
	if method == "" {
		method = http.MethodGet
	}

	token := callToken
	if token == "" {
		token = os.Getenv("CV_OPTIMIZER_TOKEN")
	}
	opts := []apiclient.Option{apiclient.WithLogger(logger.Logger)}
	if token != "" {
		opts = append(opts, apiclient.WithToken(token))
	}

	retry := apiclient.DefaultRetryConfig()
	retry.MaxRetries = callRetries

	path := "/" + strings.TrimLeft(args[0], "/")
	res := apiclient.New(callBaseURL, opts...).Call(cmd.Context(), method, path, body, &retry)
	if !res.Success {
		return fmt.Errorf("%s (status %d after %d attempts)", res.Error, res.Status, res.Attempts)
	}
	return printJSON(cmd, res.Data)
}
