package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags clears values left over from an earlier execution in the same process.
func resetFlags() {
	genCVFile, genJobFile, genRole, genQuestion, genAnswer = "", "", "", "", ""
	genPDFFile, genProfileFile, genJobsFile = "", "", ""
	genTone, genPriority = string(capability.ToneProfessional), string(capability.PriorityBalanced)
	genCount, genTopics = 0, nil
	outlineInputFile, extractInputFile = "", ""
	callDataFile, callMethod, callToken = "", "", ""
	callBaseURL = "http://localhost:8080"
	callRetries = 0
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOutlineCommand(t *testing.T) {
	path := writeFile(t, "cv.txt", "Jane Doe\n\nEXPERIENCE\nEngineer | Acme | 2019 - 2024\n- Built APIs\n\nSKILLS\nGo, SQL")

	out, err := runCLI(t, "outline", "--in", path)
	require.NoError(t, err)

	var doc struct {
		Sections []struct {
			Type string `json:"type"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	var types []string
	for _, s := range doc.Sections {
		types = append(types, s.Type)
	}
	assert.Contains(t, types, "experience")
	assert.Contains(t, types, "skills")
}

func TestOutlineCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "outline", "--in", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input file")
}

func TestExtractCommand_RejectsUnsupportedFile(t *testing.T) {
	path := writeFile(t, "cv.txt", "plain text")
	_, err := runCLI(t, "extract", "--in", path)
	require.Error(t, err)
}

func TestGenerateCommand_UnknownCapability(t *testing.T) {
	_, err := runCLI(t, "generate", "write-poem")
	var unknown *capability.UnknownCapabilityError
	assert.ErrorAs(t, err, &unknown)
}

func TestGenerateCommand_NoCredentials(t *testing.T) {
	t.Setenv(llm.EnvGoogleKey, "")
	t.Setenv(llm.EnvGoogleKeyAlias, "")
	t.Setenv(llm.EnvOpenAIKey, "")
	job := writeFile(t, "job.txt", "Senior Go engineer")

	_, err := runCLI(t, "generate", string(capability.AnalyzeJob), "--job", job)
	var missing *llm.MissingCredentialError
	assert.ErrorAs(t, err, &missing)
}

// stubInvoker answers every capability with one fixed document.
type stubInvoker struct {
	doc string
}

func (s stubInvoker) Invoke(context.Context, capability.Capability, prompts.Pair) ([]byte, error) {
	return []byte(s.doc), nil
}

func withInvoker(t *testing.T, doc string) {
	t.Helper()
	previous := newGenerateInvoker
	newGenerateInvoker = func(*llm.Config) (llm.StructuredInvoker, func()) {
		return stubInvoker{doc: doc}, func() {}
	}
	t.Cleanup(func() { newGenerateInvoker = previous })
}

func TestGenerateCommand_CoverLetter(t *testing.T) {
	cv := writeFile(t, "cv.txt", "Jane Doe\nBackend engineer")
	job := writeFile(t, "job.txt", "Senior Go engineer")

	withInvoker(t, `{"coverLetter": "Dear hiring team", "highlights": ["Go"], "callToAction": "Let's talk"}`)
	out, err := runCLI(t, "generate", string(capability.GenerateCoverLetter), "--cv", cv, "--job", job, "--tone", "enthusiastic")
	require.NoError(t, err)
	assert.Contains(t, out, `"coverLetter": "Dear hiring team"`)

	withInvoker(t, `{"coverLetter": "Dear {{.Company}} team", "highlights": [], "callToAction": "Let's talk"}`)
	out, err = runCLI(t, "generate", string(capability.GenerateCoverLetter), "--cv", cv, "--job", job)
	var genErr *llm.GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, capability.GenerateCoverLetter, genErr.Capability)
	assert.Empty(t, out)
}

func TestCallCommand(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/outline":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"success":true,"outline":{"sections":[]}}`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"content: is required"}`))
		}
	}))
	defer srv.Close()

	data := writeFile(t, "body.json", `{"content":"Jane Doe"}`)
	out, err := runCLI(t, "call", "api/outline", "--data", data, "--base-url", srv.URL, "--token", "secret-token")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)

	out, err = runCLI(t, "call", "/health", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)

	hits.Store(0)
	_, err = runCLI(t, "call", "/api/unknown", "--data", data, "--base-url", srv.URL, "--retries", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content: is required")
	assert.Equal(t, int32(1), hits.Load(), "client errors are not retried")
}

func TestCallCommand_InvalidBody(t *testing.T) {
	data := writeFile(t, "body.json", `{not json`)
	_, err := runCLI(t, "call", "/api/outline", "--data", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}
