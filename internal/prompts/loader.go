// Package prompts provides the LLM prompt templates and the per-capability prompt builders.
// Templates are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// placeholderPattern matches template tokens of the form {{.Name}}.
var placeholderPattern = regexp.MustCompile(`\{\{\.[A-Za-z][A-Za-z0-9]*\}\}`)

// UnresolvedPlaceholderError is returned when a formatted template still contains tokens.
type UnresolvedPlaceholderError struct {
	Key          string
	Placeholders []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("prompt %q has unresolved placeholders: %s", e.Key, strings.Join(e.Placeholders, ", "))
}

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "interview.json").
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Lookup finds a prompt key across every embedded file.
func Lookup(key string) (string, error) {
	files, err := Files()
	if err != nil {
		return "", err
	}
	for _, name := range files {
		prompts, err := loadFile(name)
		if err != nil {
			return "", err
		}
		if prompt, ok := prompts[key]; ok {
			return prompt, nil
		}
	}
	return "", fmt.Errorf("prompt key %q not found", key)
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// Unresolved returns the placeholder tokens still present in text, in order of appearance.
func Unresolved(text string) []string {
	return placeholderPattern.FindAllString(text, -1)
}

// FormatStrict formats template and fails if any placeholder is left unfilled.
func FormatStrict(key, template string, data map[string]string) (string, error) {
	out := Format(template, data)
	if left := Unresolved(out); len(left) > 0 {
		return "", &UnresolvedPlaceholderError{Key: key, Placeholders: left}
	}
	return out, nil
}

// Files lists the embedded prompt files in lexical order.
func Files() ([]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

// List returns all prompt keys in a file, sorted.
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
