package schemas

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is the compiled output contract of one capability.
type Schema struct {
	Capability capability.Capability
	File       string
	raw        []byte
	compiled   *gojsonschema.Schema
}

// Name returns a short identifier suitable for provider-side schema names (e.g. "optimize_cv").
func (s *Schema) Name() string {
	return strings.TrimSuffix(s.File, ".schema.json")
}

// Raw returns a copy of the schema document bytes.
func (s *Schema) Raw() []byte {
	out := make([]byte, len(s.raw))
	copy(out, s.raw)
	return out
}

// Document returns a freshly decoded copy of the schema so callers may transform it freely.
func (s *Schema) Document() map[string]any {
	var doc map[string]any
	// raw was decoded successfully when the schema was compiled
	_ = json.Unmarshal(s.raw, &doc)
	return doc
}

// Validate checks a JSON document against the schema.
// It returns *ValidationError listing every violation, or nil.
func (s *Schema) Validate(doc []byte) error {
	return validateDocument(s.compiled, gojsonschema.NewBytesLoader(doc))
}

var (
	cache   = make(map[capability.Capability]*Schema)
	cacheMu sync.RWMutex
)

// For returns the compiled schema registered for c.
func For(c capability.Capability) (*Schema, error) {
	cacheMu.RLock()
	if s, ok := cache[c]; ok {
		cacheMu.RUnlock()
		return s, nil
	}
	cacheMu.RUnlock()

	file, err := c.SchemaFile()
	if err != nil {
		return nil, err
	}

	raw, err := schemas.Files.ReadFile(file)
	if err != nil {
		return nil, &SchemaLoadError{Path: file, Message: "schema file not embedded", Cause: err}
	}
	s, err := compile(c, file, raw)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[c] = s
	cacheMu.Unlock()

	return s, nil
}

// compile checks that raw is a JSON object schema gojsonschema accepts.
func compile(c capability.Capability, file string, raw []byte) (*Schema, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &SchemaLoadError{Path: file, Message: "schema is not valid JSON", Cause: err}
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: file, Message: "schema could not be compiled", Cause: err}
	}
	return &Schema{Capability: c, File: file, raw: raw, compiled: compiled}, nil
}

// MustFor is like For but panics on error. Use only with capability constants.
func MustFor(c capability.Capability) *Schema {
	s, err := For(c)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadAll compiles every registered schema, failing on the first broken one.
// server.New calls it so a bad schema stops the process before traffic arrives.
func LoadAll() error {
	for _, c := range capability.All() {
		if _, err := For(c); err != nil {
			return err
		}
	}
	return nil
}
