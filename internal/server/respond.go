package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-optimizer/internal/logger"
)

// maxJSONBody caps request bodies that are not file uploads.
const maxJSONBody = 2 << 20

// validate is shared by all handlers; it caches struct metadata and is safe for concurrent use.
var validate = newValidator()

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// success writes {"success": true} merged with the fields of payload, which must encode as an object.
func success(w http.ResponseWriter, r *http.Request, payload any) {
	body := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			fail(w, r, fmt.Errorf("failed to encode response: %w", err))
			return
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			fail(w, r, fmt.Errorf("response is not an object: %w", err))
			return
		}
	}
	body["success"] = json.RawMessage("true")
	jsonResponse(w, http.StatusOK, body)
}

// errorResponse writes {"success": false, "error": message}.
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{"success": false, "error": message})
}

// fail maps err to a status and a client-safe message, logging server errors in full.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).
			Int("status", status).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	errorResponse(w, status, ClientMessage(err))
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is required"}
		}
		return &ErrValidation{Message: "invalid request body"}
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Message: "invalid request"}
	}
	fe := verrs[0]
	field := jsonFieldName(fe)
	switch fe.Tag() {
	case "required":
		return &ErrValidation{Field: field, Message: "is required"}
	case "email":
		return &ErrValidation{Field: field, Message: "must be a valid email address"}
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return &ErrValidation{Field: field, Message: fmt.Sprintf("must be at least %s characters", fe.Param())}
		case reflect.Slice:
			return &ErrValidation{Field: field, Message: fmt.Sprintf("must have at least %s items", fe.Param())}
		}
		return &ErrValidation{Field: field, Message: fmt.Sprintf("must be at least %s", fe.Param())}
	case "max":
		if fe.Kind() == reflect.String {
			return &ErrValidation{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
		}
		return &ErrValidation{Field: field, Message: fmt.Sprintf("must be at most %s", fe.Param())}
	case "oneof":
		return &ErrValidation{Field: field, Message: "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")}
	case "uuid":
		return &ErrValidation{Field: field, Message: "must be a valid id"}
	case "url", "http_url":
		return &ErrValidation{Field: field, Message: "must be a valid URL"}
	default:
		return &ErrValidation{Field: field, Message: "is invalid"}
	}
}

// jsonFieldName returns the namespace of a failed field without the top-level struct name.
func jsonFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// newValidator reports JSON tag names in errors.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
