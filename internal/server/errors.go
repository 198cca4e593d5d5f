// Package server provides the HTTP API of the CV optimizer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/documents"
	"github.com/jonathan/cv-optimizer/internal/fetch"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/schemas"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource.
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return e.Resource + " not found"
}

// generationFailedMessage is what clients see for a failed model call of a
// capability missing from generationFailedMessages.
const generationFailedMessage = "the model could not produce a valid result, please try again"

var generationFailedMessages = map[capability.Capability]string{
	capability.OptimizeCV:                 "error while optimizing CV",
	capability.AnalyzeJob:                 "error while analyzing job posting",
	capability.GenerateCoverLetter:        "error while generating cover letter",
	capability.SkillGap:                   "error while analyzing skill gaps",
	capability.CompareJobs:                "error while comparing job postings",
	capability.GenerateInterviewQuestions: "error while generating interview questions",
	capability.EvaluateInterviewAnswer:    "error while evaluating answer",
	capability.ParseLinkedInProfile:       "error while parsing LinkedIn profile",
	capability.MergeProfiles:              "error while merging profiles",
}

// GenerationFailedMessage returns the client-facing failure text for a capability.
func GenerationFailedMessage(c capability.Capability) string {
	if msg, ok := generationFailedMessages[c]; ok {
		return msg
	}
	return generationFailedMessage
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userMissing  *ErrUserNotFound
		validation   *ErrValidation
		notFound     *ErrNotFound
		unknownCap   *capability.UnknownCapabilityError
		rejected     *documents.RejectedError
		tooLarge     *documents.TooLargeError
		fetchErr     *fetch.Error
		missingCreds *llm.MissingCredentialError
		generation   *llm.GenerationFailedError
		schemaErr    *schemas.ValidationError
		placeholder  *prompts.UnresolvedPlaceholderError
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userMissing), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &unknownCap), errors.As(err, &rejected):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &fetchErr):
		if fetchErr.Invalid {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.As(err, &missingCreds), errors.As(err, &generation), errors.As(err, &schemaErr), errors.As(err, &placeholder):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the error text safe to show to API clients.
// Model failures are reduced to a generic message; their detail stays in the server log.
func ClientMessage(err error) string {
	var generation *llm.GenerationFailedError
	if errors.As(err, &generation) {
		return GenerationFailedMessage(generation.Capability)
	}
	var placeholder *prompts.UnresolvedPlaceholderError
	if errors.As(err, &placeholder) {
		return generationFailedMessage
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		var missingCreds *llm.MissingCredentialError
		if errors.As(err, &missingCreds) {
			return missingCreds.Error()
		}
		return "internal server error"
	}
	return err.Error()
}
