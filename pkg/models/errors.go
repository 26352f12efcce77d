package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

var ErrBadRequest = errors.New("bad request")

// ErrDimensionMismatch is returned when a vector's width does not match
// the width established by the store's first insert.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

// CredentialMissingError indicates a provider's API key is not configured
// or is a placeholder value. It is fatal for that provider only; the
// generation service treats it like any other provider failure when
// deciding whether to fall back.
type CredentialMissingError struct {
	Provider Provider
	EnvVars  []string
}

func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf(
		"%s API key is not set (set one of: %s)",
		e.Provider,
		strings.Join(e.EnvVars, ", "),
	)
}

func NewCredentialMissingError(provider Provider, envVars ...string) error {
	return &CredentialMissingError{Provider: provider, EnvVars: envVars}
}

// UpstreamHTTPError indicates a non-2xx response from a provider API.
type UpstreamHTTPError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf(
		"%s API error: status %d: %s",
		e.Provider,
		e.StatusCode,
		e.Body,
	)
}

// ResponseShapeError indicates a response that parsed as JSON but did not
// match any recognized shape.
type ResponseShapeError struct {
	Context string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("unrecognized %s response shape", e.Context)
}

// AllProvidersFailedError is the terminal generation error, raised only
// after every fallback candidate has been tried.
type AllProvidersFailedError struct {
	Original error
	Tried    []Provider
}

func (e *AllProvidersFailedError) Error() string {
	tried := make([]string, len(e.Tried))
	for i, p := range e.Tried {
		tried[i] = string(p)
	}
	return fmt.Sprintf(
		"all providers failed (tried: %s): %v",
		strings.Join(tried, ", "),
		e.Original,
	)
}

func (e *AllProvidersFailedError) Unwrap() error {
	return e.Original
}

// StructuredOutputError indicates the model's response could not be
// parsed as JSON, even after fenced-block extraction. Excerpt carries a
// truncated copy of the raw text for diagnosis.
type StructuredOutputError struct {
	Excerpt string
	Cause   error
}

func (e *StructuredOutputError) Error() string {
	return fmt.Sprintf("could not parse structured output: %v (raw: %q)", e.Cause, e.Excerpt)
}

func (e *StructuredOutputError) Unwrap() error {
	return e.Cause
}
