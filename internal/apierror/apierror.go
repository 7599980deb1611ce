// Package apierror provides the error taxonomy shared by services and
// handlers, plus the standardized response envelopes. All errors returned to
// clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error for HTTP mapping and for callers that need
// to branch on the failure mode.
type Kind int

const (
	// KindValidation: missing or malformed required fields — always a client error.
	KindValidation Kind = iota
	// KindDuplicate: uniqueness conflict (codigo de barras, nombre) — HTTP 409.
	KindDuplicate
	// KindNotFound: referenced entity absent.
	KindNotFound
	// KindStockInsuficiente: business-rule violation, distinct from generic validation.
	KindStockInsuficiente
	// KindConflict: delete blocked because dependents exist.
	KindConflict
	// KindPersistence: connection or transaction failure — retryable by the caller.
	KindPersistence
)

// Error is the canonical domain error. Conflicto carries the identity of the
// conflicting record for duplicate and insufficient-stock errors so the
// caller can resolve the situation without a follow-up lookup.
type Error struct {
	Kind      Kind
	Detail    string
	Conflicto interface{}
}

func (e *Error) Error() string { return e.Detail }

// Status maps the error kind to its HTTP status code. Unknown errors are
// treated as persistence failures (500).
func Status(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation, KindStockInsuficiente:
		return http.StatusBadRequest
	case KindDuplicate, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

func NotFound(detail string) *Error { return &Error{Kind: KindNotFound, Detail: detail} }

func Duplicate(detail string, conflicto interface{}) *Error {
	return &Error{Kind: KindDuplicate, Detail: detail, Conflicto: conflicto}
}

func StockInsuficiente(detail string, conflicto interface{}) *Error {
	return &Error{Kind: KindStockInsuficiente, Detail: detail, Conflicto: conflicto}
}

func Conflict(detail string, conflicto interface{}) *Error {
	return &Error{Kind: KindConflict, Detail: detail, Conflicto: conflicto}
}

// Persistence wraps a driver or transaction failure. The original error text
// is intentionally NOT exposed to clients.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Detail: "Error de persistencia"}
}

// ── Response envelopes ───────────────────────────────────────────────────────

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail    string      `json:"detail"`
	Conflicto interface{} `json:"conflicto,omitempty"`
}

func New(msg string) *APIError { return &APIError{Detail: msg} }

// Envelope builds the response body for a domain error.
func Envelope(err error) *APIError {
	var ae *Error
	if !errors.As(err, &ae) {
		return New("Error interno del servidor")
	}
	return &APIError{Detail: ae.Detail, Conflicto: ae.Conflicto}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
