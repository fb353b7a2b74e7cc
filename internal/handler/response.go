package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "Prompt not found"}
//
// The frontend always knows what fields to expect, whether it's a 400, 404,
// or 500. The message is part of the contract: "Already in cart" is shown to
// the user as-is.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/auth"
)

// maxBodyBytes caps every JSON request body. Prompt content is the largest
// field we accept and stays far below this.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// MessageResponse is the body of operations that have nothing else to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code must be set BEFORE writing the body. Once Encode
// calls w.Write(), the headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorKind maps a domain error to its HTTP status and machine-readable type.
//
// errors.Is walks the whole chain, so a service error wrapped with
// fmt.Errorf("...: %w", apperror.Duplicate(...)) still matches ErrDuplicate.
// ErrInconsistent has no case: a broken reference is a 500.
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrDuplicate):
		return http.StatusBadRequest, "duplicate"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it.
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer must not know about HTTP. A CLI or a gRPC front end
// would map the same sentinels differently.
//
// 500s never expose the raw error: it may contain SQL or file paths. It is
// logged and reported to Sentry instead, through the hub the sentryhttp
// middleware attached to the request.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, kind := errorKind(err)

	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		writeJSON(w, status, ErrorResponse{Error: kind, Message: appErr.Message})
		return
	}

	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a size-limited JSON body into dst. Any decoding problem is
// the caller's fault, so it comes back as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "Request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", "Request body too large")
		}
		return apperror.ValidationFailed("body", "Invalid request body")
	}
	return nil
}

// pathID parses a positive integer URL parameter such as {id} or {promptId}.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// viewer returns the signed-in user, or service.Anonymous (0) on public
// routes without a valid token.
func viewer(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// mustUser returns the authenticated user id on a RequireAuth route.
func mustUser(r *http.Request) (int64, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return 0, apperror.Unauthenticated("Access token required")
	}
	return id, nil
}

// NotFound answers unknown routes in the API's error format instead of chi's
// plain-text default.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Route not found"})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed", Message: "Method not allowed"})
}
