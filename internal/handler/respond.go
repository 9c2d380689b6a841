package handler

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bolt-api/internal/domain"
	"bolt-api/internal/middleware"
	"bolt-api/pkg/errors"
	"bolt-api/pkg/logger"
)

const maxBodyBytes = 1 << 20

var errActorMismatch = stderrors.New("actor does not match authenticated user")

// respondJSON writes data as the JSON response body
func respondJSON(w http.ResponseWriter, status int, data interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, logger *logger.Logger) {
	requestID := middleware.GetRequestID(r.Context())
	log := logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     appErr.StatusCode,
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(appErr).Error("Request failed")
	} else {
		log.WithError(appErr).Debug("Request rejected")
	}

	respondJSON(w, appErr.StatusCode, errors.NewErrorResponse(appErr, requestID), logger)
}

// respondError maps a service error to its HTTP representation
func respondError(w http.ResponseWriter, r *http.Request, err error, logger *logger.Logger) {
	var throttled *domain.ThrottledError
	if stderrors.As(err, &throttled) && throttled.RetryAfter > 0 {
		w.Header().Set("Retry-After", retryAfterSeconds(throttled.RetryAfter))
	}
	writeErrorResponse(w, r, toAppError(err), logger)
}

func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var verr *domain.ValidationError
	if stderrors.As(err, &verr) {
		return errors.NewValidationError("Validation failed", verr.Fields)
	}

	switch {
	case stderrors.Is(err, domain.ErrDuplicateEmail):
		return errors.NewDuplicateError("Email already registered")
	case stderrors.Is(err, domain.ErrDuplicateUsername):
		return errors.NewDuplicateError("Username already taken")
	case stderrors.Is(err, domain.ErrInvalidCredentials):
		return errors.NewAuthenticationError("Invalid credentials")
	case stderrors.Is(err, domain.ErrTooManyAttempts):
		return errors.NewRateLimitError("Too many login attempts, try again later")
	case stderrors.Is(err, domain.ErrPollClosed):
		return errors.NewPollClosedError("Poll is closed")
	case stderrors.Is(err, domain.ErrOptionNotInPoll):
		return errors.NewNotFoundError("Option not found")
	case stderrors.Is(err, domain.ErrNotFound):
		return errors.NewNotFoundError(notFoundMessage(err))
	case stderrors.Is(err, errActorMismatch):
		return errors.NewAuthorizationError("Cannot act on behalf of another user")
	}

	return errors.NewInternalError("Internal server error", err)
}

// retryAfterSeconds rounds d up to whole seconds for the Retry-After header
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

// notFoundMessage turns "poll not found" into "Poll not found"
func notFoundMessage(err error) string {
	msg := "Resource not found"
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if stderrors.Unwrap(e) == domain.ErrNotFound {
			msg = e.Error()
			break
		}
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// decodeJSON strictly decodes a single JSON object from the request body
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.Is(err, io.EOF):
			return errors.NewValidationError("No data provided", nil)
		case stderrors.As(err, &maxErr):
			return errors.NewValidationError("Request body too large", nil)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return errors.NewValidationError(fmt.Sprintf("Unknown field %s", field), nil)
		default:
			return errors.NewValidationError("Invalid request body", nil)
		}
	}

	if dec.More() {
		return errors.NewValidationError("Request body must contain a single JSON object", nil)
	}
	return nil
}

// resolveActor returns the user on whose behalf the request runs. An
// authenticated caller may omit the body id but may not contradict it.
func resolveActor(r *http.Request, bodyID string) (string, error) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		return bodyID, nil
	}
	if bodyID != "" && bodyID != actor {
		return "", errActorMismatch
	}
	return actor, nil
}
