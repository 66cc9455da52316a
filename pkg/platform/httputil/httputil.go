// Package httputil holds the JSON request/response plumbing shared by every
// HTTP handler.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	dErrors "maklarsystem/pkg/domain-errors"
)

// MaxBodyBytes bounds decoded request bodies.
const MaxBodyBytes = 1 << 20

// Validatable is implemented by request DTOs that check and parse themselves
// after decoding.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request DTOs that trim or canonicalize
// fields before validation.
type Normalizable interface {
	Normalize()
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Errors           any    `json:"errors,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and error envelope. Internal errors never
// expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)

	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
		resp.Errors = dErrors.DetailsOf(err)
	}
	WriteJSON(w, status, resp)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeIncrementViolation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeInvalidTransition, dErrors.CodeConflict, dErrors.CodeInvariantViolation:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Decode decodes the JSON body into a T. A value of the wrong JSON type does
// not abort decoding: every such value is returned as a TypeMismatch, its
// field is left unset and the rest of the body is still decoded. Any other
// decode failure, including a body that is not a JSON object, returns an
// error.
func Decode[T any](r *http.Request) (*T, []TypeMismatch, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		return nil, nil, err
	}
	req := new(T)
	err = json.NewDecoder(bytes.NewReader(body)).Decode(req)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return req, nil, nil
	case !errors.As(err, &typeErr):
		return nil, nil, err
	}

	// encoding/json reports only the first mismatch and leaves every
	// mismatched field at its zero value; a generic decode finds the rest.
	var tree any
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&tree); err != nil {
		return nil, nil, err
	}
	var m mismatches
	if !m.walk(reflect.ValueOf(req).Elem(), tree, "") {
		return nil, nil, err
	}
	if len(m.found) == 0 {
		// Out-of-range numbers fit the JSON kind but not the Go type.
		m.found = append(m.found, TypeMismatch{
			Path:    typeErr.Field,
			Kind:    "format",
			Message: "must not be a JSON " + typeErr.Value,
		})
	}
	return req, m.found, nil
}

// DecodeAndPrepare decodes the JSON body into a T, then runs Normalize and
// Validate when T implements them. On failure it writes the error response,
// logs it and returns false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, mismatched, err := Decode[T](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}
	if len(mismatched) > 0 {
		logger.InfoContext(ctx, "request body has mistyped fields",
			"request_id", requestID,
			"count", len(mismatched),
		)
		WriteError(w, MismatchError(mismatched))
		return nil, false
	}

	if n, ok := any(req).(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			logger.InfoContext(ctx, "request rejected by validation",
				"request_id", requestID,
				"error", err,
			)
			WriteError(w, err)
			return nil, false
		}
	}
	return req, true
}
