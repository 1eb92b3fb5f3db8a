// httputil/json.go
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON error envelope every API handler returns.
// Fields is set only for validation failures and maps field name to message.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var encodeLogger = zap.NewNop()

// SetLogger sets the logger used to report encoding failures that happen
// after the status line was sent. Call once at startup.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	encodeLogger = l
}

// WriteJSON writes v as JSON with the given status. Status codes outside
// 100-599 become 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		encodeLogger.Error("json encoding failed after headers sent",
			zap.String("type", fmt.Sprintf("%T", v)),
			zap.Error(err))
	}
}

// JSONError writes an ErrorResponse with a machine code and a human message.
func JSONError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// JSONFieldErrors writes a 422 validation_failed response. message is the
// first failure, which clients may show as-is.
func JSONFieldErrors(w http.ResponseWriter, message string, fields map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_failed",
		Message: message,
		Fields:  fields,
	})
}

// BindJSON decodes the request body into v. Unknown fields, trailing data
// and empty bodies are rejected. Returned errors are safe to show clients.
func BindJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return errors.New("request body contains multiple JSON values")
	}
	return nil
}

func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("invalid value for field %q: expected %s", typeErr.Field, typeErr.Type.String())
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errors.New("request body too large")
	}

	// encoding/json has no typed error for DisallowUnknownFields.
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return fmt.Errorf("unknown field %q", field)
	}

	return errors.New("invalid JSON in request body")
}
