package httputil

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/siteworks/drawalign/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Success bool        `json:"success"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError writes err as an ErrorBody. Errors without a code are reported
// as INTERNAL_ERROR with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal server error"
	}
	WriteJSON(w, errors.HTTPStatus(code), ErrorBody{Code: code, Message: msg})
}

// DecodeJSON reads r's body into v. An empty body leaves v untouched when
// allowEmpty is set. Unknown fields and trailing data are rejected.
func DecodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return errors.New(errors.ErrCodeInvalidInput, "request body is required")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	if dec.More() {
		return errors.New(errors.ErrCodeInvalidInput, "unexpected data after JSON body")
	}
	return nil
}

// MethodNotAllowed and NotFound write the error envelope for chi's fallbacks.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorBody{
		Code:    errors.ErrCodeUnsupported,
		Message: fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}
