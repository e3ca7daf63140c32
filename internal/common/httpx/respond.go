package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"cafeteria-system/internal/common/apperr"
)

const maxBody = 1 << 20

// WriteJSON отдаёт JSON с нужным статусом
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem renders the simplified RFC7807 body used by every service.
func WriteProblem(w http.ResponseWriter, code int, typ, detail string) {
	WriteJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

// WriteError maps err onto a problem body. Wrapped causes are never written out.
func WriteError(w http.ResponseWriter, err error) {
	if e, ok := apperr.As(err); ok {
		WriteProblem(w, e.Status, string(e.Kind), e.Message)
		return
	}
	WriteProblem(w, http.StatusInternalServerError, string(apperr.KindInternal), "internal error")
}

// DecodeJSON reads a bounded JSON body into v. Malformed bodies become a validation error with status code.
func DecodeJSON(r *http.Request, v any, code int) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "empty request body"
		}
		if code == http.StatusUnprocessableEntity {
			return apperr.Unprocessable(msg)
		}
		return apperr.Validation(msg)
	}
	return nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Problem is the decoded form of a problem body returned by another service.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}
