package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// WriteJSON encodes v as the response body with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: failed to encode response: %v", err)
	}
}

// WriteError responds with {"error": body}. body is either a message or a
// map naming the failing field.
func WriteError(w http.ResponseWriter, status int, body interface{}) {
	WriteJSON(w, status, map[string]interface{}{"error": body})
}

// WriteMessage responds with {"message": msg} plus any extra fields.
func WriteMessage(w http.ResponseWriter, status int, msg string, fields map[string]interface{}) {
	body := map[string]interface{}{"message": msg}
	for k, v := range fields {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// InternalError logs err and hides it from the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("web: %s %s: %v", r.Method, r.URL.Path, err)
	WriteError(w, http.StatusInternalServerError, "Something went wrong while handling the request.")
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// PeekJSON decodes the request body into v and rewinds it, so guards can
// inspect the body before the handler reads it. A missing or malformed body
// leaves v untouched.
func PeekJSON(r *http.Request, v interface{}) {
	if r.Body == nil || r.Body == http.NoBody {
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil || len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}
