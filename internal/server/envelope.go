package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const apiVersion = "1.0"

// envelope is the uniform JSON wrapper for every response. Exactly one
// of Data and Error is set; Context echoes the caller-supplied opaque
// string when present.
type envelope struct {
	APIVersion string    `json:"apiVersion"`
	Context    string    `json:"context,omitempty"`
	Data       any       `json:"data,omitempty"`
	Error      *apiError `json:"error,omitempty"`
}

// apiError carries the HTTP status a second time in the body so clients
// that only look at the payload still see the outcome.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// listing is the shape shared by both catalog operations. No paging:
// totalItems always equals currentItemCount.
type listing struct {
	Kind             string   `json:"kind"`
	TotalItems       int      `json:"totalItems"`
	CurrentItemCount int      `json:"currentItemCount"`
	Items            []string `json:"items"`
}

func newEnvelope(r *http.Request) envelope {
	env := envelope{APIVersion: apiVersion}
	if c := r.URL.Query().Get("context"); strings.TrimSpace(c) != "" {
		env.Context = c
	}
	return env
}

// writeAck answers a success with no payload beyond the envelope.
func writeAck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newEnvelope(r))
}

func writeData(w http.ResponseWriter, r *http.Request, data any) {
	env := newEnvelope(r)
	env.Data = data
	writeJSON(w, http.StatusOK, env)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, message string) {
	env := newEnvelope(r)
	env.Error = &apiError{Code: code, Message: message}
	writeJSON(w, code, env)
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
