package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cosmossdk.io/log"
)

// request is the single-endpoint envelope: {"method": "...", "params": {...}}.
type request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// response carries either a result or an error, never both.
type response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server dispatches decoded JSON requests to registered method handlers
// over a single HTTP endpoint (spec §6). It has no opinion on transport
// lifecycle beyond implementing http.Handler; cmd/validatord owns the
// *http.Server that serves it.
type Server struct {
	methods map[string]Handler
	logger  log.Logger
}

// WithLogger attaches a structured logger used to report per-request
// dispatch errors. A Server built without one logs nothing.
func (s *Server) WithLogger(logger log.Logger) *Server {
	s.logger = logger
	return s
}

// ServeHTTP implements http.Handler: it decodes a request envelope,
// dispatches to the named method, and writes back a response envelope.
// Malformed envelopes and unknown methods both yield a 400 with an
// error body; handler errors yield a 200 with the error surfaced in the
// "error" field, since a rejected transaction or vote is an expected,
// structured outcome, not a transport failure.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "rpc: only POST is supported", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("rpc: decoding request: %w", err))
		return
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("rpc: unknown method %q", req.Method))
		return
	}

	result, err := handler(req.Params)
	if err != nil {
		if s.logger != nil {
			s.logger.Info("rpc: method returned error", "method", req.Method, "err", err.Error())
		}
		s.writeJSON(w, http.StatusOK, response{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, response{Result: result})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, response{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil && s.logger != nil {
		s.logger.Error("rpc: writing response", "err", encErr.Error())
	}
}
