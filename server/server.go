// Package server exposes a loaded machine over a small JSON HTTP API.
//
// The API mirrors the engine's public operations: load and fetch the
// model, validate it, test strings against working copies, and convert an
// NFA to its equivalent DFA. The interchange XML dialect is served for
// cross-tool exchange.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"automata/machine"
	"automata/sim"
)

// A Server holds at most one machine at a time and serves it over HTTP.
//
// Handlers run on the standard library's server goroutines. The Server
// does no locking of its own: concurrent requests are not serialized, so
// the engine's single-owner model holds only while requests do not overlap.
type Server struct {
	router *mux.Router
	log    *logrus.Logger

	m        machine.Machine
	maxSteps int
}

// New creates a Server with no machine loaded.
func New(log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		router: mux.NewRouter(),
		log:    log,
	}
	s.router.HandleFunc("/machine", s.handleLoad).Methods(http.MethodPost, http.MethodPut)
	s.router.HandleFunc("/machine", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/machine/validate", s.handleValidate).Methods(http.MethodGet)
	s.router.HandleFunc("/machine/test", s.handleTest).Methods(http.MethodPost)
	s.router.HandleFunc("/machine/batch", s.handleBatch).Methods(http.MethodPost)
	s.router.HandleFunc("/machine/convert", s.handleConvert).Methods(http.MethodPost)
	s.router.HandleFunc("/machine/xml", s.handleExportXML).Methods(http.MethodGet)
	s.router.HandleFunc("/machine/xml", s.handleImportXML).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Debug("request")
	s.router.ServeHTTP(w, r)
}

// Load replaces the served machine.
func (s *Server) Load(m machine.Machine) {
	s.m = m
	s.maxSteps = machine.DefaultMaxSteps(m.Kind())
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("writing response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, errorBody{Error: err.Error()})
}

// requireMachine answers 404 when no machine is loaded.
func (s *Server) requireMachine(w http.ResponseWriter) bool {
	if s.m == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "no machine loaded"})
		return false
	}
	return true
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	rec, err := machine.DecodeStructured(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := machine.Load(rec)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Load(m)
	s.log.WithField("kind", m.Kind()).Info("machine loaded")
	s.writeJSON(w, http.StatusOK, m.ToStructured())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !s.requireMachine(w) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.m.ToStructured())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if !s.requireMachine(w) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.m.Validate())
}

type testRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	if !s.requireMachine(w) {
		return
	}
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := sim.New(s.m, sim.Logger(s.log), sim.MaxSteps(s.maxSteps)).TestString(req.Input)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Inputs []string `json:"inputs"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireMachine(w) {
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := sim.New(s.m, sim.Logger(s.log), sim.MaxSteps(s.maxSteps)).RunBatchTests(req.Inputs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if !s.requireMachine(w) {
		return
	}
	n, ok := s.m.(*machine.NFA)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "only an NFA can be determinized"})
		return
	}
	s.writeJSON(w, http.StatusOK, n.ToDFA().ToStructured())
}

func (s *Server) handleExportXML(w http.ResponseWriter, r *http.Request) {
	if !s.requireMachine(w) {
		return
	}
	var buf bytes.Buffer
	if err := machine.ToInterchangeXML(s.m, &buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImportXML(w http.ResponseWriter, r *http.Request) {
	m, err := machine.FromInterchangeXML(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Load(m)
	s.log.WithField("kind", m.Kind()).Info("machine imported from interchange XML")
	s.writeJSON(w, http.StatusOK, m.ToStructured())
}
