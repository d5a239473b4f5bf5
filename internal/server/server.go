// Package server exposes the conversational endpoint: a question goes
// in, the agent's answer and an optional chart URL come out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsage/finsage/internal/artifacts"
	"github.com/finsage/finsage/internal/config"
)

// Asker answers one user turn within a session.
type Asker interface {
	Respond(ctx context.Context, sessionID, userInput string) (string, error)
}

type askRequest struct {
	UserInput string `json:"user_input"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	Response  string  `json:"response"`
	GraphURL  *string `json:"graph_url"`
	SessionID string  `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	cfg   *config.Config
	asker Asker
	mux   *http.ServeMux
}

func New(cfg *config.Config, asker Asker) *Server {
	s := &Server{cfg: cfg, asker: asker, mux: http.NewServeMux()}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/ask", s.handleAsk)
	s.mux.Handle("/graph/", http.StripPrefix("/graph/", http.FileServer(http.Dir(cfg.GraphDir))))
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	return s
}

// Handler returns the full middleware-wrapped handler, exported so
// tests can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s", s.cfg.HTTPAddr)
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	index := filepath.Join(s.cfg.StaticDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		http.ServeFile(w, r, index)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "finsage is running. POST /ask with {\"user_input\": \"...\"}.")
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "POST required"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	userInput := strings.TrimSpace(req.UserInput)
	if userInput == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_input must not be empty"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	filename := graphFilename()
	fullPrompt := fmt.Sprintf(
		"If a graph is generated, save the graph as '%s' in the folder '%s' and do not mention anything about the graph being saved or generated.\n%s",
		filename, s.cfg.GraphDir, userInput)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AgentTimeout)
	defer cancel()

	recorder := artifacts.NewRecorder()
	ctx = artifacts.WithRecorder(ctx, recorder)

	answer, err := s.asker.Respond(ctx, sessionID, fullPrompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "request timed out"})
			return
		}
		log.Printf("ask failed for session %s: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Response:  answer,
		GraphURL:  s.resolveGraphURL(recorder, filename),
		SessionID: sessionID,
	})
}

// resolveGraphURL prefers the recorder's signal over a filesystem poll:
// any artifact the tools reported wins, even if the model ignored the
// requested filename. The poll remains as a fallback.
func (s *Server) resolveGraphURL(recorder *artifacts.Recorder, filename string) *string {
	for _, p := range recorder.Paths() {
		base := filepath.Base(p)
		if _, err := os.Stat(filepath.Join(s.cfg.GraphDir, base)); err == nil {
			url := "graph/" + base
			return &url
		}
	}
	if _, err := os.Stat(filepath.Join(s.cfg.GraphDir, filename)); err == nil {
		url := "graph/" + filename
		return &url
	}
	return nil
}

func graphFilename() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "graph_" + hex[:8] + ".png"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
