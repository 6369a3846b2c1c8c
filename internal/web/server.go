// Package web provides an HTTP status server for the chamber daemon.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/operant-chamber/internal/status"
	"github.com/sweeney/operant-chamber/internal/store"
)

// SessionLister lists archived sessions. *store.Store satisfies it.
type SessionLister interface {
	ListSessions(chamber string) ([]store.Session, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	sessions   SessionLister
}

// New creates a Server that reads state from the given tracker.
// sessions may be nil, in which case /sessions.json returns 404.
func New(addr string, tracker *status.Tracker, sessions SessionLister) *Server {
	s := &Server{tracker: tracker, sessions: sessions}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/sessions.json", s.handleSessions)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// SessionJSON is the JSON representation of an archived session.
type SessionJSON struct {
	ID        string `json:"id"`
	Paradigm  string `json:"paradigm"`
	Ratio     int    `json:"ratio"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	Records   int    `json:"records"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.NotFound(w, r)
		return
	}
	chamber := s.tracker.Snapshot().Config.Chamber
	sessions, err := s.sessions.ListSessions(chamber)
	if err != nil {
		log.Printf("web: list sessions: %v", err)
		http.Error(w, "archive unavailable", http.StatusInternalServerError)
		return
	}

	out := make([]SessionJSON, 0, len(sessions))
	for _, sess := range sessions {
		sj := SessionJSON{
			ID:        sess.ID,
			Paradigm:  sess.Paradigm,
			Ratio:     sess.Ratio,
			StartedAt: sess.StartedAt.UTC().Format(timeFormat),
			Records:   sess.Records,
		}
		if sess.EndedAt != nil {
			sj.EndedAt = sess.EndedAt.UTC().Format(timeFormat)
		}
		out = append(out, sj)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
