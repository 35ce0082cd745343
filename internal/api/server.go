package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voxai/scrub/internal/pipeline"
)

// Server exposes the cleaned conversation directory over HTTP.
type Server struct {
	router *chi.Mux
	port   int
	outDir string
}

func NewServer(port int, outDir string) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		outDir: outDir,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/conversations", s.listPeers)
	router.Get("/api/v1/conversations/{peer}", s.getConversations)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) listPeers(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.outDir)
	if err != nil {
		http.Error(w, `{"error":"output directory unavailable"}`, http.StatusInternalServerError)
		return
	}

	peers := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, "_extracted.json") {
			continue
		}
		peers = append(peers, strings.TrimSuffix(name, ".json"))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"peers": peers})
}

func (s *Server) getConversations(w http.ResponseWriter, r *http.Request) {
	peer := chi.URLParam(r, "peer")

	// SafeName is the same mapping the writer used, so any traversal
	// characters are stripped before the path is built.
	path := filepath.Join(s.outDir, pipeline.SafeName(peer)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, `{"error":"unknown peer"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"read failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
