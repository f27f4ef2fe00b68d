// Package server exposes the conversation engine over HTTP.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/sirinut/regibot/agent/engine"
	statex "github.com/sirinut/regibot/agent/state"
)

type Config struct {
	Addr string `split_words:"true" default:":8080"`
}

type Server struct {
	engine   *engine.Engine
	sessions statex.Store
	router   *chi.Mux

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(eng *engine.Engine, sessions statex.Store) *Server {
	s := &Server{
		engine:   eng,
		sessions: sessions,
		locks:    make(map[string]*sync.Mutex),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/chat", s.handleChat)
	r.Post("/api/clear", s.handleClear)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// sessionLock serializes turns per session so two concurrent messages cannot
// interleave their read-modify-write of the conversation state.
func (s *Server) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// dropSessionLock evicts the lock entry once its session is cleared, so the
// lock map does not grow with every session ever seen.
func (s *Server) dropSessionLock(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
