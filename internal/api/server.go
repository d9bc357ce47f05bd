package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mimic/internal/replies"
	"github.com/MikeSquared-Agency/mimic/internal/store"
)

// UserStore is the user, comment and session surface of the store.
type UserStore interface {
	CreateUser(ctx context.Context, email, name string) (store.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (store.User, error)
	AddComment(ctx context.Context, userID uuid.UUID, body string) (store.Comment, error)
	ListComments(ctx context.Context, userID uuid.UUID) ([]store.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (store.Session, error)
}

type Replier interface {
	Reply(ctx context.Context, req replies.Request) (replies.Reply, error)
}

// StatusInfo is reported by /api/v1/mimic/status.
type StatusInfo struct {
	Generator string `json:"generator"`
	Ledger    string `json:"ledger"`
	Index     string `json:"index"`
}

type Server struct {
	router  *chi.Mux
	http    *http.Server
	users   UserStore
	replies Replier
	info    StatusInfo
	logger  *slog.Logger
}

func NewServer(port int, apiToken string, users UserStore, replier Replier, info StatusInfo, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		users:   users,
		replies: replier,
		info:    info,
		logger:  logger,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/mimic/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Post("/replies", s.createReply)

		r.Post("/users", s.createUser)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.getUser)
			r.Get("/comments", s.listComments)
			r.Post("/comments", s.addComment)
			r.Delete("/comments/{commentID}", s.deleteComment)
			r.Get("/sessions/{sessionID}", s.getSession)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":  "mimic",
		"status": "ok",
		"config": s.info,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeStoreError maps domain errors to status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, replies.ErrInvalidUserID), errors.Is(err, replies.ErrEmptyPost):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
