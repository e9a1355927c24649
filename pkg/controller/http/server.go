package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/createai-lab/createai/pkg/usecase"
	"github.com/createai-lab/createai/pkg/utils/errutil"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(uc.Auth))

		r.Get("/auth/me", s.handleMe)

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", s.handleCreateOrganization)
			r.Get("/", s.handleListOrganizations)
			r.Get("/{orgID}", s.handleGetOrganization)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.handleCreateProject)
			r.Get("/", s.handleListProjects)
			r.Put("/{projectID}", s.handleUpdateProject)
			r.Post("/{projectID}/items", s.handleCreateContentItem)
			r.Get("/{projectID}/items", s.handleListContentItems)
		})
		r.Put("/items/{itemID}", s.handleUpdateContentItem)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/outline", s.handleGenerateOutline)
			r.Post("/blog", s.handleGenerateBlogDraft)
			r.Post("/podcast", s.handleGeneratePodcastScript)
			r.Post("/enhance", s.handleEnhanceContent)
		})

		r.Route("/integrations", func(r chi.Router) {
			r.Post("/", s.handleUpsertIntegration)
			r.Get("/", s.handleListIntegrations)
			r.Delete("/{provider}", s.handleDeleteIntegration)
			r.Post("/{provider}/test", s.handleTestIntegration)
		})
		r.Get("/transcripts", s.handleGetTranscripts)

		r.Get("/calendar/events", s.handleCalendarEvents)
		r.Route("/meetings/dismissed", func(r chi.Router) {
			r.Post("/", s.handleDismissMeeting)
			r.Get("/", s.handleListDismissedMeetings)
		})

		r.Post("/sync/meeting", s.handleSyncMeeting)

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/", s.handleCreateSnapshot)
			r.Get("/", s.handleListSnapshots)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// respondError maps well-known sentinel errors to their HTTP status; anything
// else uses the handler's fallback status.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, usecase.ErrCalendarUpstream):
		status = http.StatusBadGateway
	case errors.Is(err, usecase.ErrGenerationDisabled):
		status = http.StatusServiceUnavailable
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}
