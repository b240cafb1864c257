package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func (s *RESTServer) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", common.AuthorizationHeaderName, common.AccessTokenHeaderName},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	if s.opts.RequestTimeout > 0 {
		r.Use(Timeout(s.opts.RequestTimeout))
	}
	r.Use(Authenticate(s.gate))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.opts.AuthRateLimit, time.Minute))
			r.Post("/user", s.handleSignup)
			r.Post("/user/token", s.handleLogin)
		})

		r.Get("/user/{access}", s.handlePublicProfile)
		r.Get("/post/{access}", s.handleGetPost)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/user", s.handleProfile)
			r.Put("/user", s.handleUpdateProfile)
			r.Post("/post", s.handleCreatePost)
			r.Post("/post/{access}/comment", s.handleAddComment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
