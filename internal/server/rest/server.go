// Package rest exposes the account, token and post operations over HTTP
// with a chi router.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	// DefaultAuthRateLimit is the per-IP budget for signup and login
	// requests per minute.
	DefaultAuthRateLimit = 20

	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

type UserService interface {
	Signup(ctx context.Context, email, password, name string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, id int64) (*models.User, error)
	PublicProfile(ctx context.Context, accessKey string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, upd services.ProfileUpdate) (string, error)
}

type PostService interface {
	CreatePost(ctx context.Context, userID int64, text string) (string, error)
	GetPost(ctx context.Context, accessKey string) (*services.PostView, error)
	AddComment(ctx context.Context, userID int64, postAccessKey, text string) (string, error)
}

// Resolver turns a bearer token into an identity. It never fails.
type Resolver interface {
	Resolve(ctx context.Context, token string) services.Identity
}

type Options struct {
	RequestTimeout time.Duration
	AuthRateLimit  int
	CORSOrigins    []string
}

type RESTServer struct {
	address string
	users   UserService
	posts   PostService
	gate    Resolver
	opts    Options
	logger  logging.Logger
	router  chi.Router
}

func NewRESTServer(a string, l logging.Logger, us UserService, ps PostService, gate Resolver, opts Options) *RESTServer {
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = DefaultAuthRateLimit
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &RESTServer{
		address: a,
		users:   us,
		posts:   ps,
		gate:    gate,
		opts:    opts,
		logger:  l.With("module", "rest_server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *RESTServer) Handler() http.Handler { return s.router }

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *RESTServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting REST server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
