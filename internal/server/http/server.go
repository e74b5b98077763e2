package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer exposes the REST API.
type HTTPServer struct {
	address string
	logger  logging.Logger
	guard   *auth.Guard
	auth    transport.AuthUseCases
	resets  transport.ResetUseCases
	users   transport.UserUseCases
	scopes  transport.ScopeUseCases
	limiter *RateLimiter
	engine  *gin.Engine
}

// NewHTTPServer builds the router. loginRPM throttles POST /login per client
// IP; zero disables it.
func NewHTTPServer(a string, l logging.Logger, g *auth.Guard, svc transport.Services, loginRPM int) *HTTPServer {
	s := &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		guard:   g,
		auth:    svc.Auth,
		resets:  svc.Resets,
		users:   svc.Users,
		scopes:  svc.Scopes,
		limiter: NewRateLimiter(loginRPM),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve handles requests on lis until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error stopping HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
