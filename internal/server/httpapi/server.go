// Package httpapi exposes the auth service over JSON/HTTP under /api/auth,
// together with the health and Prometheus endpoints.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/logging"
	"github.com/dmitrijs2005/admagic/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// AuthService is the business API the handlers drive.
type AuthService interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*services.AuthResult, error)
	SendVerificationEmail(ctx context.Context, email string) error
	ForgetPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
}

type Server struct {
	address string
	auth    AuthService
	logger  logging.Logger
	limiter *RateLimiter
	metrics *Metrics
	router  *mux.Router
}

func NewServer(addr string, svc AuthService, l logging.Logger, rl *RateLimiter, m *Metrics) *Server {
	s := &Server{
		address: addr,
		auth:    svc,
		logger:  l.With("module", "http_server"),
		limiter: rl,
		metrics: m,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverer, s.logRequests, s.metrics.Instrument)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(common.APIPrefix).Subrouter()
	api.Handle("/sign-up", s.limiter.Handler(http.HandlerFunc(s.signUp))).Methods(http.MethodPost)
	api.Handle("/sign-in", s.limiter.Handler(http.HandlerFunc(s.signIn))).Methods(http.MethodPost)
	api.HandleFunc("/sign-out", s.signOut).Methods(http.MethodPost)
	api.Handle("/session", s.requireBearer(http.HandlerFunc(s.session))).Methods(http.MethodGet)
	api.HandleFunc("/send-verification-email", s.sendVerificationEmail).Methods(http.MethodPost)
	api.Handle("/forget-password", s.limiter.Handler(http.HandlerFunc(s.forgetPassword))).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", s.resetPassword).Methods(http.MethodPost)
	api.HandleFunc("/verify-email", s.verifyEmail).Methods(http.MethodGet)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
