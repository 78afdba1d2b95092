package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/adrianliechti/scanpress/config"
	"github.com/adrianliechti/scanpress/pkg/auth"
	"github.com/adrianliechti/scanpress/pkg/auth/static"
	"github.com/adrianliechti/scanpress/pkg/otel"
	"github.com/adrianliechti/scanpress/server/convert"
	"github.com/adrianliechti/scanpress/server/mcp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type Server struct {
	*config.Config
	http.Handler

	logger *slog.Logger
}

func New(cfg *config.Config) (*Server, error) {
	authorizer, err := static.New(cfg.Token)

	if err != nil {
		return nil, err
	}

	s := &Server{
		Config: cfg,

		logger: slog.Default(),
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(authorizer))

		r.Route("/v1", func(r chi.Router) {
			convert.New(cfg).Attach(r)
		})

		r.Handle("/mcp", mcp.New(cfg))
	})

	s.Handler = otel.Handler(r, "scanpress")

	return s, nil
}

// ListenAndServe serves until ctx is done and then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Address,
		Handler: s,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		srv.Shutdown(shutdown)
	}()

	s.logger.Info("server listening", "address", s.Address, "models", s.Models())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")

		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", id)

		next.ServeHTTP(w, r)
	})
}

func authenticate(p auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := p.Authenticate(r.Context(), r)

			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
