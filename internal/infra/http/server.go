package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv    *http.Server
	router chi.Router
}

// New /health всегда, /metrics, если gatherer не nil.
func New(addr string, gatherer prometheus.Gatherer) *Server {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		router: router,
	}
}

// Mount вешает POST-обработчик, например вебхук Telegram.
func (s *Server) Mount(path string, h http.Handler) {
	s.router.Method(http.MethodPost, path, h)
}

func (s *Server) Handler() http.Handler { return s.router }

// Start блокирует до Shutdown; штатная остановка ошибкой не считается.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
