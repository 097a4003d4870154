package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/fin-health/pkg/handlers/dashboard"
	"github.com/de-tools/fin-health/pkg/services/coordinator"

	finhealthmiddleware "github.com/de-tools/fin-health/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	dashboard       *handlers.Handler
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Coordinator *coordinator.Coordinator
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) (*WebAPI, error) {
	dashboard, err := handlers.NewHandler(config.Dependencies.Coordinator)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	router.Use(finhealthmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/", dashboard.Index)
	router.Get("/dashboard", dashboard.Dashboard)
	router.Get("/history", dashboard.History)
	router.Get("/chart.svg", dashboard.Chart)
	router.Post("/files", dashboard.SelectFiles)
	router.Post("/analyze", dashboard.Analyze)
	router.Post("/reset", dashboard.Reset)
	router.Post("/history/{id}/view", dashboard.ViewReport)
	router.Post("/notices/{id}/dismiss", dashboard.DismissNotice)

	router.Route("/api", func(r chi.Router) {
		r.Get("/state", dashboard.State)
	})

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		dashboard:       dashboard,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	defer func() {
		if err := w.dashboard.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("failed to remove uploaded files")
		}
	}()

	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
