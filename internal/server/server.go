package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/openmined/fileagent/internal/db"
)

type Server struct {
	config   *Config
	server   *http.Server
	services *Services
	lock     *flock.Flock
}

func New(config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sqldb, err := db.NewSqliteDb(db.WithPath(config.DBPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	services, err := NewServices(config, sqldb)
	if err != nil {
		sqldb.Close()
		return nil, err
	}

	handler := SetupRoutes(config, services)

	return &Server{
		config:   config,
		services: services,
		lock:     flock.New(filepath.Join(services.Files.Root(), ".fileagent.lock")),
		server: &http.Server{
			Addr:    config.HTTP.Addr,
			Handler: handler,
		},
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("fileagent server start", "addr", s.config.HTTP.Addr, "root", s.services.Files.Root(), "enforce", s.config.ACL.Enforce)
	defer slog.Info("fileagent server stop")

	// one agent per root directory
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another instance is already serving %q", s.services.Files.Root())
	}
	defer s.lock.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.runHTTPServer(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		slog.Info("http server stopped")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("fileagent shutdown signal")
		return s.Stop(context.WithoutCancel(gctx))
	})

	return g.Wait()
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) runHTTPServer() error {
	if s.config.HTTP.CertFile != "" && s.config.HTTP.KeyFile != "" {
		slog.Info("server start tls", "addr", s.config.HTTP.Addr, "cert", s.config.HTTP.CertFile, "key", s.config.HTTP.KeyFile)
		return s.server.ListenAndServeTLS(s.config.HTTP.CertFile, s.config.HTTP.KeyFile)
	}
	slog.Info("server start http", "addr", s.config.HTTP.Addr)
	return s.server.ListenAndServe()
}
