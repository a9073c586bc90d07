// CookSync server: the REST API that stores dishes and tasks and
// calculates cooking plans.
//
// Usage:
//
//	cooksync-server [-config cooksync.yaml] [-addr :8000] [-verbose]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hammamikhairi/cooksync/internal/api"
	"github.com/hammamikhairi/cooksync/internal/auth"
	"github.com/hammamikhairi/cooksync/internal/config"
	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/engine"
	"github.com/hammamikhairi/cooksync/internal/logger"
	"github.com/hammamikhairi/cooksync/internal/plan"
	"github.com/hammamikhairi/cooksync/internal/storage"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file to load (missing is fine)")
	addr := flag.String("addr", "", "listen address, overrides config")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.LoadServer(config.WithConfigFile(*configFile), config.WithEnvFile(*envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		level = logger.LevelVerbose
	}
	var logOpts []logger.Option
	if cfg.LogFormat == "json" {
		logOpts = append(logOpts, logger.WithJSON())
	}
	log := logger.New(level, os.Stderr, logOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Server, log *logger.Logger) error {
	store, err := openStore(cfg, log.With("storage"))
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Seed {
		n, err := storage.Seed(ctx, store, auth.LocalUserID)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		if n > 0 {
			log.Info("seeded %d demo dishes", n)
		}
	}

	kitchen := engine.New(store, store, log.With("engine"),
		engine.WithPlanBuilder(plan.New(plan.WithDefaultTemp(cfg.DefaultTemp))),
	)

	authSvc, err := newAuth(cfg, store, log.With("auth"))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(kitchen, authSvc, log.With("http"), api.WithCORSOrigins(cfg.CORSOrigins...)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          newErrorLog(log),
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", cfg.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()
	mode := "google sign-in"
	if authSvc.Local() {
		mode = "local mode, no sign-in"
	}
	log.Info("listening on %s (%s store, %s)", listener.Addr(), cfg.Store, mode)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(cfg *config.Server, log *logger.Logger) (domain.Store, error) {
	switch cfg.Store {
	case "badger":
		return storage.NewBadgerStore(cfg.DataDir, log)
	default:
		return storage.NewMemoryStore(log), nil
	}
}

func newAuth(cfg *config.Server, users domain.UserStore, log *logger.Logger) (*auth.Service, error) {
	if cfg.LocalMode() {
		log.Warn("no google client id configured, every request runs as %q", auth.LocalUserID)
		return auth.NewService(nil, nil, users, log), nil
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, "cooksync")
	if err != nil {
		return nil, err
	}
	return auth.NewService(auth.NewGoogleVerifier(cfg.GoogleClientID), tokens, users, log), nil
}

// newErrorLog routes net/http's own error output through zerolog.
func newErrorLog(log *logger.Logger) *stdlog.Logger {
	zl := log.With("http").Zerolog()
	return stdlog.New(&zl, "", 0)
}
