package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sri-Charan-3-1-6/CivicEase/internal/dotenv"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/assistant"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/config"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/server"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store/postgres"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/vault"
)

type appDeps struct {
	loadConfig   func() (config.Config, error)
	openRepo     func(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Repository, func(), error)
	newGateway   func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gemini.Client, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultAppDeps() appDeps {
	return appDeps{
		loadConfig: config.LoadFromEnv,
		openRepo:   openRepo,
		newGateway: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gemini.Client, error) {
			return gemini.New(ctx, gemini.Config{
				APIKey:    cfg.GeminiAPIKey,
				ChatModel: cfg.ChatModel,
				LiveModel: cfg.LiveModel,
			}, logger)
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

// openRepo picks the session store: PostgreSQL when a database URL is
// configured, otherwise in-memory.
func openRepo(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("no database configured; sessions are stored in memory")
		return store.NewMemory(), func() {}, nil
	}
	pg, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	logger.Info("session store ready", "backend", "postgres")
	return pg, pg.Close, nil
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}
}

func runApp(ctx context.Context, logger *slog.Logger, deps appDeps) error {
	if deps.loadConfig == nil || deps.openRepo == nil || deps.newGateway == nil {
		return errors.New("missing dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, closeRepo, err := deps.openRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	gw, err := deps.newGateway(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}

	srv := server.New(cfg, logger, server.Deps{
		Repo:         repo,
		Orchestrator: assistant.New(gw, logger),
		Connector:    gw,
		Vault:        vault.New(),
	})
	httpSrv := buildHTTPServer(cfg, srv.Handler())

	logger.Info("starting civicease", "addr", cfg.Addr, "chat_model", cfg.ChatModel, "live_model", cfg.LiveModel)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer drainCancel()
	srv.DrainLiveSessions(drainCtx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("civicease stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps appDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := dotenv.LoadFile(".env"); err != nil {
		fmt.Fprintf(stderr, "civicease: %v\n", err)
		return 1
	}

	if err := runApp(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "civicease: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultAppDeps()))
}
