package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/config"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/gemini"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
)

func TestRunMain_ReturnsNonZeroWhenConfigLoadFails(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := runMain(context.Background(), &stderr, appDeps{
		loadConfig: func() (config.Config, error) {
			return config.Config{}, errors.New("boom")
		},
		openRepo: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Repository, func(), error) {
			t.Fatalf("openRepo should not be called when config load fails")
			return nil, nil, nil
		},
		newGateway: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gemini.Client, error) {
			t.Fatalf("newGateway should not be called when config load fails")
			return nil, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})

	if exitCode != 1 {
		t.Fatalf("exitCode=%d, want 1", exitCode)
	}
	if got := stderr.String(); got == "" {
		t.Fatalf("expected stderr output for startup error")
	}
}

func TestRunApp_RejectsMissingDependencies(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := runApp(context.Background(), logger, appDeps{})
	if err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestRunApp_PropagatesRepoError(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wantErr := errors.New("connection refused")
	err := runApp(context.Background(), logger, appDeps{
		loadConfig: func() (config.Config, error) {
			return config.Config{Addr: "127.0.0.1:0"}, nil
		},
		openRepo: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Repository, func(), error) {
			return nil, nil, wantErr
		},
		newGateway: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gemini.Client, error) {
			t.Fatalf("newGateway should not be called when the repo fails to open")
			return nil, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err=%v, want %v", err, wantErr)
	}
}

func TestBuildHTTPServer_UsesConfiguredAddress(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Addr:              "127.0.0.1:9999",
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       3 * time.Second,
	}

	srv := buildHTTPServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	if srv.Addr != cfg.Addr {
		t.Fatalf("Addr=%q, want %q", srv.Addr, cfg.Addr)
	}
	if srv.ReadHeaderTimeout != cfg.ReadHeaderTimeout {
		t.Fatalf("ReadHeaderTimeout=%v, want %v", srv.ReadHeaderTimeout, cfg.ReadHeaderTimeout)
	}
	if srv.ReadTimeout != cfg.ReadTimeout {
		t.Fatalf("ReadTimeout=%v, want %v", srv.ReadTimeout, cfg.ReadTimeout)
	}
}

func TestOpenRepo_DefaultsToMemory(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, closeRepo, err := openRepo(context.Background(), config.Config{}, logger)
	if err != nil {
		t.Fatalf("openRepo error: %v", err)
	}
	defer closeRepo()

	if _, ok := repo.(*store.Memory); !ok {
		t.Fatalf("repo=%T, want *store.Memory", repo)
	}
}
