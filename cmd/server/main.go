package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"pqsaaay/internal/config"
	"pqsaaay/internal/db"
	"pqsaaay/internal/logging"
	"pqsaaay/internal/router"
	"pqsaaay/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logging.Configure(cfg.Log.Level)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	artifact, err := db.Open(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, artifact, store.Options{
		QueueSize:     cfg.Store.QueueSize,
		CommitTimeout: cfg.Store.CommitTimeout,
	})
	if err != nil {
		_ = artifact.Close()
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.New(cfg, st),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "addr", srv.Addr, "backend", st.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// 等待 HTTP 请求结束后再关闭存储，排队中的写入会先落盘
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	})
	return g.Wait()
}
