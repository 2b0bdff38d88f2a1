package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/FrenchMajesty/emotion-classifier/internal/api"
)

var (
	serveMaxBody  int64
	serveMaxBatch int
)

func init() {
	serveCmd.Flags().Int64Var(&serveMaxBody, "max-body", api.DefaultMaxBodyBytes, "maximum request body size in bytes")
	serveCmd.Flags().IntVar(&serveMaxBatch, "max-batch", api.DefaultMaxBatch, "maximum number of texts per batch request")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classifier over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()
		if appCfg.LogLevel > slog.LevelDebug {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		clf, err := newClassifier(ctx, appCfg, logger)
		if err != nil {
			return err
		}
		defer clf.Close()

		handler := api.New(clf, api.Options{
			MaxBodyBytes: serveMaxBody,
			MaxBatch:     serveMaxBatch,
			Logger:       logger,
		})

		srv := &http.Server{
			Addr:              appCfg.ListenAddr,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		// Graceful shutdown
		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting emotion server",
				"addr", appCfg.ListenAddr,
				"model", appCfg.ModelPath,
				"available", clf.Available(),
				"cache", appCfg.CacheBackend,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Error("shutdown error", "err", err)
			return err
		}
		return nil
	},
}

