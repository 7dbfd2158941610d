package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evidchain/custodia/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only evidence HTTP API",
	Long: `serve exposes the evidence ledger over HTTP: current state,
per-asset audit trails, and the reconstructed genesis-anchored chain.
All endpoints are read-only; writes go through the CLI or the chaincode
directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newServeLogger()
		defer logger.Sync() //nolint:errcheck

		c, err := newClients(orgFlag, userFlag)
		if err != nil {
			return err
		}

		srv := server.New(c.custody, c.fetcher, c.merger, c.resolver, server.Options{
			CORSOrigins:  viper.GetStringSlice("serve.cors_origins"),
			RateLimitRPS: viper.GetInt("serve.rate_limit_rps"),
		}, logger)

		port := servePort
		if port == 0 {
			port = viper.GetInt("serve.port")
		}

		httpSrv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      srv.Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening",
				zap.String("addr", httpSrv.Addr),
				zap.String("org", orgFlag),
				zap.String("user", userFlag),
			)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		case sig := <-quit:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config, 8080)")
}

// newServeLogger builds the structured JSON logger used in serve mode.
func newServeLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
