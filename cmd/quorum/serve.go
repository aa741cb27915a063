package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quorumlabs/quorum/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development backend",
	Long: `Serve runs the scripted deliberation backend. It streams canned
progress events for every send, which is enough to exercise the engine
and the CLI end-to-end without the production service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)

		workflows, err := workflowLoader(cfg)
		if err != nil {
			return err
		}

		delay, _ := cmd.Flags().GetDuration("stage-delay")
		srv, err := server.New(
			server.WithWorkflows(workflows),
			server.WithStageDelay(delay),
			server.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		httpServer := &http.Server{
			Addr:    addr,
			Handler: srv.Handler(),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("development backend listening", "addr", addr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("stage-delay", 300*time.Millisecond, "Pause between streamed events")
	rootCmd.AddCommand(serveCmd)
}
