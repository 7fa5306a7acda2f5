package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/httpapi"
	"github.com/abhisek/adaptutor/internal/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tutoring API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if mode, _ := cmd.Flags().GetString("log-mode"); mode != "dev" {
			gin.SetMode(gin.ReleaseMode)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hub := notify.NewHub(a.logger)
		if err := hub.Start(ctx, a.bus); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(a.tracker, a.logger, httpapi.WithEvents(hub)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
