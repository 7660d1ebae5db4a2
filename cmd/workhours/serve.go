package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/workhours/api"
)

func serveCommand(open func() (*app, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.Addr = addr
			}
			return a.serve()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides WORKHOURS_ADDR)")
	return cmd
}

func (a *app) serve() error {
	handler := api.NewHandler(a.store, a.national, a.log)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:  a.cfg.CORSOrigins,
		MaxBodyBytes: a.cfg.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.WithField("addr", a.cfg.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	a.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	a.log.Info("server stopped")
	return nil
}
