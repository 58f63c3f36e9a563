package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/lattice-pricer/src/handler"
	"github.com/jiaming2012/lattice-pricer/src/telemetry"
	"github.com/jiaming2012/lattice-pricer/src/utils"
)

const serviceName = "lattice-pricer"

// Serve runs the pricing API until SIGINT or SIGTERM.
func Serve(ctx context.Context, config *utils.Config) (err error) {
	if config.OtelEnabled {
		otelShutdown, setupErr := telemetry.Setup(ctx, serviceName)
		if setupErr != nil {
			return fmt.Errorf("Serve: failed to setup otel sdk: %w", setupErr)
		}

		// Handle shutdown properly so nothing leaks.
		defer func() {
			err = errors.Join(err, otelShutdown(context.Background()))
		}()
	}

	router := handler.SetupRouter(newService(config))

	srv := &http.Server{
		Handler:           otelhttp.NewHandler(router, serviceName),
		Addr:              fmt.Sprintf(":%s", config.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Create channel for shutdown signals.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	signal.Notify(stop, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("Serve: failed to listen and serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("Serve: error shutting down server: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
