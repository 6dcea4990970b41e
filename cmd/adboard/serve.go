package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/deppfellow/adboard/internal/handler"
	"github.com/deppfellow/adboard/internal/logger"
	"github.com/deppfellow/adboard/internal/repository"
	"github.com/deppfellow/adboard/internal/router"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/deppfellow/adboard/internal/service"
	"github.com/spf13/cobra"
)

// DefaultShutdownTimeout bounds how long in-flight requests get after a signal.
const DefaultShutdownTimeout = 30 * time.Second

type serveOptions struct {
	port            string
	shutdownTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "adboard",
		Short:        "Users and advertisements API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply the database schema and serve the HTTP API",
		Long: `Load configuration from ADBOARD_* environment variables (and .env),
bring the database schema up to date, and serve the HTTP API until
SIGINT or SIGTERM is received.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	serveCmd.Flags().StringVar(&opts.port, "port", "", "Override ADBOARD_SERVER.PORT")
	serveCmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "Grace period for in-flight requests")

	return serveCmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			_ = srv.DB.Close()
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
