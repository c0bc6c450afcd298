package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warsztat/workshop-api/config"
	"github.com/warsztat/workshop-api/middleware"
	"github.com/warsztat/workshop-api/repository"
	"github.com/warsztat/workshop-api/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "workshop-api",
		Short: "Workshop API - repair bookings and scheduling for a car workshop",
		Long: `Workshop API lets clients book repairs for their vehicles and lets
the workshop staff assign, complete and invoice the work.
Without a subcommand it starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	})
	rootCmd.AddCommand(seedCmd())

	return rootCmd
}

// bootstrap loads the configuration, installs the global logger and
// connects the database
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	config.SetConfig(cfg)

	lg, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(lg)

	if err := config.ConnectDatabase(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, lg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, lg, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	if err := config.Migrate(config.GetDB()); err != nil {
		return err
	}
	lg.Info("Database migration completed successfully")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	db := config.GetDB()
	if err := config.Migrate(db); err != nil {
		return err
	}
	store := repository.NewGormStore(db)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s3Service, err := services.InitS3Service(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "init S3")
	}
	images := services.InitImageService(s3Service)
	docs := services.InitDocumentService(s3Service, lg.Named("documents"))

	services.InitReservationService(store, docs, lg.Named("reservations"), cfg.MaxWorkstations)
	services.InitVehicleService(store)
	services.InitPartService(store)
	services.InitProtocolService(store, images, docs, lg.Named("protocols"))
	services.InitClientService(store, services.NewAuth0Service(cfg), lg.Named("clients"))

	router := setupRouter(cfg, lg, middleware.EnsureValidToken(cfg), middleware.ResolveIdentity(store))
	return serve(ctx, cfg, lg, router)
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains it
func serve(ctx context.Context, cfg *config.Config, lg *zap.Logger, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(handler, "workshop-api"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
