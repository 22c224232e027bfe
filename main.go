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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	_ "github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource/all"
	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
	"github.com/TAF-Playground/TAF-DataDev/pkg/database"
	"github.com/TAF-Playground/TAF-DataDev/pkg/handlers"
	"github.com/TAF-Playground/TAF-DataDev/pkg/middleware"
	"github.com/TAF-Playground/TAF-DataDev/pkg/repositories"
	"github.com/TAF-Playground/TAF-DataDev/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 15 * time.Second

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "data-engine",
		Short:         "Database connection and SQL editor backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config.yaml")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending metadata store migrations and exit",
			RunE:  runMigrate,
		},
		newTestConnectionCmd(),
		&cobra.Command{
			Use:   "config-example",
			Short: "Print a config.yaml skeleton with defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := config.ExampleYAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath, Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logConfig zap.Config
	switch cfg.Env {
	case "local", "dev":
		logConfig = zap.NewDevelopmentConfig()
	default:
		logConfig = zap.NewProductionConfig()
	}
	logger, err := logConfig.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("store", cfg.Store.Type),
		zap.Strings("enabled_dialects", cfg.Datasource.EnabledDialects),
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(ctx, &cfg.Store, logger); err != nil {
		return err
	}
	store, err := database.Open(ctx, &cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close metadata store", zap.Error(err))
		}
	}()

	if missing := datasource.UnregisteredDialects(cfg.Datasource.EnabledDialects); len(missing) > 0 {
		logger.Warn("Enabled dialects are not compiled in and will be rejected", zap.Strings("dialects", missing))
	}
	factory := datasource.NewDialectFactory(cfg.Datasource.EnabledDialects)

	connectionService := services.NewConnectionService(repositories.NewConnectionRepository(store.Gorm), logger)
	tester := services.NewConnectionTester(factory, cfg.Datasource.TestTimeout, logger)
	queryService := services.NewQueryService(factory, cfg.Datasource.ExecuteTimeout, logger)
	schemaService := services.NewSchemaService(factory, cfg.Datasource.ExecuteTimeout, logger)
	editorService := services.NewEditorService(
		repositories.NewDirectoryRepository(store.Gorm),
		repositories.NewProjectRepository(store.Gorm),
		logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, store, logger).RegisterRoutes(mux)
	handlers.NewDialectsHandler(factory, logger).RegisterRoutes(mux)
	handlers.NewConnectionsHandler(connectionService, tester, queryService, schemaService, logger).RegisterRoutes(mux)
	handlers.NewEditorHandler(editorService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.Recover(logger),
			middleware.RequestLogger(logger),
			middleware.CORS(cfg.CORS.AllowedOrigins),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting data engine", zap.String("addr", server.Addr), zap.String("version", cfg.Version))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return database.RunMigrations(cmd.Context(), &cfg.Store, logger)
}

func newTestConnectionCmd() *cobra.Command {
	var (
		params   datasource.ConnectionParams
		port     int
		password string
	)

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Check that connection parameters reach a live database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("port") {
				params.Port = &port
			}
			if cmd.Flags().Changed("password") {
				params.Password = &password
			}

			factory := datasource.NewDialectFactory(cfg.Datasource.EnabledDialects)
			tester := services.NewConnectionTester(factory, cfg.Datasource.TestTimeout, logger)

			ok, msg := tester.Test(cmd.Context(), params)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !ok {
				return errors.New("connection test failed")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.DBType, "type", "", "database type (sqlite, mysql, postgresql, sqlserver)")
	f.StringVar(&params.Host, "host", "", "server host")
	f.IntVar(&port, "port", 0, "server port (dialect default when omitted)")
	f.StringVar(&params.Database, "database", "", "database name, or file path for sqlite")
	f.StringVar(&params.Username, "username", "", "user name")
	f.StringVar(&password, "password", "", "password")
	f.StringVar(&params.ConnectionString, "connection-string", "", "raw connection string, overrides the discrete fields")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
