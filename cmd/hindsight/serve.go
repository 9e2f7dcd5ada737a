package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/internal/adapters/file"
	"github.com/aretw0/hindsight/internal/adapters/memory"
	"github.com/aretw0/hindsight/internal/adapters/redis"
	httpAdapter "github.com/aretw0/hindsight/internal/api/http"
	"github.com/aretw0/hindsight/internal/logging"
	"github.com/aretw0/hindsight/internal/metrics"
	"github.com/aretw0/hindsight/internal/presentation/term"
	"github.com/aretw0/hindsight/pkg/ports"
)

// serveConfig is read from the environment; flags override it.
type serveConfig struct {
	Addr          string `env:"HINDSIGHT_ADDR" envDefault:":8080"`
	ModelDir      string `env:"HINDSIGHT_MODEL_DIR"`
	RedisAddr     string `env:"HINDSIGHT_REDIS_ADDR"`
	RedisPassword string `env:"HINDSIGHT_REDIS_PASSWORD"`
	RedisDB       int    `env:"HINDSIGHT_REDIS_DB" envDefault:"0"`
	LogLevel      string `env:"HINDSIGHT_LOG_LEVEL" envDefault:"info"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Starts the inference engine in server mode, exposing the model registry
and the inference operations as a JSON API over HTTP.

Models live in the configured store: Redis when HINDSIGHT_REDIS_ADDR is set,
a directory of YAML documents when HINDSIGHT_MODEL_DIR is set, an in-memory
store otherwise. With both set, the directory is preloaded into Redis.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadServeConfig(cmd)
		if err != nil {
			fmt.Printf("Error reading configuration: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		store, closeStore, err := openStore(cfg, logger)
		if err != nil {
			fmt.Printf("Error opening model store: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		handler, err := httpAdapter.NewHandler(store,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(metrics.New()),
		)
		if err != nil {
			fmt.Printf("Error building handler: %v\n", err)
			os.Exit(1)
		}

		term.PrintBanner(hindsight.Version)

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Hindsight Server on %s\n", srv.Addr)
			fmt.Printf("Model store: %s\n", storeDescription(cfg))
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Hindsight Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringP("model-dir", "d", "", "Directory of model YAML documents")
	serveCmd.Flags().String("redis", "", "Redis address for the model store")
}

// loadServeConfig parses the environment and applies flag overrides.
func loadServeConfig(cmd *cobra.Command) (serveConfig, error) {
	var cfg serveConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("model-dir") {
		cfg.ModelDir, _ = cmd.Flags().GetString("model-dir")
	}
	if cmd.Flags().Changed("redis") {
		cfg.RedisAddr, _ = cmd.Flags().GetString("redis")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

// openStore picks the model store backend. Redis wins over a model directory;
// with both configured, the directory's documents are copied into Redis first.
func openStore(cfg serveConfig, logger *slog.Logger) (ports.ModelStore, func(), error) {
	if cfg.RedisAddr != "" {
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if cfg.ModelDir != "" {
			if err := preload(file.New(cfg.ModelDir), store, logger); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, func() { store.Close() }, nil
	}
	if cfg.ModelDir != "" {
		return file.New(cfg.ModelDir), func() {}, nil
	}
	return memory.New(), func() {}, nil
}

// preload copies every document from src into dst.
func preload(src, dst ports.ModelStore, logger *slog.Logger) error {
	ctx := context.Background()
	names, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list model directory: %w", err)
	}
	for _, name := range names {
		f, err := src.Load(ctx, name)
		if err != nil {
			return err
		}
		if err := dst.Save(ctx, name, f); err != nil {
			return err
		}
		logger.Info("Model preloaded", "name", name)
	}
	return nil
}

func storeDescription(cfg serveConfig) string {
	switch {
	case cfg.RedisAddr != "":
		return fmt.Sprintf("redis (%s)", cfg.RedisAddr)
	case cfg.ModelDir != "":
		return fmt.Sprintf("directory (%s)", cfg.ModelDir)
	default:
		return "in-memory"
	}
}
