package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toodl-app/mind/internal/logging"
	"github.com/toodl-app/mind/internal/metrics"
	httpAdapter "github.com/toodl-app/mind/pkg/adapters/http"
	redisAdapter "github.com/toodl-app/mind/pkg/adapters/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long:  `Starts the interpreter in stateless server mode, exposing a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen, _ = cmd.Flags().GetString("listen")
		}

		logger := logging.New(logLevel(cmd))

		engine, err := buildEngine(cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		}
		if cfg.Redis.Address != "" {
			ttl, err := cfg.Redis.CacheTTL()
			if err != nil {
				fmt.Printf("Error in redis config: %v\n", err)
				os.Exit(1)
			}
			cache := redisAdapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithTTL(ttl))
			defer cache.Close()
			opts = append(opts, httpAdapter.WithCache(cache))
		}

		handler, err := httpAdapter.NewHandler(engine, opts...)
		if err != nil {
			fmt.Printf("Error building handler: %v\n", err)
			os.Exit(1)
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			printBanner()
		}

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Mind Server on %s\n", srv.Addr)
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
			fmt.Println("Mind Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("verbose", false, "Enable debug logging")
}
