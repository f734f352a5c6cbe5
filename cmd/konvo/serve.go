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
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/konvo/konvo"
	"github.com/konvo/konvo/internal/adapters/accounts"
	"github.com/konvo/konvo/internal/adapters/httpapi"
	redisAdapter "github.com/konvo/konvo/internal/adapters/redis"
	"github.com/konvo/konvo/internal/metrics"
	"github.com/konvo/konvo/pkg/flow"
	"github.com/konvo/konvo/pkg/persistence/middleware"
	"github.com/konvo/konvo/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  `Starts the engine behind an HTTP webhook, backed by the configured Redis session store.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		def, err := flow.LoadFile(cfg.Flows)
		if err != nil {
			fmt.Printf("Error loading flow definition: %v\n", err)
			os.Exit(1)
		}

		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redisAdapter.NewFromClient(client,
			redisAdapter.WithTTL(cfg.Session.TTL.Std()),
			redisAdapter.WithPrefix(cfg.Session.KeyPrefix),
		)
		locker := redisAdapter.NewLocker(client, cfg.Session.KeyPrefix)

		var mws []middleware.Middleware
		if len(cfg.Session.PIIMask) > 0 {
			mws = append(mws, middleware.NewPIIMiddleware(cfg.Session.PIIMask))
		}
		if key, _ := cfg.Session.EncryptionKeyBytes(); key != nil {
			mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
		}
		sessionStore := middleware.Chain(store, mws...)

		var api ports.AccountsAPI
		if cfg.Accounts.BaseURL != "" {
			api = accounts.New(cfg.Accounts.BaseURL, accounts.WithLogger(logger))
		}

		registry := demoRegistry(api)
		m := metrics.New(prometheus.DefaultRegisterer)

		engine, err := konvo.New(sessionStore, registry, def,
			konvo.WithLocker(locker),
			konvo.WithLogger(logger),
			konvo.WithHooks(m.Hooks()),
		)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		server := httpapi.NewServer(engine, httpapi.WithLogger(logger))
		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: server.Handler(cfg.MetricsPath),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting webhook server", "addr", cfg.Listen)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
			}
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
