// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"brixi/internal/ai"
	"brixi/internal/cache"
	"brixi/internal/config"
	"brixi/internal/database"
	"brixi/internal/handlers"
	"brixi/internal/middleware"
	"brixi/internal/publish"
	"brixi/internal/router"
	"brixi/internal/sanitize"
	"brixi/internal/sitebuilder"
	"brixi/internal/storage"
	"brixi/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	// Valkey is optional. Without it name reservations only hold within
	// this process.
	var locker cache.NameLocker = cache.NewLocalLocker()
	if cfg.ValkeyHost != "" {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		locker = cache.NewRedisLocker(client, lockTTL(cfg))
	} else {
		slog.Warn("valkey not configured, using in-process name locks")
	}

	registry := ai.NewRegistry(cfg.AIProvider, cfg.AITimeout, map[string]ai.ProviderConfig{
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"claude": {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
	})
	if !registry.HasProvider(cfg.AIProvider) {
		slog.Warn("active ai provider has no API key, generation will fail", "provider", cfg.AIProvider)
	}
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
		"timeout", cfg.AITimeout.String(),
	)

	sanitizer, err := sanitize.New(cfg.SanitizePolicy)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}

	service := sitebuilder.NewService(sitebuilder.Deps{
		AI:         registry,
		Sanitizer:  sanitizer,
		Sites:      store.NewSiteStore(db),
		Publisher:  publisher,
		Locker:     locker,
		URLPattern: cfg.SiteURLPattern,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Stop()

	r := router.New(router.Options{
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	}, handlers.NewSiteBuilder(service))

	// WriteTimeout must outlast the AI call plus the CDN upload.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.AITimeout + cfg.CDNTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		// Give in-flight generations time to finish.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

// lockTTL keeps a name reservation alive for the whole CDN upload plus the
// insert that follows it.
func lockTTL(cfg *config.Config) time.Duration {
	return max(cache.DefaultLockTTL, cfg.CDNTimeout+30*time.Second)
}

// newPublisher builds the CDN driver selected by CDN_DRIVER.
func newPublisher(cfg *config.Config) (publish.Publisher, error) {
	switch cfg.CDNDriver {
	case "s3":
		client, err := storage.New(storage.Options{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			PublicBucket: cfg.S3BucketPublic,
			PublicURL:    cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("publishing to s3", "endpoint", cfg.S3Endpoint, "bucket", client.PublicBucket())
		return publish.NewS3(client), nil
	default:
		slog.Info("publishing to upload gateway", "url", cfg.CDNUploadURL, "format", cfg.CDNFormat)
		p, err := publish.NewHTTP(publish.HTTPConfig{
			UploadURL: cfg.CDNUploadURL,
			Secret:    cfg.CDNSecret,
			Format:    cfg.CDNFormat,
			Timeout:   cfg.CDNTimeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
