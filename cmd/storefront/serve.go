package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sendrec/storefront/internal/database"
	"github.com/sendrec/storefront/internal/section"
	"github.com/sendrec/storefront/internal/server"
	"github.com/sendrec/storefront/internal/storage"
	"github.com/sendrec/storefront/web"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		Long: `Serve the storefront page, the section API and the wasm video controller.

Configuration comes from the environment (a .env file is loaded when present):
  PORT, BASE_URL, DATABASE_URL, JWT_SECRET, ADMIN_EMAIL, ADMIN_PASSWORD_HASH,
  S3_ENDPOINT, S3_PUBLIC_ENDPOINT, S3_BUCKET, S3_ACCESS_KEY, S3_SECRET_KEY,
  S3_REGION, MAX_UPLOAD_BYTES, ALLOWED_FRAME_ANCESTORS, API_DOCS_ENABLED`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(skipMigrate)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply database migrations on start")

	return cmd
}

func runServe(skipMigrate bool) error {
	port := getEnv("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	adminPasswordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminPasswordHash == "" {
		log.Println("ADMIN_PASSWORD_HASH not set, section management is disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if !skipMigrate {
		if err := db.Migrate(databaseURL); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		log.Println("database migrations applied")
	}

	baseURL := getEnv("BASE_URL", "http://localhost:8080")
	publicEndpoint := os.Getenv("S3_PUBLIC_ENDPOINT")

	store, err := storage.New(ctx, storage.Config{
		Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:3900"),
		PublicEndpoint: publicEndpoint,
		Bucket:         getEnv("S3_BUCKET", "storefront"),
		AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		SecretKey:      os.Getenv("S3_SECRET_KEY"),
		Region:         getEnv("S3_REGION", "eu-central-1"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 500*1024*1024),
	})
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	if err := store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("storage bucket check failed: %w", err)
	}
	if err := store.ConfigureCORS(ctx, baseURL); err != nil {
		log.Printf("storage CORS not applied, browser uploads may fail: %v", err)
	}
	log.Println("storage bucket ready")

	var assetsFS fs.FS
	if sub, err := fs.Sub(web.DistFS, "dist"); err == nil {
		assetsFS = sub
		if _, err := fs.Stat(sub, "storefront.wasm"); err != nil {
			log.Println("storefront.wasm missing from the bundle, run `make wasm`")
		}
	}

	srv := server.New(server.Config{
		DB:                    db.Pool,
		Pinger:                db,
		Storage:               store,
		AssetsFS:              assetsFS,
		JWTSecret:             jwtSecret,
		AdminEmail:            getEnv("ADMIN_EMAIL", "admin@localhost"),
		AdminPasswordHash:     adminPasswordHash,
		BaseURL:               baseURL,
		S3PublicEndpoint:      publicEndpoint,
		AllowedFrameAncestors: os.Getenv("ALLOWED_FRAME_ANCESTORS"),
		EnableDocs:            getEnv("API_DOCS_ENABLED", "false") == "true",
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	section.StartCleanupLoop(cleanupCtx, db.Pool, store, 10*time.Minute, 24*time.Hour)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("storefront listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-shutdownCh:
	}
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Println("shutdown complete")
	return nil
}
