package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/filebox/service/internal/config"
	"github.com/filebox/service/internal/file"
	appMiddleware "github.com/filebox/service/internal/middleware"
	"github.com/filebox/service/internal/post"
	"github.com/filebox/service/internal/storage"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StorageRegion,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// The service cannot operate without its bucket.
	if err := store.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("bucket provisioning failed: %v", err)
	}

	// Wire dependencies: storage → service → handler
	fileSvc := file.NewService(store, cfg.StorageBucket, cfg.PresignExpiry)
	fileHandler := file.NewHandler(fileSvc, cfg.MaxUploadBytes)

	postRegister := post.NewRegister()
	postHandler := post.NewHandler(postRegister)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/upload", fileHandler.Upload)
	r.Get("/files", fileHandler.List)
	r.Get("/file/{filename}", fileHandler.Download)
	r.Delete("/file/{filename}", fileHandler.Delete)
	r.Get("/upload-url/{filename}", fileHandler.UploadURL)
	r.Get("/download-url/{fileKey}", fileHandler.DownloadURL)

	r.Post("/posts", postHandler.Create)
	r.Get("/posts", postHandler.List)

	// No read/write timeouts: uploads and downloads stream at the client's pace.
	srv := &http.Server{
		Addr:        cfg.ListenAddr(),
		Handler:     r,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on %s (bucket=%s)", srv.Addr, cfg.StorageBucket)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
