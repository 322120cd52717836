package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicebay/backend/internal/cache"
	"invoicebay/backend/internal/config"
	"invoicebay/backend/internal/httpapi"
	"invoicebay/backend/internal/service"
	"invoicebay/backend/internal/store"
	"invoicebay/backend/internal/store/csvfile"
	pgstore "invoicebay/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with a file fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			log.Fatalf("cannot create data directory %s: %v", cfg.DataDir, err)
		}
		files, err := csvfile.New(cfg.CatalogPath(), cfg.InvoicesPath(), cfg.SettingsPath())
		if err != nil {
			log.Fatalf("cannot open data files in %s: %v", cfg.DataDir, err)
		}
		repo = files
		log.Printf("repository: csv files in %s", cfg.DataDir)
	}

	pdfCache := cache.DocumentCache(cache.NoopDocumentCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisDocumentCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			pdfCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("pdf cache: redis")
		}
	} else {
		log.Println("pdf cache: noop")
	}

	svc := service.New(repo, pdfCache, time.Duration(cfg.PDFCacheTTLSeconds)*time.Second)
	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.OperatorUsername, cfg.OperatorPassword)
	if err != nil {
		log.Fatalf("auth setup failed: %v", err)
	}
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("invoicing backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.OperatorPassword) < 8 {
		return fmt.Errorf("OPERATOR_PASSWORD must be set and at least 8 characters")
	}
	return nil
}
