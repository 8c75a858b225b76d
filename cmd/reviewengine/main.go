package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eringen/reviewengine"
	"github.com/eringen/reviewengine/docstore"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			log.Fatal(err)
		}
	case "seed":
		if err := runSeed(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("reviewengine %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// storeConfig reads the document store settings from the environment.
func storeConfig() docstore.Config {
	return docstore.Config{
		Driver:   reviewengine.EnvOr("STORE_DRIVER", "sqlite"),
		DSN:      os.Getenv("STORE_DSN"),
		Database: reviewengine.EnvOr("STORE_DATABASE", "researcher-db"),
		Region:   reviewengine.EnvOr("AWS_REGION", "us-east-1"),
		Endpoint: os.Getenv("DYNAMODB_ENDPOINT"),
	}
}

func envDuration(key, fallback string) time.Duration {
	raw := reviewengine.EnvOr(key, fallback)
	d, err := reviewengine.ParseDuration(raw)
	if err != nil {
		log.Fatalf("reviewengine: %s: invalid duration %q", key, raw)
	}
	return d
}

func siteConfig() reviewengine.SiteConfig {
	return reviewengine.SiteConfig{
		Name:           os.Getenv("SITE_NAME"),
		URL:            strings.TrimSuffix(os.Getenv("SITE_URL"), "/"),
		Description:    os.Getenv("SITE_DESCRIPTION"),
		Addr:           reviewengine.EnvOr("ADDR", ":3000"),
		Store:          storeConfig(),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		TokenSecret:    reviewengine.MustEnv("TOKEN_SECRET"),
		TokenTTL:       envDuration("TOKEN_TTL", "7d"),
		CookieSecure:   strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
		UploadDir:      reviewengine.EnvOr("UPLOAD_DIR", "data/uploads"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", "10s"),
		FeedCacheTTL:   envDuration("FEED_CACHE_TTL", "5m"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}
}

func runServe() error {
	app := reviewengine.New(siteConfig())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("reviewengine %s listening on %s (store: %s)", version, app.Config.Addr, app.Config.Store.Driver)
		errc <- app.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}

func printUsage() {
	fmt.Println(`reviewengine - A research review blog API built with Go and Echo

Usage:
  reviewengine <command> [arguments]

Commands:
  serve         Start the HTTP server
  seed          Fill the store with fake users, papers, posts and comments
  version       Print the reviewengine version
  help          Show this help message

Environment:
  TOKEN_SECRET      required; signs API tokens and session cookies
  STORE_DRIVER      sqlite (default), postgres, mongodb or dynamodb
  STORE_DSN         sqlite path, postgres URL or mongodb URI
  REDIS_ADDR        enables paper view counting

Examples:
  TOKEN_SECRET=dev reviewengine serve
  reviewengine seed -users 20 -papers 50 -posts 100`)
}
