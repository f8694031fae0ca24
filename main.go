package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zlnvch/stylussphere/api"
	"github.com/zlnvch/stylussphere/cache"
	cachememory "github.com/zlnvch/stylussphere/cache/memory"
	"github.com/zlnvch/stylussphere/cache/redis"
	"github.com/zlnvch/stylussphere/config"
	"github.com/zlnvch/stylussphere/store"
	"github.com/zlnvch/stylussphere/store/dynamo"
	storememory "github.com/zlnvch/stylussphere/store/memory"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var stylusStore store.StylusStore
	switch cfg.StoreBackend {
	case "dynamo":
		stylusStore, err = dynamo.NewDynamoStylusStore(ctx, cfg.DevMode, cfg.DynamoDBEndpoint, cfg.DynamoDBTable)
		if err != nil {
			log.Fatalf("Failed to create dynamodb store: %v", err)
		}
	default:
		stylusStore = storememory.NewMemoryStylusStore()
	}

	var stylusCache cache.StylusCache
	switch cfg.CacheBackend {
	case "redis":
		stylusCache, err = redis.NewRedisStylusCache(ctx, cfg.DevMode, cfg.RedisEndpoint)
		if err != nil {
			log.Fatalf("Failed to create redis cache: %v", err)
		}
	default:
		stylusCache = cachememory.NewMemoryStylusCache()
	}

	jwtSecret, err := loadJWTSecret(cfg)
	if err != nil {
		log.Fatalf("Failed to load JWT secret: %v", err)
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	stylusAPI, err := api.NewStylusSphereAPI(stylusStore, stylusCache, jwtSecret, shutdownCtx)
	if err != nil {
		log.Fatalf("Failed to create stylussphere api: %v", err)
	}

	mux := http.NewServeMux()
	stylusAPI.RegisterRoutes(mux, cfg.AllowedOrigin)

	log.Printf("Starting server on host port: %s\n", cfg.HostPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HostPort, mux))
}

func loadJWTSecret(cfg config.Config) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return base64.StdEncoding.DecodeString(cfg.JWTSecret)
	}
	if !cfg.DevMode {
		return nil, errors.New("JWT_SECRET is required when DEV_MODE is not set")
	}

	// Dev fallback: sessions do not survive a restart, which is fine
	// locally.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	log.Printf("JWT_SECRET not set, using a random per-process secret")
	return secret, nil
}
