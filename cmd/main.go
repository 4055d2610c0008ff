package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/auth"
	"github.com/ukydev/office-duty-card/internal/cache"
	"github.com/ukydev/office-duty-card/internal/cards"
	"github.com/ukydev/office-duty-card/internal/config"
	"github.com/ukydev/office-duty-card/internal/db"
	"github.com/ukydev/office-duty-card/internal/events"
	"github.com/ukydev/office-duty-card/internal/export"
	"github.com/ukydev/office-duty-card/internal/handlers"
	"github.com/ukydev/office-duty-card/internal/logging"
	"github.com/ukydev/office-duty-card/internal/middleware"
	"github.com/ukydev/office-duty-card/internal/photostore"
	"github.com/ukydev/office-duty-card/internal/render"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	log.WithField("db", cfg.MongoDB).Info("mongo connection established")

	database := client.Database(cfg.MongoDB)
	cardStore := &db.MongoCardCollection{Collection: database.Collection("cards")}
	userStore := &db.MongoUserCollection{Collection: database.Collection("users")}
	if err := cardStore.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Failed to create card indexes")
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Failed to create user indexes")
	}

	kv, redisClient := newKVStore(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	uploader, photos, err := newUploader(cfg, database)
	if err != nil {
		log.Fatalf("Failed to set up photo storage: %v", err)
	}

	publisher, err := events.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Events disabled")
		publisher = events.Noop{}
	}
	defer publisher.Close()

	authService := auth.NewService(cfg, userStore, cache.NewRevocations(kv))
	authService.Subscribe(sessionObserver(publisher))
	created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.WithError(err).Error("Failed to bootstrap admin user")
	} else if created {
		log.WithField("email", cfg.AdminEmail).Info("admin user created")
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up card renderer: %v", err)
	}

	cardService := cards.NewService(cardStore, uploader, cache.NewListCache(kv, cfg.ListCacheTTL), publisher)
	drafts := cache.NewDraftStore(kv, cfg.DraftTTL)

	checks := map[string]handlers.Check{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	h := handlers.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Cards:  handlers.NewCardHandler(cardService, exporter, drafts),
		Drafts: handlers.NewDraftHandler(drafts),
		Health: handlers.Health(checks),
	}
	if photos != nil {
		h.Photos = handlers.NewPhotoHandler(photos)
	}
	r := handlers.NewRouter(cfg, h, middleware.NewAuthMiddleware(authService))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("office duty card service running at port %s", server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("service shutdown failed: %+v", err)
		return
	}
	log.Info("office duty card service gracefully stopped")
}

// newKVStore returns redis when REDIS_ADDR is set and reachable, and an
// in-process store otherwise.
func newKVStore(ctx context.Context, cfg config.Config) (cache.KVStore, *redis.Client) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryKVStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := cache.NewRedisKVStore(client)
	if err := store.Ping(ctx); err != nil {
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable, using in-memory cache")
		client.Close()
		return cache.NewMemoryKVStore(), nil
	}
	log.WithField("addr", cfg.RedisAddr).Info("redis connection established")
	return store, client
}

// newUploader picks the photo store. The second value is non-nil when photos
// are served by this process.
func newUploader(cfg config.Config, database *mongo.Database) (photostore.Uploader, handlers.PhotoSource, error) {
	switch strings.ToLower(cfg.UploadBackend) {
	case "gridfs":
		u, err := photostore.NewGridFSUploader(database, cfg.PublicBaseURL, cfg.MaxPhotoBytes)
		if err != nil {
			return nil, nil, err
		}
		return u, u, nil
	case "", "cloudinary":
		if cfg.CloudinaryCloud == "" {
			log.Warn("CLOUDINARY_CLOUD not set, photo uploads will fail")
		}
		return photostore.NewCloudinaryUploader(photostore.CloudinaryConfig{
			BaseURL:  cfg.CloudinaryBaseURL,
			Cloud:    cfg.CloudinaryCloud,
			Preset:   cfg.CloudinaryPreset,
			Folder:   cfg.CloudinaryFolder,
			Timeout:  cfg.UploadTimeout,
			MaxBytes: cfg.MaxPhotoBytes,
		}), nil, nil
	default:
		return nil, nil, errors.New("unknown upload backend " + cfg.UploadBackend)
	}
}

func newExporter(cfg config.Config) (*export.Exporter, error) {
	raster, err := render.NewRasterizer()
	if err != nil {
		return nil, err
	}
	assets, err := render.LoadAssets(cfg.LogoPath, cfg.SignaturePath)
	if err != nil {
		return nil, err
	}
	photos := export.NewPhotoLoader(cfg.AssetTimeout, cfg.MaxPhotoBytes)
	return export.New(raster, render.BrandingFromConfig(cfg), assets, photos, export.Options{
		AssetTimeout: cfg.AssetTimeout,
		Scale:        cfg.ExportScale,
	}), nil
}

// sessionObserver logs sign-ins and sign-outs and forwards them as events.
func sessionObserver(publisher events.Publisher) auth.Observer {
	return func(ctx context.Context, c auth.Change) {
		log.WithFields(log.Fields{
			"email":   c.Claims.Email,
			"role":    c.Claims.Role,
			"user_id": c.Claims.UserID,
		}).Info("session " + strings.ReplaceAll(string(c.Kind), "_", " "))

		subject := events.SignedIn
		if c.Kind == auth.SignedOut {
			subject = events.SignedOut
		}
		events.Emit(ctx, publisher, subject, "", c.Claims.Email)
	}
}
