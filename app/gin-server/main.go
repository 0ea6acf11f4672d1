package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/chaimaguesmi/Backend-entretien-audio/config"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/api/handlers"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/api/middleware"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/api/routes"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/cache"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/logger"
	mongorepo "github.com/chaimaguesmi/Backend-entretien-audio/internal/repositories/mongo"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/services"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo: one client per process, closed on shutdown
	client, err := config.NewMongoClient(ctx)
	if err != nil {
		log.WithError(err).Fatal("mongodb init failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()
	db := client.Database(config.MongoDatabaseName())
	log.Info("mongodb connected")

	if err := config.EnsureMongoIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("mongodb index bootstrap failed")
	}

	// Redis cache is optional; without it reads go straight to Mongo
	var convCache cache.Cache = cache.Noop{}
	if rdb, err := config.NewRedisClient(ctx); err != nil {
		log.WithError(err).Warn("redis init failed, running without cache")
	} else if rdb != nil {
		defer rdb.Close()
		convCache = cache.NewRedisCache(rdb)
		log.Info("redis connected")
	}

	remote, closeRemote, err := newRemoteStore(ctx)
	if err != nil {
		log.WithError(err).Fatal("remote storage init failed")
	}
	if closeRemote != nil {
		defer closeRemote()
	}
	blobs, err := storage.NewStore(remote, os.Getenv("LOCAL_STORAGE_PATH"), log)
	if err != nil {
		log.WithError(err).Fatal("local storage init failed")
	}

	audioRepo := mongorepo.NewAudioResponseRepo(db)
	convRepo := mongorepo.NewConversationRepo(db)

	audioSvc := services.NewAudioResponseService(audioRepo, blobs)
	convSvc := services.NewConversationService(convRepo, convCache)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	routes.RegisterRoutes(r, routes.Deps{
		AudioResponse: handlers.NewAudioResponseHandler(audioSvc),
		Conversation:  handlers.NewConversationHandler(convSvc),
		AudioMessage:  handlers.NewAudioMessageHandler(convSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.WithField("port", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown failed")
	}
}

// newRemoteStore picks the object-store backend from STORAGE_BACKEND:
// "s3", "gcs", or "local" (no remote; the default).
func newRemoteStore(ctx context.Context) (storage.RemoteStore, func() error, error) {
	switch backend := os.Getenv("STORAGE_BACKEND"); backend {
	case "s3":
		bucket := os.Getenv("S3_BUCKET_NAME")
		if bucket == "" {
			bucket = "careere-audio-responses"
		}
		s3, err := storage.NewS3Store(
			os.Getenv("S3_ENDPOINT"),
			os.Getenv("S3_ACCESS_KEY"),
			os.Getenv("S3_SECRET_KEY"),
			bucket,
			os.Getenv("S3_USE_SSL") == "true",
		)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, os.Getenv("GCS_BUCKET"))
		if err != nil {
			return nil, nil, err
		}
		return gcs, gcs.Close, nil
	default:
		return nil, nil, nil
	}
}
