package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"toy-catalog/internal/config"
	"toy-catalog/internal/database"
	"toy-catalog/internal/logger"
	"toy-catalog/internal/repository/mongodb"
	"toy-catalog/internal/repository/postgres"
	"toy-catalog/internal/server"
	"toy-catalog/internal/storage"
	"toy-catalog/migrations"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// setupDatabase opens the configured backend and returns its repositories.
func setupDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger, deps *server.Dependencies) error {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		deps.Closers = append(deps.Closers, db.Close)

		if err := database.RunMigrations(db, migrations.FS, log); err != nil {
			return err
		}

		deps.Toys = postgres.NewToyRepository(db)
		deps.Users = postgres.NewUserRepository(db)
		deps.Health = database.PostgresHealth{DB: db}

	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		deps.Closers = append(deps.Closers, func() error {
			return client.Disconnect(context.Background())
		})

		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		deps.Toys = mongodb.NewToyRepository(db)
		deps.Users = mongodb.NewUserRepository(db)
		deps.Health = database.MongoHealth{Client: client}

	default:
		return fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}

	log.Info("Database ready", zap.String("driver", cfg.Database.Driver))
	return nil
}

// setupImageStore selects where uploaded images are written.
func setupImageStore(ctx context.Context, cfg *config.Config, deps *server.Dependencies) error {
	switch cfg.Uploads.Store {
	case config.ImageStoreS3:
		client, err := storage.NewMinioClient(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.UseSSL)
		if err != nil {
			return err
		}
		store := storage.NewS3ImageStore(client, cfg.S3.Bucket)
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		deps.Images = store

	case config.ImageStoreLocal:
		store := storage.NewLocalImageStore(afero.NewOsFs(), cfg.Uploads.Dir)
		deps.Images = store
		deps.Static = store.FileSystem()

	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", cfg.Uploads.Store)
	}
	return nil
}

func setupRedis(ctx context.Context, cfg *config.Config, log *zap.Logger, deps *server.Dependencies) {
	if !cfg.Redis.Enabled {
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		// The limiter fails open, so keep serving.
		log.Warn("Redis unreachable, rate limiting will fail open", zap.Error(err))
	}

	deps.Redis = client
	deps.Closers = append(deps.Closers, client.Close)
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting toy catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("image_store", cfg.Uploads.Store),
		zap.String("image_prefix", cfg.ImagePublicPath()),
	)

	ctx := context.Background()
	var deps server.Dependencies

	if err := setupDatabase(ctx, cfg, log, &deps); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := setupImageStore(ctx, cfg, &deps); err != nil {
		log.Fatal("Failed to initialize image store", zap.Error(err))
	}
	setupRedis(ctx, cfg, log, &deps)

	// Create server
	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
