package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zonetrack/config"
	"zonetrack/database"
	"zonetrack/interfaces"
	"zonetrack/repositories"
	"zonetrack/routes"
	"zonetrack/services"
	"zonetrack/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	setupLogger(cfg)

	repo, cleanup, err := buildRepository(cfg)
	if err != nil {
		logrus.Fatal("Failed to initialize storage: ", err)
	}
	defer cleanup()

	sink := services.NewLogNotificationSink(logrus.StandardLogger())
	manager := services.NewZoneManager(repo, sink, interfaces.SystemClock{})

	// WebSocket hub pushes every derived event to connected clients
	hub := websocket.NewHub()
	go hub.Run()
	manager.AddEventListener(hub.BroadcastZoneEvent)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go manager.Scheduler().Run(schedulerCtx)

	router := routes.SetupRoutes(manager, hub)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Infof("Zone engine server starting on port %s (storage: %s)", cfg.Port, cfg.StorageBackend)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	stopScheduler()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server shutdown complete")
}

// buildRepository selects the storage backend from configuration.
func buildRepository(cfg *config.Config) (interfaces.ZoneRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMongo:
		db, err := database.Connect(cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureIndexes(db); err != nil {
			logrus.Warnf("Failed to ensure indexes: %v", err)
		}
		return repositories.NewMongoZoneRepository(db), database.Disconnect, nil

	case config.StorageRedis:
		client := config.InitRedis(cfg)
		cleanup := func() {
			if err := client.Close(); err != nil {
				logrus.Errorf("Failed to close Redis client: %v", err)
			}
		}
		return repositories.NewRedisZoneRepository(client), cleanup, nil

	default:
		return repositories.NewMemoryZoneRepository(), func() {}, nil
	}
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
