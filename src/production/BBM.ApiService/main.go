package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/controllers"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/middleware"
	container "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Container"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize container: %v\n", err)
		os.Exit(1)
	}

	logger := ctr.GetLogger()
	config := ctr.GetConfig()
	logger.Logger.Info().
		Str("environment", config.Server.Environment).
		Str("version", config.Server.Version).
		Str("detector_mode", config.Detector.Mode).
		Str("sensor_mode", config.Sensors.Mode).
		Msg("Starting baby monitor server")

	if config.Auth.DeviceEventSecret == "" && config.IsProduction() {
		logger.Warn("DEVICE_EVENT_SECRET is empty, the detection-event webhook accepts unauthenticated requests")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional MQTT ingestion of detection events
	var broker controllers.BrokerStatus
	if ingestor := ctr.GetIngestor(); ingestor != nil {
		if err := ingestor.Start(ctx); err != nil {
			logger.FatalWithError(err, "Failed to start MQTT ingestor")
		}
		broker = ingestor
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger, ctr.GetMetrics()))
	router.Use(middleware.Recovery(logger))

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	monitorSvc := ctr.GetMonitorService()
	detectionSvc := ctr.GetDetectionService()

	controllers.NewSensorController(monitorSvc, logger).RegisterRoutes(router)
	controllers.NewAlertController(ctr.GetAlertRepository(), ctr.GetMetrics(), logger).RegisterRoutes(router)
	controllers.NewCryDetectionController(detectionSvc, config.Auth.DeviceEventSecret, logger).RegisterRoutes(router)
	controllers.NewDeviceController(monitorSvc, logger).RegisterRoutes(router)
	controllers.NewHealthController(ctr.GetStatusReporter(), ctr.GetMetrics(), broker, logger).RegisterRoutes(router)
	controllers.NewSleepController(ctr.GetSleepService(), logger).RegisterRoutes(router)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + config.Server.Port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting on port " + config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorWithError(err, "Server forced to shutdown")
		}
		return ctr.Shutdown(shutdownCtx)
	})

	logger.Info("Baby monitor server running... press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		logger.FatalWithError(err, "Server stopped with error")
	}
}
