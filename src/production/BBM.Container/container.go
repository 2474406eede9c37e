package container

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/health"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/detection"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/monitor"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/sleep"
	config "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Config"
	client "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.DeviceClient"
	bbmingestor "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Ingestor"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
	implementation "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

// Service names registered in the container
const (
	MonitorServiceName   = "monitor"
	DetectionServiceName = "detection"
	SleepServiceName     = "sleep"
	StatusReporterName   = "status-reporter"
	IngestorName         = "mqtt-ingestor"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	// In-memory stores
	sensorRepo    interfaces.SensorRepository
	alertRepo     interfaces.AlertRepository
	thresholdRepo interfaces.ThresholdRepository
	detectionRepo interfaces.DetectionRepository
	activityRepo  interfaces.ActivityRepository
	sleepRepo     interfaces.SleepRepository

	// Device drivers
	detector interfaces.DetectorDriver
	sensors  interfaces.SensorDriver

	services map[string]interface{}

	// Mutex for thread-safe access
	mu sync.RWMutex

	// Cleanup functions, run in reverse order on shutdown
	cleanupFuncs []func() error
}

// NewContainer loads configuration from the environment and builds the container
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return New(cfg, logger.NewLogger(&cfg.Logging)), nil
}

// New wires stores, device drivers and services from an already loaded config
func New(cfg *config.Config, log *logger.Logger) *Container {
	c := &Container{
		config:   cfg,
		logger:   log,
		metrics:  metrics.New(),
		services: make(map[string]interface{}),
	}

	c.sensorRepo = implementation.NewMemorySensorRepository(cfg.Store.HistoryCapacity)
	c.alertRepo = implementation.NewMemoryAlertRepository()
	c.thresholdRepo = implementation.NewMemoryThresholdRepository()
	c.detectionRepo = implementation.NewMemoryDetectionRepository(cfg.Store.AudioFileCapacity)
	c.activityRepo = implementation.NewMemoryActivityRepository()
	c.sleepRepo = implementation.NewMemorySleepRepository()

	c.detector = c.newDetectorDriver()
	c.sensors = c.newSensorDriver()

	c.RegisterService(MonitorServiceName, monitor.NewService(c.sensorRepo, c.thresholdRepo, c.activityRepo, c.sensors, c.metrics, log))
	c.RegisterService(DetectionServiceName, detection.NewService(c.detectionRepo, c.detector, c.metrics, log))
	c.RegisterService(SleepServiceName, c.newSleepService())
	c.RegisterService(StatusReporterName, health.NewStatusReporter(
		c.sensorRepo, c.alertRepo, c.activityRepo, c.detectionRepo,
		cfg.Server.Environment, cfg.Server.Version,
	))

	c.registerCleanup()
	return c
}

func (c *Container) newSleepService() *sleep.Service {
	svc := sleep.NewService(c.sleepRepo, c.logger)
	if c.config.Store.SeedSleepSamples {
		if err := svc.SeedSamples(context.Background()); err != nil {
			c.logger.ErrorWithError(err, "Failed to seed sample sleep data")
		}
	}
	return svc
}

func (c *Container) newDetectorDriver() interfaces.DetectorDriver {
	if c.config.Detector.Mode == config.ModeSimulated {
		c.logger.Warn("Cry detector running in simulated mode")
		return client.NewSimulatedDetector()
	}
	c.logger.Logger.Info().Str("url", c.config.Detector.BaseURL).Msg("Using remote cry detector")
	return client.NewDetectorClient(c.config.Detector, c.logger)
}

func (c *Container) newSensorDriver() interfaces.SensorDriver {
	if c.config.Sensors.Mode == config.ModeRemote {
		c.logger.Logger.Info().Str("url", c.config.Sensors.BaseURL).Msg("Using remote sensor board")
		return client.NewSensorClient(c.config.Sensors)
	}
	c.logger.Info("Sensor readings are simulated")
	return client.NewSimulatedSensors()
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

func (c *Container) GetAlertRepository() interfaces.AlertRepository {
	return c.alertRepo
}

func (c *Container) GetMonitorService() *monitor.Service {
	svc, _ := c.GetService(MonitorServiceName)
	return svc.(*monitor.Service)
}

func (c *Container) GetDetectionService() *detection.Service {
	svc, _ := c.GetService(DetectionServiceName)
	return svc.(*detection.Service)
}

func (c *Container) GetSleepService() *sleep.Service {
	svc, _ := c.GetService(SleepServiceName)
	return svc.(*sleep.Service)
}

func (c *Container) GetStatusReporter() *health.StatusReporter {
	svc, _ := c.GetService(StatusReporterName)
	return svc.(*health.StatusReporter)
}

// GetIngestor returns the MQTT ingestor, creating it on first use. It returns
// nil when MQTT ingestion is disabled.
func (c *Container) GetIngestor() *bbmingestor.Ingestor {
	if !c.config.MQTT.Enabled {
		return nil
	}

	c.mu.Lock()
	if svc, ok := c.services[IngestorName]; ok {
		c.mu.Unlock()
		return svc.(*bbmingestor.Ingestor)
	}
	c.mu.Unlock()

	ing := bbmingestor.New(c.config.MQTT, c.GetDetectionService(), c.metrics, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()
	if svc, ok := c.services[IngestorName]; ok {
		return svc.(*bbmingestor.Ingestor)
	}
	c.services[IngestorName] = ing
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		ing.Stop()
		return nil
	})
	return ing
}

// RegisterService registers a service in the container
func (c *Container) RegisterService(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// GetService retrieves a service from the container
func (c *Container) GetService(name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	service, exists := c.services[name]
	return service, exists
}

// Shutdown runs the cleanup functions in reverse registration order
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("container shutdown interrupted: %w", err)
		}
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// registerCleanup clears the in-memory stores on shutdown
func (c *Container) registerCleanup() {
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		ctx := context.Background()
		c.sensorRepo.Reset(ctx)
		c.alertRepo.Reset(ctx)
		c.thresholdRepo.Reset(ctx)
		c.detectionRepo.Reset(ctx)
		c.activityRepo.Reset(ctx)
		c.sleepRepo.Reset(ctx)
		c.logger.Info("In-memory stores cleared")
		return nil
	})
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
