package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/health"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
)

// BrokerStatus is implemented by the MQTT ingestor
type BrokerStatus interface {
	IsConnected() bool
}

// HealthController handles health, readiness and metrics requests
type HealthController struct {
	reporter *health.StatusReporter
	metrics  *metrics.Metrics
	broker   BrokerStatus
	logger   *logger.Logger
}

// NewHealthController creates a new health controller. broker may be nil
// when MQTT ingestion is disabled.
func NewHealthController(reporter *health.StatusReporter, metrics *metrics.Metrics, broker BrokerStatus, logger *logger.Logger) *HealthController {
	return &HealthController{
		reporter: reporter,
		metrics:  metrics,
		broker:   broker,
		logger:   logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/health", c.Health)

	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
	if c.metrics != nil {
		router.GET("/metrics", gin.WrapH(c.metrics.Handler()))
	}
}

func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.reporter.Snapshot(ctx.Request.Context()))
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	if c.broker != nil && !c.broker.IsConnected() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"mqtt":   false,
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"mqtt":   c.broker != nil,
	})
}
