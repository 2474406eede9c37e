package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/monitor"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
)

// SensorController handles environment sensor and threshold requests
type SensorController struct {
	monitor *monitor.Service
	logger  *logger.Logger
}

// NewSensorController creates a new sensor controller
func NewSensorController(monitor *monitor.Service, logger *logger.Logger) *SensorController {
	return &SensorController{
		monitor: monitor,
		logger:  logger,
	}
}

// ThresholdRequest is the body of POST /api/sensors/temperature/threshold
type ThresholdRequest struct {
	LowThreshold  *float64 `json:"lowThreshold" binding:"required"`
	HighThreshold *float64 `json:"highThreshold" binding:"required"`
}

// RegisterRoutes registers the sensor routes with Gin
func (c *SensorController) RegisterRoutes(router *gin.Engine) {
	sensors := router.Group("/api/sensors")
	{
		sensors.GET("/data", c.GetSensorData)
		sensors.GET("/history", c.GetHistory)
		sensors.GET("/temperature", c.GetRoomTemperature)
		sensors.GET("/humidity", c.GetHumidity)
		sensors.GET("/baby-temperature", c.GetBabyTemperature)
		sensors.GET("/temperature/threshold", c.GetThreshold)
		sensors.POST("/temperature/threshold", c.SetThreshold)
	}
}

func (c *SensorController) GetSensorData(ctx *gin.Context) {
	sample, err := c.monitor.ReadSensors(ctx.Request.Context())
	if err != nil {
		c.logger.Logger.Warn().Err(err).Msg("Failed to read sensors")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Unable to read sensor data",
			"details": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, sample)
}

func (c *SensorController) GetHistory(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	hours, _ := strconv.Atoi(ctx.Query("hours"))

	samples, err := c.monitor.History(ctx.Request.Context(), limit, hours)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, samples)
}

func (c *SensorController) GetRoomTemperature(ctx *gin.Context) {
	cur, err := c.monitor.Current(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"roomTemperature": cur.RoomTemperature, "timestamp": cur.Timestamp})
}

func (c *SensorController) GetHumidity(ctx *gin.Context) {
	cur, err := c.monitor.Current(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"humidity": cur.Humidity, "timestamp": cur.Timestamp})
}

func (c *SensorController) GetBabyTemperature(ctx *gin.Context) {
	cur, err := c.monitor.Current(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"babyTemperature": cur.BabyTemperature, "timestamp": cur.Timestamp})
}

func (c *SensorController) GetThreshold(ctx *gin.Context) {
	t, err := c.monitor.GetThreshold(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, t)
}

func (c *SensorController) SetThreshold(ctx *gin.Context) {
	var req ThresholdRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	t, err := c.monitor.SetThreshold(ctx.Request.Context(), *req.LowThreshold, *req.HighThreshold)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "threshold": t})
}
