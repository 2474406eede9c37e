package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/monitor"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
)

// DeviceController handles camera, recording and sensor board requests
type DeviceController struct {
	monitor *monitor.Service
	logger  *logger.Logger
}

// NewDeviceController creates a new device controller
func NewDeviceController(monitor *monitor.Service, logger *logger.Logger) *DeviceController {
	return &DeviceController{
		monitor: monitor,
		logger:  logger,
	}
}

type SwitchCameraRequest struct {
	CameraType string `json:"cameraType" binding:"required,oneof=normal infrared"`
}

// RegisterRoutes registers the device routes with Gin
func (c *DeviceController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/camera/switch", c.SwitchCamera)
		api.POST("/recording/start", c.StartRecording)
		api.POST("/recording/stop", c.StopRecording)
		api.GET("/recordings", c.ListRecordings)
		api.GET("/jetson/status", c.DeviceStatus)
	}
}

func (c *DeviceController) SwitchCamera(ctx *gin.Context) {
	var req SwitchCameraRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	entry, err := c.monitor.SwitchCamera(ctx.Request.Context(), req.CameraType)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"cameraType": entry.CameraType,
		"message":    "Switched to " + entry.CameraType + " camera",
		"log":        entry,
	})
}

func (c *DeviceController) StartRecording(ctx *gin.Context) {
	entry, err := c.monitor.StartRecording(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Recording started",
		"filename": entry.Filename,
		"log":      entry,
	})
}

func (c *DeviceController) StopRecording(ctx *gin.Context) {
	entry, err := c.monitor.StopRecording(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Recording stopped",
		"log":     entry,
	})
}

func (c *DeviceController) ListRecordings(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	logs, err := c.monitor.ListRecordings(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, logs)
}

func (c *DeviceController) DeviceStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.monitor.DeviceStatus(ctx.Request.Context()))
}
