package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/detection"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/middleware"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
)

// CryDetectionController handles detector control, detection events and
// the saved audio clips.
type CryDetectionController struct {
	detection    *detection.Service
	deviceSecret string
	logger       *logger.Logger
}

// NewCryDetectionController creates a new cry detection controller
func NewCryDetectionController(detection *detection.Service, deviceSecret string, logger *logger.Logger) *CryDetectionController {
	return &CryDetectionController{
		detection:    detection,
		deviceSecret: deviceSecret,
		logger:       logger,
	}
}

// SettingsRequest is the body of POST /api/cry-detection/settings
type SettingsRequest struct {
	ConfidenceThreshold *float64 `json:"confidenceThreshold" binding:"omitempty,gte=0,lte=1"`
	AudioSaving         *bool    `json:"audioSaving"`
}

// RegisterRoutes registers the cry detection routes with Gin
func (c *CryDetectionController) RegisterRoutes(router *gin.Engine) {
	cry := router.Group("/api/cry-detection")
	{
		cry.POST("/start", c.Start)
		cry.POST("/stop", c.Stop)
		cry.GET("/status", c.Status)
		cry.GET("/history", c.History)
		cry.GET("/test-connection", c.TestConnection)
		cry.POST("/settings", c.UpdateSettings)

		// Detectors report here
		cry.POST("/detection-event", middleware.DeviceAuth(c.deviceSecret), c.DetectionEvent)

		cry.GET("/audio-files", c.ListAudioFiles)
		cry.GET("/audio-stats", c.AudioStats)
		cry.GET("/audio-file/:id", c.DownloadAudioFile)
	}
}

func (c *CryDetectionController) Start(ctx *gin.Context) {
	out, err := c.detection.Start(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	message := "Cry detection started"
	if out.DeviceStatus == bbmmodels.CommandAlreadyRunning {
		message = "Cry detection was already running"
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    out.Status,
		"message":   message,
		"timestamp": out.Timestamp,
	})
}

func (c *CryDetectionController) Stop(ctx *gin.Context) {
	out, err := c.detection.Stop(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	message := "Cry detection stopped"
	if out.DeviceStatus != bbmmodels.CommandStopped {
		message = "Cry detection was not running"
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    out.Status,
		"message":   message,
		"timestamp": out.Timestamp,
	})
}

func (c *CryDetectionController) Status(ctx *gin.Context) {
	report := c.detection.Status(ctx.Request.Context())
	st := report.State

	body := gin.H{
		"success":         true,
		"isActive":        st.IsActive,
		"lastStartTime":   st.LastStartTime,
		"lastStopTime":    st.LastStopTime,
		"lastDetection":   st.LastDetection,
		"totalDetections": st.TotalDetections,
		"remoteConnected": st.RemoteConnected,
	}
	if report.Warning != "" {
		body["warning"] = report.Warning
	} else {
		body["raspberryPiStatus"] = report.DeviceStatus
	}
	ctx.JSON(http.StatusOK, body)
}

// DetectionEvent never fails. A field of the wrong type is skipped and the
// rest of the body is kept; a body that does not parse at all is recorded as
// a detection at the current time.
func (c *CryDetectionController) DetectionEvent(ctx *gin.Context) {
	var payload bbmmodels.DetectionEventPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		c.logger.Logger.Warn().Err(err).Str("client_ip", ctx.ClientIP()).Msg("Detection event body did not fully decode")
	}

	total := c.detection.RecordDetectionEvent(ctx.Request.Context(), payload.ToEvent())
	ctx.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Detection event recorded",
		"detectionCount": total,
	})
}

func (c *CryDetectionController) History(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    c.detection.History(ctx.Request.Context()),
	})
}

func (c *CryDetectionController) TestConnection(ctx *gin.Context) {
	report := c.detection.TestConnection(ctx.Request.Context())
	if report.Connected {
		ctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Detector device is reachable",
			"raspberryPi": gin.H{
				"status":   "connected",
				"url":      report.URL,
				"response": report.Response,
			},
		})
		return
	}

	message := "Detector device is not reachable"
	var re *bbmmodels.RemoteError
	if errors.As(report.Err, &re) {
		message = re.UserMessage()
	}
	errText := ""
	if report.Err != nil {
		errText = report.Err.Error()
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": message,
		"raspberryPi": gin.H{
			"status": "disconnected",
			"url":    report.URL,
			"error":  errText,
		},
	})
}

func (c *CryDetectionController) UpdateSettings(ctx *gin.Context) {
	var req SettingsRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out, err := c.detection.UpdateSettings(ctx.Request.Context(), bbmmodels.DetectorSettings{
		ConfidenceThreshold: req.ConfidenceThreshold,
		AudioSaving:         req.AudioSaving,
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Detector settings updated",
		"settings": out,
	})
}

func (c *CryDetectionController) ListAudioFiles(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	offset, _ := strconv.Atoi(ctx.Query("offset"))

	page := c.detection.ListAudioFiles(ctx.Request.Context(), limit, offset)
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   page.Files,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}

func (c *CryDetectionController) AudioStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   c.detection.AudioStats(ctx.Request.Context()),
	})
}

func (c *CryDetectionController) DownloadAudioFile(ctx *gin.Context) {
	id := ctx.Param("id")
	dl, err := c.detection.DownloadAudio(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "audio/wav"
	}
	name := dl.FileName
	if name == "" {
		name = fmt.Sprintf("cry_%s.wav", id)
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, contentType, dl.Data)
}
