package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	metrics "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Metrics"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

// AlertController handles alert ledger requests
type AlertController struct {
	alertRepo interfaces.AlertRepository
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewAlertController creates a new alert controller
func NewAlertController(alertRepo interfaces.AlertRepository, metrics *metrics.Metrics, logger *logger.Logger) *AlertController {
	return &AlertController{
		alertRepo: alertRepo,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateAlertRequest is the body of POST /api/alerts
type CreateAlertRequest struct {
	Message  string `json:"message" binding:"required"`
	Type     string `json:"type" binding:"omitempty,oneof=info warning error"`
	Priority string `json:"priority" binding:"omitempty,oneof=low normal high"`
}

// RegisterRoutes registers the alert routes with Gin
func (c *AlertController) RegisterRoutes(router *gin.Engine) {
	alerts := router.Group("/api/alerts")
	{
		alerts.POST("", c.CreateAlert)
		alerts.GET("", c.ListAlerts)
		alerts.PATCH("/:id/read", c.MarkRead)
	}
}

func (c *AlertController) CreateAlert(ctx *gin.Context) {
	var req CreateAlertRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	alert, err := c.alertRepo.Create(ctx.Request.Context(), req.Message, bbmmodels.AlertType(req.Type), bbmmodels.AlertPriority(req.Priority))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	c.metrics.AlertCreated(string(alert.Type))
	ctx.JSON(http.StatusOK, gin.H{"success": true, "alert": alert})
}

func (c *AlertController) ListAlerts(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	params := interfaces.AlertQueryParams{
		Limit:      limit,
		UnreadOnly: ctx.Query("unread") == "true",
	}

	alerts, err := c.alertRepo.List(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, alerts)
}

func (c *AlertController) MarkRead(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		respondError(ctx, c.logger, bbmmodels.NewValidationError("id", "must be a numeric alert id"))
		return
	}

	alert, err := c.alertRepo.MarkRead(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "alert": alert})
}
