package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.ApiService/implementation/sleep"
	logger "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Logger"
	bbmmodels "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Models"
	interfaces "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Repository/Interfaces"
)

// SleepController handles the sleep log
type SleepController struct {
	sleep  *sleep.Service
	logger *logger.Logger
}

func NewSleepController(svc *sleep.Service, logger *logger.Logger) *SleepController {
	return &SleepController{sleep: svc, logger: logger}
}

// CreateSleepRecordRequest is the body of POST /api/sleep/record
type CreateSleepRecordRequest struct {
	BabyID        int      `json:"babyId" binding:"omitempty,gte=1"`
	Date          string   `json:"date" binding:"required"`
	BedTime       string   `json:"bedTime" binding:"required"`
	WakeTime      string   `json:"wakeTime" binding:"required"`
	SleepHours    float64  `json:"sleepHours" binding:"required"`
	SleepQuality  string   `json:"sleepQuality" binding:"omitempty,oneof=good fair poor"`
	AutoSoothings int      `json:"autoSoothings" binding:"gte=0"`
	NightWakings  int      `json:"nightWakings" binding:"gte=0"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	NoiseLevel    *float64 `json:"noiseLevel"`
	Notes         string   `json:"notes"`
}

func (r CreateSleepRecordRequest) record() bbmmodels.SleepRecord {
	return bbmmodels.SleepRecord{
		BabyID:        r.BabyID,
		Date:          r.Date,
		BedTime:       r.BedTime,
		WakeTime:      r.WakeTime,
		SleepHours:    r.SleepHours,
		SleepQuality:  bbmmodels.SleepQuality(r.SleepQuality),
		AutoSoothings: r.AutoSoothings,
		NightWakings:  r.NightWakings,
		Temperature:   r.Temperature,
		Humidity:      r.Humidity,
		NoiseLevel:    r.NoiseLevel,
		Notes:         r.Notes,
	}
}

// RegisterRoutes registers the sleep routes with Gin
func (c *SleepController) RegisterRoutes(router *gin.Engine) {
	sl := router.Group("/api/sleep")
	{
		sl.GET("/records", c.ListRecords)
		sl.POST("/record", c.CreateRecord)
		sl.GET("/record/:id", c.GetRecord)
		sl.PUT("/record/:id", c.UpdateRecord)
		sl.DELETE("/record/:id", c.DeleteRecord)
		sl.GET("/statistics", c.Statistics)
	}
}

func (c *SleepController) ListRecords(ctx *gin.Context) {
	babyID, _ := strconv.Atoi(ctx.Query("babyId"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	records, err := c.sleep.List(ctx.Request.Context(), interfaces.SleepQueryParams{
		BabyID: babyID,
		From:   ctx.Query("startDate"),
		To:     ctx.Query("endDate"),
		Limit:  limit,
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": records, "total": len(records)})
}

func (c *SleepController) CreateRecord(ctx *gin.Context) {
	var req CreateSleepRecordRequest
	if err := bindJSON(ctx, &req); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	rec, err := c.sleep.Create(ctx.Request.Context(), req.record())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Sleep record added", "data": rec})
}

func (c *SleepController) GetRecord(ctx *gin.Context) {
	rec, err := c.sleep.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

func (c *SleepController) UpdateRecord(ctx *gin.Context) {
	var patch bbmmodels.SleepRecordPatch
	if err := bindJSON(ctx, &patch); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	rec, err := c.sleep.Update(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Sleep record updated", "data": rec})
}

func (c *SleepController) DeleteRecord(ctx *gin.Context) {
	if err := c.sleep.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Sleep record deleted"})
}

func (c *SleepController) Statistics(ctx *gin.Context) {
	babyID, _ := strconv.Atoi(ctx.Query("babyId"))
	period, _ := strconv.Atoi(ctx.Query("period"))

	stats, err := c.sleep.Statistics(ctx.Request.Context(), babyID, period)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
