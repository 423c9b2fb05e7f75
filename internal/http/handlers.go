package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"metersim/internal/query"
	"metersim/internal/sim"
	"metersim/internal/store"
)

type registerRequest struct {
	MeterID  string `json:"meter_id" binding:"required"`
	Area     string `json:"area" binding:"required"`
	Dwelling string `json:"dwelling" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.sim.RegisterMeter(req.MeterID, req.Area, req.Dwelling)
	if err != nil {
		if errors.Is(err, sim.ErrDuplicateMeter) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "account": account})
}

func (s *Server) handleCurrentTime(c *gin.Context) {
	now, err := s.sim.CurrentTime()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_simulation_time": gin.H{
			"date":    now.Format(store.DateLayout),
			"time":    now.Format("15:04:05"),
			"weekday": now.Weekday().String(),
		},
	})
}

type collectRequest struct {
	Unit  string `json:"unit"`
	Value *int   `json:"value"`
}

func (s *Server) handleCollect(c *gin.Context) {
	req := collectRequest{Unit: "days"}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value := 1
	if req.Value != nil {
		value = *req.Value
	}
	if value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be non-negative"})
		return
	}

	result, err := s.sim.Collect(req.Unit, value)
	if err != nil {
		if errors.Is(err, sim.ErrInvalidUnit) || errors.Is(err, sim.ErrNoAccounts) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleQueryUsage(c *gin.Context) {
	meterID := c.Query("meter_id")
	timeRange := c.Query("time_range")
	if meterID == "" || timeRange == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meter_id and time_range are required"})
		return
	}

	now, err := s.sim.CurrentTime()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dates, err := query.DateRange(timeRange, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := s.queries.LoadMeterData(meterID, dates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available for the selected period"})
		return
	}

	c.JSON(http.StatusOK, query.Usage(rows, timeRange))
}

type validateMeterRequest struct {
	MeterID string `json:"meter_id" binding:"required"`
}

func (s *Server) handleValidateMeter(c *gin.Context) {
	var req validateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meter_id is required"})
		return
	}

	now, err := s.sim.CurrentTime()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.queries.MeterExists(req.MeterID, now) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "invalid meter ID"})
}

func (s *Server) handleAreaSummary(c *gin.Context) {
	monthKey := c.Query("month")
	if monthKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month is required"})
		return
	}
	if _, err := time.Parse(store.MonthKeyLayout, monthKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	summaries, err := s.queries.AreaSummaries(monthKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": monthKey, "areas": summaries})
}

func (s *Server) handleReset(c *gin.Context) {
	err := s.sim.Reset()
	c.JSON(http.StatusOK, gin.H{"success": err == nil})
}
