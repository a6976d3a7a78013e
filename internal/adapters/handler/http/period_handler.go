package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/services"
)

type PeriodHandler struct {
	svc *services.PeriodService
	log logrus.FieldLogger
}

func NewPeriodHandler(svc *services.PeriodService, log logrus.FieldLogger) *PeriodHandler {
	return &PeriodHandler{svc: svc, log: log}
}

type resolvePeriodQuery struct {
	Scope      string `form:"scope" binding:"required,oneof=day week month year adhoc"`
	Date       string `form:"date"`
	WeekEndsOn *int   `form:"week_ends_on" binding:"omitempty,weekday"`
}

type monthWeeksQuery struct {
	Month      string `form:"month" binding:"omitempty,monthkey"`
	WeekEndsOn *int   `form:"week_ends_on" binding:"omitempty,weekday"`
}

func (h *PeriodHandler) RegisterRoutes(router *gin.RouterGroup) {
	periods := router.Group("/periods")
	{
		periods.GET("/resolve", h.Resolve)
		periods.GET("/month-weeks", h.MonthWeeks)
	}
}

// Resolve accepts a day, month or year key in date depending on scope; an
// empty date resolves the period containing today.
func (h *PeriodHandler) Resolve(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var q resolvePeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	p, err := h.svc.Resolve(c.Request.Context(), services.ResolvePeriodInput{
		UserID:     userID,
		Scope:      q.Scope,
		Key:        q.Date,
		WeekEndsOn: q.WeekEndsOn,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PeriodHandler) MonthWeeks(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var q monthWeeksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	segments, err := h.svc.MonthWeeks(c.Request.Context(), services.MonthWeeksInput{
		UserID:     userID,
		MonthKey:   q.Month,
		WeekEndsOn: q.WeekEndsOn,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"weeks": segments})
}
