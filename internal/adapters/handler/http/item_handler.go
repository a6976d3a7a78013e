package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/services"
)

type ItemHandler struct {
	views   *services.ViewService
	answers *services.AnswerService
	log     logrus.FieldLogger
}

func NewItemHandler(views *services.ViewService, answers *services.AnswerService, log logrus.FieldLogger) *ItemHandler {
	return &ItemHandler{
		views:   views,
		answers: answers,
		log:     log,
	}
}

type dailyViewQuery struct {
	Date string `form:"date" binding:"omitempty,daykey"`
}

type submitAnswerRequest struct {
	Mode   string        `json:"mode" binding:"omitempty,oneof=daily practice"`
	Answer domain.Answer `json:"answer"`
}

type resetQuery struct {
	Mode string `form:"mode" binding:"omitempty,oneof=daily practice"`
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/items")
	{
		items.GET("/daily", h.Daily)
		items.POST("/:id/answers", h.Answer)
		items.POST("/:id/cooldown/reset", h.Reset)
	}
	router.POST("/practice/sessions", h.PracticeSession)
}

func (h *ItemHandler) Daily(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var q dailyViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	view, err := h.views.DailyView(c.Request.Context(), userID, q.Date)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ItemHandler) PracticeSession(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	view, err := h.views.StartPracticeSession(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ItemHandler) Answer(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	state, err := h.answers.Submit(c.Request.Context(), services.SubmitAnswerInput{
		UserID: userID,
		ItemID: c.Param("id"),
		Mode:   domain.Mode(req.Mode),
		Answer: req.Answer,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *ItemHandler) Reset(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var q resetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	state, err := h.answers.Reset(c.Request.Context(), userID, c.Param("id"), domain.Mode(q.Mode))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, state)
}
