package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/services"
)

type ObjectiveHandler struct {
	svc *services.ObjectiveService
	log logrus.FieldLogger
}

func NewObjectiveHandler(svc *services.ObjectiveService, log logrus.FieldLogger) *ObjectiveHandler {
	return &ObjectiveHandler{svc: svc, log: log}
}

type dueObjectivesQuery struct {
	Date string `form:"date" binding:"omitempty,daykey"`
}

func (h *ObjectiveHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/objectives/due", h.Due)
}

func (h *ObjectiveHandler) Due(c *gin.Context) {
	userID, ok := userIDOrAbort(c)
	if !ok {
		return
	}

	var q dueObjectivesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}

	objectives, err := h.svc.DueToday(c.Request.Context(), userID, q.Date, due.Filter{})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"objectives": objectives, "count": len(objectives)})
}
