package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
)

func handleError(c *gin.Context, log logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrObjectiveNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrUnknownMode),
		errors.Is(err, domain.ErrModeMismatch),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrMalformedAnswer),
		errors.Is(err, domain.ErrInvalidWeekday),
		errors.Is(err, domain.ErrInvalidDayKey),
		errors.Is(err, domain.ErrInvalidMonthKey),
		errors.Is(err, domain.ErrUnknownScope),
		errors.Is(err, domain.ErrPeriodUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("request failed")

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func userIDOrAbort(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return "", false
	}
	return userID, true
}
