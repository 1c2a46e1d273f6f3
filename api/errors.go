package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"meal-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps service errors to HTTP statuses. Unknown errors are logged
// and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var throttled *services.ThrottledError
	switch {
	case errors.As(err, &throttled):
		c.Header("Retry-After", strconv.Itoa(throttled.WaitSeconds))
		status, msg = http.StatusTooManyRequests, err.Error()
	case errors.Is(err, services.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidLogin):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrAccountDisabled):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrMenuFinalized):
		status, msg = http.StatusConflict, err.Error()
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	respondError(c, fmt.Errorf("%w: %s", services.ErrInvalidInput, fmt.Sprintf(format, args...)))
}
