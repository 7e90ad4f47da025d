package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "social-chat-service/pkg/errors"
)

// respondError maps a domain error to its HTTP status. Unclassified
// errors are logged and masked.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": apperrors.Reason(err)})
}
