package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"deal-pipeline-api/workflow"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func statusFor(kind workflow.Kind) int {
	switch kind {
	case workflow.KindUnauthorized:
		return http.StatusUnauthorized
	case workflow.KindForbidden:
		return http.StatusForbidden
	case workflow.KindNotFound:
		return http.StatusNotFound
	case workflow.KindInvalidTransition:
		return http.StatusConflict
	case workflow.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message}. Messages of workflow errors are
// shown to users verbatim; anything else is logged and hidden.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) && wfErr.Kind != workflow.KindInternal && wfErr.Kind != workflow.KindDependency {
		c.JSON(statusFor(wfErr.Kind), gin.H{"error": wfErr.Message, "code": wfErr.Kind.String()})
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
