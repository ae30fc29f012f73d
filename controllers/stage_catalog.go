package controllers

import (
	"net/http"

	"deal-pipeline-api/workflow"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Deal Pipeline API is running",
	})
}

// GetStages returns the ordered stage catalog.
func GetStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stages": workflow.Stages()})
}
