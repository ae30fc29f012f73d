package controllers

import (
	"fmt"
	"net/http"

	"deal-pipeline-api/middleware"
	"deal-pipeline-api/services"
	"deal-pipeline-api/utils"

	"github.com/gin-gonic/gin"
)

func (h *WorkflowHandler) RecordPartnerAction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.PartnerActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Notes = utils.SanitizeInput(req.Notes)
	req.PassReason = utils.SanitizeInput(req.PassReason)

	res, err := h.workflow.RecordPartnerAction(c.Request.Context(), middleware.CurrentCaller(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *WorkflowHandler) GetDealPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pkg, err := h.workflow.GetDealPackage(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pkg.FileName))
	c.Data(http.StatusOK, pkg.ContentType, pkg.Data)
}

func (h *WorkflowHandler) ListPartnerReleases(c *gin.Context) {
	items, err := h.workflow.ListPartnerReleases(c.Request.Context(), middleware.CurrentCaller(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetMyPreferences and UpdateMyPreferences act on the caller's own partner.
func (h *WorkflowHandler) GetMyPreferences(c *gin.Context) {
	h.getPreferences(c, nil)
}

func (h *WorkflowHandler) UpdateMyPreferences(c *gin.Context) {
	h.updatePreferences(c, nil)
}

func (h *WorkflowHandler) GetPartnerPreferences(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.getPreferences(c, &id)
}

func (h *WorkflowHandler) UpdatePartnerPreferences(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.updatePreferences(c, &id)
}

func (h *WorkflowHandler) getPreferences(c *gin.Context, partnerID *int) {
	prefs, err := h.workflow.GetPartnerPreferences(c.Request.Context(), middleware.CurrentCaller(c), partnerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (h *WorkflowHandler) updatePreferences(c *gin.Context, partnerID *int) {
	var req services.PreferencesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.AssetClasses = utils.SanitizeList(req.AssetClasses)
	req.Geographies = utils.SanitizeList(req.Geographies)

	prefs, err := h.workflow.UpdatePartnerPreferences(c.Request.Context(), middleware.CurrentCaller(c), partnerID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
