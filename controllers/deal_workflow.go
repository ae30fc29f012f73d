package controllers

import (
	"context"
	"net/http"

	"deal-pipeline-api/middleware"
	"deal-pipeline-api/models"
	"deal-pipeline-api/services"
	"deal-pipeline-api/utils"
	"deal-pipeline-api/workflow"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Workflow is the set of deal operations the HTTP layer exposes.
type Workflow interface {
	CreateDeal(ctx context.Context, caller services.Caller, in services.CreateDealInput) (*models.Deal, error)
	GetDeal(ctx context.Context, caller services.Caller, dealID int) (*services.DealView, error)
	ListDealActivity(ctx context.Context, caller services.Caller, dealID int) ([]models.DealActivity, error)
	AdvanceStage(ctx context.Context, caller services.Caller, dealID int, rawStage string) (*services.StageResult, error)
	SetHandoff(ctx context.Context, caller services.Caller, dealID int, target *string, notes string) (*workflow.HandoffState, error)
	AuthorizeRelease(ctx context.Context, caller services.Caller, dealID int, in services.AuthorizeReleaseInput) (workflow.DealReleaseStatus, error)
	RejectDocument(ctx context.Context, caller services.Caller, documentID int, reason string, checklistItemID *int) (*models.DealDocument, error)
	RecordPartnerAction(ctx context.Context, caller services.Caller, dealID int, in services.PartnerActionInput) (*services.PartnerActionResult, error)
	GetDealPackage(ctx context.Context, caller services.Caller, dealID int) (*services.Package, error)
	ListPartnerReleases(ctx context.Context, caller services.Caller) ([]models.DealRelease, error)
	GetPartnerPreferences(ctx context.Context, caller services.Caller, partnerID *int) (*models.PartnerNotificationPreferences, error)
	UpdatePartnerPreferences(ctx context.Context, caller services.Caller, partnerID *int, in services.PreferencesInput) (*models.PartnerNotificationPreferences, error)
}

type PartnerAlerter interface {
	Send(ctx context.Context, caller services.Caller, dealID int, partnerIDs []int, sendEmail *bool) ([]services.PartnerAlertResult, error)
}

type WorkflowHandler struct {
	workflow Workflow
	alerts   PartnerAlerter
	log      zerolog.Logger
}

func NewWorkflowHandler(wf Workflow, alerts PartnerAlerter, log zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflow: wf, alerts: alerts, log: log.With().Str("component", "http").Logger()}
}

/* ==========================
   Request payloads
   ========================== */

type advanceStageReq struct {
	Stage string `json:"stage" binding:"required"`
}

type handoffReq struct {
	Target *string `json:"target"`
	Notes  string  `json:"notes"`
}

type partnerAlertReq struct {
	PartnerIDs []int `json:"partner_ids" binding:"required"`
	SendEmail  *bool `json:"send_email"`
}

type rejectDocumentReq struct {
	Reason          string `json:"reason" binding:"required"`
	ChecklistItemID *int   `json:"checklist_item_id"`
}

/* ==========================
   Admin deal operations
   ========================== */

func (h *WorkflowHandler) CreateDeal(c *gin.Context) {
	var req services.CreateDealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.AssetClasses = utils.SanitizeList(req.AssetClasses)
	req.Geographies = utils.SanitizeList(req.Geographies)
	req.AmountRequested = utils.SanitizeInput(req.AmountRequested)

	deal, err := h.workflow.CreateDeal(c.Request.Context(), middleware.CurrentCaller(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deal": deal})
}

func (h *WorkflowHandler) GetDeal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.workflow.GetDeal(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WorkflowHandler) ListDealActivity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.workflow.ListDealActivity(c.Request.Context(), middleware.CurrentCaller(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *WorkflowHandler) AdvanceStage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req advanceStageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stage is required"})
		return
	}

	res, err := h.workflow.AdvanceStage(c.Request.Context(), middleware.CurrentCaller(c), id, req.Stage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stage": res.Stage, "label": res.Label})
}

func (h *WorkflowHandler) SetHandoff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req handoffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	state, err := h.workflow.SetHandoff(c.Request.Context(), middleware.CurrentCaller(c), id, req.Target, utils.SanitizeInput(req.Notes))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"handoff_to":    state.Target,
		"handed_off_at": state.HandedOffAt,
		"handed_off_by": state.HandedOffBy,
	})
}

func (h *WorkflowHandler) AuthorizeRelease(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.AuthorizeReleaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Notes = utils.SanitizeInput(req.Notes)

	status, err := h.workflow.AuthorizeRelease(c.Request.Context(), middleware.CurrentCaller(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"release_status": status})
}

func (h *WorkflowHandler) SendPartnerAlerts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req partnerAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "partner_ids is required"})
		return
	}

	results, err := h.alerts.Send(c.Request.Context(), middleware.CurrentCaller(c), id, req.PartnerIDs, req.SendEmail)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *WorkflowHandler) RejectDocument(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req rejectDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}

	doc, err := h.workflow.RejectDocument(c.Request.Context(), middleware.CurrentCaller(c), id, utils.SanitizeInput(req.Reason), req.ChecklistItemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": gin.H{
		"id":           doc.DocumentID,
		"status":       doc.Status,
		"review_notes": doc.ReviewNotes,
	}})
}
