package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Audit actions written to deal_activities.
const (
	ActivityDealCreated       = "deal_created"
	ActivityStageChanged      = "stage_changed"
	ActivityHandoffSet        = "handoff_set"
	ActivityReleaseAuthorized = "release_authorized"
	ActivityDocumentRejected  = "document_rejected"
	ActivityPartnerAlertSent  = "partner_alert_sent"
)

// WorkflowService runs every deal workflow operation: authorize, load,
// validate, mutate, then audit, notify and publish on a best-effort basis.
type WorkflowService struct {
	store    Store
	notifier Notifier
	events   EventPublisher
	docs     DocumentStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewWorkflowService(store Store, notifier Notifier, events EventPublisher, docs DocumentStore, log zerolog.Logger) *WorkflowService {
	return &WorkflowService{
		store:    store,
		notifier: notifier,
		events:   events,
		docs:     docs,
		log:      log.With().Str("component", "workflow").Logger(),
		now:      time.Now,
	}
}

type CreateDealInput struct {
	CompanyID       int      `json:"company_id"`
	AmountRequested string   `json:"amount_requested"`
	AssetClasses    []string `json:"asset_classes"`
	Geographies     []string `json:"geographies"`
	OverallScore    *float64 `json:"overall_score"`
	InternalNotes   *string  `json:"internal_notes"`
}

// DealView is a deal as shown to one caller.
type DealView struct {
	Deal        *models.Deal `json:"deal"`
	StageLabel  string       `json:"stage_label"`
	Terminal    bool         `json:"terminal"`
	ActionItems []string     `json:"action_items"`
}

type StageResult struct {
	Stage workflow.Stage `json:"stage"`
	Label string         `json:"label"`
}

type AuthorizeReleaseInput struct {
	Action    string `json:"action"`
	PartnerID *int   `json:"partner_id"`
	Notes     string `json:"notes"`
}

func (s *WorkflowService) CreateDeal(ctx context.Context, caller Caller, in CreateDealInput) (*models.Deal, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if in.CompanyID <= 0 {
		return nil, workflow.Validation("Company is required")
	}
	if in.OverallScore != nil && *in.OverallScore < 0 {
		return nil, workflow.Validation("Score must not be negative")
	}
	if strings.TrimSpace(in.AmountRequested) != "" {
		if _, _, ok := workflow.ParseAmountRange(in.AmountRequested); !ok {
			return nil, workflow.Validation("Invalid amount %q", in.AmountRequested)
		}
	}

	if _, err := s.store.GetCompany(ctx, in.CompanyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, workflow.NotFound("Company %d not found", in.CompanyID)
		}
		return nil, fmt.Errorf("load company %d: %w", in.CompanyID, err)
	}

	now := s.now()
	deal := &models.Deal{
		QualificationCode: newQualificationCode(),
		CompanyID:         in.CompanyID,
		Stage:             string(workflow.StageDraft),
		ReleaseStatus:     string(workflow.DealNotReady),
		AssetClasses:      models.JoinList(in.AssetClasses),
		Geographies:       models.JoinList(in.Geographies),
		AmountRequested:   strings.TrimSpace(in.AmountRequested),
		OverallScore:      in.OverallScore,
		InternalNotes:     trimmedOrNil(derefString(in.InternalNotes)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.CreateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}

	s.audit(ctx, deal.DealID, caller.UserID, ActivityDealCreated, map[string]any{
		"qualification_code": deal.QualificationCode,
		"company_id":         deal.CompanyID,
	})
	s.notifyOwner(ctx, deal, workflow.Message{
		Title: "Deal created",
		Body:  fmt.Sprintf("Deal %s has been opened for your company.", deal.QualificationCode),
		Type:  "info",
	})
	s.publish(ctx, EventDealCreated, deal.DealID, caller.UserID, nil)
	return deal, nil
}

// GetDeal returns the deal to an admin or to the owner of its company.
func (s *WorkflowService) GetDeal(ctx context.Context, caller Caller, dealID int) (*DealView, error) {
	if !caller.Authenticated() {
		return nil, workflow.Unauthorized("Authentication required")
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() {
		company, err := s.store.GetCompany(ctx, deal.CompanyID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load company %d: %w", deal.CompanyID, err)
		}
		if company == nil || company.OwnerUserID != caller.UserID {
			return nil, workflow.Forbidden("You do not have access to this deal")
		}
		deal.InternalNotes = nil
	}

	stage := workflow.Stage(deal.Stage)
	return &DealView{
		Deal:        deal,
		StageLabel:  workflow.Label(stage),
		Terminal:    workflow.IsTerminalStage(stage),
		ActionItems: workflow.ActionItems(stage, caller.IsAdmin()),
	}, nil
}

func (s *WorkflowService) ListDealActivity(ctx context.Context, caller Caller, dealID int) ([]models.DealActivity, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if _, err := s.loadDeal(ctx, dealID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListActivity(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return rows, nil
}

// AdvanceStage moves a deal to rawStage and notifies the company owner.
func (s *WorkflowService) AdvanceStage(ctx context.Context, caller Caller, dealID int, rawStage string) (*StageResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	target, err := workflow.ParseStage(rawStage)
	if err != nil {
		return nil, err
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	current := workflow.Stage(deal.Stage)
	if err := workflow.ValidateTransition(current, target); err != nil {
		return nil, err
	}

	if err := s.store.UpdateDealStage(ctx, deal.DealID, current, target, s.now()); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, workflow.InvalidTransition("Cannot move deal from %s to %s: the deal changed concurrently, reload and retry", current, target)
		}
		return nil, fmt.Errorf("update stage: %w", err)
	}
	deal.Stage = string(target)

	s.audit(ctx, deal.DealID, caller.UserID, ActivityStageChanged, map[string]any{
		"from_stage": current,
		"to_stage":   target,
	})
	s.notifyOwner(ctx, deal, workflow.StageMessage(target, deal.QualificationCode))
	s.publish(ctx, EventStageAdvanced, deal.DealID, caller.UserID, map[string]any{
		"from_stage": current,
		"to_stage":   target,
	})

	s.log.Info().Int("deal_id", deal.DealID).Str("from", string(current)).Str("to", string(target)).Msg("stage advanced")
	return &StageResult{Stage: target, Label: workflow.Label(target)}, nil
}

// SetHandoff routes a deal to a downstream team, or clears the routing when
// target is nil. Nobody is notified.
func (s *WorkflowService) SetHandoff(ctx context.Context, caller Caller, dealID int, target *string, notes string) (*workflow.HandoffState, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	parsed, err := workflow.ParseHandoffTarget(target)
	if err != nil {
		return nil, err
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	state := workflow.ApplyHandoff(parsed, caller.UserID, s.now())
	if err := s.store.UpdateDealHandoff(ctx, deal.DealID, state, s.now()); err != nil {
		return nil, fmt.Errorf("update handoff: %w", err)
	}

	previous := "none"
	if deal.HandoffTo != nil && *deal.HandoffTo != "" {
		previous = *deal.HandoffTo
	}
	details := map[string]any{
		"previous_target": previous,
		"new_target":      state.Target.String(),
	}
	if n := strings.TrimSpace(notes); n != "" {
		details["notes"] = n
	}
	s.audit(ctx, deal.DealID, caller.UserID, ActivityHandoffSet, details)
	s.publish(ctx, EventHandoffSet, deal.DealID, caller.UserID, details)
	return &state, nil
}

// AuthorizeRelease records an admin release decision. It does not depend on
// the deal's stage or handoff.
func (s *WorkflowService) AuthorizeRelease(ctx context.Context, caller Caller, dealID int, in AuthorizeReleaseInput) (workflow.DealReleaseStatus, error) {
	if err := requireAdmin(caller); err != nil {
		return "", err
	}
	decision, err := workflow.ParseReleaseDecision(in.Action)
	if err != nil {
		return "", err
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return "", err
	}

	var partnerID *int
	if in.PartnerID != nil && decision != workflow.DealRejected {
		if _, err := s.store.GetPartner(ctx, *in.PartnerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", workflow.NotFound("Partner %d not found", *in.PartnerID)
			}
			return "", fmt.Errorf("load partner %d: %w", *in.PartnerID, err)
		}
		partnerID = in.PartnerID
	}

	notes := trimmedOrNil(in.Notes)
	if err := s.store.UpdateDealRelease(ctx, deal.DealID, repository.DealReleaseUpdate{
		Status:       decision,
		PartnerID:    partnerID,
		AuthorizedBy: caller.UserID,
		AuthorizedAt: s.now(),
		Notes:        notes,
	}); err != nil {
		return "", fmt.Errorf("update release: %w", err)
	}

	details := map[string]any{
		"previous_status": deal.ReleaseStatus,
		"release_status":  decision,
	}
	if partnerID != nil {
		details["partner_id"] = *partnerID
	}
	if notes != nil {
		details["notes"] = *notes
	}
	s.audit(ctx, deal.DealID, caller.UserID, ActivityReleaseAuthorized, details)
	s.notifyOwner(ctx, deal, workflow.ReleaseDecisionMessage(decision, deal.QualificationCode, derefString(notes)))
	s.publish(ctx, EventReleaseAuthorized, deal.DealID, caller.UserID, details)
	return decision, nil
}

// RejectDocument rejects a document with reason. When checklistItemID is
// given the checklist slot goes back to pending without a document.
func (s *WorkflowService) RejectDocument(ctx context.Context, caller Caller, documentID int, reason string, checklistItemID *int) (*models.DealDocument, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, workflow.Validation("Rejection reason is required")
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, workflow.NotFound("Document %d not found", documentID)
		}
		return nil, fmt.Errorf("load document %d: %w", documentID, err)
	}
	if checklistItemID != nil {
		item, err := s.store.GetChecklistItem(ctx, *checklistItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, workflow.NotFound("Checklist item %d not found", *checklistItemID)
			}
			return nil, fmt.Errorf("load checklist item %d: %w", *checklistItemID, err)
		}
		if item.DealID != doc.DealID {
			return nil, workflow.Validation("Checklist item %d does not belong to deal %d", item.ItemID, doc.DealID)
		}
	}

	now := s.now()
	if err := s.store.RejectDocument(ctx, doc.DocumentID, reason, caller.UserID, checklistItemID, now); err != nil {
		return nil, fmt.Errorf("reject document: %w", err)
	}
	reviewer := caller.UserID
	doc.Status = models.DocumentStatusRejected
	doc.ReviewNotes = &reason
	doc.ReviewedBy = &reviewer
	doc.ReviewedAt = &now

	details := map[string]any{
		"document_id": doc.DocumentID,
		"file_name":   doc.FileName,
		"reason":      reason,
	}
	if checklistItemID != nil {
		details["checklist_item_id"] = *checklistItemID
	}
	s.audit(ctx, doc.DealID, caller.UserID, ActivityDocumentRejected, details)

	if deal, err := s.store.GetDeal(ctx, doc.DealID); err == nil {
		s.notifyOwner(ctx, deal, workflow.DocumentRejectedMessage(doc.FileName, deal.QualificationCode, reason))
	} else {
		s.log.Warn().Err(err).Int("deal_id", doc.DealID).Msg("document rejected but deal could not be loaded for notification")
	}
	s.publish(ctx, EventDocumentRejected, doc.DealID, caller.UserID, details)
	return doc, nil
}

func (s *WorkflowService) loadDeal(ctx context.Context, dealID int) (*models.Deal, error) {
	deal, err := s.store.GetDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, workflow.NotFound("Deal %d not found", dealID)
		}
		return nil, fmt.Errorf("load deal %d: %w", dealID, err)
	}
	return deal, nil
}

func (s *WorkflowService) audit(ctx context.Context, dealID, userID int, action string, details map[string]any) {
	BestEffort(ctx, s.log, "audit "+action, func(ctx context.Context) error {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		return s.store.AppendActivity(ctx, &models.DealActivity{
			DealID:    dealID,
			UserID:    userID,
			Action:    action,
			Details:   raw,
			CreatedAt: s.now(),
		})
	})
}

func (s *WorkflowService) publish(ctx context.Context, eventType string, dealID, actorID int, payload map[string]any) {
	if s.events == nil {
		return
	}
	BestEffort(ctx, s.log, "publish "+eventType, func(ctx context.Context) error {
		return s.events.Publish(ctx, DealEvent{
			Type:       eventType,
			DealID:     dealID,
			ActorID:    actorID,
			OccurredAt: s.now(),
			Payload:    payload,
		})
	})
}

// notifyOwner sends msg in-app and by email to the owner of the deal's company.
func (s *WorkflowService) notifyOwner(ctx context.Context, deal *models.Deal, msg workflow.Message) {
	if s.notifier == nil {
		return
	}
	var owner *models.User
	BestEffort(ctx, s.log, "notify owner", func(ctx context.Context) error {
		company, err := s.store.GetCompany(ctx, deal.CompanyID)
		if err != nil {
			return err
		}
		owner, err = s.store.GetUser(ctx, company.OwnerUserID)
		if err != nil {
			return err
		}
		dealID := deal.DealID
		return s.notifier.InApp(ctx, owner.UserID, &dealID, msg)
	})

	if owner == nil || strings.TrimSpace(owner.Email) == "" {
		return
	}
	BestEffort(ctx, s.log, "email owner", func(ctx context.Context) error {
		return s.notifier.Email(ctx, []string{owner.Email}, owner.FullName, msg)
	})
}

func newQualificationCode() string {
	return "Q-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
