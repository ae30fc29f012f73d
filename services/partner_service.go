package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deal-pipeline-api/models"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/workflow"

	"github.com/shopspring/decimal"
)

// Access log actions for partner_access_logs.
const (
	AccessPackageDownload = "package_download"
)

type PartnerActionInput struct {
	Action     string `json:"action"`
	Notes      string `json:"notes"`
	PassReason string `json:"pass_reason"`
}

type PartnerActionResult struct {
	Status      workflow.ReleaseStatus `json:"status"`
	AccessLevel workflow.AccessLevel   `json:"access_level"`
	Message     string                 `json:"message"`
}

// PreferencesInput replaces a partner's filters. Nil channel fields keep
// their stored value.
type PreferencesInput struct {
	AssetClasses   []string         `json:"asset_classes"`
	Geographies    []string         `json:"geographies"`
	MinDealSize    *decimal.Decimal `json:"min_deal_size"`
	MaxDealSize    *decimal.Decimal `json:"max_deal_size"`
	MinScore       *float64         `json:"min_score"`
	EmailEnabled   *bool            `json:"email_enabled"`
	InAppEnabled   *bool            `json:"in_app_enabled"`
	EmailFrequency *string          `json:"email_frequency"`
}

// RecordPartnerAction applies action to the caller's own release on the deal.
// The partner is always taken from the caller's binding.
func (s *WorkflowService) RecordPartnerAction(ctx context.Context, caller Caller, dealID int, in PartnerActionInput) (*PartnerActionResult, error) {
	partnerID, err := requirePartner(caller)
	if err != nil {
		return nil, err
	}
	action, err := workflow.ParsePartnerAction(in.Action)
	if err != nil {
		return nil, err
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	rel, err := s.releaseFor(ctx, deal.DealID, partnerID)
	if err != nil {
		return nil, err
	}
	if workflow.AdvancesRelease(action) {
		if err := requireReleasable(deal); err != nil {
			return nil, err
		}
	}

	now := s.now()
	current := releaseState(rel)
	next, err := workflow.ApplyPartnerAction(current, action, workflow.ReleaseInput{Notes: in.Notes, PassReason: in.PassReason}, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRelease(ctx, rel.ReleaseID, current.Status, next, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, workflow.InvalidTransition("Cannot move release from %s to %s: it changed concurrently, reload and retry", current.Status, next.Status)
		}
		return nil, fmt.Errorf("update release: %w", err)
	}

	s.logAccess(ctx, rel, caller.UserID, string(action))
	details := map[string]any{
		"partner_id":  partnerID,
		"release_id":  rel.ReleaseID,
		"from_status": current.Status,
		"to_status":   next.Status,
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		details["notes"] = n
	}
	s.audit(ctx, deal.DealID, caller.UserID, "partner_"+string(action), details)
	s.publish(ctx, EventPartnerAction, deal.DealID, caller.UserID, details)

	return &PartnerActionResult{
		Status:      next.Status,
		AccessLevel: next.AccessLevel,
		Message:     workflow.ConfirmationMessage(action),
	}, nil
}

// GetDealPackage returns the deal package once the caller's release has
// progressed past the summary stage.
func (s *WorkflowService) GetDealPackage(ctx context.Context, caller Caller, dealID int) (*Package, error) {
	partnerID, err := requirePartner(caller)
	if err != nil {
		return nil, err
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	rel, err := s.releaseFor(ctx, deal.DealID, partnerID)
	if err != nil {
		return nil, err
	}
	if !workflow.CanRelease(workflow.Stage(deal.Stage), workflow.DealReleaseStatus(deal.ReleaseStatus)) {
		return nil, workflow.Forbidden("Deal %s is no longer available to partners", deal.QualificationCode)
	}
	if !workflow.CanViewPackage(workflow.ReleaseStatus(rel.Status), workflow.AccessLevel(rel.AccessLevel)) {
		return nil, workflow.Forbidden("Express interest in this deal to access the full package")
	}

	pkg, err := s.docs.Package(ctx, deal)
	if err != nil {
		return nil, fmt.Errorf("load package for deal %d: %w", deal.DealID, err)
	}
	s.logAccess(ctx, rel, caller.UserID, AccessPackageDownload)
	return pkg, nil
}

func (s *WorkflowService) ListPartnerReleases(ctx context.Context, caller Caller) ([]models.DealRelease, error) {
	partnerID, err := requirePartner(caller)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListPartnerReleases(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	for i := range rows {
		if rows[i].Deal != nil {
			rows[i].Deal.InternalNotes = nil
		}
	}
	return rows, nil
}

// GetPartnerPreferences returns the caller's own preferences when partnerID
// is nil, or any partner's preferences for an admin.
func (s *WorkflowService) GetPartnerPreferences(ctx context.Context, caller Caller, partnerID *int) (*models.PartnerNotificationPreferences, error) {
	id, err := s.preferenceOwner(ctx, caller, partnerID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.GetPreferences(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

func (s *WorkflowService) UpdatePartnerPreferences(ctx context.Context, caller Caller, partnerID *int, in PreferencesInput) (*models.PartnerNotificationPreferences, error) {
	id, err := s.preferenceOwner(ctx, caller, partnerID)
	if err != nil {
		return nil, err
	}
	if err := validatePreferences(in); err != nil {
		return nil, err
	}

	prefs, err := s.store.GetPreferences(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	prefs.AssetClasses = models.JoinList(in.AssetClasses)
	prefs.Geographies = models.JoinList(in.Geographies)
	prefs.MinDealSize = in.MinDealSize
	prefs.MaxDealSize = in.MaxDealSize
	prefs.MinScore = in.MinScore
	if in.EmailEnabled != nil {
		prefs.EmailEnabled = *in.EmailEnabled
	}
	if in.InAppEnabled != nil {
		prefs.InAppEnabled = *in.InAppEnabled
	}
	if in.EmailFrequency != nil {
		prefs.EmailFrequency = strings.ToLower(strings.TrimSpace(*in.EmailFrequency))
	}

	if err := s.store.SavePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

func validatePreferences(in PreferencesInput) error {
	if in.MinDealSize != nil && in.MinDealSize.IsNegative() {
		return workflow.Validation("Minimum deal size must not be negative")
	}
	if in.MinDealSize != nil && in.MaxDealSize != nil && in.MinDealSize.GreaterThan(*in.MaxDealSize) {
		return workflow.Validation("Minimum deal size must not exceed maximum deal size")
	}
	if in.MinScore != nil && *in.MinScore < 0 {
		return workflow.Validation("Minimum score must not be negative")
	}
	if in.EmailFrequency != nil {
		switch strings.ToLower(strings.TrimSpace(*in.EmailFrequency)) {
		case models.EmailFrequencyImmediate, models.EmailFrequencyDaily, models.EmailFrequencyWeekly:
		default:
			return workflow.Validation("Invalid email frequency %q. Must be 'immediate', 'daily' or 'weekly'", *in.EmailFrequency)
		}
	}
	return nil
}

func (s *WorkflowService) preferenceOwner(ctx context.Context, caller Caller, partnerID *int) (int, error) {
	if partnerID == nil {
		return requirePartner(caller)
	}
	if err := requireAdmin(caller); err != nil {
		return 0, err
	}
	if _, err := s.store.GetPartner(ctx, *partnerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, workflow.NotFound("Partner %d not found", *partnerID)
		}
		return 0, fmt.Errorf("load partner %d: %w", *partnerID, err)
	}
	return *partnerID, nil
}

// releaseFor loads the partner's release on a deal. A deal released only to
// other partners is Forbidden; a deal with no releases at all is NotFound.
func (s *WorkflowService) releaseFor(ctx context.Context, dealID, partnerID int) (*models.DealRelease, error) {
	rel, err := s.store.GetRelease(ctx, dealID, partnerID)
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load release: %w", err)
	}

	others, err := s.store.ListDealReleases(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	if len(others) > 0 {
		return nil, workflow.Forbidden("This deal has not been released to your organization")
	}
	return nil, workflow.NotFound("No release exists for deal %d", dealID)
}

func (s *WorkflowService) logAccess(ctx context.Context, rel *models.DealRelease, userID int, action string) {
	BestEffort(ctx, s.log, "access log "+action, func(ctx context.Context) error {
		return s.store.AppendAccessLog(ctx, &models.PartnerAccessLog{
			ReleaseID: rel.ReleaseID,
			PartnerID: rel.PartnerID,
			UserID:    userID,
			Action:    action,
			CreatedAt: s.now(),
		})
	})
}

func requireReleasable(deal *models.Deal) error {
	stage := workflow.Stage(deal.Stage)
	release := workflow.DealReleaseStatus(deal.ReleaseStatus)
	if !workflow.CanRelease(stage, release) {
		return workflow.InvalidTransition("Deal %s cannot be released to partners (stage %s, release %s)", deal.QualificationCode, stage, release)
	}
	return nil
}

func releaseState(rel *models.DealRelease) workflow.ReleaseState {
	return workflow.ReleaseState{
		Status:                workflow.ReleaseStatus(rel.Status),
		AccessLevel:           workflow.AccessLevel(rel.AccessLevel),
		InterestExpressedAt:   rel.InterestExpressedAt,
		PassedAt:              rel.PassedAt,
		DueDiligenceStartedAt: rel.DueDiligenceStartedAt,
		PartnerNotes:          rel.PartnerNotes,
		PassReason:            rel.PassReason,
	}
}
