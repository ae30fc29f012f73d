package repository

import (
	"context"
	"errors"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/workflow"
)

func (s *GormStore) GetRelease(ctx context.Context, dealID, partnerID int) (*models.DealRelease, error) {
	var rel models.DealRelease
	if err := s.conn(ctx).Where("deal_id = ? AND partner_id = ?", dealID, partnerID).First(&rel).Error; err != nil {
		return nil, notFound(err)
	}
	return &rel, nil
}

func (s *GormStore) ListDealReleases(ctx context.Context, dealID int) ([]models.DealRelease, error) {
	var rows []models.DealRelease
	if err := s.conn(ctx).Where("deal_id = ?", dealID).Order("release_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListPartnerReleases(ctx context.Context, partnerID int) ([]models.DealRelease, error) {
	var rows []models.DealRelease
	if err := s.conn(ctx).Preload("Deal").
		Where("partner_id = ?", partnerID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// EnsureRelease returns the (deal, partner) release, creating a pending
// summary-level row when none exists.
func (s *GormStore) EnsureRelease(ctx context.Context, dealID, partnerID int, now time.Time) (*models.DealRelease, bool, error) {
	rel, err := s.GetRelease(ctx, dealID, partnerID)
	if err == nil {
		return rel, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	rel = &models.DealRelease{
		DealID:      dealID,
		PartnerID:   partnerID,
		Status:      string(workflow.ReleasePending),
		AccessLevel: string(workflow.AccessSummary),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.conn(ctx).Create(rel).Error; err != nil {
		return nil, false, err
	}
	return rel, true, nil
}

// UpdateRelease writes the release field-set, guarded by the previously read
// status. The whole set is written, so a note built from a stale read must
// not land either.
func (s *GormStore) UpdateRelease(ctx context.Context, releaseID int, from workflow.ReleaseStatus, next workflow.ReleaseState, now time.Time) error {
	res := s.conn(ctx).Model(&models.DealRelease{}).
		Where("release_id = ? AND status = ?", releaseID, string(from)).
		Updates(map[string]interface{}{
		"status":                   string(next.Status),
		"access_level":             string(next.AccessLevel),
		"interest_expressed_at":    next.InterestExpressedAt,
		"passed_at":                next.PassedAt,
		"due_diligence_started_at": next.DueDiligenceStartedAt,
		"partner_notes":            next.PartnerNotes,
		"pass_reason":              next.PassReason,
		"updated_at":               now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (s *GormStore) AppendAccessLog(ctx context.Context, entry *models.PartnerAccessLog) error {
	return s.conn(ctx).Create(entry).Error
}

