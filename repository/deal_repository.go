package repository

import (
	"context"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/workflow"
)

func (s *GormStore) GetDeal(ctx context.Context, dealID int) (*models.Deal, error) {
	var deal models.Deal
	if err := s.conn(ctx).Where("deal_id = ?", dealID).First(&deal).Error; err != nil {
		return nil, notFound(err)
	}
	return &deal, nil
}

func (s *GormStore) GetCompany(ctx context.Context, companyID int) (*models.Company, error) {
	var company models.Company
	if err := s.conn(ctx).Where("company_id = ?", companyID).First(&company).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

func (s *GormStore) CreateDeal(ctx context.Context, deal *models.Deal) error {
	return s.conn(ctx).Create(deal).Error
}

// UpdateDealStage moves a deal only if it is still in from.
func (s *GormStore) UpdateDealStage(ctx context.Context, dealID int, from, to workflow.Stage, now time.Time) error {
	res := s.conn(ctx).Model(&models.Deal{}).
		Where("deal_id = ? AND stage = ?", dealID, string(from)).
		Updates(map[string]interface{}{
			"stage":      string(to),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// UpdateDealHandoff writes the three handoff columns together.
func (s *GormStore) UpdateDealHandoff(ctx context.Context, dealID int, state workflow.HandoffState, now time.Time) error {
	var target interface{}
	if state.Target != nil {
		target = string(*state.Target)
	}
	return s.conn(ctx).Model(&models.Deal{}).
		Where("deal_id = ?", dealID).
		Updates(map[string]interface{}{
			"handoff_to":    target,
			"handed_off_at": state.HandedOffAt,
			"handed_off_by": state.HandedOffBy,
			"updated_at":    now,
		}).Error
}

// DealReleaseUpdate is the field-set written by AuthorizeRelease.
type DealReleaseUpdate struct {
	Status       workflow.DealReleaseStatus
	PartnerID    *int
	AuthorizedBy int
	AuthorizedAt time.Time
	Notes        *string
}

func (s *GormStore) UpdateDealRelease(ctx context.Context, dealID int, upd DealReleaseUpdate) error {
	fields := map[string]interface{}{
		"release_status":        string(upd.Status),
		"release_authorized_by": upd.AuthorizedBy,
		"release_authorized_at": upd.AuthorizedAt,
		"release_notes":         upd.Notes,
		"updated_at":            upd.AuthorizedAt,
	}
	if upd.PartnerID != nil {
		fields["release_partner_id"] = *upd.PartnerID
	}
	return s.conn(ctx).Model(&models.Deal{}).
		Where("deal_id = ?", dealID).
		Updates(fields).Error
}

func (s *GormStore) GetUser(ctx context.Context, userID int) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
