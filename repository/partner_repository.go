package repository

import (
	"context"
	"errors"
	"time"

	"deal-pipeline-api/models"
)

func (s *GormStore) GetPartner(ctx context.Context, partnerID int) (*models.Partner, error) {
	var partner models.Partner
	if err := s.conn(ctx).Where("partner_id = ?", partnerID).First(&partner).Error; err != nil {
		return nil, notFound(err)
	}
	return &partner, nil
}

// PartnerBinding returns the partner a user acts for, or ErrNotFound.
func (s *GormStore) PartnerBinding(ctx context.Context, userID int) (*models.PartnerUser, error) {
	var binding models.PartnerUser
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&binding).Error; err != nil {
		return nil, notFound(err)
	}
	return &binding, nil
}

func (s *GormStore) PartnerUsers(ctx context.Context, partnerID int) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).
		Joins("JOIN partner_users pu ON pu.user_id = users.user_id").
		Where("pu.partner_id = ? AND users.delete_at IS NULL", partnerID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetPreferences returns the partner's preferences, creating the defaults on
// first access.
func (s *GormStore) GetPreferences(ctx context.Context, partnerID int) (*models.PartnerNotificationPreferences, error) {
	var prefs models.PartnerNotificationPreferences
	err := s.conn(ctx).Where("partner_id = ?", partnerID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if err = notFound(err); !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	prefs = models.DefaultPreferences(partnerID)
	prefs.CreatedAt = now
	prefs.UpdatedAt = now
	if err := s.conn(ctx).Create(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *GormStore) SavePreferences(ctx context.Context, prefs *models.PartnerNotificationPreferences) error {
	prefs.UpdatedAt = time.Now()
	return s.conn(ctx).Save(prefs).Error
}
