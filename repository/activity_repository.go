package repository

import (
	"context"

	"deal-pipeline-api/models"
)

// AppendActivity inserts one audit entry. Audit rows are never updated.
func (s *GormStore) AppendActivity(ctx context.Context, entry *models.DealActivity) error {
	return s.conn(ctx).Create(entry).Error
}

// ListActivity returns the audit trail for a deal oldest-first.
func (s *GormStore) ListActivity(ctx context.Context, dealID int) ([]models.DealActivity, error) {
	var rows []models.DealActivity
	if err := s.conn(ctx).Where("deal_id = ?", dealID).Order("created_at ASC, activity_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.conn(ctx).Create(n).Error
}
