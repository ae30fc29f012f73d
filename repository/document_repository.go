package repository

import (
	"context"
	"time"

	"deal-pipeline-api/models"

	"gorm.io/gorm"
)

func (s *GormStore) GetDocument(ctx context.Context, documentID int) (*models.DealDocument, error) {
	var doc models.DealDocument
	if err := s.conn(ctx).Where("document_id = ?", documentID).First(&doc).Error; err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (s *GormStore) GetChecklistItem(ctx context.Context, itemID int) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	if err := s.conn(ctx).Where("item_id = ?", itemID).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// RejectDocument marks the document rejected and, when checklistItemID is
// set, resets that checklist slot in the same transaction.
func (s *GormStore) RejectDocument(ctx context.Context, documentID int, reason string, reviewerID int, checklistItemID *int, now time.Time) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DealDocument{}).
			Where("document_id = ?", documentID).
			Updates(map[string]interface{}{
				"status":       models.DocumentStatusRejected,
				"review_notes": reason,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}

		if checklistItemID == nil {
			return nil
		}
		return tx.Model(&models.ChecklistItem{}).
			Where("item_id = ?", *checklistItemID).
			Updates(map[string]interface{}{
				"status":      models.ChecklistStatusPending,
				"document_id": nil,
				"updated_at":  now,
			}).Error
	})
}
