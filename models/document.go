package models

import (
	"time"
)

const (
	DocumentStatusPending  = "pending"
	DocumentStatusApproved = "approved"
	DocumentStatusRejected = "rejected"

	ChecklistStatusPending   = "pending"
	ChecklistStatusSubmitted = "submitted"
	ChecklistStatusApproved  = "approved"
)

type DealDocument struct {
	DocumentID  int        `gorm:"primaryKey;column:document_id" json:"document_id"`
	DealID      int        `gorm:"column:deal_id" json:"deal_id"`
	FileName    string     `gorm:"column:file_name" json:"file_name"`
	StoredPath  string     `gorm:"column:stored_path" json:"-"`
	MimeType    string     `gorm:"column:mime_type" json:"mime_type"`
	Status      string     `gorm:"column:status" json:"status"`
	ReviewNotes *string    `gorm:"column:review_notes" json:"review_notes"`
	ReviewedBy  *int       `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	UploadedBy  int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// ChecklistItem is one required document slot on a deal's checklist.
type ChecklistItem struct {
	ItemID     int       `gorm:"primaryKey;column:item_id" json:"item_id"`
	DealID     int       `gorm:"column:deal_id" json:"deal_id"`
	Label      string    `gorm:"column:label" json:"label"`
	Status     string    `gorm:"column:status" json:"status"`
	DocumentID *int      `gorm:"column:document_id" json:"document_id"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DealDocument) TableName() string {
	return "deal_documents"
}

func (ChecklistItem) TableName() string {
	return "deal_checklist_items"
}
