package models

import "time"

// DealRelease is one partner's view of a released deal. Unique per (deal, partner).
type DealRelease struct {
	ReleaseID             int        `gorm:"primaryKey;column:release_id" json:"release_id"`
	DealID                int        `gorm:"column:deal_id;uniqueIndex:idx_deal_partner" json:"deal_id"`
	PartnerID             int        `gorm:"column:partner_id;uniqueIndex:idx_deal_partner" json:"partner_id"`
	Status                string     `gorm:"column:status" json:"status"`
	AccessLevel           string     `gorm:"column:access_level" json:"access_level"`
	InterestExpressedAt   *time.Time `gorm:"column:interest_expressed_at" json:"interest_expressed_at"`
	PassedAt              *time.Time `gorm:"column:passed_at" json:"passed_at"`
	DueDiligenceStartedAt *time.Time `gorm:"column:due_diligence_started_at" json:"due_diligence_started_at"`
	PartnerNotes          *string    `gorm:"column:partner_notes" json:"partner_notes"`
	PassReason            *string    `gorm:"column:pass_reason" json:"pass_reason"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Deal *Deal `gorm:"foreignKey:DealID" json:"deal,omitempty"`
}

func (DealRelease) TableName() string { return "deal_releases" }
