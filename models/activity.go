package models

import (
	"encoding/json"
	"time"
)

// DealActivity is the append-only audit trail of workflow operations on a deal.
type DealActivity struct {
	ActivityID int             `gorm:"primaryKey;column:activity_id" json:"activity_id"`
	DealID     int             `gorm:"column:deal_id" json:"deal_id"`
	UserID     int             `gorm:"column:user_id" json:"user_id"`
	Action     string          `gorm:"column:action" json:"action"`
	Details    json.RawMessage `gorm:"column:details" json:"details"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
}

// PartnerAccessLog records every partner-side action on a release.
type PartnerAccessLog struct {
	LogID     int       `gorm:"primaryKey;column:log_id" json:"log_id"`
	ReleaseID int       `gorm:"column:release_id" json:"release_id"`
	PartnerID int       `gorm:"column:partner_id" json:"partner_id"`
	UserID    int       `gorm:"column:user_id" json:"user_id"`
	Action    string    `gorm:"column:action" json:"action"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (DealActivity) TableName() string { return "deal_activities" }

func (PartnerAccessLog) TableName() string { return "partner_access_logs" }
