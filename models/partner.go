package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmailFrequencyImmediate = "immediate"
	EmailFrequencyDaily     = "daily"
	EmailFrequencyWeekly    = "weekly"
)

type Partner struct {
	PartnerID    int       `gorm:"primaryKey;column:partner_id" json:"partner_id"`
	Name         string    `gorm:"column:name" json:"name"`
	Slug         string    `gorm:"column:slug;unique" json:"slug"`
	ContactEmail *string   `gorm:"column:contact_email" json:"contact_email,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// PartnerUser binds a login to the partner it acts for.
type PartnerUser struct {
	UserID    int       `gorm:"primaryKey;column:user_id" json:"user_id"`
	PartnerID int       `gorm:"column:partner_id" json:"partner_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Partner *Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

// PartnerNotificationPreferences holds one partner's deal filters and alert channels.
type PartnerNotificationPreferences struct {
	PreferenceID   int              `gorm:"primaryKey;column:preference_id" json:"preference_id"`
	PartnerID      int              `gorm:"column:partner_id;unique" json:"partner_id"`
	AssetClasses   string           `gorm:"column:asset_classes" json:"asset_classes"`
	Geographies    string           `gorm:"column:geographies" json:"geographies"`
	MinDealSize    *decimal.Decimal `gorm:"column:min_deal_size;type:decimal(18,2)" json:"min_deal_size"`
	MaxDealSize    *decimal.Decimal `gorm:"column:max_deal_size;type:decimal(18,2)" json:"max_deal_size"`
	MinScore       *float64         `gorm:"column:min_score" json:"min_score"`
	EmailEnabled   bool             `gorm:"column:email_enabled" json:"email_enabled"`
	InAppEnabled   bool             `gorm:"column:in_app_enabled" json:"in_app_enabled"`
	EmailFrequency string           `gorm:"column:email_frequency" json:"email_frequency"`
	CreatedAt      time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

func (Partner) TableName() string { return "partners" }

func (PartnerUser) TableName() string { return "partner_users" }

func (PartnerNotificationPreferences) TableName() string { return "partner_notification_preferences" }

// DefaultPreferences are applied the first time a partner's preferences are read.
func DefaultPreferences(partnerID int) PartnerNotificationPreferences {
	return PartnerNotificationPreferences{
		PartnerID:      partnerID,
		EmailEnabled:   true,
		InAppEnabled:   true,
		EmailFrequency: EmailFrequencyImmediate,
	}
}

// AssetClassList splits the stored comma list.
func (p PartnerNotificationPreferences) AssetClassList() []string { return splitList(p.AssetClasses) }

// GeographyList splits the stored comma list.
func (p PartnerNotificationPreferences) GeographyList() []string { return splitList(p.Geographies) }
