package models

import (
	"strings"
	"time"
)

// Company is the raising party. OwnerUserID receives deal notifications.
type Company struct {
	CompanyID   int       `gorm:"primaryKey;column:company_id" json:"company_id"`
	Name        string    `gorm:"column:name" json:"name"`
	OwnerUserID int       `gorm:"column:owner_user_id" json:"owner_user_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerUserID" json:"owner,omitempty"`
}

// Deal is a capital-raising opportunity moving through the pipeline.
type Deal struct {
	DealID              int        `gorm:"primaryKey;column:deal_id" json:"deal_id"`
	QualificationCode   string     `gorm:"column:qualification_code;unique" json:"qualification_code"`
	CompanyID           int        `gorm:"column:company_id" json:"company_id"`
	Stage               string     `gorm:"column:stage" json:"stage"`
	HandoffTo           *string    `gorm:"column:handoff_to" json:"handoff_to"`
	HandedOffAt         *time.Time `gorm:"column:handed_off_at" json:"handed_off_at"`
	HandedOffBy         *int       `gorm:"column:handed_off_by" json:"handed_off_by"`
	ReleaseStatus       string     `gorm:"column:release_status" json:"release_status"`
	ReleasePartnerID    *int       `gorm:"column:release_partner_id" json:"release_partner_id"`
	ReleaseAuthorizedBy *int       `gorm:"column:release_authorized_by" json:"release_authorized_by"`
	ReleaseAuthorizedAt *time.Time `gorm:"column:release_authorized_at" json:"release_authorized_at"`
	ReleaseNotes        *string    `gorm:"column:release_notes" json:"release_notes"`
	InternalNotes       *string    `gorm:"column:internal_notes" json:"internal_notes,omitempty"`
	AssignedTo          *int       `gorm:"column:assigned_to" json:"assigned_to"`
	OverallScore        *float64   `gorm:"column:overall_score" json:"overall_score"`
	AssetClasses        string     `gorm:"column:asset_classes" json:"asset_classes"`
	Geographies         string     `gorm:"column:geographies" json:"geographies"`
	AmountRequested     string     `gorm:"column:amount_requested" json:"amount_requested"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Company) TableName() string { return "companies" }

func (Deal) TableName() string { return "deals" }

// AssetClassList splits the stored comma list.
func (d Deal) AssetClassList() []string { return splitList(d.AssetClasses) }

// GeographyList splits the stored comma list.
func (d Deal) GeographyList() []string { return splitList(d.Geographies) }

// JoinList stores a list in the comma-separated column format.
func JoinList(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ",")
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
