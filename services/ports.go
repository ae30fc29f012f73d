package services

import (
	"context"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/workflow"
)

// Store is the persistence the workflow needs. repository.GormStore
// satisfies it; lookups return repository.ErrNotFound for missing rows and
// guarded updates return repository.ErrStale.
type Store interface {
	GetUser(ctx context.Context, userID int) (*models.User, error)
	GetCompany(ctx context.Context, companyID int) (*models.Company, error)

	GetDeal(ctx context.Context, dealID int) (*models.Deal, error)
	CreateDeal(ctx context.Context, deal *models.Deal) error
	UpdateDealStage(ctx context.Context, dealID int, from, to workflow.Stage, now time.Time) error
	UpdateDealHandoff(ctx context.Context, dealID int, state workflow.HandoffState, now time.Time) error
	UpdateDealRelease(ctx context.Context, dealID int, upd repository.DealReleaseUpdate) error

	GetDocument(ctx context.Context, documentID int) (*models.DealDocument, error)
	GetChecklistItem(ctx context.Context, itemID int) (*models.ChecklistItem, error)
	RejectDocument(ctx context.Context, documentID int, reason string, reviewerID int, checklistItemID *int, now time.Time) error

	GetRelease(ctx context.Context, dealID, partnerID int) (*models.DealRelease, error)
	ListDealReleases(ctx context.Context, dealID int) ([]models.DealRelease, error)
	ListPartnerReleases(ctx context.Context, partnerID int) ([]models.DealRelease, error)
	EnsureRelease(ctx context.Context, dealID, partnerID int, now time.Time) (*models.DealRelease, bool, error)
	UpdateRelease(ctx context.Context, releaseID int, from workflow.ReleaseStatus, next workflow.ReleaseState, now time.Time) error

	GetPartner(ctx context.Context, partnerID int) (*models.Partner, error)
	PartnerBinding(ctx context.Context, userID int) (*models.PartnerUser, error)
	PartnerUsers(ctx context.Context, partnerID int) ([]models.User, error)
	GetPreferences(ctx context.Context, partnerID int) (*models.PartnerNotificationPreferences, error)
	SavePreferences(ctx context.Context, prefs *models.PartnerNotificationPreferences) error

	AppendActivity(ctx context.Context, entry *models.DealActivity) error
	ListActivity(ctx context.Context, dealID int) ([]models.DealActivity, error)
	AppendAccessLog(ctx context.Context, entry *models.PartnerAccessLog) error
}

// Notifier delivers in-app notifications and external email.
type Notifier interface {
	InApp(ctx context.Context, userID int, dealID *int, msg workflow.Message) error
	Email(ctx context.Context, to []string, recipientName string, msg workflow.Message) error
}

// EventPublisher receives one event per successful workflow mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event DealEvent) error
}

// DocumentStore fetches the downloadable package for a deal.
type DocumentStore interface {
	Package(ctx context.Context, deal *models.Deal) (*Package, error)
}

// Package is the binary handed to a partner by GetDealPackage.
type Package struct {
	FileName    string
	ContentType string
	Data        []byte
}
