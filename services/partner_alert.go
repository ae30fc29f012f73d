package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deal-pipeline-api/models"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/utils"
	"deal-pipeline-api/workflow"

	"golang.org/x/sync/errgroup"
)

const defaultAlertConcurrency = 4

// PartnerAlertResult is the outcome of alerting one partner. A failure in one
// partner's channels never affects another partner's result.
type PartnerAlertResult struct {
	PartnerID        int      `json:"partner_id"`
	Matches          bool     `json:"matches"`
	MatchReasons     []string `json:"match_reasons"`
	NotificationSent bool     `json:"notification_sent"`
	EmailSent        bool     `json:"email_sent"`
	Error            string   `json:"error,omitempty"`
}

// PartnerAlertService fans a deal out to a list of partners.
type PartnerAlertService struct {
	workflow    *WorkflowService
	concurrency int
}

func NewPartnerAlertService(wf *WorkflowService) *PartnerAlertService {
	return &PartnerAlertService{workflow: wf, concurrency: defaultAlertConcurrency}
}

// Send matches the deal against each partner's preferences, makes sure a
// release row exists, and notifies the partner's users. Email goes out only
// when sendEmail is not false and the partner wants immediate email.
func (a *PartnerAlertService) Send(ctx context.Context, caller Caller, dealID int, partnerIDs []int, sendEmail *bool) ([]PartnerAlertResult, error) {
	s := a.workflow
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	ids := uniquePositive(partnerIDs)
	if len(ids) == 0 {
		return nil, workflow.Validation("At least one partner is required")
	}
	deal, err := s.loadDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if err := requireReleasable(deal); err != nil {
		return nil, err
	}

	emailOn := sendEmail == nil || *sendEmail
	summary := workflow.DealSummary{
		AssetClasses: deal.AssetClassList(),
		Geographies:  deal.GeographyList(),
		Amount:       deal.AmountRequested,
		Score:        deal.OverallScore,
	}

	results := make([]PartnerAlertResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, pid := range ids {
		g.Go(func() error {
			results[i] = a.alertPartner(gctx, deal, summary, pid, emailOn)
			return nil
		})
	}
	_ = g.Wait()

	matched := 0
	for _, r := range results {
		if r.Matches {
			matched++
		}
	}
	details := map[string]any{
		"partner_ids": ids,
		"matched":     matched,
		"send_email":  emailOn,
	}
	s.audit(ctx, deal.DealID, caller.UserID, ActivityPartnerAlertSent, details)
	s.publish(ctx, EventPartnerAlertSent, deal.DealID, caller.UserID, details)

	s.log.Info().Int("deal_id", deal.DealID).Int("partners", len(ids)).Int("matched", matched).Msg("partner alert sent")
	return results, nil
}

func (a *PartnerAlertService) alertPartner(ctx context.Context, deal *models.Deal, summary workflow.DealSummary, partnerID int, emailOn bool) (res PartnerAlertResult) {
	s := a.workflow
	log := s.log.With().Int("deal_id", deal.DealID).Int("partner_id", partnerID).Logger()
	res = PartnerAlertResult{PartnerID: partnerID, MatchReasons: []string{}}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("partner alert panicked")
			res.Error = "Alert could not be completed"
		}
	}()

	partner, err := s.store.GetPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			res.Error = fmt.Sprintf("Partner %d not found", partnerID)
			return res
		}
		log.Warn().Err(err).Msg("load partner failed")
		res.Error = "Partner could not be loaded"
		return res
	}
	prefs, err := s.store.GetPreferences(ctx, partnerID)
	if err != nil {
		log.Warn().Err(err).Msg("load preferences failed")
		res.Error = "Preferences could not be loaded"
		return res
	}

	match := workflow.CheckMatch(toPreferences(prefs), summary)
	res.Matches = match.Matches
	res.MatchReasons = match.MatchReasons

	if _, _, err := s.store.EnsureRelease(ctx, deal.DealID, partnerID, s.now()); err != nil {
		log.Warn().Err(err).Msg("release row could not be created")
		res.Error = "Release could not be recorded"
		return res
	}

	users, err := s.store.PartnerUsers(ctx, partnerID)
	if err != nil {
		log.Warn().Err(err).Msg("load partner users failed")
	}

	msg := workflow.PartnerAlertMessage(deal.QualificationCode, match)
	dealID := deal.DealID
	if prefs.InAppEnabled {
		for _, u := range users {
			userID := u.UserID
			if BestEffort(ctx, log, "partner in-app", func(ctx context.Context) error {
				return s.notifier.InApp(ctx, userID, &dealID, msg)
			}) {
				res.NotificationSent = true
			}
		}
	}

	if emailOn && prefs.EmailEnabled && prefs.EmailFrequency == models.EmailFrequencyImmediate {
		recipients := alertRecipients(partner, users)
		if len(recipients) > 0 {
			res.EmailSent = BestEffort(ctx, log, "partner email", func(ctx context.Context) error {
				return s.notifier.Email(ctx, recipients, partner.Name, msg)
			})
		}
	}
	return res
}

func toPreferences(p *models.PartnerNotificationPreferences) *workflow.Preferences {
	if p == nil {
		return nil
	}
	return &workflow.Preferences{
		AssetClasses: p.AssetClassList(),
		Geographies:  p.GeographyList(),
		MinDealSize:  p.MinDealSize,
		MaxDealSize:  p.MaxDealSize,
		MinScore:     p.MinScore,
	}
}

// alertRecipients prefers the partner's contact address over its users'.
func alertRecipients(p *models.Partner, users []models.User) []string {
	if p.ContactEmail != nil && utils.ValidateEmail(strings.TrimSpace(*p.ContactEmail)) {
		return []string{strings.TrimSpace(*p.ContactEmail)}
	}
	out := make([]string, 0, len(users))
	for _, u := range users {
		if e := strings.TrimSpace(u.Email); utils.ValidateEmail(e) {
			out = append(out, e)
		}
	}
	return out
}

func uniquePositive(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

