package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"deal-pipeline-api/models"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/workflow"

	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

var (
	adminCaller = Caller{UserID: 1, RoleID: models.RoleAdmin}
	ownerCaller = Caller{UserID: 2, RoleID: models.RoleBorrower}
)

func partnerCaller(userID, partnerID int) Caller {
	return Caller{UserID: userID, RoleID: models.RolePartner, PartnerID: &partnerID}
}

type fakeStore struct {
	mu sync.Mutex

	nextID      int
	users       map[int]*models.User
	companies   map[int]*models.Company
	deals       map[int]*models.Deal
	documents   map[int]*models.DealDocument
	checklist   map[int]*models.ChecklistItem
	releases    map[int]*models.DealRelease
	partners    map[int]*models.Partner
	bindings    map[int]int
	prefs       map[int]*models.PartnerNotificationPreferences
	activities  []models.DealActivity
	accessLogs  []models.PartnerAccessLog
	failAudit   bool
	stageWrites int
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		nextID:    100,
		users:     map[int]*models.User{},
		companies: map[int]*models.Company{},
		deals:     map[int]*models.Deal{},
		documents: map[int]*models.DealDocument{},
		checklist: map[int]*models.ChecklistItem{},
		releases:  map[int]*models.DealRelease{},
		partners:  map[int]*models.Partner{},
		bindings:  map[int]int{},
		prefs:     map[int]*models.PartnerNotificationPreferences{},
	}
	s.users[1] = &models.User{UserID: 1, Email: "admin@example.com", FullName: "Admin", RoleID: models.RoleAdmin}
	s.users[2] = &models.User{UserID: 2, Email: "owner@example.com", FullName: "Owner", RoleID: models.RoleBorrower}
	s.companies[10] = &models.Company{CompanyID: 10, Name: "Acme Holdings", OwnerUserID: 2}
	return s
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addDeal(stage workflow.Stage) *models.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &models.Deal{
		DealID:            s.id(),
		QualificationCode: "Q-TEST",
		CompanyID:         10,
		Stage:             string(stage),
		ReleaseStatus:     string(workflow.DealNotReady),
	}
	s.deals[d.DealID] = d
	cp := *d
	return &cp
}

func (s *fakeStore) addPartner(name string, contact string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Partner{PartnerID: s.id(), Name: name, Slug: name}
	if contact != "" {
		p.ContactEmail = &contact
	}
	s.partners[p.PartnerID] = p

	userID := s.id()
	s.users[userID] = &models.User{UserID: userID, Email: name + "@partner.example.com", FullName: name, RoleID: models.RolePartner}
	s.bindings[userID] = p.PartnerID
	return p.PartnerID
}

func (s *fakeStore) partnerUser(partnerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, pid := range s.bindings {
		if pid == partnerID {
			return userID
		}
	}
	return 0
}

func (s *fakeStore) addRelease(dealID, partnerID int, status workflow.ReleaseStatus, level workflow.AccessLevel) *models.DealRelease {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.DealRelease{ReleaseID: s.id(), DealID: dealID, PartnerID: partnerID, Status: string(status), AccessLevel: string(level)}
	s.releases[r.ReleaseID] = r
	cp := *r
	return &cp
}

func (s *fakeStore) deal(id int) models.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.deals[id]
}

func (s *fakeStore) release(id int) models.DealRelease {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.releases[id]
}

func (s *fakeStore) activityActions(dealID int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, a := range s.activities {
		if a.DealID == dealID {
			out = append(out, a.Action)
		}
	}
	return out
}

func (s *fakeStore) GetUser(_ context.Context, userID int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetCompany(_ context.Context, companyID int) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[companyID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) GetDeal(_ context.Context, dealID int) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[dealID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) CreateDeal(_ context.Context, deal *models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal.DealID = s.id()
	cp := *deal
	s.deals[deal.DealID] = &cp
	return nil
}

func (s *fakeStore) UpdateDealStage(_ context.Context, dealID int, from, to workflow.Stage, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[dealID]
	if !ok || d.Stage != string(from) {
		return repository.ErrStale
	}
	d.Stage = string(to)
	s.stageWrites++
	return nil
}

func (s *fakeStore) UpdateDealHandoff(_ context.Context, dealID int, state workflow.HandoffState, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.deals[dealID]
	d.HandoffTo = nil
	if state.Target != nil {
		t := string(*state.Target)
		d.HandoffTo = &t
	}
	d.HandedOffAt = state.HandedOffAt
	d.HandedOffBy = state.HandedOffBy
	return nil
}

func (s *fakeStore) UpdateDealRelease(_ context.Context, dealID int, upd repository.DealReleaseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.deals[dealID]
	d.ReleaseStatus = string(upd.Status)
	by, at := upd.AuthorizedBy, upd.AuthorizedAt
	d.ReleaseAuthorizedBy = &by
	d.ReleaseAuthorizedAt = &at
	d.ReleaseNotes = upd.Notes
	if upd.PartnerID != nil {
		d.ReleasePartnerID = upd.PartnerID
	}
	return nil
}

func (s *fakeStore) GetDocument(_ context.Context, documentID int) (*models.DealDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[documentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) GetChecklistItem(_ context.Context, itemID int) (*models.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.checklist[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (s *fakeStore) RejectDocument(_ context.Context, documentID int, reason string, reviewerID int, checklistItemID *int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.documents[documentID]
	d.Status = models.DocumentStatusRejected
	d.ReviewNotes = &reason
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &now
	if checklistItemID != nil {
		it := s.checklist[*checklistItemID]
		it.Status = models.ChecklistStatusPending
		it.DocumentID = nil
	}
	return nil
}

func (s *fakeStore) GetRelease(_ context.Context, dealID, partnerID int) (*models.DealRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.releases {
		if r.DealID == dealID && r.PartnerID == partnerID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) ListDealReleases(_ context.Context, dealID int) ([]models.DealRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DealRelease
	for _, r := range s.releases {
		if r.DealID == dealID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReleaseID < out[j].ReleaseID })
	return out, nil
}

func (s *fakeStore) ListPartnerReleases(_ context.Context, partnerID int) ([]models.DealRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DealRelease
	for _, r := range s.releases {
		if r.PartnerID == partnerID {
			cp := *r
			if d, ok := s.deals[r.DealID]; ok {
				dc := *d
				cp.Deal = &dc
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReleaseID < out[j].ReleaseID })
	return out, nil
}

func (s *fakeStore) EnsureRelease(ctx context.Context, dealID, partnerID int, _ time.Time) (*models.DealRelease, bool, error) {
	if r, err := s.GetRelease(ctx, dealID, partnerID); err == nil {
		return r, false, nil
	}
	return s.addRelease(dealID, partnerID, workflow.ReleasePending, workflow.AccessSummary), true, nil
}

func (s *fakeStore) UpdateRelease(_ context.Context, releaseID int, from workflow.ReleaseStatus, next workflow.ReleaseState, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.releases[releaseID]
	if !ok || r.Status != string(from) {
		return repository.ErrStale
	}
	r.Status = string(next.Status)
	r.AccessLevel = string(next.AccessLevel)
	r.InterestExpressedAt = next.InterestExpressedAt
	r.PassedAt = next.PassedAt
	r.DueDiligenceStartedAt = next.DueDiligenceStartedAt
	r.PartnerNotes = next.PartnerNotes
	r.PassReason = next.PassReason
	return nil
}

func (s *fakeStore) GetPartner(_ context.Context, partnerID int) (*models.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[partnerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) PartnerBinding(_ context.Context, userID int) (*models.PartnerUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid, ok := s.bindings[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.PartnerUser{UserID: userID, PartnerID: pid}, nil
}

func (s *fakeStore) PartnerUsers(_ context.Context, partnerID int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for userID, pid := range s.bindings {
		if pid == partnerID {
			out = append(out, *s.users[userID])
		}
	}
	return out, nil
}

func (s *fakeStore) GetPreferences(_ context.Context, partnerID int) (*models.PartnerNotificationPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[partnerID]
	if !ok {
		d := models.DefaultPreferences(partnerID)
		p = &d
		s.prefs[partnerID] = p
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) SavePreferences(_ context.Context, prefs *models.PartnerNotificationPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *prefs
	s.prefs[prefs.PartnerID] = &cp
	return nil
}

func (s *fakeStore) AppendActivity(_ context.Context, entry *models.DealActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAudit {
		return errors.New("audit table unavailable")
	}
	s.activities = append(s.activities, *entry)
	return nil
}

func (s *fakeStore) ListActivity(_ context.Context, dealID int) ([]models.DealActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DealActivity
	for _, a := range s.activities {
		if a.DealID == dealID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) AppendAccessLog(_ context.Context, entry *models.PartnerAccessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessLogs = append(s.accessLogs, *entry)
	return nil
}

type inAppCall struct {
	userID int
	dealID *int
	msg    workflow.Message
}

type emailCall struct {
	to   []string
	name string
	msg  workflow.Message
}

type fakeNotifier struct {
	mu        sync.Mutex
	inApp     []inAppCall
	emails    []emailCall
	failEmail map[string]bool
	panicTo   map[string]bool
}

func (n *fakeNotifier) InApp(_ context.Context, userID int, dealID *int, msg workflow.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inApp = append(n.inApp, inAppCall{userID: userID, dealID: dealID, msg: msg})
	return nil
}

func (n *fakeNotifier) Email(ctx context.Context, to []string, name string, msg workflow.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.panicTo[name] {
		panic("smtp client exploded")
	}
	if n.failEmail[name] {
		return errors.New("smtp 550 mailbox unavailable")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, emailCall{to: to, name: name, msg: msg})
	return nil
}

func (n *fakeNotifier) inAppFor(userID int) []workflow.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []workflow.Message
	for _, c := range n.inApp {
		if c.userID == userID {
			out = append(out, c.msg)
		}
	}
	return out
}

type fakeEvents struct {
	mu     sync.Mutex
	events []DealEvent
}

func (f *fakeEvents) Publish(_ context.Context, e DealEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

type fakeDocs struct {
	pkg *Package
}

func (f *fakeDocs) Package(context.Context, *models.Deal) (*Package, error) {
	return f.pkg, nil
}

type harness struct {
	store    *fakeStore
	notifier *fakeNotifier
	events   *fakeEvents
	svc      *WorkflowService
}

func newHarness() *harness {
	h := &harness{
		store:    newFakeStore(),
		notifier: &fakeNotifier{failEmail: map[string]bool{}, panicTo: map[string]bool{}},
		events:   &fakeEvents{},
	}
	docs := &fakeDocs{pkg: &Package{FileName: "Q-TEST-package.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}}
	h.svc = NewWorkflowService(h.store, h.notifier, h.events, docs, zerolog.New(io.Discard))
	h.svc.now = func() time.Time { return testNow }
	return h
}
