package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"deal-pipeline-api/middleware"
	"deal-pipeline-api/models"
	"deal-pipeline-api/services"
	"deal-pipeline-api/workflow"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// stubWorkflow implements only what each test needs; other methods panic.
type stubWorkflow struct {
	Workflow
	advance   func(dealID int, stage string) (*services.StageResult, error)
	handoff   func(target *string) (*workflow.HandoffState, error)
	pkg       func(caller services.Caller) (*services.Package, error)
	lastStage string
}

func (s *stubWorkflow) AdvanceStage(_ context.Context, _ services.Caller, dealID int, rawStage string) (*services.StageResult, error) {
	s.lastStage = rawStage
	return s.advance(dealID, rawStage)
}

func (s *stubWorkflow) SetHandoff(_ context.Context, _ services.Caller, _ int, target *string, _ string) (*workflow.HandoffState, error) {
	return s.handoff(target)
}

func (s *stubWorkflow) GetDealPackage(_ context.Context, caller services.Caller, _ int) (*services.Package, error) {
	return s.pkg(caller)
}

type stubAlerter struct {
	got []int
}

func (a *stubAlerter) Send(_ context.Context, _ services.Caller, _ int, partnerIDs []int, _ *bool) ([]services.PartnerAlertResult, error) {
	a.got = partnerIDs
	out := make([]services.PartnerAlertResult, len(partnerIDs))
	for i, id := range partnerIDs {
		out[i] = services.PartnerAlertResult{PartnerID: id, Matches: true, MatchReasons: []string{}, NotificationSent: true}
	}
	return out, nil
}

func newTestRouter(wf Workflow, alerts PartnerAlerter, caller services.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWorkflowHandler(wf, alerts, zerolog.New(io.Discard))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetCaller(c, caller)
		c.Next()
	})
	r.GET("/stages", GetStages)
	r.POST("/deals/:id/stage", h.AdvanceStage)
	r.POST("/deals/:id/handoff", h.SetHandoff)
	r.POST("/deals/:id/partner-alerts", h.SendPartnerAlerts)
	r.GET("/partner/deals/:id/package", h.GetDealPackage)
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestAdvanceStageMapsWorkflowErrors(t *testing.T) {
	admin := services.Caller{UserID: 1, RoleID: models.RoleAdmin}
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid transition", workflow.InvalidTransition("Cannot move deal from funded to qualified: funded is a final stage"), http.StatusConflict, "Cannot move deal from funded to qualified: funded is a final stage"},
		{"forbidden", workflow.Forbidden("Admin access required"), http.StatusForbidden, "Admin access required"},
		{"unauthorized", workflow.Unauthorized("Authentication required"), http.StatusUnauthorized, "Authentication required"},
		{"not found", workflow.NotFound("Deal 9 not found"), http.StatusNotFound, "Deal 9 not found"},
		{"validation", workflow.Validation("Invalid stage %q", "archived"), http.StatusBadRequest, `Invalid stage "archived"`},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		wf := &stubWorkflow{advance: func(int, string) (*services.StageResult, error) { return nil, tc.err }}
		w := perform(newTestRouter(wf, nil, admin), http.MethodPost, "/deals/9/stage", `{"stage":"qualified"}`)
		if w.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, w.Code)
		}
		if got := decodeError(t, w); got != tc.msg {
			t.Fatalf("%s: expected message %q, got %q", tc.name, tc.msg, got)
		}
	}
}

func TestAdvanceStageSuccessAndBadInput(t *testing.T) {
	admin := services.Caller{UserID: 1, RoleID: models.RoleAdmin}
	wf := &stubWorkflow{advance: func(int, string) (*services.StageResult, error) {
		return &services.StageResult{Stage: workflow.StageQualified, Label: "Qualified"}, nil
	}}
	r := newTestRouter(wf, nil, admin)

	w := perform(r, http.MethodPost, "/deals/3/stage", `{"stage":"qualified"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"stage":"qualified"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
	if wf.lastStage != "qualified" {
		t.Fatalf("expected stage forwarded, got %q", wf.lastStage)
	}

	if w := perform(r, http.MethodPost, "/deals/abc/stage", `{"stage":"qualified"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	if w := perform(r, http.MethodPost, "/deals/3/stage", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing stage, got %d", w.Code)
	}
}

func TestSetHandoffAcceptsNullTarget(t *testing.T) {
	admin := services.Caller{UserID: 1, RoleID: models.RoleAdmin}
	var seen *string
	wf := &stubWorkflow{handoff: func(target *string) (*workflow.HandoffState, error) {
		seen = target
		return &workflow.HandoffState{}, nil
	}}

	w := perform(newTestRouter(wf, nil, admin), http.MethodPost, "/deals/3/handoff", `{"target":null,"notes":"back to us"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	if seen != nil {
		t.Fatalf("expected nil target, got %q", *seen)
	}
}

func TestSendPartnerAlerts(t *testing.T) {
	admin := services.Caller{UserID: 1, RoleID: models.RoleAdmin}
	alerts := &stubAlerter{}

	w := perform(newTestRouter(&stubWorkflow{}, alerts, admin), http.MethodPost, "/deals/3/partner-alerts", `{"partner_ids":[4,5]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Results []services.PartnerAlertResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 2 || !body.Results[1].NotificationSent || len(alerts.got) != 2 {
		t.Fatalf("unexpected results %+v", body.Results)
	}
}

func TestGetDealPackageStreamsBytes(t *testing.T) {
	partnerID := 4
	partner := services.Caller{UserID: 8, RoleID: models.RolePartner, PartnerID: &partnerID}
	wf := &stubWorkflow{pkg: func(caller services.Caller) (*services.Package, error) {
		if caller.PartnerID == nil {
			return nil, workflow.Forbidden("Partner access required")
		}
		return &services.Package{FileName: "Q-1-package.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}, nil
	}}

	w := perform(newTestRouter(wf, nil, partner), http.MethodGet, "/partner/deals/1/package", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "Q-1-package.pdf") {
		t.Fatalf("expected attachment filename, got %q", w.Header().Get("Content-Disposition"))
	}

	w = perform(newTestRouter(wf, nil, services.Caller{UserID: 9, RoleID: models.RolePartner}), http.MethodGet, "/partner/deals/1/package", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unbound partner, got %d", w.Code)
	}
}

func TestGetStages(t *testing.T) {
	w := perform(newTestRouter(&stubWorkflow{}, nil, services.Caller{}), http.MethodGet, "/stages", "")
	var body struct {
		Stages []workflow.StageInfo `json:"stages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Stages) != 11 || body.Stages[0].Stage != workflow.StageDraft {
		t.Fatalf("unexpected catalog %+v", body.Stages)
	}
}
