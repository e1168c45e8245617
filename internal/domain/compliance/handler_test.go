package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/fundflow/fundflow-api/internal/domain/campaign"
	"github.com/fundflow/fundflow-api/internal/middleware"
)

func passthrough(next http.Handler) http.Handler { return next }

func asUser(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			ctx = context.WithValue(ctx, middleware.RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestRunChecksEndpoint(t *testing.T) {
	c := cleanCampaign()
	svc, _, _ := newTestService(c)
	h := NewHandler(svc)
	router := h.Routes(asUser(uuid.New(), "moderator"), passthrough, passthrough)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/"+c.ID.String()+"/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    Run  `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Error("expected success envelope")
	}
	if envelope.Data.TotalChecks != len(RuleSet()) {
		t.Errorf("total_checks = %d, want %d", envelope.Data.TotalChecks, len(RuleSet()))
	}
	if len(envelope.Data.Results) != envelope.Data.TotalChecks {
		t.Errorf("results = %d, want %d", len(envelope.Data.Results), envelope.Data.TotalChecks)
	}
}

func TestRunChecksEndpointRejectsBadIDs(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	router := h.Routes(asUser(uuid.New(), "moderator"), passthrough, passthrough)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/not-a-uuid/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/campaigns/"+uuid.NewString()+"/run", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown campaign: status = %d, want 404", rec.Code)
	}
}

func TestRunChecksEndpointConflictsOnActiveCampaign(t *testing.T) {
	c := cleanCampaign()
	c.Status = campaign.StatusActive
	svc, _, _ := newTestService(c)
	h := NewHandler(svc)
	router := h.Routes(asUser(uuid.New(), "moderator"), passthrough, passthrough)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/"+c.ID.String()+"/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestOverrideEndpoint(t *testing.T) {
	c := cleanCampaign()
	c.Name = "Test1"
	svc, _, _ := newTestService(c)
	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}

	h := NewHandler(svc)
	router := h.Routes(asUser(uuid.New(), "admin"), passthrough, passthrough)

	body, _ := json.Marshal(OverrideRequest{Reason: "too short"})
	req := httptest.NewRequest(http.MethodPost, "/runs/"+run.ID.String()+"/override", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("short reason: status = %d, want 422", rec.Code)
	}

	body, _ = json.Marshal(OverrideRequest{Reason: "verified the paperwork offline"})
	req = httptest.NewRequest(http.MethodPost, "/runs/"+run.ID.String()+"/override", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	// second override hits the one-way guard
	req = httptest.NewRequest(http.MethodPost, "/runs/"+run.ID.String()+"/override", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second override: status = %d, want 409", rec.Code)
	}
}

func TestApprovalStatusEndpoint(t *testing.T) {
	c := cleanCampaign()
	svc, _, _ := newTestService(c)
	if _, err := svc.RunChecks(context.Background(), c.ID, nil); err != nil {
		t.Fatalf("RunChecks: %v", err)
	}

	h := NewHandler(svc)
	router := h.Routes(asUser(uuid.New(), "moderator"), passthrough, passthrough)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/"+c.ID.String()+"/approval", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope struct {
		Data ApprovalStatusResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.CanApprove {
		t.Errorf("expected approvable, reason %q", envelope.Data.Reason)
	}
}

func TestListRulesEndpoint(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	router := h.Routes(asUser(uuid.New(), "moderator"), passthrough, passthrough)

	req := httptest.NewRequest(http.MethodGet, "/rules", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope struct {
		Data []*RuleInfo `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != len(RuleSet()) {
		t.Fatalf("rules = %d, want %d", len(envelope.Data), len(RuleSet()))
	}
	for _, info := range envelope.Data {
		if info.ID == "" || info.Description == "" {
			t.Errorf("rule %q has empty metadata", info.ID)
		}
	}
}
