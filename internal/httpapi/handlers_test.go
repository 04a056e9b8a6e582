package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phonebank/internal/assignment"
	"phonebank/internal/auth"
	"phonebank/internal/campaign"
	"phonebank/internal/config"
	"phonebank/internal/leaderboard"
	"phonebank/internal/reporting"

	"github.com/gin-gonic/gin"
)

func testEngineRepo() *assignment.MemoryRepo {
	repo := assignment.NewMemoryRepo()
	repo.Callers = []assignment.Caller{
		{ID: "caller-1", AreaID: "area", Name: "Alice", Phone: "+33600000001", Pin: "1234"},
	}
	repo.Campaigns = []campaign.Campaign{{
		ID:            "camp",
		AreaID:        "area",
		Active:        true,
		CallPermitted: true,
		NbMaxCall:     2,
		Script:        "hello",
		Outcomes:      []campaign.Outcome{{Label: "interested"}},
	}}
	repo.Clients = []assignment.Client{
		{ID: "cl-1", CampaignID: "camp", Phone: "+33700000001"},
	}
	return repo
}

func testRouter(t *testing.T, repo *assignment.MemoryRepo) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr, err := auth.NewManager(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}

	lbRepo := leaderboard.NewMemoryRepo()
	lbRepo.Calls = repo.Calls
	lbRepo.Callers = repo.Callers

	h := Handlers{
		Auth:          mgr,
		Authenticator: auth.NewAuthenticator(repo, nil, 5, time.Minute),
		Engine:        assignment.NewService(repo, assignment.Options{}),
		Leaderboard:   leaderboard.NewService(lbRepo),
		Reporting:     reporting.NewService(reporting.NewMemoryRepo()),
	}

	r := gin.New()
	r.POST("/v1/auth/login", h.Login)
	v1 := r.Group("/v1", auth.RequireAccessToken(mgr))
	v1.POST("/calls/reserve", h.Reserve)
	v1.POST("/calls/complete", h.Complete)
	v1.POST("/calls/giveup", h.GiveUp)
	v1.GET("/leaderboard", h.GetLeaderboard)

	tok, err := mgr.IssueAccessToken(time.Now(), "caller-1", "area")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return r, tok
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_IssuesToken(t *testing.T) {
	r, _ := testRouter(t, testEngineRepo())
	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{
		"area_id": "area", "phone": "+33600000001", "pin": "1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.AccessToken == "" {
		t.Fatalf("expected access token, got %s", w.Body.String())
	}
}

func TestLogin_RejectsBadPin(t *testing.T) {
	r, _ := testRouter(t, testEngineRepo())
	w := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{
		"area_id": "area", "phone": "+33600000001", "pin": "0000",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestReserve_RequiresToken(t *testing.T) {
	r, _ := testRouter(t, testEngineRepo())
	w := doJSON(t, r, http.MethodPost, "/v1/calls/reserve", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestReserveCompleteFlow(t *testing.T) {
	r, tok := testRouter(t, testEngineRepo())

	w := doJSON(t, r, http.MethodPost, "/v1/calls/reserve", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reserve: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res assignment.Reservation
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode reservation: %v", err)
	}
	if res.Client.ID != "cl-1" || res.Script != "hello" {
		t.Fatalf("unexpected reservation: %+v", res)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/calls/complete", tok, gin.H{
		"client_id": res.Client.ID, "outcome": "interested", "duration_seconds": 60,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// No session left to complete.
	w = doJSON(t, r, http.MethodPost, "/v1/calls/complete", tok, gin.H{
		"client_id": res.Client.ID, "outcome": "interested",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double complete, got %d", w.Code)
	}
}

func TestReserve_NoCandidateIs404(t *testing.T) {
	repo := testEngineRepo()
	repo.Clients = nil
	r, tok := testRouter(t, repo)

	w := doJSON(t, r, http.MethodPost, "/v1/calls/reserve", tok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReserve_CampaignClosedIs409(t *testing.T) {
	repo := testEngineRepo()
	repo.Campaigns[0].CallPermitted = false
	r, tok := testRouter(t, repo)

	w := doJSON(t, r, http.MethodPost, "/v1/calls/reserve", tok, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestGiveUp(t *testing.T) {
	r, tok := testRouter(t, testEngineRepo())

	// Without a session: conflict.
	w := doJSON(t, r, http.MethodPost, "/v1/calls/giveup", tok, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 without session, got %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, "/v1/calls/reserve", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("reserve: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/calls/giveup", tok, nil); w.Code != http.StatusOK {
		t.Fatalf("give up: %d", w.Code)
	}
}

func TestLeaderboard_RequiresCampaign(t *testing.T) {
	r, tok := testRouter(t, testEngineRepo())
	w := doJSON(t, r, http.MethodGet, "/v1/leaderboard", tok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without campaign_id, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/v1/leaderboard?campaign_id=camp", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
