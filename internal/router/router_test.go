package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"debate-tab/internal/allocation"
	"debate-tab/internal/auth"
	"debate-tab/internal/config"
	"debate-tab/internal/database"
	"debate-tab/internal/importer"
	"debate-tab/internal/models"
)

const routerFixture = `
tournament:
  slug: router
venue_groups:
  - {name: Main, team_capacity: 4}
institutions:
  - code: SYD
  - code: MEL
  - code: EXA
teams:
  - {institution: SYD, reference: "1", preferences: [Main]}
  - {institution: MEL, reference: "1", preferences: [Main]}
adjudicators:
  - {name: Chair, institution: EXA, score: 5}
  - {name: Panel, institution: EXA, score: 3}
rounds:
  - seq: 1
    draw_status: confirmed
    available: [all]
    debates:
      - {aff: SYD 1, neg: MEL 1}
  - seq: 2
    draw_status: released
  - seq: 3
    draw_status: draft
`

type testServer struct {
	router *gin.Engine
	token  string
	res    *importer.Result
}

func setupTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	f, err := importer.Parse([]byte(routerFixture))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	res, err := f.Apply(context.Background(), db)
	if err != nil {
		t.Fatalf("failed to apply fixture: %v", err)
	}

	auth.InitJWT("router-test-secret")
	token, err := auth.GenerateToken("tester", auth.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return &testServer{router: NewRouter(db, testConfig()), token: token, res: res}
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{JWTSecret: "router-test-secret", DivisionSize: 6},
		Allocator: allocation.DefaultOptions(),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := setupTestServer(t)

	path := fmt.Sprintf("/api/admin/rounds/%d/allocation", s.res.Rounds[1])
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestCreateAllocationEndpoint(t *testing.T) {
	s := setupTestServer(t)
	roundID := s.res.Rounds[1]

	w := s.do(t, "POST", fmt.Sprintf("/api/admin/rounds/%d/allocation", roundID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.AllocationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode allocation: %v", err)
	}
	debateID := s.res.Debates[1][0]
	panel, ok := resp.Debates[debateID]
	if !ok {
		t.Fatalf("debate %d missing from response", debateID)
	}
	if panel.Chair == nil || panel.Chair.ID != s.res.Adjudicators["Chair"] {
		t.Errorf("Expected Chair to chair the debate, got %+v", panel.Chair)
	}
	if resp.RunID == nil {
		t.Error("Expected a run id")
	}

	w = s.do(t, "GET", fmt.Sprintf("/api/admin/rounds/%d/allocation", roundID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = s.do(t, "GET", fmt.Sprintf("/api/admin/tournaments/%d/logs?limit=10", s.res.TournamentID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var logs struct {
		Data  []models.ActionLog `json:"data"`
		Total int64              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &logs); err != nil {
		t.Fatalf("failed to decode logs: %v", err)
	}
	if logs.Total != 1 || len(logs.Data) != 1 {
		t.Errorf("Expected one action log entry, got total=%d len=%d", logs.Total, len(logs.Data))
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := setupTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"invalid round id", "POST", "/api/admin/rounds/abc/allocation", nil, http.StatusBadRequest},
		{"unknown round", "POST", "/api/admin/rounds/9999/allocation", nil, http.StatusNotFound},
		{"released draw", "POST", fmt.Sprintf("/api/admin/rounds/%d/allocation", s.res.Rounds[2]), nil, http.StatusBadRequest},
		{"draft draw", "POST", fmt.Sprintf("/api/admin/rounds/%d/allocation", s.res.Rounds[3]), nil, http.StatusBadRequest},
		{"release draft", "POST", fmt.Sprintf("/api/admin/rounds/%d/draw/release", s.res.Rounds[3]), nil, http.StatusBadRequest},
		{"missing importance", "POST", fmt.Sprintf("/api/admin/rounds/%d/debates/%d/importance", s.res.Rounds[1], s.res.Debates[1][0]), gin.H{}, http.StatusBadRequest},
		{"bad start time", "POST", fmt.Sprintf("/api/admin/rounds/%d/start-time", s.res.Rounds[1]), gin.H{"start_time": "25:00"}, http.StatusBadRequest},
		{"unknown adjudicator note", "POST", fmt.Sprintf("/api/admin/tournaments/%d/adjudicators/9999/note", s.res.TournamentID), gin.H{"note": "x"}, http.StatusNotFound},
		{"copy availability into first round", "POST", fmt.Sprintf("/api/admin/rounds/%d/availability/adjudicators/copy", s.res.Rounds[1]), nil, http.StatusNotFound},
		{"unknown venue", "PUT", fmt.Sprintf("/api/admin/rounds/%d/venues", s.res.Rounds[1]), gin.H{"debates": []gin.H{{"debate_id": s.res.Debates[1][0], "venue_id": 9999}}}, http.StatusBadRequest},
		{"test score out of range", "POST", fmt.Sprintf("/api/admin/tournaments/%d/adjudicators/%d/test-score", s.res.TournamentID, s.res.Adjudicators["Chair"]), gin.H{"score": "11"}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Errorf("Expected status %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestDrawAndAvailabilityEndpoints(t *testing.T) {
	s := setupTestServer(t)
	draftID := s.res.Rounds[3]

	w := s.do(t, "POST", fmt.Sprintf("/api/admin/rounds/%d/draw/confirm", draftID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var confirmed struct {
		Data models.Round `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("failed to decode round: %v", err)
	}
	if confirmed.Data.DrawStatus != models.DrawStatusConfirmed {
		t.Errorf("Expected confirmed draw, got %q", confirmed.Data.DrawStatus)
	}

	panelID := s.res.Adjudicators["Panel"]
	w = s.do(t, "PUT", fmt.Sprintf("/api/admin/rounds/%d/availability/adjudicators", draftID),
		gin.H{"adjudicator_ids": []uint{panelID, panelID}})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, "GET", fmt.Sprintf("/api/admin/rounds/%d/availability/adjudicators", draftID), nil)
	var available struct {
		Data []uint `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &available); err != nil {
		t.Fatalf("failed to decode availability: %v", err)
	}
	if len(available.Data) != 1 || available.Data[0] != panelID {
		t.Errorf("Expected [%d], got %v", panelID, available.Data)
	}
}

func TestDivisionEndpoints(t *testing.T) {
	s := setupTestServer(t)
	tid := s.res.TournamentID

	w := s.do(t, "POST", fmt.Sprintf("/api/admin/tournaments/%d/divisions/allocate", tid), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data models.DivisionAllocationResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode divisions: %v", err)
	}
	if created.Data.Assigned != 2 || created.Data.PreferenceHits != 2 {
		t.Errorf("Expected 2 assigned with 2 preference hits, got %+v", created.Data)
	}

	w = s.do(t, "GET", fmt.Sprintf("/api/admin/tournaments/%d/divisions", tid), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var listed struct {
		Data []models.VenueGroupSummary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode summaries: %v", err)
	}
	if len(listed.Data) != 1 || listed.Data[0].TotalTeams != 2 {
		t.Errorf("Expected one venue group holding 2 teams, got %+v", listed.Data)
	}

	w = s.do(t, "PUT", fmt.Sprintf("/api/admin/tournaments/%d/divisions", tid), gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing assignments, got %d", w.Code)
	}
}
