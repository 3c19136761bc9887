package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mirrorbrain/internal/domain"
	"mirrorbrain/internal/repository"
	"mirrorbrain/internal/service"
)

type mockBrainRepo struct {
	brains  map[string]domain.Brain
	order   []string
	nearest []domain.Brain
	err     error
}

func newMockBrainRepo() *mockBrainRepo {
	return &mockBrainRepo{brains: make(map[string]domain.Brain)}
}

func (m *mockBrainRepo) Create(_ context.Context, brain domain.Brain) error {
	if m.err != nil {
		return m.err
	}
	m.brains[brain.ID] = brain
	m.order = append(m.order, brain.ID)
	return nil
}

func (m *mockBrainRepo) GetByID(_ context.Context, id string) (domain.Brain, error) {
	if m.err != nil {
		return domain.Brain{}, m.err
	}
	brain, ok := m.brains[id]
	if !ok {
		return domain.Brain{}, pgx.ErrNoRows
	}
	return brain, nil
}

func (m *mockBrainRepo) Update(_ context.Context, brain domain.Brain) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.brains[brain.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.brains[brain.ID] = brain
	return nil
}

func (m *mockBrainRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.brains[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.brains, id)
	return nil
}

func (m *mockBrainRepo) List(_ context.Context, opts repository.ListOptions) ([]domain.Brain, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []domain.Brain
	for _, id := range m.order {
		brain, ok := m.brains[id]
		if !ok {
			continue
		}
		if opts.PublicOnly && !brain.Public {
			continue
		}
		if opts.Archetype != "" && brain.Archetype != opts.Archetype {
			continue
		}
		out = append(out, brain)
	}
	return out, len(out), nil
}

func (m *mockBrainRepo) Search(_ context.Context, query string) ([]domain.Brain, error) {
	if m.err != nil {
		return nil, m.err
	}
	needle := strings.ToLower(query)
	var out []domain.Brain
	for _, id := range m.order {
		brain, ok := m.brains[id]
		if !ok || !brain.Public {
			continue
		}
		if strings.Contains(strings.ToLower(string(brain.Archetype)), needle) ||
			strings.Contains(strings.ToLower(brain.ID), needle) {
			out = append(out, brain)
		}
	}
	return out, nil
}

func (m *mockBrainRepo) Leaderboard(_ context.Context, limit int) ([]domain.Brain, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Brain
	for _, id := range m.order {
		if brain, ok := m.brains[id]; ok && brain.Public {
			out = append(out, brain)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeCount > out[j].NodeCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockBrainRepo) Nearest(_ context.Context, _ domain.Dimensions, excludeID string, limit int) ([]domain.Brain, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Brain
	for _, brain := range m.nearest {
		if brain.ID == excludeID {
			continue
		}
		out = append(out, brain)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func sampleBrain(id string) domain.Brain {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return domain.Brain{
		ID:        id,
		Archetype: domain.ArchetypeArchitect,
		Dimensions: domain.Dimensions{
			Topology: 0.9, Velocity: 0.3, Depth: 0.85, Entropy: 0.4, Evolution: 0.5,
		},
		NodeCount:       4200,
		ConnectionCount: 900,
		Public:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func setupBrainRouter(repo *mockBrainRepo, claims *service.ClaimTokenService, cache service.LeaderboardCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBrainHandler(zap.NewNop(), repo, claims, cache)
	r.GET("/api/brain/:id", h.GetBrain)
	r.GET("/api/brain/:id/stats", h.GetBrainStats)
	r.PUT("/api/brain/:id", h.UpdateBrain)
	r.DELETE("/api/brain/:id", h.DeleteBrain)
	r.GET("/api/brains", h.ListBrains)
	r.GET("/api/brains/leaderboard", h.GetLeaderboard)
	r.GET("/api/brains/search", h.SearchBrains)
	r.GET("/api/brains/resonant/:id", h.GetResonantBrains)
	return r
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	return performRequestWithHeaders(r, method, path, body, nil)
}

func performRequestWithHeaders(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func openClaims() *service.ClaimTokenService {
	return service.NewClaimTokenService("", 0)
}

func TestBrainHandlerGetBrain_Success(t *testing.T) {
	repo := newMockBrainRepo()
	brain := sampleBrain("BRAIN-aaaa0001")
	_ = repo.Create(context.Background(), brain)
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brain/BRAIN-aaaa0001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got domain.Brain
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.ID != brain.ID || got.Archetype != brain.Archetype {
		t.Fatalf("unexpected brain: %+v", got)
	}
}

func TestBrainHandlerGetBrain_NotFound(t *testing.T) {
	r := setupBrainRouter(newMockBrainRepo(), openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brain/BRAIN-missing1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestBrainHandlerGetStats(t *testing.T) {
	repo := newMockBrainRepo()
	_ = repo.Create(context.Background(), sampleBrain("BRAIN-aaaa0001"))
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brain/BRAIN-aaaa0001/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var stats domain.BrainStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if stats.NodeCount != 4200 || stats.ConnectionCount != 900 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	wantDensity := 900.0 / 4200.0
	if stats.Density != wantDensity {
		t.Fatalf("expected density %f, got %f", wantDensity, stats.Density)
	}
}

func TestBrainHandlerUpdate_RecomputesArchetype(t *testing.T) {
	repo := newMockBrainRepo()
	_ = repo.Create(context.Background(), sampleBrain("BRAIN-aaaa0001"))
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodPut, "/api/brain/BRAIN-aaaa0001", map[string]any{
		"dimensions": map[string]float64{
			"topology": 0.1,
			"velocity": 1.0,
			"depth":    0.1,
		},
		"public": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got domain.Brain
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.Archetype != domain.ArchetypeBuilder {
		t.Fatalf("expected recomputed archetype builder, got %s", got.Archetype)
	}
	if !got.Public {
		t.Fatalf("expected public flag updated")
	}

	stored, _ := repo.GetByID(context.Background(), "BRAIN-aaaa0001")
	if stored.Dimensions.Velocity != 1.0 {
		t.Fatalf("expected persisted velocity 1.0, got %f", stored.Dimensions.Velocity)
	}
}

func TestBrainHandlerUpdate_RejectsBadDimensions(t *testing.T) {
	repo := newMockBrainRepo()
	_ = repo.Create(context.Background(), sampleBrain("BRAIN-aaaa0001"))
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodPut, "/api/brain/BRAIN-aaaa0001", map[string]any{
		"dimensions": map[string]float64{"charisma": 0.5},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown dimension, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodPut, "/api/brain/BRAIN-aaaa0001", map[string]any{
		"dimensions": map[string]float64{"topology": 1.5},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for out of range value, got %d", rec.Code)
	}
}

func TestBrainHandlerUpdate_OwnedBrainRequiresToken(t *testing.T) {
	claims := service.NewClaimTokenService("test-secret", time.Hour)
	repo := newMockBrainRepo()
	brain := sampleBrain("BRAIN-aaaa0001")
	brain.UserID = "user-1"
	_ = repo.Create(context.Background(), brain)
	r := setupBrainRouter(repo, claims, nil)

	body := map[string]any{"public": true}

	rec := performRequest(r, http.MethodPut, "/api/brain/BRAIN-aaaa0001", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	token, err := claims.Generate(brain.ID, brain.UserID)
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	rec = performRequestWithHeaders(r, http.MethodPut, "/api/brain/BRAIN-aaaa0001", body, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with token, got %d", rec.Code)
	}
}

func TestBrainHandlerDelete(t *testing.T) {
	repo := newMockBrainRepo()
	_ = repo.Create(context.Background(), sampleBrain("BRAIN-aaaa0001"))
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodDelete, "/api/brain/BRAIN-aaaa0001", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodGet, "/api/brain/BRAIN-aaaa0001", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
}

func TestBrainHandlerDelete_NotFound(t *testing.T) {
	r := setupBrainRouter(newMockBrainRepo(), openClaims(), nil)

	rec := performRequest(r, http.MethodDelete, "/api/brain/BRAIN-missing1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestBrainHandlerList_PublicOnly(t *testing.T) {
	repo := newMockBrainRepo()
	public := sampleBrain("BRAIN-aaaa0001")
	public.Public = true
	_ = repo.Create(context.Background(), public)
	_ = repo.Create(context.Background(), sampleBrain("BRAIN-bbbb0002"))
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brains", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Brains []domain.Brain `json:"brains"`
		Total  int            `json:"total"`
		Page   int            `json:"page"`
		Limit  int            `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 1 || len(resp.Brains) != 1 {
		t.Fatalf("expected only the public brain, got %+v", resp)
	}
	if resp.Brains[0].ID != "BRAIN-aaaa0001" {
		t.Fatalf("unexpected brain in list: %s", resp.Brains[0].ID)
	}
	if resp.Page != 1 || resp.Limit != 20 {
		t.Fatalf("expected default paging, got page=%d limit=%d", resp.Page, resp.Limit)
	}
}

func TestBrainHandlerList_ArchetypeFilter(t *testing.T) {
	repo := newMockBrainRepo()
	architect := sampleBrain("BRAIN-aaaa0001")
	architect.Public = true
	_ = repo.Create(context.Background(), architect)

	builder := sampleBrain("BRAIN-bbbb0002")
	builder.Public = true
	builder.Archetype = domain.ArchetypeBuilder
	_ = repo.Create(context.Background(), builder)
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brains?archetype=builder", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Brains []domain.Brain `json:"brains"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Brains) != 1 || resp.Brains[0].Archetype != domain.ArchetypeBuilder {
		t.Fatalf("expected only builder brains, got %+v", resp.Brains)
	}
}

func TestBrainHandlerLeaderboard_UsesCache(t *testing.T) {
	repo := newMockBrainRepo()
	top := sampleBrain("BRAIN-aaaa0001")
	top.Public = true
	top.NodeCount = 9000
	_ = repo.Create(context.Background(), top)

	second := sampleBrain("BRAIN-bbbb0002")
	second.Public = true
	second.NodeCount = 3000
	_ = repo.Create(context.Background(), second)

	cache := service.NewMemoryLeaderboardCache(time.Minute)
	r := setupBrainRouter(repo, openClaims(), cache)

	rec := performRequest(r, http.MethodGet, "/api/brains/leaderboard?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Leaderboard []domain.Brain `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Leaderboard) != 2 || resp.Leaderboard[0].ID != "BRAIN-aaaa0001" {
		t.Fatalf("expected node-count ordering, got %+v", resp.Leaderboard)
	}

	// El segundo hit debe salir del cache aunque el repo cambie.
	repo.err = pgx.ErrTxClosed
	rec = performRequest(r, http.MethodGet, "/api/brains/leaderboard?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cached status 200, got %d", rec.Code)
	}
}

func TestBrainHandlerSearch(t *testing.T) {
	repo := newMockBrainRepo()
	public := sampleBrain("BRAIN-aaaa0001")
	public.Public = true
	_ = repo.Create(context.Background(), public)
	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brains/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without q, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodGet, "/api/brains/search?q=architect", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Results []domain.Brain `json:"results"`
		Query   string         `json:"query"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Results) != 1 || resp.Query != "architect" {
		t.Fatalf("unexpected search response: %+v", resp)
	}
}

func TestBrainHandlerResonant(t *testing.T) {
	repo := newMockBrainRepo()
	base := sampleBrain("BRAIN-aaaa0001")
	_ = repo.Create(context.Background(), base)

	match := sampleBrain("BRAIN-bbbb0002")
	match.Public = true
	repo.nearest = []domain.Brain{match}

	r := setupBrainRouter(repo, openClaims(), nil)

	rec := performRequest(r, http.MethodGet, "/api/brains/resonant/BRAIN-aaaa0001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		BrainID string `json:"brain_id"`
		Matches []struct {
			Brain     domain.Brain           `json:"brain"`
			Resonance domain.ResonanceResult `json:"resonance"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.BrainID != "BRAIN-aaaa0001" || len(resp.Matches) != 1 {
		t.Fatalf("unexpected resonant response: %+v", resp)
	}
	if resp.Matches[0].Resonance.OverlapScore != 1 {
		t.Fatalf("expected identical dimensions overlap 1, got %f", resp.Matches[0].Resonance.OverlapScore)
	}

	rec = performRequest(r, http.MethodGet, "/api/brains/resonant/BRAIN-missing1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
