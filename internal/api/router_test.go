// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/metadata"
	"github.com/tomtom215/animerec/internal/recommend"
)

type fakeMetadata struct {
	mu    sync.Mutex
	calls int
}

var fakeGenreTable = map[int][]string{
	1: {"Action"},
	2: {"Comedy"},
	3: {"Comedy", "Drama"},
}

func (f *fakeMetadata) Details(_ context.Context, id int) metadata.Details {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	genres, ok := fakeGenreTable[id]
	if !ok {
		return metadata.Placeholder(id)
	}
	return metadata.Details{ItemID: id, Synopsis: "synopsis " + strconv.Itoa(id), Genres: genres, MediaType: "TV", Episodes: "12", Year: "2001"}
}

func (f *fakeMetadata) Genres(ctx context.Context, id int) []string {
	return f.Details(ctx, id).Genres
}

func testDataset() *dataset.Dataset {
	return dataset.New(
		[]dataset.CatalogEntry{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}},
		[]dataset.Rating{
			{UserID: 1, ItemID: 1, Value: 5},
			{UserID: 2, ItemID: 1, Value: 4},
			{UserID: 1, ItemID: 2, Value: 5},
			{UserID: 2, ItemID: 2, Value: 4},
			{UserID: 1, ItemID: 3, Value: 1},
		},
	)
}

func newTestServer(t *testing.T, build bool, mwCfg *ChiMiddlewareConfig) (http.Handler, *fakeMetadata) {
	t.Helper()
	meta := &fakeMetadata{}
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), nil, meta)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if build {
		if err := engine.BuildFrom(context.Background(), testDataset()); err != nil {
			t.Fatalf("BuildFrom: %v", err)
		}
	}
	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitRequests = 0
	}
	router := NewRouter(NewHandler(engine, meta, 5*time.Second), NewChiMiddleware(mwCfg))
	return router.Setup(), meta
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
		}
	}
	return rec, env
}

func TestStatusCodes(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	tests := []struct {
		name   string
		method string
		target string
		status int
		code   string
	}{
		{"live", http.MethodGet, "/api/v1/health/live", http.StatusOK, ""},
		{"ready", http.MethodGet, "/api/v1/health/ready", http.StatusOK, ""},
		{"status", http.MethodGet, "/api/v1/status", http.StatusOK, ""},
		{"recommendations", http.MethodGet, "/api/v1/recommendations?title=A&n=1", http.StatusOK, ""},
		{"unknown title", http.MethodGet, "/api/v1/recommendations?title=Nope", http.StatusOK, ""},
		{"missing title", http.MethodGet, "/api/v1/recommendations", http.StatusBadRequest, ErrCodeValidationFailed},
		{"non-integer n", http.MethodGet, "/api/v1/recommendations?title=A&n=ten", http.StatusBadRequest, ErrCodeBadRequest},
		{"n out of range", http.MethodGet, "/api/v1/recommendations?title=A&n=501", http.StatusBadRequest, ErrCodeValidationFailed},
		{"bad details flag", http.MethodGet, "/api/v1/recommendations?title=A&details=maybe", http.StatusBadRequest, ErrCodeBadRequest},
		{"leaderboard", http.MethodGet, "/api/v1/leaderboard?min_votes=0", http.StatusOK, ""},
		{"leaderboard limit too large", http.MethodGet, "/api/v1/leaderboard?limit=5000", http.StatusBadRequest, ErrCodeValidationFailed},
		{"leaderboard negative floor", http.MethodGet, "/api/v1/leaderboard?min_votes=-5", http.StatusBadRequest, ErrCodeValidationFailed},
		{"lookup", http.MethodGet, "/api/v1/items/lookup?title=B", http.StatusOK, ""},
		{"lookup unknown", http.MethodGet, "/api/v1/items/lookup?title=Nope", http.StatusNotFound, ErrCodeNotFound},
		{"lookup missing title", http.MethodGet, "/api/v1/items/lookup", http.StatusBadRequest, ErrCodeValidationFailed},
		{"item", http.MethodGet, "/api/v1/items/2", http.StatusOK, ""},
		{"item not numeric", http.MethodGet, "/api/v1/items/abc", http.StatusBadRequest, ErrCodeBadRequest},
		{"item unknown", http.MethodGet, "/api/v1/items/99", http.StatusNotFound, ErrCodeNotFound},
		{"genres", http.MethodGet, "/api/v1/genres", http.StatusOK, ""},
		{"titles", http.MethodGet, "/api/v1/titles", http.StatusOK, ""},
		{"unknown route", http.MethodGet, "/api/v1/nope", http.StatusNotFound, ErrCodeNotFound},
		{"wrong method", http.MethodPost, "/api/v1/recommendations", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := do(t, h, tt.method, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("%s %s = %d, want %d (%s)", tt.method, tt.target, rec.Code, tt.status, rec.Body.String())
			}
			if tt.code == "" {
				if !env.Success {
					t.Errorf("success = false, body %s", rec.Body.String())
				}
				return
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", env.Error, tt.code)
			}
		})
	}
}

func TestNotReadyAnswers503(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, false, nil)

	for _, target := range []string{
		"/api/v1/health/ready",
		"/api/v1/recommendations?title=A",
		"/api/v1/leaderboard",
		"/api/v1/titles",
		"/api/v1/items/1",
	} {
		rec, env := do(t, h, http.MethodGet, target)
		if rec.Code != http.StatusServiceUnavailable || env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
			t.Errorf("GET %s = %d %+v, want 503", target, rec.Code, env.Error)
		}
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live = %d, want 200", rec.Code)
	}
}

func TestRecommendationsPayload(t *testing.T) {
	t.Parallel()
	h, meta := newTestServer(t, true, nil)

	_, env := do(t, h, http.MethodGet, "/api/v1/recommendations?title=A&n=2")
	var resp RecommendationsResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Title != "A" || len(resp.Recommendations) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if first := resp.Recommendations[0]; first.Title != "B" || first.ItemID != 2 || first.Score < 0.999 || first.Details != nil {
		t.Errorf("first = %+v", first)
	}
	if env.Meta == nil || env.Meta.Count == nil || *env.Meta.Count != 2 {
		t.Errorf("meta = %+v, want count 2", env.Meta)
	}
	if meta.calls != 0 {
		t.Errorf("metadata calls = %d, want 0 without details", meta.calls)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/recommendations?title=A&n=2&details=true")
	resp = RecommendationsResponse{}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, item := range resp.Recommendations {
		if item.Details == nil || item.Details.ItemID != item.ItemID || item.Details.MediaType != "TV" {
			t.Errorf("item %+v missing details", item)
		}
	}
}

func TestRecommendationsUnknownTitleCountZero(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations?title=Unknown")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp RecommendationsResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Recommendations == nil || len(resp.Recommendations) != 0 {
		t.Errorf("recommendations = %#v, want empty list", resp.Recommendations)
	}
	if env.Meta == nil || env.Meta.Count == nil || *env.Meta.Count != 0 {
		t.Errorf("meta = %+v, want count 0", env.Meta)
	}
	if !strings.Contains(rec.Body.String(), `"recommendations":[]`) {
		t.Errorf("body %s should render an empty array", rec.Body.String())
	}
}

func TestLeaderboardPayload(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	tests := []struct {
		target   string
		want     []string
		minVotes int
	}{
		{"/api/v1/leaderboard?min_votes=0", []string{"A", "B", "C"}, 0},
		{"/api/v1/leaderboard", []string{}, 10},
		{"/api/v1/leaderboard?min_votes=0&genres=comedy", []string{"B", "C"}, 0},
		{"/api/v1/leaderboard?min_votes=0&genres=drama&genres=action", []string{"A", "C"}, 0},
		{"/api/v1/leaderboard?min_votes=0&genres=Comedy,Action&limit=1", []string{"A"}, 0},
	}
	for _, tt := range tests {
		_, env := do(t, h, http.MethodGet, tt.target)
		var resp LeaderboardResponse
		if err := json.Unmarshal(env.Data, &resp); err != nil {
			t.Fatalf("decode %s: %v", tt.target, err)
		}
		got := make([]string, len(resp.Entries))
		for i, e := range resp.Entries {
			got[i] = e.Title
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("GET %s = %v, want %v", tt.target, got, tt.want)
		}
		if resp.MinVotes != tt.minVotes {
			t.Errorf("GET %s min_votes = %d, want %d", tt.target, resp.MinVotes, tt.minVotes)
		}
	}
}

func TestItemEndpoints(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	_, env := do(t, h, http.MethodGet, "/api/v1/items/lookup?title=C")
	var item ItemResponse
	if err := json.Unmarshal(env.Data, &item); err != nil || item.ItemID != 3 || item.Title != "C" {
		t.Errorf("lookup = %+v, %v", item, err)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/items/3?details=true")
	item = ItemResponse{}
	if err := json.Unmarshal(env.Data, &item); err != nil || item.Title != "C" || item.Details == nil {
		t.Fatalf("item = %+v, %v", item, err)
	}
	if !slices.Equal(item.Details.Genres, []string{"Comedy", "Drama"}) {
		t.Errorf("details = %+v", item.Details)
	}
}

func TestTitlesAndGenres(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	_, env := do(t, h, http.MethodGet, "/api/v1/titles?q=b")
	var titles []string
	if err := json.Unmarshal(env.Data, &titles); err != nil || !slices.Equal(titles, []string{"B"}) {
		t.Errorf("titles = %v, %v", titles, err)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/genres")
	var genres []string
	if err := json.Unmarshal(env.Data, &genres); err != nil || len(genres) != 13 || genres[0] != "Action" {
		t.Errorf("genres = %v, %v", genres, err)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/genres", http.NoBody)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("X-Request-ID header = %q", got)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Meta == nil || env.Meta.RequestID != "req-abc" {
		t.Errorf("meta = %+v", env.Meta)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/genres")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	h, _ := newTestServer(t, true, cfg)

	for i := range 2 {
		if rec, _ := do(t, h, http.MethodGet, "/api/v1/genres"); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	rec, env := do(t, h, http.MethodGet, "/api/v1/genres")
	if rec.Code != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("third request = %d %+v, want 429", rec.Code, env.Error)
	}

	// Health probes are exempt.
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	do(t, h, http.MethodGet, "/api/v1/genres")
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Errorf("metrics = %d", rec.Code)
	}
}

func TestGzipCompression(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/genres", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var env envelope
	if err := json.NewDecoder(zr).Decode(&env); err != nil || !env.Success {
		t.Errorf("decode gzip body: %v %+v", err, env)
	}
}
