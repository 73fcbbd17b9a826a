package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sightreadpro-backend/internal/data/repos/testutil"
	"github.com/yungbote/sightreadpro-backend/internal/data/store"
	httpH "github.com/yungbote/sightreadpro-backend/internal/http/handlers"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
	"github.com/yungbote/sightreadpro-backend/internal/scores"
	"github.com/yungbote/sightreadpro-backend/internal/services"
)

type harness struct {
	router  *gin.Engine
	store   *store.Store
	objects *objectstore.LocalStore
	metrics *observability.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	now := time.Date(2026, 9, 14, 9, 30, 0, 0, time.UTC)
	s := store.New(testutil.SeededDB(t), log, store.WithClock(func() time.Time { return now }))
	objects, err := objectstore.NewLocalStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	m := observability.NewMetrics()

	progress := services.NewProgressService(log, s, m)
	catalog := services.NewCatalogService(log, s)
	ingestion := services.NewIngestionService(log, objects, scores.NewMusicXMLParser(log), m, services.IngestionConfig{MaxBytes: 1 << 20})

	r := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         m,
		ServiceName:     "sightreadpro-test",
		HealthHandler:   httpH.NewHealthHandler(log, s, httpH.HealthConfig{DBDriver: "sqlite", StorageMode: "local", UploadMaxBytes: 1 << 20}),
		ExerciseHandler: httpH.NewExerciseHandler(log, catalog),
		UserHandler:     httpH.NewUserHandler(log, progress),
		UploadHandler:   httpH.NewUploadHandler(log, ingestion),
	})
	return &harness{router: r, store: s, objects: objects, metrics: m}
}

func (h *harness) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Field   string `json:"field"`
	} `json:"error"`
}

func TestSubmitPerformanceNewUser(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/users/submit_performance", `{"user_id":"ada","exercise_id":1,"score":100,"accuracy":98.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var out services.PerformanceResult
	decode(t, rec, &out)
	if out.XPEarned != 20 || out.NewTotalXP != 20 || out.NewLevel != 1 || out.NewStreak != 1 || !out.StreakUpdated {
		t.Fatalf("result: %+v", out)
	}
}

func TestSubmitPerformanceRejections(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"score too high", `{"user_id":"ada","exercise_id":1,"score":150}`, 400, "score"},
		{"fractional score", `{"user_id":"ada","exercise_id":1,"score":99.5}`, 400, "score"},
		{"missing score", `{"user_id":"ada","exercise_id":1}`, 400, "score"},
		{"quoted score", `{"user_id":"ada","exercise_id":1,"score":"50"}`, 400, "score"},
		{"boolean score", `{"user_id":"ada","exercise_id":1,"score":true}`, 400, "score"},
		{"null score", `{"user_id":"ada","exercise_id":1,"score":null}`, 400, "score"},
		{"quoted exercise", `{"user_id":"ada","exercise_id":"1","score":50}`, 400, "exercise_id"},
		{"missing user", `{"exercise_id":1,"score":50}`, 400, "user_id"},
		{"missing exercise", `{"user_id":"ada","score":50}`, 400, "exercise_id"},
		{"nested data", `{"user_id":"ada","exercise_id":1,"score":50,"performance_data":{"a":{"b":1}}}`, 400, "performance_data"},
		{"malformed", `{"user_id":`, 400, ""},
		{"unknown exercise", `{"user_id":"ada","exercise_id":404,"score":50}`, 404, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/users/submit_performance", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status %d want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			var eb errorBody
			decode(t, rec, &eb)
			if eb.Error.Message == "" || eb.Error.Field != tc.field {
				t.Fatalf("error body: %s", rec.Body.String())
			}
		})
	}

	if u, err := h.store.GetUser(context.Background(), "ada"); err != nil || u != nil {
		t.Fatalf("rejected submissions must not create the user: %+v err=%v", u, err)
	}
	var n int64
	h.store.DB().Table("performances").Count(&n)
	if n != 0 {
		t.Fatalf("rejected submissions persisted %d performances", n)
	}
}

func TestUserEndpoints(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(t, http.MethodGet, "/users/grace/stats", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("stats for unknown user: %d", rec.Code)
	}
	if rec := h.do(t, http.MethodGet, "/users/grace/performances", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("performances for unknown user: %d", rec.Code)
	}

	rec := h.do(t, http.MethodGet, "/users/grace/profile", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"user_id":"grace"`) {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body.String())
	}
	rec = h.do(t, http.MethodGet, "/users/grace/progress", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"current_level":1`) {
		t.Fatalf("progress: %d %s", rec.Code, rec.Body.String())
	}

	h.do(t, http.MethodPost, "/users/submit_performance", `{"user_id":"grace","exercise_id":2,"score":90}`)
	rec = h.do(t, http.MethodGet, "/users/grace/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}
	var stats services.UserStats
	decode(t, rec, &stats)
	if stats.CurrentStats.XP != 19 || !stats.PracticeInfo.PracticedToday || !stats.Achievements.FirstExercise {
		t.Fatalf("stats: %+v", stats)
	}

	rec = h.do(t, http.MethodGet, "/users/grace/performances?limit=5&offset=2", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"performances":[]`) {
		t.Fatalf("performances: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodGet, "/users/grace/performances?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: %d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/users/leaderboard", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"leaderboard":[]`) {
		t.Fatalf("leaderboard: %d %s", rec.Code, rec.Body.String())
	}
	rec = h.do(t, http.MethodPost, "/users/grace/reset", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "warning") {
		t.Fatalf("reset: %d %s", rec.Code, rec.Body.String())
	}
}

func TestExerciseEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/exercises/2", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title":"G Major Triad"`) {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"notes":["G4","B4","D5","D5","B4","G4"]`) {
		t.Fatalf("notes not decoded: %s", rec.Body.String())
	}
	rec = h.do(t, http.MethodGet, "/exercises/99", "")
	var eb errorBody
	decode(t, rec, &eb)
	if rec.Code != http.StatusNotFound || eb.Error.Code != "exercise_not_found" {
		t.Fatalf("missing: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodGet, "/exercises/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id: %d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/exercises/?difficulty=hard", "")
	var list []map[string]any
	decode(t, rec, &list)
	if rec.Code != http.StatusOK || len(list) != 1 || list[0]["difficulty"] != "hard" {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	cases := []struct {
		path   string
		status int
	}{
		{"/exercises/daily/ada?limit=2", 200},
		{"/exercises/daily/ada?limit=50", 400},
		{"/exercises/daily/ada?difficulty=impossible", 400},
		{"/exercises/difficulty/medium", 200},
		{"/exercises/difficulty/expert", 400},
		{"/exercises/random/2", 200},
		{"/exercises/random/0", 400},
		{"/exercises/search/major?limit=2", 200},
		{"/exercises/stats/summary", 200},
	}
	for _, tc := range cases {
		if rec := h.do(t, http.MethodGet, tc.path, ""); rec.Code != tc.status {
			t.Fatalf("%s: %d want %d (%s)", tc.path, rec.Code, tc.status, rec.Body.String())
		}
	}

	rec = h.do(t, http.MethodGet, "/exercises/daily/ada?limit=2", "")
	var daily services.DailyExercises
	decode(t, rec, &daily)
	if daily.TotalCount != 2 || daily.Date != "2026-09-14" {
		t.Fatalf("daily: %+v", daily)
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte(content))
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func musicXML(measures int) string {
	var b strings.Builder
	b.WriteString(`<score-partwise version="4.0"><part-list><score-part id="P1"/></part-list><part id="P1">`)
	for i := 1; i <= measures; i++ {
		fmt.Fprintf(&b, `<measure number="%d"><note><rest/><duration>4</duration></note></measure>`, i)
	}
	b.WriteString(`</part></score-partwise>`)
	return b.String()
}

func TestUploadFlow(t *testing.T) {
	h := newHarness(t)

	body, ct := multipartBody(t, "file", "etude.musicxml", musicXML(12))
	req := httptest.NewRequest(http.MethodPost, "/upload/score", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var up services.UploadResult
	decode(t, rec, &up)
	if up.ParseStatus != services.ParseStatusParsed || len(up.Exercises) != 3 {
		t.Fatalf("upload result: %+v", up)
	}
	for i, want := range []string{"easy", "medium", "hard"} {
		if string(up.Exercises[i].Difficulty) != want || up.Exercises[i].XPReward != 10+5*i {
			t.Fatalf("exercise %d: %+v", i, up.Exercises[i])
		}
	}

	req = httptest.NewRequest(http.MethodPost, "/upload/score", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/upload/files", "")
	var files services.FileList
	decode(t, rec, &files)
	if files.TotalCount != 1 || files.Files[0].Filename != up.Filename {
		t.Fatalf("files: %+v", files)
	}

	if rec := h.do(t, http.MethodDelete, "/upload/files/"+up.Filename, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodDelete, "/upload/files/"+up.Filename, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
	if rec := h.do(t, http.MethodDelete, "/upload/files/..secret", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("dot-dot name: %d", rec.Code)
	}
}

func TestUploadMalformedScoreFallsBack(t *testing.T) {
	h := newHarness(t)

	body, ct := multipartBody(t, "file", "etude.musicxml", `<score-partwise></score-partwise><measure/>`)
	req := httptest.NewRequest(http.MethodPost, "/upload/score", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var up services.UploadResult
	decode(t, rec, &up)
	if up.ParseStatus != services.ParseStatusFallback || len(up.Exercises) != 1 {
		t.Fatalf("upload result: %+v", up)
	}
}

func TestHealthAndInfo(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
	rec = h.do(t, http.MethodGet, "/api/info", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"max_file_size":"1MB"`) {
		t.Fatalf("info: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
		t.Fatalf("root: %d", rec.Code)
	}
	if rec := h.do(t, http.MethodGet, "/nowhere", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sightread_api_requests_total") {
		t.Fatalf("metrics: %d %s", rec.Code, rec.Body.String())
	}

	if err := h.store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	rec = h.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), `"status":"unhealthy"`) {
		t.Fatalf("health after close: %d %s", rec.Code, rec.Body.String())
	}
	rec = h.do(t, http.MethodGet, "/exercises/1", "")
	var eb errorBody
	decode(t, rec, &eb)
	if rec.Code != http.StatusInternalServerError || eb.Error.Code != "storage_error" || strings.Contains(eb.Error.Message, "sql") {
		t.Fatalf("storage failure: %d %s", rec.Code, rec.Body.String())
	}
}
