package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-digest/app/broadcast"
	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/feed"
	"github.com/lysyi3m/rss-digest/app/graph"
	"github.com/lysyi3m/rss-digest/app/logbuf"
	"github.com/lysyi3m/rss-digest/app/pipeline"
)

var testToday = time.Date(2024, 5, 17, 10, 0, 0, 0, time.Local)

type fakeRunner struct {
	calls  int
	ctxErr error
}

func (r *fakeRunner) Run(ctx context.Context) pipeline.Result {
	r.calls++
	r.ctxErr = ctx.Err()
	return pipeline.Result{RunID: "run-1", Status: pipeline.StatusSuccess, Message: pipeline.SuccessMessage, Date: "2024-05-17"}
}

type fakeBroadcaster struct {
	summaries []string
	script    string
	err       error
	spoken    string
}

func (b *fakeBroadcaster) Summaries(context.Context) ([]string, error) {
	return b.summaries, b.err
}

func (b *fakeBroadcaster) Generate(context.Context) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if len(b.summaries) == 0 {
		return "", broadcast.ErrNothingToBroadcast
	}
	return b.script, nil
}

func (b *fakeBroadcaster) Speak(_ context.Context, text string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if text == "" {
		return "", broadcast.ErrNothingToBroadcast
	}
	b.spoken = text
	return "/static/audio/broadcast_20240517100000.mp3", nil
}

type sentenceSplitter struct{}

func (sentenceSplitter) Sentences(text string) ([]string, error) {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

type testEnv struct {
	router      *gin.Engine
	runner      *fakeRunner
	broadcaster *fakeBroadcaster
	store       *digest.FileStore
	registry    *feed.Registry
	logs        *logbuf.Ring
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	registry := feed.NewRegistry(filepath.Join(dir, "feeds.yaml"))
	if err := registry.Load(); err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		runner:      &fakeRunner{},
		broadcaster: &fakeBroadcaster{summaries: []string{"One.", "Two."}, script: "Good evening."},
		store:       digest.NewFileStore(filepath.Join(dir, "output")),
		registry:    registry,
		logs:        logbuf.NewRing(10),
	}

	extractor := graph.NewExtractor(graph.NewGazetteer(map[string]string{
		"Alice": "PERSON",
		"Bob":   "PERSON",
		"Paris": "GPE",
	}), sentenceSplitter{})

	handler := NewHandler(env.runner, env.broadcaster, env.store, extractor, registry, env.logs)
	handler.now = func() time.Time { return testToday }
	env.router = NewServer(handler, apiKey, filepath.Join(dir, "audio"))

	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got %s", rec.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := decode(t, rec); body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestRunPipeline(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/api/run_pipeline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decode(t, rec)
	if body["status"] != "success" || body["message"] != pipeline.SuccessMessage {
		t.Errorf("Unexpected body: %v", body)
	}
	if env.runner.calls != 1 {
		t.Errorf("Expected 1 run, got %d", env.runner.calls)
	}
}

func TestRunPipelineIgnoresClientDisconnect(t *testing.T) {
	env := newTestEnv(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/run_pipeline", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if env.runner.calls != 1 {
		t.Fatalf("Expected 1 run, got %d", env.runner.calls)
	}
	if env.runner.ctxErr != nil {
		t.Errorf("Expected the run context to outlive the request, got: %v", env.runner.ctxErr)
	}
}

func TestAuthProtectsMutatingRoutes(t *testing.T) {
	env := newTestEnv(t, "secret")

	if rec := env.do(t, http.MethodGet, "/api/run_pipeline", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/run_pipeline", "", "X-API-Key", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/run_pipeline", "", "Authorization", "Bearer secret"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer key, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/summaries", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected read routes to stay open, got %d", rec.Code)
	}
	if env.runner.calls != 1 {
		t.Errorf("Expected exactly 1 authorized run, got %d", env.runner.calls)
	}
}

func TestSummariesAndBroadcast(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/api/summaries", "")
	summaries, ok := decode(t, rec)["summary"].([]interface{})
	if !ok || len(summaries) != 2 {
		t.Errorf("Expected 2 summaries, got %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/generate_broadcast", "")
	if rec.Code != http.StatusOK || decode(t, rec)["broadcast"] != "Good evening." {
		t.Errorf("Unexpected broadcast response: %d %s", rec.Code, rec.Body.String())
	}

	env.broadcaster.summaries = nil
	if rec := env.do(t, http.MethodGet, "/api/generate_broadcast", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without summaries, got %d", rec.Code)
	}

	env.broadcaster.err = errors.New("model offline")
	if rec := env.do(t, http.MethodGet, "/api/summaries", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on storage error, got %d", rec.Code)
	}
}

func TestGenerateAudio(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodPost, "/api/generate_audio", `{"text":"Good evening."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if url := decode(t, rec)["audio_url"]; url != "/static/audio/broadcast_20240517100000.mp3" {
		t.Errorf("Unexpected audio_url: %v", url)
	}
	if env.broadcaster.spoken != "Good evening." {
		t.Errorf("Expected text to be spoken, got %q", env.broadcaster.spoken)
	}

	if rec := env.do(t, http.MethodPost, "/api/generate_audio", `{"text":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty text, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/generate_audio", `not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad body, got %d", rec.Code)
	}

	env.broadcaster.err = errors.New("tts offline")
	if rec := env.do(t, http.MethodPost, "/api/generate_audio", `{"text":"x"}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on backend error, got %d", rec.Code)
	}
}

func TestGraphEndpoints(t *testing.T) {
	env := newTestEnv(t, "")

	if rec := env.do(t, http.MethodGet, "/api/graph/graph.json", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without digest, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/graph/", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"data":[]}` {
		t.Errorf("Expected empty data list, got %d %s", rec.Code, rec.Body.String())
	}

	if err := env.store.Write(testToday, []digest.Entry{}); err != nil {
		t.Fatal(err)
	}
	if rec := env.do(t, http.MethodGet, "/api/graph/graph.json", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for empty digest, got %d", rec.Code)
	}

	entries := []digest.Entry{
		{Title: "1", Summary: "Alice met Bob in Paris."},
		{Title: "2", Summary: "Bob left."},
	}
	if err := env.store.Write(testToday, entries); err != nil {
		t.Fatal(err)
	}

	rec = env.do(t, http.MethodGet, "/api/graph/graph.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view graph.VisualView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Nodes) != 3 || len(view.Links) != 3 {
		t.Errorf("Expected 3 nodes and 3 links, got %+v", view)
	}

	rec = env.do(t, http.MethodGet, "/api/graph/cypher?scope=paragraph", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	statements, _ := decode(t, rec)["statements"].([]interface{})
	if len(statements) != 3 {
		t.Errorf("Expected 3 statements, got %v", statements)
	}

	if rec := env.do(t, http.MethodGet, "/api/graph/graph.json?scope=document", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad scope, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/graph/", "")
	data, _ := decode(t, rec)["data"].([]interface{})
	if len(data) != 2 {
		t.Errorf("Expected 2 digest entries, got %v", data)
	}
}

func TestGraphCorruptDigest(t *testing.T) {
	env := newTestEnv(t, "")

	if err := os.MkdirAll(env.store.Dir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.store.PathFor(testToday), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if rec := env.do(t, http.MethodGet, "/api/graph/graph.json", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for corrupt digest, got %d", rec.Code)
	}
}

func TestSourceEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	source := `{"name":"BBC World","type":"rss","url":"https://feeds.bbci.co.uk/news/world/rss.xml","lang":"en","diversity_score":0.5,"perspective":"western","region":"uk"}`

	rec := env.do(t, http.MethodPost, "/api/graph/feeds", source)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := decode(t, rec)["message"]; msg != "Feed source added successfully" {
		t.Errorf("Unexpected message: %v", msg)
	}

	if rec := env.do(t, http.MethodPost, "/api/graph/feeds", source); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/graph/feeds", `{"name":"No URL","lang":"en"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid source, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/graph/feeds", "")
	sources, _ := decode(t, rec)["sources"].([]interface{})
	if len(sources) != 1 {
		t.Errorf("Expected 1 source, got %v", sources)
	}

	if rec := env.do(t, http.MethodDelete, "/api/graph/feeds/Missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing source, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/graph/feeds/BBC%20World", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.registry.Count() != 0 {
		t.Errorf("Expected registry to be empty, got %d", env.registry.Count())
	}
}

func TestLogEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	for _, msg := range []string{"one", "two", "three"} {
		env.logs.Push(logbuf.Entry{Timestamp: testToday, Level: "INFO", Message: msg})
	}

	rec := env.do(t, http.MethodGet, "/api/logs?limit=2", "")
	body := decode(t, rec)
	logs, _ := body["logs"].([]interface{})
	if len(logs) != 2 || body["has_more"] != true {
		t.Errorf("Expected 2 logs with more remaining, got %v", body)
	}
	if env.logs.Len() != 3 {
		t.Errorf("Expected logs to be kept, got %d", env.logs.Len())
	}

	rec = env.do(t, http.MethodGet, "/api/logs?limit=2&clear=true", "")
	if body := decode(t, rec); body["has_more"] != true {
		t.Errorf("Expected has_more after draining 2 of 3, got %v", body)
	}
	if env.logs.Len() != 1 {
		t.Errorf("Expected 1 log left, got %d", env.logs.Len())
	}

	if rec := env.do(t, http.MethodGet, "/api/logs?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/logs/clear", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if env.logs.Len() != 0 {
		t.Errorf("Expected logs cleared, got %d", env.logs.Len())
	}
}
