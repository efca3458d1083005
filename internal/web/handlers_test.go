package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/humont/shikigami-sub001/internal/search"
	"github.com/humont/shikigami-sub001/internal/store"
	"github.com/humont/shikigami-sub001/internal/task"
	"github.com/humont/shikigami-sub001/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	dir := t.TempDir()

	ix, err := search.Open(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	s, err := store.Open(filepath.Join(dir, "tasks.db"), store.WithIndexer(ix))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return NewServer(s, ix, nil), s
}

func doGet(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	w, body := doGet(t, srv, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestListAndFilterTasks(t *testing.T) {
	t.Parallel()
	srv, s := newTestServer(t)

	a, err := s.Create("build parser", "parse things", store.CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create("write docs", "document things", store.CreateOptions{DependsOn: []string{a.ID}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	w, body := doGet(t, srv, "/api/tasks")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", body["count"])
	}

	_, body = doGet(t, srv, "/api/tasks?status=blocked")
	if body["count"].(float64) != 1 {
		t.Fatalf("blocked count = %v, want 1", body["count"])
	}

	w, _ = doGet(t, srv, "/api/tasks?status=bogus")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status = %d, want 400", w.Code)
	}
}

func TestGetTaskByPrefix(t *testing.T) {
	t.Parallel()
	srv, s := newTestServer(t)

	a, err := s.Create("only task", "x", store.CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w, body := doGet(t, srv, "/api/tasks/"+a.ID[:4])
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", w.Code, body)
	}
	tk := body["task"].(map[string]any)
	if tk["id"] != a.ID {
		t.Fatalf("id = %v, want %s", tk["id"], a.ID)
	}

	w, _ = doGet(t, srv, "/api/tasks/zzzz")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing task status = %d, want 404", w.Code)
	}
}

func TestReadyAndPromote(t *testing.T) {
	t.Parallel()
	srv, s := newTestServer(t)

	// Linear chain: only the head is ready
	testutil.SeedChain(t, s, 3)

	_, body := doGet(t, srv, "/api/ready")
	if body["count"].(float64) != 1 {
		t.Fatalf("ready count = %v, want 1", body["count"])
	}

	req := httptest.NewRequest(http.MethodPost, "/api/promote", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("promote status = %d", w.Code)
	}
	var promoteBody map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &promoteBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Nothing is eligible yet, promote is a no-op
	if promoteBody["promoted"].(float64) != 0 {
		t.Fatalf("promoted = %v, want 0", promoteBody["promoted"])
	}
}

func TestAuditAndLedgerEndpoints(t *testing.T) {
	t.Parallel()
	srv, s := newTestServer(t)

	a, err := s.Create("audited", "x", store.CreateOptions{Actor: "tester"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.AppendLedger(a.ID, task.LedgerLearning, "sqlite likes single writers", "tester"); err != nil {
		t.Fatalf("append ledger: %v", err)
	}

	_, body := doGet(t, srv, "/api/tasks/"+a.ID+"/audit")
	if body["count"].(float64) < 1 {
		t.Fatalf("audit count = %v, want >= 1", body["count"])
	}

	_, body = doGet(t, srv, "/api/tasks/"+a.ID+"/ledger?type=learning")
	if body["count"].(float64) != 1 {
		t.Fatalf("ledger count = %v, want 1", body["count"])
	}

	w, _ := doGet(t, srv, "/api/tasks/"+a.ID+"/ledger?type=bogus")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus ledger type status = %d, want 400", w.Code)
	}
}

func TestDepsEndpoint(t *testing.T) {
	t.Parallel()
	srv, s := newTestServer(t)

	a, err := s.Create("base", "x", store.CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := s.Create("on top", "y", store.CreateOptions{DependsOn: []string{a.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, body := doGet(t, srv, "/api/tasks/"+b.ID+"/deps")
	graph := body["graph"].(map[string]any)
	if _, ok := graph[b.ID]; !ok {
		t.Fatalf("graph missing root %s: %v", b.ID, graph)
	}
	if _, ok := graph[a.ID]; !ok {
		t.Fatalf("graph missing dependency %s: %v", a.ID, graph)
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()
	srv, s := newTestServer(t)

	if _, err := s.Create("tune the scheduler", "latency work", store.CreateOptions{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, body := doGet(t, srv, "/api/search?q=scheduler")
	if body["count"].(float64) != 1 {
		t.Fatalf("search count = %v, want 1", body["count"])
	}

	w, _ := doGet(t, srv, "/api/search")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty query status = %d, want 400", w.Code)
	}
}

func TestSearchDisabled(t *testing.T) {
	t.Parallel()

	srv := NewServer(testutil.NewStore(t), nil, nil)
	w, _ := doGet(t, srv, "/api/search?q=anything")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
