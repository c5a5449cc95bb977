package web

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/sysstats"
)

type staticProbe struct{}

func (staticProbe) Sample(context.Context) (model.SystemSnapshot, error) {
	return model.SystemSnapshot{CPU: 12, RAM: model.Usage{Used: 1 << 30, Total: 4 << 30}}, nil
}

type testServer struct {
	srv    *Server
	ts     *httptest.Server
	client *http.Client
	dir    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	srv, err := NewServer(ServerConfig{
		Dir:         dir,
		DatastarURL: "/datastar.js",
		Sampler:     sysstats.NewWithProbe(staticProbe{}, nil),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.sessions.closeAll(context.Background())
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testServer{srv: srv, ts: ts, client: client, dir: dir}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.ts.URL+path, nil)
	require.NoError(t, err)
	return s.do(t, req)
}

func (s *testServer) post(t *testing.T, path string, datastar bool) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, s.ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Referer", s.ts.URL+"/")
	if datastar {
		req.Header.Set("Datastar-Request", "true")
	}
	return s.do(t, req)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok\n", body)
}

func TestStaticCSS(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.get(t, "/static/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	require.Contains(t, body, ".kanban-column")
}

func TestHome_RendersPageAndSetsSession(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `id="bycore-main"`)
	require.Contains(t, body, `src="/datastar.js"`)
	require.Contains(t, body, "Good ")

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			found = true
			require.True(t, c.HttpOnly)
		}
	}
	require.True(t, found, "session cookie set")

	resp, _ = s.get(t, "/")
	for _, c := range resp.Cookies() {
		require.NotEqual(t, sessionCookie, c.Name, "existing session reused")
	}
}

func TestAction_PlainPostRedirectsBack(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")

	resp, _ := s.post(t, "/action/module.load?module=notes", false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, s.ts.URL+"/", resp.Header.Get("Location"))

	active, err := store.ActiveModule(context.Background(), store.Store{Dir: s.dir})
	require.NoError(t, err)
	require.Equal(t, model.ModuleNotes, active)
}

func TestAction_DatastarRequestGetsPatch(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")

	resp, body := s.post(t, "/action/module.load?module=tasks", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	require.Contains(t, body, "datastar-patch-elements")
	require.Contains(t, body, "bycore-main")
	require.Contains(t, body, "kanban")
}

func TestAction_Errors(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")

	resp, _ := s.post(t, "/action/note.explode", false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.post(t, "/action/module.load?module=mail", false)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := s.post(t, "/action/task.filter?filter=urgent", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "console.error")
}

func TestAction_TaskFormValidationRendersInline(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")
	s.post(t, "/action/module.load?module=tasks", true)

	req, err := http.NewRequest(http.MethodPost, s.ts.URL+"/action/task.save", strings.NewReader("title=&priority=normal&status=todo"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Datastar-Request", "true")
	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, body, "console.error")
	require.Contains(t, body, "invalid title")
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")
	require.NoError(t, store.SetUsername(context.Background(), store.Store{Dir: s.dir}, "Ada"))

	resp, body := s.get(t, "/backup/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "bycore-backup-")
	require.Contains(t, body, `"bycore-username": "Ada"`)
}

func importRequest(t *testing.T, url string, doc string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "backup.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Referer", url)
	return req
}

func TestImport(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")
	kv := store.Store{Dir: s.dir}

	resp, _ := s.do(t, importRequest(t, s.ts.URL+"/backup/import", `{"bycore-username":"Grace"}`))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	name, err := store.Username(context.Background(), kv)
	require.NoError(t, err)
	require.Equal(t, "Grace", name)

	resp, _ = s.do(t, importRequest(t, s.ts.URL+"/action/backup.import", `"just a string"`))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, "invalid file is reported on the page")
	name, err = store.Username(context.Background(), kv)
	require.NoError(t, err)
	require.Equal(t, "Grace", name)
}

func TestPreviewPolicy(t *testing.T) {
	clean := sanitizer()
	require.Equal(t, "<p><strong>hi</strong></p>", clean("<p><strong>hi</strong></p>"))
	require.NotContains(t, clean(`<p onclick="x()">a</p><script>alert(1)</script>`), "onclick")
	require.NotContains(t, clean(`<script>alert(1)</script>`), "<script")
	require.NotContains(t, clean(`<a href="javascript:alert(1)">x</a>`), "javascript:")
	require.Contains(t, clean(`<a href="https://example.com" target="_blank">x</a>`), `href="https://example.com"`)
}

func TestResourceHub(t *testing.T) {
	h := newResourceHub()
	a, cancelA := h.subscribe()
	b, cancelB := h.subscribe()
	require.Equal(t, 2, h.subscribers())

	for i := 0; i < 20; i++ {
		h.broadcast()
	}
	require.Len(t, a, cap(a), "broadcast never blocks on a full subscriber")
	require.Len(t, b, cap(b))

	cancelA()
	cancelB()
	require.Zero(t, h.subscribers())
}

func startWatcher(t *testing.T, w *storeWatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
}

func TestStoreWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	var version atomic.Int64
	changed := make(chan struct{}, 8)
	startWatcher(t, &storeWatcher{
		db:       filepath.Join(dir, "bycore.sqlite"),
		coalesce: 20 * time.Millisecond,
		log:      zap.NewNop(),
		version:  func(context.Context) (int64, error) { return version.Load(), nil },
		onChange: func() { changed <- struct{}{} },
	})

	version.Add(1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bycore.sqlite-wal"), []byte{byte(i)}, 0o644))
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal")
	}
	time.Sleep(100 * time.Millisecond)
	require.Len(t, changed, 0, "burst coalesced into one signal")

	// Journal activity without a version change is a reader, not a writer.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bycore.sqlite-wal"), []byte("r"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bycore.sqlite-shm"), []byte("r"), 0o644))
	time.Sleep(150 * time.Millisecond)
	require.Len(t, changed, 0)
}

func TestStoreWatcher_OneWriteOneSignalWhileRendering(t *testing.T) {
	ctx := context.Background()
	st := store.Store{Dir: t.TempDir()}
	_, err := st.Version(ctx)
	require.NoError(t, err)

	var signals atomic.Int64
	startWatcher(t, &storeWatcher{
		db:       st.Path(),
		coalesce: 20 * time.Millisecond,
		log:      zap.NewNop(),
		version:  st.Version,
		onChange: func() {
			signals.Add(1)
			// A re-render reads the store, which opens and closes a connection.
			_, _, _ = st.Get(ctx, store.KeyNotes)
			_, _ = store.Theme(ctx, st)
		},
	})

	require.NoError(t, st.Set(ctx, store.KeyUsername, "Ada"))
	require.Eventually(t, func() bool { return signals.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	require.EqualValues(t, 1, signals.Load())
}

func TestStoreWatcher_MarkSeenSuppressesOwnWrite(t *testing.T) {
	ctx := context.Background()
	st := store.Store{Dir: t.TempDir()}
	_, err := st.Version(ctx)
	require.NoError(t, err)

	var signals atomic.Int64
	w := &storeWatcher{
		db:       st.Path(),
		coalesce: 200 * time.Millisecond,
		log:      zap.NewNop(),
		version:  st.Version,
		onChange: func() { signals.Add(1) },
	}
	startWatcher(t, w)

	require.NoError(t, st.Set(ctx, store.KeyTheme, "light"))
	w.markSeen(ctx)
	time.Sleep(400 * time.Millisecond)
	require.Zero(t, signals.Load())

	// A later write from elsewhere still comes through.
	require.NoError(t, st.Set(ctx, store.KeyTheme, "dark"))
	require.Eventually(t, func() bool { return signals.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSessions_PruneClosesIdle(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/")
	require.Len(t, s.srv.sessions.m, 1)

	s.srv.sessions.prune(context.Background(), time.Now(), time.Hour)
	require.Len(t, s.srv.sessions.m, 1, "recently seen session kept")

	s.srv.sessions.prune(context.Background(), time.Now().Add(2*time.Hour), time.Hour)
	require.Empty(t, s.srv.sessions.m)
}
