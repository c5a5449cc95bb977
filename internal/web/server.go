package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/router"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/sysstats"
	"github.com/leonbytyqi1709-sketch/bycore/internal/view"
)

//go:embed static/*.css
var assetsFS embed.FS

const (
	streamURL       = "/events"
	maxBackupSize   = 10 << 20
	pruneInterval   = 10 * time.Minute
	keepAlivePeriod = 25 * time.Second
)

type ServerConfig struct {
	Addr string
	Dir  string

	DatastarURL   string
	AutosaveDelay time.Duration
	StatsInterval time.Duration
	Logger        *zap.Logger

	// Sampler overrides the host stats sampler (tests).
	Sampler *sysstats.Sampler
}

type Server struct {
	cfg      ServerConfig
	store    store.Store
	renderer *view.Renderer
	sampler  *sysstats.Sampler
	sessions *sessions
	watcher  *storeWatcher
	log      *zap.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	if cfg.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	st := store.Store{Dir: cfg.Dir}
	if err := st.Ensure(); err != nil {
		return nil, err
	}
	rend, err := view.New(view.Options{Sanitize: sanitizer()})
	if err != nil {
		return nil, err
	}
	sampler := cfg.Sampler
	if sampler == nil {
		sampler = sysstats.New(cfg.Dir, cfg.Logger)
	}

	srv := &Server{cfg: cfg, store: st, renderer: rend, sampler: sampler, log: cfg.Logger}
	runtimeInfo := view.RuntimeInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		DataPath:  st.Path(),
	}
	srv.sessions = &sessions{
		m:   map[string]*session{},
		log: cfg.Logger,
		new: func(id string, hub *resourceHub) (*router.Router, error) {
			return router.New(router.Options{
				KV:            st,
				Renderer:      rend,
				Logger:        cfg.Logger.With(zap.String("session", id)),
				AutosaveDelay: cfg.AutosaveDelay,
				Snapshots:     sampler,
				Runtime:       runtimeInfo,
				OnTick:        func(string) { hub.broadcast() },
				OnSaveStatus:  saveStatusNotifier(hub),
			})
		},
	}
	srv.watcher = &storeWatcher{db: st.Path(), log: cfg.Logger, version: st.Version, onChange: srv.sessions.broadcastAll}
	return srv, nil
}

// changed re-renders every session after a write made by this server. The watcher is told
// about it first, so the same write does not come back as a foreign change.
func (s *Server) changed(ctx context.Context) {
	s.watcher.markSeen(ctx)
	s.sessions.broadcastAll()
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /action/{name}", s.handleAction)
	mux.HandleFunc("GET /backup/export", s.handleExport)
	mux.HandleFunc("POST /backup/import", s.handleImport)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return mux
}

// Serve runs the HTTP server on ln together with the stats sampler and the data dir watcher,
// until ctx is done. Pending note edits of every session are flushed on the way out.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return s.sampler.Run(ctx, s.cfg.StatsInterval)
	})
	g.Go(func() error {
		if err := s.watcher.run(ctx); err != nil {
			// Live refresh from other processes is best effort.
			s.log.Warn("data dir watcher stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		t := time.NewTicker(pruneInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-t.C:
				s.sessions.prune(ctx, now, sessionIdleTTL)
			}
		}
	})
	err := g.Wait()
	s.sessions.closeAll(context.Background())
	return err
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	ref := strings.TrimSpace(r.Header.Get("Referer"))
	if ref != "" {
		http.Redirect(w, r, ref, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

func isDatastarRequest(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.forRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	main, err := sess.router.Render(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page, err := s.renderer.Page(view.PageData{
		Main:        template.HTML(main),
		DatastarURL: s.cfg.DatastarURL,
		StreamURL:   streamURL,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

// handleEvents streams a fresh #bycore-main whenever the session's hub fires: after actions,
// module ticks, autosave status changes and writes to the data dir.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.forRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.serveDatastarElementsStream(w, r, sess.hub, "#"+view.MainID, datastar.ElementPatchModeOuter, func() (string, error) {
		return sess.router.Render(r.Context())
	})
}

func (s *Server) serveDatastarElementsStream(w http.ResponseWriter, r *http.Request, h *resourceHub, selector string, mode datastar.ElementPatchMode, render func() (string, error)) {
	sse := datastar.NewSSE(w, r)

	ch, cancel := h.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(keepAlivePeriod)
	defer keepAlive.Stop()

	patch := func() {
		html, err := render()
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		if strings.TrimSpace(html) == "" {
			return
		}
		_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(mode))
	}
	patch()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			patch()
		}
	}
}

// handleAction runs one bound page action against the session's router. Datastar requests get
// the re-rendered region back as a patch; plain form posts are redirected back.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	a := view.Action(r.PathValue("name"))
	if !view.Known(a) {
		http.NotFound(w, r)
		return
	}
	if a == view.BackupImport {
		s.handleImport(w, r)
		return
	}
	sess, err := s.sessions.forRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = sess.router.Dispatch(r.Context(), a, r.Form)
	if err != nil {
		s.log.Debug("action failed", zap.String("action", string(a)), zap.Error(err))
	}
	s.changed(r.Context())
	s.respond(w, r, sess, err)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.forRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupSize)
	if err := r.ParseMultipartForm(maxBackupSize); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing backup file", http.StatusBadRequest)
		return
	}
	defer f.Close()
	doc, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err = sess.router.Import(r.Context(), doc)
	s.changed(r.Context())
	s.respond(w, r, sess, err)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session, actionErr error) {
	if !isDatastarRequest(r) {
		if actionErr != nil && !expectedFailure(actionErr) {
			http.Error(w, actionErr.Error(), statusFor(actionErr))
			return
		}
		redirectBack(w, r, "/")
		return
	}

	sse := datastar.NewSSE(w, r)
	if actionErr != nil && !expectedFailure(actionErr) {
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, actionErr.Error()))
	}
	html, err := sess.router.Render(r.Context())
	if err != nil {
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#"+view.MainID), datastar.WithMode(datastar.ElementPatchModeOuter))
}

// expectedFailure reports errors that are shown inside the re-rendered page itself.
func expectedFailure(err error) bool {
	var verr mutate.ValidationError
	return errors.As(err, &verr) || errors.Is(err, store.ErrInvalidBackup)
}

func statusFor(err error) int {
	if errors.Is(err, router.ErrInvalidArgument) || errors.Is(err, router.ErrUnknownModule) {
		return http.StatusBadRequest
	}
	var nf mutate.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.forRequest(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := sess.router.Flush(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	b, err := store.Export(r.Context(), s.store, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", store.BackupFileName(time.Now())))
	_, _ = w.Write(b)
}
