package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/autosave"
	"github.com/leonbytyqi1709-sketch/bycore/internal/router"
)

const (
	sessionCookie  = "bycore_session"
	sessionIdleTTL = 12 * time.Hour
)

// session is one browser's router plus the hub its event streams listen on.
type session struct {
	id     string
	router *router.Router
	hub    *resourceHub

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type sessions struct {
	mu  sync.Mutex
	m   map[string]*session
	new func(id string, hub *resourceHub) (*router.Router, error)
	log *zap.Logger
}

// forRequest returns the request's session, creating one (and setting the cookie) when the
// cookie is missing, malformed or refers to a session this process does not know.
func (ss *sessions) forRequest(w http.ResponseWriter, r *http.Request) (*session, error) {
	now := time.Now()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			ss.mu.Lock()
			s := ss.m[id.String()]
			ss.mu.Unlock()
			if s != nil {
				s.touch(now)
				return s, nil
			}
		}
	}

	id := uuid.NewString()
	hub := newResourceHub()
	rt, err := ss.new(id, hub)
	if err != nil {
		return nil, err
	}
	if err := rt.Start(r.Context()); err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	s := &session{id: id, router: rt, hub: hub, lastSeen: now}
	ss.mu.Lock()
	ss.m[id] = s
	ss.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	ss.log.Debug("session started", zap.String("session", id))
	return s, nil
}

func (ss *sessions) each(fn func(*session)) {
	ss.mu.Lock()
	all := make([]*session, 0, len(ss.m))
	for _, s := range ss.m {
		all = append(all, s)
	}
	ss.mu.Unlock()
	for _, s := range all {
		fn(s)
	}
}

func (ss *sessions) broadcastAll() {
	ss.each(func(s *session) { s.hub.broadcast() })
}

// prune closes sessions with no open stream that have been idle longer than ttl.
func (ss *sessions) prune(ctx context.Context, now time.Time, ttl time.Duration) {
	ss.mu.Lock()
	var stale []*session
	for id, s := range ss.m {
		if s.hub.subscribers() == 0 && now.Sub(s.idleSince()) > ttl {
			stale = append(stale, s)
			delete(ss.m, id)
		}
	}
	ss.mu.Unlock()
	for _, s := range stale {
		if err := s.router.Close(ctx); err != nil {
			ss.log.Warn("closing idle session", zap.String("session", s.id), zap.Error(err))
		}
	}
}

// closeAll flushes every session's pending edits.
func (ss *sessions) closeAll(ctx context.Context) {
	ss.mu.Lock()
	all := ss.m
	ss.m = map[string]*session{}
	ss.mu.Unlock()
	for _, s := range all {
		if err := s.router.Close(ctx); err != nil {
			ss.log.Warn("closing session", zap.String("session", s.id), zap.Error(err))
		}
	}
}

// saveStatusNotifier re-renders a session when its autosave status changes.
func saveStatusNotifier(hub *resourceHub) func(autosave.Status) {
	return func(autosave.Status) { hub.broadcast() }
}
