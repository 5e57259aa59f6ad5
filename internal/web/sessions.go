package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/sales"
)

const sessionCookie = "salesdash_session"

type session struct {
	mu         sync.Mutex
	controller *dashboard.Controller
	lastSeen   time.Time
}

// sessionRegistry hands every browser session its own controller over the shared dataset.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	dataset  *sales.Dataset
	opts     dashboard.Options
	ttl      time.Duration
	secure   bool
	now      func() time.Time
	logger   zerolog.Logger
}

func newSessionRegistry(dataset *sales.Dataset, opts dashboard.Options, ttl time.Duration, secure bool, logger zerolog.Logger) *sessionRegistry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &sessionRegistry{
		sessions: make(map[string]*session),
		dataset:  dataset,
		opts:     opts,
		ttl:      ttl,
		secure:   secure,
		now:      time.Now,
		logger:   logger,
	}
}

// acquire returns the caller's session, creating one and setting the cookie when needed.
func (r *sessionRegistry) acquire(w http.ResponseWriter, req *http.Request) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	if c, err := req.Cookie(sessionCookie); err == nil {
		if s, ok := r.sessions[c.Value]; ok {
			s.lastSeen = now
			return s
		}
	}

	id := uuid.NewString()
	s := &session{
		controller: dashboard.New(r.dataset, r.opts, r.logger),
		lastSeen:   now,
	}
	r.sessions[id] = s

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(r.ttl.Seconds()),
	})
	r.logger.Debug().Str("session", id).Msg("session created")
	return s
}

func (r *sessionRegistry) sweepLocked(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.sessions, id)
		}
	}
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// with runs fn while holding the session lock so events are processed one at a time.
func (s *session) with(fn func(c *dashboard.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.controller)
}
