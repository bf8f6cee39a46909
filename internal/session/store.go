package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/history-contest/internal/cache"
)

const CookieName = "HistoryContest.Session"

// Store keeps session values in the cache backend with a sliding idle timeout.
type Store struct {
	backend cache.Backend
	idle    time.Duration
}

func NewStore(b cache.Backend, idle time.Duration) *Store {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &Store{backend: b, idle: idle}
}

// New starts an empty session with a fresh ID.
func (st *Store) New() *Session {
	return newSession(uuid.NewString(), Values{})
}

// Load returns the session stored under id. Unknown, expired or malformed ids
// yield a new session.
func (st *Store) Load(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return st.New(), nil
	}
	b, err := st.backend.Get(ctx, cache.SessionKey(id))
	if errors.Is(err, cache.ErrMiss) {
		return st.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	var v Values
	if err := json.Unmarshal(b, &v); err != nil {
		return st.New(), nil
	}
	return newSession(id, v), nil
}

// Save writes the session back and restarts its idle timer.
func (st *Store) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s.Values())
	if err != nil {
		return err
	}
	return st.backend.Set(ctx, cache.SessionKey(s.ID), b, st.idle)
}

// Middleware attaches the session to every request and persists it afterwards.
func (st *Store) Middleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *Session
			if c, err := r.Cookie(CookieName); err == nil {
				s, err = st.Load(r.Context(), c.Value)
				if err != nil {
					http.Error(w, "session unavailable", http.StatusServiceUnavailable)
					return
				}
			} else {
				s = st.New()
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(st.idle.Seconds()),
			})
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
			_ = st.Save(context.WithoutCancel(r.Context()), s)
		})
	}
}
