package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/history-contest/internal/cache"
)

func TestStore_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	st := NewStore(cache.NewMemoryBackend(func() time.Time { return now }), 30*time.Minute)

	s := st.New()
	s.Bind("s1")
	s.SetExam(4, now)
	require.NoError(t, st.Save(ctx, s))

	got, err := st.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.StudentID())
	seed, ok := got.Seed()
	assert.True(t, ok)
	assert.Equal(t, 4, seed)
	begin, ok := got.BeginTime()
	assert.True(t, ok)
	assert.True(t, begin.Equal(now))

	now = now.Add(31 * time.Minute)
	got, err = st.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, got.ID)
	_, ok = got.Seed()
	assert.False(t, ok)
}

func TestStore_GarbageIDGetsFreshSession(t *testing.T) {
	st := NewStore(cache.NewMemoryBackend(nil), 0)
	s, err := st.Load(context.Background(), "../../etc")
	require.NoError(t, err)
	assert.NotEqual(t, "../../etc", s.ID)
}

func TestSession_BindOtherStudentDropsExam(t *testing.T) {
	s := newSession("x", Values{})
	s.Bind("a")
	s.SetExam(1, time.Now())
	s.Bind("a")
	_, ok := s.Seed()
	assert.True(t, ok)
	s.Bind("b")
	_, ok = s.Seed()
	assert.False(t, ok)
}

func TestMiddleware_PersistsAcrossRequests(t *testing.T) {
	st := NewStore(cache.NewMemoryBackend(nil), time.Minute)
	h := st.Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		require.NotNil(t, s)
		if _, ok := s.Seed(); !ok {
			s.SetExam(9, time.Now())
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
