package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/session"
)

type staticSession session.Snapshot

func (s staticSession) Snapshot() session.Snapshot { return session.Snapshot(s) }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_RejectsAnonymous(t *testing.T) {
	sess := staticSession(session.Snapshot{State: session.StateAnonymous})
	var called bool

	mw := SessionMiddleware(sess, newNoopLogger())(okHandler(&called))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contracts/search", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestSessionMiddleware_PutsUserIntoContext(t *testing.T) {
	user := &models.User{Email: "user@empresa.mx"}
	sess := staticSession(session.Snapshot{State: session.StateAuthenticated, User: user})

	var gotUser *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		gotUser = u
	})

	mw := SessionMiddleware(sess, newNoopLogger())(next)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contracts/search", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@empresa.mx", gotUser.Email)
}

func TestAdminMiddleware_RejectsNonAdmin(t *testing.T) {
	user := &models.User{Email: "user@empresa.mx", IsAdmin: false}
	sess := staticSession(session.Snapshot{State: session.StateAuthenticated, User: user})
	var called bool

	mw := SessionMiddleware(sess, newNoopLogger())(
		AdminMiddleware(newNoopLogger())(okHandler(&called)))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/payments", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestAdminMiddleware_AllowsAdmin(t *testing.T) {
	user := &models.User{Email: "admin@jobper.mx", IsAdmin: true}
	sess := staticSession(session.Snapshot{State: session.StateAuthenticated, User: user})
	var called bool

	mw := SessionMiddleware(sess, newNoopLogger())(
		AdminMiddleware(newNoopLogger())(okHandler(&called)))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/payments", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := rate.NewLimiter(0, 2)
	var calls int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })

	mw := RateLimitMiddleware(limiter, newNoopLogger())(next)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contracts/search", nil))
		if i < 2 {
			assert.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
	assert.Equal(t, 2, calls)
}
