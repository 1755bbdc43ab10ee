package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobper/jobper-dashboard/internal/apiclient"
	"github.com/jobper/jobper-dashboard/internal/bus"
	"github.com/jobper/jobper-dashboard/internal/config"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/storage"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// fakeBackend управляемый бэкенд Jobper для тестов сессии.
type fakeBackend struct {
	mu sync.Mutex

	profileUser   models.User
	profileStatus int // 0 означает 200
	profileGate   chan struct{} // Если не nil, обработчик профиля ждёт закрытия канала
	profileBody   func() models.User

	logoutCalls  atomic.Int64
	profileCalls atomic.Int64
	subCalls     atomic.Int64

	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		profileUser: models.User{ID: "u1", Email: "u1@jobper.test", Plan: "basico", PrivacyAccepted: true},
	}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.handle))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/user/profile":
		f.profileCalls.Add(1)
		f.mu.Lock()
		gate := f.profileGate
		status := f.profileStatus
		user := f.profileUser
		if f.profileBody != nil {
			user = f.profileBody()
		}
		f.mu.Unlock()
		if gate != nil {
			<-gate
		}
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"profile error"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	case "/payments/subscription":
		f.subCalls.Add(1)
		_ = json.NewEncoder(w).Encode(models.Subscription{Plan: "basico", Status: "active", DaysRemaining: 12})
	case "/auth/logout":
		f.logoutCalls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}
}

func (f *fakeBackend) setProfileStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileStatus = status
}

func (f *fakeBackend) blockProfile() chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileGate = gate
	return gate
}

func (f *fakeBackend) unblockProfile(gate chan struct{}) {
	f.mu.Lock()
	f.profileGate = nil
	f.mu.Unlock()
	close(gate)
}

func newTestManager(t *testing.T, fb *fakeBackend) (*Manager, storage.Store, *bus.Bus) {
	t.Helper()
	store := storage.NewMemory()
	b := bus.New(nil)
	t.Cleanup(b.Close)
	api := apiclient.New(config.Backend{BaseURL: fb.srv.URL}, store, newNoopLogger())
	m := New(api, store, b, config.Refresh{}, newNoopLogger())
	return m, store, b
}

func TestRestore_NoTokenSettlesAnonymous(t *testing.T) {
	fb := newFakeBackend(t)
	m, _, _ := newTestManager(t, fb)

	m.Restore(context.Background())

	snap := m.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Zero(t, fb.profileCalls.Load())
}

func TestRestore_WithTokenFetchesProfileAndSubscription(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("valid-token", "refresh")

	m.Restore(context.Background())

	snap := m.Snapshot()
	require.Equal(t, StateAuthenticated, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u1", snap.User.ID)
	require.NotNil(t, snap.Subscription)
	assert.Equal(t, "active", snap.Subscription.Status)
	assert.False(t, snap.Loading)
	assert.False(t, snap.ServerError)
}

func TestRestore_StaleTokenSilentlyDowngrades(t *testing.T) {
	fb := newFakeBackend(t)
	fb.setProfileStatus(http.StatusUnauthorized)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("stale-token", "refresh")

	m.Restore(context.Background())

	snap := m.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Nil(t, snap.User)
	assert.False(t, snap.ServerError, "stale token is an expected expiry, not an error banner")
}

func TestVersionMonotonicity_SlowFetchCannotResurrectAfterLogout(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("valid-token", "refresh")
	m.Restore(context.Background())
	require.Equal(t, StateAuthenticated, m.Snapshot().State)

	// Медленный fetchUser стартует до logout
	gate := fb.blockProfile()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.RefreshUser(context.Background())
	}()

	// Даём запросу уйти в сеть
	require.Eventually(t, func() bool { return fb.profileCalls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	m.Logout(context.Background())
	snap := m.Snapshot()
	require.Equal(t, StateAnonymous, snap.State)
	loggedOutVersion := snap.Version

	// Фетч завершается уже после logout и обязан быть отброшен
	fb.unblockProfile(gate)
	<-done

	snap = m.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Subscription)
	assert.Equal(t, loggedOutVersion, snap.Version)
	assert.Empty(t, store.AccessToken())
}

func TestLoginRace_SecondLoginWins(t *testing.T) {
	fb := newFakeBackend(t)
	m, _, _ := newTestManager(t, fb)

	// Логин A уходит в медленный fetchUser
	gate := fb.blockProfile()
	fb.mu.Lock()
	fb.profileBody = func() models.User {
		return models.User{ID: "user-a", Email: "a@jobper.test", Plan: "free"}
	}
	fb.mu.Unlock()

	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_ = m.Login(context.Background(), models.Tokens{Access: "token-a", Refresh: "ra"}, nil)
	}()
	require.Eventually(t, func() bool { return fb.profileCalls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	// Логин B с inline-профилем завершается первым
	userB := &models.User{ID: "user-b", Email: "b@jobper.test", Plan: "profesional", PrivacyAccepted: true}
	require.NoError(t, m.Login(context.Background(), models.Tokens{Access: "token-b", Refresh: "rb"}, userB))

	fb.unblockProfile(gate)
	<-doneA

	// Итоговое состояние отражает только пользователя B
	snap := m.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "user-b", snap.User.ID)
	assert.Equal(t, "profesional", snap.User.Plan)
	assert.Equal(t, StateAuthenticated, snap.State)
}

func TestTransientFault_PreservesSessionAndSetsServerError(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("valid-token", "refresh")
	m.Restore(context.Background())
	require.Equal(t, StateAuthenticated, m.Snapshot().State)

	fb.setProfileStatus(http.StatusInternalServerError)
	require.NoError(t, m.RefreshUser(context.Background()))

	snap := m.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	require.NotNil(t, snap.User, "transient backend fault must not log the user out")
	assert.Equal(t, "u1", snap.User.ID)
	assert.True(t, snap.ServerError)
}

func TestTransientFault_ClearedByNextSuccessfulFetch(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("valid-token", "refresh")
	m.Restore(context.Background())

	fb.setProfileStatus(http.StatusInternalServerError)
	require.NoError(t, m.RefreshUser(context.Background()))
	require.True(t, m.Snapshot().ServerError)

	fb.setProfileStatus(0)
	require.NoError(t, m.RefreshUser(context.Background()))
	assert.False(t, m.Snapshot().ServerError)
}

func TestRestore_BackendDownUsesCachedProfile(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("valid-token", "refresh")
	store.SaveUser(&models.User{ID: "cached", Email: "cached@jobper.test", Plan: "basico"})
	fb.setProfileStatus(http.StatusServiceUnavailable)

	m.Restore(context.Background())

	snap := m.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "cached", snap.User.ID)
	assert.True(t, snap.ServerError)
}

func TestLogin_InlineUserSkipsProfileFetch(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)

	u := &models.User{ID: "u9", Email: "u9@jobper.test", Plan: "basico", PrivacyAccepted: true}
	require.NoError(t, m.Login(context.Background(), models.Tokens{Access: "tok", Refresh: "ref"}, u))

	snap := m.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "u9", snap.User.ID)
	assert.Zero(t, fb.profileCalls.Load(), "inline user must not trigger a redundant profile fetch")
	assert.Equal(t, int64(1), fb.subCalls.Load())
	assert.Equal(t, "tok", store.AccessToken())
	assert.Equal(t, "ref", store.RefreshToken())
}

func TestLogin_PendingPrivacyDefersSubscriptionFetch(t *testing.T) {
	fb := newFakeBackend(t)
	m, _, _ := newTestManager(t, fb)

	u := &models.User{ID: "u9", Email: "u9@jobper.test", Plan: "basico", PrivacyAccepted: false}
	require.NoError(t, m.Login(context.Background(), models.Tokens{Access: "tok", Refresh: "ref"}, u))

	assert.Zero(t, fb.subCalls.Load(), "subscription fetch must be deferred until privacy acceptance")
	require.NotNil(t, m.Snapshot().User)
}

func TestLogout_ClearsLocallyEvenIfBackendFails(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, _ := newTestManager(t, fb)
	store.SaveTokens("tok", "ref")
	m.Restore(context.Background())
	require.Equal(t, StateAuthenticated, m.Snapshot().State)

	fb.srv.Close() // Бэкенд недоступен, локальный выход обязан пройти

	m.Logout(context.Background())
	snap := m.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}

func TestCrossTab_RemoteLogoutClearsWithoutBackendCall(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, b := newTestManager(t, fb)
	store.SaveTokens("tok", "ref")
	m.Restore(context.Background())
	require.Equal(t, StateAuthenticated, m.Snapshot().State)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		m.Run(ctx)
	}()

	before := m.Snapshot().Version
	b.Publish(bus.TokenEvent{Kind: bus.TokenRemoved, Origin: "other-tab"})

	require.Eventually(t, func() bool {
		snap := m.Snapshot()
		return snap.State == StateAnonymous && snap.Version > before
	}, time.Second, 5*time.Millisecond)

	assert.Zero(t, fb.logoutCalls.Load(), "remote logout must not trigger a second backend logout")

	cancel()
	<-runDone
}

func TestCrossTab_RemoteLoginRefetchesProfile(t *testing.T) {
	fb := newFakeBackend(t)
	m, store, b := newTestManager(t, fb)
	store.SaveTokens("fresh-token", "ref")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		m.Run(ctx)
	}()

	b.Publish(bus.TokenEvent{Kind: bus.TokenChanged, Access: "fresh-token", Origin: "other-tab"})

	require.Eventually(t, func() bool {
		return m.Snapshot().State == StateAuthenticated
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-runDone
}

func TestCrossTab_OwnEventsAreIgnored(t *testing.T) {
	fb := newFakeBackend(t)
	m, _, _ := newTestManager(t, fb)

	// Login публикует событие с собственным origin; обработчик обязан его пропустить
	u := &models.User{ID: "u1", PrivacyAccepted: true}
	require.NoError(t, m.Login(context.Background(), models.Tokens{Access: "tok", Refresh: "ref"}, u))

	ev := bus.TokenEvent{Kind: bus.TokenRemoved, Origin: m.id}
	m.handleTokenEvent(context.Background(), ev)

	assert.Equal(t, StateAuthenticated, m.Snapshot().State)
}
