// Package session реализует жизненный цикл клиентской сессии Jobper:
// вход, выход, восстановление при старте, периодическое обновление профиля
// и подписки, синхронизацию между экземплярами через шину токен-событий.
//
// Единственная настоящая машина состояний в системе. Ключевой инвариант:
// асинхронный запрос профиля, начатый до нового login или logout, не имеет
// права изменить состояние сессии после них. Инвариант обеспечивается
// монотонным счётчиком версий, а не отменой запросов: устаревший результат
// отбрасывается постфактум по сравнению версий.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobper/jobper-dashboard/internal/apiclient"
	"github.com/jobper/jobper-dashboard/internal/bus"
	"github.com/jobper/jobper-dashboard/internal/config"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/lib/tokenexp"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/storage"
)

// State состояние сессии.
type State string

// Состояния машины: UNINITIALIZED -> RESTORING -> {AUTHENTICATED, ANONYMOUS}.
// Из AUTHENTICATED возможен переход в ANONYMOUS через logout, оба состояния
// переходят в себя через login и refresh.
const (
	StateUninitialized State = "uninitialized"
	StateRestoring     State = "restoring"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// Backend операции бэкенда, нужные менеджеру сессии.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Snapshot копия состояния сессии для чтения потребителями.
type Snapshot struct {
	State        State
	User         *models.User
	Subscription *models.Subscription
	Loading      bool
	ServerError  bool
	Version      uint64
}

// Plan возвращает план текущего пользователя, для анонимной сессии — пустую строку
// (гейт нормализует её в free).
func (s Snapshot) Plan() string {
	if s.User == nil {
		return ""
	}
	return s.User.Plan
}

// Manager единоличный владелец состояния сессии. Все мутации сериализуются
// мьютексом (аналог сериализации event loop в браузере), счётчик версий
// отсекает опоздавших писателей.
type Manager struct {
	api   Backend
	store storage.Store
	bus   *bus.Bus
	log   *slog.Logger
	id    string // Идентификатор экземпляра для фильтрации собственных событий шины

	profileInterval time.Duration
	subInterval     time.Duration

	mu           sync.Mutex
	state        State
	version      uint64
	user         *models.User
	subscription *models.Subscription
	loading      bool
	serverError  bool
}

// New создаёт менеджер сессии в состоянии UNINITIALIZED.
func New(api Backend, store storage.Store, b *bus.Bus, cfg config.Refresh, log *slog.Logger) *Manager {
	profileInterval := cfg.ProfileInterval
	if profileInterval == 0 {
		profileInterval = 30 * time.Minute
	}
	subInterval := cfg.SubscriptionInterval
	if subInterval == 0 {
		subInterval = 5 * time.Minute
	}
	return &Manager{
		api:             api,
		store:           store,
		bus:             b,
		log:             log,
		id:              uuid.NewString(),
		profileInterval: profileInterval,
		subInterval:     subInterval,
		state:           StateUninitialized,
	}
}

// Snapshot возвращает копию текущего состояния сессии.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:       m.state,
		Loading:     m.loading,
		ServerError: m.serverError,
		Version:     m.version,
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	if m.subscription != nil {
		s := *m.subscription
		snap.Subscription = &s
	}
	return snap
}

// CurrentPlan возвращает план текущего пользователя для проверок гейта.
// Для анонимной сессии — пустая строка, гейт нормализует её в free.
func (m *Manager) CurrentPlan() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return ""
	}
	return m.user.Plan
}

// Restore восстанавливает сессию при старте процесса. Без сохранённого
// токена сразу переходит в ANONYMOUS; с токеном запрашивает профиль.
func (m *Manager) Restore(ctx context.Context) {
	const op = "session.Restore"
	log := m.log.With(slog.String("op", op))

	m.mu.Lock()
	m.state = StateRestoring
	m.loading = true
	m.mu.Unlock()

	if m.store.AccessToken() == "" {
		m.mu.Lock()
		m.state = StateAnonymous
		m.loading = false
		m.mu.Unlock()
		log.Info("no stored token, session is anonymous")
		return
	}

	if err := m.fetchUser(ctx); err != nil {
		// Окончательный 401 без токена: восстановление завершилось чисто
		log.Info("session restore settled anonymous", sl.Err(err))
	}
}

// Login начинает новую сессию. Версия увеличивается до записи токенов,
// чтобы инвалидировать любой fetchUser, начатый под старой сессией.
// inline-профиль из ответа логина используется без повторного запроса;
// при непринятой политике конфиденциальности откладывается и запрос подписки.
func (m *Manager) Login(ctx context.Context, tokens models.Tokens, inline *models.User) error {
	const op = "session.Login"
	log := m.log.With(slog.String("op", op))

	m.mu.Lock()
	m.version++
	myVersion := m.version
	m.loading = true
	m.serverError = false
	m.mu.Unlock()

	m.store.SaveTokens(tokens.Access, tokens.Refresh)
	m.bus.Publish(bus.TokenEvent{Kind: bus.TokenChanged, Access: tokens.Access, Origin: m.id})

	if exp, err := tokenexp.ExpiresAt(tokens.Access); err == nil {
		log.Info("session started", slog.Time("token_expires_at", exp))
	}

	if inline == nil {
		return m.fetchUser(ctx)
	}

	m.mu.Lock()
	if m.version != myVersion {
		m.mu.Unlock()
		return nil
	}
	u := *inline
	m.user = &u
	m.state = StateAuthenticated
	m.loading = false
	m.mu.Unlock()
	m.store.SaveUser(inline)

	if !inline.PrivacyAccepted {
		log.Info("privacy acceptance pending, deferring subscription fetch")
		return nil
	}
	m.fetchSubscription(ctx, myVersion)
	return nil
}

// Logout завершает сессию. Версия увеличивается первой, затем бэкенд
// уведомляется best-effort: его ответ не влияет на локальный выход.
func (m *Manager) Logout(ctx context.Context) {
	const op = "session.Logout"
	log := m.log.With(slog.String("op", op))

	m.mu.Lock()
	m.version++
	m.mu.Unlock()

	if err := m.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		log.Warn("backend logout failed, clearing local state anyway", sl.Err(err))
	}

	m.mu.Lock()
	m.user = nil
	m.subscription = nil
	m.serverError = false
	m.loading = false
	m.state = StateAnonymous
	m.mu.Unlock()

	m.store.ClearAll()
	m.bus.Publish(bus.TokenEvent{Kind: bus.TokenRemoved, Origin: m.id})
	log.Info("session cleared")
}

// RefreshUser перечитывает профиль. Используется фоновым циклом и явными
// действиями пользователя.
func (m *Manager) RefreshUser(ctx context.Context) error {
	return m.fetchUser(ctx)
}

// RefreshSubscription перечитывает подписку под текущей версией сессии.
func (m *Manager) RefreshSubscription(ctx context.Context) {
	m.mu.Lock()
	myVersion := m.version
	authenticated := m.user != nil
	m.mu.Unlock()
	if !authenticated {
		return
	}
	m.fetchSubscription(ctx, myVersion)
}

// fetchUser запрашивает профиль. Версия фиксируется до запроса; если к
// моменту ответа началась новая сессия, результат отбрасывается целиком.
//
// Ошибки: 401 без сохранённого токена возвращается вызывающему (чистое
// завершение восстановления); 401 с токеном — тихий даунгрейд в ANONYMOUS;
// любой другой сбой выставляет serverError и не трогает существующего
// пользователя — падение бэкенда не должно разлогинивать.
func (m *Manager) fetchUser(ctx context.Context) error {
	const op = "session.fetchUser"
	log := m.log.With(slog.String("op", op))

	m.mu.Lock()
	myVersion := m.version
	m.mu.Unlock()

	var u models.User
	err := m.api.Get(ctx, "/user/profile", &u)

	m.mu.Lock()
	if m.version != myVersion {
		m.mu.Unlock()
		log.Debug("discarding stale profile fetch",
			slog.Uint64("started_version", myVersion))
		return nil
	}

	if err == nil {
		m.user = &u
		m.state = StateAuthenticated
		m.serverError = false
		m.loading = false
		m.mu.Unlock()
		m.store.SaveUser(&u)
		m.fetchSubscription(ctx, myVersion)
		return nil
	}

	var authErr *apiclient.AuthError
	if errors.As(err, &authErr) {
		if !authErr.HadToken {
			m.user = nil
			m.subscription = nil
			m.state = StateAnonymous
			m.loading = false
			m.mu.Unlock()
			return err
		}
		// Протухший токен: ожидаемое истечение сессии, не жёсткий сбой
		m.user = nil
		m.subscription = nil
		m.state = StateAnonymous
		m.loading = false
		m.mu.Unlock()
		m.store.ClearUser()
		log.Info("stored token rejected, session downgraded")
		return nil
	}

	// Транзиентный сбой: сессия сохраняется, UI может показать мягкое предупреждение
	m.serverError = true
	m.loading = false
	if m.user == nil {
		// Восстановление при недоступном бэкенде: оптимистично поднимаем
		// кэшированный профиль, фоновое обновление сверит его позже
		if cached := m.store.User(); cached != nil {
			m.user = cached
			m.state = StateAuthenticated
		}
	}
	m.mu.Unlock()
	log.Warn("profile fetch failed, keeping session", sl.Err(err))
	return nil
}

// fetchSubscription запрашивает подписку под зафиксированной версией.
// Сбой некритичен и намеренно тихий: отсутствие данных подписки не должно
// блокировать вход.
func (m *Manager) fetchSubscription(ctx context.Context, myVersion uint64) {
	const op = "session.fetchSubscription"

	var sub models.Subscription
	err := m.api.Get(ctx, "/payments/subscription", &sub)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version != myVersion {
		return
	}
	if err != nil {
		m.log.Debug("subscription fetch failed", slog.String("op", op), sl.Err(err))
		return
	}
	m.subscription = &sub
}

// Run запускает фоновые циклы обновления и обработку событий шины.
// Блокируется до отмены контекста.
func (m *Manager) Run(ctx context.Context) {
	const op = "session.Run"
	log := m.log.With(slog.String("op", op))

	events, cancel := m.bus.Subscribe()
	defer cancel()

	profileTicker := time.NewTicker(m.profileInterval)
	defer profileTicker.Stop()
	subTicker := time.NewTicker(m.subInterval)
	defer subTicker.Stop()

	log.Info("session refresh loop started",
		slog.Duration("profile_interval", m.profileInterval),
		slog.Duration("subscription_interval", m.subInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("session refresh loop stopped")
			return
		case <-profileTicker.C:
			if m.authenticated() {
				_ = m.fetchUser(ctx)
			}
		case <-subTicker.C:
			m.RefreshSubscription(ctx)
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleTokenEvent(ctx, ev)
		}
	}
}

// handleTokenEvent применяет событие токена из другого экземпляра.
// Удаление ключа — удалённый выход: версия поднимается, локальное состояние
// чистится, повторный backend-logout НЕ вызывается. Изменение значения —
// удалённый вход или обновление: профиль перечитывается.
func (m *Manager) handleTokenEvent(ctx context.Context, ev bus.TokenEvent) {
	const op = "session.handleTokenEvent"
	if ev.Origin == m.id {
		return
	}
	log := m.log.With(slog.String("op", op), slog.String("kind", ev.Kind))

	switch ev.Kind {
	case bus.TokenRemoved:
		m.mu.Lock()
		m.version++
		m.user = nil
		m.subscription = nil
		m.serverError = false
		m.loading = false
		m.state = StateAnonymous
		m.mu.Unlock()
		log.Info("remote logout applied")
	case bus.TokenChanged:
		log.Info("remote login detected, refetching profile")
		_ = m.fetchUser(ctx)
	}
}

func (m *Manager) authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}
