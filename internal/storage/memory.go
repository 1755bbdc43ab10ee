package storage

import (
	"sync"

	"github.com/jobper/jobper-dashboard/internal/models"
)

// Memory хранилище в памяти процесса. Используется в тестах и в сценариях,
// где состояние сессии не должно переживать перезапуск.
type Memory struct {
	mu     sync.RWMutex
	tokens models.Tokens
	user   *models.User
}

// NewMemory создаёт пустое хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{}
}

// SaveTokens сохраняет пару токенов.
func (m *Memory) SaveTokens(access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = models.Tokens{Access: access, Refresh: refresh}
}

// AccessToken возвращает access-токен или пустую строку.
func (m *Memory) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.Access
}

// RefreshToken возвращает refresh-токен или пустую строку.
func (m *Memory) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.Refresh
}

// ClearTokens удаляет оба токена.
func (m *Memory) ClearTokens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = models.Tokens{}
}

// SaveUser кэширует профиль пользователя.
func (m *Memory) SaveUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.user = nil
		return
	}
	cp := *u
	m.user = &cp
}

// User возвращает копию кэшированного профиля или nil.
func (m *Memory) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	cp := *m.user
	return &cp
}

// ClearUser удаляет кэшированный профиль.
func (m *Memory) ClearUser() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
}

// ClearAll удаляет токены и профиль.
func (m *Memory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = models.Tokens{}
	m.user = nil
}
