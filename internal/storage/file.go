package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
)

const (
	tokensFile = "tokens.json"
	userFile   = "user.json"
)

// File хранилище состояния сессии в JSON-файлах под каталогом состояния.
// Файлы создаются с правами 0600. Ошибки чтения и повреждённый JSON
// логируются и деградируют до нулевого значения, наружу не выходят.
type File struct {
	dir string
	log *slog.Logger
	mu  sync.Mutex
}

// NewFile создаёт файловое хранилище в каталоге dir, создавая его при необходимости.
func NewFile(dir string, log *slog.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &File{dir: dir, log: log}, nil
}

// SaveTokens сохраняет пару токенов.
func (f *File) SaveTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.write(tokensFile, models.Tokens{Access: access, Refresh: refresh})
}

// AccessToken возвращает access-токен или пустую строку.
func (f *File) AccessToken() string {
	return f.readTokens().Access
}

// RefreshToken возвращает refresh-токен или пустую строку.
func (f *File) RefreshToken() string {
	return f.readTokens().Refresh
}

// ClearTokens удаляет оба токена.
func (f *File) ClearTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remove(tokensFile)
}

// SaveUser кэширует профиль пользователя.
func (f *File) SaveUser(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u == nil {
		f.remove(userFile)
		return
	}
	f.write(userFile, u)
}

// User возвращает кэшированный профиль или nil при любом сбое чтения.
func (f *File) User() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	var u models.User
	if !f.read(userFile, &u) {
		return nil
	}
	return &u
}

// ClearUser удаляет кэшированный профиль.
func (f *File) ClearUser() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remove(userFile)
}

// ClearAll удаляет токены и профиль.
func (f *File) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remove(tokensFile)
	f.remove(userFile)
}

func (f *File) readTokens() models.Tokens {
	f.mu.Lock()
	defer f.mu.Unlock()
	var t models.Tokens
	f.read(tokensFile, &t)
	return t
}

func (f *File) write(name string, v any) {
	const op = "storage.file.write"
	data, err := json.Marshal(v)
	if err != nil {
		f.log.Error("failed to marshal state", slog.String("op", op), slog.String("file", name), sl.Err(err))
		return
	}
	if err := os.WriteFile(filepath.Join(f.dir, name), data, 0o600); err != nil {
		f.log.Error("failed to write state file", slog.String("op", op), slog.String("file", name), sl.Err(err))
	}
}

// read декодирует файл в v, возвращает false если файла нет или он повреждён.
func (f *File) read(name string, v any) bool {
	const op = "storage.file.read"
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warn("failed to read state file", slog.String("op", op), slog.String("file", name), sl.Err(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		f.log.Warn("corrupt state file, degrading to empty", slog.String("op", op), slog.String("file", name), sl.Err(err))
		return false
	}
	return true
}

func (f *File) remove(name string) {
	const op = "storage.file.remove"
	if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
		f.log.Warn("failed to remove state file", slog.String("op", op), slog.String("file", name), sl.Err(err))
	}
}
