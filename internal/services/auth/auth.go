// Package auth связывает вход по учётным данным с менеджером сессии:
// обменивает email и пароль на пару токенов у бэкенда и запускает
// локальный сценарий входа.
package auth

import (
	"context"
	"log/slog"

	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/session"
)

// Backend операции бэкенда, нужные сервису аутентификации.
type Backend interface {
	Post(ctx context.Context, path string, body, out any) error
}

// SessionManager локальный жизненный цикл сессии.
type SessionManager interface {
	Login(ctx context.Context, tokens models.Tokens, inline *models.User) error
	Logout(ctx context.Context)
	Snapshot() session.Snapshot
}

// Service сервис аутентификации шлюза.
type Service struct {
	api     Backend
	session SessionManager
	log     *slog.Logger
}

// New создаёт сервис аутентификации.
func New(api Backend, sess SessionManager, log *slog.Logger) *Service {
	return &Service{api: api, session: sess, log: log}
}

// loginResponse форма ответа бэкенда на вход.
type loginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login обменивает учётные данные на пару токенов и устанавливает сессию.
// Бэкенд выдаёт токены через /auth/register и для новых, и для существующих
// пользователей. Профиль из ответа используется сразу, без повторного запроса.
func (s *Service) Login(ctx context.Context, email, password string) (session.Snapshot, error) {
	const op = "auth.Login"

	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Post(ctx, "/auth/register", body, &resp); err != nil {
		return s.session.Snapshot(), err
	}

	tokens := models.Tokens{Access: resp.AccessToken, Refresh: resp.RefreshToken}
	if err := s.session.Login(ctx, tokens, resp.User); err != nil {
		return s.session.Snapshot(), err
	}

	s.log.Info("login completed", slog.String("op", op), slog.String("email", email))
	return s.session.Snapshot(), nil
}

// Logout завершает сессию. Ошибок не возвращает: локальное состояние
// очищается безусловно, недоступность бэкенда вход не блокирует.
func (s *Service) Logout(ctx context.Context) session.Snapshot {
	s.session.Logout(ctx)
	return s.session.Snapshot()
}

// State возвращает текущий снапшот сессии.
func (s *Service) State() session.Snapshot {
	return s.session.Snapshot()
}
