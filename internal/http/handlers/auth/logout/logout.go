// Package logout реализует HTTP-обработчик выхода пользователя.
// Выход всегда успешен: локальная сессия очищается даже при
// недоступном бэкенде.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/session"
)

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	Logout(ctx context.Context) session.Snapshot
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Завершает сессию. Локальное состояние очищается безусловно.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Снапшот анонимной сессии"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap := h.auth.Logout(r.Context())
	log.Info("logout completed")
	render.JSON(w, r, response.OKWithData(map[string]any{"state": snap.State}))
}
