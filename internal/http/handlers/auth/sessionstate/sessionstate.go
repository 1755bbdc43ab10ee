// Package sessionstate реализует HTTP-обработчик чтения текущего состояния
// сессии. Снапшот отдаётся как есть, без побочных эффектов.
package sessionstate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/session"
)

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	State() session.Snapshot
}

// Handler обрабатывает HTTP-запросы состояния сессии.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Состояние сессии
// @Description Возвращает снапшот сессии: состояние, профиль, подписку, флаги загрузки.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Снапшот сессии"
// @Router /auth/session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.sessionstate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap := h.auth.State()
	log.Debug("session state requested", slog.String("state", string(snap.State)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state":        snap.State,
		"user":         snap.User,
		"subscription": snap.Subscription,
		"plan":         snap.Plan(),
		"loading":      snap.Loading,
		"server_error": snap.ServerError,
	}))
}
