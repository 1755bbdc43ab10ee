// Package password реализует HTTP-обработчик смены пароля.
// Локальные проверки длины и подтверждения выполняет сервис аккаунта,
// при нарушении запрос до бэкенда не доходит.
package password

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
)

// Request — структура входных данных смены пароля.
type Request struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	Confirmation    string `json:"confirmation"`
}

// Service описывает интерфейс сервиса аккаунта.
type Service interface {
	ChangePassword(ctx context.Context, current, next, confirmation string) error
}

// Handler обрабатывает смену пароля.
type Handler struct {
	log     *slog.Logger
	account Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, account: svc}
}

// ServeHTTP godoc
// @Summary Смена пароля
// @Description Меняет пароль пользователя. Длина и подтверждение проверяются локально.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.Response "Пароль изменён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /account/password [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.password"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.account.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword, req.Confirmation); err != nil {
		log.Error("password change failed", sl.Err(err))
		status, body := response.APIError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("password changed")
	render.JSON(w, r, response.OKWithData(map[string]string{"result": "password changed"}))
}
