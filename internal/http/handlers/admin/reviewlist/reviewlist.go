// Package reviewlist реализует HTTP-обработчик списка платежей,
// ожидающих ручной проверки администратором.
package reviewlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
)

// Service описывает интерфейс воркфлоу проверки платежей.
type Service interface {
	Pending(ctx context.Context) ([]models.Payment, error)
}

// Handler обрабатывает список платежей на проверке.
type Handler struct {
	log    *slog.Logger
	review Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, review: svc}
}

// ServeHTTP godoc
// @Summary Платежи на проверке
// @Description Возвращает платежи, ожидающие ручной проверки, с блоком AI-проверки.
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response "Список платежей"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reviewlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payments, err := h.review.Pending(r.Context())
	if err != nil {
		log.Error("failed to list pending payments", sl.Err(err))
		status, body := response.APIError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("pending payments listed", slog.Int("count", len(payments)))
	render.JSON(w, r, response.OKWithData(payments))
}
