// Package approve реализует HTTP-обработчик одобрения платежа.
// Чеклист проверки передаётся целиком, неполный чеклист отклоняется
// до обращения к бэкенду.
package approve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/services/review"
)

// Request — структура входных данных одобрения.
type Request struct {
	Checklist review.Checklist `json:"checklist"`
}

// Service описывает интерфейс воркфлоу проверки платежей.
type Service interface {
	Approve(ctx context.Context, paymentID string, checklist review.Checklist) (*models.Payment, error)
}

// Handler обрабатывает одобрение платежа.
type Handler struct {
	log    *slog.Logger
	review Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, review: svc}
}

// ServeHTTP godoc
// @Summary Одобрение платежа
// @Description Одобряет платёж по полному чеклисту проверки перевода.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID платежа"
// @Param request body Request true "Чеклист проверки"
// @Success 200 {object} response.Response "Одобренный платёж"
// @Failure 422 {object} response.ErrorResponse "Чеклист неполный"
// @Failure 409 {object} response.ErrorResponse "Платёж уже в терминальном статусе"
// @Router /admin/payments/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.approve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	paymentID := chi.URLParam(r, "id")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	payment, err := h.review.Approve(r.Context(), paymentID, req.Checklist)
	if err != nil {
		var incomplete *review.ErrChecklistIncomplete
		var terminal *review.ErrTerminalPayment
		switch {
		case errors.As(err, &incomplete):
			log.Warn("approval with incomplete checklist", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.As(err, &terminal):
			log.Warn("approval of terminal payment", sl.Err(err))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("approval failed", sl.Err(err))
			status, body := response.APIError(err)
			render.Status(r, status)
			render.JSON(w, r, body)
		}
		return
	}

	log.Info("payment approved", slog.String("payment_id", paymentID))
	render.JSON(w, r, response.OKWithData(payment))
}
