// Package reject реализует HTTP-обработчик отклонения платежа.
// Причина обязательна: она показывается пользователю.
package reject

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/services/review"
)

// Request — структура входных данных отклонения.
type Request struct {
	Reason string `json:"reason" validate:"required"`
}

// Service описывает интерфейс воркфлоу проверки платежей.
type Service interface {
	Reject(ctx context.Context, paymentID, reason string) (*models.Payment, error)
}

// Handler обрабатывает отклонение платежа.
type Handler struct {
	log      *slog.Logger
	review   Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, review: svc, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Отклонение платежа
// @Description Отклоняет платёж с обязательной причиной.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID платежа"
// @Param request body Request true "Причина отклонения"
// @Success 200 {object} response.Response "Отклонённый платёж"
// @Failure 422 {object} response.ErrorResponse "Причина не указана"
// @Failure 409 {object} response.ErrorResponse "Платёж уже в терминальном статусе"
// @Router /admin/payments/{id}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reject"

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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	payment, err := h.review.Reject(r.Context(), paymentID, req.Reason)
	if err != nil {
		var terminal *review.ErrTerminalPayment
		switch {
		case errors.Is(err, review.ErrEmptyReason):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.As(err, &terminal):
			log.Warn("rejection of terminal payment", sl.Err(err))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("rejection failed", sl.Err(err))
			status, body := response.APIError(err)
			render.Status(r, status)
			render.JSON(w, r, body)
		}
		return
	}

	log.Info("payment rejected", slog.String("payment_id", paymentID))
	render.JSON(w, r, response.OKWithData(payment))
}
