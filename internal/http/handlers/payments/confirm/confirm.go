// Package confirm реализует HTTP-обработчик подтверждения платежа:
// принимает comprobante и референс перевода multipart-формой и передаёт
// их сервису платежей.
package confirm

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
)

// Предел размера comprobante. Больше — это не чек, а ошибка пользователя.
const maxReceiptSize = 10 << 20

// Service описывает интерфейс сервиса платежей.
type Service interface {
	ConfirmWithReceipt(ctx context.Context, paymentID, reference, filename string, receipt io.Reader) (*models.Payment, error)
}

// Handler обрабатывает подтверждение платежа.
type Handler struct {
	log      *slog.Logger
	payments Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, payments: svc}
}

// ServeHTTP godoc
// @Summary Подтверждение платежа
// @Description Загружает comprobante и референс перевода. Платёж переходит в статус review.
// @Tags Payments
// @Accept  multipart/form-data
// @Produce  json
// @Param id path string true "ID платежа"
// @Param reference formData string true "Референс перевода"
// @Param comprobante formData file true "Файл чека"
// @Success 200 {object} response.Response "Платёж в статусе review"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Router /payments/{id}/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	paymentID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	reference := r.FormValue("reference")
	if reference == "" {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field reference is a required field"))
		return
	}

	file, header, err := r.FormFile("comprobante")
	if err != nil {
		log.Error("comprobante file missing", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field comprobante is a required field"))
		return
	}
	defer func() { _ = file.Close() }()

	payment, err := h.payments.ConfirmWithReceipt(r.Context(), paymentID, reference, header.Filename, file)
	if err != nil {
		log.Error("payment confirmation failed", sl.Err(err))
		status, body := response.APIError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("payment confirmed", slog.String("payment_id", paymentID), slog.String("status", payment.Status))
	render.JSON(w, r, response.OKWithData(payment))
}
