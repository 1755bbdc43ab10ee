// Package search реализует HTTP-обработчик поиска контрактов.
// Параметры берутся из query-строки и передаются сервису контрактов,
// который кэширует выдачу.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/services/contracts"
)

// Service описывает интерфейс сервиса контрактов.
type Service interface {
	Search(ctx context.Context, params contracts.SearchParams) (*models.SearchResult, error)
}

// Handler обрабатывает HTTP-запросы поиска контрактов.
type Handler struct {
	log       *slog.Logger
	contracts Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, contracts: svc}
}

// Query-параметры, не являющиеся фильтрами.
var reservedParams = map[string]bool{"q": true, "page": true}

// ServeHTTP godoc
// @Summary Поиск контрактов
// @Description Ищет контракты по запросу и фильтрам. Выдача кэшируется.
// @Tags Contracts
// @Produce  json
// @Param q query string false "Поисковый запрос"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response "Результаты поиска"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /contracts/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contracts.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	filters := map[string]string{}
	for key, values := range q {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	result, err := h.contracts.Search(r.Context(), contracts.SearchParams{
		Query:   q.Get("q"),
		Page:    page,
		Filters: filters,
	})
	if err != nil {
		log.Error("search failed", sl.Err(err))
		status, body := response.APIError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("search completed", slog.Int("total", result.Total))
	render.JSON(w, r, response.OKWithData(result))
}
