// Package savedsearch реализует HTTP-обработчики сохранённых поисковых
// запросов: список и создание. Создание закрыто гейтом saved_searches,
// отказ возвращается с решением апселла в теле ответа.
package savedsearch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/jobper/jobper-dashboard/internal/http/response"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/services/contracts"
)

// Service описывает интерфейс сервиса контрактов.
type Service interface {
	SavedSearches(ctx context.Context) ([]models.SavedSearch, error)
	CreateSavedSearch(ctx context.Context, req contracts.CreateSavedSearchRequest) (*models.SavedSearch, error)
}

// CreateHandler обрабатывает создание сохранённого запроса.
type CreateHandler struct {
	log       *slog.Logger
	contracts Service
	validate  *validator.Validate
}

// NewCreate создает обработчик создания сохранённого запроса.
func NewCreate(log *slog.Logger, svc Service) *CreateHandler {
	return &CreateHandler{log: log, contracts: svc, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Создание сохранённого запроса
// @Description Сохраняет поисковый запрос. Доступно с плана basico.
// @Tags Contracts
// @Accept  json
// @Produce  json
// @Param request body contracts.CreateSavedSearchRequest true "Сохраняемый запрос"
// @Success 200 {object} response.Response "Созданный запрос"
// @Failure 403 {object} response.ErrorResponse "Закрыто тарифом, в data решение апселла"
// @Router /contracts/saved-searches [post]
func (h *CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contracts.savedsearch.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req contracts.CreateSavedSearchRequest
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

	created, err := h.contracts.CreateSavedSearch(r.Context(), req)
	if err != nil {
		log.Warn("saved search creation denied or failed", sl.Err(err))
		status, body := response.APIError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("saved search created", slog.String("id", created.ID))
	render.JSON(w, r, response.OKWithData(created))
}

// ListHandler обрабатывает чтение списка сохранённых запросов.
type ListHandler struct {
	log       *slog.Logger
	contracts Service
}

// NewList создает обработчик списка сохранённых запросов.
func NewList(log *slog.Logger, svc Service) *ListHandler {
	return &ListHandler{log: log, contracts: svc}
}

// ServeHTTP godoc
// @Summary Список сохранённых запросов
// @Tags Contracts
// @Produce  json
// @Success 200 {object} response.Response "Сохранённые запросы"
// @Router /contracts/saved-searches [get]
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contracts.savedsearch.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.contracts.SavedSearches(r.Context())
	if err != nil {
		log.Error("failed to list saved searches", sl.Err(err))
		status, body := response.APIError(err)
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}
