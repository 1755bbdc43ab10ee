// Package contracts реализует клиентскую логику работы с контрактами:
// поиск с кэшированием, избранное, сохранённые запросы и AI-анализ.
// Операции, закрытые тарифом, проверяются гейтом до обращения к бэкенду.
package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/jobper/jobper-dashboard/internal/gate"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/models"
)

const searchCacheTTL = 5 * time.Minute

// Backend операции бэкенда, нужные сервису контрактов.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Cache кэш поисковой выдачи.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// PlanSource текущий тарифный план пользователя.
type PlanSource interface {
	CurrentPlan() string
}

// Service сервис контрактов.
type Service struct {
	api   Backend
	cache Cache
	plan  PlanSource
	log   *slog.Logger
}

// New создаёт сервис контрактов. cache может быть nil — тогда поиск
// всегда идёт в бэкенд.
func New(api Backend, cache Cache, plan PlanSource, log *slog.Logger) *Service {
	return &Service{api: api, cache: cache, plan: plan, log: log}
}

// SearchParams параметры поискового запроса.
type SearchParams struct {
	Query   string
	Filters map[string]string
	Page    int
}

func (p SearchParams) cacheKey() string {
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := fmt.Sprintf("contracts:search:%s:p%d", p.Query, p.Page)
	for _, k := range keys {
		key += ":" + k + "=" + p.Filters[k]
	}
	return key
}

func (p SearchParams) query() string {
	q := url.Values{}
	q.Set("q", p.Query)
	if p.Page > 0 {
		q.Set("page", fmt.Sprint(p.Page))
	}
	for k, v := range p.Filters {
		q.Set(k, v)
	}
	return q.Encode()
}

// Search выполняет поиск контрактов, выдача кэшируется на пять минут.
func (s *Service) Search(ctx context.Context, params SearchParams) (*models.SearchResult, error) {
	const op = "contracts.Search"
	key := params.cacheKey()

	if s.cache != nil {
		var cached models.SearchResult
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("search cache read failed", slog.String("op", op), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	var result models.SearchResult
	if err := s.api.Get(ctx, "/contracts/search?"+params.query(), &result); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, searchCacheTTL); err != nil {
			s.log.Warn("search cache write failed", slog.String("op", op), sl.Err(err))
		}
	}
	return &result, nil
}

// Matched возвращает контракты, подобранные бэкендом под профиль компании.
func (s *Service) Matched(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	if err := s.api.Get(ctx, "/contracts/matched", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Detail возвращает карточку контракта.
func (s *Service) Detail(ctx context.Context, id string) (*models.Contract, error) {
	var out models.Contract
	if err := s.api.Get(ctx, "/contracts/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analysis возвращает AI-разбор контракта. Закрыт гейтом ai_analysis:
// при отказе запрос в бэкенд не выполняется.
func (s *Service) Analysis(ctx context.Context, id string) (*models.ContractAnalysis, error) {
	if d := gate.Check(gate.FeatureAIAnalysis, s.plan.CurrentPlan()); !d.Allowed {
		return nil, &gate.DeniedError{Decision: d}
	}
	var out models.ContractAnalysis
	if err := s.api.Get(ctx, "/contracts/"+id+"/analysis", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Favorites возвращает избранные контракты.
func (s *Service) Favorites(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	if err := s.api.Get(ctx, "/contracts/favorites", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddFavorite добавляет контракт в избранное. Лимит избранного на тарифе
// free сигналит бэкенд бизнес-ошибкой с флагом upgrade, она передаётся
// вызывающему как есть для маршрутизации в апселл.
func (s *Service) AddFavorite(ctx context.Context, contractID string) error {
	return s.api.Post(ctx, "/contracts/favorites", map[string]string{"contract_id": contractID}, nil)
}

// RemoveFavorite удаляет контракт из избранного.
func (s *Service) RemoveFavorite(ctx context.Context, contractID string) error {
	return s.api.Delete(ctx, "/contracts/favorites/"+contractID, nil)
}

// SavedSearches возвращает сохранённые поисковые запросы.
func (s *Service) SavedSearches(ctx context.Context) ([]models.SavedSearch, error) {
	var out []models.SavedSearch
	if err := s.api.Get(ctx, "/contracts/saved-searches", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSavedSearchRequest тело создания сохранённого запроса.
type CreateSavedSearchRequest struct {
	Name     string            `json:"name" validate:"required"`
	Query    string            `json:"query" validate:"required"`
	Filters  map[string]string `json:"filters"`
	NotifyMe bool              `json:"notify_me"`
}

// CreateSavedSearch сохраняет поисковый запрос. Гейт saved_searches
// проверяется до обращения к бэкенду: пользователю тарифа free запрос
// не отправляется вовсе, возвращается решение с ссылкой апгрейда.
func (s *Service) CreateSavedSearch(ctx context.Context, req CreateSavedSearchRequest) (*models.SavedSearch, error) {
	if d := gate.Check(gate.FeatureSavedSearches, s.plan.CurrentPlan()); !d.Allowed {
		return nil, &gate.DeniedError{Decision: d}
	}
	var out models.SavedSearch
	if err := s.api.Post(ctx, "/contracts/saved-searches", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSavedSearch обновляет сохранённый запрос.
func (s *Service) UpdateSavedSearch(ctx context.Context, id string, req CreateSavedSearchRequest) error {
	if d := gate.Check(gate.FeatureSavedSearches, s.plan.CurrentPlan()); !d.Allowed {
		return &gate.DeniedError{Decision: d}
	}
	return s.api.Put(ctx, "/contracts/saved-searches/"+id, req, nil)
}

// DeleteSavedSearch удаляет сохранённый запрос.
func (s *Service) DeleteSavedSearch(ctx context.Context, id string) error {
	return s.api.Delete(ctx, "/contracts/saved-searches/"+id, nil)
}
