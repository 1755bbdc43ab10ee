// Package fetch содержит универсальные помощники запросов данных поверх
// API-клиента: ресурс со состоянием {data, loading, err} и мутацию.
// Ими пользуются обработчики шлюза и всё, что показывает данные бэкенда.
package fetch

import (
	"context"
	"sync"
)

// Getter читающая часть API-клиента.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// Caller мутирующая часть API-клиента.
type Caller interface {
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Resource лениво загружаемый ресурс бэкенда. Пустой путь подавляет запрос
// целиком — так условно пропускаются вызовы за данными, к которым нет доступа.
type Resource[T any] struct {
	api  Getter
	mu   sync.Mutex
	path string

	data    *T
	loading bool
	err     error
}

// NewResource создаёт ресурс для пути path. Запрос не выполняется до Load.
func NewResource[T any](api Getter, path string) *Resource[T] {
	return &Resource[T]{api: api, path: path}
}

// SetPath меняет путь ресурса. Пустой путь отключает загрузку.
func (r *Resource[T]) SetPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// Load выполняет GET и обновляет состояние. При пустом пути ничего не делает.
func (r *Resource[T]) Load(ctx context.Context) {
	r.mu.Lock()
	path := r.path
	if path == "" {
		r.mu.Unlock()
		return
	}
	r.loading = true
	r.mu.Unlock()

	var out T
	err := r.api.Get(ctx, path, &out)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.err = err
		return
	}
	r.err = nil
	r.data = &out
}

// Refetch повторяет загрузку. Синоним Load, существует ради читаемости
// в местах явного повтора по действию пользователя.
func (r *Resource[T]) Refetch(ctx context.Context) {
	r.Load(ctx)
}

// State возвращает текущее состояние ресурса.
func (r *Resource[T]) State() (data *T, loading bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data, r.loading, r.err
}

// Mutation обёртка мутирующего запроса с отслеживанием {loading, err}.
// Не выполняется автоматически, только явным Do.
type Mutation[T any] struct {
	api    Caller
	method string
	path   string

	mu      sync.Mutex
	loading bool
	err     error
}

// NewMutation создаёт мутацию метода method (POST, PUT или DELETE) на path.
func NewMutation[T any](api Caller, method, path string) *Mutation[T] {
	return &Mutation[T]{api: api, method: method, path: path}
}

// Do выполняет мутацию с телом body и возвращает декодированный ответ.
func (m *Mutation[T]) Do(ctx context.Context, body any) (*T, error) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	var out T
	var err error
	switch m.method {
	case "PUT":
		err = m.api.Put(ctx, m.path, body, &out)
	case "DELETE":
		err = m.api.Delete(ctx, m.path, &out)
	default:
		err = m.api.Post(ctx, m.path, body, &out)
	}

	m.mu.Lock()
	m.loading = false
	m.err = err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &out, nil
}

// State возвращает текущее состояние мутации.
func (m *Mutation[T]) State() (loading bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading, m.err
}
