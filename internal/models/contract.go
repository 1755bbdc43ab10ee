package models

import "time"

// Contract представляет государственный контракт из поисковой выдачи.
type Contract struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Entity      string     `json:"entity"`   // Закупающее ведомство
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Deadline    *time.Time `json:"deadline"`
	MatchScore  float64    `json:"match_score"` // Релевантность профилю компании, считает бэкенд
	IsFavorite  bool       `json:"is_favorite"`
	PublishedAt time.Time  `json:"published_at"`
}

// ContractAnalysis AI-разбор контракта, доступен начиная с плана profesional.
type ContractAnalysis struct {
	ContractID string   `json:"contract_id"`
	Summary    string   `json:"summary"`
	Risks      []string `json:"risks"`
	Checklist  []string `json:"checklist"` // Документы, необходимые для участия
}

// SavedSearch сохранённый поисковый запрос с параметрами фильтрации.
type SavedSearch struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Query     string            `json:"query"`
	Filters   map[string]string `json:"filters"`
	NotifyMe  bool              `json:"notify_me"`
	CreatedAt time.Time         `json:"created_at"`
}

// SearchResult страница поисковой выдачи.
type SearchResult struct {
	Contracts []Contract `json:"contracts"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
}
