// Package gate реализует проверку доступа к фичам по тарифному плану.
// Проверка — чистая функция без побочных эффектов, её можно звать на каждый запрос.
package gate

import (
	"fmt"
	"net/url"

	"github.com/jobper/jobper-dashboard/internal/plans"
)

// Ключи фич, закрытых тарифами.
const (
	FeatureSavedSearches      = "saved_searches"
	FeatureAdvancedFilters    = "advanced_filters"
	FeatureFavoritesUnlimited = "favorites_unlimited"
	FeatureAIAnalysis         = "ai_analysis"
	FeatureExportResults      = "export_results"
	FeatureTeamPipeline       = "team_pipeline"
)

// requirement явный вариант требования для фичи. Отдельное значение
// unrestricted делает политику fail-open видимой: отсутствие ключа в таблице
// означает не запрет, а отсутствие ограничений. Это продуктовое решение.
type requirement struct {
	unrestricted bool
	minPlan      string
}

func minPlan(plan string) requirement { return requirement{minPlan: plan} }

var unrestricted = requirement{unrestricted: true}

// table таблица гейтов: ключ фичи -> минимальный план.
var table = map[string]requirement{
	FeatureSavedSearches:      minPlan(plans.Basico),
	FeatureAdvancedFilters:    minPlan(plans.Basico),
	FeatureFavoritesUnlimited: minPlan(plans.Basico),
	FeatureAIAnalysis:         minPlan(plans.Profesional),
	FeatureExportResults:      minPlan(plans.Profesional),
	FeatureTeamPipeline:       minPlan(plans.Empresarial),
}

// DeniedError возвращается сервисами, когда операция закрыта гейтом.
// Несёт решение целиком, чтобы вызывающий мог маршрутизировать апселл
// вместо общего тоста ошибки.
type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("feature requires plan %s", e.Decision.RequiredPlan)
}

// Decision результат проверки гейта.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	RequiredPlan string `json:"required_plan,omitempty"` // Минимальный план, если доступ закрыт
	FomoMessage  string `json:"fomo_message,omitempty"`  // Сообщение апселла для UI
	UpgradeURL   string `json:"upgrade_url,omitempty"`   // Deep link на экран апгрейда
}

// Check проверяет доступ к фиче для текущего плана пользователя.
// План разрешается через таблицу алиасов; неизвестный ключ фичи открыт для всех.
// При отказе решение содержит сообщение апселла и ссылку с требуемым планом
// и ключом фичи в query-параметрах.
func Check(featureKey, currentPlan string) Decision {
	req, ok := table[featureKey]
	if !ok || req.unrestricted {
		return Decision{Allowed: true}
	}

	if plans.Rank(currentPlan) >= plans.Rank(req.minPlan) {
		return Decision{Allowed: true}
	}

	required := plans.Get(req.minPlan)
	q := url.Values{}
	q.Set("plan", required.ID)
	q.Set("feature", featureKey)
	return Decision{
		Allowed:      false,
		RequiredPlan: required.ID,
		FomoMessage:  fmt.Sprintf("Disponible desde el plan %s", required.Name),
		UpgradeURL:   "/upgrade?" + q.Encode(),
	}
}
