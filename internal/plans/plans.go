// Package plans содержит статическую конфигурацию тарифных планов Jobper:
// порядок тарифов, алиасы устаревших идентификаторов, цвета и списки преимуществ.
// Пакет не имеет зависимостей и используется фиче-гейтом и всеми сервисами.
package plans

// Канонические идентификаторы тарифов в порядке возрастания ранга.
const (
	Free        = "free"
	Basico      = "basico"
	Profesional = "profesional"
	Empresarial = "empresarial"
)

// Info описывает метаданные тарифа для отображения и апселла.
type Info struct {
	ID           string   // Канонический идентификатор
	Name         string   // Отображаемое название
	Rank         int      // Порядковый ранг, free = 0
	Color        string   // Цвет бейджа тарифа
	MonthlyPrice float64  // Цена в USD за месяц
	Benefits     []string // Список преимуществ для экрана выбора тарифа
}

// ranks порядок тарифов. Любой идентификатор, не разрешившийся через алиасы,
// получает ранг free.
var ranks = map[string]int{
	Free:        0,
	Basico:      1,
	Profesional: 2,
	Empresarial: 3,
}

// aliases отображение устаревших идентификаторов планов на канонические.
// trial исторически означал пробный доступ уровня free, business — старое
// название тарифа empresarial.
var aliases = map[string]string{
	"trial":    Free,
	"basic":    Basico,
	"pro":      Profesional,
	"business": Empresarial,
}

var catalog = map[string]Info{
	Free: {
		ID: Free, Name: "Gratis", Rank: 0, Color: "#9CA3AF", MonthlyPrice: 0,
		Benefits: []string{
			"búsqueda de contratos",
			"3 favoritos",
		},
	},
	Basico: {
		ID: Basico, Name: "Básico", Rank: 1, Color: "#3B82F6", MonthlyPrice: 19,
		Benefits: []string{
			"búsquedas guardadas",
			"favoritos ilimitados",
			"filtros avanzados",
		},
	},
	Profesional: {
		ID: Profesional, Name: "Profesional", Rank: 2, Color: "#8B5CF6", MonthlyPrice: 49,
		Benefits: []string{
			"análisis con IA",
			"exportación de resultados",
			"todo lo del plan Básico",
		},
	},
	Empresarial: {
		ID: Empresarial, Name: "Empresarial", Rank: 3, Color: "#F59E0B", MonthlyPrice: 99,
		Benefits: []string{
			"pipeline de equipo",
			"miembros ilimitados",
			"todo lo del plan Profesional",
		},
	},
}

// Normalize разрешает идентификатор плана через таблицу алиасов в канонический.
// Неизвестный идентификатор считается free — это требование инварианта:
// каждый план, встречающийся в системе, обязан иметь известный ранг.
func Normalize(id string) string {
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	if _, ok := ranks[id]; ok {
		return id
	}
	return Free
}

// Rank возвращает порядковый ранг плана после нормализации.
func Rank(id string) int {
	return ranks[Normalize(id)]
}

// Get возвращает метаданные плана после нормализации.
func Get(id string) Info {
	return catalog[Normalize(id)]
}

// All возвращает все канонические планы в порядке возрастания ранга.
func All() []Info {
	return []Info{catalog[Free], catalog[Basico], catalog[Profesional], catalog[Empresarial]}
}
