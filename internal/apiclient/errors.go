// Package apiclient реализует HTTP-клиент REST API Jobper: авторизованные
// запросы, multipart-загрузку comprobante и нормализацию ошибок бэкенда
// в типизированные классы. Политика обработки ошибок из этих классов
// выводится типами, а не соглашениями.
package apiclient

import "fmt"

// AuthError ответ 401. HadToken различает два случая: без сохранённого
// токена восстановление сессии завершается чисто, с токеном — это
// ожидаемое истечение сессии и тихий даунгрейд до анонимного состояния.
type AuthError struct {
	HadToken bool
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

// ValidationError ответ 400/422: запрос отвергнут по содержимому.
// Также используется сервисами для клиентской валидации до запроса.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Message)
}

// BusinessRuleError отказ бизнес-правила, помеченный бэкендом флагом upgrade
// (например, достигнут лимит избранного на текущем тарифе). Маршрутизируется
// в навигацию апселла, а не в общий тост ошибки.
type BusinessRuleError struct {
	Message      string
	Upgrade      bool
	RequiredPlan string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule: %s", e.Message)
}

// TransientError сетевой или серверный сбой (5xx, обрыв соединения, битый ответ).
// Существующая сессия при таком сбое сохраняется; повтор только по расписанию
// фонового обновления или по явному действию пользователя, никогда инлайн.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transient: %s", e.Message)
}

func (e *TransientError) Unwrap() error { return e.Err }
