// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате, а также
// приводит типизированные ошибки бэкенд-клиента к HTTP-статусам.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/jobper/jobper-dashboard/internal/apiclient"
	"github.com/jobper/jobper-dashboard/internal/gate"
)

// Response описывает стандартную структуру JSON‑ответа шлюза.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// APIError приводит типизированную ошибку бэкенд-клиента или гейта к паре
// HTTP-статус + тело ответа. Решение гейта отдаётся в Data целиком,
// чтобы фронтенд мог показать апселл вместо общего тоста.
func APIError(err error) (int, Response) {
	var denied *gate.DeniedError
	if errors.As(err, &denied) {
		return http.StatusForbidden, Response{
			Status: StatusError,
			Error:  err.Error(),
			Data:   denied.Decision,
		}
	}

	var authErr *apiclient.AuthError
	if errors.As(err, &authErr) {
		return http.StatusUnauthorized, Error(authErr.Message)
	}

	var bizErr *apiclient.BusinessRuleError
	if errors.As(err, &bizErr) {
		return http.StatusPaymentRequired, Response{
			Status: StatusError,
			Error:  bizErr.Message,
			Data:   map[string]any{"upgrade": bizErr.Upgrade, "required_plan": bizErr.RequiredPlan},
		}
	}

	var valErr *apiclient.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusUnprocessableEntity, Response{
			Status: StatusError,
			Error:  valErr.Message,
			Data:   valErr.Fields,
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusUnprocessableEntity, ValidationError(validationErrs)
	}

	return http.StatusBadGateway, Error("backend unavailable, try again later")
}
