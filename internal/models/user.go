// Package models содержит доменные структуры клиентской части Jobper:
// пользователь, подписка, платежи, контракты и команда. Структуры
// используются сервисами, менеджером сессии и локальным хранилищем.
package models

import "time"

// User представляет профиль авторизованного пользователя Jobper.
type User struct {
	ID              string     `json:"id"`                    // Уникальный идентификатор пользователя
	Email           string     `json:"email"`                 // Электронная почта
	CompanyName     string     `json:"company_name"`          // Название компании
	Plan            string     `json:"plan"`                  // Идентификатор тарифного плана (возможен legacy-алиас)
	IsAdmin         bool       `json:"is_admin"`              // Признак администратора
	OnboardingDone  bool       `json:"onboarding_done"`       // Пройден ли онбординг
	PrivacyAccepted bool       `json:"privacy_accepted"`      // Принята ли политика конфиденциальности
	TrialEndsAt     *time.Time `json:"trial_ends_at"`         // Дата окончания пробного периода
	CreatedAt       *time.Time `json:"created_at,omitempty"`  // Дата регистрации
}

// Tokens пара токенов доступа. Инвариант хранилища: либо оба записаны, либо оба отсутствуют.
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// IsZero сообщает, что пара токенов пустая.
func (t Tokens) IsZero() bool {
	return t.Access == "" && t.Refresh == ""
}
