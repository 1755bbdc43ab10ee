// Package models содержит доменные структуры, описывающие подписку,
// а также вспомогательные типы для работы с данными из внешних источников (например, JSON-ответы бэкенда).
package models

import "time"

// Subscription описывает текущее состояние подписки пользователя,
// как его сообщает бэкенд. EndDate может быть nil для бессрочного доступа.
type Subscription struct {
	Plan          string     `json:"plan"`           // Идентификатор тарифного плана
	Status        string     `json:"status"`         // active, trial, grace, expired
	EndDate       *time.Time `json:"end_date"`       // Дата окончания оплаченного периода
	DaysRemaining int        `json:"days_remaining"` // Сколько дней осталось, считает бэкенд
}

// IsActive сообщает, даёт ли подписка доступ прямо сейчас.
// Статус grace считается активным: доступ выдан до ручного подтверждения платежа.
func (s *Subscription) IsActive() bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case "active", "trial", "grace":
		return true
	}
	return false
}
