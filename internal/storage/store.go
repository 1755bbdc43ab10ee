// Package storage реализует локальное хранилище состояния сессии:
// пара токенов и кэшированный профиль пользователя. Все операции синхронные
// и никогда не возвращают ошибку наружу — повреждённые данные деградируют
// до нулевого значения. Сломанная запись кэша не должна ронять восстановление сессии.
package storage

import "github.com/jobper/jobper-dashboard/internal/models"

// Ключи хранилища. Других ключей у клиентского состояния нет.
const (
	KeyAccessToken  = "jobper:access_token"
	KeyRefreshToken = "jobper:refresh_token"
	KeyUser         = "jobper:user"
)

// Store контракт локального хранилища сессии.
//
// Инвариант токенов: SaveTokens и ClearTokens всегда работают с парой целиком,
// долгоживущее состояние не может содержать только один из двух токенов.
type Store interface {
	// SaveTokens сохраняет пару токенов атомарно с точки зрения читателей.
	SaveTokens(access, refresh string)
	// AccessToken возвращает access-токен или пустую строку.
	AccessToken() string
	// RefreshToken возвращает refresh-токен или пустую строку.
	RefreshToken() string
	// ClearTokens удаляет оба токена.
	ClearTokens()

	// SaveUser кэширует профиль пользователя.
	SaveUser(u *models.User)
	// User возвращает кэшированный профиль или nil,
	// в том числе при повреждённых данных.
	User() *models.User
	// ClearUser удаляет кэшированный профиль.
	ClearUser()

	// ClearAll удаляет токены и профиль.
	ClearAll()
}
