// Package tokenexp извлекает срок действия из access-токена без проверки подписи.
// Клиент не владеет ключом подписи — подлинность токена проверяет бэкенд,
// здесь exp нужен только для логирования и планирования обновления сессии.
package tokenexp

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt возвращает момент истечения access-токена из claim exp.
// Подпись не проверяется намеренно.
func ExpiresAt(tokenStr string) (time.Time, error) {
	const op = "tokenexp.ExpiresAt"

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%s: token has no exp claim", op)
	}
	return exp.Time, nil
}

// TTL возвращает оставшееся время жизни токена. Для истёкшего токена
// значение отрицательное.
func TTL(tokenStr string) (time.Duration, error) {
	exp, err := ExpiresAt(tokenStr)
	if err != nil {
		return 0, err
	}
	return time.Until(exp), nil
}
