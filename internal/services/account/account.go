// Package account реализует операции личного кабинета: профиль, смена
// пароля, удаление аккаунта, push-уведомления и реферальная программа.
// Ошибки валидации формируются локально и не доходят до сети.
package account

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/jobper/jobper-dashboard/internal/apiclient"
	"github.com/jobper/jobper-dashboard/internal/models"
)

// Фраза подтверждения удаления аккаунта. Вводится пользователем дословно.
const deleteConfirmationPhrase = "ELIMINAR MI CUENTA"

// Backend операции бэкенда, нужные сервису аккаунта.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Service сервис личного кабинета.
type Service struct {
	api           Backend
	pushPublicKey string
	log           *slog.Logger
	validate      *validator.Validate
}

// New создаёт сервис аккаунта. pushPublicKey — VAPID-ключ из конфига,
// пустое значение отключает регистрацию push-подписок.
func New(api Backend, pushPublicKey string, log *slog.Logger) *Service {
	return &Service{api: api, pushPublicKey: pushPublicKey, log: log, validate: validator.New()}
}

// Profile возвращает профиль текущего пользователя.
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.api.Get(ctx, "/user/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfileRequest тело обновления профиля.
type UpdateProfileRequest struct {
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,e164"`
	Sector      string `json:"sector,omitempty"`
}

// UpdateProfile обновляет профиль компании.
func (s *Service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	var out models.User
	if err := s.api.Put(ctx, "/user/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword меняет пароль. Минимальная длина и совпадение
// подтверждения проверяются локально: при нарушении возвращается
// ValidationError без единого сетевого запроса.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirmation string) error {
	const op = "account.ChangePassword"

	fields := map[string]string{}
	if len(next) < 8 {
		fields["new_password"] = "password must be at least 8 characters"
	}
	if next != confirmation {
		fields["confirmation"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return &apiclient.ValidationError{Message: "invalid password change request", Fields: fields}
	}

	body := map[string]string{"current_password": current, "new_password": next}
	if err := s.api.Post(ctx, "/user/change-password", body, nil); err != nil {
		return err
	}
	s.log.Info("password changed", slog.String("op", op))
	return nil
}

// DeleteAccount удаляет аккаунт. Требует дословную фразу подтверждения,
// чтобы исключить случайное удаление.
func (s *Service) DeleteAccount(ctx context.Context, confirmation string) error {
	if confirmation != deleteConfirmationPhrase {
		return &apiclient.ValidationError{
			Message: "confirmation phrase does not match",
			Fields:  map[string]string{"confirmation": "type " + deleteConfirmationPhrase + " to confirm"},
		}
	}
	return s.api.Delete(ctx, "/user/account", nil)
}

// PushSubscription браузерная push-подписка в формате Web Push.
type PushSubscription struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

// PushPublicKey возвращает VAPID-ключ для подписки на push.
func (s *Service) PushPublicKey() string { return s.pushPublicKey }

// RegisterPush регистрирует push-подписку на бэкенде. Без настроенного
// ключа регистрация молча пропускается: уведомления — необязательная
// возможность, её отсутствие не ошибка.
func (s *Service) RegisterPush(ctx context.Context, sub PushSubscription) error {
	const op = "account.RegisterPush"

	if s.pushPublicKey == "" {
		s.log.Debug("push disabled, skipping registration", slog.String("op", op))
		return nil
	}
	if err := s.validate.Struct(sub); err != nil {
		return err
	}
	return s.api.Post(ctx, "/user/push-subscription", sub, nil)
}

// Referrals возвращает записи реферальной программы пользователя.
func (s *Service) Referrals(ctx context.Context) ([]models.Referral, error) {
	var out []models.Referral
	if err := s.api.Get(ctx, "/referrals/", &out); err != nil {
		return nil, err
	}
	return out, nil
}
