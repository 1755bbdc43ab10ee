// Package payments реализует клиентский сценарий оплаты подписки:
// статус текущей подписки, запуск оплаты банковским переводом,
// подтверждение с загрузкой comprobante и отмена.
package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jobper/jobper-dashboard/internal/apiclient"
	"github.com/jobper/jobper-dashboard/internal/models"
	"github.com/jobper/jobper-dashboard/internal/plans"
)

// Backend операции бэкенда, нужные сервису платежей.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string, out any) error
}

// Service сервис оплаты подписки.
type Service struct {
	api Backend
	log *slog.Logger
}

// New создаёт сервис платежей.
func New(api Backend, log *slog.Logger) *Service {
	return &Service{api: api, log: log}
}

// Subscription возвращает подписку текущего пользователя.
func (s *Service) Subscription(ctx context.Context) (*models.Subscription, error) {
	var out models.Subscription
	if err := s.api.Get(ctx, "/payments/subscription", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status возвращает платёж пользователя, находящийся в проверке,
// либо nil, когда активных платежей нет.
func (s *Service) Status(ctx context.Context) (*models.Payment, error) {
	var out struct {
		Payment *models.Payment `json:"payment"`
	}
	if err := s.api.Get(ctx, "/payments/status", &out); err != nil {
		return nil, err
	}
	return out.Payment, nil
}

// Checkout инициирует оплату выбранного плана. План нормализуется до
// канонического ключа, чтобы бэкенд не получал алиасы.
func (s *Service) Checkout(ctx context.Context, plan string) (*models.Payment, error) {
	canonical := plans.Normalize(plan)
	if canonical == plans.Free {
		return nil, &apiclient.ValidationError{Message: fmt.Sprintf("plan %q is not purchasable", plan)}
	}

	var out models.Payment
	body := map[string]string{"plan": canonical}
	if err := s.api.Post(ctx, "/payments/checkout", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmWithReceipt подтверждает перевод: загружает comprobante и
// референс перевода одним multipart-запросом. Платёж переходит в
// статус review и ждёт ручной проверки администратора.
func (s *Service) ConfirmWithReceipt(ctx context.Context, paymentID, reference, filename string, receipt io.Reader) (*models.Payment, error) {
	const op = "payments.ConfirmWithReceipt"

	var out models.Payment
	fields := map[string]string{"payment_id": paymentID, "reference": reference}
	if err := s.api.Upload(ctx, "/payments/confirm", "comprobante", filename, receipt, fields, &out); err != nil {
		return nil, err
	}
	s.log.Info("payment confirmation submitted", slog.String("op", op),
		slog.String("payment_id", paymentID), slog.String("status", out.Status))
	return &out, nil
}

// Cancel отменяет незавершённый платёж пользователя.
func (s *Service) Cancel(ctx context.Context, paymentID string) error {
	return s.api.Post(ctx, "/payments/cancel", map[string]string{"payment_id": paymentID}, nil)
}

// OneClickRenewal продлевает подписку на текущем плане без повторного
// ввода данных. Бэкенд создаёт платёж с тем же планом и суммой.
func (s *Service) OneClickRenewal(ctx context.Context) (*models.Payment, error) {
	var out models.Payment
	if err := s.api.Post(ctx, "/payments/one-click-renewal", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
