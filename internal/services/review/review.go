// Package review реализует админский воркфлоу проверки платежей банковским
// переводом. Переходы статусов валидируются локально до обращения к бэкенду:
// аппрув требует полного чеклиста, реджект — непустой причины, терминальные
// статусы не меняются.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jobper/jobper-dashboard/internal/models"
)

// Backend операции бэкенда, нужные воркфлоу проверки.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	FetchBinary(ctx context.Context, path string) ([]byte, string, error)
}

// Checklist трёхпунктовый чеклист ручной проверки перевода.
// Администратор обязан подтвердить каждый пункт отдельно.
type Checklist struct {
	FundsReceived    bool `json:"funds_received"`    // Деньги реально пришли на счёт
	AmountCorrect    bool `json:"amount_correct"`    // Сумма совпадает с тарифом
	ReferenceMatches bool `json:"reference_matches"` // Референс перевода совпадает с заявленным
}

// Complete сообщает, что все три пункта подтверждены.
func (c Checklist) Complete() bool {
	return c.FundsReceived && c.AmountCorrect && c.ReferenceMatches
}

// ErrChecklistIncomplete возвращается при попытке аппрува с неполным чеклистом.
type ErrChecklistIncomplete struct {
	Missing []string
}

func (e *ErrChecklistIncomplete) Error() string {
	return "checklist incomplete: " + strings.Join(e.Missing, ", ")
}

// ErrTerminalPayment возвращается при попытке изменить платёж в терминальном статусе.
type ErrTerminalPayment struct {
	Status string
}

func (e *ErrTerminalPayment) Error() string {
	return fmt.Sprintf("payment already %s", e.Status)
}

// ErrEmptyReason возвращается при реджекте без причины.
var ErrEmptyReason = fmt.Errorf("rejection reason must not be empty")

// Receipt загруженный comprobante. Буфер живёт до явного Release:
// просмотрщик обязан освободить его после закрытия, иначе изображения
// чеков копятся в памяти до конца сессии администратора.
type Receipt struct {
	Data        []byte
	ContentType string

	once sync.Once
}

// Release освобождает буфер comprobante. Повторные вызовы безопасны.
func (r *Receipt) Release() {
	r.once.Do(func() { r.Data = nil })
}

// Service админский воркфлоу проверки платежей.
type Service struct {
	api Backend
	log *slog.Logger

	mu       sync.Mutex
	statuses map[string]string // Последний известный статус по id платежа
}

// New создаёт воркфлоу проверки.
func New(api Backend, log *slog.Logger) *Service {
	return &Service{api: api, log: log, statuses: map[string]string{}}
}

// Pending возвращает платежи, ожидающие ручной проверки.
// Блок AI-проверки отдаётся как есть: он только подсказка, решение
// всегда принимает администратор по чеклисту.
func (s *Service) Pending(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	if err := s.api.Get(ctx, "/admin/payments/review", &out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, p := range out {
		s.statuses[p.ID] = p.Status
	}
	s.mu.Unlock()
	return out, nil
}

// CanApprove сообщает, разрешён ли аппрув с данным чеклистом.
func (s *Service) CanApprove(checklist Checklist) bool {
	return checklist.Complete()
}

// Approve одобряет платёж. Локально отклоняется, если чеклист неполный
// или платёж уже в терминальном статусе — запрос в бэкенд не уходит.
func (s *Service) Approve(ctx context.Context, paymentID string, checklist Checklist) (*models.Payment, error) {
	const op = "review.Approve"

	if !checklist.Complete() {
		return nil, &ErrChecklistIncomplete{Missing: missingItems(checklist)}
	}
	if err := s.ensureNotTerminal(paymentID); err != nil {
		return nil, err
	}

	var out models.Payment
	body := map[string]any{"checklist": checklist}
	if err := s.api.Post(ctx, "/admin/payments/"+paymentID+"/approve", body, &out); err != nil {
		return nil, err
	}

	s.remember(&out)
	s.log.Info("payment approved", slog.String("op", op),
		slog.String("payment_id", paymentID), slog.String("user_email", out.UserEmail))
	return &out, nil
}

// Reject отклоняет платёж. Причина обязательна: пользователь увидит её
// в письме и в статусе оплаты.
func (s *Service) Reject(ctx context.Context, paymentID, reason string) (*models.Payment, error) {
	const op = "review.Reject"

	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}
	if err := s.ensureNotTerminal(paymentID); err != nil {
		return nil, err
	}

	var out models.Payment
	body := map[string]string{"reason": reason}
	if err := s.api.Post(ctx, "/admin/payments/"+paymentID+"/reject", body, &out); err != nil {
		return nil, err
	}

	s.remember(&out)
	s.log.Info("payment rejected", slog.String("op", op),
		slog.String("payment_id", paymentID), slog.String("reason", reason))
	return &out, nil
}

// Comprobante скачивает чек платежа с авторизацией. Вызывающий обязан
// освободить буфер через Receipt.Release после показа.
func (s *Service) Comprobante(ctx context.Context, paymentID string) (*Receipt, error) {
	data, contentType, err := s.api.FetchBinary(ctx, "/admin/payments/"+paymentID+"/comprobante")
	if err != nil {
		return nil, err
	}
	return &Receipt{Data: data, ContentType: contentType}, nil
}

func (s *Service) ensureNotTerminal(paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[paymentID]
	if ok && (status == models.PaymentStatusApproved || status == models.PaymentStatusRejected) {
		return &ErrTerminalPayment{Status: status}
	}
	return nil
}

func (s *Service) remember(p *models.Payment) {
	s.mu.Lock()
	s.statuses[p.ID] = p.Status
	s.mu.Unlock()
}

func missingItems(c Checklist) []string {
	var missing []string
	if !c.FundsReceived {
		missing = append(missing, "funds_received")
	}
	if !c.AmountCorrect {
		missing = append(missing, "amount_correct")
	}
	if !c.ReferenceMatches {
		missing = append(missing, "reference_matches")
	}
	return missing
}
