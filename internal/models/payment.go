package models

import "time"

// Статусы платежа, которыми оперирует админский воркфлоу проверки.
// Статусы approved и rejected терминальные.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusReview   = "review"
	PaymentStatusGrace    = "grace"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// Payment представляет платёж банковским переводом, ожидающий ручной проверки.
// Создаётся бэкендом при инициализации оплаты; клиент только читает и
// переводит его в терминальный статус действием администратора.
type Payment struct {
	ID              string          `json:"id"`
	UserEmail       string          `json:"user_email"`
	Amount          float64         `json:"amount"`
	AmountFormatted string          `json:"amount_formatted"` // Сумма с валютой, форматирует бэкенд
	Status          string          `json:"status"`
	Plan            string          `json:"plan"`
	Reference       string          `json:"reference"`         // Референс перевода, указанный плательщиком
	HasReceipt      bool            `json:"has_receipt"`       // Загружен ли comprobante
	AIVerification  *AIVerification `json:"ai_verification"`   // Блок AI-проверки, опционально
	CreatedAt       time.Time       `json:"created_at"`
}

// AIVerification результат автоматической проверки comprobante.
type AIVerification struct {
	Confidence      float64  `json:"confidence"`       // Уверенность модели, 0..1
	ExtractedAmount float64  `json:"extracted_amount"` // Сумма, распознанная на чеке
	ExtractedRef    string   `json:"extracted_ref"`    // Распознанный референс
	ExtractedDate   string   `json:"extracted_date"`   // Распознанная дата перевода
	Issues          []string `json:"issues"`           // Замечания, найденные моделью
}

// IsTerminal сообщает, что платёж уже нельзя перевести в другой статус.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusApproved || p.Status == PaymentStatusRejected
}
