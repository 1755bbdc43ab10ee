package models

import "time"

// TeamMember участник команды в рамках одного аккаунта компании.
type TeamMember struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"` // owner, member
	JoinedAt *time.Time `json:"joined_at"`
	Pending  bool   `json:"pending"` // Приглашение отправлено, но ещё не принято
}

// PipelineItem контракт, ведущийся командой по стадиям воронки.
type PipelineItem struct {
	ID         string    `json:"id"`
	ContractID string    `json:"contract_id"`
	Title      string    `json:"title"`
	Stage      string    `json:"stage"` // interesado, preparando, presentado, ganado, perdido
	AssigneeID string    `json:"assignee_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PipelineComment комментарий участника команды к элементу воронки.
type PipelineComment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Referral запись реферальной программы.
type Referral struct {
	Email     string    `json:"email"`
	Status    string    `json:"status"` // invited, registered, subscribed
	Reward    string    `json:"reward"`
	CreatedAt time.Time `json:"created_at"`
}
