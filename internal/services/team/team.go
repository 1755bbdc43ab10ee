// Package team реализует командные операции аккаунта: участники,
// приглашения и воронка контрактов. Воронка закрыта тарифом empresarial,
// гейт проверяется до обращения к бэкенду.
package team

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/jobper/jobper-dashboard/internal/gate"
	"github.com/jobper/jobper-dashboard/internal/models"
)

// Стадии воронки, известные клиенту. Бэкенд отклонит неизвестную стадию,
// но проверка здесь даёт ошибку без сетевого запроса.
var knownStages = map[string]bool{
	"interesado": true,
	"preparando": true,
	"presentado": true,
	"ganado":     true,
	"perdido":    true,
}

// Backend операции бэкенда, нужные командному сервису.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// PlanSource текущий тарифный план пользователя.
type PlanSource interface {
	CurrentPlan() string
}

// Service командный сервис.
type Service struct {
	api      Backend
	plan     PlanSource
	log      *slog.Logger
	validate *validator.Validate
}

// New создаёт командный сервис.
func New(api Backend, plan PlanSource, log *slog.Logger) *Service {
	return &Service{api: api, plan: plan, log: log, validate: validator.New()}
}

// Members возвращает участников команды, включая неподтверждённые приглашения.
func (s *Service) Members(ctx context.Context) ([]models.TeamMember, error) {
	var out []models.TeamMember
	if err := s.api.Get(ctx, "/team", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InviteRequest тело приглашения участника.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=owner member"`
}

// Invite отправляет приглашение на email. Адрес валидируется локально,
// некорректный запрос в бэкенд не уходит.
func (s *Service) Invite(ctx context.Context, req InviteRequest) (*models.TeamMember, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = "member"
	}

	var out models.TeamMember
	if err := s.api.Post(ctx, "/team/invite", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove удаляет участника из команды.
func (s *Service) Remove(ctx context.Context, memberID string) error {
	return s.api.Delete(ctx, "/team/members/"+memberID, nil)
}

// Pipeline возвращает воронку контрактов команды. Закрыта гейтом
// team_pipeline: на тарифах ниже empresarial запрос не выполняется.
func (s *Service) Pipeline(ctx context.Context) ([]models.PipelineItem, error) {
	if d := gate.Check(gate.FeatureTeamPipeline, s.plan.CurrentPlan()); !d.Allowed {
		return nil, &gate.DeniedError{Decision: d}
	}
	var out []models.PipelineItem
	if err := s.api.Get(ctx, "/team/pipeline", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStage переводит элемент воронки в новую стадию.
func (s *Service) UpdateStage(ctx context.Context, itemID, stage string) error {
	if !knownStages[stage] {
		return &UnknownStageError{Stage: stage}
	}
	return s.api.Put(ctx, "/pipeline/"+itemID+"/stage", map[string]string{"stage": stage}, nil)
}

// Assign назначает ответственного за элемент воронки.
func (s *Service) Assign(ctx context.Context, itemID, memberID string) error {
	return s.api.Put(ctx, "/pipeline/"+itemID+"/assign", map[string]string{"member_id": memberID}, nil)
}

// Comments возвращает комментарии к элементу воронки.
func (s *Service) Comments(ctx context.Context, itemID string) ([]models.PipelineComment, error) {
	var out []models.PipelineComment
	if err := s.api.Get(ctx, "/pipeline/"+itemID+"/comments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddComment добавляет комментарий к элементу воронки.
func (s *Service) AddComment(ctx context.Context, itemID, body string) (*models.PipelineComment, error) {
	var out models.PipelineComment
	if err := s.api.Post(ctx, "/pipeline/"+itemID+"/comments", map[string]string{"body": body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnknownStageError возвращается при переводе элемента в неизвестную стадию.
type UnknownStageError struct {
	Stage string
}

func (e *UnknownStageError) Error() string {
	return "unknown pipeline stage: " + e.Stage
}
