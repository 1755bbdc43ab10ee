package team

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jobper/jobper-dashboard/internal/gate"
	"github.com/jobper/jobper-dashboard/internal/models"
)

type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) Get(ctx context.Context, path string, out any) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

func (m *BackendMock) Post(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *BackendMock) Put(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *BackendMock) Delete(ctx context.Context, path string, out any) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

type staticPlan string

func (p staticPlan) CurrentPlan() string { return string(p) }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestInvite_ValidatesEmailLocally(t *testing.T) {
	api := new(BackendMock)
	svc := New(api, staticPlan("empresarial"), newNoopLogger())

	_, err := svc.Invite(context.Background(), InviteRequest{Email: "not-an-email"})
	require.Error(t, err)
	api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvite_DefaultsRoleToMember(t *testing.T) {
	api := new(BackendMock)
	var sent InviteRequest
	api.On("Post", mock.Anything, "/team/invite", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).(InviteRequest)
			out := args.Get(3).(*models.TeamMember)
			out.Email = sent.Email
			out.Pending = true
		}).Return(nil).Once()

	svc := New(api, staticPlan("empresarial"), newNoopLogger())
	member, err := svc.Invite(context.Background(), InviteRequest{Email: "colega@empresa.mx"})
	require.NoError(t, err)
	assert.Equal(t, "member", sent.Role)
	assert.True(t, member.Pending)
}

func TestPipeline_GatedBelowEmpresarial(t *testing.T) {
	api := new(BackendMock)
	svc := New(api, staticPlan("profesional"), newNoopLogger())

	_, err := svc.Pipeline(context.Background())
	var denied *gate.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "empresarial", denied.Decision.RequiredPlan)
	api.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_AllowedForEmpresarial(t *testing.T) {
	api := new(BackendMock)
	api.On("Get", mock.Anything, "/team/pipeline", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]models.PipelineItem)
			*out = []models.PipelineItem{{ID: "i1", Stage: "interesado"}}
		}).Return(nil).Once()

	svc := New(api, staticPlan("empresarial"), newNoopLogger())
	items, err := svc.Pipeline(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "interesado", items[0].Stage)
}

func TestUpdateStage_RejectsUnknownStage(t *testing.T) {
	api := new(BackendMock)
	svc := New(api, staticPlan("empresarial"), newNoopLogger())

	err := svc.UpdateStage(context.Background(), "i1", "archivado")
	var unknown *UnknownStageError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "archivado", unknown.Stage)
	api.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStage_KnownStage(t *testing.T) {
	api := new(BackendMock)
	api.On("Put", mock.Anything, "/pipeline/i1/stage",
		map[string]string{"stage": "ganado"}, mock.Anything).Return(nil).Once()

	svc := New(api, staticPlan("empresarial"), newNoopLogger())
	require.NoError(t, svc.UpdateStage(context.Background(), "i1", "ganado"))
	api.AssertExpectations(t)
}

func TestMembers_UsesTeamRoot(t *testing.T) {
	api := new(BackendMock)
	api.On("Get", mock.Anything, "/team", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]models.TeamMember)
			*out = []models.TeamMember{{ID: "m1", Email: "colega@empresa.mx"}}
		}).Return(nil).Once()

	svc := New(api, staticPlan("empresarial"), newNoopLogger())
	members, err := svc.Members(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	api.AssertExpectations(t)
}

func TestAssign_UsesPipelineAssignPath(t *testing.T) {
	api := new(BackendMock)
	api.On("Put", mock.Anything, "/pipeline/i1/assign",
		map[string]string{"member_id": "m1"}, mock.Anything).Return(nil).Once()

	svc := New(api, staticPlan("empresarial"), newNoopLogger())
	require.NoError(t, svc.Assign(context.Background(), "i1", "m1"))
	api.AssertExpectations(t)
}
