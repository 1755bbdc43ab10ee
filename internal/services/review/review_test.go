package review

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

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

func (m *BackendMock) FetchBinary(ctx context.Context, path string) ([]byte, string, error) {
	args := m.Called(ctx, path)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCanApprove_RequiresAllThreeItems(t *testing.T) {
	cases := []struct {
		name      string
		checklist Checklist
		want      bool
	}{
		{"all confirmed", Checklist{true, true, true}, true},
		{"funds missing", Checklist{false, true, true}, false},
		{"amount missing", Checklist{true, false, true}, false},
		{"reference missing", Checklist{true, true, false}, false},
		{"empty", Checklist{}, false},
	}

	svc := New(new(BackendMock), newNoopLogger())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.CanApprove(tc.checklist))
		})
	}
}

func TestApprove_IncompleteChecklistNeverReachesBackend(t *testing.T) {
	api := new(BackendMock)
	svc := New(api, newNoopLogger())

	_, err := svc.Approve(context.Background(), "p1", Checklist{FundsReceived: true})

	var incomplete *ErrChecklistIncomplete
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t, []string{"amount_correct", "reference_matches"}, incomplete.Missing)
	api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_CompleteChecklist(t *testing.T) {
	api := new(BackendMock)
	api.On("Post", mock.Anything, "/admin/payments/p1/approve", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*models.Payment)
			out.ID = "p1"
			out.Status = models.PaymentStatusApproved
		}).Return(nil).Once()

	svc := New(api, newNoopLogger())
	payment, err := svc.Approve(context.Background(), "p1", Checklist{true, true, true})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, payment.Status)
}

func TestReject_RequiresReason(t *testing.T) {
	api := new(BackendMock)
	svc := New(api, newNoopLogger())

	_, err := svc.Reject(context.Background(), "p1", "   ")
	assert.ErrorIs(t, err, ErrEmptyReason)
	api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTerminalPayment_RefusesFurtherTransitions(t *testing.T) {
	api := new(BackendMock)
	api.On("Post", mock.Anything, "/admin/payments/p1/reject", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*models.Payment)
			out.ID = "p1"
			out.Status = models.PaymentStatusRejected
		}).Return(nil).Once()

	svc := New(api, newNoopLogger())
	_, err := svc.Reject(context.Background(), "p1", "monto incorrecto")
	require.NoError(t, err)

	// Платёж терминальный: ни аппрув, ни повторный реджект не уходят в бэкенд
	_, err = svc.Approve(context.Background(), "p1", Checklist{true, true, true})
	var terminal *ErrTerminalPayment
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, models.PaymentStatusRejected, terminal.Status)

	_, err = svc.Reject(context.Background(), "p1", "otra razon")
	require.ErrorAs(t, err, &terminal)
	api.AssertNumberOfCalls(t, "Post", 1)
}

func TestApprove_GracePaymentWithFullChecklist(t *testing.T) {
	api := new(BackendMock)
	api.On("Get", mock.Anything, "/admin/payments/review", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]models.Payment)
			*out = []models.Payment{{ID: "p3", Status: models.PaymentStatusGrace}}
		}).Return(nil).Once()
	api.On("Post", mock.Anything, "/admin/payments/p3/approve", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(3).(*models.Payment)
			out.ID = "p3"
			out.Status = models.PaymentStatusApproved
		}).Return(nil).Once()

	svc := New(api, newNoopLogger())
	_, err := svc.Pending(context.Background())
	require.NoError(t, err)

	// Платёж в grace не терминальный: полный чеклист переводит его в approved
	payment, err := svc.Approve(context.Background(), "p3", Checklist{true, true, true})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, payment.Status)

	// А вот повторный аппрув уже закрыт
	_, err = svc.Approve(context.Background(), "p3", Checklist{true, true, true})
	var terminal *ErrTerminalPayment
	assert.ErrorAs(t, err, &terminal)
}

func TestComprobante_ReleaseFreesBuffer(t *testing.T) {
	api := new(BackendMock)
	api.On("FetchBinary", mock.Anything, "/admin/payments/p1/comprobante").
		Return([]byte{0x25, 0x50, 0x44, 0x46}, "application/pdf", nil).Once()

	svc := New(api, newNoopLogger())
	receipt, err := svc.Comprobante(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", receipt.ContentType)
	assert.NotEmpty(t, receipt.Data)

	receipt.Release()
	assert.Nil(t, receipt.Data)

	// Повторный Release безопасен
	receipt.Release()
}

func TestPending_TracksStatuses(t *testing.T) {
	api := new(BackendMock)
	api.On("Get", mock.Anything, "/admin/payments/review", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]models.Payment)
			*out = []models.Payment{
				{ID: "p1", Status: models.PaymentStatusReview},
				{ID: "p2", Status: models.PaymentStatusApproved},
			}
		}).Return(nil).Once()

	svc := New(api, newNoopLogger())
	_, err := svc.Pending(context.Background())
	require.NoError(t, err)

	// p2 пришёл уже терминальным — переходы закрыты
	_, err = svc.Approve(context.Background(), "p2", Checklist{true, true, true})
	var terminal *ErrTerminalPayment
	assert.ErrorAs(t, err, &terminal)
}
