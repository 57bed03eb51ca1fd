package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop/src/core/domain"
	"workshop/src/core/ports"
)

type fakeRepo struct {
	mechanics map[string]*domain.Mechanic
	requests  map[string][]domain.ServiceRequest
	healthErr error
}

func (f *fakeRepo) Health(context.Context) error { return f.healthErr }

func (f *fakeRepo) GetMechanicByCode(_ context.Context, code string) (*domain.Mechanic, error) {
	m, ok := f.mechanics[code]
	if !ok {
		return nil, domain.NewNotFoundError("mechanic")
	}
	return m, nil
}

func (f *fakeRepo) ListServiceRequestsByVIN(_ context.Context, vin string) ([]domain.ServiceRequest, error) {
	return f.requests[vin], nil
}

type fakeDispatcher struct {
	calls  []ports.DispatchRequest
	result *ports.DispatchResult
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req ports.DispatchRequest) (*ports.DispatchResult, error) {
	f.calls = append(f.calls, req)
	return f.result, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMerchant(d *fakeDispatcher, hosts ...string) *MerchantService {
	return NewMerchantService(&fakeRepo{}, d, hosts, discardLogger())
}

func TestContactMechanic_Dispatches(t *testing.T) {
	d := &fakeDispatcher{result: &ports.DispatchResult{StatusCode: 200, Body: map[string]any{"sent": true}, Attempts: 1}}
	svc := newMerchant(d)

	res, err := svc.ContactMechanic(context.Background(), ContactMechanicInput{
		MechanicAPI:    "http://mechanic.local/workshop/api/mechanic/receive_report",
		MechanicCode:   "TRAC_JHN",
		ProblemDetails: "noise",
		VIN:            "V1",
		Authorization:  "Bearer abc",
	})
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, map[string]any{"sent": true}, res.Body)

	require.Len(t, d.calls, 1)
	call := d.calls[0]
	assert.Equal(t, "Bearer abc", call.Authorization)
	assert.Zero(t, call.Repeats)
	assert.Equal(t, "TRAC_JHN", call.Query.Get("mechanic_code"))
	assert.Equal(t, "V1", call.Query.Get("vin"))
	assert.Equal(t, "false", call.Query.Get("repeat_request_if_failed"))
	assert.False(t, call.Query.Has("number_of_repeats"))
}

func TestContactMechanic_RepeatBudget(t *testing.T) {
	d := &fakeDispatcher{result: &ports.DispatchResult{StatusCode: 200}}
	svc := newMerchant(d)
	ctx := context.Background()
	api := "https://mechanic.local/report"

	_, err := svc.ContactMechanic(ctx, ContactMechanicInput{MechanicAPI: api, RepeatIfFailed: true, Repeats: 0})
	assert.True(t, domain.IsValidationError(err))

	_, err = svc.ContactMechanic(ctx, ContactMechanicInput{MechanicAPI: api, RepeatIfFailed: true, Repeats: MaxRepeats + 1})
	assert.True(t, domain.IsUnavailable(err))
	assert.Empty(t, d.calls)

	_, err = svc.ContactMechanic(ctx, ContactMechanicInput{MechanicAPI: api, RepeatIfFailed: true, Repeats: MaxRepeats})
	require.NoError(t, err)
	require.Len(t, d.calls, 1)
	assert.Equal(t, MaxRepeats, d.calls[0].Repeats)
	assert.Equal(t, "100", d.calls[0].Query.Get("number_of_repeats"))
}

func TestContactMechanic_RepeatsIgnoredWithoutFlag(t *testing.T) {
	d := &fakeDispatcher{result: &ports.DispatchResult{StatusCode: 200}}
	svc := newMerchant(d)

	_, err := svc.ContactMechanic(context.Background(), ContactMechanicInput{MechanicAPI: "http://m.local/x", Repeats: 500})
	require.NoError(t, err)
	assert.Zero(t, d.calls[0].Repeats)
}

func TestContactMechanic_EndpointChecks(t *testing.T) {
	d := &fakeDispatcher{result: &ports.DispatchResult{StatusCode: 200}}
	svc := newMerchant(d, "mechanic.local")
	ctx := context.Background()

	for _, api := range []string{"/api/merchant/contact_mechanic", "ftp://mechanic.local/x", "http://", "http://evil.local/x"} {
		_, err := svc.ContactMechanic(ctx, ContactMechanicInput{MechanicAPI: api})
		var dErr *domain.DomainError
		require.True(t, errors.As(err, &dErr), api)
		assert.Equal(t, "mechanic_api", dErr.Field, api)
	}
	assert.Empty(t, d.calls)

	_, err := svc.ContactMechanic(ctx, ContactMechanicInput{MechanicAPI: "http://MECHANIC.local:8000/x"})
	require.NoError(t, err)
}

func TestContactMechanic_DispatchError(t *testing.T) {
	d := &fakeDispatcher{err: domain.NewUnavailableError("mechanic api unreachable")}
	svc := newMerchant(d)

	_, err := svc.ContactMechanic(context.Background(), ContactMechanicInput{MechanicAPI: "http://m.local/x"})
	assert.True(t, domain.IsUnavailable(err))
}

func TestListServiceRequests(t *testing.T) {
	repo := &fakeRepo{requests: map[string][]domain.ServiceRequest{
		"V1": {{ID: 1}, {ID: 2}},
	}}
	svc := NewMerchantService(repo, &fakeDispatcher{}, nil, discardLogger())

	got, err := svc.ListServiceRequests(context.Background(), "V1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ListServiceRequests(context.Background(), "  ")
	assert.True(t, domain.IsValidationError(err))
}

func TestGetMechanic(t *testing.T) {
	repo := &fakeRepo{mechanics: map[string]*domain.Mechanic{
		"TRAC_JHN": {ID: 1, MechanicCode: "TRAC_JHN"},
	}}
	svc := NewMerchantService(repo, &fakeDispatcher{}, nil, discardLogger())

	m, err := svc.GetMechanic(context.Background(), "TRAC_JHN")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)

	_, err = svc.GetMechanic(context.Background(), "NOPE")
	assert.True(t, domain.IsNotFound(err))
}

func TestHealthService_Check(t *testing.T) {
	ok := NewHealthService(&fakeRepo{}, discardLogger()).Check(context.Background())
	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, "healthy", ok.Components["database"].Status)

	bad := NewHealthService(&fakeRepo{healthErr: errors.New("conn refused")}, discardLogger()).Check(context.Background())
	assert.Equal(t, "degraded", bad.Status)
	assert.Equal(t, "conn refused", bad.Components["database"].Message)

	none := NewHealthService(nil, discardLogger()).Check(context.Background())
	assert.Equal(t, "ok", none.Status)
	assert.Empty(t, none.Components)
}
