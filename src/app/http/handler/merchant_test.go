package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop/src/app/http/dto"
	"workshop/src/app/http/response"
	"workshop/src/app/middleware"
	"workshop/src/core/domain"
	"workshop/src/core/ports"
	"workshop/src/core/usecase"
	"workshop/src/infra/config"
	"workshop/src/infra/dispatch"
	"workshop/src/infra/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRepo struct {
	mechanics map[string]*domain.Mechanic
	requests  map[string][]domain.ServiceRequest
}

func (s *stubRepo) Health(context.Context) error { return nil }

func (s *stubRepo) GetMechanicByCode(_ context.Context, code string) (*domain.Mechanic, error) {
	if m, ok := s.mechanics[code]; ok {
		return m, nil
	}
	return nil, domain.NewNotFoundError("mechanic")
}

func (s *stubRepo) ListServiceRequestsByVIN(_ context.Context, vin string) ([]domain.ServiceRequest, error) {
	return s.requests[vin], nil
}

func seededRepo() *stubRepo {
	mechanic := &domain.Mechanic{ID: 1, MechanicCode: "TRAC_JHN", Email: "jhon@example.com", Number: "4156895423"}
	vehicle := &domain.Vehicle{ID: 5, VIN: "0BZCX25UTBJ987271", PinCode: "9897", Owner: &domain.Owner{ID: 9, Email: "adam007@example.com", Number: "9876895423"}}
	return &stubRepo{
		mechanics: map[string]*domain.Mechanic{"TRAC_JHN": mechanic},
		requests: map[string][]domain.ServiceRequest{
			"0BZCX25UTBJ987271": {{
				ID:             3,
				Mechanic:       mechanic,
				Vehicle:        vehicle,
				ProblemDetails: "engine trouble",
				Status:         domain.ServicePending,
				CreatedOn:      time.Date(2021, time.March, 5, 14, 7, 9, 0, time.UTC),
			}},
			"BROKEN": {{ID: 4, Vehicle: vehicle, CreatedOn: time.Now()}},
		},
	}
}

func newTestRouter(repo ports.WorkshopRepository, dispatcher ports.MechanicDispatcher) *gin.Engine {
	log := logger.Discard()
	svc := usecase.NewMerchantService(repo, dispatcher, nil, log)
	h := NewMerchantHandler(svc, nil)

	r := gin.New()
	r.Use(middleware.RequestID(log))
	r.POST("/workshop/api/merchant/contact_mechanic", h.ContactMechanic)
	r.GET("/workshop/api/merchant/service_requests/:vin", h.ServiceRequests)
	r.GET("/workshop/api/mechanic/:code", h.Mechanic)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var body response.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestServiceRequests(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	w := do(r, http.MethodGet, "/workshop/api/merchant/service_requests/0BZCX25UTBJ987271", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ServiceRequests []map[string]any `json:"service_requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ServiceRequests, 1)

	sr := body.ServiceRequests[0]
	assert.Equal(t, "05 March, 2021, 14:07:09", sr["created_on"])
	assert.Equal(t, "pending", sr["status"])
	assert.Equal(t, map[string]any{"id": float64(1), "mechanic_code": "TRAC_JHN"}, sr["mechanic"])
	assert.NotContains(t, w.Body.String(), "jhon@example.com")
	assert.NotContains(t, w.Body.String(), "9897")

	vehicle := sr["vehicle"].(map[string]any)
	assert.Equal(t, "0BZCX25UTBJ987271", vehicle["vin"])
}

func TestServiceRequests_EmptyList(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	w := do(r, http.MethodGet, "/workshop/api/merchant/service_requests/UNKNOWN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"service_requests": []}`, w.Body.String())
}

func TestServiceRequests_UnpopulatedRelation(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	w := do(r, http.MethodGet, "/workshop/api/merchant/service_requests/BROKEN", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
	assert.NotContains(t, w.Body.String(), "service_requests")
}

func TestMechanic(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	w := do(r, http.MethodGet, "/workshop/api/mechanic/TRAC_JHN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 1, "mechanic_code": "TRAC_JHN"}`, w.Body.String())

	w = do(r, http.MethodGet, "/workshop/api/mechanic/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactMechanic_Validation(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	cases := []struct {
		body  any
		field string
	}{
		{map[string]any{"number_of_repeats": 3}, "mechanic_api"},
		{map[string]any{"mechanic_api": "", "number_of_repeats": 3}, "mechanic_api"},
		{map[string]any{"mechanic_api": "http://m.local/x", "repeat_request_if_failed": "maybe"}, "repeat_request_if_failed"},
		{map[string]any{"mechanic_api": "http://m.local/x", "number_of_repeats": "many"}, "number_of_repeats"},
		{map[string]any{"mechanic_api": "/api/merchant/contact_mechanic"}, "mechanic_api"},
		{map[string]any{"mechanic_api": "http://m.local/x", "repeat_request_if_failed": true, "number_of_repeats": 0}, "number_of_repeats"},
	}
	for _, tc := range cases {
		w := do(r, http.MethodPost, "/workshop/api/merchant/contact_mechanic", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", tc.body)
		detail := decodeError(t, w)
		assert.Equal(t, "VALIDATION_ERROR", detail.Code)
		assert.Equal(t, tc.field, detail.Field)
		assert.NotEmpty(t, detail.RequestID)
	}
}

func TestContactMechanic_MalformedBody(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	req := httptest.NewRequest(http.MethodPost, "/workshop/api/merchant/contact_mechanic", bytes.NewBufferString("[1,2"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)
}

func TestContactMechanic_TooManyRepeats(t *testing.T) {
	r := newTestRouter(seededRepo(), nil)

	w := do(r, http.MethodPost, "/workshop/api/merchant/contact_mechanic", map[string]any{
		"mechanic_api":             "http://m.local/x",
		"repeat_request_if_failed": true,
		"number_of_repeats":        101,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestContactMechanic_RelaysMechanicAnswer(t *testing.T) {
	var gotAuth, gotVIN string
	mechanic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVIN = r.URL.Query().Get("vin")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": 12, "sent": true, "report_link": "/report?id=12"}`))
	}))
	defer mechanic.Close()

	client := dispatch.New(config.DispatchConfig{Timeout: 2 * time.Second}, logger.Discard())
	r := newTestRouter(seededRepo(), client)

	w := do(r, http.MethodPost, "/workshop/api/merchant/contact_mechanic", map[string]any{
		"mechanic_api":             mechanic.URL + "/workshop/api/mechanic/receive_report",
		"mechanic_code":            "TRAC_JHN",
		"problem_details":          "engine trouble",
		"vin":                      "0BZCX25UTBJ987271",
		"repeat_request_if_failed": false,
		"number_of_repeats":        1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.ContactMechanicResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, true, body.ResponseFromMechanicAPI.(map[string]any)["sent"])
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "0BZCX25UTBJ987271", gotVIN)
}

func TestContactMechanic_RelaysFailureStatus(t *testing.T) {
	mechanic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "mechanic not found"}`))
	}))
	defer mechanic.Close()

	client := dispatch.New(config.DispatchConfig{Timeout: 2 * time.Second}, logger.Discard())
	r := newTestRouter(seededRepo(), client)

	w := do(r, http.MethodPost, "/workshop/api/merchant/contact_mechanic", map[string]any{
		"mechanic_api": mechanic.URL,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"response_from_mechanic_api": {"message": "mechanic not found"}, "status": 404}`, w.Body.String())
}

func TestContactMechanic_BodylessStatusKeepsEnvelope(t *testing.T) {
	for _, code := range []int{http.StatusNoContent, http.StatusNotModified} {
		mechanic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := dispatch.New(config.DispatchConfig{Timeout: 2 * time.Second}, logger.Discard())
		r := newTestRouter(seededRepo(), client)

		w := do(r, http.MethodPost, "/workshop/api/merchant/contact_mechanic", map[string]any{
			"mechanic_api": mechanic.URL,
		})
		mechanic.Close()

		assert.Equal(t, http.StatusOK, w.Code, "%d", code)
		var body dto.ContactMechanicResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "%d", code)
		assert.Equal(t, code, body.Status)
		assert.Nil(t, body.ResponseFromMechanicAPI)
	}
}
