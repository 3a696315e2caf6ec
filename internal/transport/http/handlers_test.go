package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inntektlager/internal/income/models"
	"inntektlager/internal/income/usage"
	"inntektlager/pkg/domain"
	dErrors "inntektlager/pkg/domain-errors"
)

type fakeIncomeService struct {
	result    models.ClassifiedResult
	err       error
	lastKey   models.LookupKey
	lastEdit  models.ManualEdit
	lastGetID domain.RecordID
	getDate   time.Time
}

func (f *fakeIncomeService) Resolve(_ context.Context, key models.LookupKey) (models.ClassifiedResult, error) {
	f.lastKey = key
	return f.result, f.err
}

func (f *fakeIncomeService) ResolveManual(_ context.Context, key models.LookupKey, _ models.Payload, edit models.ManualEdit) (models.ClassifiedResult, error) {
	f.lastKey = key
	f.lastEdit = edit
	return f.result, f.err
}

func (f *fakeIncomeService) GetByID(_ context.Context, id domain.RecordID, calculationDate time.Time) (models.ClassifiedResult, error) {
	f.lastGetID = id
	f.getDate = calculationDate
	return f.result, f.err
}

type fakeValidator struct {
	subject string
	err     error
}

func (f *fakeValidator) ValidateToken(string) (string, error) {
	return f.subject, f.err
}

func newTestRouter(t *testing.T, svc IncomeService) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	handler := NewHandler(svc, logger)
	return NewRouter(handler, usage.NewHealth(3*time.Hour), &fakeValidator{subject: "saksbehandler"}, logger)
}

func resolveBody() string {
	return `{
		"aktorId": "1000096233942",
		"kontekstId": "soknad-123",
		"kontekstType": "soknad",
		"beregningsDato": "2019-04-03"
	}`
}

func authorized(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer token")
	return req
}

func TestHandleResolve(t *testing.T) {
	recordID := domain.NewRecordID(time.Now())
	svc := &fakeIncomeService{result: models.ClassifiedResult{
		RecordID:        recordID,
		LastClosedMonth: domain.Month{Year: 2019, Month: time.February},
		FirstMonth:      domain.Month{Year: 2016, Month: time.March},
	}}
	router := newTestRouter(t, svc)

	req := authorized(httptest.NewRequest(http.MethodPost, "/v1/inntekt", strings.NewReader(resolveBody())))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ActorID("1000096233942"), svc.lastKey.ActorID)
	assert.Equal(t, "soknad-123", svc.lastKey.ContextID)
	assert.Equal(t, time.Date(2019, time.April, 3, 0, 0, 0, 0, time.UTC), svc.lastKey.CalculationDate)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, recordID.String(), body["inntektsId"])
	assert.Equal(t, "2019-02", body["sisteAvsluttendeMaaned"])
	assert.Equal(t, "2016-03", body["foersteMaaned"])
}

func TestHandleResolve_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "malformed json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed calculation date",
			body:       `{"aktorId":"1","kontekstId":"c","kontekstType":"soknad","beregningsDato":"03.04.2019"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid national id",
			body:       `{"aktorId":"1","foedselsnummer":"123","kontekstId":"c","kontekstType":"soknad","beregningsDato":"2019-04-03"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "upstream rejection",
			body:       resolveBody(),
			serviceErr: dErrors.New(dErrors.CodeUpstream, "income source returned status 503"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "upstream timeout",
			body:       resolveBody(),
			serviceErr: dErrors.New(dErrors.CodeUpstreamTimeout, "income source timed out"),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "store failure",
			body:       resolveBody(),
			serviceErr: dErrors.New(dErrors.CodeStore, "income lookup failed"),
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakeIncomeService{err: tt.serviceErr})
			req := authorized(httptest.NewRequest(http.MethodPost, "/v1/inntekt", strings.NewReader(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleManualEdit_UsesTokenSubjectAsEditor(t *testing.T) {
	svc := &fakeIncomeService{result: models.ClassifiedResult{RecordID: domain.NewRecordID(time.Now())}}
	router := newTestRouter(t, svc)

	body := `{
		"aktorId": "1000096233942",
		"kontekstId": "soknad-123",
		"kontekstType": "soknad",
		"beregningsDato": "2019-04-03",
		"begrunnelse": "feil i rapportert loenn",
		"inntekt": {"aktoerId": "1000096233942", "arbeidsInntektMaaned": []}
	}`
	req := authorized(httptest.NewRequest(http.MethodPost, "/v1/inntekt/manuelt", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "saksbehandler", svc.lastEdit.EditedBy)
	assert.Equal(t, "feil i rapportert loenn", svc.lastEdit.Justification)
}

func TestHandleGetByID(t *testing.T) {
	recordID := domain.NewRecordID(time.Now())
	svc := &fakeIncomeService{result: models.ClassifiedResult{RecordID: recordID}}
	router := newTestRouter(t, svc)

	t.Run("found", func(t *testing.T) {
		path := fmt.Sprintf("/v1/inntekt/%s?beregningsDato=2019-04-03", recordID)
		req := authorized(httptest.NewRequest(http.MethodGet, path, nil))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, recordID, svc.lastGetID)
		assert.Equal(t, time.Date(2019, time.April, 3, 0, 0, 0, 0, time.UTC), svc.getDate)
	})

	t.Run("invalid id is rejected before the store", func(t *testing.T) {
		req := authorized(httptest.NewRequest(http.MethodGet, "/v1/inntekt/not-a-ulid", nil))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		missing := &fakeIncomeService{err: dErrors.New(dErrors.CodeNotFound, "income record not found")}
		router := newTestRouter(t, missing)
		path := "/v1/inntekt/" + domain.NewRecordID(time.Now()).String()
		req := authorized(httptest.NewRequest(http.MethodGet, path, nil))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAuth(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	handler := NewHandler(&fakeIncomeService{}, logger)

	t.Run("missing token", func(t *testing.T) {
		router := NewRouter(handler, nil, &fakeValidator{subject: "s"}, logger)
		req := httptest.NewRequest(http.MethodPost, "/v1/inntekt", strings.NewReader(resolveBody()))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		router := NewRouter(handler, nil, &fakeValidator{err: fmt.Errorf("token is expired")}, logger)
		req := authorized(httptest.NewRequest(http.MethodPost, "/v1/inntekt", strings.NewReader(resolveBody())))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProbes(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	handler := NewHandler(&fakeIncomeService{}, logger)

	t.Run("alive while consumer healthy", func(t *testing.T) {
		router := NewRouter(handler, usage.NewHealth(3*time.Hour), &fakeValidator{}, logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/isAlive", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unavailable after grace elapses", func(t *testing.T) {
		down := usage.NewHealthDegradedAt(time.Now().Add(-4*time.Hour), 3*time.Hour)
		router := NewRouter(handler, down, &fakeValidator{}, logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/isAlive", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ready", func(t *testing.T) {
		router := NewRouter(handler, nil, &fakeValidator{}, logger)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/isReady", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
