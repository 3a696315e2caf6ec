package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inntektlager/internal/income/classify"
	"inntektlager/internal/income/client"
	"inntektlager/internal/income/models"
	"inntektlager/internal/income/store"
	"inntektlager/pkg/domain"
	dErrors "inntektlager/pkg/domain-errors"
	"inntektlager/pkg/testutil"
)

// fakeSource counts fetches and returns a canned payload or error.
type fakeSource struct {
	calls   int
	payload models.Payload
	err     error
}

func (f *fakeSource) Fetch(_ context.Context, req client.FetchRequest) (models.Payload, error) {
	f.calls++
	if f.err != nil {
		return models.Payload{}, f.err
	}
	payload := f.payload
	if payload.ActorID == "" {
		payload.ActorID = req.ActorID
	}
	return payload, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testKey(contextID string) models.LookupKey {
	return models.LookupKey{
		ActorID:         "1000096233942",
		ContextID:       contextID,
		ContextType:     "soknad",
		CalculationDate: time.Date(2019, time.April, 3, 0, 0, 0, 0, time.UTC),
	}
}

func payloadWithMonths(months ...domain.Month) models.Payload {
	p := models.Payload{ActorID: "1000096233942"}
	for _, m := range months {
		p.Months = append(p.Months, models.MonthEntries{
			Month: m,
			Entries: []classify.Entry{
				{Amount: 25000, IncomeType: classify.TypeWage, Description: "fastloenn"},
			},
		})
	}
	return p
}

func TestResolve_CacheHitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{payload: payloadWithMonths(domain.Month{Year: 2019, Month: time.February})}
	svc := New(store.NewInMemoryStore(), source, discardLogger(), nil)
	key := testKey("ctx-1")

	first, err := svc.Resolve(ctx, key)
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, first.RecordID, second.RecordID)
	assert.Equal(t, 1, source.calls, "cache hit must not call the external source")
}

func TestResolve_ClassifiesWithinPeriod(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{payload: payloadWithMonths(
		domain.Month{Year: 2019, Month: time.February}, // inside the window
		domain.Month{Year: 2019, Month: time.March},    // after last closed month
		domain.Month{Year: 2016, Month: time.February}, // before first month
	)}
	svc := New(store.NewInMemoryStore(), source, discardLogger(), nil)

	result, err := svc.Resolve(ctx, testKey("ctx-1"))
	require.NoError(t, err)

	assert.Equal(t, domain.Month{Year: 2019, Month: time.February}, result.LastClosedMonth)
	assert.Equal(t, domain.Month{Year: 2016, Month: time.March}, result.FirstMonth)
	require.Len(t, result.Months, 1)
	require.Len(t, result.Months[0].Entries, 1)
	assert.Equal(t, classify.ClassEmployment, result.Months[0].Entries[0].IncomeClass)
	assert.Equal(t, 25000.0, result.Months[0].Entries[0].Amount)
}

func TestResolve_DifferentContextsNeverShare(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{payload: payloadWithMonths(domain.Month{Year: 2019, Month: time.February})}
	svc := New(store.NewInMemoryStore(), source, discardLogger(), nil)

	a, err := svc.Resolve(ctx, testKey("ctx-a"))
	require.NoError(t, err)
	b, err := svc.Resolve(ctx, testKey("ctx-b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.RecordID, b.RecordID)
	assert.Equal(t, 2, source.calls)
}

func TestResolve_UpstreamFailurePropagatesWithoutWrite(t *testing.T) {
	ctx := context.Background()
	upstreamErr := dErrors.Wrap(
		&client.UpstreamError{StatusCode: 503},
		dErrors.CodeUpstream, "income source returned status 503",
	)
	source := &fakeSource{err: upstreamErr}
	memStore := store.NewInMemoryStore()
	svc := New(memStore, source, discardLogger(), nil)
	key := testKey("ctx-1")

	_, err := svc.Resolve(ctx, key)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))

	// No partial write: a retry goes upstream again.
	source.err = nil
	source.payload = payloadWithMonths(domain.Month{Year: 2019, Month: time.February})
	_, err = svc.Resolve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestResolve_RejectsInvalidKey(t *testing.T) {
	svc := New(store.NewInMemoryStore(), &fakeSource{}, discardLogger(), nil)

	_, err := svc.Resolve(context.Background(), models.LookupKey{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestResolveManual_AlwaysCreatesNewRecord(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{payload: payloadWithMonths(domain.Month{Year: 2019, Month: time.February})}
	memStore := store.NewInMemoryStore()
	svc := New(memStore, source, discardLogger(), nil)
	key := testKey("ctx-1")

	cached, err := svc.Resolve(ctx, key)
	require.NoError(t, err)

	edit := models.ManualEdit{EditedBy: "saksbehandler", Justification: "corrected reported wage"}
	corrected, err := svc.ResolveManual(ctx, key, payloadWithMonths(domain.Month{Year: 2019, Month: time.January}), edit)
	require.NoError(t, err)

	assert.NotEqual(t, cached.RecordID, corrected.RecordID)
	assert.True(t, corrected.ManuallyEdited)

	// The manual record is now canonical for the key.
	resolved, err := svc.Resolve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, corrected.RecordID, resolved.RecordID)
	assert.Equal(t, 1, source.calls)
}

func TestResolveManual_Validation(t *testing.T) {
	svc := New(store.NewInMemoryStore(), &fakeSource{}, discardLogger(), nil)
	key := testKey("ctx-1")
	payload := payloadWithMonths(domain.Month{Year: 2019, Month: time.February})

	t.Run("requires editor identity", func(t *testing.T) {
		_, err := svc.ResolveManual(context.Background(), key, payload, models.ManualEdit{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("caps justification length", func(t *testing.T) {
		edit := models.ManualEdit{
			EditedBy:      "saksbehandler",
			Justification: string(make([]byte, models.MaxJustificationLength+1)),
		}
		_, err := svc.ResolveManual(context.Background(), key, payload, edit)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestResolve_RecalculationLifecycle(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{payload: payloadWithMonths(domain.Month{Year: 2019, Month: time.February})}
	svc := New(store.NewInMemoryStore(), source, discardLogger(), nil)
	key := testKey("soknad-123")
	var original models.ClassifiedResult

	testutil.Given(t, "a case with cached income", func(t *testing.T) {
		var err error
		original, err = svc.Resolve(ctx, key)
		require.NoError(t, err)
	})

	testutil.When(t, "the case is recalculated on a later date", func(t *testing.T) {
		later := key
		later.CalculationDate = key.CalculationDate.AddDate(0, 1, 0)
		recalculated, err := svc.Resolve(ctx, later)
		require.NoError(t, err)

		testutil.Then(t, "a fresh fetch produces a new record", func(t *testing.T) {
			assert.NotEqual(t, original.RecordID, recalculated.RecordID)
			assert.Equal(t, 2, source.calls)
		})

		testutil.Then(t, "the original date still serves its cached record", func(t *testing.T) {
			again, err := svc.Resolve(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, original.RecordID, again.RecordID)
			assert.Equal(t, 2, source.calls)
		})
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{payload: payloadWithMonths(domain.Month{Year: 2019, Month: time.February})}
	svc := New(store.NewInMemoryStore(), source, discardLogger(), nil)
	key := testKey("ctx-1")

	stored, err := svc.Resolve(ctx, key)
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, stored.RecordID, key.CalculationDate)
	require.NoError(t, err)
	assert.Equal(t, stored.RecordID, found.RecordID)

	_, err = svc.GetByID(ctx, domain.NewRecordID(time.Now()), key.CalculationDate)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
