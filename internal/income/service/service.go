// Package service implements the fetch-or-cache engine: one resolve turns an
// external income lookup into an idempotent, content-addressed cache entry.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inntektlager/internal/income/classify"
	"inntektlager/internal/income/client"
	"inntektlager/internal/income/metrics"
	"inntektlager/internal/income/models"
	"inntektlager/internal/income/period"
	"inntektlager/internal/income/store"
	"inntektlager/pkg/domain"
	dErrors "inntektlager/pkg/domain-errors"
	"inntektlager/pkg/platform/sentinel"
	"inntektlager/pkg/requestcontext"
)

var tracer = otel.Tracer("inntektlager/income/service")

// Service coordinates the income store, the earnings-period calculator, the
// classification engine and the external income source.
type Service struct {
	store   store.Store
	source  client.IncomeSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs the fetch-or-cache engine.
func New(s store.Store, source client.IncomeSource, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: s, source: source, logger: logger, metrics: m}
}

// Resolve returns the classified income for a lookup key. A stored mapping is
// served as-is with no external call; a miss fetches from the income source
// and writes through before returning.
//
// Lookup-then-fetch-then-store is not atomic across callers: two concurrent
// misses for the same key may both fetch and both write, and the later write
// becomes canonical. That matches the source system and stays as-is.
func (s *Service) Resolve(ctx context.Context, key models.LookupKey) (models.ClassifiedResult, error) {
	if err := key.Validate(); err != nil {
		return models.ClassifiedResult{}, err
	}

	ctx, span := tracer.Start(ctx, "income.Resolve", trace.WithAttributes(
		attribute.String("income.context_type", key.ContextType),
	))
	defer span.End()

	record, err := s.store.LookupLatest(ctx, key)
	switch {
	case err == nil:
		s.metrics.RecordCacheHit()
		span.SetAttributes(attribute.Bool("income.cache_hit", true))
		return s.project(key, record), nil
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.RecordCacheMiss()
		span.SetAttributes(attribute.Bool("income.cache_hit", false))
	default:
		return models.ClassifiedResult{}, dErrors.Wrap(err, dErrors.CodeStore, "income lookup failed")
	}

	p := period.For(key.CalculationDate)
	start := time.Now()
	payload, err := s.source.Fetch(ctx, client.FetchRequest{
		ActorID:    key.ActorID,
		NationalID: key.NationalID,
		FirstMonth: p.FirstMonth,
		LastMonth:  p.LastClosedMonth,
	})
	if err != nil {
		// Propagate untouched: no partial write on upstream failure.
		s.metrics.RecordUpstreamFailure(string(dErrors.CodeOf(err)))
		return models.ClassifiedResult{}, err
	}
	s.metrics.ObserveUpstreamLatency(time.Since(start))

	record = &models.IncomeRecord{
		ID:        domain.NewRecordID(requestcontext.Now(ctx)),
		Payload:   payload,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Insert(ctx, key, record); err != nil {
		return models.ClassifiedResult{}, dErrors.Wrap(err, dErrors.CodeStore, "income write-through failed")
	}

	s.logger.InfoContext(ctx, "income record stored",
		"record_id", record.ID.String(),
		"context_type", key.ContextType,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.project(key, record), nil
}

// ResolveManual writes a caller-supplied payload as a new canonical record
// with the manual-edit flag set. It always creates a new record, even when
// one exists for the key: a manual edit is an explicit correction, not a
// cache fill.
func (s *Service) ResolveManual(ctx context.Context, key models.LookupKey, payload models.Payload, edit models.ManualEdit) (models.ClassifiedResult, error) {
	if err := key.Validate(); err != nil {
		return models.ClassifiedResult{}, err
	}
	if err := edit.Validate(); err != nil {
		return models.ClassifiedResult{}, err
	}
	if err := payload.Validate(); err != nil {
		return models.ClassifiedResult{}, err
	}

	ctx, span := tracer.Start(ctx, "income.ResolveManual")
	defer span.End()

	record := &models.IncomeRecord{
		ID:             domain.NewRecordID(requestcontext.Now(ctx)),
		Payload:        payload,
		ManuallyEdited: true,
		EditedBy:       edit.EditedBy,
		Justification:  edit.Justification,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Insert(ctx, key, record); err != nil {
		return models.ClassifiedResult{}, dErrors.Wrap(err, dErrors.CodeStore, "manual income write failed")
	}

	s.logger.InfoContext(ctx, "income record manually edited",
		"record_id", record.ID.String(),
		"edited_by", edit.EditedBy,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.project(key, record), nil
}

// GetByID loads and classifies a stored record directly. The id must already
// be format-validated by the caller boundary.
func (s *Service) GetByID(ctx context.Context, id domain.RecordID, calculationDate time.Time) (models.ClassifiedResult, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ClassifiedResult{}, dErrors.New(dErrors.CodeNotFound, "income record not found")
		}
		return models.ClassifiedResult{}, dErrors.Wrap(err, dErrors.CodeStore, "income read failed")
	}
	key := models.LookupKey{CalculationDate: calculationDate}
	return s.project(key, record), nil
}

// project classifies the record's raw payload over the earnings period of the
// key's calculation date. Months outside the window are dropped.
func (s *Service) project(key models.LookupKey, record *models.IncomeRecord) models.ClassifiedResult {
	p := period.For(key.CalculationDate)

	result := models.ClassifiedResult{
		RecordID:        record.ID,
		ManuallyEdited:  record.ManuallyEdited,
		LastClosedMonth: p.LastClosedMonth,
		FirstMonth:      p.FirstMonth,
	}
	for _, month := range record.Payload.Months {
		if !p.Contains(month.Month) {
			continue
		}
		classified := models.ClassifiedIncomeMonth{Month: month.Month}
		for _, entry := range month.Entries {
			class, _ := classify.Classify(entry)
			classified.Entries = append(classified.Entries, models.ClassifiedEntry{
				Amount:      entry.Amount,
				IncomeClass: class,
			})
		}
		result.Months = append(result.Months, classified)
	}
	return result
}
