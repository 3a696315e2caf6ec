package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inntektlager/internal/income/models"
	dErrors "inntektlager/pkg/domain-errors"
)

var tracer = otel.Tracer("inntektlager/income/client")

// HTTPClient is the production IncomeSource. It posts the lookup window to
// the income source endpoint and decodes the payload with explicit field
// validation. Unknown upstream fields are tolerated; that leniency is a
// compatibility decision, the upstream adds fields without versioning.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTP constructs the income source client. timeout bounds the whole
// request; the caller's context may shorten it further.
func NewHTTP(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type fetchRequestBody struct {
	ActorID    string `json:"aktoerId"`
	NationalID string `json:"foedselsnummer,omitempty"`
	FirstMonth string `json:"foersteMaaned"`
	LastMonth  string `json:"sisteMaaned"`
}

func (c *HTTPClient) Fetch(ctx context.Context, req FetchRequest) (models.Payload, error) {
	ctx, span := tracer.Start(ctx, "income.Fetch", trace.WithAttributes(
		attribute.String("income.first_month", req.FirstMonth.String()),
		attribute.String("income.last_month", req.LastMonth.String()),
	))
	defer span.End()

	body, err := json.Marshal(fetchRequestBody{
		ActorID:    req.ActorID.String(),
		NationalID: req.NationalID.String(),
		FirstMonth: req.FirstMonth.String(),
		LastMonth:  req.LastMonth.String(),
	})
	if err != nil {
		return models.Payload{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode income source request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/hentinntektliste", bytes.NewReader(body))
	if err != nil {
		return models.Payload{}, dErrors.Wrap(err, dErrors.CodeInternal, "build income source request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		elapsed := time.Since(start)
		if isTimeout(err) {
			return models.Payload{}, dErrors.Wrap(
				&TimeoutError{Elapsed: elapsed, Err: err},
				dErrors.CodeUpstreamTimeout,
				fmt.Sprintf("income source timed out after %s", elapsed),
			)
		}
		return models.Payload{}, dErrors.Wrap(err, dErrors.CodeUpstream, "income source unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Payload{}, dErrors.Wrap(
			&UpstreamError{StatusCode: resp.StatusCode, Body: string(snippet)},
			dErrors.CodeUpstream,
			fmt.Sprintf("income source returned status %d", resp.StatusCode),
		)
	}

	var payload models.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Payload{}, dErrors.Wrap(err, dErrors.CodeUpstream, "malformed income source response")
	}
	if err := payload.Validate(); err != nil {
		return models.Payload{}, dErrors.Wrap(err, dErrors.CodeUpstream, "incomplete income source response")
	}
	return payload, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
