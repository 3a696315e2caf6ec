// Package client talks to the external income source. It is the only
// network-blocking dependency of the resolve path; callers control its
// deadline through the context, and failures come back typed so the service
// can distinguish upstream rejection from upstream slowness.
package client

import (
	"context"

	"inntektlager/internal/income/models"
	"inntektlager/pkg/domain"
)

// FetchRequest identifies whose income to fetch and the month window.
type FetchRequest struct {
	ActorID    domain.ActorID
	NationalID domain.NationalID
	FirstMonth domain.Month
	LastMonth  domain.Month
}

// IncomeSource fetches raw income documents from the external source.
type IncomeSource interface {
	Fetch(ctx context.Context, req FetchRequest) (models.Payload, error)
}
