package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inntektlager/internal/income/models"
	"inntektlager/internal/transport/http/shared"
	"inntektlager/pkg/domain"
	dErrors "inntektlager/pkg/domain-errors"
	"inntektlager/pkg/requestcontext"
)

const dateLayout = "2006-01-02"

// Handler is the thin HTTP layer. It parses and validates at the boundary and
// delegates to the fetch-or-cache engine; no business logic lives here.
type Handler struct {
	income IncomeService
	logger *slog.Logger
}

// NewHandler builds the income handler.
func NewHandler(income IncomeService, logger *slog.Logger) *Handler {
	return &Handler{income: income, logger: logger}
}

type lookupKeyRequest struct {
	ActorID         string `json:"aktorId"`
	NationalID      string `json:"foedselsnummer,omitempty"`
	ContextID       string `json:"kontekstId"`
	ContextType     string `json:"kontekstType"`
	CalculationDate string `json:"beregningsDato"`
}

func (r lookupKeyRequest) toKey() (models.LookupKey, error) {
	actorID, err := domain.ParseActorID(r.ActorID)
	if err != nil {
		return models.LookupKey{}, err
	}
	nationalID, err := domain.ParseNationalID(r.NationalID)
	if err != nil {
		return models.LookupKey{}, err
	}
	calculationDate, err := time.Parse(dateLayout, r.CalculationDate)
	if err != nil {
		return models.LookupKey{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed calculation date")
	}
	return models.LookupKey{
		ActorID:         actorID,
		NationalID:      nationalID,
		ContextID:       r.ContextID,
		ContextType:     r.ContextType,
		CalculationDate: calculationDate,
	}, nil
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req lookupKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	key, err := req.toKey()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.income.Resolve(r.Context(), key)
	if err != nil {
		h.logger.WarnContext(r.Context(), "income resolve failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

type manualEditRequest struct {
	lookupKeyRequest
	Justification string         `json:"begrunnelse,omitempty"`
	Payload       models.Payload `json:"inntekt"`
}

func (h *Handler) handleManualEdit(w http.ResponseWriter, r *http.Request) {
	var req manualEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	key, err := req.toKey()
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	edit := models.ManualEdit{
		EditedBy:      requestcontext.Editor(r.Context()),
		Justification: req.Justification,
	}

	result, err := h.income.ResolveManual(r.Context(), key, req.Payload, edit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "manual income edit failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	recordID, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	calculationDate := requestcontext.Now(r.Context())
	if raw := r.URL.Query().Get("beregningsDato"); raw != "" {
		calculationDate, err = time.Parse(dateLayout, raw)
		if err != nil {
			shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed calculation date"))
			return
		}
	}

	result, err := h.income.GetByID(r.Context(), recordID, calculationDate)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}
