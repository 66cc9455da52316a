package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"maklarsystem/internal/validation/identifier"
	dErrors "maklarsystem/pkg/domain-errors"
	"maklarsystem/pkg/platform/httputil"
	"maklarsystem/pkg/requestcontext"
)

// IdentifierRequest carries one raw identifier.
type IdentifierRequest struct {
	Value string `json:"value"`
}

// Validate is called by httputil.DecodeAndPrepare.
func (r *IdentifierRequest) Validate() error {
	if strings.TrimSpace(r.Value) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "value is required")
	}
	return nil
}

// IdentifierResponse reports the outcome for one identifier. Normalized is
// the canonical stored form; Formatted is a display form where one exists.
// Reason is set only when Valid is false.
type IdentifierResponse struct {
	Kind       string `json:"kind"`
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized"`
	Formatted  string `json:"formatted,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type identifierCheck func(raw string, now time.Time) (normalized, formatted string, err error)

var identifierChecks = map[identifier.Kind]identifierCheck{
	identifier.KindPersonnummer: func(raw string, now time.Time) (string, string, error) {
		p, err := identifier.ParsePersonnummerAt(raw, now)
		if err != nil {
			return identifier.NormalizePersonnummer(raw), "", err
		}
		return identifier.NormalizePersonnummer(raw), p.String(), nil
	},
	identifier.KindOrganisationsnummer: func(raw string, _ time.Time) (string, string, error) {
		_, err := identifier.ParseOrganisationsnummer(raw)
		return identifier.NormalizeOrganisationsnummer(raw), "", err
	},
	identifier.KindPostnummer: func(raw string, _ time.Time) (string, string, error) {
		_, err := identifier.ParsePostnummer(raw)
		return identifier.NormalizePostnummer(raw), "", err
	},
	identifier.KindTelefonnummer: func(raw string, _ time.Time) (string, string, error) {
		if _, err := identifier.ParseTelefonnummer(raw); err != nil {
			return identifier.NormalizeTelefonnummer(raw), "", err
		}
		return identifier.NormalizeTelefonnummer(raw), identifier.FormatTelefonnummer(raw), nil
	},
	identifier.KindFastighetsbeteckning: func(raw string, _ time.Time) (string, string, error) {
		_, err := identifier.ParseFastighetsbeteckning(raw)
		return identifier.NormalizeFastighetsbeteckning(raw), "", err
	},
}

// HandleIdentifier handles POST /validate/identifiers/{kind}. An invalid
// identifier is a 200 with valid=false; only an unknown kind or a malformed
// body is an error.
func (h *Handler) HandleIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	kind := identifier.Kind(chi.URLParam(r, "kind"))
	check, ok := identifierChecks[kind]
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown identifier kind"))
		return
	}
	defer h.observe(string(kind), start)

	req, ok := httputil.DecodeAndPrepare[IdentifierRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	normalized, formatted, err := check(req.Value, requestcontext.Now(ctx))
	resp := IdentifierResponse{
		Kind:       string(kind),
		Valid:      err == nil,
		Normalized: normalized,
		Formatted:  formatted,
	}
	outcome := "valid"
	if err != nil {
		resp.Reason = string(identifier.ReasonOf(err))
		outcome = "invalid"
	}
	if h.metrics != nil {
		h.metrics.IncrementValidation(string(kind), "", outcome)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
