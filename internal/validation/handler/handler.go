// Package handler exposes the record validators over HTTP so clients can
// check a payload before submitting it.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"maklarsystem/internal/contact"
	"maklarsystem/internal/property"
	"maklarsystem/internal/validation/metrics"
	"maklarsystem/internal/validation/schema"
	"maklarsystem/internal/viewing"
	dErrors "maklarsystem/pkg/domain-errors"
	"maklarsystem/pkg/platform/httputil"
	"maklarsystem/pkg/requestcontext"
)

// Handler wires validation endpoints to the record validators.
type Handler struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts validation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/validate", func(r chi.Router) {
		r.Post("/contacts", validateRecord(h, "contact", contact.Validate))
		r.Post("/contacts/filter", validateQuery(h, "contact_filter", func(f contact.Filter) (any, error) {
			return f, contact.ValidateFilter(f)
		}))
		r.Post("/properties", validateRecord(h, "property", property.Validate))
		r.Post("/properties/search", validateQuery(h, "property_search", func(q property.Search) (any, error) {
			return property.ValidateSearch(q)
		}))
		r.Post("/viewings", validateRecord(h, "viewing", viewing.Validate))
		r.Post("/viewings/filter", validateQuery(h, "viewing_filter", func(f viewing.Filter) (any, error) {
			return f, viewing.ValidateFilter(f)
		}))
		r.Post("/viewings/bulk", h.HandleBulkViewings)
		r.Post("/identifiers/{kind}", h.HandleIdentifier)
	})
}

// RecordResponse is returned for a payload that passed validation.
type RecordResponse struct {
	Valid   bool   `json:"valid"`
	Variant string `json:"variant,omitempty"`
	Data    any    `json:"data"`
}

// validateRecord builds a handler for POST /validate/<record>?variant=.
// A missing variant means create.
func validateRecord[In any, Out any](h *Handler, record string, validate func(In, schema.Variant, time.Time) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)
		start := time.Now()
		defer h.observe(record, start)

		variant, ok := schema.ParseVariant(r.URL.Query().Get("variant"))
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "variant must be create or update"))
			return
		}
		in, mismatched, ok := decodeBody[In](h, w, r)
		if !ok {
			return
		}

		out, err := validate(*in, variant, requestcontext.Now(ctx))
		err = withMismatch(err, mismatched)
		if err != nil {
			h.reject(r, record, variant.String(), err)
			httputil.WriteError(w, err)
			return
		}

		h.accept(record, variant.String())
		h.logger.DebugContext(ctx, "payload validated",
			"request_id", requestID,
			"record", record,
			"variant", variant.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		httputil.WriteJSON(w, http.StatusOK, RecordResponse{Valid: true, Variant: variant.String(), Data: out})
	}
}

// validateQuery builds a handler for list and search queries, which have no
// variant.
func validateQuery[Q any](h *Handler, record string, validate func(Q) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer h.observe(record, start)

		q, mismatched, ok := decodeBody[Q](h, w, r)
		if !ok {
			return
		}
		out, err := validate(*q)
		err = withMismatch(err, mismatched)
		if err != nil {
			h.reject(r, record, "", err)
			httputil.WriteError(w, err)
			return
		}
		h.accept(record, "")
		httputil.WriteJSON(w, http.StatusOK, RecordResponse{Valid: true, Data: out})
	}
}

// decodeBody decodes the request body, keeping mistyped fields for the
// validator's report instead of rejecting the body outright.
func decodeBody[T any](h *Handler, w http.ResponseWriter, r *http.Request) (*T, []httputil.TypeMismatch, bool) {
	in, mismatched, err := httputil.Decode[T](r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, nil, false
	}
	return in, mismatched, true
}

// withMismatch reports mistyped fields as format failures alongside the
// validator's own failures.
func withMismatch(err error, mismatched []httputil.TypeMismatch) error {
	extra := make([]schema.FieldError, len(mismatched))
	for i, m := range mismatched {
		extra[i] = schema.FieldError{Path: m.Path, Kind: schema.KindFormat, Message: m.Message}
	}
	return schema.Merge(err, extra...)
}

// ViewingResponse is the wire form of a validated viewing slot.
type ViewingResponse struct {
	ObjektID      string `json:"objekt_id"`
	Datum         string `json:"datum"`
	Starttid      string `json:"starttid"`
	Sluttid       string `json:"sluttid"`
	Typ           string `json:"typ"`
	AntalBesokare *int   `json:"antal_besokare,omitempty"`
	Minuter       int    `json:"minuter"`
}

// HandleBulkViewings handles POST /validate/viewings/bulk.
func (h *Handler) HandleBulkViewings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer h.observe("viewing_bulk", start)

	bulk, mismatched, ok := decodeBody[viewing.Bulk](h, w, r)
	if !ok {
		return
	}
	viewings, err := viewing.ValidateBulk(*bulk, requestcontext.Now(ctx))
	err = withMismatch(err, mismatched)
	if err != nil {
		h.reject(r, "viewing_bulk", "create", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]ViewingResponse, len(viewings))
	for i, v := range viewings {
		out[i] = ViewingResponse{
			ObjektID:      v.ListingID.String(),
			Datum:         v.Date.Format(time.DateOnly),
			Starttid:      v.Start,
			Sluttid:       v.End,
			Typ:           string(v.Typ),
			AntalBesokare: v.AntalBesokare,
			Minuter:       int(v.Duration().Minutes()),
		}
	}
	h.accept("viewing_bulk", "create")
	httputil.WriteJSON(w, http.StatusOK, RecordResponse{Valid: true, Variant: "create", Data: out})
}

func (h *Handler) accept(record, variant string) {
	if h.metrics != nil {
		h.metrics.IncrementValidation(record, variant, "valid")
	}
}

// reject logs and counts a failed validation. Field values are never logged.
func (h *Handler) reject(r *http.Request, record, variant string, err error) {
	errs, _ := schema.AsErrors(err)
	h.logger.InfoContext(r.Context(), "payload rejected",
		"request_id", requestcontext.RequestID(r.Context()),
		"record", record,
		"variant", variant,
		"fields", errs.Paths(),
	)
	if h.metrics == nil {
		return
	}
	h.metrics.IncrementValidation(record, variant, "invalid")
	for _, fe := range errs {
		h.metrics.IncrementFieldError(record, string(fe.Kind))
	}
}

func (h *Handler) observe(record string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveValidation(record, start)
	}
}
