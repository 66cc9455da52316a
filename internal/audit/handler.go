package audit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "maklarsystem/pkg/domain"
	dErrors "maklarsystem/pkg/domain-errors"
	"maklarsystem/pkg/platform/httputil"
	"maklarsystem/pkg/requestcontext"
)

// Reader is the read side of Store.
type Reader interface {
	ListByListing(ctx context.Context, listingID id.ListingID) ([]Event, error)
}

// Handler serves a listing's audit trail.
type Handler struct {
	events Reader
	logger *slog.Logger
}

func NewHandler(events Reader, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/listings/{listingID}/audit", h.HandleListEvents)
}

// EventListResponse wraps a listing's events.
type EventListResponse struct {
	Handelser []Event `json:"handelser"`
	Antal     int     `json:"antal"`
}

// HandleListEvents handles GET /listings/{listingID}/audit.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid listing id"))
		return
	}
	events, err := h.events.ListByListing(ctx, listingID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list audit events failed",
			"request_id", requestcontext.RequestID(ctx),
			"listing_id", listingID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	if events == nil {
		events = []Event{}
	}
	h.logger.DebugContext(ctx, "audit events listed",
		"request_id", requestcontext.RequestID(ctx),
		"listing_id", listingID,
		"count", len(events),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, EventListResponse{Handelser: events, Antal: len(events)})
}
