package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"maklarsystem/internal/bidding/domain"
	"maklarsystem/internal/bidding/service"
	id "maklarsystem/pkg/domain"
	dErrors "maklarsystem/pkg/domain-errors"
	"maklarsystem/pkg/platform/httputil"
	"maklarsystem/pkg/requestcontext"
)

// Service defines the bidding operations the handler needs.
type Service interface {
	PlaceBid(ctx context.Context, in domain.Input) (*domain.Bid, error)
	ChangeStatus(ctx context.Context, bidID id.BidID, target domain.Status) (*service.StatusChange, error)
	ListBids(ctx context.Context, listingID id.ListingID, h domain.History) ([]*domain.Bid, error)
	HighestActive(ctx context.Context, listingID id.ListingID) (*domain.Bid, error)
}

// Handler wires bid endpoints to the bidding service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts bid endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/listings/{listingID}/bids", h.HandlePlaceBid)
	r.Get("/listings/{listingID}/bids", h.HandleListBids)
	r.Get("/listings/{listingID}/bids/highest", h.HandleHighestBid)
	r.Patch("/bids/{bidID}", h.HandleChangeStatus)
}

// HandlePlaceBid handles POST /listings/{listingID}/bids. The listing comes
// from the path; a body objekt_id must match it.
func (h *Handler) HandlePlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	listingID, ok := h.listingParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[domain.Input](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	raw := listingID.String()
	if req.ObjektID != nil && *req.ObjektID != raw {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "objekt_id does not match the listing in the path"))
		return
	}
	req.ObjektID = &raw

	bid, err := h.service.PlaceBid(ctx, *req)
	if err != nil {
		h.logger.InfoContext(ctx, "bid refused",
			"request_id", requestID,
			"listing_id", listingID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bid placed",
		"request_id", requestID,
		"listing_id", listingID,
		"bid_id", bid.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromBid(bid))
}

// HandleListBids handles GET /listings/{listingID}/bids.
func (h *Handler) HandleListBids(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	listingID, ok := h.listingParam(w, r)
	if !ok {
		return
	}
	history, err := domain.ValidateHistory(domain.HistoryInput{
		IncludeWithdrawn: queryParam(r, "includeWithdrawn"),
		SortOrder:        queryParam(r, "sortOrder"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bids, err := h.service.ListBids(ctx, listingID, history)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list bids",
			"request_id", requestID,
			"listing_id", listingID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBids(bids))
}

// HandleHighestBid handles GET /listings/{listingID}/bids/highest.
func (h *Handler) HandleHighestBid(w http.ResponseWriter, r *http.Request) {
	listingID, ok := h.listingParam(w, r)
	if !ok {
		return
	}
	bid, err := h.service.HighestActive(r.Context(), listingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBid(bid))
}

// HandleChangeStatus handles PATCH /bids/{bidID}.
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	bidID, err := id.ParseBidID(chi.URLParam(r, "bidID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[domain.StatusInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target, err := domain.ValidateStatus(*req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.ChangeStatus(ctx, bidID, target)
	if err != nil {
		h.logger.InfoContext(ctx, "bid status change refused",
			"request_id", requestID,
			"bid_id", bidID,
			"status", target,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bid status changed",
		"request_id", requestID,
		"bid_id", bidID,
		"status", target,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromStatusChange(res))
}

func (h *Handler) listingParam(w http.ResponseWriter, r *http.Request) (id.ListingID, bool) {
	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ListingID{}, false
	}
	return listingID, true
}

func queryParam(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key)
	return &v
}
