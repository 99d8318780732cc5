package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

// Storefront is the session engine the handlers drive.
type Storefront interface {
	Session(ctx context.Context, id string) (domain.View, error)
	Navigate(ctx context.Context, id, category string) (domain.View, error)
	NextImage(ctx context.Context, id string) (domain.View, error)
	PrevImage(ctx context.Context, id string) (domain.View, error)
	SelectThumbnail(ctx context.Context, id string, index int) (domain.View, error)
	IncrementQuantity(ctx context.Context, id string) (domain.View, error)
	DecrementQuantity(ctx context.Context, id string) (domain.View, error)
	AddToCart(ctx context.Context, id string) (domain.View, error)
	RemoveCartItem(ctx context.Context, id string) (domain.View, error)
	ToggleCart(ctx context.Context, id string) (domain.View, error)
	DismissCart(ctx context.Context, id string) (domain.View, error)
	Checkout(ctx context.Context, id string) (domain.View, error)
	OpenMenu(ctx context.Context, id string) (domain.View, error)
	CloseMenu(ctx context.Context, id string) (domain.View, error)
	SelectCategory(ctx context.Context, id, category string) (domain.View, error)
	Receipts(ctx context.Context, id string) ([]*domain.Receipt, error)
}

type sessionOp func(ctx context.Context, id string) (domain.View, error)

// APIHandler serves the JSON view of the session under /api/v1.
type APIHandler struct {
	storefront Storefront
	timeout    time.Duration
	logger     *zap.Logger
}

func NewAPIHandler(storefront Storefront, timeout time.Duration, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		storefront: storefront,
		timeout:    timeout,
		logger:     logger,
	}
}

func (h *APIHandler) Routes(r chi.Router) {
	r.Get("/session", h.run(h.storefront.Session))

	r.Route("/gallery", func(r chi.Router) {
		r.Post("/next", h.run(h.storefront.NextImage))
		r.Post("/prev", h.run(h.storefront.PrevImage))
		r.Post("/thumbnails/{index}", h.SelectThumbnail)
	})

	r.Route("/quantity", func(r chi.Router) {
		r.Post("/increment", h.run(h.storefront.IncrementQuantity))
		r.Post("/decrement", h.run(h.storefront.DecrementQuantity))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Post("/", h.run(h.storefront.AddToCart))
		r.Delete("/", h.run(h.storefront.RemoveCartItem))
		r.Post("/toggle", h.run(h.storefront.ToggleCart))
		r.Post("/dismiss", h.run(h.storefront.DismissCart))
	})

	r.Post("/checkout", h.run(h.storefront.Checkout))

	r.Route("/menu", func(r chi.Router) {
		r.Post("/open", h.run(h.storefront.OpenMenu))
		r.Post("/close", h.run(h.storefront.CloseMenu))
		r.Post("/categories/{name}", h.SelectCategory)
	})

	r.Get("/receipts", h.ListReceipts)
}

// run adapts a session operation to a handler that responds with the view.
func (h *APIHandler) run(op sessionOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		view, err := op(ctx, getSessionID(r.Context()))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, h.logger, http.StatusOK, view)
	}
}

func (h *APIHandler) SelectThumbnail(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return
	}
	h.run(func(ctx context.Context, id string) (domain.View, error) {
		return h.storefront.SelectThumbnail(ctx, id, index)
	})(w, r)
}

func (h *APIHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.run(func(ctx context.Context, id string) (domain.View, error) {
		return h.storefront.SelectCategory(ctx, id, name)
	})(w, r)
}

type receiptsResponse struct {
	Receipts []*domain.Receipt `json:"receipts"`
}

func (h *APIHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	receipts, err := h.storefront.Receipts(ctx, getSessionID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if receipts == nil {
		receipts = []*domain.Receipt{}
	}
	respondJSON(w, h.logger, http.StatusOK, receiptsResponse{Receipts: receipts})
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("api request rejected",
		zap.String("path", r.URL.Path),
		zap.String("request_id", getRequestID(r.Context())),
		zap.Error(err))
	handleServiceError(w, h.logger, err)
}
