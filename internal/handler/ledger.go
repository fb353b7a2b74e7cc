package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/service"
)

// ReviewHandler serves /api/prompts/{id}/reviews.
type ReviewHandler struct {
	reviews *service.ReviewLedger
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewLedger, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type createReviewRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// HandleList handles GET /api/prompts/{id}/reviews. Unknown prompts yield [].
func (h *ReviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	promptID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reviews, err := h.reviews.ListForPrompt(r.Context(), promptID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleCreate handles POST /api/prompts/{id}/reviews. The reviewer is always
// the authenticated user, never a field of the body.
func (h *ReviewHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	promptID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Rating == nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("rating", "rating is required"))
		return
	}

	review, err := h.reviews.Create(r.Context(), promptID, userID, *req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// StatsHandler serves GET /api/stats.
type StatsHandler struct {
	stats  *service.StatsService
	logger *slog.Logger
}

func NewStatsHandler(stats *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

func (h *StatsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Compute(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// PurchaseHandler serves /api/purchases and the cart checkout.
type PurchaseHandler struct {
	purchases *service.PurchaseService
	logger    *slog.Logger
}

func NewPurchaseHandler(purchases *service.PurchaseService, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, logger: logger}
}

// HandleHistory handles GET /api/purchases: the bought prompts, enriched,
// oldest purchase first.
func (h *PurchaseHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	history, err := h.purchases.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleRecords handles GET /api/purchases/records: the raw purchase rows
// with the price paid, oldest first.
func (h *PurchaseHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	records, err := h.purchases.Ledger(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandlePurchase handles POST /api/purchases {"promptId": 3}.
func (h *PurchaseHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req addRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.PromptID == nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("promptId", "promptId is required"))
		return
	}

	purchase, err := h.purchases.Purchase(r.Context(), userID, *req.PromptID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

// HandleCheckout handles POST /api/cart/checkout.
func (h *PurchaseHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	bought, err := h.purchases.Checkout(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, bought)
}
