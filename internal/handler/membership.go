package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/service"
)

// MembershipHandler exposes one MembershipSet over HTTP. The server mounts
// two of them: one on /api/favorites and one on /api/cart.
//
//	GET    /          → the user's prompts, in the order they were added
//	POST   /          → {"promptId": 3}  → 201 with the membership record
//	DELETE /{promptId}                    → {"message": "Removed from cart"}
//	DELETE /          (cart only)         → {"message": "Cart cleared"}
type MembershipHandler struct {
	set    *service.MembershipSet
	logger *slog.Logger
}

func NewMembershipHandler(set *service.MembershipSet, logger *slog.Logger) *MembershipHandler {
	return &MembershipHandler{set: set, logger: logger}
}

// addRequest is the body of POST /api/favorites and POST /api/cart. PromptID
// is a pointer so a missing field can be told apart from "promptId": 0.
type addRequest struct {
	PromptID *int64 `json:"promptId"`
}

func (h *MembershipHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.set.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MembershipHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
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

	m, err := h.set.Add(r.Context(), userID, *req.PromptID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MembershipHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	promptID, err := pathID(r, "promptId")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.set.Remove(r.Context(), userID, promptID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: h.set.Relation().RemovedMessage})
}

func (h *MembershipHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.set.Clear(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: h.set.Relation().ClearedMessage})
}
