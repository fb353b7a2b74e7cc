package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/service"
)

// PromptHandler lets authenticated sellers list and edit their prompts.
type PromptHandler struct {
	prompts *service.PromptService
	logger  *slog.Logger
}

func NewPromptHandler(prompts *service.PromptService, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{prompts: prompts, logger: logger}
}

// createPromptRequest is the body of POST /api/prompts.
//
// Price accepts both 12.99 and "12.99": decimal.Decimal implements
// json.Unmarshaler for either form without a float64 round trip.
type createPromptRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Content      string          `json:"content"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   int64           `json:"categoryId"`
	Tags         []string        `json:"tags"`
	PreviewImage *string         `json:"previewImage"`
	Featured     bool            `json:"featured"`
	Trending     bool            `json:"trending"`
}

// updatePromptRequest is the body of PATCH /api/prompts/{id}. Absent fields
// decode to nil and are left untouched.
type updatePromptRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Content      *string          `json:"content"`
	Price        *decimal.Decimal `json:"price"`
	CategoryID   *int64           `json:"categoryId"`
	Tags         *[]string        `json:"tags"`
	PreviewImage *string          `json:"previewImage"`
	Featured     *bool            `json:"featured"`
	Trending     *bool            `json:"trending"`
	IsNew        *bool            `json:"isNew"`
}

// HandleCreate handles POST /api/prompts. The author is the caller.
func (h *PromptHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createPromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	prompt, err := h.prompts.Create(r.Context(), userID, service.PromptInput{
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		Price:        req.Price,
		CategoryID:   req.CategoryID,
		Tags:         req.Tags,
		PreviewImage: req.PreviewImage,
		Featured:     req.Featured,
		Trending:     req.Trending,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, prompt)
}

// HandleUpdate handles PATCH /api/prompts/{id}.
func (h *PromptHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req updatePromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	prompt, err := h.prompts.Update(r.Context(), userID, promptID, service.PromptPatch(req))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// HandleMine handles GET /api/prompts/my-prompts.
func (h *PromptHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	userID, err := mustUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	prompts, err := h.prompts.MyPrompts(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}
