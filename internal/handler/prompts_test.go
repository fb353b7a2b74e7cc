package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/model"
)

func TestCreatePrompt(t *testing.T) {
	a := newAPI(t)

	body := map[string]any{
		"title":       "SQL Query Tutor",
		"description": "Explains slow queries",
		"content":     "Explain the plan for [QUERY]...",
		"price":       "7.50",
		"categoryId":  3,
		"tags":        []string{"SQL", "sql", " Databases "},
	}

	rec := a.do(http.MethodPost, "/api/prompts", body, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/prompts", body, mike)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[model.PromptWithDetails](t, rec)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "7.50", p.Price.StringFixed(2))
	assert.Equal(t, []string{"SQL", "Databases"}, p.Tags)
	assert.Equal(t, "mike_johnson", p.Author.Username)
	assert.True(t, p.IsNew)

	// A numeric price is accepted as well.
	body["price"] = 3.25
	rec = a.do(http.MethodPost, "/api/prompts", body, mike)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "3.25", decode[model.PromptWithDetails](t, rec).Price.StringFixed(2))
}

func TestCreatePrompt_Validation(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"price not a number", `{"title":"t","description":"d","content":"c","price":"cheap","categoryId":1}`},
		{"missing title", map[string]any{"description": "d", "content": "c", "price": "1.00", "categoryId": 1}},
		{"unknown category", map[string]any{"title": "t", "description": "d", "content": "c", "price": "1.00", "categoryId": 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/prompts", tt.body, alex)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := a.do(http.MethodGet, "/api/prompts", nil, 0)
	assert.Len(t, decode[[]model.PromptWithDetails](t, rec), 6)
}

func TestUpdatePrompt(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPatch, "/api/prompts/2", map[string]any{"price": "21.00", "trending": false}, alex)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[model.PromptWithDetails](t, rec)
	assert.Equal(t, "21.00", p.Price.StringFixed(2))
	assert.False(t, p.Trending)
	assert.True(t, p.Featured, "fields absent from the patch keep their value")

	rec = a.do(http.MethodPatch, "/api/prompts/2", map[string]any{"title": "Mine now"}, sarah)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can only edit your own prompts", decodeError(t, rec).Message)

	rec = a.do(http.MethodPatch, "/api/prompts/999", map[string]any{"title": "x"}, sarah)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMyPrompts(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/prompts/my-prompts", nil, alex)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{5, 2}, promptIDs(decode[[]model.PromptWithDetails](t, rec)))

	rec = a.do(http.MethodGet, "/api/prompts/my-prompts", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviews(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/prompts/3/reviews", map[string]any{"rating": 5, "comment": "Saved me hours"}, alex)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[model.Review](t, rec)
	assert.Equal(t, alex, r.UserID, "the reviewer comes from the token")
	require.NotNil(t, r.Comment)
	assert.Equal(t, "Saved me hours", *r.Comment)

	rec = a.do(http.MethodGet, "/api/prompts/3/reviews", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Review](t, rec), 1)

	p := decode[model.PromptWithDetails](t, a.do(http.MethodGet, "/api/prompts/3", nil, 0))
	assert.Equal(t, 1, p.ReviewCount)

	for name, body := range map[string]any{
		"rating too high": map[string]any{"rating": 7},
		"rating missing":  map[string]any{"comment": "no stars"},
		"rating fraction": `{"rating": 4.5}`,
	} {
		rec := a.do(http.MethodPost, "/api/prompts/3/reviews", body, alex)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	rec = a.do(http.MethodPost, "/api/prompts/999/reviews", map[string]any{"rating": 3}, alex)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/api/prompts/999/reviews", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
