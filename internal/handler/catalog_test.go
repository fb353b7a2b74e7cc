package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/model"
)

func TestListPrompts(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/prompts", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.NotContains(t, body, "$2a$", "password hashes must never be serialized")
	assert.NotContains(t, body, "isFavorited", "anonymous viewers get no per-user flags")

	items := decode[[]model.PromptWithDetails](t, rec)
	assert.Equal(t, []int64{6, 5, 4, 3, 2, 1}, promptIDs(items))
	assert.Equal(t, "gaming", items[0].Category.Slug)
	assert.Equal(t, "mike_johnson", items[0].Author.Username)
}

func TestListPrompts_QueryParameters(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		query string
		want  []int64
	}{
		{"?featured=true", []int64{3, 2, 1}},
		{"?featured=false&trending=true", []int64{6, 4}},
		{"?categoryId=3", []int64{3}},
		{"?search=STACK", []int64{3}},
		{"?search=Digital%20Art", []int64{2}},
		{"?isNew=true&limit=1", []int64{6}},
		{"?limit=2&offset=1", []int64{5, 4}},
		{"?limit=0", []int64{}},
		{"?featured=", []int64{6, 5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := a.do(http.MethodGet, "/api/prompts"+tt.query, nil, 0)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, promptIDs(decode[[]model.PromptWithDetails](t, rec)))
		})
	}
}

func TestListPrompts_MalformedQuery(t *testing.T) {
	a := newAPI(t)

	for _, query := range []string{
		"?categoryId=abc",
		"?categoryId=-2",
		"?limit=-1",
		"?offset=ten",
		"?featured=maybe",
		"?isNew=1",
	} {
		t.Run(query, func(t *testing.T) {
			rec := a.do(http.MethodGet, "/api/prompts"+query, nil, 0)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec).Error)
		})
	}
}

func TestGetPrompt(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/prompts/3", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[model.PromptWithDetails](t, rec)
	assert.Equal(t, "Full-Stack Developer Assistant", p.Title)
	assert.Equal(t, "24.99", p.Price.StringFixed(2))
	assert.Equal(t, []string{"Full-Stack", "Development", "Programming"}, p.Tags)

	rec = a.do(http.MethodGet, "/api/prompts/999", nil, 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Prompt not found", decodeError(t, rec).Message)

	rec = a.do(http.MethodGet, "/api/prompts/abc", nil, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPrompt_ViewerFlags(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/favorites", map[string]int64{"promptId": 1}, alex)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/prompts/1", nil, alex)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[model.PromptWithDetails](t, rec)
	require.NotNil(t, p.IsFavorited)
	require.NotNil(t, p.InCart)
	assert.True(t, *p.IsFavorited)
	assert.False(t, *p.InCart)

	// Another user sees their own flags, not alex's.
	p = decode[model.PromptWithDetails](t, a.do(http.MethodGet, "/api/prompts/1", nil, sarah))
	require.NotNil(t, p.IsFavorited)
	assert.False(t, *p.IsFavorited)

	// A bad token on a public route degrades to anonymous instead of failing.
	bad := httptest.NewRequest(http.MethodGet, "/api/prompts/1", nil)
	bad.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = a.send(bad)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[model.PromptWithDetails](t, rec).IsFavorited)
}

func TestCategories(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/categories", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]model.Category](t, rec)
	require.Len(t, cats, 6)
	assert.Equal(t, "writing", cats[0].Slug)

	rec = a.do(http.MethodGet, "/api/categories/coding", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Coding", decode[model.Category](t, rec).Name)

	rec = a.do(http.MethodGet, "/api/categories/knitting", nil, 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decodeError(t, rec).Message)
}

func TestStats(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/stats", nil, 0)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[model.Stats](t, rec)
	assert.Equal(t, 6, stats.TotalPrompts)
	assert.Equal(t, 3, stats.ActiveUsers)
	assert.Equal(t, 6, stats.CategoriesCount)
	assert.True(t, stats.TotalEarnings.IsZero())
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/healthz", nil, 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"up"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/nope", nil, 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)

	rec = a.do(http.MethodPut, "/api/stats", nil, 0)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
