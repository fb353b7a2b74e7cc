package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/handler"
	"github.com/sakif/prompt-market/internal/model"
)

func addBody(promptID int64) map[string]int64 {
	return map[string]int64{"promptId": promptID}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	a := newAPI(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/favorites"},
		{http.MethodPost, "/api/favorites"},
		{http.MethodDelete, "/api/favorites/1"},
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart"},
		{http.MethodDelete, "/api/cart"},
		{http.MethodDelete, "/api/cart/1"},
		{http.MethodPost, "/api/cart/checkout"},
		{http.MethodGet, "/api/purchases"},
		{http.MethodPost, "/api/purchases"},
		{http.MethodPost, "/api/prompts/1/reviews"},
		{http.MethodGet, "/api/user"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := a.do(rt.method, rt.path, nil, 0)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Access token required", decodeError(t, rec).Message)

			// A token that fails verification is a different failure.
			rec = a.do(rt.method, rt.path, nil, 42)
			assert.Equal(t, http.StatusForbidden, rec.Code, "token for a user that does not exist")
		})
	}
}

func TestFavorites_Lifecycle(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/favorites", addBody(3), alex)
	require.Equal(t, http.StatusCreated, rec.Code)
	m := decode[model.Membership](t, rec)
	assert.Equal(t, alex, m.UserID)
	assert.Equal(t, int64(3), m.PromptID)

	rec = a.do(http.MethodPost, "/api/favorites", addBody(3), alex)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.ErrorResponse{Error: "duplicate", Message: "Already in favorites"}, decodeError(t, rec))

	rec = a.do(http.MethodGet, "/api/favorites", nil, alex)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{3}, promptIDs(decode[[]model.PromptWithDetails](t, rec)))

	rec = a.do(http.MethodDelete, "/api/favorites/3", nil, alex)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Removed from favorites"}`, rec.Body.String())

	rec = a.do(http.MethodDelete, "/api/favorites/3", nil, alex)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Favorite not found", decodeError(t, rec).Message)
}

func TestCart_DuplicateMessage(t *testing.T) {
	a := newAPI(t)

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/cart", addBody(2), mike).Code)

	rec := a.do(http.MethodPost, "/api/cart", addBody(2), mike)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already in cart", decodeError(t, rec).Message)

	rec = a.do(http.MethodDelete, "/api/cart/2", nil, mike)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Removed from cart"}`, rec.Body.String())
}

func TestCart_AddRejectsBadBodies(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"no body", nil},
		{"broken json", `{"promptId":`},
		{"missing promptId", `{}`},
		{"promptId is a string", `{"promptId":"three"}`},
		{"unknown prompt", addBody(999)},
		{"zero prompt", addBody(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/api/cart", tt.body, alex)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec).Error)
		})
	}

	rec := a.do(http.MethodGet, "/api/cart", nil, alex)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCart_ClearAndCheckout(t *testing.T) {
	a := newAPI(t)

	for _, id := range []int64{1, 2} {
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/cart", addBody(id), sarah).Code)
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/cart", addBody(4), mike).Code)

	rec := a.do(http.MethodGet, "/api/cart", nil, sarah)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1, 2}, promptIDs(decode[[]model.PromptWithDetails](t, rec)))

	rec = a.do(http.MethodPost, "/api/cart/checkout", nil, sarah)
	require.Equal(t, http.StatusCreated, rec.Code)
	bought := decode[[]model.Purchase](t, rec)
	require.Len(t, bought, 2)
	assert.Equal(t, "12.99", bought[0].Price.StringFixed(2))
	assert.Equal(t, "18.99", bought[1].Price.StringFixed(2))

	rec = a.do(http.MethodGet, "/api/cart", nil, sarah)
	assert.JSONEq(t, `[]`, rec.Body.String(), "checkout empties the cart")

	rec = a.do(http.MethodGet, "/api/purchases", nil, sarah)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1, 2}, promptIDs(decode[[]model.PromptWithDetails](t, rec)))

	rec = a.do(http.MethodPost, "/api/cart/checkout", nil, sarah)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", decodeError(t, rec).Message)

	// mike's cart was never touched.
	rec = a.do(http.MethodDelete, "/api/cart", nil, mike)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Cart cleared"}`, rec.Body.String())

	rec = a.do(http.MethodDelete, "/api/cart/4", nil, mike)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found in cart", decodeError(t, rec).Message)
}

func TestPurchases_Direct(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/purchases", addBody(6), alex)
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[model.Purchase](t, rec)
	assert.Equal(t, alex, p.UserID)
	assert.Equal(t, "22.99", p.Price.StringFixed(2))

	rec = a.do(http.MethodPost, "/api/purchases", addBody(999), alex)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/api/purchases/records", nil, alex)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]model.Purchase](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, int64(6), records[0].PromptID)
	assert.Equal(t, "22.99", records[0].Price.StringFixed(2))

	rec = a.do(http.MethodGet, "/api/purchases/records", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stats := decode[model.Stats](t, a.do(http.MethodGet, "/api/stats", nil, 0))
	assert.Equal(t, "22.99", stats.TotalEarnings.StringFixed(2))
}
