package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
	"github.com/sakif/prompt-market/internal/repository/memory"
)

// brokenStore hides one category and one user from lookups, simulating rows
// that lost their referenced entity.
type brokenStore struct {
	repository.Store
	missingCategory int64
	missingUser     int64
}

func (b brokenStore) Categories() repository.CategoryRepository {
	return brokenCategories{b.Store.Categories(), b.missingCategory}
}

func (b brokenStore) Users() repository.UserRepository {
	return brokenUsers{b.Store.Users(), b.missingUser}
}

type brokenCategories struct {
	repository.CategoryRepository
	missing int64
}

func (c brokenCategories) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	if id == c.missing {
		return nil, apperror.NotFound("category", id)
	}
	return c.CategoryRepository.GetByID(ctx, id)
}

type brokenUsers struct {
	repository.UserRepository
	missing int64
}

func (u brokenUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if id == u.missing {
		return nil, apperror.NotFound("user", id)
	}
	return u.UserRepository.GetByID(ctx, id)
}

// =========================================================================
// Enrich
// =========================================================================

func TestEnrich_JoinsCategoryAuthorAndReviewCount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.reviews.Create(ctx, fullStack, sarah, 5, "great")
	require.NoError(t, err)
	_, err = e.reviews.Create(ctx, fullStack, alex, 4, "")
	require.NoError(t, err)

	p, err := e.store.Prompts().GetByID(ctx, fullStack)
	require.NoError(t, err)

	d, err := e.enricher.Enrich(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, "coding", d.Category.Slug)
	assert.Equal(t, model.AuthorSummary{ID: mike, Username: "mike_johnson"}, d.Author)
	assert.Equal(t, 2, d.ReviewCount)
	assert.Nil(t, d.IsFavorited)
	assert.Nil(t, d.InCart)
}

func TestEnrich_NeverLeaksPassword(t *testing.T) {
	e := newEnv(t)

	items, err := e.catalog.Query(context.Background(), catalog.Filter{}, Anonymous)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	body, err := json.Marshal(items)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "hash:")
	assert.NotContains(t, string(body), "@example.com")
}

func TestEnrich_MissingReferenceIsInconsistent(t *testing.T) {
	tests := []struct {
		name  string
		store brokenStore
	}{
		{"missing category", brokenStore{missingCategory: 3}},
		{"missing author", brokenStore{missingUser: mike}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := memory.New()
			tt.store.Store = base
			e := newEnvWithStore(t, tt.store)

			_, err := e.catalog.Query(context.Background(), catalog.Filter{}, Anonymous)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrInconsistent), "got %v", err)

			_, err = e.catalog.Get(context.Background(), fullStack, Anonymous)
			assert.True(t, errors.Is(err, apperror.ErrInconsistent), "got %v", err)
		})
	}
}

// =========================================================================
// EnrichAll / EnrichExisting
// =========================================================================

func TestEnrichAll_PreservesInputOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var prompts []model.Prompt
	// More prompts than the concurrency limit, in a scrambled order.
	for range 4 {
		for _, id := range []int64{4, 1, 6, 2, 5, 3} {
			p, err := e.store.Prompts().GetByID(ctx, id)
			require.NoError(t, err)
			prompts = append(prompts, *p)
		}
	}

	got, err := e.enricher.EnrichAll(ctx, prompts)
	require.NoError(t, err)
	require.Len(t, got, len(prompts))
	for i := range prompts {
		assert.Equal(t, prompts[i].ID, got[i].ID, "position %d", i)
		assert.Equal(t, prompts[i].CategoryID, got[i].Category.ID)
	}
}

func TestEnrichAll_Empty(t *testing.T) {
	e := newEnv(t)

	got, err := e.enricher.EnrichAll(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEnrichExisting_DropsUnknownPrompts(t *testing.T) {
	e := newEnv(t)

	got, err := e.enricher.EnrichExisting(context.Background(),
		[]int64{socialMedia, missingPromptID, blogWriter})
	require.NoError(t, err)
	assert.Equal(t, []int64{socialMedia, blogWriter}, detailIDs(got))
}

// =========================================================================
// Annotate
// =========================================================================

func TestAnnotate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.favorites.Add(ctx, alex, blogWriter)
	require.NoError(t, err)
	_, err = e.cart.Add(ctx, alex, gameNarrative)
	require.NoError(t, err)
	_, err = e.cart.Add(ctx, sarah, blogWriter) // someone else's cart
	require.NoError(t, err)

	items, err := e.catalog.Query(ctx, catalog.Filter{}, alex)
	require.NoError(t, err)

	for _, it := range items {
		require.NotNil(t, it.IsFavorited, "prompt %d", it.ID)
		require.NotNil(t, it.InCart, "prompt %d", it.ID)
		assert.Equal(t, it.ID == blogWriter, *it.IsFavorited, "prompt %d", it.ID)
		assert.Equal(t, it.ID == gameNarrative, *it.InCart, "prompt %d", it.ID)
	}

	anon, err := e.catalog.Query(ctx, catalog.Filter{}, Anonymous)
	require.NoError(t, err)
	for _, it := range anon {
		assert.Nil(t, it.IsFavorited)
		assert.Nil(t, it.InCart)
	}
}
