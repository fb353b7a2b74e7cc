package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
)

func validInput() PromptInput {
	return PromptInput{
		Title:       "  Unit Test Generator ",
		Description: "Writes table-driven tests",
		Content:     "Write Go tests for [FUNCTION]...",
		Price:       decimal.RequireFromString("9.50"),
		CategoryID:  3,
		Tags:        []string{"Testing", " go ", "testing", ""},
	}
}

func TestPromptService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	got, err := e.prompts.Create(ctx, alex, validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Unit Test Generator", got.Title)
	assert.Equal(t, []string{"Testing", "go"}, got.Tags)
	assert.True(t, got.IsNew)
	assert.True(t, got.Rating.IsZero())
	assert.Zero(t, got.SalesCount)
	assert.Equal(t, "alex_rivera", got.Author.Username)
	assert.Equal(t, "coding", got.Category.Slug)

	// The new prompt is the newest in the catalog.
	all, err := e.catalog.Query(ctx, catalog.Filter{Limit: catalog.Ptr(1)}, Anonymous)
	require.NoError(t, err)
	assert.Equal(t, got.ID, all[0].ID)
}

func TestPromptService_CreateValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		edit  func(*PromptInput)
		field string
	}{
		{"blank title", func(in *PromptInput) { in.Title = "   " }, "title"},
		{"long title", func(in *PromptInput) { in.Title = strings.Repeat("t", MaxTitleLength+1) }, "title"},
		{"no description", func(in *PromptInput) { in.Description = "" }, "description"},
		{"no content", func(in *PromptInput) { in.Content = "" }, "content"},
		{"negative price", func(in *PromptInput) { in.Price = decimal.RequireFromString("-1") }, "price"},
		{"three decimals", func(in *PromptInput) { in.Price = decimal.RequireFromString("1.005") }, "price"},
		{"huge price", func(in *PromptInput) { in.Price = decimal.RequireFromString("100000000") }, "price"},
		{"unknown category", func(in *PromptInput) { in.CategoryID = 42 }, "categoryId"},
		{"too many tags", func(in *PromptInput) {
			in.Tags = nil
			for i := range MaxTags + 1 {
				in.Tags = append(in.Tags, strings.Repeat("x", i+1))
			}
		}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)

			_, err := e.prompts.Create(context.Background(), alex, in)
			require.True(t, errors.Is(err, apperror.ErrValidation), "got %v", err)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	n, err := e.store.Prompts().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestPromptService_Update(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	title := "Game Narrative Architect II"
	price := decimal.RequireFromString("25.00")
	got, err := e.prompts.Update(ctx, mike, gameNarrative, PromptPatch{
		Title: &title,
		Price: &price,
		IsNew: catalog.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, "25.00", got.Price.StringFixed(2))
	assert.False(t, got.IsNew)
	assert.True(t, got.Trending, "untouched fields keep their value")
	assert.Equal(t, mike, got.AuthorID)

	_, err = e.prompts.Update(ctx, sarah, gameNarrative, PromptPatch{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "got %v", err)

	_, err = e.prompts.Update(ctx, mike, missingPromptID, PromptPatch{Title: &title})
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)

	blank := ""
	_, err = e.prompts.Update(ctx, mike, gameNarrative, PromptPatch{Content: &blank})
	assert.True(t, errors.Is(err, apperror.ErrValidation), "got %v", err)
}

func TestPromptService_MyPrompts(t *testing.T) {
	e := newEnv(t)

	mine, err := e.prompts.MyPrompts(context.Background(), alex)
	require.NoError(t, err)
	assert.Equal(t, []int64{learning, midjourney}, detailIDs(mine))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{}, normalizeTags(nil))
	assert.Equal(t, []string{"SEO", "Blogging"}, normalizeTags([]string{" SEO", "seo", "", "Blogging "}))
}
