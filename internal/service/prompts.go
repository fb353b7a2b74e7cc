package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// Authoring limits. The price ceiling is the largest NUMERIC(10,2).
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
	MaxTags          = 20
	MaxTagLength     = 40
)

var maxPrice = decimal.RequireFromString("99999999.99")

// PromptInput is everything a seller supplies when listing a prompt.
type PromptInput struct {
	Title        string
	Description  string
	Content      string
	Price        decimal.Decimal
	CategoryID   int64
	Tags         []string
	PreviewImage *string
	Featured     bool
	Trending     bool
}

// PromptPatch is a partial update; nil fields keep their current value.
type PromptPatch struct {
	Title        *string
	Description  *string
	Content      *string
	Price        *decimal.Decimal
	CategoryID   *int64
	Tags         *[]string
	PreviewImage *string
	Featured     *bool
	Trending     *bool
	IsNew        *bool
}

// PromptService lets authors list and edit their own prompts.
type PromptService struct {
	prompts    repository.PromptRepository
	categories repository.CategoryRepository
	enricher   *Enricher
	logger     *slog.Logger
}

func NewPromptService(store repository.Store, enricher *Enricher, logger *slog.Logger) *PromptService {
	return &PromptService{
		prompts:    store.Prompts(),
		categories: store.Categories(),
		enricher:   enricher,
		logger:     logger,
	}
}

// Create lists a new prompt owned by authorID. New prompts start unrated,
// unsold and flagged isNew.
func (s *PromptService) Create(ctx context.Context, authorID int64, in PromptInput) (*model.PromptWithDetails, error) {
	p := &model.Prompt{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Content:      strings.TrimSpace(in.Content),
		Price:        in.Price,
		CategoryID:   in.CategoryID,
		AuthorID:     authorID,
		Rating:       decimal.Zero,
		Featured:     in.Featured,
		Trending:     in.Trending,
		IsNew:        true,
		Tags:         normalizeTags(in.Tags),
		PreviewImage: in.PreviewImage,
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	if err := s.prompts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}

	s.logger.Info("prompt created",
		slog.Int64("promptID", p.ID),
		slog.Int64("authorID", authorID),
		slog.String("title", p.Title),
	)
	return s.enrich(ctx, p)
}

// Update applies patch to a prompt. Only its author may do that.
func (s *PromptService) Update(ctx context.Context, authorID, promptID int64, patch PromptPatch) (*model.PromptWithDetails, error) {
	p, err := requirePrompt(ctx, s.prompts, promptID, apperror.NotFoundMessage("Prompt not found"))
	if err != nil {
		return nil, err
	}
	if p.AuthorID != authorID {
		return nil, apperror.Forbidden("You can only edit your own prompts")
	}

	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Content != nil {
		p.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Tags != nil {
		p.Tags = normalizeTags(*patch.Tags)
	}
	if patch.PreviewImage != nil {
		if *patch.PreviewImage == "" {
			p.PreviewImage = nil
		} else {
			p.PreviewImage = patch.PreviewImage
		}
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Trending != nil {
		p.Trending = *patch.Trending
	}
	if patch.IsNew != nil {
		p.IsNew = *patch.IsNew
	}

	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.prompts.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating prompt %d: %w", promptID, err)
	}

	s.logger.Info("prompt updated",
		slog.Int64("promptID", p.ID),
		slog.Int64("authorID", authorID),
	)
	return s.enrich(ctx, p)
}

// MyPrompts is the catalog restricted to one author, newest first.
func (s *PromptService) MyPrompts(ctx context.Context, authorID int64) ([]model.PromptWithDetails, error) {
	prompts, err := s.prompts.List(ctx, catalog.Filter{AuthorID: &authorID})
	if err != nil {
		return nil, fmt.Errorf("listing prompts of author %d: %w", authorID, err)
	}
	return s.enricher.EnrichAll(ctx, prompts)
}

func (s *PromptService) validate(ctx context.Context, p *model.Prompt) error {
	switch {
	case p.Title == "":
		return apperror.ValidationFailed("title", "title is required")
	case utf8.RuneCountInString(p.Title) > MaxTitleLength:
		return apperror.ValidationFailed("title", fmt.Sprintf("title must be %d characters or fewer", MaxTitleLength))
	case p.Description == "":
		return apperror.ValidationFailed("description", "description is required")
	case p.Content == "":
		return apperror.ValidationFailed("content", "content is required")
	case len(p.Content) > MaxContentLength:
		return apperror.ValidationFailed("content", fmt.Sprintf("content must be %d bytes or fewer", MaxContentLength))
	case p.Price.IsNegative():
		return apperror.ValidationFailed("price", "price must not be negative")
	case !p.Price.Equal(p.Price.Truncate(2)):
		return apperror.ValidationFailed("price", "price must have at most 2 decimal places")
	case p.Price.GreaterThan(maxPrice):
		return apperror.ValidationFailed("price", "price is too large")
	case len(p.Tags) > MaxTags:
		return apperror.ValidationFailed("tags", fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	for _, tag := range p.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return apperror.ValidationFailed("tags", fmt.Sprintf("tags must be %d characters or fewer", MaxTagLength))
		}
	}

	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("categoryId", "Category does not exist")
		}
		return fmt.Errorf("checking category %d: %w", p.CategoryID, err)
	}
	return nil
}

func (s *PromptService) enrich(ctx context.Context, p *model.Prompt) (*model.PromptWithDetails, error) {
	d, err := s.enricher.Enrich(ctx, *p)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// normalizeTags trims tags and drops blanks and case-insensitive repeats,
// keeping the first spelling.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
