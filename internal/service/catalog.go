package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// CatalogService answers the public read paths: prompt queries, single prompt
// lookups and categories.
type CatalogService struct {
	prompts    repository.PromptRepository
	categories repository.CategoryRepository
	enricher   *Enricher
	logger     *slog.Logger
}

func NewCatalogService(store repository.Store, enricher *Enricher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		prompts:    store.Prompts(),
		categories: store.Categories(),
		enricher:   enricher,
		logger:     logger,
	}
}

// Query returns the prompts matching filter, newest first, enriched. The
// filter semantics are those of catalog.Apply whatever driver runs the query.
func (s *CatalogService) Query(ctx context.Context, filter catalog.Filter, viewerID int64) ([]model.PromptWithDetails, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	prompts, err := s.prompts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}

	items, err := s.enricher.EnrichAll(ctx, prompts)
	if err != nil {
		return nil, err
	}
	if err := s.enricher.Annotate(ctx, viewerID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one enriched prompt or a NotFound("Prompt not found").
func (s *CatalogService) Get(ctx context.Context, id int64, viewerID int64) (*model.PromptWithDetails, error) {
	p, err := requirePrompt(ctx, s.prompts, id, apperror.NotFoundMessage("Prompt not found"))
	if err != nil {
		return nil, err
	}

	item, err := s.enricher.Enrich(ctx, *p)
	if err != nil {
		return nil, err
	}
	items := []model.PromptWithDetails{item}
	if err := s.enricher.Annotate(ctx, viewerID, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Categories lists every category in id order.
func (s *CatalogService) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage("Category not found")
		}
		return nil, fmt.Errorf("loading category %q: %w", slug, err)
	}
	return c, nil
}
