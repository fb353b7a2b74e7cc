package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// enrichConcurrency bounds the per-request fan-out so one large page cannot
// monopolize the store's connection pool.
const enrichConcurrency = 8

// Enricher joins raw prompts with their category, author summary and review
// count.
//
// FAN-OUT:
// The three lookups for one prompt, and the lookups of different prompts, are
// independent reads. EnrichAll runs one goroutine per prompt through an
// errgroup with SetLimit, writing into a pre-sized slice by index so the
// output order is the input order without any sorting afterwards. The first
// error cancels the group's context and aborts the remaining lookups.
type Enricher struct {
	categories repository.CategoryRepository
	users      repository.UserRepository
	prompts    repository.PromptRepository
	reviews    repository.ReviewRepository
	favorites  repository.MembershipRepository
	cart       repository.MembershipRepository
	logger     *slog.Logger
}

func NewEnricher(store repository.Store, logger *slog.Logger) *Enricher {
	return &Enricher{
		categories: store.Categories(),
		users:      store.Users(),
		prompts:    store.Prompts(),
		reviews:    store.Reviews(),
		favorites:  store.Favorites(),
		cart:       store.Cart(),
		logger:     logger,
	}
}

// Enrich builds the PromptWithDetails view of p. A category or author that
// does not exist is an ErrInconsistent: the store guarantees the reference, so
// its absence is a bug, not a client error.
func (e *Enricher) Enrich(ctx context.Context, p model.Prompt) (model.PromptWithDetails, error) {
	category, err := e.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.PromptWithDetails{}, apperror.Inconsistent(
				"prompt %d references missing category %d", p.ID, p.CategoryID)
		}
		return model.PromptWithDetails{}, fmt.Errorf("enriching prompt %d: category: %w", p.ID, err)
	}

	author, err := e.users.GetByID(ctx, p.AuthorID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.PromptWithDetails{}, apperror.Inconsistent(
				"prompt %d references missing author %d", p.ID, p.AuthorID)
		}
		return model.PromptWithDetails{}, fmt.Errorf("enriching prompt %d: author: %w", p.ID, err)
	}

	reviewCount, err := e.reviews.CountByPrompt(ctx, p.ID)
	if err != nil {
		return model.PromptWithDetails{}, fmt.Errorf("enriching prompt %d: review count: %w", p.ID, err)
	}

	return model.PromptWithDetails{
		Prompt:      p,
		Category:    *category,
		Author:      author.Summary(),
		ReviewCount: reviewCount,
	}, nil
}

// EnrichAll enriches prompts concurrently and returns them in input order.
func (e *Enricher) EnrichAll(ctx context.Context, prompts []model.Prompt) ([]model.PromptWithDetails, error) {
	out := make([]model.PromptWithDetails, len(prompts))
	if len(prompts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range prompts {
		g.Go(func() error {
			d, err := e.Enrich(gctx, prompts[i])
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrichExisting resolves promptIDs in order and enriches them. Ids whose
// prompt no longer exists are dropped, so a stale membership or purchase row
// never breaks a listing.
func (e *Enricher) EnrichExisting(ctx context.Context, promptIDs []int64) ([]model.PromptWithDetails, error) {
	prompts := make([]model.Prompt, 0, len(promptIDs))
	for _, id := range promptIDs {
		p, err := e.prompts.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				e.logger.Warn("dropping unresolvable prompt from listing", slog.Int64("promptID", id))
				continue
			}
			return nil, fmt.Errorf("resolving prompt %d: %w", id, err)
		}
		prompts = append(prompts, *p)
	}
	return e.EnrichAll(ctx, prompts)
}

// Annotate sets IsFavorited and InCart on every item for an authenticated
// viewer. Anonymous viewers get the fields left nil, which omits them from
// JSON.
func (e *Enricher) Annotate(ctx context.Context, viewerID int64, items []model.PromptWithDetails) error {
	if viewerID == Anonymous || len(items) == 0 {
		return nil
	}

	var favs, cart map[int64]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		favs, err = memberSet(gctx, e.favorites, viewerID)
		return err
	})
	g.Go(func() (err error) {
		cart, err = memberSet(gctx, e.cart, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("annotating prompts for user %d: %w", viewerID, err)
	}

	for i := range items {
		isFav, inCart := favs[items[i].ID], cart[items[i].ID]
		items[i].IsFavorited = &isFav
		items[i].InCart = &inCart
	}
	return nil
}

func memberSet(ctx context.Context, repo repository.MembershipRepository, userID int64) (map[int64]bool, error) {
	rows, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(rows))
	for _, m := range rows {
		set[m.PromptID] = true
	}
	return set, nil
}
