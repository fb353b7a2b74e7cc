// Package service contains the business logic layer of the marketplace.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the Entity Store
//
// Services accept plain Go values (ids, filters, strings), never *http.Request,
// and return apperror values, never status codes. The handler package owns the
// translation to HTTP.
//
// THE ONE SHAPE RULE:
// Every read path that hands prompts to a caller (catalog, single prompt,
// favorites, cart, purchase history, my prompts) goes through Enricher. It is
// the only producer of model.PromptWithDetails, so the author projection, and
// with it the guarantee that no password hash leaves the process, lives in
// exactly one place.
//
// DEPENDENCY INJECTION:
// Constructors take repository interfaces (or the repository.Store that hands
// them out), never a concrete driver. Tests run the same services against the
// in-memory store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// Anonymous is the viewer id of a request without an authenticated subject.
const Anonymous int64 = 0

// requirePrompt loads a prompt, mapping an absent row to notFound so each
// operation can choose its own status (404 for lookups, 400 for references).
func requirePrompt(ctx context.Context, prompts repository.PromptRepository, id int64, notFound error) (*model.Prompt, error) {
	if id <= 0 {
		return nil, notFound
	}
	p, err := prompts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("loading prompt %d: %w", id, err)
	}
	return p, nil
}
