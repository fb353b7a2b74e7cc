package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// PurchaseService appends to the purchase ledger. No money moves here:
// a purchase records that the user owns the prompt and what it cost then.
type PurchaseService struct {
	purchases repository.PurchaseRepository
	prompts   repository.PromptRepository
	cart      *MembershipSet
	enricher  *Enricher
	logger    *slog.Logger
}

func NewPurchaseService(store repository.Store, cart *MembershipSet, enricher *Enricher, logger *slog.Logger) *PurchaseService {
	return &PurchaseService{
		purchases: store.Purchases(),
		prompts:   store.Prompts(),
		cart:      cart,
		enricher:  enricher,
		logger:    logger,
	}
}

// Purchase records one purchase at the prompt's current price.
func (s *PurchaseService) Purchase(ctx context.Context, userID, promptID int64) (*model.Purchase, error) {
	p, err := requirePrompt(ctx, s.prompts, promptID, apperror.NotFoundMessage("Prompt not found"))
	if err != nil {
		return nil, err
	}
	return s.record(ctx, userID, p)
}

// Checkout purchases every prompt in the user's cart, in cart order, then
// removes exactly those cart rows. Rows whose prompt has disappeared are
// skipped and removed; anything added to the cart meanwhile stays. An empty
// cart is a validation error.
func (s *PurchaseService) Checkout(ctx context.Context, userID int64) ([]model.Purchase, error) {
	ids, err := s.cart.promptIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperror.ValidationFailed("cart", "Cart is empty")
	}

	purchases := make([]model.Purchase, 0, len(ids))
	for _, id := range ids {
		p, err := requirePrompt(ctx, s.prompts, id, apperror.ErrNotFound)
		if errors.Is(err, apperror.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		purchase, err := s.record(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *purchase)
	}

	if err := s.cart.removeAll(ctx, userID, ids); err != nil {
		return nil, err
	}

	s.logger.Info("cart checked out",
		slog.Int64("userID", userID),
		slog.Int("items", len(purchases)),
	)
	return purchases, nil
}

// History returns the purchased prompts, oldest purchase first.
func (s *PurchaseService) History(ctx context.Context, userID int64) ([]model.PromptWithDetails, error) {
	rows, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	ids := make([]int64, len(rows))
	for i, p := range rows {
		ids[i] = p.PromptID
	}
	return s.enricher.EnrichExisting(ctx, ids)
}

// Ledger returns the raw purchase records of the user.
func (s *PurchaseService) Ledger(ctx context.Context, userID int64) ([]model.Purchase, error) {
	rows, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return rows, nil
}

func (s *PurchaseService) record(ctx context.Context, userID int64, p *model.Prompt) (*model.Purchase, error) {
	purchase := &model.Purchase{UserID: userID, PromptID: p.ID, Price: p.Price}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("recording purchase of prompt %d: %w", p.ID, err)
	}

	s.logger.Info("prompt purchased",
		slog.Int64("purchaseID", purchase.ID),
		slog.Int64("userID", userID),
		slog.Int64("promptID", p.ID),
		slog.String("price", p.Price.StringFixed(2)),
	)
	return purchase, nil
}
