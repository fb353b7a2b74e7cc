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

// Relation names one membership set and the messages callers see for it.
type Relation struct {
	Name             string
	DuplicateMessage string
	NotFoundMessage  string
	RemovedMessage   string
	ClearedMessage   string
}

var (
	FavoritesRelation = Relation{
		Name:             "favorites",
		DuplicateMessage: "Already in favorites",
		NotFoundMessage:  "Favorite not found",
		RemovedMessage:   "Removed from favorites",
		ClearedMessage:   "Favorites cleared",
	}
	CartRelation = Relation{
		Name:             "cart",
		DuplicateMessage: "Already in cart",
		NotFoundMessage:  "Item not found in cart",
		RemovedMessage:   "Removed from cart",
		ClearedMessage:   "Cart cleared",
	}
)

// MembershipSet is the (user, prompt) relation behind both favorites and the
// cart. Per pair there are two states, ABSENT and PRESENT:
//
//	Add     ABSENT  → PRESENT   (PRESENT: DuplicateMembership, 400)
//	Remove  PRESENT → ABSENT    (ABSENT: NotFound, 404)
//	Clear   *       → ABSENT    (always succeeds)
//
// WHY NO EXISTENCE CHECK BEFORE INSERT?
// "if !Exists { Add }" lets two concurrent requests both pass the check. Add
// goes straight to the repository, whose unique constraint (or single lock in
// the memory driver) lets exactly one insert win; the loser's ErrDuplicate is
// rewritten here into the relation's message.
type MembershipSet struct {
	rel      Relation
	members  repository.MembershipRepository
	prompts  repository.PromptRepository
	enricher *Enricher
	logger   *slog.Logger
}

func NewMembershipSet(
	rel Relation,
	members repository.MembershipRepository,
	prompts repository.PromptRepository,
	enricher *Enricher,
	logger *slog.Logger,
) *MembershipSet {
	return &MembershipSet{
		rel:      rel,
		members:  members,
		prompts:  prompts,
		enricher: enricher,
		logger:   logger.With(slog.String("relation", rel.Name)),
	}
}

// NewFavorites and NewCart build the two sets the marketplace exposes.
func NewFavorites(store repository.Store, enricher *Enricher, logger *slog.Logger) *MembershipSet {
	return NewMembershipSet(FavoritesRelation, store.Favorites(), store.Prompts(), enricher, logger)
}

func NewCart(store repository.Store, enricher *Enricher, logger *slog.Logger) *MembershipSet {
	return NewMembershipSet(CartRelation, store.Cart(), store.Prompts(), enricher, logger)
}

// Relation reports which set this is and the messages that go with it.
func (s *MembershipSet) Relation() Relation { return s.rel }

// Add makes the pair PRESENT. An unknown prompt is a validation error: the
// caller sent a bad promptId in the body.
func (s *MembershipSet) Add(ctx context.Context, userID, promptID int64) (*model.Membership, error) {
	if _, err := requirePrompt(ctx, s.prompts, promptID,
		apperror.ValidationFailed("promptId", "Prompt does not exist")); err != nil {
		return nil, err
	}

	m, err := s.members.Add(ctx, userID, promptID)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return nil, apperror.Duplicate(s.rel.DuplicateMessage)
		}
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("adding to %s: %w", s.rel.Name, err)
	}

	s.logger.Info("membership added",
		slog.Int64("userID", userID),
		slog.Int64("promptID", promptID),
	)
	return m, nil
}

// Remove makes the pair ABSENT, failing with NotFound when it already is.
func (s *MembershipSet) Remove(ctx context.Context, userID, promptID int64) error {
	if err := s.members.Remove(ctx, userID, promptID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFoundMessage(s.rel.NotFoundMessage)
		}
		return fmt.Errorf("removing from %s: %w", s.rel.Name, err)
	}

	s.logger.Info("membership removed",
		slog.Int64("userID", userID),
		slog.Int64("promptID", promptID),
	)
	return nil
}

func (s *MembershipSet) IsMember(ctx context.Context, userID, promptID int64) (bool, error) {
	ok, err := s.members.Exists(ctx, userID, promptID)
	if err != nil {
		return false, fmt.Errorf("checking %s membership: %w", s.rel.Name, err)
	}
	return ok, nil
}

// ListForUser returns the user's prompts in the order they were added.
func (s *MembershipSet) ListForUser(ctx context.Context, userID int64) ([]model.PromptWithDetails, error) {
	ids, err := s.promptIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichExisting(ctx, ids)
}

// Clear removes every membership of the user in one store call.
func (s *MembershipSet) Clear(ctx context.Context, userID int64) (int, error) {
	n, err := s.members.ClearByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing %s: %w", s.rel.Name, err)
	}

	s.logger.Info("membership cleared",
		slog.Int64("userID", userID),
		slog.Int("removed", n),
	)
	return n, nil
}

// removeAll removes the given pairs, skipping those already gone.
func (s *MembershipSet) removeAll(ctx context.Context, userID int64, promptIDs []int64) error {
	for _, id := range promptIDs {
		err := s.members.Remove(ctx, userID, id)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("removing prompt %d from %s: %w", id, s.rel.Name, err)
		}
	}
	return nil
}

func (s *MembershipSet) promptIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.rel.Name, err)
	}
	ids := make([]int64, len(rows))
	for i, m := range rows {
		ids[i] = m.PromptID
	}
	return ids, nil
}
