package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// ReviewLedger is the append-only list of ratings per prompt. A user may
// review the same prompt more than once, including their own.
type ReviewLedger struct {
	reviews repository.ReviewRepository
	prompts repository.PromptRepository
	logger  *slog.Logger
}

func NewReviewLedger(store repository.Store, logger *slog.Logger) *ReviewLedger {
	return &ReviewLedger{
		reviews: store.Reviews(),
		prompts: store.Prompts(),
		logger:  logger,
	}
}

// ListForPrompt returns the prompt's reviews in insertion order. An unknown
// prompt simply has none.
func (l *ReviewLedger) ListForPrompt(ctx context.Context, promptID int64) ([]model.Review, error) {
	reviews, err := l.reviews.ListByPrompt(ctx, promptID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews of prompt %d: %w", promptID, err)
	}
	return reviews, nil
}

// Create appends a review. The comment is trimmed; a blank one is stored as
// no comment at all.
func (l *ReviewLedger) Create(ctx context.Context, promptID, userID int64, rating int, comment string) (*model.Review, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, apperror.ValidationFailed("rating",
			fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, apperror.ValidationFailed("comment",
			fmt.Sprintf("comment must be %d characters or fewer", MaxCommentLength))
	}

	if _, err := requirePrompt(ctx, l.prompts, promptID, apperror.NotFoundMessage("Prompt not found")); err != nil {
		return nil, err
	}

	r := &model.Review{PromptID: promptID, UserID: userID, Rating: rating}
	if comment != "" {
		r.Comment = &comment
	}
	if err := l.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	l.logger.Info("review created",
		slog.Int64("reviewID", r.ID),
		slog.Int64("promptID", promptID),
		slog.Int64("userID", userID),
		slog.Int("rating", rating),
	)
	return r, nil
}
