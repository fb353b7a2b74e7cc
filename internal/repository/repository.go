// Package repository defines the storage contracts for the marketplace.
//
// THE STORE ABSTRACTION:
// Services never talk to a database directly. They depend on the small
// interfaces below, and one Store value hands them out:
//
//	store.Prompts().List(ctx, filter)
//	store.Cart().Add(ctx, userID, promptID)
//
// Three drivers implement Store: memory (tests and demos), sqlite (default)
// and postgres. Which one runs is decided once, in server.OpenStore, from
// configuration. Nothing else in the codebase branches on the driver.
//
// ERROR CONTRACT (all drivers):
//   - missing row                  → apperror.ErrNotFound
//   - UNIQUE(user_id, prompt_id)   → apperror.ErrDuplicate
//   - unique username / email      → apperror.ErrConflict
//   - dangling foreign key         → apperror.ErrValidation
//
// Anything else is an infrastructure failure, wrapped with the driver name.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
)

type UserRepository interface {
	// Create assigns ID and CreatedAt. A taken username or email is ErrConflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	Count(ctx context.Context) (int, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	// List returns every category in id order.
	List(ctx context.Context) ([]model.Category, error)
	Count(ctx context.Context) (int, error)
}

type PromptRepository interface {
	// Create assigns ID, and CreatedAt when the caller left it zero.
	Create(ctx context.Context, prompt *model.Prompt) error
	// Update rewrites the mutable columns of an existing prompt. ID, AuthorID
	// and CreatedAt never change.
	Update(ctx context.Context, prompt *model.Prompt) error
	GetByID(ctx context.Context, id int64) (*model.Prompt, error)
	// List returns exactly what catalog.Apply would return for the same rows.
	List(ctx context.Context, filter catalog.Filter) ([]model.Prompt, error)
	Count(ctx context.Context) (int, error)
}

// MembershipRepository stores one (user, prompt) relation with at most one row
// per pair. Favorites and the cart are two independent instances.
//
// RACE FREEDOM:
// Add must not be implemented as "check, then insert". Two concurrent Adds for
// the same pair would both pass the check. The SQL drivers rely on a
// UNIQUE(user_id, prompt_id) constraint, the memory driver on a single
// critical section, so exactly one Add wins and the other gets ErrDuplicate.
type MembershipRepository interface {
	Add(ctx context.Context, userID, promptID int64) (*model.Membership, error)
	// Remove returns ErrNotFound when the pair is absent.
	Remove(ctx context.Context, userID, promptID int64) error
	Exists(ctx context.Context, userID, promptID int64) (bool, error)
	// ListByUser returns the user's rows in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]model.Membership, error)
	// ClearByUser deletes every row of the user in one statement and reports
	// how many were removed.
	ClearByUser(ctx context.Context, userID int64) (int, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	// ListByPrompt returns reviews in insertion order.
	ListByPrompt(ctx context.Context, promptID int64) ([]model.Review, error)
	CountByPrompt(ctx context.Context, promptID int64) (int, error)
}

// PurchaseRepository is an append-only ledger.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error)
	// TotalEarnings sums the price of every purchase ever recorded.
	TotalEarnings(ctx context.Context) (decimal.Decimal, error)
}

// Store aggregates the repositories of one storage backend.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Prompts() PromptRepository
	Favorites() MembershipRepository
	Cart() MembershipRepository
	Reviews() ReviewRepository
	Purchases() PurchaseRepository

	Ping(ctx context.Context) error
	Close() error
}

// Timestamp normalizes a creation time before it is stored: zero means now,
// the location is UTC and precision is cut to microseconds, the finest
// resolution every driver can round-trip.
func Timestamp(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

// Tags returns a non-nil copy of tags so responses render [] instead of null.
func Tags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
