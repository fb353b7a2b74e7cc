// Package memory implements repository.Store with plain Go maps.
//
// Everything lives behind one sync.RWMutex owned by the Store value. There are
// no package-level maps or counters: two Stores built in the same process are
// fully independent, which is what lets every test start from a clean slate.
//
// Each entity class has its own id sequence, starting at 1, exactly like an
// AUTOINCREMENT column.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type sequences struct {
	user, category, prompt, favorite, cart, review, purchase int64
}

// Store is the in-memory storage backend.
type Store struct {
	mu  sync.RWMutex
	seq sequences

	users      map[int64]*model.User
	categories map[int64]*model.Category
	prompts    map[int64]*model.Prompt
	reviews    []model.Review
	purchases  []model.Purchase

	favorites *membershipTable
	cart      *membershipTable
}

// New returns an empty Store.
func New() *Store {
	s := &Store{
		users:      make(map[int64]*model.User),
		categories: make(map[int64]*model.Category),
		prompts:    make(map[int64]*model.Prompt),
	}
	s.favorites = &membershipTable{store: s, name: "favorite", seq: &s.seq.favorite}
	s.cart = &membershipTable{store: s, name: "cart item", seq: &s.seq.cart}
	return s
}

func (s *Store) Users() repository.UserRepository           { return userRepo{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s} }
func (s *Store) Prompts() repository.PromptRepository       { return promptRepo{s} }
func (s *Store) Favorites() repository.MembershipRepository { return s.favorites }
func (s *Store) Cart() repository.MembershipRepository      { return s.cart }
func (s *Store) Reviews() repository.ReviewRepository       { return reviewRepo{s} }
func (s *Store) Purchases() repository.PurchaseRepository   { return purchaseRepo{s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// =========================================================================
// USERS
// =========================================================================

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		switch {
		case u.Username == user.Username:
			return apperror.Conflict("username", "Username already exists")
		case u.Email == user.Email:
			return apperror.Conflict("email", "Email already exists")
		case user.GitHubID != nil && u.GitHubID != nil && *u.GitHubID == *user.GitHubID:
			return apperror.Conflict("githubId", "GitHub account already linked")
		}
	}

	r.s.seq.user++
	user.ID = r.s.seq.user
	user.CreatedAt = repository.Timestamp(user.CreatedAt)

	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username }, "user not found: "+username)
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email }, "user not found: "+email)
}

func (r userRepo) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return r.find(func(u *model.User) bool {
		return u.GitHubID != nil && *u.GitHubID == githubID
	}, "user not found for GitHub account")
}

func (r userRepo) find(match func(*model.User) bool, notFound string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFoundMessage(notFound)
}

func (r userRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// =========================================================================
// CATEGORIES
// =========================================================================

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(ctx context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Slug == category.Slug {
			return apperror.Conflict("slug", "Category slug already exists")
		}
	}

	r.s.seq.category++
	category.ID = r.s.seq.category
	stored := *category
	r.s.categories[category.ID] = &stored
	return nil
}

func (r categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	copied := *c
	return &copied, nil
}

func (r categoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperror.NotFoundMessage("Category not found")
}

func (r categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b model.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r categoryRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.categories), nil
}

// =========================================================================
// PROMPTS
// =========================================================================

type promptRepo struct{ s *Store }

func (r promptRepo) Create(ctx context.Context, prompt *model.Prompt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkPromptRefs(prompt); err != nil {
		return err
	}

	r.s.seq.prompt++
	prompt.ID = r.s.seq.prompt
	prompt.CreatedAt = repository.Timestamp(prompt.CreatedAt)
	prompt.Tags = repository.Tags(prompt.Tags)

	r.s.prompts[prompt.ID] = clonePrompt(prompt)
	return nil
}

func (r promptRepo) Update(ctx context.Context, prompt *model.Prompt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.prompts[prompt.ID]
	if !ok {
		return apperror.NotFound("prompt", prompt.ID)
	}
	prompt.AuthorID = existing.AuthorID
	prompt.CreatedAt = existing.CreatedAt
	prompt.Tags = repository.Tags(prompt.Tags)

	if err := r.s.checkPromptRefs(prompt); err != nil {
		return err
	}

	r.s.prompts[prompt.ID] = clonePrompt(prompt)
	return nil
}

// checkPromptRefs mirrors the foreign keys of the SQL drivers. Caller holds mu.
func (s *Store) checkPromptRefs(p *model.Prompt) error {
	if _, ok := s.categories[p.CategoryID]; !ok {
		return apperror.ValidationFailed("categoryId", "Category does not exist")
	}
	if _, ok := s.users[p.AuthorID]; !ok {
		return apperror.ValidationFailed("authorId", "Author does not exist")
	}
	return nil
}

func (r promptRepo) GetByID(ctx context.Context, id int64) (*model.Prompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.prompts[id]
	if !ok {
		return nil, apperror.NotFound("prompt", id)
	}
	return clonePrompt(p), nil
}

func (r promptRepo) List(ctx context.Context, filter catalog.Filter) ([]model.Prompt, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	all := make([]model.Prompt, 0, len(r.s.prompts))
	for _, p := range r.s.prompts {
		all = append(all, *clonePrompt(p))
	}
	r.s.mu.RUnlock()

	return catalog.Apply(all, filter), nil
}

func (r promptRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.prompts), nil
}

// clonePrompt copies p including its tag slice so callers can never mutate
// the stored row through a shared backing array.
func clonePrompt(p *model.Prompt) *model.Prompt {
	copied := *p
	copied.Tags = repository.Tags(p.Tags)
	return &copied
}

// =========================================================================
// MEMBERSHIPS (favorites, cart)
// =========================================================================

type membershipTable struct {
	store *Store
	name  string
	seq   *int64
	rows  []model.Membership // insertion order
}

func (t *membershipTable) indexOf(userID, promptID int64) int {
	return slices.IndexFunc(t.rows, func(m model.Membership) bool {
		return m.UserID == userID && m.PromptID == promptID
	})
}

// Add checks and inserts under one write lock, so two concurrent Adds for the
// same pair cannot both succeed.
func (t *membershipTable) Add(ctx context.Context, userID, promptID int64) (*model.Membership, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.store.users[userID]; !ok {
		return nil, apperror.ValidationFailed("userId", "User does not exist")
	}
	if _, ok := t.store.prompts[promptID]; !ok {
		return nil, apperror.ValidationFailed("promptId", "Prompt does not exist")
	}
	if t.indexOf(userID, promptID) >= 0 {
		return nil, apperror.Duplicate(t.name + " already exists")
	}

	*t.seq++
	m := model.Membership{
		ID:        *t.seq,
		UserID:    userID,
		PromptID:  promptID,
		CreatedAt: repository.Timestamp(time.Time{}),
	}
	t.rows = append(t.rows, m)
	return &m, nil
}

func (t *membershipTable) Remove(ctx context.Context, userID, promptID int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	i := t.indexOf(userID, promptID)
	if i < 0 {
		return apperror.NotFoundMessage(t.name + " not found")
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return nil
}

func (t *membershipTable) Exists(ctx context.Context, userID, promptID int64) (bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.indexOf(userID, promptID) >= 0, nil
}

func (t *membershipTable) ListByUser(ctx context.Context, userID int64) ([]model.Membership, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	out := []model.Membership{}
	for _, m := range t.rows {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *membershipTable) ClearByUser(ctx context.Context, userID int64) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	before := len(t.rows)
	t.rows = slices.DeleteFunc(t.rows, func(m model.Membership) bool { return m.UserID == userID })
	return before - len(t.rows), nil
}

// =========================================================================
// REVIEWS
// =========================================================================

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(ctx context.Context, review *model.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.prompts[review.PromptID]; !ok {
		return apperror.ValidationFailed("promptId", "Prompt does not exist")
	}
	if _, ok := r.s.users[review.UserID]; !ok {
		return apperror.ValidationFailed("userId", "User does not exist")
	}

	r.s.seq.review++
	review.ID = r.s.seq.review
	review.CreatedAt = repository.Timestamp(review.CreatedAt)
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r reviewRepo) ListByPrompt(ctx context.Context, promptID int64) ([]model.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Review{}
	for _, rv := range r.s.reviews {
		if rv.PromptID == promptID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r reviewRepo) CountByPrompt(ctx context.Context, promptID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, rv := range r.s.reviews {
		if rv.PromptID == promptID {
			n++
		}
	}
	return n, nil
}

// =========================================================================
// PURCHASES
// =========================================================================

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.prompts[purchase.PromptID]; !ok {
		return apperror.ValidationFailed("promptId", "Prompt does not exist")
	}
	if _, ok := r.s.users[purchase.UserID]; !ok {
		return apperror.ValidationFailed("userId", "User does not exist")
	}

	r.s.seq.purchase++
	purchase.ID = r.s.seq.purchase
	purchase.CreatedAt = repository.Timestamp(purchase.CreatedAt)
	r.s.purchases = append(r.s.purchases, *purchase)
	return nil
}

func (r purchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Purchase{}
	for _, p := range r.s.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r purchaseRepo) TotalEarnings(ctx context.Context) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, p := range r.s.purchases {
		total = total.Add(p.Price)
	}
	return total, nil
}
