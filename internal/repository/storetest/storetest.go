// Package storetest is a conformance suite for repository.Store drivers.
//
// Every driver runs the same checks from its own _test.go file:
//
//	func TestConformance(t *testing.T) {
//	    storetest.Run(t, func(t *testing.T) repository.Store { return newTestStore(t) })
//	}
//
// The catalog checks compare each driver's List against catalog.Apply over the
// same rows, so a SQL translation that drifts from the reference semantics
// fails here rather than in production.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// Factory returns a fresh, empty Store. It should register its own cleanup.
type Factory func(t *testing.T) repository.Store

// Run executes the full suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("PromptRoundTrip", func(t *testing.T) { testPromptRoundTrip(t, newStore(t)) })
	t.Run("PromptUpdate", func(t *testing.T) { testPromptUpdate(t, newStore(t)) })
	t.Run("PromptReferences", func(t *testing.T) { testPromptReferences(t, newStore(t)) })
	t.Run("CatalogList", func(t *testing.T) { testCatalogList(t, newStore(t)) })
	t.Run("CatalogSearchEscaping", func(t *testing.T) { testCatalogSearchEscaping(t, newStore(t)) })
	t.Run("Favorites", func(t *testing.T) {
		s := newStore(t)
		testMembership(t, s, s.Favorites())
	})
	t.Run("Cart", func(t *testing.T) {
		s := newStore(t)
		testMembership(t, s, s.Cart())
	})
	t.Run("MembershipRace", func(t *testing.T) { testMembershipRace(t, newStore(t)) })
	t.Run("RelationsAreIndependent", func(t *testing.T) { testRelationsIndependent(t, newStore(t)) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, newStore(t)) })
	t.Run("Purchases", func(t *testing.T) { testPurchases(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}

// =========================================================================
// FIXTURES
// =========================================================================

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	users      []model.User
	categories []model.Category
	prompts    []model.Prompt
}

func mustUser(t *testing.T, s repository.Store, name string) model.User {
	t.Helper()
	u := model.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(context.Background(), &u))
	return u
}

func mustCategory(t *testing.T, s repository.Store, slug string) model.Category {
	t.Helper()
	c := model.Category{Name: slug, Slug: slug, Icon: "fas fa-" + slug}
	require.NoError(t, s.Categories().Create(context.Background(), &c))
	return c
}

func mustPrompt(t *testing.T, s repository.Store, p model.Prompt) model.Prompt {
	t.Helper()
	require.NoError(t, s.Prompts().Create(context.Background(), &p))
	return p
}

// seed builds three users, two categories and eight prompts. Two pairs of
// prompts share a creation time so the id tie-break is exercised.
func seed(t *testing.T, s repository.Store) fixture {
	t.Helper()
	f := fixture{
		users: []model.User{
			mustUser(t, s, "ada"), mustUser(t, s, "brian"), mustUser(t, s, "chen"),
		},
		categories: []model.Category{
			mustCategory(t, s, "writing"), mustCategory(t, s, "coding"),
		},
	}

	specs := []struct {
		title, desc        string
		cat, author        int
		featured, trending bool
		isNew              bool
		tags               []string
		minute             int
	}{
		{"Blog Writer", "SEO friendly posts", 0, 0, true, false, false, []string{"SEO", "Blogging"}, 0},
		{"Full-Stack Developer Assistant", "From frontend to backend", 1, 1, true, true, true, []string{"Programming"}, 1},
		{"Email Drafter", "Polite replies", 0, 2, false, true, false, []string{"Email"}, 2},
		{"SQL Tutor", "Explains query plans", 1, 0, false, false, true, []string{"Databases", "StackOverflow"}, 3},
		{"Story Weaver", "Fantasy narratives", 0, 1, true, false, true, nil, 3},
		{"Regex Helper", "Pattern building", 1, 2, false, true, false, []string{"Regex"}, 4},
		{"Resume Polisher", "Career docs", 0, 0, false, false, false, []string{"Career"}, 5},
		{"Code Reviewer", "Finds bugs in diffs", 1, 1, true, true, false, []string{"Review"}, 5},
	}
	for i, sp := range specs {
		f.prompts = append(f.prompts, mustPrompt(t, s, model.Prompt{
			Title:       sp.title,
			Description: sp.desc,
			Content:     fmt.Sprintf("content %d", i),
			Price:       decimal.RequireFromString("9.99"),
			CategoryID:  f.categories[sp.cat].ID,
			AuthorID:    f.users[sp.author].ID,
			Rating:      decimal.RequireFromString("4.50"),
			Featured:    sp.featured,
			Trending:    sp.trending,
			IsNew:       sp.isNew,
			Tags:        sp.tags,
			CreatedAt:   epoch.Add(time.Duration(sp.minute) * time.Minute),
		}))
	}
	return f
}

func promptIDs(prompts []model.Prompt) []int64 {
	out := make([]int64, len(prompts))
	for i, p := range prompts {
		out[i] = p.ID
	}
	return out
}

// =========================================================================
// USERS & CATEGORIES
// =========================================================================

func testUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()

	ada := mustUser(t, s, "ada")
	brian := mustUser(t, s, "brian")
	assert.Equal(t, int64(1), ada.ID)
	assert.Equal(t, int64(2), brian.ID)
	assert.False(t, ada.CreatedAt.IsZero())

	got, err := s.Users().GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(ada.CreatedAt))

	got, err = s.Users().GetByUsername(ctx, "brian")
	require.NoError(t, err)
	assert.Equal(t, brian.ID, got.ID)

	got, err = s.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)

	_, err = s.Users().GetByID(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = s.Users().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	dupName := model.User{Username: "ada", Email: "other@example.com"}
	assert.ErrorIs(t, s.Users().Create(ctx, &dupName), apperror.ErrConflict)
	dupEmail := model.User{Username: "other", Email: "ada@example.com"}
	assert.ErrorIs(t, s.Users().Create(ctx, &dupEmail), apperror.ErrConflict)

	ghID := int64(4242)
	avatar := "https://avatars.example.com/gh.png"
	gh := model.User{Username: "octo", Email: "octo@example.com", GitHubID: &ghID, Avatar: &avatar}
	require.NoError(t, s.Users().Create(ctx, &gh))
	got, err = s.Users().GetByGitHubID(ctx, ghID)
	require.NoError(t, err)
	assert.Equal(t, gh.ID, got.ID)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, avatar, *got.Avatar)
	_, err = s.Users().GetByGitHubID(ctx, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	n, err := s.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testCategories(t *testing.T, s repository.Store) {
	ctx := context.Background()

	desc := "Long-form writing"
	writing := model.Category{Name: "Writing", Slug: "writing", Icon: "fas fa-pen", Description: &desc}
	require.NoError(t, s.Categories().Create(ctx, &writing))
	coding := mustCategory(t, s, "coding")

	got, err := s.Categories().GetBySlug(ctx, "writing")
	require.NoError(t, err)
	assert.Equal(t, writing.ID, got.ID)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)

	got, err = s.Categories().GetByID(ctx, coding.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)

	_, err = s.Categories().GetBySlug(ctx, "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = s.Categories().GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := s.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, writing.ID, list[0].ID)
	assert.Equal(t, coding.ID, list[1].ID)

	n, err := s.Categories().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// =========================================================================
// PROMPTS
// =========================================================================

func testPromptRoundTrip(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "ada")
	cat := mustCategory(t, s, "writing")

	preview := "https://images.example.com/p.png"
	p := mustPrompt(t, s, model.Prompt{
		Title:        "Blog Writer",
		Description:  "SEO posts",
		Content:      "You are a writer...",
		Price:        decimal.RequireFromString("12.99"),
		CategoryID:   cat.ID,
		AuthorID:     author.ID,
		Rating:       decimal.RequireFromString("4.80"),
		SalesCount:   1247,
		Featured:     true,
		Tags:         []string{"SEO", "Content Writing"},
		PreviewImage: &preview,
	})
	assert.Equal(t, int64(1), p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.Prompts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blog Writer", got.Title)
	assert.Equal(t, "You are a writer...", got.Content)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.99")), "price = %s", got.Price)
	assert.True(t, got.Rating.Equal(decimal.RequireFromString("4.8")), "rating = %s", got.Rating)
	assert.Equal(t, 1247, got.SalesCount)
	assert.True(t, got.Featured)
	assert.False(t, got.Trending)
	assert.Equal(t, []string{"SEO", "Content Writing"}, got.Tags)
	require.NotNil(t, got.PreviewImage)
	assert.Equal(t, preview, *got.PreviewImage)
	assert.True(t, got.CreatedAt.Equal(p.CreatedAt))

	noTags := mustPrompt(t, s, model.Prompt{Title: "x", Description: "y", Content: "z", CategoryID: cat.ID, AuthorID: author.ID})
	got, err = s.Prompts().GetByID(ctx, noTags.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)

	_, err = s.Prompts().GetByID(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	n, err := s.Prompts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func testPromptUpdate(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "ada")
	writing := mustCategory(t, s, "writing")
	coding := mustCategory(t, s, "coding")
	p := mustPrompt(t, s, model.Prompt{
		Title: "Old", Description: "d", Content: "c", Price: decimal.RequireFromString("1.00"),
		CategoryID: writing.ID, AuthorID: author.ID, CreatedAt: epoch,
	})

	p.Title = "New"
	p.Price = decimal.RequireFromString("2.50")
	p.CategoryID = coding.ID
	p.Trending = true
	p.Tags = []string{"updated"}
	require.NoError(t, s.Prompts().Update(ctx, &p))

	got, err := s.Prompts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, coding.ID, got.CategoryID)
	assert.True(t, got.Trending)
	assert.Equal(t, []string{"updated"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(epoch), "created_at must not change")

	missing := model.Prompt{ID: 77, Title: "t", CategoryID: writing.ID, AuthorID: author.ID}
	assert.ErrorIs(t, s.Prompts().Update(ctx, &missing), apperror.ErrNotFound)
}

func testPromptReferences(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "ada")
	cat := mustCategory(t, s, "writing")

	badCat := model.Prompt{Title: "t", Description: "d", Content: "c", CategoryID: 99, AuthorID: author.ID}
	assert.ErrorIs(t, s.Prompts().Create(ctx, &badCat), apperror.ErrValidation)

	badAuthor := model.Prompt{Title: "t", Description: "d", Content: "c", CategoryID: cat.ID, AuthorID: 99}
	assert.ErrorIs(t, s.Prompts().Create(ctx, &badAuthor), apperror.ErrValidation)
}

func testCatalogList(t *testing.T, s repository.Store) {
	ctx := context.Background()
	f := seed(t, s)

	all, err := s.Prompts().List(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, all, len(f.prompts))
	// Newest first, equal timestamps broken by higher id.
	assert.Equal(t, []int64{8, 7, 6, 5, 4, 3, 2, 1}, promptIDs(all))

	writing, coding := f.categories[0].ID, f.categories[1].ID
	filters := map[string]catalog.Filter{
		"category":                {CategoryID: &writing},
		"author":                  {AuthorID: &f.users[1].ID},
		"featured":                {Featured: catalog.Ptr(true)},
		"not featured":            {Featured: catalog.Ptr(false)},
		"trending":                {Trending: catalog.Ptr(true)},
		"isNew":                   {IsNew: catalog.Ptr(true)},
		"category and featured":   {CategoryID: &coding, Featured: catalog.Ptr(true)},
		"search title lower":      {Search: "stack"},
		"search title exact case": {Search: "Full-Stack"},
		"search description":      {Search: "QUERY"},
		"search tag":              {Search: "blogging"},
		"search miss":             {Search: "xyz123"},
		"search padded":           {Search: "  regex  "},
		"offset and limit":        {Offset: 2, Limit: catalog.Ptr(3)},
		"limit zero":              {Limit: catalog.Ptr(0)},
		"offset beyond":           {Offset: 50},
		"everything":              {CategoryID: &coding, Trending: catalog.Ptr(true), Search: "e", Offset: 1, Limit: catalog.Ptr(1)},
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			got, err := s.Prompts().List(ctx, filter)
			require.NoError(t, err)
			want := catalog.Apply(all, filter)
			assert.Equal(t, promptIDs(want), promptIDs(got))
		})
	}

	t.Run("search stack hits title and tag", func(t *testing.T) {
		got, err := s.Prompts().List(ctx, catalog.Filter{Search: "stack"})
		require.NoError(t, err)
		assert.Equal(t, []int64{f.prompts[3].ID, f.prompts[1].ID}, promptIDs(got))
	})

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		p := mustPrompt(t, s, model.Prompt{
			Title:       "ÉCOLE Übersetzer",
			Description: "Traduit les cours",
			Content:     "c",
			CategoryID:  writing,
			AuthorID:    f.users[0].ID,
			Tags:        []string{"Straße"},
		})
		for _, term := range []string{"école", "ÜBERSETZER", "STRASSE", "straße"} {
			got, err := s.Prompts().List(ctx, catalog.Filter{Search: term})
			require.NoError(t, err)

			everything, err := s.Prompts().List(ctx, catalog.Filter{})
			require.NoError(t, err)
			assert.Equal(t, promptIDs(catalog.Apply(everything, catalog.Filter{Search: term})), promptIDs(got), term)
		}

		got, err := s.Prompts().List(ctx, catalog.Filter{Search: "école"})
		require.NoError(t, err)
		assert.Equal(t, []int64{p.ID}, promptIDs(got))
	})
}

func testCatalogSearchEscaping(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "ada")
	cat := mustCategory(t, s, "writing")

	percent := mustPrompt(t, s, model.Prompt{Title: "Save 50% on copy", Description: "d", Content: "c", CategoryID: cat.ID, AuthorID: author.ID})
	mustPrompt(t, s, model.Prompt{Title: "Save 500 words", Description: "d", Content: "c", CategoryID: cat.ID, AuthorID: author.ID})
	under := mustPrompt(t, s, model.Prompt{Title: "snake_case namer", Description: "d", Content: "c", CategoryID: cat.ID, AuthorID: author.ID})
	mustPrompt(t, s, model.Prompt{Title: "snakeXcase namer", Description: "d", Content: "c", CategoryID: cat.ID, AuthorID: author.ID})

	got, err := s.Prompts().List(ctx, catalog.Filter{Search: "50%"})
	require.NoError(t, err)
	assert.Equal(t, []int64{percent.ID}, promptIDs(got))

	got, err = s.Prompts().List(ctx, catalog.Filter{Search: "snake_case"})
	require.NoError(t, err)
	assert.Equal(t, []int64{under.ID}, promptIDs(got))
}

// =========================================================================
// MEMBERSHIPS
// =========================================================================

func testMembership(t *testing.T, s repository.Store, rel repository.MembershipRepository) {
	ctx := context.Background()
	f := seed(t, s)
	u, other := f.users[0].ID, f.users[1].ID
	p1, p2, p3 := f.prompts[0].ID, f.prompts[1].ID, f.prompts[2].ID

	m, err := rel.Add(ctx, u, p2)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, u, m.UserID)
	assert.Equal(t, p2, m.PromptID)
	assert.False(t, m.CreatedAt.IsZero())

	_, err = rel.Add(ctx, u, p2)
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	_, err = rel.Add(ctx, u, p1)
	require.NoError(t, err)
	_, err = rel.Add(ctx, u, p3)
	require.NoError(t, err)
	_, err = rel.Add(ctx, other, p2)
	require.NoError(t, err, "another user may hold the same prompt")

	list, err := rel.ListByUser(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{p2, p1, p3}, []int64{list[0].PromptID, list[1].PromptID, list[2].PromptID}, "insertion order")

	ok, err := rel.Exists(ctx, u, p1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, rel.Remove(ctx, u, p1))
	ok, err = rel.Exists(ctx, u, p1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, rel.Remove(ctx, u, p1), apperror.ErrNotFound)

	// Removed pairs can be added again.
	_, err = rel.Add(ctx, u, p1)
	require.NoError(t, err)

	_, err = rel.Add(ctx, u, 999)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	n, err := rel.ClearByUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err = rel.ListByUser(ctx, u)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	n, err = rel.ClearByUser(ctx, u)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err = rel.ListByUser(ctx, other)
	require.NoError(t, err)
	assert.Len(t, list, 1, "clearing one user leaves the others alone")
}

func testMembershipRace(t *testing.T, s repository.Store) {
	ctx := context.Background()
	f := seed(t, s)
	u, p := f.users[0].ID, f.prompts[0].ID

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
		others    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Cart().Add(ctx, u, p)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperror.ErrDuplicate):
				dupes++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, dupes)

	list, err := s.Cart().ListByUser(ctx, u)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testRelationsIndependent(t *testing.T, s repository.Store) {
	ctx := context.Background()
	f := seed(t, s)
	u, p := f.users[0].ID, f.prompts[0].ID

	_, err := s.Favorites().Add(ctx, u, p)
	require.NoError(t, err)
	_, err = s.Cart().Add(ctx, u, p)
	require.NoError(t, err, "a favorite does not block adding to the cart")

	_, err = s.Cart().ClearByUser(ctx, u)
	require.NoError(t, err)

	ok, err := s.Favorites().Exists(ctx, u, p)
	require.NoError(t, err)
	assert.True(t, ok, "clearing the cart keeps favorites")
}

// =========================================================================
// LEDGERS
// =========================================================================

func testReviews(t *testing.T, s repository.Store) {
	ctx := context.Background()
	f := seed(t, s)
	p := f.prompts[0].ID

	comment := "Great"
	for i, rating := range []int{5, 3, 4} {
		r := model.Review{PromptID: p, UserID: f.users[i%2].ID, Rating: rating}
		if i == 0 {
			r.Comment = &comment
		}
		require.NoError(t, s.Reviews().Create(ctx, &r))
		assert.NotZero(t, r.ID)
	}

	list, err := s.Reviews().ListByPrompt(ctx, p)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{5, 3, 4}, []int{list[0].Rating, list[1].Rating, list[2].Rating})
	require.NotNil(t, list[0].Comment)
	assert.Equal(t, "Great", *list[0].Comment)
	assert.Nil(t, list[1].Comment)

	n, err := s.Reviews().CountByPrompt(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Reviews().CountByPrompt(ctx, f.prompts[1].ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err = s.Reviews().ListByPrompt(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testPurchases(t *testing.T, s repository.Store) {
	ctx := context.Background()
	f := seed(t, s)

	total, err := s.Purchases().TotalEarnings(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	for _, p := range []struct {
		user   int
		prompt int
		price  string
	}{
		{0, 0, "12.99"}, {0, 1, "8.50"}, {1, 0, "0.01"},
	} {
		purchase := model.Purchase{
			UserID:   f.users[p.user].ID,
			PromptID: f.prompts[p.prompt].ID,
			Price:    decimal.RequireFromString(p.price),
		}
		require.NoError(t, s.Purchases().Create(ctx, &purchase))
		assert.NotZero(t, purchase.ID)
	}

	list, err := s.Purchases().ListByUser(ctx, f.users[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, f.prompts[0].ID, list[0].PromptID)
	assert.True(t, list[1].Price.Equal(decimal.RequireFromString("8.5")))

	total, err = s.Purchases().TotalEarnings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "21.50", total.StringFixed(2))
}
