// Package seed loads the marketplace's reference data: six categories, three
// demo sellers and one prompt per category.
//
// Run is idempotent at the store level: a store that already has categories
// is left untouched, so `server seed` and `seed_on_start: true` can run on
// every boot.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Hasher hashes the demo password; auth.PasswordService satisfies it.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Result reports what Run inserted.
type Result struct {
	Categories int
	Users      int
	Prompts    int
	Skipped    bool
}

type categorySpec struct {
	name, slug, icon, description string
}

var categories = []categorySpec{
	{"Writing", "writing", "fas fa-pen-fancy", "Creative writing and content prompts"},
	{"Art & Design", "art-design", "fas fa-palette", "Visual art and design prompts"},
	{"Coding", "coding", "fas fa-code", "Programming and development prompts"},
	{"Business", "business", "fas fa-chart-line", "Business and marketing prompts"},
	{"Education", "education", "fas fa-graduation-cap", "Educational and learning prompts"},
	{"Gaming", "gaming", "fas fa-gamepad", "Game development and gaming prompts"},
}

var users = []struct{ username, email string }{
	{"sarah_chen", "sarah@example.com"},
	{"alex_rivera", "alex@example.com"},
	{"mike_johnson", "mike@example.com"},
}

type promptSpec struct {
	title, description, content string
	price, rating               string
	category, author            int // indexes into categories / users
	sales                       int
	featured, trending, isNew   bool
	tags                        []string
	image                       string
}

var prompts = []promptSpec{
	{
		title:       "Master Blog Writer - SEO Optimized Content",
		description: "Create engaging, SEO-optimized blog posts that rank high on Google. Perfect for content marketers and bloggers.",
		content:     "Write a comprehensive blog post about [TOPIC] that is optimized for SEO. Include relevant keywords, engaging headlines, and actionable content that provides value to readers...",
		price:       "12.99", rating: "4.9", category: 0, author: 0, sales: 847,
		featured: true,
		tags:     []string{"SEO", "Content Marketing", "Blogging"},
		image:    "https://images.unsplash.com/photo-1611224923853-80b023f02d71?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250",
	},
	{
		title:       "Midjourney Art Master - Photorealistic Portraits",
		description: "Generate stunning photorealistic portraits with perfect lighting and composition. Ideal for artists and designers.",
		content:     "Create a photorealistic portrait of [SUBJECT] with professional lighting, detailed facial features, and artistic composition...",
		price:       "18.99", rating: "4.7", category: 1, author: 1, sales: 523,
		featured: true, trending: true,
		tags:  []string{"Midjourney", "Portraits", "Digital Art"},
		image: "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250",
	},
	{
		title:       "Full-Stack Developer Assistant",
		description: "Complete coding solutions from frontend to backend. Perfect for developers at all levels.",
		content:     "Act as a senior full-stack developer and help create a [PROJECT TYPE] application with [TECHNOLOGIES]...",
		price:       "24.99", rating: "5.0", category: 2, author: 2, sales: 291,
		featured: true, isNew: true,
		tags:  []string{"Full-Stack", "Development", "Programming"},
		image: "https://images.unsplash.com/photo-1555949963-aa79dcee981c?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250",
	},
	{
		title:       "Social Media Marketing Guru",
		description: "Create viral social media content that drives engagement and converts followers to customers.",
		content:     "Develop a comprehensive social media strategy for [PLATFORM] focusing on [NICHE]. Include content ideas, posting schedule, and engagement tactics...",
		price:       "15.99", rating: "4.8", category: 3, author: 0, sales: 642,
		trending: true,
		tags:     []string{"Social Media", "Marketing", "Engagement"},
		image:    "https://images.unsplash.com/photo-1611262588024-d12430b98920?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250",
	},
	{
		title:       "Interactive Learning Designer",
		description: "Design engaging educational content that makes complex topics easy to understand and remember.",
		content:     "Create an interactive learning module about [SUBJECT] that includes visual aids, quizzes, and hands-on activities...",
		price:       "19.99", rating: "4.6", category: 4, author: 1, sales: 356,
		isNew: true,
		tags:  []string{"Education", "Interactive", "Learning"},
		image: "https://images.unsplash.com/photo-1503676260728-1c00da094a0b?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250",
	},
	{
		title:       "Game Narrative Architect",
		description: "Craft compelling storylines and character development for immersive gaming experiences.",
		content:     "Develop a complete narrative structure for a [GAME GENRE] game including main story arc, character backstories, and dialogue systems...",
		price:       "22.99", rating: "4.9", category: 5, author: 2, sales: 189,
		trending: true, isNew: true,
		tags:  []string{"Game Design", "Storytelling", "Characters"},
		image: "https://images.unsplash.com/photo-1538481199705-c710c4e965fc?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=250",
	},
}

// Run inserts the reference data unless the store already has categories.
// Prompts get creation times one minute apart, so the catalog lists the last
// one first.
func Run(ctx context.Context, store repository.Store, hasher Hasher, logger *slog.Logger) (*Result, error) {
	n, err := store.Categories().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed: counting categories: %w", err)
	}
	if n > 0 {
		logger.Info("store already seeded, skipping", slog.Int("categories", n))
		return &Result{Skipped: true}, nil
	}

	var res Result

	categoryIDs := make([]int64, len(categories))
	for i, c := range categories {
		description := c.description
		cat := &model.Category{Name: c.name, Slug: c.slug, Icon: c.icon, Description: &description}
		if err := store.Categories().Create(ctx, cat); err != nil {
			return nil, fmt.Errorf("seed: category %q: %w", c.slug, err)
		}
		categoryIDs[i] = cat.ID
		res.Categories++
	}

	hash, err := hasher.Hash(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: hashing demo password: %w", err)
	}
	userIDs := make([]int64, len(users))
	for i, u := range users {
		user := &model.User{Username: u.username, Email: u.email, PasswordHash: hash}
		if err := store.Users().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("seed: user %q: %w", u.username, err)
		}
		userIDs[i] = user.ID
		res.Users++
	}

	base := time.Now().UTC().Add(-time.Duration(len(prompts)) * time.Minute)
	for i, p := range prompts {
		image := p.image
		prompt := &model.Prompt{
			Title:        p.title,
			Description:  p.description,
			Content:      p.content,
			Price:        decimal.RequireFromString(p.price),
			CategoryID:   categoryIDs[p.category],
			AuthorID:     userIDs[p.author],
			Rating:       decimal.RequireFromString(p.rating),
			SalesCount:   p.sales,
			Featured:     p.featured,
			Trending:     p.trending,
			IsNew:        p.isNew,
			Tags:         p.tags,
			PreviewImage: &image,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Prompts().Create(ctx, prompt); err != nil {
			return nil, fmt.Errorf("seed: prompt %q: %w", p.title, err)
		}
		res.Prompts++
	}

	logger.Info("store seeded",
		slog.Int("categories", res.Categories),
		slog.Int("users", res.Users),
		slog.Int("prompts", res.Prompts),
	)
	return &res, nil
}
