package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var (
	_ repository.UserRepository       = userRepo{}
	_ repository.CategoryRepository   = categoryRepo{}
	_ repository.PromptRepository     = promptRepo{}
	_ repository.MembershipRepository = membershipRepo{}
	_ repository.ReviewRepository     = reviewRepo{}
	_ repository.PurchaseRepository   = purchaseRepo{}
)

func count(ctx context.Context, pool *pgxpool.Pool, table string) (int, error) {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting %s: %w", table, err)
	}
	return n, nil
}

// =========================================================================
// USERS
// =========================================================================

type userRepo struct{ pool *pgxpool.Pool }

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	u.CreatedAt = repository.Timestamp(u.CreatedAt)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, github_id, avatar, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.GitHubID, u.Avatar, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if sqlState(err) == uniqueViolation {
			return apperror.Conflict("username", "Username or email already exists")
		}
		return fmt.Errorf("postgres: creating user %q: %w", u.Username, err)
	}
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `id = $1`, id, apperror.NotFound("user", id))
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `username = $1`, username, apperror.NotFoundMessage("user not found: "+username))
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `email = $1`, email, apperror.NotFoundMessage("user not found: "+email))
}

func (r userRepo) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return r.getOne(ctx, `github_id = $1`, githubID, apperror.NotFoundMessage("user not found for GitHub account"))
}

func (r userRepo) getOne(ctx context.Context, where string, arg any, notFound error) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, github_id, avatar, created_at
		 FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GitHubID, &u.Avatar, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("postgres: getting user (%s): %w", where, err)
	}
	return &u, nil
}

func (r userRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "users")
}

// =========================================================================
// CATEGORIES
// =========================================================================

type categoryRepo struct{ pool *pgxpool.Pool }

func (r categoryRepo) Create(ctx context.Context, c *model.Category) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug, icon, description) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Slug, c.Icon, c.Description,
	).Scan(&c.ID)
	if err != nil {
		if sqlState(err) == uniqueViolation {
			return apperror.Conflict("slug", "Category slug already exists")
		}
		return fmt.Errorf("postgres: creating category %q: %w", c.Slug, err)
	}
	return nil
}

func (r categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.getOne(ctx, `id = $1`, id, apperror.NotFound("category", id))
}

func (r categoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.getOne(ctx, `slug = $1`, slug, apperror.NotFoundMessage("Category not found"))
}

func (r categoryRepo) getOne(ctx context.Context, where string, arg any, notFound error) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, icon, description FROM categories WHERE `+where, arg,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("postgres: getting category (%s): %w", where, err)
	}
	return &c, nil
}

func (r categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, icon, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Description); err != nil {
			return nil, fmt.Errorf("postgres: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r categoryRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "categories")
}

// =========================================================================
// PROMPTS
// =========================================================================

type promptRepo struct{ pool *pgxpool.Pool }

// Decimals travel as text both ways; the ::numeric / ::text casts keep the
// exact value without a custom pgx type.
const promptColumns = `id, title, description, content, price::text, category_id, author_id,
	rating::text, sales_count, featured, trending, is_new, tags, preview_image, created_at`

func (r promptRepo) Create(ctx context.Context, p *model.Prompt) error {
	p.CreatedAt = repository.Timestamp(p.CreatedAt)
	p.Tags = repository.Tags(p.Tags)

	err := r.pool.QueryRow(ctx,
		`INSERT INTO prompts (title, description, content, price, category_id, author_id,
			rating, sales_count, featured, trending, is_new, tags, preview_image, created_at)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		p.Title, p.Description, p.Content, p.Price.String(), p.CategoryID, p.AuthorID,
		p.Rating.String(), p.SalesCount, p.Featured, p.Trending, p.IsNew, p.Tags,
		p.PreviewImage, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if sqlState(err) == foreignKeyViolation {
			return danglingReference("categoryId")
		}
		return fmt.Errorf("postgres: creating prompt: %w", err)
	}
	return nil
}

func (r promptRepo) Update(ctx context.Context, p *model.Prompt) error {
	p.Tags = repository.Tags(p.Tags)

	err := r.pool.QueryRow(ctx,
		`UPDATE prompts
		 SET title = $1, description = $2, content = $3, price = $4::numeric, category_id = $5,
		     rating = $6::numeric, sales_count = $7, featured = $8, trending = $9, is_new = $10,
		     tags = $11, preview_image = $12
		 WHERE id = $13
		 RETURNING author_id, created_at`,
		p.Title, p.Description, p.Content, p.Price.String(), p.CategoryID,
		p.Rating.String(), p.SalesCount, p.Featured, p.Trending, p.IsNew,
		p.Tags, p.PreviewImage, p.ID,
	).Scan(&p.AuthorID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("prompt", p.ID)
		}
		if sqlState(err) == foreignKeyViolation {
			return danglingReference("categoryId")
		}
		return fmt.Errorf("postgres: updating prompt %d: %w", p.ID, err)
	}
	return nil
}

func (r promptRepo) GetByID(ctx context.Context, id int64) (*model.Prompt, error) {
	p, err := scanPrompt(r.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("prompt", id)
		}
		return nil, fmt.Errorf("postgres: getting prompt %d: %w", id, err)
	}
	return p, nil
}

func (r promptRepo) List(ctx context.Context, f catalog.Filter) ([]model.Prompt, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	query, args := buildListQuery(f)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing prompts: %w", err)
	}
	defer rows.Close()

	prompts := []model.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning prompt row: %w", err)
		}
		prompts = append(prompts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating prompts: %w", err)
	}
	return prompts, nil
}

// buildListQuery numbers placeholders as it goes. The search pattern is bound
// once and referenced three times.
func buildListQuery(f catalog.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != nil {
		where = append(where, "category_id = "+bind(*f.CategoryID))
	}
	if f.AuthorID != nil {
		where = append(where, "author_id = "+bind(*f.AuthorID))
	}
	if f.Featured != nil {
		where = append(where, "featured = "+bind(*f.Featured))
	}
	if f.Trending != nil {
		where = append(where, "trending = "+bind(*f.Trending))
	}
	if f.IsNew != nil {
		where = append(where, "is_new = "+bind(*f.IsNew))
	}
	if term := f.NormalizedSearch(); term != "" {
		p := bind("%" + catalog.EscapeLike(term) + "%")
		where = append(where, fmt.Sprintf(`(title ILIKE %[1]s ESCAPE '\'
			OR description ILIKE %[1]s ESCAPE '\'
			OR EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE t.tag ILIKE %[1]s ESCAPE '\'))`, p))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + promptColumns + ` FROM prompts`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	// A nil Limit binds NULL, and LIMIT NULL is LIMIT ALL.
	b.WriteString(" LIMIT " + bind(f.Limit) + " OFFSET " + bind(f.Offset))

	return b.String(), args
}

func (r promptRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "prompts")
}

func scanPrompt(row pgx.Row) (*model.Prompt, error) {
	var p model.Prompt
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Content, &p.Price, &p.CategoryID, &p.AuthorID,
		&p.Rating, &p.SalesCount, &p.Featured, &p.Trending, &p.IsNew, &p.Tags, &p.PreviewImage,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Tags = repository.Tags(p.Tags)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// =========================================================================
// MEMBERSHIPS
// =========================================================================

// membershipRepo serves favorites and cart_items. table is one of those two
// constants, never user input.
type membershipRepo struct {
	pool  *pgxpool.Pool
	table string
	name  string
}

func (r membershipRepo) Add(ctx context.Context, userID, promptID int64) (*model.Membership, error) {
	m := model.Membership{UserID: userID, PromptID: promptID, CreatedAt: repository.Timestamp(time.Time{})}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO `+r.table+` (user_id, prompt_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		m.UserID, m.PromptID, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		switch sqlState(err) {
		case uniqueViolation:
			return nil, apperror.Duplicate(r.name + " already exists")
		case foreignKeyViolation:
			return nil, danglingReference("promptId")
		}
		return nil, fmt.Errorf("postgres: adding %s: %w", r.name, err)
	}
	return &m, nil
}

func (r membershipRepo) Remove(ctx context.Context, userID, promptID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM `+r.table+` WHERE user_id = $1 AND prompt_id = $2`, userID, promptID)
	if err != nil {
		return fmt.Errorf("postgres: removing %s: %w", r.name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundMessage(r.name + " not found")
	}
	return nil
}

func (r membershipRepo) Exists(ctx context.Context, userID, promptID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.table+` WHERE user_id = $1 AND prompt_id = $2)`,
		userID, promptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: checking %s: %w", r.name, err)
	}
	return exists, nil
}

func (r membershipRepo) ListByUser(ctx context.Context, userID int64) ([]model.Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, prompt_id, created_at FROM `+r.table+` WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing %s rows: %w", r.name, err)
	}
	defer rows.Close()

	out := []model.Membership{}
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.PromptID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning %s row: %w", r.name, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r membershipRepo) ClearByUser(ctx context.Context, userID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+r.table+` WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("postgres: clearing %s rows: %w", r.name, err)
	}
	return int(tag.RowsAffected()), nil
}

// =========================================================================
// REVIEWS
// =========================================================================

type reviewRepo struct{ pool *pgxpool.Pool }

func (r reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	rv.CreatedAt = repository.Timestamp(rv.CreatedAt)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reviews (prompt_id, user_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rv.PromptID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt,
	).Scan(&rv.ID)
	if err != nil {
		if sqlState(err) == foreignKeyViolation {
			return danglingReference("promptId")
		}
		return fmt.Errorf("postgres: creating review for prompt %d: %w", rv.PromptID, err)
	}
	return nil
}

func (r reviewRepo) ListByPrompt(ctx context.Context, promptID int64) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, prompt_id, user_id, rating, comment, created_at
		 FROM reviews WHERE prompt_id = $1 ORDER BY id`, promptID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing reviews of prompt %d: %w", promptID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.PromptID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r reviewRepo) CountByPrompt(ctx context.Context, promptID int64) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE prompt_id = $1`, promptID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting reviews of prompt %d: %w", promptID, err)
	}
	return n, nil
}

// =========================================================================
// PURCHASES
// =========================================================================

type purchaseRepo struct{ pool *pgxpool.Pool }

func (r purchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	p.CreatedAt = repository.Timestamp(p.CreatedAt)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO purchases (user_id, prompt_id, price, created_at)
		 VALUES ($1, $2, $3::numeric, $4) RETURNING id`,
		p.UserID, p.PromptID, p.Price.String(), p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if sqlState(err) == foreignKeyViolation {
			return danglingReference("promptId")
		}
		return fmt.Errorf("postgres: creating purchase: %w", err)
	}
	return nil
}

func (r purchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, prompt_id, price::text, created_at
		 FROM purchases WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing purchases of user %d: %w", userID, err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.PromptID, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r purchaseRepo) TotalEarnings(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(price), 0)::text FROM purchases`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("postgres: summing purchases: %w", err)
	}
	return total, nil
}
