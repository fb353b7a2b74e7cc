package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var _ repository.CategoryRepository = categoryRepo{}

type categoryRepo struct {
	conn *sql.DB
}

func (r categoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO categories (name, slug, icon, description) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.Icon, c.Description,
	)
	if err != nil {
		if classify(err) == constraintUnique {
			return apperror.Conflict("slug", "Category slug already exists")
		}
		return fmt.Errorf("sqlite: creating category %q: %w", c.Slug, err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading category id: %w", err)
	}
	return nil
}

func (r categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, slug, icon, description FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %d: %w", id, err)
	}
	return &c, nil
}

func (r categoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, slug, icon, description FROM categories WHERE slug = ?`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("Category not found")
		}
		return nil, fmt.Errorf("sqlite: getting category %q: %w", slug, err)
	}
	return &c, nil
}

func (r categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, name, slug, icon, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Description); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}

func (r categoryRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.conn, "categories")
}
