package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var _ repository.PromptRepository = promptRepo{}

type promptRepo struct {
	conn *sql.DB
}

const promptColumns = `id, title, description, content, price, category_id, author_id,
	rating, sales_count, featured, trending, is_new, tags, preview_image, created_at`

func (r promptRepo) Create(ctx context.Context, p *model.Prompt) error {
	p.CreatedAt = repository.Timestamp(p.CreatedAt)
	p.Tags = repository.Tags(p.Tags)

	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO prompts (title, description, content, price, category_id, author_id,
			rating, sales_count, featured, trending, is_new, tags, preview_image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, p.Content, p.Price, p.CategoryID, p.AuthorID,
		p.Rating, p.SalesCount, p.Featured, p.Trending, p.IsNew, string(tags),
		p.PreviewImage, p.CreatedAt,
	)
	if err != nil {
		if classify(err) == constraintForeignKey {
			return danglingReference("categoryId")
		}
		return fmt.Errorf("sqlite: creating prompt: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading prompt id: %w", err)
	}
	return nil
}

// Update leaves author_id and created_at alone and reloads them into p so the
// caller sees the stored row.
func (r promptRepo) Update(ctx context.Context, p *model.Prompt) error {
	p.Tags = repository.Tags(p.Tags)
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}

	res, err := r.conn.ExecContext(ctx,
		`UPDATE prompts
		 SET title = ?, description = ?, content = ?, price = ?, category_id = ?,
		     rating = ?, sales_count = ?, featured = ?, trending = ?, is_new = ?,
		     tags = ?, preview_image = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.Content, p.Price, p.CategoryID,
		p.Rating, p.SalesCount, p.Featured, p.Trending, p.IsNew,
		string(tags), p.PreviewImage,
		p.ID,
	)
	if err != nil {
		if classify(err) == constraintForeignKey {
			return danglingReference("categoryId")
		}
		return fmt.Errorf("sqlite: updating prompt %d: %w", p.ID, err)
	}
	if err := rowsChanged(res, func() error { return apperror.NotFound("prompt", p.ID) }); err != nil {
		return err
	}

	stored, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.AuthorID = stored.AuthorID
	p.CreatedAt = stored.CreatedAt
	return nil
}

func (r promptRepo) GetByID(ctx context.Context, id int64) (*model.Prompt, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = ?`, id)
	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("prompt", id)
		}
		return nil, fmt.Errorf("sqlite: getting prompt %d: %w", id, err)
	}
	return p, nil
}

// List compiles the filter into one SELECT. The predicate, order and paging
// must stay equivalent to catalog.Apply; storetest checks that they do.
func (r promptRepo) List(ctx context.Context, f catalog.Filter) ([]model.Prompt, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	query, args := buildListQuery(f)
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing prompts: %w", err)
	}
	defer rows.Close()

	prompts := []model.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning prompt row: %w", err)
		}
		prompts = append(prompts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating prompts: %w", err)
	}
	return prompts, nil
}

func buildListQuery(f catalog.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.AuthorID != nil {
		where = append(where, "author_id = ?")
		args = append(args, *f.AuthorID)
	}
	if f.Featured != nil {
		where = append(where, "featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Trending != nil {
		where = append(where, "trending = ?")
		args = append(args, *f.Trending)
	}
	if f.IsNew != nil {
		where = append(where, "is_new = ?")
		args = append(args, *f.IsNew)
	}
	if term := f.NormalizedSearch(); term != "" {
		pattern := "%" + catalog.EscapeLike(term) + "%"
		where = append(where, `(`+foldFunc+`(title) LIKE ? ESCAPE '\'
			OR `+foldFunc+`(description) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(prompts.tags) WHERE `+foldFunc+`(json_each.value) LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + promptColumns + ` FROM prompts`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	// SQLite needs a LIMIT before OFFSET; -1 means no limit.
	limit := -1
	if f.Limit != nil {
		limit = *f.Limit
	}
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, f.Offset)

	return b.String(), args
}

func (r promptRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.conn, "prompts")
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*model.Prompt, error) {
	var (
		p    model.Prompt
		tags string
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Content, &p.Price, &p.CategoryID, &p.AuthorID,
		&p.Rating, &p.SalesCount, &p.Featured, &p.Trending, &p.IsNew, &tags, &p.PreviewImage,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of prompt %d: %w", p.ID, err)
	}
	p.Tags = repository.Tags(p.Tags)
	return &p, nil
}
