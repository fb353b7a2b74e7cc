package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var (
	_ repository.ReviewRepository   = reviewRepo{}
	_ repository.PurchaseRepository = purchaseRepo{}
)

// =========================================================================
// REVIEWS
// =========================================================================

type reviewRepo struct {
	conn *sql.DB
}

func (r reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	rv.CreatedAt = repository.Timestamp(rv.CreatedAt)

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO reviews (prompt_id, user_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?)`,
		rv.PromptID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		if classify(err) == constraintForeignKey {
			return danglingReference("promptId")
		}
		return fmt.Errorf("sqlite: creating review for prompt %d: %w", rv.PromptID, err)
	}
	rv.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading review id: %w", err)
	}
	return nil
}

func (r reviewRepo) ListByPrompt(ctx context.Context, promptID int64) ([]model.Review, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, prompt_id, user_id, rating, comment, created_at
		 FROM reviews WHERE prompt_id = ? ORDER BY id`,
		promptID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews of prompt %d: %w", promptID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.PromptID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}
	return reviews, nil
}

func (r reviewRepo) CountByPrompt(ctx context.Context, promptID int64) (int, error) {
	var n int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE prompt_id = ?`, promptID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting reviews of prompt %d: %w", promptID, err)
	}
	return n, nil
}

// =========================================================================
// PURCHASES
// =========================================================================

type purchaseRepo struct {
	conn *sql.DB
}

func (r purchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	p.CreatedAt = repository.Timestamp(p.CreatedAt)

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO purchases (user_id, prompt_id, price, created_at) VALUES (?, ?, ?, ?)`,
		p.UserID, p.PromptID, p.Price, p.CreatedAt,
	)
	if err != nil {
		if classify(err) == constraintForeignKey {
			return danglingReference("promptId")
		}
		return fmt.Errorf("sqlite: creating purchase: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading purchase id: %w", err)
	}
	return nil
}

func (r purchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, prompt_id, price, created_at FROM purchases WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing purchases of user %d: %w", userID, err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.PromptID, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating purchases: %w", err)
	}
	return purchases, nil
}

// TotalEarnings adds the prices in Go. SQLite's SUM would go through REAL and
// lose cents.
func (r purchaseRepo) TotalEarnings(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT price FROM purchases`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sqlite: summing purchases: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var price decimal.Decimal
		if err := rows.Scan(&price); err != nil {
			return decimal.Zero, fmt.Errorf("sqlite: scanning purchase price: %w", err)
		}
		total = total.Add(price)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("sqlite: iterating purchase prices: %w", err)
	}
	return total, nil
}
