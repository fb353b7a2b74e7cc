package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
)

var _ repository.MembershipRepository = membershipRepo{}

// membershipRepo serves both favorites and cart_items; the two tables have the
// same shape. table is always one of those two constants, never user input.
type membershipRepo struct {
	conn  *sql.DB
	table string
	name  string
}

// Add is a single INSERT with no SELECT first: the
// UNIQUE(user_id, prompt_id) constraint is what rejects the second of two
// racing requests.
func (r membershipRepo) Add(ctx context.Context, userID, promptID int64) (*model.Membership, error) {
	m := model.Membership{
		UserID:    userID,
		PromptID:  promptID,
		CreatedAt: repository.Timestamp(time.Time{}),
	}

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO `+r.table+` (user_id, prompt_id, created_at) VALUES (?, ?, ?)`,
		m.UserID, m.PromptID, m.CreatedAt,
	)
	if err != nil {
		switch classify(err) {
		case constraintUnique:
			return nil, apperror.Duplicate(r.name + " already exists")
		case constraintForeignKey:
			return nil, danglingReference("promptId")
		}
		return nil, fmt.Errorf("sqlite: adding %s: %w", r.name, err)
	}

	m.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading %s id: %w", r.name, err)
	}
	return &m, nil
}

func (r membershipRepo) Remove(ctx context.Context, userID, promptID int64) error {
	res, err := r.conn.ExecContext(ctx,
		`DELETE FROM `+r.table+` WHERE user_id = ? AND prompt_id = ?`,
		userID, promptID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s: %w", r.name, err)
	}
	return rowsChanged(res, func() error { return apperror.NotFoundMessage(r.name + " not found") })
}

func (r membershipRepo) Exists(ctx context.Context, userID, promptID int64) (bool, error) {
	var exists bool
	err := r.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.table+` WHERE user_id = ? AND prompt_id = ?)`,
		userID, promptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s: %w", r.name, err)
	}
	return exists, nil
}

func (r membershipRepo) ListByUser(ctx context.Context, userID int64) ([]model.Membership, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, prompt_id, created_at FROM `+r.table+` WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s rows: %w", r.name, err)
	}
	defer rows.Close()

	out := []model.Membership{}
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.PromptID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", r.name, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s rows: %w", r.name, err)
	}
	return out, nil
}

// ClearByUser is one DELETE, so a concurrent reader sees either the full set or
// none of it.
func (r membershipRepo) ClearByUser(ctx context.Context, userID int64) (int, error) {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: clearing %s rows: %w", r.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return int(n), nil
}
