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

var _ repository.UserRepository = userRepo{}

type userRepo struct {
	conn *sql.DB
}

const userColumns = `id, username, email, password_hash, github_id, avatar, created_at`

// Create inserts a user. The UNIQUE columns (username, email, github_id) decide
// conflicts; the service looks them up first only to produce a precise message.
func (r userRepo) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = repository.Timestamp(user.CreatedAt)

	res, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, github_id, avatar, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		user.Avatar,
		user.CreatedAt,
	)
	if err != nil {
		if classify(err) == constraintUnique {
			return apperror.Conflict("username", "Username or email already exists")
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := r.getOne(ctx, `WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	return u, err
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := r.getOne(ctx, `WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundMessage("user not found: " + username)
	}
	return u, err
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := r.getOne(ctx, `WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundMessage("user not found: " + email)
	}
	return u, err
}

func (r userRepo) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	u, err := r.getOne(ctx, `WHERE github_id = ?`, githubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundMessage("user not found for GitHub account")
	}
	return u, err
}

// getOne returns sql.ErrNoRows untouched so each caller can phrase its own
// not-found error.
func (r userRepo) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.GitHubID,
		&u.Avatar,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: getting user (%s): %w", where, err)
	}
	return &u, nil
}

func (r userRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.conn, "users")
}

// count runs SELECT COUNT(*) on a fixed table name.
func count(ctx context.Context, conn *sql.DB, table string) (int, error) {
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting %s: %w", table, err)
	}
	return n, nil
}
