package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/prompt-market/internal/catalog"
	"github.com/sakif/prompt-market/internal/model"
	"github.com/sakif/prompt-market/internal/repository"
	"github.com/sakif/prompt-market/internal/repository/storetest"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// =========================================================================
// CONFORMANCE
// =========================================================================

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store { return newTestDB(t) })
}

// The file-backed pool has several connections; the suite must hold there too,
// in particular foreign keys and the membership race.
func TestConformance_File(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		db, err := New(filepath.Join(t.TempDir(), "market.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	})
}

// =========================================================================
// MIGRATIONS
// =========================================================================

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.db")

	db, err := New(path)
	require.NoError(t, err)
	u := model.User{Username: "ada", Email: "ada@example.com"}
	require.NoError(t, db.Users().Create(context.Background(), &u))
	require.NoError(t, db.Close())

	// Reopening runs every migration again against the existing schema.
	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Users().GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestMigrate_GitHubColumn(t *testing.T) {
	db := newTestDB(t)

	var n int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = 'github_id'`,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A second call is a no-op.
	require.NoError(t, db.addColumnIfNotExists("users", "github_id", "INTEGER"))
}

// =========================================================================
// QUERY BUILDER
// =========================================================================

func TestBuildListQuery(t *testing.T) {
	t.Run("no filter pages without limit", func(t *testing.T) {
		q, args := buildListQuery(catalog.Filter{})
		assert.NotContains(t, q, "WHERE")
		assert.Contains(t, q, "ORDER BY created_at DESC, id DESC")
		assert.Equal(t, []any{-1, 0}, args)
	})

	t.Run("predicates are joined with AND", func(t *testing.T) {
		cat := int64(3)
		q, args := buildListQuery(catalog.Filter{
			CategoryID: &cat,
			Featured:   catalog.Ptr(true),
			Limit:      catalog.Ptr(5),
			Offset:     10,
		})
		assert.Contains(t, q, "category_id = ? AND featured = ?")
		assert.NotContains(t, q, " OR category_id")
		assert.Equal(t, []any{int64(3), true, 5, 10}, args)
	})

	t.Run("search folds with the Go function, not LOWER", func(t *testing.T) {
		q, _ := buildListQuery(catalog.Filter{Search: "école"})
		assert.Equal(t, 3, strings.Count(q, foldFunc+"("))
		assert.NotContains(t, q, "LOWER(")
	})

	t.Run("search binds one escaped pattern three times", func(t *testing.T) {
		q, args := buildListQuery(catalog.Filter{Search: " 100%_Off "})
		assert.Equal(t, 3, strings.Count(q, `ESCAPE '\'`))
		assert.Contains(t, q, "json_each(prompts.tags)")
		want := `%100\%\_off%`
		assert.Equal(t, []any{want, want, want, -1, 0}, args)
	})
}

func TestList_RejectsNegativePaging(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Prompts().List(context.Background(), catalog.Filter{Offset: -1})
	assert.Error(t, err)
}

func TestFoldFunction(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		in   any
		want any
	}{
		{"ÉCOLE Übersetzer", "école übersetzer"},
		{"ΣΟΦΙΑ", "σοφια"},
		{"plain ascii", "plain ascii"},
		{nil, nil},
	}
	for _, tt := range tests {
		var got any
		err := db.conn.QueryRowContext(context.Background(), "SELECT "+foldFunc+"(?)", tt.in).Scan(&got)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "fold(%v)", tt.in)
	}
}
