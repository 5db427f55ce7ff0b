package database

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocloud.dev/postgres"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}

	assert.Equal(t, ups, downs)
}

// testDatabase opens TEST_DATABASE_URL or skips the test.
func testDatabase(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := postgres.Open(context.Background(), url)
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database unreachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		DROP TABLE IF EXISTS played_maps CASCADE;
		DROP TABLE IF EXISTS modes CASCADE;
		DROP TABLE IF EXISTS maps CASCADE;
		DROP TABLE IF EXISTS servers CASCADE;
		DROP TABLE IF EXISTS schema_migrations CASCADE;
	`)
	require.NoError(t, err)

	return db
}

func TestRunMigrations(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db, zap.NewNop()))
	// Second run is a no-op.
	require.NoError(t, RunMigrations(ctx, db, zap.NewNop()))

	require.NoError(t, db.PingContext(ctx), "db must stay open")

	var servers int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM servers`).Scan(&servers))
	assert.Greater(t, servers, 0)
}
