// internal/db/dbtest/dbtest.go
package dbtest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"libralend/internal/db"
)

// Open connects to the database described by DATABASE_URL or the PG*
// environment variables and migrates it. The test is skipped when Postgres
// is not reachable.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			envOr("PGHOST", "localhost"),
			envOr("PGPORT", "5432"),
			envOr("PGUSER", "user"),
			envOr("PGPASSWORD", "password"),
			envOr("PGDATABASE", "testdb"),
		)
	}

	conn, err := db.Open(context.Background(), dsn)
	if err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}
	if err := db.Migrate(conn.DB); err != nil {
		conn.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
