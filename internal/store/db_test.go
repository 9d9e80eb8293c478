package store

import (
	"context"
	"testing"
)

func TestNewDBSQLiteMigratesIdempotently(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db.Client); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	for _, table := range []string{"subjects", "study_preferences", "exclusions", "study_sessions"} {
		var name string
		err := db.Client.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
	if !db.Healthy(ctx) {
		t.Fatalf("Healthy: got=false want=true")
	}
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDB(context.Background(), "mysql", "x"); err == nil {
		t.Fatalf("NewDB: expected error for unknown driver")
	}
}

func TestNilDBIsUnhealthy(t *testing.T) {
	var db *DB
	if db.Healthy(context.Background()) {
		t.Fatalf("nil db reported healthy")
	}
	if err := db.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
