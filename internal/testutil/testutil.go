// Package testutil provides shared test helpers for setting up databases and
// the service stack on top of them.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/giftcert/internal/service"
	"github.com/starford/giftcert/internal/stats"
	"github.com/starford/giftcert/internal/store"
)

// TestDB creates a temporary, migrated SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "giftcert-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDeps wires repositories and a stats aggregator over a fresh database.
// Events and Observer are left nil; callers set them when needed.
func TestDeps(t *testing.T) service.Deps {
	t.Helper()
	db := TestDB(t)
	tags := store.NewTagRepo(db)
	certs := store.NewCertificateRepo(db, tags)
	users := store.NewUserRepo(db)
	orders := store.NewOrderRepo(db)

	agg, err := stats.New(certs, tags, users, orders)
	if err != nil {
		t.Fatal(err)
	}
	return service.Deps{
		Certificates: certs,
		Tags:         tags,
		Users:        users,
		Orders:       orders,
		Stats:        agg,
	}
}

// TestService is service.New(TestDeps(t)).
func TestService(t *testing.T) *service.Service {
	t.Helper()
	return service.New(TestDeps(t))
}
