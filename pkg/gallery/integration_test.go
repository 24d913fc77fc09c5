//go:build integration

package gallery

import (
	"context"
	"os"
	"testing"
)

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DREAMSCAPE_TEST_POSTGRES")
	if url == "" {
		t.Skip("DREAMSCAPE_TEST_POSTGRES not set")
	}
	runStoreTests(t, func(t *testing.T) Store {
		s, err := OpenPostgres(context.Background(), url)
		if err != nil {
			t.Fatalf("OpenPostgres() error: %v", err)
		}
		if _, err := s.pool.Exec(context.Background(), "TRUNCATE art_pieces"); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("DREAMSCAPE_TEST_MONGO")
	if uri == "" {
		t.Skip("DREAMSCAPE_TEST_MONGO not set")
	}
	runStoreTests(t, func(t *testing.T) Store {
		s, err := OpenMongo(context.Background(), uri)
		if err != nil {
			t.Fatalf("OpenMongo() error: %v", err)
		}
		if err := s.coll.Drop(context.Background()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}
