package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/store/storetest"
)

// Set KINTREE_TEST_MONGO to a connection URI to run against a live server.
func TestConformance(t *testing.T) {
	uri := os.Getenv("KINTREE_TEST_MONGO")
	if uri == "" {
		t.Skip("KINTREE_TEST_MONGO not set")
	}
	n := 0
	storetest.Run(t, func(t *testing.T) store.Store {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n++
		s, err := Open(ctx, Config{URI: uri, Database: fmt.Sprintf("kintree_test_%d_%d", time.Now().UnixNano(), n)})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			_ = s.Drop(context.Background())
			_ = s.Close()
		})
		return s
	})
}

func TestOpenRequiresURI(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Error("Open without URI should fail")
	}
}
