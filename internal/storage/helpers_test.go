package storage

import (
	"context"
	"testing"
	"time"
)

// testContext bounds a storage call made from a test
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
