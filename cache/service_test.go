package cache

import (
	"context"
	"errors"
	"testing"
)

var _ Store = (*NoopStore)(nil)

func TestBackendError(t *testing.T) {
	cause := errors.New("boom")
	err := &BackendError{Operation: "get", Err: cause}

	if !errors.Is(err, ErrBackend) {
		t.Fatal("BackendError must match the ErrBackend sentinel")
	}
	if !errors.Is(err, cause) {
		t.Fatal("BackendError must unwrap to its cause")
	}
	if got := err.Error(); got != "cache get: boom" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestNoopStoreAlwaysMisses(t *testing.T) {
	s := NewNoopStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v", SetOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, err := s.Get(ctx, "k"); found || err != nil {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if n, err := s.InvalidateByTag(ctx, "tag"); n != 0 || err != nil {
		t.Fatalf("InvalidateByTag = %d, %v", n, err)
	}
	if n, err := s.InvalidateByPattern(ctx, "*"); n != 0 || err != nil {
		t.Fatalf("InvalidateByPattern = %d, %v", n, err)
	}
	s.Stop()
	s.Stop()
}
