package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}
	if got := ResolveUserID(ctx); got != "default" {
		t.Errorf("ResolveUserID on empty context = %q, want default", got)
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "user-123", Role: "admin"})

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.Role != "admin" {
		t.Errorf("Expected admin, got %s", got.Role)
	}
	if id := ResolveUserID(ctx); id != "user-123" {
		t.Errorf("Expected user-123, got %s", id)
	}
}
