package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), ClientID, "client-999")
	got, ok := ctx.Value(ClientID).(string)
	if !ok {
		t.Fatalf("expected string value")
	}
	if got != "client-999" {
		t.Fatalf("expected client-999, got %q", got)
	}
}

func TestWithValue_DoesNotCollideWithPlainStringKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), ClientID, "client-1")
	if v := ctx.Value("client_id"); v != nil { //nolint:staticcheck
		t.Fatalf("plain string key should not see typed value, got %v", v)
	}
}
