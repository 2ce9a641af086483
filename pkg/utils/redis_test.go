package utils

import (
	"context"
	"testing"
	"time"
)

func TestThrottleScriptCompiles(t *testing.T) {
	// Compile-time smoke test: the script should be initialized.
	if sessionThrottleScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestAllowSessionRefresh_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	if _, err := AllowSessionRefresh(ctx, nil, "user-1", 10, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
