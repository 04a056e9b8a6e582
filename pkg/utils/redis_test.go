package utils

import "testing"

func TestAttemptScriptCompiles(t *testing.T) {
	// Compile-time smoke test: script should be initialized.
	if attemptWindowScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}
