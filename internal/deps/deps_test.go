package deps_test

import (
	"testing"

	"ytscribe/internal/deps"
)

func TestCheckBinaries(t *testing.T) {
	requirements := []deps.Requirement{
		{Name: "Shell", Command: "sh", Description: "always present on unix"},
		{Name: "Missing", Command: "definitely-not-a-real-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}
	results := deps.CheckBinaries(requirements)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("sh should be available: %+v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary should fail with detail: %+v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unset command should report not configured: %+v", results[2])
	}
	if !results[2].Optional {
		t.Fatal("optional flag must be carried through")
	}
}
