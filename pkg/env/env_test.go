package env

import "testing"

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("TABLEORDER_ENV_TEST", "   ")
	if got := Get("TABLEORDER_ENV_TEST", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestFirstOfPrefersEarlierKeys(t *testing.T) {
	t.Setenv("TABLEORDER_ENV_A", "")
	t.Setenv("TABLEORDER_ENV_B", "8090")
	t.Setenv("TABLEORDER_ENV_C", "9000")
	if got := FirstOf("8080", "TABLEORDER_ENV_A", "TABLEORDER_ENV_B", "TABLEORDER_ENV_C"); got != "8090" {
		t.Fatalf("expected 8090, got %q", got)
	}
	if got := FirstOf("8080", "TABLEORDER_ENV_A"); got != "8080" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
