package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("REVIEW_UNDO_WINDOW_SECONDS", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "decks.analyze" {
		t.Fatalf("expected default subject decks.analyze, got %q", cfg.NATSSubject)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Fatalf("expected default gemini model, got %q", cfg.GeminiModel)
	}
	if cfg.ReviewUndoWindowSeconds != 7 {
		t.Fatalf("expected default undo window 7, got %d", cfg.ReviewUndoWindowSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("REVIEW_UNDO_WINDOW_SECONDS", "15")
	t.Setenv("INTERNAL_RULES_PATH", "/etc/review/rules.md")

	cfg := Load()
	if cfg.APIPort != "9000" {
		t.Fatalf("expected api port override, got %q", cfg.APIPort)
	}
	if cfg.ReviewUndoWindowSeconds != 15 {
		t.Fatalf("expected undo window 15, got %d", cfg.ReviewUndoWindowSeconds)
	}
	if cfg.InternalRulesPath != "/etc/review/rules.md" {
		t.Fatalf("expected rules path override, got %q", cfg.InternalRulesPath)
	}
}

func TestLoadFallsBackOnUnparsableInt(t *testing.T) {
	t.Setenv("REVIEW_UNDO_WINDOW_SECONDS", "soon")

	cfg := Load()
	if cfg.ReviewUndoWindowSeconds != 7 {
		t.Fatalf("expected fallback undo window 7, got %d", cfg.ReviewUndoWindowSeconds)
	}
}
