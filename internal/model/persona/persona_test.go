package persona

import "testing"

func TestParseNormalizesCaseAndSpace(t *testing.T) {
	label, ok := Parse("  Efficient\n")
	if !ok || label != Efficient {
		t.Fatalf("expected efficient, got %q ok=%v", label, ok)
	}
}

func TestParseRejectsUnknownLabel(t *testing.T) {
	if _, ok := Parse("happy"); ok {
		t.Fatal("expected happy to be rejected")
	}
	if _, ok := Parse("efficient."); ok {
		t.Fatal("expected punctuation to break an exact match")
	}
}

func TestSeedCoversEveryLabel(t *testing.T) {
	store := NewMemoryStore(Seed())
	for _, label := range Labels() {
		profile, ok := store.FindByID(label)
		if !ok {
			t.Fatalf("missing profile for %s", label)
		}
		if profile.PromptHint == "" {
			t.Fatalf("profile %s has no prompt hint", label)
		}
	}
}
