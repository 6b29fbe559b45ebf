package vocab

import "testing"

func TestMatchesSupportPhrase(t *testing.T) {
	t.Parallel()

	phrase, ok := MatchesSupportPhrase("I can't make transfers from my account")
	if !ok {
		t.Fatal("expected support phrase match")
	}
	if phrase != "can't make transfers" {
		t.Fatalf("unexpected phrase: %q", phrase)
	}

	if _, ok := MatchesSupportPhrase("What are the fees for Maquininha Smart?"); ok {
		t.Fatal("pricing question must not match a support phrase")
	}
}

func TestMatchesKnowledgePhrase(t *testing.T) {
	t.Parallel()

	if _, ok := MatchesKnowledgePhrase("What are the fees for Maquininha Smart?"); !ok {
		t.Fatal("expected knowledge phrase match")
	}
	if _, ok := MatchesKnowledgePhrase("my card was stolen"); ok {
		t.Fatal("unexpected knowledge phrase match")
	}
}

func TestMatchesProductAndPricing(t *testing.T) {
	t.Parallel()

	if _, ok := MatchesProduct("how does the Maquininha Celular work"); !ok {
		t.Fatal("expected product match")
	}
	if _, ok := MatchesProduct("what is the weather in Lisbon"); ok {
		t.Fatal("unexpected product match")
	}
	if _, ok := MatchesPricing("quanto custa a maquininha?"); !ok {
		t.Fatal("expected pricing match")
	}
}

func TestMatchesTransaction(t *testing.T) {
	t.Parallel()

	if _, ok := MatchesTransaction("why did my PIX transfer fail"); !ok {
		t.Fatal("expected transaction match")
	}
	if _, ok := MatchesTransaction("update my email address"); ok {
		t.Fatal("unexpected transaction match")
	}
}

func TestShortTermsRequireWordBoundaries(t *testing.T) {
	t.Parallel()

	for _, message := range []string{
		"is it possible to open an account?",
		"I deposited money in my coffee shop till",
		"can you explain the deposit rules",
	} {
		if term, ok := MatchesProduct(message); ok {
			t.Fatalf("MatchesProduct(%q) matched %q inside a word", message, term)
		}
	}
	if term, ok := MatchesPricing("I love coffee"); ok {
		t.Fatalf("MatchesPricing matched %q inside coffee", term)
	}

	if _, ok := MatchesProduct("does the POS terminal support contactless?"); !ok {
		t.Fatal("expected standalone pos to match")
	}
	if _, ok := MatchesProduct("what is pix?"); !ok {
		t.Fatal("expected pix at sentence end to match")
	}
	if _, ok := MatchesPricing("is there a fee?"); !ok {
		t.Fatal("expected standalone fee to match")
	}
}
