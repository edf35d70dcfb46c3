package detect

import (
	"testing"
	"time"

	"buyorder-alerts/internal/book"
)

func TestEvaluateInconclusiveOnNoSignatures(t *testing.T) {
	res := Evaluate("abc123", nil, 0)
	if res.Conclusive {
		t.Fatal("zero signatures must be inconclusive")
	}
	if res.Changed {
		t.Fatal("inconclusive poll must not report a change")
	}
	if res.Combined != "" {
		t.Fatalf("inconclusive poll must not produce a combined signature, got %q", res.Combined)
	}
}

func TestEvaluateFirstPollEstablishesBaselineSilently(t *testing.T) {
	res := Evaluate("", []string{"sig1", "sig2"}, 5)
	if !res.Conclusive {
		t.Fatal("non-empty signatures must be conclusive")
	}
	if res.Changed {
		t.Fatal("first conclusive poll must never report changed")
	}
	if res.Combined == "" {
		t.Fatal("conclusive poll must produce a combined signature")
	}
	if res.BuyCount != 5 {
		t.Fatalf("buy count = %d, want 5", res.BuyCount)
	}
}

func TestEvaluateSameSignaturesNoChange(t *testing.T) {
	sigs := []string{"aa", "bb"}
	baseline := book.CombineSignatures(sigs)
	res := Evaluate(baseline, sigs, 3)
	if res.Changed {
		t.Fatal("identical combined signature must not be a change")
	}
	if res.Combined != baseline {
		t.Fatalf("combined = %q, want %q", res.Combined, baseline)
	}
}

func TestEvaluateDifferentSignaturesChange(t *testing.T) {
	baseline := book.CombineSignatures([]string{"aa"})
	res := Evaluate(baseline, []string{"zz"}, 3)
	if !res.Changed {
		t.Fatal("different combined signature must be a change")
	}
}

func TestAdmitNotChanged(t *testing.T) {
	if Admit(false, 0, 1000, 90*time.Second) {
		t.Fatal("no change must never admit an alert")
	}
}

func TestAdmitCooldownWindow(t *testing.T) {
	cooldown := 90 * time.Second

	if !Admit(true, 0, 100, cooldown) {
		t.Fatal("100s after epoch with no prior alert must admit")
	}
	if Admit(true, 100, 110, cooldown) {
		t.Fatal("10s after last alert must be suppressed")
	}
	// Boundary: exactly cooldownSeconds elapsed admits.
	if !Admit(true, 100, 190, cooldown) {
		t.Fatal("exactly cooldown elapsed must admit")
	}
	if Admit(true, 100, 189, cooldown) {
		t.Fatal("one second short of cooldown must be suppressed")
	}
}
