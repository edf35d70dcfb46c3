// Package detect decides whether a poll cycle represents a real order-book
// change and whether an alert may be emitted for it.
package detect

import (
	"time"

	"buyorder-alerts/internal/book"
)

// Result is the outcome of comparing one poll cycle against a baseline.
type Result struct {
	// Conclusive is false when no payload yielded a usable signature. An
	// inconclusive poll must not touch baseline or count state.
	Conclusive bool
	// Changed is true when a non-empty baseline differs from the combined
	// signature. The first conclusive poll of a source establishes the
	// baseline silently and never reports a change.
	Changed bool
	// Combined is the signature over all per-payload signatures.
	Combined string
	// BuyCount is the total number of buy rows counted this cycle.
	BuyCount int
}

// Evaluate compares the per-payload signatures of one poll cycle against the
// stored baseline. An empty baseline means "no baseline yet".
func Evaluate(baseline string, perPayloadSigs []string, buyCount int) Result {
	if len(perPayloadSigs) == 0 {
		return Result{}
	}
	combined := book.CombineSignatures(perPayloadSigs)
	return Result{
		Conclusive: true,
		Changed:    baseline != "" && baseline != combined,
		Combined:   combined,
		BuyCount:   buyCount,
	}
}

// Admit applies the per-source cooldown to a detected change. A change
// within the cooldown window is a real change that is merely rate-limited;
// the caller still commits the new baseline either way.
func Admit(changed bool, lastAlertAt, now int64, cooldown time.Duration) bool {
	if !changed {
		return false
	}
	return now-lastAlertAt >= int64(cooldown/time.Second)
}
