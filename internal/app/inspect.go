package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"buyorder-alerts/internal/book"
)

// InspectOptions configure the offline payload inspection.
type InspectOptions struct {
	Files []string
}

// Inspect runs extraction and fingerprinting over saved JSON payload files
// and prints the result, without touching a browser or any source state.
func (a *App) Inspect(_ context.Context, opts InspectOptions) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "File\tBuy rows\tKept\tSignature")

	var sigs []string
	total := 0
	for _, path := range opts.Files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read payload %s: %w", path, err)
		}

		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			fmt.Fprintf(writer, "%s\t-\t-\t(unparseable JSON)\n", path)
			continue
		}

		buys := book.ExtractBuys(data)
		snap := book.Fingerprint(buys)
		sig := snap.Signature
		if sig == "" {
			sig = "(no buy orders)"
		} else {
			sigs = append(sigs, snap.Signature)
			total += len(snap.Top)
		}
		fmt.Fprintf(writer, "%s\t%d\t%d\t%s\n", path, len(buys), len(snap.Top), sig)

		for _, o := range snap.Top {
			fmt.Fprintf(writer, "\t%s\t%s\t\n", o.Price.StringFixed(8), o.Quantity.StringFixed(8))
		}
	}
	writer.Flush()

	if len(sigs) == 0 {
		fmt.Fprintln(os.Stdout, "no usable payloads; poll would be inconclusive")
		return nil
	}

	fmt.Fprintf(os.Stdout, "combined signature: %s (buy count %d)\n", book.CombineSignatures(sigs), total)
	return nil
}
