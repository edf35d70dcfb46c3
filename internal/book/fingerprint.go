package book

import (
	"encoding/json"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// TopDepth is the number of highest-priced buy orders that take part in a
// signature. Deeper book rows are noise for change detection.
const TopDepth = 15

// serializePrecision is the fixed number of fractional digits used when
// rendering orders into the hashed byte sequence.
const serializePrecision = 8

// Snapshot is the fingerprint of one payload's buy side.
type Snapshot struct {
	Top       []BuyOrder
	Signature string
}

// hashString is a cheap, stable, non-cryptographic hash rendered as a
// compact hex token. Stability across runs and platforms is the only
// requirement; collision resistance is not.
func hashString(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

// Fingerprint sorts orders by price descending, keeps the top rows, and
// hashes their canonical serialization. No orders yields an empty
// signature, which callers must treat as "no usable data" rather than as a
// valid fingerprint.
func Fingerprint(orders []BuyOrder) Snapshot {
	sorted := make([]BuyOrder, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price.GreaterThan(sorted[j].Price)
	})

	if len(sorted) > TopDepth {
		sorted = sorted[:TopDepth]
	}

	if len(sorted) == 0 {
		return Snapshot{}
	}

	lines := make([]string, len(sorted))
	for i, o := range sorted {
		lines[i] = o.Price.StringFixed(serializePrecision) + "|" + o.Quantity.StringFixed(serializePrecision)
	}

	return Snapshot{
		Top:       sorted,
		Signature: hashString(strings.Join(lines, "\n")),
	}
}

// CombineSignatures hashes the per-payload signatures of one poll cycle,
// in encounter order, into a single combined signature.
func CombineSignatures(sigs []string) string {
	return hashString(strings.Join(sigs, "|"))
}

// ExtractFromPayloads parses raw JSON texts, extracts buy orders from each,
// and returns one signature per payload that yielded at least one order,
// plus the total number of kept rows. Payloads that fail to parse or that
// contain no buy-order-shaped node contribute nothing.
func ExtractFromPayloads(payloads []string) ([]string, int) {
	var sigs []string
	total := 0
	for _, raw := range payloads {
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			continue
		}
		snap := Fingerprint(ExtractBuys(data))
		if snap.Signature == "" {
			continue
		}
		sigs = append(sigs, snap.Signature)
		total += len(snap.Top)
	}
	return sigs, total
}
