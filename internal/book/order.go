// Package book turns schema-unknown JSON payloads into canonical buy-order
// snapshots and deterministic signatures over the top of the buy side.
package book

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// maxDepth bounds recursion on adversarial or malformed trees.
	maxDepth = 64
	// maxNodes bounds the total number of visited nodes per payload.
	maxNodes = 100_000

	// normalizePrecision absorbs float representation noise before values
	// are compared or serialized.
	normalizePrecision = 10
)

// BuyOrder is one extracted (price, quantity) pair. It lives only for the
// duration of a single extraction pass.
type BuyOrder struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

var (
	priceAliases = []string{"price", "p", "bid", "bestbid"}
	qtyAliases   = []string{"quantity", "qty", "q", "amount", "size"}
	sideAliases  = []string{"side", "type", "order_type"}
)

// NormalizeNumber coerces a loosely-typed numeric-like value into a decimal
// rounded to a fixed precision. A comma is accepted as decimal separator.
// The second return is false when the value does not stringify to a finite
// number.
func NormalizeNumber(v any) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Decimal{}, false
	}
	s := strings.Replace(fmt.Sprintf("%v", v), ",", ".", 1)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f).Round(normalizePrecision), true
}

// keyMatches reports whether an object key matches a canonical alias.
// Aliases of one or two characters only match exactly or as a `_alias`
// suffix; bare substring containment on short aliases produces far too many
// false positives (e.g. "type" containing "p").
func keyMatches(key, alias string) bool {
	if key == alias || strings.HasSuffix(key, "_"+alias) {
		return true
	}
	return len(alias) > 2 && strings.Contains(key, alias)
}

// lookup returns the value of the first key (in sorted key order, so the
// choice is deterministic) matching any of the aliases.
func lookup(obj map[string]any, keys []string, aliases []string) (any, bool) {
	for _, k := range keys {
		lower := strings.ToLower(k)
		for _, alias := range aliases {
			if keyMatches(lower, alias) {
				return obj[k], true
			}
		}
	}
	return nil, false
}

type walker struct {
	buys    []BuyOrder
	visited int
}

func (w *walker) scan(node any, depth int) {
	if depth > maxDepth || w.visited >= maxNodes {
		return
	}
	w.visited++

	switch n := node.(type) {
	case []any:
		for _, v := range n {
			w.scan(v, depth+1)
		}
	case map[string]any:
		w.scanObject(n, depth)
	}
}

func (w *walker) scanObject(obj map[string]any, depth int) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if order, ok := matchOrder(obj, keys); ok {
		w.buys = append(w.buys, order)
	}

	// Buy orders can nest at any depth, so recurse into every child value
	// whether or not this object matched.
	for _, k := range keys {
		w.scan(obj[k], depth+1)
	}
}

// matchOrder applies the fuzzy buy-order predicate to a single object node:
// both price and quantity must normalize, and the side field, when present,
// must read as a buy.
func matchOrder(obj map[string]any, keys []string) (BuyOrder, bool) {
	rawPrice, ok := lookup(obj, keys, priceAliases)
	if !ok {
		return BuyOrder{}, false
	}
	rawQty, ok := lookup(obj, keys, qtyAliases)
	if !ok {
		return BuyOrder{}, false
	}

	price, ok := NormalizeNumber(rawPrice)
	if !ok {
		return BuyOrder{}, false
	}
	qty, ok := NormalizeNumber(rawQty)
	if !ok {
		return BuyOrder{}, false
	}

	if raw, ok := lookup(obj, keys, sideAliases); ok && raw != nil {
		side := strings.ToLower(fmt.Sprintf("%v", raw))
		if side != "" && !strings.Contains(side, "buy") && !strings.Contains(side, "bid") {
			return BuyOrder{}, false
		}
	}

	return BuyOrder{Price: price, Quantity: qty}, true
}

// ExtractBuys recursively visits every node of an arbitrary JSON-like tree
// (as produced by encoding/json into any) and collects every node that looks
// like a buy order. The input tree is never mutated.
func ExtractBuys(node any) []BuyOrder {
	w := &walker{}
	w.scan(node, 0)
	return w.buys
}
