/*
Package equipment tracks the loanable hardware that travels with kegs.

PURPOSE:
  Kegs rarely leave the depot alone. A delivery usually includes a tap,
  a CO2 cylinder, sometimes a counter or a tent, and for events a stack
  of reusable cups. This package defines the recognized item kinds and
  the codec that moves their counts in and out of a movement's free-text
  note (see codec.go).

KEY CONCEPTS:
  - Item: a named kind of loanable hardware
  - Counts: a sparse mapping of Item to a non-negative count

COUNTS ARE SPARSE:
  A Counts map only carries the keys that were explicitly written. This
  distinction matters for cup settlement: "cups=0" (explicitly returned
  zero cups) and "no cups key at all" mean different things to the
  billing rule in the ledger package.

SEE ALSO:
  - codec.go: note string encoding/decoding
  - ledger/balance.go: signed aggregation of per-movement counts
*/
package equipment

// Item identifies a kind of loanable hardware.
type Item string

const (
	Tap     Item = "tap"
	CO2     Item = "co2"
	Counter Item = "counter"
	Tent    Item = "tent"
	Cups    Item = "cups"
)

// KnownItems returns the recognized item kinds in canonical order.
// The order is used by Encode so output is deterministic.
func KnownItems() []Item {
	return []Item{Tap, CO2, Counter, Tent, Cups}
}

// IsKnown reports whether the key names a recognized item kind.
func IsKnown(i Item) bool {
	switch i {
	case Tap, CO2, Counter, Tent, Cups:
		return true
	}
	return false
}

// Counts maps item kinds to non-negative counts. Only explicitly
// recorded keys are present; a missing key reads as zero.
type Counts map[Item]int

// Has reports whether the item was explicitly recorded, even with
// a zero count.
func (c Counts) Has(i Item) bool {
	_, ok := c[i]
	return ok
}

// IsZero reports whether no item carries a positive count.
func (c Counts) IsZero() bool {
	for _, n := range c {
		if n != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (c Counts) Clone() Counts {
	if c == nil {
		return nil
	}
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
