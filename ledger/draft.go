/*
draft.go - Multi-line movement drafts

PURPOSE:
  A Draft is what a delivery round actually looks like on paper: one
  client, one date, one movement type, several lines ("2x Blonde 20L,
  1x Ambrée 30L, tap and CO2"). The service commits a draft as a
  single transaction; either every line lands or none do.

LINES AND VARIANTS:
  Lines name their variant by product name and keg size, the way the
  driver writes it down. Unknown products and sizes are created in the
  catalog on the fly; an explicit line price becomes the variant's new
  catalog price.

VALIDATION:
  Validate covers everything checkable without a store: enum values,
  signs, presence. Stock-dependent rules (over-returns, archived
  clients, zero-quantity lines on real kegs) are enforced during
  commit, where current balances are known. Per-line failures surface
  as DraftError so the caller can point at the offending line.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DRAFT - one client visit, several lines
// =============================================================================

// DraftLine is one row of a draft: a quantity of one variant plus the
// optional overrides and the free-text note that may carry an
// equipment block.
type DraftLine struct {
	// ProductName and SizeL identify the variant. Missing catalog
	// rows are created during commit.
	ProductName string
	SizeL       int

	// Qty is the keg count. Zero is legal only on size-0 variants,
	// for equipment-only or cup-only entries.
	Qty int

	// UnitPrice overrides the catalog price for this line and, on a
	// delivery, updates the catalog for next time. Nil means "use the
	// catalog".
	UnitPrice *decimal.Decimal

	// Deposit overrides the per-keg deposit. Nil means the schedule
	// default on OUT and IN, and "no deposit on this leg" on DEFECT
	// and FULL.
	Deposit *decimal.Decimal

	// Note is free text, optionally ending in an equipment block
	// ("fête du village | tap=1;cups=200").
	Note string
}

// Draft is a batch of lines for one client at one moment, all of the
// same movement type.
type Draft struct {
	Type     MovementType
	ClientID ClientID

	// At is when the visit happened. The zero value means now.
	At time.Time

	Lines []DraftLine
}

// Validate checks the draft's shape. It does not touch any store.
func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "unknown movement type " + string(d.Type)}
	}
	if d.ClientID == "" {
		return &ValidationError{Field: "client_id", Reason: "missing"}
	}
	if len(d.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "a draft needs at least one line"}
	}
	for i, line := range d.Lines {
		if err := line.validate(); err != nil {
			return &DraftError{Line: i, Err: err}
		}
	}
	return nil
}

func (l DraftLine) validate() error {
	if l.ProductName == "" {
		return &ValidationError{Field: "product", Reason: "missing product name"}
	}
	if l.SizeL < 0 {
		return &ValidationError{Field: "size_l", Reason: "negative keg size"}
	}
	if l.Qty < 0 {
		return &ValidationError{Field: "qty", Reason: "negative quantity"}
	}
	if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Reason: "negative price"}
	}
	if l.Deposit != nil && l.Deposit.IsNegative() {
		return &ValidationError{Field: "deposit", Reason: "negative deposit"}
	}
	return nil
}
