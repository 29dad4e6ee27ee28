/*
Package ledger is the movement ledger for keg deliveries and returns.

PURPOSE:
  Every physical event between the depot and a client is one Movement:
  kegs delivered, empties returned, a broken keg refunded, a full keg
  brought back. Balances (kegs at the client, beer billed, deposits
  held, equipment on loan) are never stored; they are folded from the
  movement history on every read.

KEY CONCEPTS IN THIS FILE (types.go):
  - Movement: an immutable ledger entry for one (client, variant) event
  - MovementType: OUT, IN, DEFECT, FULL
  - Client: a rental account (bar, club, private event)
  - Typed IDs: ClientID and MovementID prevent mixing identifiers

DESIGN PRINCIPLES:
  1. Write-time defaulting: an OUT recorded without a price or deposit
     stores the catalog price and the standard deposit at that moment,
     so later catalog edits never rewrite history.
  2. Precision: money is decimal.Decimal, never float.
  3. Deletion reverses: removing a movement undoes the exact depot
     stock delta it applied, derived from its stored type and quantity.

SEE ALSO:
  - balance.go: the fold that turns movements into balances
  - service.go: recording, atomic drafts, cup fee settlement
  - store.go: persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ClientID string
type MovementID string

// =============================================================================
// MOVEMENT TYPES
// =============================================================================

type MovementType string

const (
	// MovementOut is a delivery: kegs leave the depot for the client.
	MovementOut MovementType = "OUT"

	// MovementIn is a plain return of empty kegs. The beer was consumed,
	// so only the deposit leg reverses, never the beer charge.
	MovementIn MovementType = "IN"

	// MovementDefect is a return of an unusable keg (leaking, past date).
	// The beer charge is refunded along with any recorded deposit.
	MovementDefect MovementType = "DEFECT"

	// MovementFull is a return of an untouched full keg, typically after
	// a cancelled event. Beer and deposit reverse and the keg goes back
	// into depot stock.
	MovementFull MovementType = "FULL"
)

// Valid reports whether t is one of the four movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementOut, MovementIn, MovementDefect, MovementFull:
		return true
	}
	return false
}

// IsReturn reports whether the movement brings kegs back from the
// client (IN, DEFECT or FULL).
func (t MovementType) IsReturn() bool {
	return t == MovementIn || t == MovementDefect || t == MovementFull
}

// =============================================================================
// MOVEMENT - One immutable ledger entry
// =============================================================================

type Movement struct {
	ID        MovementID
	Type      MovementType
	ClientID  ClientID
	VariantID catalog.VariantID

	// OccurredAt is the business date of the event. It defaults to the
	// recording time but may be backdated.
	OccurredAt time.Time

	// Qty is the keg count. Zero is reserved for equipment-only or
	// cup-only entries on a service variant.
	Qty int

	// UnitPrice is the per-keg beer price actually applied. For OUT
	// movements a nil input is replaced by the catalog price at write
	// time; it may still be nil when the catalog had no price either.
	UnitPrice *decimal.Decimal

	// Deposit is the per-keg deposit actually applied. On OUT and IN
	// movements a nil input is replaced by the standard deposit at
	// write time. On DEFECT and FULL nil means "no deposit tracked on
	// this leg" and contributes zero.
	Deposit *decimal.Decimal

	// Note is the operator's free-text comment. Structured equipment
	// counts are not parsed out of it at read time; they live in Items.
	Note string

	// Items carries the equipment and cup counts attached to this
	// movement, decoded once at write time. Counts are non-negative;
	// the movement type decides the sign during aggregation.
	Items equipment.Counts

	// OriginID links a synthetic fee movement (cup wash or loss) back
	// to the return that produced it. Empty on ordinary movements.
	// Deleting the origin cascades to its fee movements.
	OriginID MovementID

	CreatedAt time.Time
}

// StockDelta returns the depot stock adjustment this movement applied:
// a delivery takes kegs out, a full-keg return puts them back, and
// empty or defective returns change nothing (an empty keg is not
// resellable stock). Reversal on delete applies the exact negation.
func (m Movement) StockDelta() int {
	switch m.Type {
	case MovementOut:
		return -m.Qty
	case MovementFull:
		return m.Qty
	default:
		return 0
	}
}

// IsFee reports whether this is a synthetic cup fee movement.
func (m Movement) IsFee() bool {
	return m.OriginID != ""
}

// =============================================================================
// CLIENT - A rental account
// =============================================================================

type Client struct {
	ID        ClientID
	Name      string
	Email     string
	CreatedAt time.Time

	// ArchivedAt soft-deletes the account. Archived clients keep their
	// movement history but drop out of index cards and cannot receive
	// new movements.
	ArchivedAt *time.Time
}

// Archived reports whether the client has been archived.
func (c Client) Archived() bool {
	return c.ArchivedAt != nil
}
