/*
balance.go - Folding movement history into client balances

PURPOSE:
  Computes everything the index card shows for a client: kegs currently
  at their premises, cumulative beer billed, deposit money in play,
  equipment on loan and the last delivery/return dates. Nothing here is
  cached or stored; every call folds the full history again.

WHY RECOMPUTE EVERY TIME:
  The aggregation uses only sums, differences and max-of-timestamps, so
  feeding the same movements in any order produces identical results.
  That makes replay correctness trivial and removes a whole class of
  stale-cache bugs. A client history is a few hundred rows at most.

AGGREGATION RULES (per variant):
  kegs     = Σ qty(OUT) − Σ qty(IN | DEFECT | FULL)
  beer     = Σ qty × price(OUT) − Σ qty × price(DEFECT | FULL)
             IN never refunds beer: an empty keg came back, the beer
             in it was consumed and stays billed.
  deposit  = Σ qty × deposit(OUT) − Σ qty × deposit(IN | DEFECT | FULL)

EFFECTIVE VALUES:
  price    = movement price, else the variant's catalog price, else 0.
             OUT rows had the catalog price baked in at write time, so
             the fallback matters only for refund legs recorded without
             an explicit price.
  deposit  = movement deposit, else 0. A nil deposit on a return means
             no deposit was tracked for that leg, not "use the default".

EQUIPMENT:
  Per item kind, counts add on OUT and subtract on any return. The
  final figure is clamped at 0: a negative loan is a data-entry anomaly
  to hide from the card, not to propagate.

The engine never fails on missing data. A movement referencing an
unknown variant, a nil price, a nil deposit all contribute zero where
a value is missing; a back-office page must always render.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
)

// =============================================================================
// INPUT - catalog context for the fold
// =============================================================================

// VariantRef carries the catalog data the fold needs per variant:
// the current catalog price (fallback for rows stored without one)
// and whether the variant is a service line.
type VariantRef struct {
	CatalogPrice *decimal.Decimal
	Service      bool
}

// =============================================================================
// OUTPUT
// =============================================================================

// Position is the per-variant slice of a client balance.
type Position struct {
	Kegs    int
	Beer    decimal.Decimal
	Deposit decimal.Decimal
}

// Balance is the folded state of one client account.
type Balance struct {
	ClientID ClientID

	// Kegs is the net physical keg count at the client, summed over
	// non-service variants only. Fee lines never count as kegs.
	Kegs int

	// BeerBilled is cumulative: deliveries add, defect and full-keg
	// returns refund, cup fees add. It does not decrease on IN.
	BeerBilled decimal.Decimal

	// DepositHeld is the refundable money currently tied up in kegs
	// at the client.
	DepositHeld decimal.Decimal

	// Equipment is the per-item loan count, clamped at zero.
	Equipment map[equipment.Item]int

	// Positions breaks the balance down per variant, including
	// service lines.
	Positions map[catalog.VariantID]Position

	LastDelivery *time.Time
	LastReturn   *time.Time
}

// CupsHeld returns the client's current reusable-cup loan count.
func (b Balance) CupsHeld() int {
	return b.Equipment[equipment.Cups]
}

// PositionFor returns the balance slice for one variant.
func (b Balance) PositionFor(id catalog.VariantID) Position {
	return b.Positions[id]
}

// =============================================================================
// THE FOLD
// =============================================================================

// ComputeBalance folds a client's movements into their balance. refs
// supplies catalog prices and service flags per variant; a missing
// entry is treated as a price-less physical variant.
func ComputeBalance(clientID ClientID, movements []Movement, refs map[catalog.VariantID]VariantRef) Balance {
	b := Balance{
		ClientID:    clientID,
		BeerBilled:  decimal.Zero,
		DepositHeld: decimal.Zero,
		Equipment:   make(map[equipment.Item]int),
		Positions:   make(map[catalog.VariantID]Position),
	}

	rawEquipment := make(map[equipment.Item]int)

	for _, m := range movements {
		pos := b.Positions[m.VariantID]
		qty := decimal.NewFromInt(int64(m.Qty))
		price := effectivePrice(m, refs[m.VariantID])
		deposit := effectiveDeposit(m)

		switch m.Type {
		case MovementOut:
			pos.Kegs += m.Qty
			pos.Beer = pos.Beer.Add(qty.Mul(price))
			pos.Deposit = pos.Deposit.Add(qty.Mul(deposit))
			// Synthetic fee lines are OUTs too, but a cup fee is not
			// a delivery truck at the door.
			if !m.IsFee() {
				b.LastDelivery = laterOf(b.LastDelivery, m.OccurredAt)
			}
		case MovementIn:
			pos.Kegs -= m.Qty
			pos.Deposit = pos.Deposit.Sub(qty.Mul(deposit))
			b.LastReturn = laterOf(b.LastReturn, m.OccurredAt)
		case MovementDefect:
			pos.Kegs -= m.Qty
			pos.Beer = pos.Beer.Sub(qty.Mul(price))
			pos.Deposit = pos.Deposit.Sub(qty.Mul(deposit))
			b.LastReturn = laterOf(b.LastReturn, m.OccurredAt)
		case MovementFull:
			// A full keg going back is not "the client returned
			// empties", so it does not move the last-return date.
			pos.Kegs -= m.Qty
			pos.Beer = pos.Beer.Sub(qty.Mul(price))
			pos.Deposit = pos.Deposit.Sub(qty.Mul(deposit))
		}
		b.Positions[m.VariantID] = pos

		sign := 1
		if m.Type.IsReturn() {
			sign = -1
		}
		for item, n := range m.Items {
			rawEquipment[item] += sign * n
		}
	}

	for id, pos := range b.Positions {
		if !refs[id].Service {
			b.Kegs += pos.Kegs
		}
		b.BeerBilled = b.BeerBilled.Add(pos.Beer)
		b.DepositHeld = b.DepositHeld.Add(pos.Deposit)
	}

	for item, n := range rawEquipment {
		if n < 0 {
			n = 0
		}
		b.Equipment[item] = n
	}

	return b
}

// effectivePrice resolves the per-keg beer price for one movement:
// the stored price wins, then the catalog price, then zero.
func effectivePrice(m Movement, ref VariantRef) decimal.Decimal {
	if m.UnitPrice != nil {
		return *m.UnitPrice
	}
	if ref.CatalogPrice != nil {
		return *ref.CatalogPrice
	}
	return decimal.Zero
}

// effectiveDeposit resolves the per-keg deposit: the stored value or
// zero. There is no fallback here; OUT rows already carry the default
// from write time.
func effectiveDeposit(m Movement) decimal.Decimal {
	if m.Deposit != nil {
		return *m.Deposit
	}
	return decimal.Zero
}

func laterOf(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		t := candidate
		return &t
	}
	return current
}
