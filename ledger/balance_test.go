package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const (
	blonde = catalog.VariantID("v-blonde-20")
	wash   = catalog.VariantID("v-cup-wash")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func june(day int) time.Time {
	return time.Date(2026, time.June, day, 10, 0, 0, 0, time.UTC)
}

// mv builds a stored movement row on the blonde variant, fields as
// the write path would have persisted them.
func mv(typ ledger.MovementType, qty int, price, deposit *decimal.Decimal, day int) ledger.Movement {
	return ledger.Movement{
		Type:       typ,
		ClientID:   "c-1",
		VariantID:  blonde,
		OccurredAt: june(day),
		Qty:        qty,
		UnitPrice:  price,
		Deposit:    deposit,
	}
}

func blondeRefs() map[catalog.VariantID]ledger.VariantRef {
	return map[catalog.VariantID]ledger.VariantRef{
		blonde: {CatalogPrice: decPtr("68")},
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestBalance_DeliveryThenReturn(t *testing.T) {
	// OUT 2 kegs with price and deposit baked in at write time, then
	// one comes back empty with the baked refund deposit.
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 2, decPtr("68"), decPtr("30"), 1),
		mv(ledger.MovementIn, 1, nil, decPtr("30"), 8),
	}

	b := ledger.ComputeBalance("c-1", movements, blondeRefs())

	if b.Kegs != 1 {
		t.Errorf("expected 1 keg in place, got %d", b.Kegs)
	}
	if !b.BeerBilled.Equal(dec("136")) {
		t.Errorf("expected 136 beer billed, got %s", b.BeerBilled)
	}
	if !b.DepositHeld.Equal(dec("30")) {
		t.Errorf("expected 30 deposit in play, got %s", b.DepositHeld)
	}
	if b.LastDelivery == nil || !b.LastDelivery.Equal(june(1)) {
		t.Errorf("expected last delivery on june 1, got %v", b.LastDelivery)
	}
	if b.LastReturn == nil || !b.LastReturn.Equal(june(8)) {
		t.Errorf("expected last return on june 8, got %v", b.LastReturn)
	}
}

func TestBalance_InNeverRefundsBeer(t *testing.T) {
	// Every keg comes back empty. The beer in them was consumed, the
	// bill stands; only the deposit money moves back.
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 2, decPtr("68"), decPtr("30"), 1),
		mv(ledger.MovementIn, 2, nil, decPtr("30"), 8),
	}

	b := ledger.ComputeBalance("c-1", movements, blondeRefs())

	if b.Kegs != 0 {
		t.Errorf("expected 0 kegs in place, got %d", b.Kegs)
	}
	if !b.BeerBilled.Equal(dec("136")) {
		t.Errorf("expected beer billed to stay at 136, got %s", b.BeerBilled)
	}
	if !b.DepositHeld.Equal(dec("0")) {
		t.Errorf("expected 0 deposit in play, got %s", b.DepositHeld)
	}
}

func TestBalance_DefectRefundsBeerButNotDeposit(t *testing.T) {
	// The defect leg was stored with no price and no deposit. The
	// beer refund falls back to the catalog price; the deposit
	// reverses nothing because none was supplied on that leg.
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 1, decPtr("68"), decPtr("30"), 1),
		mv(ledger.MovementDefect, 1, nil, nil, 5),
	}

	b := ledger.ComputeBalance("c-1", movements, blondeRefs())

	if b.Kegs != 0 {
		t.Errorf("expected 0 kegs in place, got %d", b.Kegs)
	}
	if !b.BeerBilled.Equal(dec("0")) {
		t.Errorf("expected beer billed 0 (68 - 68), got %s", b.BeerBilled)
	}
	if !b.DepositHeld.Equal(dec("30")) {
		t.Errorf("expected deposit to stay at 30, got %s", b.DepositHeld)
	}
	if b.LastReturn == nil || !b.LastReturn.Equal(june(5)) {
		t.Errorf("expected last return on june 5, got %v", b.LastReturn)
	}
}

func TestBalance_FullReturn_RefundsBeerNotLastReturn(t *testing.T) {
	// A still-full keg going back refunds its beer but is not an
	// empty-keg return, so the last-return date stays untouched.
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 2, decPtr("68"), decPtr("30"), 1),
		mv(ledger.MovementFull, 1, nil, nil, 6),
	}

	b := ledger.ComputeBalance("c-1", movements, blondeRefs())

	if b.Kegs != 1 {
		t.Errorf("expected 1 keg in place, got %d", b.Kegs)
	}
	if !b.BeerBilled.Equal(dec("68")) {
		t.Errorf("expected 68 beer billed (136 - 68 catalog refund), got %s", b.BeerBilled)
	}
	if !b.DepositHeld.Equal(dec("60")) {
		t.Errorf("expected deposit to stay at 60, got %s", b.DepositHeld)
	}
	if b.LastReturn != nil {
		t.Errorf("expected no last return date, got %v", b.LastReturn)
	}
}

func TestBalance_StoredPriceWinsOverCatalog(t *testing.T) {
	// The catalog has moved to 75 since, but the OUT row carries the
	// price baked in when it was written.
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 2, decPtr("68"), decPtr("30"), 1),
	}
	refs := map[catalog.VariantID]ledger.VariantRef{
		blonde: {CatalogPrice: decPtr("75")},
	}

	b := ledger.ComputeBalance("c-1", movements, refs)

	if !b.BeerBilled.Equal(dec("136")) {
		t.Errorf("expected billing at the stored 68, got %s", b.BeerBilled)
	}
}

func TestBalance_MissingCatalogData_RendersZero(t *testing.T) {
	// No price anywhere: the card still renders, billing zero.
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 3, nil, nil, 1),
	}

	b := ledger.ComputeBalance("c-1", movements, nil)

	if b.Kegs != 3 {
		t.Errorf("expected 3 kegs in place, got %d", b.Kegs)
	}
	if !b.BeerBilled.Equal(dec("0")) {
		t.Errorf("expected 0 beer billed, got %s", b.BeerBilled)
	}
	if !b.DepositHeld.Equal(dec("0")) {
		t.Errorf("expected 0 deposit, got %s", b.DepositHeld)
	}
}

// =============================================================================
// EQUIPMENT
// =============================================================================

func TestBalance_EquipmentLoanAndReturn(t *testing.T) {
	out := mv(ledger.MovementOut, 1, decPtr("68"), decPtr("30"), 1)
	out.Items = equipment.Counts{equipment.Tap: 1, equipment.Tent: 1}
	in := mv(ledger.MovementIn, 1, nil, decPtr("30"), 8)
	in.Items = equipment.Counts{equipment.Tap: 1}

	b := ledger.ComputeBalance("c-1", []ledger.Movement{out, in}, blondeRefs())

	if b.Equipment[equipment.Tap] != 0 {
		t.Errorf("expected tap returned, got %d on loan", b.Equipment[equipment.Tap])
	}
	if b.Equipment[equipment.Tent] != 1 {
		t.Errorf("expected tent still on loan, got %d", b.Equipment[equipment.Tent])
	}
}

func TestBalance_EquipmentClampsAtZero(t *testing.T) {
	// A return of equipment that was never recorded as delivered is a
	// data-entry anomaly; the card hides it instead of going negative.
	in := mv(ledger.MovementIn, 0, nil, nil, 8)
	in.Items = equipment.Counts{equipment.CO2: 2}

	b := ledger.ComputeBalance("c-1", []ledger.Movement{in}, blondeRefs())

	if b.Equipment[equipment.CO2] != 0 {
		t.Errorf("expected clamp at 0, got %d", b.Equipment[equipment.CO2])
	}
}

// =============================================================================
// FEE LINES
// =============================================================================

func TestBalance_ServiceVariantsExcludedFromKegCount(t *testing.T) {
	fee := ledger.Movement{
		Type:       ledger.MovementOut,
		ClientID:   "c-1",
		VariantID:  wash,
		OccurredAt: june(9),
		Qty:        50,
		UnitPrice:  decPtr("0.15"),
		OriginID:   "m-origin",
	}
	movements := []ledger.Movement{
		mv(ledger.MovementOut, 2, decPtr("68"), decPtr("30"), 1),
		fee,
	}
	refs := map[catalog.VariantID]ledger.VariantRef{
		blonde: {CatalogPrice: decPtr("68")},
		wash:   {CatalogPrice: decPtr("0.15"), Service: true},
	}

	b := ledger.ComputeBalance("c-1", movements, refs)

	if b.Kegs != 2 {
		t.Errorf("expected 2 kegs (fee lines are not kegs), got %d", b.Kegs)
	}
	if !b.BeerBilled.Equal(dec("143.5")) {
		t.Errorf("expected 136 + 7.50 in fees, got %s", b.BeerBilled)
	}
	if b.LastDelivery == nil || !b.LastDelivery.Equal(june(1)) {
		t.Errorf("expected last delivery june 1 despite the later fee line, got %v", b.LastDelivery)
	}
}

// =============================================================================
// ORDER INDEPENDENCE
// =============================================================================

func TestBalance_OrderIndependence(t *testing.T) {
	out := mv(ledger.MovementOut, 3, decPtr("68"), decPtr("30"), 1)
	out.Items = equipment.Counts{equipment.Tap: 1, equipment.Cups: 100}
	in := mv(ledger.MovementIn, 1, nil, decPtr("30"), 8)
	defect := mv(ledger.MovementDefect, 1, nil, nil, 12)
	full := mv(ledger.MovementFull, 1, nil, nil, 15)

	forward := []ledger.Movement{out, in, defect, full}
	scrambled := []ledger.Movement{full, in, out, defect}

	a := ledger.ComputeBalance("c-1", forward, blondeRefs())
	b := ledger.ComputeBalance("c-1", scrambled, blondeRefs())

	if a.Kegs != b.Kegs {
		t.Errorf("keg counts diverge: %d vs %d", a.Kegs, b.Kegs)
	}
	if !a.BeerBilled.Equal(b.BeerBilled) {
		t.Errorf("beer billed diverges: %s vs %s", a.BeerBilled, b.BeerBilled)
	}
	if !a.DepositHeld.Equal(b.DepositHeld) {
		t.Errorf("deposit diverges: %s vs %s", a.DepositHeld, b.DepositHeld)
	}
	if a.Equipment[equipment.Cups] != b.Equipment[equipment.Cups] {
		t.Errorf("cup counts diverge: %d vs %d", a.Equipment[equipment.Cups], b.Equipment[equipment.Cups])
	}
	if !a.LastDelivery.Equal(*b.LastDelivery) || !a.LastReturn.Equal(*b.LastReturn) {
		t.Errorf("dates diverge: %v/%v vs %v/%v", a.LastDelivery, a.LastReturn, b.LastDelivery, b.LastReturn)
	}
}
