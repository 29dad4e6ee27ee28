/*
store.go - Persistence interface for stock counters and reorder rules

The movement-driven adjustments go through the ledger store; this
interface covers reads, stocktake overrides and thresholds.
*/
package inventory

import (
	"context"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
)

// Store persists depot stock counters and reorder rules.
type Store interface {
	// GetStock returns a variant's counter, 0 when no row exists.
	GetStock(ctx context.Context, id catalog.VariantID) (int, error)

	// ListStock returns every existing counter.
	ListStock(ctx context.Context) (map[catalog.VariantID]int, error)

	// SetStock upserts a variant's counter to an absolute value.
	SetStock(ctx context.Context, id catalog.VariantID, qty int) error

	// ListRules returns every reorder threshold. Presence in the map
	// means a rule exists, whatever its value.
	ListRules(ctx context.Context) (map[catalog.VariantID]int, error)

	// SetRule upserts a variant's reorder threshold.
	SetRule(ctx context.Context, id catalog.VariantID, minQty int) error
}
