/*
inventory.go - Depot stock tracking and reorder alerts

PURPOSE:
  Keeps the per-variant count of full kegs on the depot shelf and
  raises alerts when a variant drops under its reorder threshold.
  Movement writes adjust the counters through the ledger; this package
  owns the read side and the manual corrections.

STOCK IS ADVISORY:
  The counter may go negative. The last stocktake can be stale, a
  delivery can be typed before the pallet arrives; negative stock is a
  monitoring signal for a human, never a blocking constraint. Nothing
  here refuses a write over stock levels.

WHAT COUNTS AS STOCK:
  Only physical keg variants. Size-0 service variants (cup fees,
  equipment placeholders) never appear in the stock view or the
  alerts.
*/
package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
)

// ErrUnknownVariant is returned when a stock operation references a
// variant the catalog does not know.
var ErrUnknownVariant = errors.New("unknown variant")

// =============================================================================
// READ MODELS
// =============================================================================

// StockItem is one row of the depot stock view.
type StockItem struct {
	Product catalog.Product
	Variant catalog.Variant
	OnHand  int

	// MinQty is the reorder threshold, 0 when no rule is set.
	MinQty  int
	HasRule bool
}

// Alert flags a variant under its reorder threshold.
type Alert struct {
	StockItem

	// Shortfall is how many kegs are missing to reach the threshold.
	Shortfall int
}

// =============================================================================
// SERVICE
// =============================================================================

// Service joins stock counters, reorder rules and the catalog into
// the depot views.
type Service struct {
	store   Store
	catalog catalog.Store
}

func NewService(store Store, cat catalog.Store) *Service {
	return &Service{store: store, catalog: cat}
}

// StockItems returns the depot stock view, one row per physical keg
// variant, ordered by product name then size.
func (s *Service) StockItems(ctx context.Context) ([]StockItem, error) {
	variants, err := s.catalog.ListVariants(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productIndex(ctx)
	if err != nil {
		return nil, err
	}
	stock, err := s.store.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]StockItem, 0, len(variants))
	for _, v := range variants {
		if v.IsService() {
			continue
		}
		minQty, hasRule := rules[v.ID]
		items = append(items, StockItem{
			Product: products[v.ProductID],
			Variant: v,
			OnHand:  stock[v.ID],
			MinQty:  minQty,
			HasRule: hasRule,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Product.Name != b.Product.Name {
			return strings.ToLower(a.Product.Name) < strings.ToLower(b.Product.Name)
		}
		return a.Variant.SizeL < b.Variant.SizeL
	})
	return items, nil
}

// Alerts returns the stock rows sitting under their reorder
// threshold, with the shortfall to order.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	items, err := s.StockItems(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []Alert
	for _, item := range items {
		if !item.HasRule || item.OnHand >= item.MinQty {
			continue
		}
		alerts = append(alerts, Alert{
			StockItem: item,
			Shortfall: item.MinQty - item.OnHand,
		})
	}
	return alerts, nil
}

// SetRule sets a variant's reorder threshold. A threshold of 0 still
// alerts on negative stock.
func (s *Service) SetRule(ctx context.Context, id catalog.VariantID, minQty int) error {
	if err := s.checkVariant(ctx, id); err != nil {
		return err
	}
	return s.store.SetRule(ctx, id, minQty)
}

// SetStock overwrites a variant's counter after a physical stocktake.
func (s *Service) SetStock(ctx context.Context, id catalog.VariantID, qty int) error {
	if err := s.checkVariant(ctx, id); err != nil {
		return err
	}
	return s.store.SetStock(ctx, id, qty)
}

// Stock returns one variant's counter.
func (s *Service) Stock(ctx context.Context, id catalog.VariantID) (int, error) {
	if err := s.checkVariant(ctx, id); err != nil {
		return 0, err
	}
	return s.store.GetStock(ctx, id)
}

func (s *Service) checkVariant(ctx context.Context, id catalog.VariantID) error {
	v, err := s.catalog.GetVariant(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrUnknownVariant
	}
	return nil
}

func (s *Service) productIndex(ctx context.Context) (map[catalog.ProductID]catalog.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[catalog.ProductID]catalog.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index, nil
}
