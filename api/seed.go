/*
seed.go - Demo dataset

PURPOSE:
  POST /api/admin/seed loads the default clients, catalog and reorder
  thresholds into an empty database, so a fresh install has something
  to click on. With ?force=1 (and a wired Resetter) it wipes the
  database first.

  The seed only ever writes into an empty database; it never merges
  into live data.

SEE ALSO:
  - handlers.go: Handler and error mapping
*/
package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
)

// =============================================================================
// DEMO DATA
// =============================================================================

var demoClients = []string{
	"Landerneau Football Club",
	"Maison Michel",
	"Ploudiry / Sizun Handball",
}

var demoCatalog = []struct {
	product string
	sizes   []int
}{
	{"Coreff Blonde", []int{20, 30}},
	{"Coreff Blonde Bio", []int{20}},
	{"Coreff Rousse", []int{20}},
	{"Coreff Ambrée", []int{22}},
}

var demoRules = []struct {
	product string
	sizeL   int
	minQty  int
}{
	{"Coreff Blonde", 30, 5},
	{"Coreff Blonde", 20, 2},
}

// =============================================================================
// SEED HANDLER
// =============================================================================

// SeedDemo loads the demo dataset into an empty database.
// POST /api/admin/seed?force=1
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if queryFlag(r, "force") {
		if h.Resetter == nil {
			writeError(w, http.StatusForbidden, "Reset is not enabled", nil)
			return
		}
		if err := h.Resetter.Reset(ctx); err != nil {
			h.respondError(w, "Failed to reset database", err)
			return
		}
		h.Log.Warn("database reset before seeding")
	}

	seeded, err := h.seedIfEmpty(ctx)
	if err != nil {
		h.respondError(w, "Failed to seed database", err)
		return
	}
	if !seeded {
		writeError(w, http.StatusConflict, "Database is not empty",
			errors.New("pass ?force=1 to reset and reseed"))
		return
	}

	h.Log.Info("demo data seeded",
		zap.Int("clients", len(demoClients)),
		zap.Int("products", len(demoCatalog)))
	writeJSON(w, http.StatusOK, map[string]any{"seeded": true})
}

// seedIfEmpty writes the demo dataset and reports whether it did.
func (h *Handler) seedIfEmpty(ctx context.Context) (bool, error) {
	clients, err := h.Ledger.Clients(ctx, true)
	if err != nil {
		return false, err
	}
	products, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		return false, err
	}
	if len(clients) > 0 || len(products) > 0 {
		return false, nil
	}

	for _, name := range demoClients {
		if _, err := h.Ledger.CreateClient(ctx, name, ""); err != nil {
			return false, err
		}
	}

	// Prices stay open; the catalog price is set by the first priced
	// delivery of each variant.
	for _, entry := range demoCatalog {
		for _, size := range entry.sizes {
			if _, err := catalog.FindOrCreateVariant(ctx, h.Catalog, entry.product, size, nil); err != nil {
				return false, err
			}
		}
	}

	for _, rule := range demoRules {
		variant, err := catalog.FindOrCreateVariant(ctx, h.Catalog, rule.product, rule.sizeL, nil)
		if err != nil {
			return false, err
		}
		if err := h.Inventory.SetRule(ctx, variant.ID, rule.minQty); err != nil {
			return false, err
		}
	}

	// The cup fee lines, so they show up in the catalog with their
	// standard prices before the first settlement.
	fees := h.Ledger.Fees()
	washFee := fees.CupWash
	if _, err := catalog.FindOrCreateVariant(ctx, h.Catalog, ledger.CupWashProduct, 0, &washFee); err != nil {
		return false, err
	}
	lossFee := fees.CupLoss
	if _, err := catalog.FindOrCreateVariant(ctx, h.Catalog, ledger.CupLossProduct, 0, &lossFee); err != nil {
		return false, err
	}

	return true, nil
}
