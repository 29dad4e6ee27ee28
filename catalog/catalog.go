/*
Package catalog holds the product reference data movements point at.

PURPOSE:
  A Product is a named line ("Coreff Blonde", "Cidre Brut", or a
  service line like "cup-wash"). A Variant is the sellable unit of a
  product: a keg size in liters plus an optional catalog price. Every
  movement in the ledger references exactly one Variant.

KEY INVARIANTS:
  - Product names are unique case-insensitively.
  - (product, size) pairs are unique.
  - Size 0 marks a non-physical service line (fees, equipment-only
    entries). Service variants never appear in depot stock views.
  - A nil catalog price means "price decided at movement time".

SEE ALSO:
  - store.go: persistence interface
  - ledger package: write-time price defaulting against this catalog
*/
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductID string
type VariantID string

var (
	// ErrEmptyProductName is returned when a product name is blank.
	ErrEmptyProductName = errors.New("product name is empty")

	// ErrNegativeSize is returned for a variant size below zero.
	ErrNegativeSize = errors.New("variant size cannot be negative")
)

// Product is a named beverage or service line.
type Product struct {
	ID        ProductID
	Name      string
	CreatedAt time.Time
}

// Variant is a sellable unit of a product: a size and a price.
type Variant struct {
	ID        VariantID
	ProductID ProductID
	SizeL     int
	Price     *decimal.Decimal
	CreatedAt time.Time
}

// IsService reports whether the variant is a non-physical placeholder
// line (size 0). Service variants carry fees or equipment-only
// movements and are excluded from keg counts and stock views.
func (v Variant) IsService() bool {
	return v.SizeL == 0
}

// FindOrCreateVariant resolves (product name, size) to a variant,
// creating the product and variant as needed. The name match is
// case-insensitive; the stored name keeps the first writer's casing.
// A non-nil price that differs from the stored catalog price updates
// the catalog. Already-recorded movements are unaffected because OUT
// prices are baked in at write time.
func FindOrCreateVariant(ctx context.Context, store Store, productName string, sizeL int, price *decimal.Decimal) (*Variant, error) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, ErrEmptyProductName
	}
	if sizeL < 0 {
		return nil, ErrNegativeSize
	}

	product, err := store.GetProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if product == nil {
		product = &Product{
			ID:        ProductID(uuid.NewString()),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.SaveProduct(ctx, *product); err != nil {
			return nil, err
		}
	}

	variant, err := store.GetVariantBySize(ctx, product.ID, sizeL)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		variant = &Variant{
			ID:        VariantID(uuid.NewString()),
			ProductID: product.ID,
			SizeL:     sizeL,
			Price:     price,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.SaveVariant(ctx, *variant); err != nil {
			return nil, err
		}
		return variant, nil
	}

	if price != nil && (variant.Price == nil || !variant.Price.Equal(*price)) {
		if err := store.UpdateVariantPrice(ctx, variant.ID, price); err != nil {
			return nil, err
		}
		variant.Price = price
	}

	return variant, nil
}
