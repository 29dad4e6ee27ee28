/*
store.go - Persistence interface for catalog reference data

Lookups return (nil, nil) when the record does not exist; callers
decide whether absence is an error. Implemented by store/sqlite and
store/postgres.
*/
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store handles persistence of products and variants.
type Store interface {
	// SaveProduct inserts a product. Names are unique case-insensitively.
	SaveProduct(ctx context.Context, p Product) error

	// GetProduct returns a product by id, or (nil, nil) if absent.
	GetProduct(ctx context.Context, id ProductID) (*Product, error)

	// GetProductByName matches a product name case-insensitively.
	GetProductByName(ctx context.Context, name string) (*Product, error)

	// ListProducts returns all products ordered by name.
	ListProducts(ctx context.Context) ([]Product, error)

	// SaveVariant inserts a variant. (product, size) pairs are unique.
	SaveVariant(ctx context.Context, v Variant) error

	// GetVariant returns a variant by id, or (nil, nil) if absent.
	GetVariant(ctx context.Context, id VariantID) (*Variant, error)

	// GetVariantBySize returns the variant of a product with the given
	// size, or (nil, nil) if absent.
	GetVariantBySize(ctx context.Context, productID ProductID, sizeL int) (*Variant, error)

	// ListVariants returns all variants.
	ListVariants(ctx context.Context) ([]Variant, error)

	// UpdateVariantPrice replaces a variant's catalog price.
	UpdateVariantPrice(ctx context.Context, id VariantID, price *decimal.Decimal) error
}
