package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// =============================================================================
// FIND OR CREATE
// =============================================================================

func TestFindOrCreateVariant_CreatesProductAndVariant(t *testing.T) {
	// GIVEN: an empty catalog
	ctx := context.Background()
	store := newTestStore(t)

	// WHEN: a movement references a size nobody cataloged yet
	v, err := catalog.FindOrCreateVariant(ctx, store, "Blonde", 20, price("68"))
	require.NoError(t, err)

	// THEN: product and variant exist with the price attached
	assert.Equal(t, 20, v.SizeL)
	require.NotNil(t, v.Price)
	assert.True(t, v.Price.Equal(decimal.RequireFromString("68")))

	p, err := store.GetProduct(ctx, v.ProductID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Blonde", p.Name)
}

func TestFindOrCreateVariant_MatchesProductCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := catalog.FindOrCreateVariant(ctx, store, "Blonde", 20, price("68"))
	require.NoError(t, err)

	// "blonde" on the delivery form is the same beer.
	second, err := catalog.FindOrCreateVariant(ctx, store, "blonde", 30, price("92"))
	require.NoError(t, err)
	assert.Equal(t, first.ProductID, second.ProductID)
	assert.NotEqual(t, first.ID, second.ID)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestFindOrCreateVariant_ReturnsExistingVariant(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := catalog.FindOrCreateVariant(ctx, store, "Blonde", 20, price("68"))
	require.NoError(t, err)
	second, err := catalog.FindOrCreateVariant(ctx, store, "Blonde", 20, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Price, "a nil price leaves the catalog price alone")
	assert.True(t, second.Price.Equal(decimal.RequireFromString("68")))
}

func TestFindOrCreateVariant_UpdatesPriceWhenItChanges(t *testing.T) {
	// GIVEN: Blonde 20L cataloged at 68
	ctx := context.Background()
	store := newTestStore(t)
	first, err := catalog.FindOrCreateVariant(ctx, store, "Blonde", 20, price("68"))
	require.NoError(t, err)

	// WHEN: a delivery comes in at 75
	updated, err := catalog.FindOrCreateVariant(ctx, store, "Blonde", 20, price("75"))
	require.NoError(t, err)

	// THEN: the catalog follows the latest delivery price
	assert.Equal(t, first.ID, updated.ID)
	require.NotNil(t, updated.Price)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("75")))

	stored, err := store.GetVariant(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Price)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("75")))
}

func TestFindOrCreateVariant_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := catalog.FindOrCreateVariant(ctx, store, "   ", 20, nil)
	assert.ErrorIs(t, err, catalog.ErrEmptyProductName)

	_, err = catalog.FindOrCreateVariant(ctx, store, "Blonde", -1, nil)
	assert.ErrorIs(t, err, catalog.ErrNegativeSize)

	// Leading and trailing spaces on the form are not a new beer.
	v, err := catalog.FindOrCreateVariant(ctx, store, "  Blonde  ", 20, price("68"))
	require.NoError(t, err)
	p, err := store.GetProduct(ctx, v.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "Blonde", p.Name)
}
