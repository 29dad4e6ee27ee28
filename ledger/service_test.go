package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*ledger.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := ledger.NewService(store, store, store, ledger.DefaultFees())
	return svc, store
}

func newTestClient(t *testing.T, svc *ledger.Service, name string) ledger.Client {
	client, err := svc.CreateClient(context.Background(), name, "")
	require.NoError(t, err)
	return *client
}

func newBlondeVariant(t *testing.T, store *sqlite.Store) catalog.Variant {
	variant, err := catalog.FindOrCreateVariant(context.Background(), store, "Blonde", 20, decPtr("68"))
	require.NoError(t, err)
	return *variant
}

func stockOf(t *testing.T, store *sqlite.Store, id catalog.VariantID) int {
	qty, err := store.GetStock(context.Background(), id)
	require.NoError(t, err)
	return qty
}

// =============================================================================
// WRITE-TIME DEFAULTING
// =============================================================================

func TestRecord_OutBakesCatalogPriceAndDefaultDeposit(t *testing.T) {
	// GIVEN: a cataloged variant at 68 and the standard 30 deposit
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)

	// WHEN: a delivery is recorded with no explicit price or deposit
	m, err := svc.Record(ctx, ledger.RecordInput{
		Type:      ledger.MovementOut,
		ClientID:  client.ID,
		VariantID: variant.ID,
		Qty:       2,
		At:        june(1),
	})
	require.NoError(t, err)

	// THEN: both values are baked into the stored row
	require.NotNil(t, m.UnitPrice)
	assert.True(t, m.UnitPrice.Equal(dec("68")))
	require.NotNil(t, m.Deposit)
	assert.True(t, m.Deposit.Equal(dec("30")))

	// AND: a later catalog price change does not move the card
	require.NoError(t, store.UpdateVariantPrice(ctx, variant.ID, decPtr("75")))
	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, card.Balance.Kegs)
	assert.True(t, card.Balance.BeerBilled.Equal(dec("136")),
		"expected billing at the baked 68, got %s", card.Balance.BeerBilled)
	assert.True(t, card.Balance.DepositHeld.Equal(dec("60")))
}

func TestRecord_InDefaultsDepositAndReversesIt(t *testing.T) {
	// GIVEN: two kegs delivered at the default deposit
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)

	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 2, At: june(1),
	})
	require.NoError(t, err)

	// WHEN: one comes back empty, deposit unspecified
	in, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID, Qty: 1, At: june(8),
	})
	require.NoError(t, err)

	// THEN: the return leg baked in the default and reversed 30
	require.NotNil(t, in.Deposit)
	assert.True(t, in.Deposit.Equal(dec("30")))

	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, card.Balance.Kegs)
	assert.True(t, card.Balance.DepositHeld.Equal(dec("30")),
		"expected 30 deposit in play, got %s", card.Balance.DepositHeld)
	assert.True(t, card.Balance.BeerBilled.Equal(dec("136")),
		"an empty-keg return never refunds beer")
}

func TestRecord_DefectStoresNilDeposit(t *testing.T) {
	// GIVEN: one keg out at 68/30
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)

	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 1, At: june(1),
	})
	require.NoError(t, err)

	// WHEN: it comes back as defective, nothing specified
	defect, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementDefect, ClientID: client.ID, VariantID: variant.ID, Qty: 1, At: june(5),
	})
	require.NoError(t, err)

	// THEN: the defect leg keeps nils; beer refunds at catalog price,
	// the deposit stays in play because none was supplied on this leg
	assert.Nil(t, defect.UnitPrice)
	assert.Nil(t, defect.Deposit)

	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Balance.Kegs)
	assert.True(t, card.Balance.BeerBilled.Equal(dec("0")),
		"expected 0 (68 - 68), got %s", card.Balance.BeerBilled)
	assert.True(t, card.Balance.DepositHeld.Equal(dec("30")),
		"expected the unreversed 30, got %s", card.Balance.DepositHeld)
}

// =============================================================================
// VALIDATION AND GUARDS
// =============================================================================

func TestRecord_RejectsMalformedInput(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)

	cases := []struct {
		name string
		in   ledger.RecordInput
	}{
		{"unknown type", ledger.RecordInput{Type: "LOST", ClientID: client.ID, VariantID: variant.ID, Qty: 1}},
		{"negative quantity", ledger.RecordInput{Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: -1}},
		{"zero quantity on a keg variant", ledger.RecordInput{Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 0}},
		{"negative price", ledger.RecordInput{Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 1, UnitPrice: decPtr("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tc.in)
			assert.ErrorIs(t, err, ledger.ErrValidation)
		})
	}

	t.Run("unknown client", func(t *testing.T) {
		_, err := svc.Record(ctx, ledger.RecordInput{
			Type: ledger.MovementOut, ClientID: "nope", VariantID: variant.ID, Qty: 1,
		})
		assert.True(t, ledger.IsNotFound(err))
	})
	t.Run("unknown variant", func(t *testing.T) {
		_, err := svc.Record(ctx, ledger.RecordInput{
			Type: ledger.MovementOut, ClientID: client.ID, VariantID: "nope", Qty: 1,
		})
		assert.True(t, ledger.IsNotFound(err))
	})
}

func TestRecord_ArchivedClientRefused(t *testing.T) {
	// GIVEN: an archived account
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)
	require.NoError(t, svc.ArchiveClient(ctx, client.ID))

	// WHEN: someone tries to deliver to it
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 1,
	})

	// THEN: the write is refused, history stays readable
	assert.ErrorIs(t, err, ledger.ErrClientArchived)
	movements, err := svc.History(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestRecord_OverReturnRejected(t *testing.T) {
	// GIVEN: the client holds two kegs
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 2, At: june(1),
	})
	require.NoError(t, err)

	// WHEN: a return claims three
	_, err = svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID, Qty: 3, At: june(8),
	})

	// THEN: hard rejection, nothing written
	require.ErrorIs(t, err, ledger.ErrExcessReturn)
	var excess *ledger.ExcessReturnError
	require.ErrorAs(t, err, &excess)
	assert.Equal(t, 2, excess.Held)
	assert.Equal(t, 3, excess.Returned)

	movements, err := svc.History(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

// =============================================================================
// DEPOT STOCK
// =============================================================================

func TestRecord_StockMovesOnOutAndFullOnly(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)

	// Delivery empties the depot shelf.
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 3, At: june(1),
	})
	require.NoError(t, err)
	assert.Equal(t, -3, stockOf(t, store, variant.ID), "depot stock may go negative, it is advisory")

	// An empty return is not resellable inventory.
	_, err = svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID, Qty: 1, At: june(5),
	})
	require.NoError(t, err)
	assert.Equal(t, -3, stockOf(t, store, variant.ID))

	// A defective keg is not resellable either.
	_, err = svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementDefect, ClientID: client.ID, VariantID: variant.ID, Qty: 1, At: june(6),
	})
	require.NoError(t, err)
	assert.Equal(t, -3, stockOf(t, store, variant.ID))

	// A still-full keg goes straight back on the shelf.
	_, err = svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementFull, ClientID: client.ID, VariantID: variant.ID, Qty: 1, At: june(7),
	})
	require.NoError(t, err)
	assert.Equal(t, -2, stockOf(t, store, variant.ID))
}

// =============================================================================
// DELETION
// =============================================================================

func TestDelete_RestoresStockAndBalance(t *testing.T) {
	// GIVEN: a recorded delivery
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)
	m, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID, Qty: 2, At: june(1),
	})
	require.NoError(t, err)
	require.Equal(t, -2, stockOf(t, store, variant.ID))

	// WHEN: it is deleted
	require.NoError(t, svc.Delete(ctx, m.ID))

	// THEN: the books read as if it never happened
	assert.Equal(t, 0, stockOf(t, store, variant.ID))
	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Balance.Kegs)
	assert.True(t, card.Balance.BeerBilled.Equal(dec("0")))
	assert.True(t, card.Balance.DepositHeld.Equal(dec("0")))
	assert.Nil(t, card.Balance.LastDelivery)

	// AND: deleting again reports not found
	assert.True(t, ledger.IsNotFound(svc.Delete(ctx, m.ID)))
}

// =============================================================================
// DRAFTS
// =============================================================================

func TestCommit_MultiLineAllOrNothing(t *testing.T) {
	// GIVEN: a client holding nothing
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	variant := newBlondeVariant(t, store)

	// WHEN: a return draft has a valid-looking second line that
	// exceeds the held count
	_, err := svc.Commit(ctx, ledger.Draft{
		Type:     ledger.MovementOut,
		ClientID: client.ID,
		At:       june(1),
		Lines: []ledger.DraftLine{
			{ProductName: "Blonde", SizeL: 20, Qty: 2},
		},
	})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, ledger.Draft{
		Type:     ledger.MovementIn,
		ClientID: client.ID,
		At:       june(8),
		Lines: []ledger.DraftLine{
			{ProductName: "Blonde", SizeL: 20, Qty: 1},
			{ProductName: "Blonde", SizeL: 20, Qty: 2},
		},
	})

	// THEN: the whole draft fails with the offending line named and
	// nothing is written
	require.ErrorIs(t, err, ledger.ErrExcessReturn)
	var draftErr *ledger.DraftError
	require.ErrorAs(t, err, &draftErr)
	assert.Equal(t, 1, draftErr.Line)

	movements, err := svc.History(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "only the delivery draft persisted")
	assert.Equal(t, -2, stockOf(t, store, variant.ID))
}

func TestCommit_LinesApplyInOrder(t *testing.T) {
	// GIVEN: three kegs out
	ctx := context.Background()
	svc, _ := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")
	_, err := svc.Commit(ctx, ledger.Draft{
		Type:     ledger.MovementOut,
		ClientID: client.ID,
		At:       june(1),
		Lines:    []ledger.DraftLine{{ProductName: "Blonde", SizeL: 20, Qty: 3}},
	})
	require.NoError(t, err)

	// WHEN: a return draft splits them across two lines
	movements, err := svc.Commit(ctx, ledger.Draft{
		Type:     ledger.MovementIn,
		ClientID: client.ID,
		At:       june(8),
		Lines: []ledger.DraftLine{
			{ProductName: "Blonde", SizeL: 20, Qty: 2},
			{ProductName: "Blonde", SizeL: 20, Qty: 1},
		},
	})

	// THEN: the second line sees the first one's effect and passes
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Balance.Kegs)
}

func TestCommit_EquipmentOnlyLine(t *testing.T) {
	// GIVEN: a visit that only drops off gear, no kegs
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Le Comptoir")

	// WHEN: recorded as a zero-quantity line on a size-0 placeholder
	movements, err := svc.Commit(ctx, ledger.Draft{
		Type:     ledger.MovementOut,
		ClientID: client.ID,
		At:       june(1),
		Lines: []ledger.DraftLine{
			{ProductName: "equipment", SizeL: 0, Qty: 0, Note: "fête du bourg | tap=1;tent=1"},
		},
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)

	// THEN: equipment is on loan, no kegs, no stock touched
	assert.Equal(t, "fête du bourg", movements[0].Note)
	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Balance.Kegs)
	assert.Equal(t, 1, card.Balance.Equipment[equipment.Tap])
	assert.Equal(t, 1, card.Balance.Equipment[equipment.Tent])
	assert.Equal(t, 0, stockOf(t, store, movements[0].VariantID))
}

// =============================================================================
// CUP SETTLEMENT
// =============================================================================

func TestCupSettlement_SplitsWashAndLoss(t *testing.T) {
	// GIVEN: a delivery with 200 cups on loan
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Comité des Fêtes")
	variant := newBlondeVariant(t, store)
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(1), Note: "fête | cups=200",
	})
	require.NoError(t, err)

	// WHEN: the return form says 180 came back
	in, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(8), Note: "retour | cups=180",
	})
	require.NoError(t, err)

	// THEN: the return is stored with the full settled count of 200
	assert.Equal(t, 200, in.Items[equipment.Cups])

	// AND: two fee movements hang off it, wash 180 and loss 20
	fees, err := store.MovementsByOrigin(ctx, in.ID)
	require.NoError(t, err)
	require.Len(t, fees, 2)
	for _, fee := range fees {
		assert.Equal(t, ledger.MovementOut, fee.Type)
		assert.Equal(t, in.ID, fee.OriginID)
		assert.True(t, fee.OccurredAt.Equal(in.OccurredAt))
		require.NotNil(t, fee.UnitPrice)
		switch fee.Qty {
		case 180:
			assert.True(t, fee.UnitPrice.Equal(dec("0.15")), "wash fee at 0.15/cup")
		case 20:
			assert.True(t, fee.UnitPrice.Equal(dec("1")), "loss fee at 1.00/cup")
		default:
			t.Errorf("unexpected fee quantity %d", fee.Qty)
		}
	}

	// AND: the cup loan closes out and the fees hit the bill
	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Balance.CupsHeld())
	assert.Equal(t, 1, card.Balance.Kegs, "fee lines never count as kegs")
	assert.True(t, card.Balance.BeerBilled.Equal(dec("115")),
		"68 beer + 27 wash + 20 loss, got %s", card.Balance.BeerBilled)
}

func TestCupSettlement_ClampsToHeld(t *testing.T) {
	// GIVEN: 50 cups on loan
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Comité des Fêtes")
	variant := newBlondeVariant(t, store)
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(1), Note: "cups=50",
	})
	require.NoError(t, err)

	// WHEN: the form claims 80 came back
	in, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(8), Note: "cups=80",
	})
	require.NoError(t, err)

	// THEN: the settlement clamps to 50, all wash, no loss
	assert.Equal(t, 50, in.Items[equipment.Cups])
	fees, err := store.MovementsByOrigin(ctx, in.ID)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, 50, fees[0].Qty)
	assert.True(t, fees[0].UnitPrice.Equal(dec("0.15")))

	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Balance.CupsHeld())
}

func TestCupSettlement_OnlyRunsWhenCupsAreOnTheForm(t *testing.T) {
	// GIVEN: 100 cups on loan
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Comité des Fêtes")
	variant := newBlondeVariant(t, store)
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID,
		Qty: 2, At: june(1), Note: "cups=100",
	})
	require.NoError(t, err)

	// WHEN: a keg comes back with no cups mentioned
	in, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(8), Note: "juste un fût",
	})
	require.NoError(t, err)

	// THEN: no settlement, the loan stays open
	fees, err := store.MovementsByOrigin(ctx, in.ID)
	require.NoError(t, err)
	assert.Empty(t, fees)

	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, card.Balance.CupsHeld())
}

func TestDelete_CascadesToCupFees(t *testing.T) {
	// GIVEN: a settled cup return with its two fee movements
	ctx := context.Background()
	svc, store := newTestLedger(t)
	client := newTestClient(t, svc, "Comité des Fêtes")
	variant := newBlondeVariant(t, store)
	_, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementOut, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(1), Note: "cups=200",
	})
	require.NoError(t, err)
	in, err := svc.Record(ctx, ledger.RecordInput{
		Type: ledger.MovementIn, ClientID: client.ID, VariantID: variant.ID,
		Qty: 1, At: june(8), Note: "cups=180",
	})
	require.NoError(t, err)

	// WHEN: the return is deleted
	require.NoError(t, svc.Delete(ctx, in.ID))

	// THEN: the fees go with it and the loan reopens in full
	movements, err := svc.History(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, ledger.MovementOut, movements[0].Type)

	card, err := svc.ClientCard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, card.Balance.CupsHeld())
	assert.True(t, card.Balance.BeerBilled.Equal(dec("68")),
		"fees reversed with their origin, got %s", card.Balance.BeerBilled)
}

// =============================================================================
// CLIENT ACCOUNTS AND THE INDEX
// =============================================================================

func TestClients_ActiveNamesAreUnique(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLedger(t)

	first := newTestClient(t, svc, "Le Comptoir")

	// A second active account with the same name is refused.
	_, err := svc.CreateClient(ctx, "Le Comptoir", "")
	assert.ErrorIs(t, err, ledger.ErrDuplicateName)

	// Archiving frees the name for a fresh account.
	require.NoError(t, svc.ArchiveClient(ctx, first.ID))
	reopened, err := svc.CreateClient(ctx, "Le Comptoir", "bar@example.org")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, reopened.ID)
}

func TestIndexCards_ArchivedClientsDropOff(t *testing.T) {
	// GIVEN: two clients with deliveries
	ctx := context.Background()
	svc, store := newTestLedger(t)
	variant := newBlondeVariant(t, store)
	active := newTestClient(t, svc, "Le Comptoir")
	closed := newTestClient(t, svc, "Chez Yann")
	for _, c := range []ledger.Client{active, closed} {
		_, err := svc.Record(ctx, ledger.RecordInput{
			Type: ledger.MovementOut, ClientID: c.ID, VariantID: variant.ID, Qty: 2, At: june(1),
		})
		require.NoError(t, err)
	}

	// WHEN: one account is archived
	require.NoError(t, svc.ArchiveClient(ctx, closed.ID))

	// THEN: the index shows the active card and totals cover it alone
	cards, totals, err := svc.IndexCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, active.ID, cards[0].Client.ID)
	assert.Equal(t, 1, totals.Clients)
	assert.Equal(t, 2, totals.Kegs)
	assert.True(t, totals.BeerBilled.Equal(dec("136")))
	assert.True(t, totals.DepositHeld.Equal(dec("60")))

	// AND: the archived history remains reachable directly
	card, err := svc.ClientCard(ctx, closed.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, card.Balance.Kegs)
}
