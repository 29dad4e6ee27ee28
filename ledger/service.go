/*
service.go - Movement recording, drafts, deletion and index cards

PURPOSE:
  Orchestrates every write against the rental books and assembles the
  read models the back office lives on. This is where write-time
  defaulting, cup settlement and the over-return guard happen; the
  stores below stay dumb and the balance fold stays pure.

WRITE PIPELINE (Record and Commit share it):
  ┌────────────────────────────────────────────────────────────────┐
  │                                                                │
  │  Resolve client    Resolve variants     One transaction:       │
  │  + reject     ──▶  (lazy catalog   ──▶  fold current balance,  │
  │  archived          creation)            guard over-returns,    │
  │                                         settle cups, append    │
  │                                         movements + fees,      │
  │                                         adjust depot stock     │
  │                                                                │
  └────────────────────────────────────────────────────────────────┘

  Catalog resolution runs before the transaction opens: products and
  variants are reference data, and a row created for a draft that
  later fails is harmless. Everything that touches the books runs
  inside WithTx.

WRITE-TIME DEFAULTING:
  An OUT line without an explicit price gets the variant's catalog
  price baked in. The schedule deposit is baked into OUT and IN lines
  recorded without one: delivery charges it, the plain empty return
  refunds it at the same rate. DEFECT and FULL keep nil deposits as
  nil. The stored row is the contract; deleting it later reverses what
  was stored, never a recomputation.

CUP SETTLEMENT:
  An IN or DEFECT whose note carries a cups count closes out the
  client's whole cup loan. With H cups held and R typed on the form,
  min(R, H) come back for washing and H − min(R, H) are lost. Both
  quantities become synthetic OUT movements on the size-0 fee
  variants, linked to the return through origin_id, and the return
  itself is stored with cup count H so the loan always lands on zero.
  Typing more cups than held just settles at H; cups clamp where kegs
  hard-reject.

OVER-RETURN GUARD:
  Returning more kegs of a variant than the client holds is refused
  with ExcessReturnError. Draft lines apply in order against a running
  position, so a draft can deliver and take back in one visit.

SEE ALSO:
  - balance.go: the pure fold behind every card
  - draft.go:   the multi-line input shape
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service owns all writes to the movement books and the read models
// built from them.
type Service struct {
	store   TxStore
	clients ClientStore
	catalog catalog.Store
	fees    FeeSchedule
}

// NewService wires the ledger together. The three stores usually sit
// on the same database; the split keeps this package honest about
// what it touches.
func NewService(store TxStore, clients ClientStore, cat catalog.Store, fees FeeSchedule) *Service {
	return &Service{store: store, clients: clients, catalog: cat, fees: fees}
}

// Fees returns the tariff schedule the service applies.
func (s *Service) Fees() FeeSchedule {
	return s.fees
}

// =============================================================================
// RECORDING - single movements and drafts
// =============================================================================

// RecordInput identifies one movement by variant id, for callers that
// already know the catalog row. Optional fields follow the defaulting
// rules described in the file header.
type RecordInput struct {
	Type      MovementType
	ClientID  ClientID
	VariantID catalog.VariantID
	Qty       int
	UnitPrice *decimal.Decimal
	Deposit   *decimal.Decimal

	// At is when the movement happened; zero means now.
	At time.Time

	// Note is free text, optionally carrying an equipment block.
	Note string
}

// Record writes one movement. Cup settlements triggered by the note
// still generate their fee movements; the returned movement is the
// one recorded, fees are linked to it through origin_id.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Movement, error) {
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: "unknown movement type " + string(in.Type)}
	}
	if in.ClientID == "" {
		return nil, &ValidationError{Field: "client_id", Reason: "missing"}
	}
	if in.VariantID == "" {
		return nil, &ValidationError{Field: "variant_id", Reason: "missing"}
	}
	if in.Qty < 0 {
		return nil, &ValidationError{Field: "qty", Reason: "negative quantity"}
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, &ValidationError{Field: "unit_price", Reason: "negative price"}
	}
	if in.Deposit != nil && in.Deposit.IsNegative() {
		return nil, &ValidationError{Field: "deposit", Reason: "negative deposit"}
	}

	variant, err := s.catalog.GetVariant(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, &NotFoundError{Kind: "variant", ID: string(in.VariantID)}
	}

	items, comment := equipment.Decode(in.Note)
	lines := []resolvedLine{{
		variant:   *variant,
		qty:       in.Qty,
		unitPrice: in.UnitPrice,
		deposit:   in.Deposit,
		note:      comment,
		items:     items,
	}}

	movements, err := s.commit(ctx, in.Type, in.ClientID, in.At, lines)
	if err != nil {
		// A single-line write has no line numbers worth reporting.
		var de *DraftError
		if errors.As(err, &de) {
			return nil, de.Err
		}
		return nil, err
	}
	return &movements[0], nil
}

// Commit writes a whole draft atomically. On success it returns every
// movement appended, draft lines first, each followed by the fee
// movements its cup settlement produced.
func (s *Service) Commit(ctx context.Context, d Draft) ([]Movement, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	lines := make([]resolvedLine, len(d.Lines))
	for i, line := range d.Lines {
		// Only a delivery price is a catalog price. A one-off price
		// on a return leg must not rewrite the tariff.
		var catalogPrice *decimal.Decimal
		if d.Type == MovementOut {
			catalogPrice = line.UnitPrice
		}
		variant, err := catalog.FindOrCreateVariant(ctx, s.catalog, line.ProductName, line.SizeL, catalogPrice)
		if err != nil {
			return nil, &DraftError{Line: i, Err: err}
		}
		items, comment := equipment.Decode(line.Note)
		lines[i] = resolvedLine{
			variant:   *variant,
			qty:       line.Qty,
			unitPrice: line.UnitPrice,
			deposit:   line.Deposit,
			note:      comment,
			items:     items,
		}
	}

	return s.commit(ctx, d.Type, d.ClientID, d.At, lines)
}

// resolvedLine is a draft line after catalog resolution and note
// decoding: everything commit needs, nothing it has to look up.
type resolvedLine struct {
	variant   catalog.Variant
	qty       int
	unitPrice *decimal.Decimal
	deposit   *decimal.Decimal
	note      string
	items     equipment.Counts
}

// commit is the shared write path. Line errors come back as
// DraftError carrying the zero-based line index.
func (s *Service) commit(ctx context.Context, typ MovementType, clientID ClientID, at time.Time, lines []resolvedLine) ([]Movement, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &NotFoundError{Kind: "client", ID: string(clientID)}
	}
	if client.Archived() {
		return nil, fmt.Errorf("client %s: %w", client.Name, ErrClientArchived)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if at.IsZero() {
		at = now
	} else {
		at = at.UTC().Truncate(time.Second)
	}

	for i, line := range lines {
		if line.qty == 0 && !line.variant.IsService() {
			return nil, &DraftError{Line: i, Err: &ValidationError{
				Field:  "qty",
				Reason: "zero quantity is only valid on size-0 service variants",
			}}
		}
	}

	// Cup fee variants are resolved up front so the transaction below
	// never has to touch the catalog store.
	var washVariant, lossVariant *catalog.Variant
	if typ == MovementIn || typ == MovementDefect {
		for _, line := range lines {
			if !line.items.Has(equipment.Cups) {
				continue
			}
			washFee := s.fees.CupWash
			if washVariant, err = catalog.FindOrCreateVariant(ctx, s.catalog, CupWashProduct, 0, &washFee); err != nil {
				return nil, err
			}
			lossFee := s.fees.CupLoss
			if lossVariant, err = catalog.FindOrCreateVariant(ctx, s.catalog, CupLossProduct, 0, &lossFee); err != nil {
				return nil, err
			}
			break
		}
	}

	var out []Movement
	err = s.store.WithTx(ctx, func(tx Store) error {
		history, err := tx.MovementsByClient(ctx, clientID)
		if err != nil {
			return err
		}

		// Running positions the draft lines apply against, in order.
		// Kegs per variant from the fold; cups unclamped, so a data
		// anomaly cannot inflate a settlement.
		balance := ComputeBalance(clientID, history, nil)
		heldKegs := make(map[catalog.VariantID]int, len(balance.Positions))
		for id, pos := range balance.Positions {
			heldKegs[id] = pos.Kegs
		}
		rawCups := 0
		for _, m := range history {
			n := m.Items[equipment.Cups]
			if m.Type.IsReturn() {
				rawCups -= n
			} else {
				rawCups += n
			}
		}

		out = out[:0]
		for i, line := range lines {
			vid := line.variant.ID

			if typ.IsReturn() && !line.variant.IsService() {
				if line.qty > heldKegs[vid] {
					return &DraftError{Line: i, Err: &ExcessReturnError{
						ClientID:  clientID,
						VariantID: vid,
						Held:      heldKegs[vid],
						Returned:  line.qty,
					}}
				}
				heldKegs[vid] -= line.qty
			} else if typ == MovementOut && !line.variant.IsService() {
				heldKegs[vid] += line.qty
			}

			m := Movement{
				ID:         MovementID(uuid.NewString()),
				Type:       typ,
				ClientID:   clientID,
				VariantID:  vid,
				OccurredAt: at,
				Qty:        line.qty,
				Note:       line.note,
				Items:      line.items,
				CreatedAt:  now,
			}
			switch {
			case typ == MovementOut && line.unitPrice != nil:
				m.UnitPrice = line.unitPrice
			case typ == MovementOut && line.variant.Price != nil:
				price := *line.variant.Price
				m.UnitPrice = &price
			case typ != MovementOut:
				m.UnitPrice = line.unitPrice
			}
			// Deposits are baked in on the legs that move deposit
			// money by default: charged on delivery, refunded on a
			// plain empty return. DEFECT and FULL store exactly what
			// the caller supplied; nil there means no deposit was
			// tracked on that leg.
			if line.deposit == nil && (typ == MovementOut || typ == MovementIn) {
				deposit := s.fees.DefaultDeposit
				m.Deposit = &deposit
			} else {
				m.Deposit = line.deposit
			}

			var fees []Movement
			if (typ == MovementIn || typ == MovementDefect) && line.items.Has(equipment.Cups) {
				held := max(rawCups, 0)
				typed := line.items[equipment.Cups]
				washQty := min(typed, held)
				lossQty := held - washQty

				// The return is stored with the full settled count so
				// the cup loan folds to zero afterwards, whatever was
				// typed on the form.
				m.Items[equipment.Cups] = held
				rawCups -= held

				if washQty > 0 {
					fees = append(fees, s.feeMovement(m, *washVariant, washQty, s.fees.CupWash, "cup wash settlement"))
				}
				if lossQty > 0 {
					fees = append(fees, s.feeMovement(m, *lossVariant, lossQty, s.fees.CupLoss, "cup loss settlement"))
				}
			} else if n := line.items[equipment.Cups]; n > 0 {
				if typ.IsReturn() {
					rawCups -= n
				} else {
					rawCups += n
				}
			}

			if err := tx.AppendMovement(ctx, m); err != nil {
				return err
			}
			if delta := m.StockDelta(); delta != 0 && !line.variant.IsService() {
				if err := tx.AdjustStock(ctx, vid, delta); err != nil {
					return err
				}
			}
			out = append(out, m)

			for _, fee := range fees {
				// Fee variants are size-0, so no stock to adjust.
				if err := tx.AppendMovement(ctx, fee); err != nil {
					return err
				}
				out = append(out, fee)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// feeMovement builds one synthetic fee OUT linked to its origin. The
// deposit stays nil: fee lines bill money, they never hold any.
func (s *Service) feeMovement(origin Movement, variant catalog.Variant, qty int, fee decimal.Decimal, note string) Movement {
	price := fee
	return Movement{
		ID:         MovementID(uuid.NewString()),
		Type:       MovementOut,
		ClientID:   origin.ClientID,
		VariantID:  variant.ID,
		OccurredAt: origin.OccurredAt,
		Qty:        qty,
		UnitPrice:  &price,
		Note:       note,
		OriginID:   origin.ID,
		CreatedAt:  origin.CreatedAt,
	}
}

// =============================================================================
// DELETION - symmetric reversal
// =============================================================================

// Delete removes a movement, reverses the exact stock delta it
// applied and cascades to the fee movements it originated. The books
// afterwards read as if the movement had never been recorded.
func (s *Service) Delete(ctx context.Context, id MovementID) error {
	m, err := s.store.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return &NotFoundError{Kind: "movement", ID: string(id)}
	}

	service := false
	if variant, err := s.catalog.GetVariant(ctx, m.VariantID); err != nil {
		return err
	} else if variant != nil {
		service = variant.IsService()
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		cur, err := tx.GetMovement(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return &NotFoundError{Kind: "movement", ID: string(id)}
		}

		// Fee children ride size-0 variants and never touched stock,
		// so removing the rows is the whole reversal.
		children, err := tx.MovementsByOrigin(ctx, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := tx.RemoveMovement(ctx, child.ID); err != nil {
				return err
			}
		}

		if err := tx.RemoveMovement(ctx, id); err != nil {
			return err
		}
		if delta := cur.StockDelta(); delta != 0 && !service {
			if err := tx.AdjustStock(ctx, cur.VariantID, -delta); err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// READ MODELS - cards, history, journal
// =============================================================================

// Card is one client's index card: the account plus its folded
// balance.
type Card struct {
	Client  Client
	Balance Balance
}

// Totals is the bottom line of the index: every active client summed.
type Totals struct {
	Clients     int
	Kegs        int
	BeerBilled  decimal.Decimal
	DepositHeld decimal.Decimal
	Equipment   map[equipment.Item]int
}

// ClientCard folds one client's card.
func (s *Service) ClientCard(ctx context.Context, id ClientID) (*Card, error) {
	client, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &NotFoundError{Kind: "client", ID: string(id)}
	}

	refs, err := s.variantRefs(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := s.store.MovementsByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Card{Client: *client, Balance: ComputeBalance(id, movements, refs)}, nil
}

// IndexCards folds every active client's card and the grand totals
// underneath them. Archived clients keep their history but drop off
// the index.
func (s *Service) IndexCards(ctx context.Context) ([]Card, Totals, error) {
	totals := Totals{
		BeerBilled:  decimal.Zero,
		DepositHeld: decimal.Zero,
		Equipment:   make(map[equipment.Item]int),
	}

	clients, err := s.clients.ListClients(ctx, false)
	if err != nil {
		return nil, totals, err
	}
	refs, err := s.variantRefs(ctx)
	if err != nil {
		return nil, totals, err
	}

	cards := make([]Card, 0, len(clients))
	for _, client := range clients {
		movements, err := s.store.MovementsByClient(ctx, client.ID)
		if err != nil {
			return nil, totals, err
		}
		balance := ComputeBalance(client.ID, movements, refs)
		cards = append(cards, Card{Client: client, Balance: balance})

		totals.Clients++
		totals.Kegs += balance.Kegs
		totals.BeerBilled = totals.BeerBilled.Add(balance.BeerBilled)
		totals.DepositHeld = totals.DepositHeld.Add(balance.DepositHeld)
		for item, n := range balance.Equipment {
			totals.Equipment[item] += n
		}
	}
	return cards, totals, nil
}

// History returns a client's movements, newest first.
func (s *Service) History(ctx context.Context, id ClientID) ([]Movement, error) {
	client, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &NotFoundError{Kind: "client", ID: string(id)}
	}
	return s.store.MovementsByClient(ctx, id)
}

// Journal returns the latest movements across all clients.
func (s *Service) Journal(ctx context.Context, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.RecentMovements(ctx, limit)
}

// Movement returns one movement by id.
func (s *Service) Movement(ctx context.Context, id MovementID) (*Movement, error) {
	m, err := s.store.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &NotFoundError{Kind: "movement", ID: string(id)}
	}
	return m, nil
}

// variantRefs loads the catalog context the balance fold needs.
func (s *Service) variantRefs(ctx context.Context) (map[catalog.VariantID]VariantRef, error) {
	variants, err := s.catalog.ListVariants(ctx)
	if err != nil {
		return nil, err
	}
	refs := make(map[catalog.VariantID]VariantRef, len(variants))
	for _, v := range variants {
		refs[v.ID] = VariantRef{CatalogPrice: v.Price, Service: v.IsService()}
	}
	return refs, nil
}

// =============================================================================
// CLIENT ACCOUNTS
// =============================================================================

// CreateClient opens a rental account. Names are unique among active
// clients.
func (s *Service) CreateClient(ctx context.Context, name, email string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "missing client name"}
	}
	existing, err := s.clients.GetClientByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("client %q: %w", name, ErrDuplicateName)
	}

	client := Client{
		ID:        ClientID(uuid.NewString()),
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.clients.SaveClient(ctx, client); err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClient renames an account or changes its email.
func (s *Service) UpdateClient(ctx context.Context, id ClientID, name, email string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "missing client name"}
	}
	client, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &NotFoundError{Kind: "client", ID: string(id)}
	}

	if other, err := s.clients.GetClientByName(ctx, name); err != nil {
		return nil, err
	} else if other != nil && other.ID != id {
		return nil, fmt.Errorf("client %q: %w", name, ErrDuplicateName)
	}

	client.Name = name
	client.Email = strings.TrimSpace(email)
	if err := s.clients.UpdateClient(ctx, *client); err != nil {
		return nil, err
	}
	return client, nil
}

// ArchiveClient closes an account. History stays, new movements are
// refused, the name becomes free for reuse.
func (s *Service) ArchiveClient(ctx context.Context, id ClientID) error {
	client, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return &NotFoundError{Kind: "client", ID: string(id)}
	}
	if client.Archived() {
		return nil
	}
	return s.clients.ArchiveClient(ctx, id, time.Now().UTC().Truncate(time.Second))
}

// Client returns one account by id.
func (s *Service) Client(ctx context.Context, id ClientID) (*Client, error) {
	client, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, &NotFoundError{Kind: "client", ID: string(id)}
	}
	return client, nil
}

// Clients lists accounts, optionally including archived ones.
func (s *Service) Clients(ctx context.Context, includeArchived bool) ([]Client, error) {
	return s.clients.ListClients(ctx, includeArchived)
}
