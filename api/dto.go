/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts cross the API as float64. The ledger keeps exact decimals
  internally; conversion happens only at this boundary. Optional
  amounts are pointers so "not set" and "zero" stay distinct: an OUT
  posted without unit_price takes the catalog price, one posted with
  unit_price 0 is a free keg.

DATES:
  occurred_at accepts either a full RFC3339 timestamp or a bare
  YYYY-MM-DD. Responses always use RFC3339 for timestamps and
  YYYY-MM-DD for day-level fields.

SEE ALSO:
  - handlers.go: conversions between domain types and these
  - server.go: routes
*/
package api

// =============================================================================
// MOVEMENTS
// =============================================================================

// MovementDTO is one ledger entry in API responses. Product and size
// come from the catalog; the effective block applies the read-time
// fallbacks, so the front-end never re-implements them.
type MovementDTO struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	ClientID   string         `json:"client_id"`
	VariantID  string         `json:"variant_id"`
	Product    string         `json:"product,omitempty"`
	SizeL      int            `json:"size_l"`
	OccurredAt string         `json:"occurred_at"`
	Qty        int            `json:"qty"`
	UnitPrice  *float64       `json:"unit_price,omitempty"`
	Deposit    *float64       `json:"deposit,omitempty"`
	Effective  EffectiveDTO   `json:"effective"`
	Note       string         `json:"note,omitempty"`
	Items      map[string]int `json:"items,omitempty"`
	OriginID   string         `json:"origin_id,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
}

// EffectiveDTO is the per-keg price and deposit actually counted by
// the balance fold for this movement.
type EffectiveDTO struct {
	UnitPrice float64 `json:"unit_price"`
	Deposit   float64 `json:"deposit"`
}

// RecordMovementRequest records one movement against a known variant.
type RecordMovementRequest struct {
	Type       string   `json:"type"`
	ClientID   string   `json:"client_id"`
	VariantID  string   `json:"variant_id"`
	Qty        int      `json:"qty"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`
	Deposit    *float64 `json:"deposit,omitempty"`
	OccurredAt string   `json:"occurred_at,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// DraftLineRequest is one line of a multi-line submission, identified
// by product name and keg size instead of a variant id.
type DraftLineRequest struct {
	Product   string   `json:"product"`
	SizeL     int      `json:"size_l"`
	Qty       int      `json:"qty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Deposit   *float64 `json:"deposit,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// SubmitDraftRequest posts a whole delivery or return form at once.
// All lines share the movement type and date and commit atomically.
type SubmitDraftRequest struct {
	Type       string             `json:"type"`
	ClientID   string             `json:"client_id"`
	OccurredAt string             `json:"occurred_at,omitempty"`
	Lines      []DraftLineRequest `json:"lines"`
}

// MovementsResponse wraps the movements written by one submission,
// fee movements included.
type MovementsResponse struct {
	Movements []MovementDTO `json:"movements"`
}

// =============================================================================
// CLIENTS AND CARDS
// =============================================================================

// ClientDTO represents a rental account in API responses.
type ClientDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	ArchivedAt string `json:"archived_at,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateClientRequest is the request to open an account.
type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// UpdateClientRequest renames an account or changes its email.
type UpdateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CardDTO is one client's index card.
type CardDTO struct {
	Client       ClientDTO      `json:"client"`
	Kegs         int            `json:"kegs_out"`
	BeerBilled   float64        `json:"beer_billed"`
	DepositHeld  float64        `json:"deposit_held"`
	Equipment    map[string]int `json:"equipment,omitempty"`
	LastDelivery string         `json:"last_delivery,omitempty"`
	LastReturn   string         `json:"last_return,omitempty"`
}

// TotalsDTO is the bottom line under the index cards.
type TotalsDTO struct {
	Clients     int            `json:"clients"`
	Kegs        int            `json:"kegs_out"`
	BeerBilled  float64        `json:"beer_billed"`
	DepositHeld float64        `json:"deposit_held"`
	Equipment   map[string]int `json:"equipment,omitempty"`
}

// IndexResponse is the card index: every active client plus totals.
type IndexResponse struct {
	Cards  []CardDTO `json:"cards"`
	Totals TotalsDTO `json:"totals"`
}

// ClientDetailResponse is one client's card with the full history.
type ClientDetailResponse struct {
	Card    CardDTO       `json:"card"`
	History []MovementDTO `json:"history"`
}

// =============================================================================
// STOCK
// =============================================================================

// StockItemDTO is one sellable variant's depot counter.
type StockItemDTO struct {
	VariantID string `json:"variant_id"`
	Product   string `json:"product"`
	SizeL     int    `json:"size_l"`
	OnHand    int    `json:"on_hand"`
	MinQty    *int   `json:"min_qty,omitempty"`
}

// AlertDTO is a stock item sitting under its reorder threshold.
type AlertDTO struct {
	VariantID string `json:"variant_id"`
	Product   string `json:"product"`
	SizeL     int    `json:"size_l"`
	OnHand    int    `json:"on_hand"`
	MinQty    int    `json:"min_qty"`
	Shortfall int    `json:"shortfall"`
}

// SetStockRequest sets the absolute on-hand count after a recount.
type SetStockRequest struct {
	Qty int `json:"qty"`
}

// SetRuleRequest sets a variant's reorder threshold.
type SetRuleRequest struct {
	MinQty int `json:"min_qty"`
}

// =============================================================================
// CATALOG
// =============================================================================

// VariantDTO represents a catalog entry in API responses.
type VariantDTO struct {
	ID      string   `json:"id"`
	Product string   `json:"product"`
	SizeL   int      `json:"size_l"`
	Price   *float64 `json:"price,omitempty"`
	Service bool     `json:"service,omitempty"`
}

// CreateVariantRequest resolves or creates a (product, size) pair.
type CreateVariantRequest struct {
	Product string   `json:"product"`
	SizeL   int      `json:"size_l"`
	Price   *float64 `json:"price,omitempty"`
}

// =============================================================================
// SHARED
// =============================================================================

// ErrorResponse is the JSON shape of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`

	// Line points at the offending row of a draft submission,
	// one-based. Zero when the error is not line-specific.
	Line int `json:"line,omitempty"`
}
