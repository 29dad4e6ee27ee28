/*
handlers.go - HTTP API handlers for the keg ledger

PURPOSE:
  Exposes the ledger, inventory and catalog services via REST. Handles
  HTTP request/response, JSON serialization, and delegates everything
  else to the domain packages.

ENDPOINTS:
  Movements:
    GET    /api/movements               Activity journal (?limit=50)
    POST   /api/movements               Record one movement by variant id
    POST   /api/movements/draft         Commit a multi-line form atomically
    GET    /api/movements/{id}          One movement
    DELETE /api/movements/{id}          Delete and reverse stock

  Clients:
    GET    /api/clients                 List accounts (?include_archived=1)
    POST   /api/clients                 Open an account
    GET    /api/clients/{id}            Card + full history
    PUT    /api/clients/{id}            Rename / change email
    POST   /api/clients/{id}/archive    Archive (history stays)

  Cards:
    GET    /api/cards                   Index cards for all active clients

  Stock:
    GET    /api/stock                   Depot counters (sellable variants)
    GET    /api/stock/alerts            Variants under their threshold
    PUT    /api/stock/{variantID}       Set absolute count (recount)
    PUT    /api/stock/{variantID}/rule  Set reorder threshold

  Catalog:
    GET    /api/catalog                 Products x sizes
    POST   /api/catalog/variants        Resolve or create (product, size)

  Export:
    GET    /api/export/cards.xlsx       Workbook for the treasurer

  Admin:
    POST   /api/admin/seed              Load demo data (?force=1 resets)

ERROR HANDLING:
  Domain errors map onto HTTP statuses:
  - 400: validation failures, over-returns
  - 404: unknown client / variant / movement
  - 409: duplicate names, archived accounts
  - 500: everything else (logged)
  Draft errors carry the one-based line number of the offending row.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
  - seed.go: the demo dataset
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/inventory"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter wipes every table. Implemented by both stores; only wired
// into the seed endpoint.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger    *ledger.Service
	Inventory *inventory.Service
	Catalog   catalog.Store
	Log       *zap.Logger

	// Resetter enables ?force=1 on the seed endpoint. Leave nil to
	// forbid resets.
	Resetter Resetter
}

// NewHandler creates a new handler over the domain services.
func NewHandler(ledgerSvc *ledger.Service, inventorySvc *inventory.Service, cat catalog.Store, log *zap.Logger) *Handler {
	return &Handler{
		Ledger:    ledgerSvc,
		Inventory: inventorySvc,
		Catalog:   cat,
		Log:       log,
	}
}

// =============================================================================
// MOVEMENT HANDLERS
// =============================================================================

// Journal returns the latest movements across all clients.
// GET /api/movements?limit=50
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	movements, err := h.Ledger.Journal(r.Context(), limit)
	if err != nil {
		h.respondError(w, "Failed to load journal", err)
		return
	}
	h.writeMovements(w, r, http.StatusOK, movements)
}

// RecordMovement records one movement against a known variant.
// POST /api/movements
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	at, err := parseWhen(req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid occurred_at", err)
		return
	}

	movement, err := h.Ledger.Record(r.Context(), ledger.RecordInput{
		Type:      parseMovementType(req.Type),
		ClientID:  ledger.ClientID(req.ClientID),
		VariantID: catalog.VariantID(req.VariantID),
		Qty:       req.Qty,
		UnitPrice: toDecimal(req.UnitPrice),
		Deposit:   toDecimal(req.Deposit),
		At:        at,
		Note:      req.Note,
	})
	if err != nil {
		h.respondError(w, "Failed to record movement", err)
		return
	}

	movementsRecorded.WithLabelValues(string(movement.Type)).Inc()
	h.Log.Info("movement recorded",
		zap.String("type", string(movement.Type)),
		zap.String("client_id", string(movement.ClientID)),
		zap.Int("qty", movement.Qty))

	h.writeMovement(w, r, http.StatusCreated, *movement)
}

// SubmitDraft commits a whole delivery or return form atomically.
// POST /api/movements/draft
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	var req SubmitDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	at, err := parseWhen(req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid occurred_at", err)
		return
	}

	draft := ledger.Draft{
		Type:     parseMovementType(req.Type),
		ClientID: ledger.ClientID(req.ClientID),
		At:       at,
	}
	for _, line := range req.Lines {
		draft.Lines = append(draft.Lines, ledger.DraftLine{
			ProductName: line.Product,
			SizeL:       line.SizeL,
			Qty:         line.Qty,
			UnitPrice:   toDecimal(line.UnitPrice),
			Deposit:     toDecimal(line.Deposit),
			Note:        line.Note,
		})
	}

	movements, err := h.Ledger.Commit(r.Context(), draft)
	if err != nil {
		h.respondError(w, "Failed to commit draft", err)
		return
	}

	for _, m := range movements {
		if !m.IsFee() {
			movementsRecorded.WithLabelValues(string(m.Type)).Inc()
		}
	}
	h.Log.Info("draft committed",
		zap.String("type", string(draft.Type)),
		zap.String("client_id", string(draft.ClientID)),
		zap.Int("lines", len(req.Lines)),
		zap.Int("movements", len(movements)))

	h.writeMovements(w, r, http.StatusCreated, movements)
}

// GetMovement returns one movement.
// GET /api/movements/{id}
func (h *Handler) GetMovement(w http.ResponseWriter, r *http.Request) {
	id := ledger.MovementID(chi.URLParam(r, "id"))

	movement, err := h.Ledger.Movement(r.Context(), id)
	if err != nil {
		h.respondError(w, "Failed to load movement", err)
		return
	}
	h.writeMovement(w, r, http.StatusOK, *movement)
}

// DeleteMovement deletes a movement, its fee movements, and reverses
// the depot stock it moved.
// DELETE /api/movements/{id}
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id := ledger.MovementID(chi.URLParam(r, "id"))

	if err := h.Ledger.Delete(r.Context(), id); err != nil {
		h.respondError(w, "Failed to delete movement", err)
		return
	}
	h.Log.Info("movement deleted", zap.String("movement_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns rental accounts.
// GET /api/clients?include_archived=1
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	includeArchived := queryFlag(r, "include_archived")

	clients, err := h.Ledger.Clients(r.Context(), includeArchived)
	if err != nil {
		h.respondError(w, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateClient opens a rental account.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	client, err := h.Ledger.CreateClient(r.Context(), req.Name, req.Email)
	if err != nil {
		h.respondError(w, "Failed to create client", err)
		return
	}
	h.Log.Info("client created", zap.String("client_id", string(client.ID)), zap.String("name", client.Name))
	writeJSON(w, http.StatusCreated, toClientDTO(*client))
}

// GetClient returns a client's card and full history.
// GET /api/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := ledger.ClientID(chi.URLParam(r, "id"))

	card, err := h.Ledger.ClientCard(r.Context(), id)
	if err != nil {
		h.respondError(w, "Failed to load client", err)
		return
	}
	history, err := h.Ledger.History(r.Context(), id)
	if err != nil {
		h.respondError(w, "Failed to load history", err)
		return
	}
	variants, err := h.variantIndex(r.Context())
	if err != nil {
		h.respondError(w, "Failed to load catalog", err)
		return
	}

	resp := ClientDetailResponse{
		Card:    toCardDTO(*card),
		History: make([]MovementDTO, len(history)),
	}
	for i, m := range history {
		resp.History[i] = toMovementDTO(m, variants)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateClient renames an account or changes its email.
// PUT /api/clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := ledger.ClientID(chi.URLParam(r, "id"))

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	client, err := h.Ledger.UpdateClient(r.Context(), id, req.Name, req.Email)
	if err != nil {
		h.respondError(w, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// ArchiveClient archives an account. History stays readable; new
// movements are refused.
// POST /api/clients/{id}/archive
func (h *Handler) ArchiveClient(w http.ResponseWriter, r *http.Request) {
	id := ledger.ClientID(chi.URLParam(r, "id"))

	if err := h.Ledger.ArchiveClient(r.Context(), id); err != nil {
		h.respondError(w, "Failed to archive client", err)
		return
	}
	h.Log.Info("client archived", zap.String("client_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CARD HANDLERS
// =============================================================================

// IndexCards returns every active client's card plus the totals row.
// GET /api/cards
func (h *Handler) IndexCards(w http.ResponseWriter, r *http.Request) {
	cards, totals, err := h.Ledger.IndexCards(r.Context())
	if err != nil {
		h.respondError(w, "Failed to build index", err)
		return
	}

	resp := IndexResponse{
		Cards: make([]CardDTO, len(cards)),
		Totals: TotalsDTO{
			Clients:     totals.Clients,
			Kegs:        totals.Kegs,
			BeerBilled:  totals.BeerBilled.InexactFloat64(),
			DepositHeld: totals.DepositHeld.InexactFloat64(),
			Equipment:   toItemCounts(totals.Equipment),
		},
	}
	for i, card := range cards {
		resp.Cards[i] = toCardDTO(card)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// STOCK HANDLERS
// =============================================================================

// ListStock returns the depot counters for sellable variants.
// GET /api/stock
func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.StockItems(r.Context())
	if err != nil {
		h.respondError(w, "Failed to list stock", err)
		return
	}

	dtos := make([]StockItemDTO, len(items))
	for i, item := range items {
		dtos[i] = StockItemDTO{
			VariantID: string(item.Variant.ID),
			Product:   item.Product.Name,
			SizeL:     item.Variant.SizeL,
			OnHand:    item.OnHand,
		}
		if item.HasRule {
			minQty := item.MinQty
			dtos[i].MinQty = &minQty
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListAlerts returns the variants sitting under their reorder
// threshold.
// GET /api/stock/alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Inventory.Alerts(r.Context())
	if err != nil {
		h.respondError(w, "Failed to list alerts", err)
		return
	}

	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = AlertDTO{
			VariantID: string(a.Variant.ID),
			Product:   a.Product.Name,
			SizeL:     a.Variant.SizeL,
			OnHand:    a.OnHand,
			MinQty:    a.MinQty,
			Shortfall: a.Shortfall,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SetStock sets a variant's absolute on-hand count after a recount.
// PUT /api/stock/{variantID}
func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	variantID := catalog.VariantID(chi.URLParam(r, "variantID"))

	var req SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	if err := h.Inventory.SetStock(r.Context(), variantID, req.Qty); err != nil {
		h.respondError(w, "Failed to set stock", err)
		return
	}
	h.Log.Info("stock set", zap.String("variant_id", string(variantID)), zap.Int("qty", req.Qty))
	w.WriteHeader(http.StatusNoContent)
}

// SetRule sets a variant's reorder threshold.
// PUT /api/stock/{variantID}/rule
func (h *Handler) SetRule(w http.ResponseWriter, r *http.Request) {
	variantID := catalog.VariantID(chi.URLParam(r, "variantID"))

	var req SetRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if req.MinQty < 0 {
		writeError(w, http.StatusBadRequest, "Invalid min_qty", errors.New("threshold cannot be negative"))
		return
	}

	if err := h.Inventory.SetRule(r.Context(), variantID, req.MinQty); err != nil {
		h.respondError(w, "Failed to set reorder rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListCatalog returns every variant with its product resolved.
// GET /api/catalog
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	variants, err := h.Catalog.ListVariants(r.Context())
	if err != nil {
		h.respondError(w, "Failed to list catalog", err)
		return
	}
	products, err := h.productIndex(r.Context())
	if err != nil {
		h.respondError(w, "Failed to list catalog", err)
		return
	}

	dtos := make([]VariantDTO, len(variants))
	for i, v := range variants {
		dtos[i] = toVariantDTO(v, products[v.ProductID].Name)
	}
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].Product != dtos[j].Product {
			return strings.ToLower(dtos[i].Product) < strings.ToLower(dtos[j].Product)
		}
		return dtos[i].SizeL < dtos[j].SizeL
	})
	writeJSON(w, http.StatusOK, dtos)
}

// CreateVariant resolves or creates a (product, size) pair, updating
// the catalog price when one is supplied.
// POST /api/catalog/variants
func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req CreateVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	variant, err := catalog.FindOrCreateVariant(r.Context(), h.Catalog, req.Product, req.SizeL, toDecimal(req.Price))
	if err != nil {
		h.respondError(w, "Failed to create variant", err)
		return
	}
	product, err := h.Catalog.GetProduct(r.Context(), variant.ProductID)
	if err != nil {
		h.respondError(w, "Failed to load product", err)
		return
	}

	name := ""
	if product != nil {
		name = product.Name
	}
	writeJSON(w, http.StatusCreated, toVariantDTO(*variant, name))
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportCards streams the XLSX workbook with the index cards and the
// stock sheet.
// GET /api/export/cards.xlsx
func (h *Handler) ExportCards(w http.ResponseWriter, r *http.Request) {
	cards, totals, err := h.Ledger.IndexCards(r.Context())
	if err != nil {
		h.respondError(w, "Failed to build index", err)
		return
	}
	items, err := h.Inventory.StockItems(r.Context())
	if err != nil {
		h.respondError(w, "Failed to list stock", err)
		return
	}

	f, err := report.Build(report.Data{Cards: cards, Totals: totals, Stock: items})
	if err != nil {
		h.respondError(w, "Failed to build workbook", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename(time.Now()))
	if err := f.Write(w); err != nil {
		h.Log.Error("failed to stream workbook", zap.Error(err))
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// variantInfo is the catalog context needed to render one movement.
type variantInfo struct {
	product string
	sizeL   int
	price   *decimal.Decimal
}

func (h *Handler) variantIndex(ctx context.Context) (map[catalog.VariantID]variantInfo, error) {
	products, err := h.productIndex(ctx)
	if err != nil {
		return nil, err
	}
	variants, err := h.Catalog.ListVariants(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[catalog.VariantID]variantInfo, len(variants))
	for _, v := range variants {
		index[v.ID] = variantInfo{
			product: products[v.ProductID].Name,
			sizeL:   v.SizeL,
			price:   v.Price,
		}
	}
	return index, nil
}

func (h *Handler) productIndex(ctx context.Context) (map[catalog.ProductID]catalog.Product, error) {
	products, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[catalog.ProductID]catalog.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index, nil
}

// writeMovement renders one movement with its catalog context.
func (h *Handler) writeMovement(w http.ResponseWriter, r *http.Request, status int, m ledger.Movement) {
	variants, err := h.variantIndex(r.Context())
	if err != nil {
		h.respondError(w, "Failed to load catalog", err)
		return
	}
	writeJSON(w, status, toMovementDTO(m, variants))
}

func (h *Handler) writeMovements(w http.ResponseWriter, r *http.Request, status int, movements []ledger.Movement) {
	variants, err := h.variantIndex(r.Context())
	if err != nil {
		h.respondError(w, "Failed to load catalog", err)
		return
	}
	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = toMovementDTO(m, variants)
	}
	writeJSON(w, status, MovementsResponse{Movements: dtos})
}

func toMovementDTO(m ledger.Movement, variants map[catalog.VariantID]variantInfo) MovementDTO {
	info := variants[m.VariantID]

	dto := MovementDTO{
		ID:         string(m.ID),
		Type:       string(m.Type),
		ClientID:   string(m.ClientID),
		VariantID:  string(m.VariantID),
		Product:    info.product,
		SizeL:      info.sizeL,
		OccurredAt: m.OccurredAt.Format(time.RFC3339),
		Qty:        m.Qty,
		UnitPrice:  toFloat(m.UnitPrice),
		Deposit:    toFloat(m.Deposit),
		Note:       m.Note,
		OriginID:   string(m.OriginID),
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}

	// The same fallbacks the balance fold applies.
	switch {
	case m.UnitPrice != nil:
		dto.Effective.UnitPrice = m.UnitPrice.InexactFloat64()
	case info.price != nil:
		dto.Effective.UnitPrice = info.price.InexactFloat64()
	}
	if m.Deposit != nil {
		dto.Effective.Deposit = m.Deposit.InexactFloat64()
	}

	if len(m.Items) > 0 {
		dto.Items = make(map[string]int, len(m.Items))
		for item, count := range m.Items {
			dto.Items[string(item)] = count
		}
	}
	return dto
}

func toClientDTO(c ledger.Client) ClientDTO {
	dto := ClientDTO{
		ID:        string(c.ID),
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.ArchivedAt != nil {
		dto.ArchivedAt = c.ArchivedAt.Format(time.RFC3339)
	}
	return dto
}

func toCardDTO(card ledger.Card) CardDTO {
	dto := CardDTO{
		Client:      toClientDTO(card.Client),
		Kegs:        card.Balance.Kegs,
		BeerBilled:  card.Balance.BeerBilled.InexactFloat64(),
		DepositHeld: card.Balance.DepositHeld.InexactFloat64(),
		Equipment:   toItemCounts(card.Balance.Equipment),
	}
	if card.Balance.LastDelivery != nil {
		dto.LastDelivery = card.Balance.LastDelivery.Format("2006-01-02")
	}
	if card.Balance.LastReturn != nil {
		dto.LastReturn = card.Balance.LastReturn.Format("2006-01-02")
	}
	return dto
}

func toVariantDTO(v catalog.Variant, productName string) VariantDTO {
	return VariantDTO{
		ID:      string(v.ID),
		Product: productName,
		SizeL:   v.SizeL,
		Price:   toFloat(v.Price),
		Service: v.IsService(),
	}
}

func toItemCounts(counts map[equipment.Item]int) map[string]int {
	if len(counts) == 0 {
		return nil
	}
	out := make(map[string]int, len(counts))
	for item, n := range counts {
		out[string(item)] = n
	}
	return out
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// respondError maps domain errors onto HTTP statuses. Anything it
// does not recognize becomes a logged 500.
func (h *Handler) respondError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsNotFound(err), errors.Is(err, inventory.ErrUnknownVariant):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateName), errors.Is(err, ledger.ErrClientArchived):
		status = http.StatusConflict
	case ledger.IsClientError(err),
		errors.Is(err, catalog.ErrEmptyProductName),
		errors.Is(err, catalog.ErrNegativeSize):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.Log.Error(message, zap.Error(err))
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}
	var draftErr *ledger.DraftError
	if errors.As(err, &draftErr) {
		resp.Line = draftErr.Line + 1
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func parseMovementType(raw string) ledger.MovementType {
	return ledger.MovementType(strings.ToUpper(strings.TrimSpace(raw)))
}

// parseWhen accepts RFC3339 or a bare day. Empty means "now".
func parseWhen(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func toDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
