/*
Package sqlite provides the SQLite-backed implementation of the
storage interfaces.

PURPOSE:
  Implements every persistence interface the services need (movement
  books, clients, catalog, depot stock) on a single SQLite file, which
  is how the tool deploys at the bar: one binary, one database file,
  no separate server. store/postgres carries the same schema for
  shared deployments.

INTERFACES IMPLEMENTED:
  ledger.TxStore:     movements, item counts, stock adjustments
  ledger.ClientStore: rental accounts
  catalog.Store:      products and variants
  inventory.Store:    stock counters and reorder rules

KEY TABLES:
  movements:      append-mostly fact table, one row per ledger event
  movement_items: equipment/cup counts decoded from notes at write time
  clients:        accounts, archived via archived_at instead of deleted
  products:       beers
  variants:       product x keg size, with the catalog price
  inventory:      depot stock per variant (advisory, may go negative)
  reorder_rules:  per-variant minimum stock thresholds

TRANSACTIONS:
  WithTx hands the callback a store bound to one database transaction.
  A movement write, its stock adjustment and any synthetic fee
  movements commit or roll back together. Everything inside the
  callback runs on the transaction connection and takes no locks of
  its own; the outer mutex is held for the whole transaction.

CONCURRENCY:
  A sync.RWMutex serializes writers. The pool is capped at a single
  connection, which keeps ":memory:" databases coherent (every
  connection would otherwise get its own empty database) and suits the
  single-writer model.

MIGRATIONS:
  Versioned goose migrations embedded in the binary, applied on New().
  The same migration files format drives the postgres store.

USAGE:
  store, err := sqlite.New("./data/futs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := ledger.NewService(store, store, store, ledger.DefaultFees())

SEE ALSO:
  - ledger/store.go: interface contracts and the (nil, nil) convention
  - store/postgres: the pgx implementation of the same interfaces
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements all storage interfaces on one SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and applies pending
// migrations. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection for the whole pool: ":memory:" gives every
	// connection its own database, and the writer is single anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(s.db, "migrations")
}

// executor is the slice of *sql.DB and *sql.Tx the query helpers
// need, so the same code serves both paths.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// MOVEMENT STORE (ledger.Store interface)
// =============================================================================

const movementColumns = `id, mv_type, client_id, variant_id, occurred_at, qty, unit_price, deposit, note, origin_id, created_at`

// AppendMovement inserts a movement and its item counts.
func (s *Store) AppendMovement(ctx context.Context, m ledger.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Two statements (movement + items), so even the non-transactional
	// path gets its own transaction.
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := s.appendMovement(ctx, sqlTx, m); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func (s *Store) appendMovement(ctx context.Context, db executor, m ledger.Movement) error {
	query := `
		INSERT INTO movements
		(` + movementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		m.ID,
		m.Type,
		m.ClientID,
		m.VariantID,
		m.OccurredAt.UTC().Format(time.RFC3339),
		m.Qty,
		nullDecimal(m.UnitPrice),
		nullDecimal(m.Deposit),
		m.Note,
		nullString(string(m.OriginID)),
		m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	for _, item := range equipment.KnownItems() {
		count, ok := m.Items[item]
		if !ok {
			continue
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO movement_items (movement_id, item, count) VALUES (?, ?, ?)`,
			m.ID, item, count,
		)
		if err != nil {
			return fmt.Errorf("failed to insert movement item: %w", err)
		}
	}
	return nil
}

// GetMovement returns one movement with its items, or (nil, nil).
func (s *Store) GetMovement(ctx context.Context, id ledger.MovementID) (*ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMovement(ctx, s.db, id)
}

func (s *Store) getMovement(ctx context.Context, db executor, id ledger.MovementID) (*ledger.Movement, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE id = ?`, id)
	m, err := scanMovement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load movement: %w", err)
	}
	movements := []ledger.Movement{*m}
	if err := s.attachItems(ctx, db, movements); err != nil {
		return nil, err
	}
	return &movements[0], nil
}

// RemoveMovement deletes the movement row; item counts cascade.
func (s *Store) RemoveMovement(ctx context.Context, id ledger.MovementID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeMovement(ctx, s.db, id)
}

func (s *Store) removeMovement(ctx context.Context, db executor, id ledger.MovementID) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}
	return nil
}

// MovementsByClient returns a client's full history, newest first.
func (s *Store) MovementsByClient(ctx context.Context, clientID ledger.ClientID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movementsByClient(ctx, s.db, clientID)
}

func (s *Store) movementsByClient(ctx context.Context, db executor, clientID ledger.ClientID) ([]ledger.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE client_id = ?
		ORDER BY occurred_at DESC, created_at DESC, id DESC
	`
	return s.queryMovements(ctx, db, query, clientID)
}

// MovementsByOrigin returns the fee movements hanging off a movement.
func (s *Store) MovementsByOrigin(ctx context.Context, id ledger.MovementID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movementsByOrigin(ctx, s.db, id)
}

func (s *Store) movementsByOrigin(ctx context.Context, db executor, id ledger.MovementID) ([]ledger.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE origin_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return s.queryMovements(ctx, db, query, id)
}

// RecentMovements returns the latest movements across all clients.
func (s *Store) RecentMovements(ctx context.Context, limit int) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentMovements(ctx, s.db, limit)
}

func (s *Store) recentMovements(ctx context.Context, db executor, limit int) ([]ledger.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		ORDER BY occurred_at DESC, created_at DESC, id DESC
		LIMIT ?
	`
	return s.queryMovements(ctx, db, query, limit)
}

// AdjustStock adds delta to a variant's counter, creating the row
// lazily. No floor: depot stock is advisory.
func (s *Store) AdjustStock(ctx context.Context, variantID catalog.VariantID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustStock(ctx, s.db, variantID, delta)
}

func (s *Store) adjustStock(ctx context.Context, db executor, variantID catalog.VariantID, delta int) error {
	query := `
		INSERT INTO inventory (variant_id, qty) VALUES (?, ?)
		ON CONFLICT(variant_id) DO UPDATE SET qty = qty + excluded.qty
	`
	if _, err := db.ExecContext(ctx, query, variantID, delta); err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	return nil
}

func (s *Store) queryMovements(ctx context.Context, db executor, query string, args ...any) ([]ledger.Movement, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []ledger.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, db, movements); err != nil {
		return nil, err
	}
	return movements, nil
}

// attachItems loads the item counts for a batch of movements in one
// query.
func (s *Store) attachItems(ctx context.Context, db executor, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	placeholders := make([]string, len(movements))
	args := make([]any, len(movements))
	index := make(map[ledger.MovementID]*ledger.Movement, len(movements))
	for i := range movements {
		placeholders[i] = "?"
		args[i] = movements[i].ID
		index[movements[i].ID] = &movements[i]
	}

	query := `SELECT movement_id, item, count FROM movement_items WHERE movement_id IN (` +
		strings.Join(placeholders, ", ") + `)`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query movement items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movementID ledger.MovementID
		var item equipment.Item
		var count int
		if err := rows.Scan(&movementID, &item, &count); err != nil {
			return fmt.Errorf("failed to scan movement item: %w", err)
		}
		m := index[movementID]
		if m.Items == nil {
			m.Items = make(equipment.Counts)
		}
		m.Items[item] = count
	}
	return rows.Err()
}

func scanMovement(sc interface{ Scan(dest ...any) error }) (*ledger.Movement, error) {
	var m ledger.Movement
	var occurredAt, createdAt string
	var price, deposit, origin sql.NullString

	err := sc.Scan(&m.ID, &m.Type, &m.ClientID, &m.VariantID, &occurredAt,
		&m.Qty, &price, &deposit, &m.Note, &origin, &createdAt)
	if err != nil {
		return nil, err
	}
	if m.OccurredAt, err = time.Parse(time.RFC3339, occurredAt); err != nil {
		return nil, fmt.Errorf("bad occurred_at: %w", err)
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if m.UnitPrice, err = scanDecimal(price); err != nil {
		return nil, fmt.Errorf("bad unit_price: %w", err)
	}
	if m.Deposit, err = scanDecimal(deposit); err != nil {
		return nil, fmt.Errorf("bad deposit: %w", err)
	}
	m.OriginID = ledger.MovementID(origin.String)
	return &m, nil
}

// =============================================================================
// TRANSACTIONS (ledger.TxStore interface)
// =============================================================================

// WithTx runs fn against a store bound to one database transaction.
// fn returning an error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every call through the transaction connection. It
// takes no locks; WithTx holds the store mutex for the whole
// transaction.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) AppendMovement(ctx context.Context, m ledger.Movement) error {
	return ts.parent.appendMovement(ctx, ts.tx, m)
}

func (ts *txStore) GetMovement(ctx context.Context, id ledger.MovementID) (*ledger.Movement, error) {
	return ts.parent.getMovement(ctx, ts.tx, id)
}

func (ts *txStore) RemoveMovement(ctx context.Context, id ledger.MovementID) error {
	return ts.parent.removeMovement(ctx, ts.tx, id)
}

func (ts *txStore) MovementsByClient(ctx context.Context, clientID ledger.ClientID) ([]ledger.Movement, error) {
	return ts.parent.movementsByClient(ctx, ts.tx, clientID)
}

func (ts *txStore) MovementsByOrigin(ctx context.Context, id ledger.MovementID) ([]ledger.Movement, error) {
	return ts.parent.movementsByOrigin(ctx, ts.tx, id)
}

func (ts *txStore) RecentMovements(ctx context.Context, limit int) ([]ledger.Movement, error) {
	return ts.parent.recentMovements(ctx, ts.tx, limit)
}

func (ts *txStore) AdjustStock(ctx context.Context, variantID catalog.VariantID, delta int) error {
	return ts.parent.adjustStock(ctx, ts.tx, variantID, delta)
}

// =============================================================================
// CLIENT STORE (ledger.ClientStore interface)
// =============================================================================

// SaveClient inserts a client. A name collision among active clients
// comes back as ErrDuplicateName.
func (s *Store) SaveClient(ctx context.Context, c ledger.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO clients (id, name, email, archived_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		nullString(c.Email),
		nullTime(c.ArchivedAt),
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("client %q: %w", c.Name, ledger.ErrDuplicateName)
		}
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// GetClient returns a client by id, or (nil, nil).
func (s *Store) GetClient(ctx context.Context, id ledger.ClientID) (*ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, archived_at, created_at FROM clients WHERE id = ?`, id)
	return scanClientRow(row)
}

// GetClientByName matches an active client by name, case-insensitively.
func (s *Store) GetClientByName(ctx context.Context, name string) (*ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, archived_at, created_at
		FROM clients
		WHERE LOWER(name) = LOWER(?) AND archived_at IS NULL
	`, name)
	return scanClientRow(row)
}

// UpdateClient rewrites name and email.
func (s *Store) UpdateClient(ctx context.Context, c ledger.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ? WHERE id = ?`,
		c.Name, nullString(c.Email), c.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("client %q: %w", c.Name, ledger.ErrDuplicateName)
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// ListClients returns clients ordered by name, active only unless
// includeArchived.
func (s *Store) ListClients(ctx context.Context, includeArchived bool) ([]ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, email, archived_at, created_at FROM clients`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY name COLLATE NOCASE ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []ledger.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// ArchiveClient stamps archived_at; the row and its movements stay.
func (s *Store) ArchiveClient(ctx context.Context, id ledger.ClientID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE clients SET archived_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive client: %w", err)
	}
	return nil
}

func scanClientRow(row *sql.Row) (*ledger.Client, error) {
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return c, nil
}

func scanClient(sc interface{ Scan(dest ...any) error }) (*ledger.Client, error) {
	var c ledger.Client
	var email, archivedAt sql.NullString
	var createdAt string

	if err := sc.Scan(&c.ID, &c.Name, &email, &archivedAt, &createdAt); err != nil {
		return nil, err
	}
	c.Email = email.String

	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if archivedAt.Valid {
		t, err := time.Parse(time.RFC3339, archivedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad archived_at: %w", err)
		}
		c.ArchivedAt = &t
	}
	return &c, nil
}

// =============================================================================
// CATALOG STORE (catalog.Store interface)
// =============================================================================

// SaveProduct inserts a product. Names are unique case-insensitively.
func (s *Store) SaveProduct(ctx context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("product %q: %w", p.Name, ledger.ErrDuplicateName)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetProduct returns a product by id, or (nil, nil).
func (s *Store) GetProduct(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM products WHERE id = ?`, id)
	return scanProductRow(row)
}

// GetProductByName matches case-insensitively, or (nil, nil).
func (s *Store) GetProductByName(ctx context.Context, name string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM products WHERE LOWER(name) = LOWER(?)`, name)
	return scanProductRow(row)
}

// ListProducts returns all products ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM products ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// SaveVariant inserts a variant. (product, size) pairs are unique.
func (s *Store) SaveVariant(ctx context.Context, v catalog.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO variants (id, product_id, size_l, price, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.ProductID, v.SizeL, nullDecimal(v.Price), v.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("variant %dL: %w", v.SizeL, ledger.ErrDuplicateName)
		}
		return fmt.Errorf("failed to insert variant: %w", err)
	}
	return nil
}

// GetVariant returns a variant by id, or (nil, nil).
func (s *Store) GetVariant(ctx context.Context, id catalog.VariantID) (*catalog.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, product_id, size_l, price, created_at FROM variants WHERE id = ?`, id)
	return scanVariantRow(row)
}

// GetVariantBySize returns the variant of a product with the given
// size, or (nil, nil).
func (s *Store) GetVariantBySize(ctx context.Context, productID catalog.ProductID, sizeL int) (*catalog.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, product_id, size_l, price, created_at FROM variants WHERE product_id = ? AND size_l = ?`,
		productID, sizeL)
	return scanVariantRow(row)
}

// ListVariants returns all variants.
func (s *Store) ListVariants(ctx context.Context) ([]catalog.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, size_l, price, created_at FROM variants ORDER BY product_id, size_l`)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []catalog.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *v)
	}
	return variants, rows.Err()
}

// UpdateVariantPrice replaces a variant's catalog price.
func (s *Store) UpdateVariantPrice(ctx context.Context, id catalog.VariantID, price *decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE variants SET price = ? WHERE id = ?`, nullDecimal(price), id)
	if err != nil {
		return fmt.Errorf("failed to update variant price: %w", err)
	}
	return nil
}

func scanProductRow(row *sql.Row) (*catalog.Product, error) {
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return p, nil
}

func scanProduct(sc interface{ Scan(dest ...any) error }) (*catalog.Product, error) {
	var p catalog.Product
	var createdAt string
	if err := sc.Scan(&p.ID, &p.Name, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	return &p, nil
}

func scanVariantRow(row *sql.Row) (*catalog.Variant, error) {
	v, err := scanVariant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	return v, nil
}

func scanVariant(sc interface{ Scan(dest ...any) error }) (*catalog.Variant, error) {
	var v catalog.Variant
	var price sql.NullString
	var createdAt string
	if err := sc.Scan(&v.ID, &v.ProductID, &v.SizeL, &price, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if v.Price, err = scanDecimal(price); err != nil {
		return nil, fmt.Errorf("bad price: %w", err)
	}
	if v.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	return &v, nil
}

// =============================================================================
// INVENTORY STORE (inventory.Store interface)
// =============================================================================

// GetStock returns a variant's counter, 0 when no row exists.
func (s *Store) GetStock(ctx context.Context, id catalog.VariantID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var qty int
	err := s.db.QueryRowContext(ctx,
		`SELECT qty FROM inventory WHERE variant_id = ?`, id).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load stock: %w", err)
	}
	return qty, nil
}

// ListStock returns every existing counter.
func (s *Store) ListStock(ctx context.Context) (map[catalog.VariantID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCounters(ctx, `SELECT variant_id, qty FROM inventory`)
}

// SetStock overwrites a variant's counter (stocktake).
func (s *Store) SetStock(ctx context.Context, id catalog.VariantID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO inventory (variant_id, qty) VALUES (?, ?)
		ON CONFLICT(variant_id) DO UPDATE SET qty = excluded.qty
	`
	if _, err := s.db.ExecContext(ctx, query, id, qty); err != nil {
		return fmt.Errorf("failed to set stock: %w", err)
	}
	return nil
}

// ListRules returns every reorder threshold.
func (s *Store) ListRules(ctx context.Context) (map[catalog.VariantID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCounters(ctx, `SELECT variant_id, min_qty FROM reorder_rules`)
}

// SetRule upserts a variant's reorder threshold.
func (s *Store) SetRule(ctx context.Context, id catalog.VariantID, minQty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO reorder_rules (variant_id, min_qty) VALUES (?, ?)
		ON CONFLICT(variant_id) DO UPDATE SET min_qty = excluded.min_qty
	`
	if _, err := s.db.ExecContext(ctx, query, id, minQty); err != nil {
		return fmt.Errorf("failed to set reorder rule: %w", err)
	}
	return nil
}

func (s *Store) listCounters(ctx context.Context, query string) (map[catalog.VariantID]int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[catalog.VariantID]int)
	for rows.Next() {
		var id catalog.VariantID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		counters[id] = n
	}
	return counters, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset deletes every row from every table, keeping the schema. Used
// by the demo seed and by tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Fee movements reference their origin through origin_id, and SQLite
	// checks that constraint row by row. Clear the children first or a
	// bulk delete trips over a parent that still has fees attached.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM movements WHERE origin_id IS NOT NULL`); err != nil {
		return fmt.Errorf("failed to reset fee movements: %w", err)
	}

	tables := []string{"movement_items", "movements", "reorder_rules", "inventory", "variants", "products", "clients"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func scanDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
