/*
store.go - Persistence interfaces for movements, stock and clients

PURPOSE:
  Defines the contract between the ledger and the database. A movement
  write and its depot stock adjustment (plus any synthetic fee
  movements) must land in one transaction, so the store exposes WithTx.

ATOMICITY CONTRACT:
  Every Service write path runs inside WithTx. A failure partway leaves
  no movement without its stock adjustment and no fee movement without
  its origin.

IMPLEMENTATIONS:
  - store/sqlite: embedded single-file deployment, used by tests
  - store/postgres: shared deployment

Lookups return (nil, nil) when the record does not exist.
*/
package ledger

import (
	"context"
	"time"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/catalog"
)

// =============================================================================
// MOVEMENT + STOCK STORE
// =============================================================================

// Store persists movements and the depot stock counters they adjust.
type Store interface {
	// AppendMovement inserts a movement together with its item counts.
	AppendMovement(ctx context.Context, m Movement) error

	// GetMovement returns one movement with items, or (nil, nil).
	GetMovement(ctx context.Context, id MovementID) (*Movement, error)

	// RemoveMovement deletes the movement row and its item counts.
	// Stock reversal is the caller's job (Service.Delete).
	RemoveMovement(ctx context.Context, id MovementID) error

	// MovementsByClient returns a client's full history, newest first.
	MovementsByClient(ctx context.Context, clientID ClientID) ([]Movement, error)

	// MovementsByOrigin returns the synthetic fee movements referencing
	// the given movement.
	MovementsByOrigin(ctx context.Context, id MovementID) ([]Movement, error)

	// RecentMovements returns the latest movements across all clients,
	// newest first, for the activity journal.
	RecentMovements(ctx context.Context, limit int) ([]Movement, error)

	// AdjustStock adds delta to a variant's depot stock, creating the
	// counter lazily at zero. Stock may go negative; it is advisory.
	AdjustStock(ctx context.Context, variantID catalog.VariantID, delta int) error
}

// TxStore wraps Store with transaction support. If fn returns an
// error the transaction is rolled back, otherwise committed.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// CLIENT STORE
// =============================================================================

// ClientStore persists rental accounts.
type ClientStore interface {
	// SaveClient inserts a client. Active client names are unique.
	SaveClient(ctx context.Context, c Client) error

	// GetClient returns a client by id, or (nil, nil).
	GetClient(ctx context.Context, id ClientID) (*Client, error)

	// UpdateClient rewrites a client's name and email.
	UpdateClient(ctx context.Context, c Client) error

	// GetClientByName matches an active client by name,
	// case-insensitively. Archived clients never match.
	GetClientByName(ctx context.Context, name string) (*Client, error)

	// ListClients returns clients ordered by name. Archived accounts
	// are included only when asked for.
	ListClients(ctx context.Context, includeArchived bool) ([]Client, error)

	// ArchiveClient marks the client archived at the given time.
	// Movements are kept; the account stops accepting new ones.
	ArchiveClient(ctx context.Context, id ClientID, at time.Time) error
}
