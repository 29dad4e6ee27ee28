/*
fees.go - Tariffs applied by the ledger at write time

PURPOSE:
  Groups the three amounts the service bakes into movements: the
  default keg deposit and the per-cup wash and loss fees charged when
  a cup settlement runs. All three are configurable; the defaults
  match the rental agreement printed on the delivery notes.
*/
package ledger

import "github.com/shopspring/decimal"

// Service product names for the synthetic fee lines generated by cup
// settlements. They live in the catalog as size-0 variants so fee
// history folds through the same engine as everything else.
const (
	CupWashProduct = "cup-wash"
	CupLossProduct = "cup-loss"
)

// FeeSchedule is the set of tariffs the service applies when
// defaulting deposits and generating cup fees.
type FeeSchedule struct {
	// DefaultDeposit is baked into OUT and IN movements when the
	// caller does not override the per-keg deposit.
	DefaultDeposit decimal.Decimal

	// CupWash is billed per cup that comes back and needs washing.
	CupWash decimal.Decimal

	// CupLoss is billed per cup that never comes back.
	CupLoss decimal.Decimal
}

// DefaultFees returns the standard tariff card.
func DefaultFees() FeeSchedule {
	return FeeSchedule{
		DefaultDeposit: decimal.NewFromInt(30),
		CupWash:        decimal.RequireFromString("0.15"),
		CupLoss:        decimal.NewFromInt(1),
	}
}
