/*
Package report builds the Excel export the bar hands to its treasurer.

PURPOSE:
  One workbook, two sheets:

    Comptes:  one row per client card (kegs out, beer billed, deposit
              held, cups out, last delivery / return), plus a totals
              row at the bottom.
    Stock:    one row per stocked variant with the reorder threshold
              and the shortfall when stock sits under it.

  The package is pure: it takes the already-computed cards and stock
  rows and lays them out. Handlers fetch the data and stream the file.

MONEY IN CELLS:
  Amounts become float64 cells so the spreadsheet can sum them. The
  ledger itself stays decimal end to end; rounding only happens here,
  at the display boundary.

USAGE:
  f, err := report.Build(report.Data{Cards: cards, Totals: totals, Stock: items})
  if err != nil { ... }
  defer f.Close()
  f.Write(w)

SEE ALSO:
  - api/handlers.go: the /export/cards.xlsx handler
  - ledger/service.go: IndexCards, the source of the card rows
*/
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/equipment"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/inventory"
	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
)

const (
	cardsSheet = "Comptes"
	stockSheet = "Stock"
)

// Data is everything the workbook renders.
type Data struct {
	Cards  []ledger.Card
	Totals ledger.Totals
	Stock  []inventory.StockItem
}

// Filename returns a timestamped name for the exported workbook.
func Filename(at time.Time) string {
	return fmt.Sprintf("futs_%s.xlsx", at.Format("20060102_150405"))
}

// Build lays out the workbook. The caller owns the file and must
// Close it.
func Build(data Data) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), cardsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name cards sheet: %w", err)
	}
	if err := writeCards(f, data.Cards, data.Totals); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(stockSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create stock sheet: %w", err)
	}
	if err := writeStock(f, data.Stock); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeCards(f *excelize.File, cards []ledger.Card, totals ledger.Totals) error {
	header := []interface{}{
		"Client",
		"Fûts dehors",
		"Bière facturée (EUR)",
		"Consigne en cours (EUR)",
		"Gobelets",
		"Dernière livraison",
		"Dernier retour",
	}
	if err := f.SetSheetRow(cardsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write cards header: %w", err)
	}

	row := 2
	for _, card := range cards {
		values := []interface{}{
			card.Client.Name,
			card.Balance.Kegs,
			card.Balance.BeerBilled.InexactFloat64(),
			card.Balance.DepositHeld.InexactFloat64(),
			card.Balance.CupsHeld(),
			formatDay(card.Balance.LastDelivery),
			formatDay(card.Balance.LastReturn),
		}
		if err := setRow(f, cardsSheet, row, &values); err != nil {
			return err
		}
		row++
	}

	totalsRow := []interface{}{
		fmt.Sprintf("Total (%d clients)", totals.Clients),
		totals.Kegs,
		totals.BeerBilled.InexactFloat64(),
		totals.DepositHeld.InexactFloat64(),
		totals.Equipment[equipment.Cups],
		"",
		"",
	}
	return setRow(f, cardsSheet, row, &totalsRow)
}

func writeStock(f *excelize.File, items []inventory.StockItem) error {
	header := []interface{}{
		"Produit",
		"Taille (L)",
		"En stock",
		"Seuil",
		"Manque",
	}
	if err := f.SetSheetRow(stockSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write stock header: %w", err)
	}

	row := 2
	for _, item := range items {
		threshold := interface{}("")
		shortfall := interface{}("")
		if item.HasRule {
			threshold = item.MinQty
			if item.OnHand < item.MinQty {
				shortfall = item.MinQty - item.OnHand
			}
		}
		values := []interface{}{
			item.Product.Name,
			item.Variant.SizeL,
			item.OnHand,
			threshold,
			shortfall,
		}
		if err := setRow(f, stockSheet, row, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values *[]interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to build cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
