package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/timeutil"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var salesHeaders = []string{
	"N°", "Date", "Type", "Document", "Client", "Paiement",
	"Total", "Payé", "Monnaie", "Reste", "Articles",
}

// SalesXLSX writes the sales history, one row per sale.
func SalesXLSX(sales []*models.Sale) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, headerRow(salesHeaders)); err != nil {
		return nil, err
	}
	for i, s := range sales {
		client := s.ClientName
		if client == "" {
			client = "Vente comptoir"
		}
		items := 0
		for _, l := range s.Lines {
			items += l.Quantity
		}
		row := []interface{}{
			s.ID,
			timeutil.Format(s.SoldAt, timeutil.DisplayDateTimeLayout),
			s.Kind,
			s.DocumentNumber,
			client,
			s.PaymentMode,
			s.TotalAmount.InexactFloat64(),
			s.PaidAmount.InexactFloat64(),
			s.ChangeAmount.InexactFloat64(),
			s.RemainingAmount.InexactFloat64(),
			items,
		}
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}
	return toBytes(f)
}

// DailySummary aggregates the sales of one store day.
type DailySummary struct {
	Date        time.Time                  `json:"date"`
	Count       int                        `json:"count"`
	Total       decimal.Decimal            `json:"total"`
	Collected   decimal.Decimal            `json:"collected"`
	Outstanding decimal.Decimal            `json:"outstanding"`
	ByMode      map[string]decimal.Decimal `json:"by_mode"`
}

// SummarizeDays groups sales by store day, oldest first. Collected is what
// stayed in the till (paid minus change).
func SummarizeDays(sales []*models.Sale) []*DailySummary {
	byDay := map[string]*DailySummary{}
	for _, s := range sales {
		day := timeutil.StartOfDay(s.SoldAt)
		key := day.Format(timeutil.DateLayout)
		sum, ok := byDay[key]
		if !ok {
			sum = &DailySummary{Date: day, ByMode: map[string]decimal.Decimal{}}
			byDay[key] = sum
		}
		collected := s.PaidAmount.Sub(s.ChangeAmount)
		sum.Count++
		sum.Total = sum.Total.Add(s.TotalAmount)
		sum.Collected = sum.Collected.Add(collected)
		sum.Outstanding = sum.Outstanding.Add(s.RemainingAmount)
		sum.ByMode[s.PaymentMode] = sum.ByMode[s.PaymentMode].Add(collected)
	}

	out := make([]*DailySummary, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DailyCSV renders the summaries with one column per payment mode.
func DailyCSV(days []*DailySummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Date", "Ventes", "Total", "Encaissé", "Reste"}
	header = append(header, models.PaymentModes...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, d := range days {
		row := []string{
			d.Date.Format(timeutil.DisplayDateLayout),
			fmt.Sprintf("%d", d.Count),
			d.Total.StringFixed(2),
			d.Collected.StringFixed(2),
			d.Outstanding.StringFixed(2),
		}
		for _, mode := range models.PaymentModes {
			row = append(row, d.ByMode[mode].StringFixed(2))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
