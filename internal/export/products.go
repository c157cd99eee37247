// Package export converts catalog and sales data to and from spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"repairshop-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheet    = "Sheet1"
	XLSXType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var productHeaders = []string{
	"Référence", "Code-barres", "Nom", "Catégorie", "Description",
	"Prix achat", "Prix vente", "Quantité", "Seuil alerte", "Actif",
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func headerRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

// ProductsXLSX writes the catalog with the same columns ParseProducts reads.
func ProductsXLSX(products []*models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, headerRow(productHeaders)); err != nil {
		return nil, err
	}
	for i, p := range products {
		active := "oui"
		if !p.Active {
			active = "non"
		}
		row := []interface{}{
			p.Reference, p.Barcode, p.Name, p.Category, p.Description,
			p.PurchasePrice.InexactFloat64(), p.SalePrice.InexactFloat64(),
			p.Quantity, p.LowStockThreshold, active,
		}
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}
	return toBytes(f)
}

// ProductRow is one parsed import line; Line is the 1-based sheet row.
type ProductRow struct {
	Line    int
	Product models.CreateProductRequest
}

// RowError reports a rejected import line.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParseProducts reads the first sheet of an xlsx workbook. The first row is a
// header. Blank rows are skipped; malformed ones are reported and skipped.
func ParseProducts(r io.Reader) ([]ProductRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		name = sheet
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	var out []ProductRow
	var bad []RowError
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		p, err := parseProductRow(row)
		if err != nil {
			bad = append(bad, RowError{Line: line, Message: err.Error()})
			continue
		}
		out = append(out, ProductRow{Line: line, Product: p})
	}
	return out, bad, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func col(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseProductRow(row []string) (models.CreateProductRequest, error) {
	p := models.CreateProductRequest{
		Reference:   col(row, 0),
		Barcode:     col(row, 1),
		Name:        col(row, 2),
		Category:    col(row, 3),
		Description: col(row, 4),
	}
	if p.Name == "" {
		return p, fmt.Errorf("nom manquant")
	}
	var err error
	if p.PurchasePrice, err = parseAmount(col(row, 5)); err != nil {
		return p, fmt.Errorf("prix achat: %w", err)
	}
	if p.SalePrice, err = parseAmount(col(row, 6)); err != nil {
		return p, fmt.Errorf("prix vente: %w", err)
	}
	if p.Quantity, err = parseCount(col(row, 7)); err != nil {
		return p, fmt.Errorf("quantité: %w", err)
	}
	if p.LowStockThreshold, err = parseCount(col(row, 8)); err != nil {
		return p, fmt.Errorf("seuil alerte: %w", err)
	}
	return p, nil
}

// parseAmount accepts "1500", "1500.50" and the comma decimal "1500,50".
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("montant invalide %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("montant négatif %q", s)
	}
	return d.Round(2), nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets often store integers as 3.0
		d, derr := decimal.NewFromString(s)
		if derr != nil || !d.Equal(d.Truncate(0)) {
			return 0, fmt.Errorf("entier invalide %q", s)
		}
		n = int(d.IntPart())
	}
	if n < 0 {
		return 0, fmt.Errorf("valeur négative %q", s)
	}
	return n, nil
}
