package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"repairshop-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDF lays a text document out on an A4 page in a monospace font so the
// columns of the counter layout survive.
func PDF(title, text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	// core fonts are cp1252, the documents carry accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Courier", "B", 12)
	pdf.CellFormat(180, 8, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(180, 5, fmt.Sprintf("Généré le %s", timeutil.Format(timeutil.Now(), timeutil.DisplayDateTimeLayout)),
		"", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Courier", "", 10)
	for _, line := range strings.Split(text, "\n") {
		pdf.CellFormat(180, 5, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return buf.Bytes(), nil
}
