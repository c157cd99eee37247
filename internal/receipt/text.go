// Package receipt renders the fixed-width counter documents: deposit tickets,
// vouchers, invoices and the used-phone purchase sheet.
package receipt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"repairshop-backend/internal/models"
	"repairshop-backend/internal/money"
	"repairshop-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

const (
	DefaultWidth    = 40
	DefaultCurrency = "DA"
	defaultStore    = "MAGASIN"
)

// Store is the header printed on every document.
type Store struct {
	Name     string
	Phone    string
	Currency string
	Width    int
}

func (s Store) width() int {
	if s.Width <= 0 {
		return DefaultWidth
	}
	return s.Width
}

func (s Store) currency() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}

func (s Store) name() string {
	if strings.TrimSpace(s.Name) == "" {
		return defaultStore
	}
	return s.Name
}

func (s Store) amount(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", d.StringFixed(2), s.currency())
}

// Center pads text on both sides to width. When the padding is odd the extra
// space goes to the left only if width is odd too.
func Center(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	marg := width - n
	left := marg/2 + (marg & width & 1)
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", marg-left)
}

// Wrap splits text on newlines, then cuts each paragraph at the last space that
// keeps the line within width, or hard-cuts when there is none.
func Wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		p := []rune(strings.TrimSpace(paragraph))
		for len(p) > width {
			cut := lastSpace(p, width)
			if cut == -1 {
				cut = width
			}
			lines = append(lines, string(p[:cut]))
			p = []rune(strings.TrimLeft(string(p[cut:]), " \t"))
		}
		if len(p) > 0 {
			lines = append(lines, string(p))
		}
	}
	return lines
}

func lastSpace(p []rune, width int) int {
	end := width + 1
	if end > len(p) {
		end = len(p)
	}
	for i := end - 1; i >= 0; i-- {
		if p[i] == ' ' {
			return i
		}
	}
	return -1
}

// Truncate keeps the first n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func rule(width int) string {
	return strings.Repeat("-", width)
}

// DepositTicket is the slip handed to the customer when a phone is dropped off.
func DepositTicket(store Store, t *models.RepairTicket) string {
	w := store.width()
	var out []string
	add := func(lines ...string) { out = append(out, lines...) }

	add(Center(Truncate(strings.ToUpper(store.name()), w), w))
	if store.Phone != "" {
		add(Center(Truncate("Tél: "+store.Phone, w), w))
	}
	add(rule(w))

	add(Center("TICKET DEPOT", w))
	add(Center(fmt.Sprintf("N° %d", t.ID), w))
	add(Center(Truncate("Date: "+timeutil.Format(t.DepositDate, timeutil.DateLayout), w), w))
	add(rule(w))

	add(Wrap("Client: "+t.ClientName, w)...)
	if t.ClientPhone != "" {
		add(Wrap("Tel: "+t.ClientPhone, w)...)
	}
	add(rule(w))

	device := t.DeviceBrand
	if t.DeviceModel != "" {
		device += " " + t.DeviceModel
	}
	add(Wrap("Téléphone: "+device, w)...)
	if t.SerialNumber != "" {
		add(Wrap("S/N: "+t.SerialNumber, w)...)
	}
	var acc []string
	if t.WithCharger {
		acc = append(acc, "Chargeur")
	}
	if t.WithBattery {
		acc = append(acc, "Batterie")
	}
	if len(acc) > 0 {
		add(Wrap("Acc: "+strings.Join(acc, ", "), w)...)
	}
	add(rule(w))

	if strings.TrimSpace(t.InitialDiagnosis) != "" {
		add("Diag:")
		add(Wrap(t.InitialDiagnosis, w)...)
		add(rule(w))
	}

	add("", Center("Signature client", w), "", "", rule(w))
	add(Center("Merci de conserver ce ticket", w))
	add("", "", "")

	return strings.Join(out, "\n")
}

// header is the optional centred store block of the vouchers.
func (s Store) header() []string {
	w := s.width()
	var out []string
	if s.Name != "" {
		out = append(out, Center(s.Name, w))
	}
	if s.Phone != "" {
		out = append(out, Center("Tél : "+s.Phone, w))
	}
	if len(out) > 0 {
		out = append(out, "")
	}
	return out
}

func itemRow(label string, qty int, price, subtotal string) string {
	return fmt.Sprintf("%-20s%4d%7s%9s", Truncate(label, 20), qty, price, subtotal)
}

// PurchaseVoucher is printed after a supplier delivery has been booked.
func PurchaseVoucher(store Store, inv *models.PurchaseInvoice) string {
	w := store.width()
	out := store.header()
	out = append(out, Center("BON / FACTURE D'ACHAT", w))
	out = append(out, "Date : "+timeutil.Format(inv.CreatedAt, timeutil.DisplayDateLayout))
	if inv.DocumentNumber != "" {
		out = append(out, "N° : "+inv.DocumentNumber)
	}
	supplier := inv.Supplier
	if supplier == "" {
		supplier = "Fournisseur"
	}
	out = append(out, "Fournisseur : "+supplier)
	out = append(out, rule(w))
	out = append(out, fmt.Sprintf("%-20s%4s%7s%9s", "Article", "Qté", "P.A", "Tot"))
	for _, l := range inv.Lines {
		out = append(out, itemRow(l.Label, l.Quantity, l.PurchasePrice.StringFixed(2), l.Subtotal.StringFixed(2)))
	}
	out = append(out, rule(w))
	out = append(out, "TOTAL : "+store.amount(inv.TotalAmount))
	out = append(out, "", Center("Merci", w))
	return strings.Join(out, "\n")
}

// SaleVoucher is the customer receipt for counter sales and guided sale invoices.
func SaleVoucher(store Store, sale *models.Sale) string {
	w := store.width()
	out := store.header()
	out = append(out, Center("FACTURE / BON DE VENTE", w))

	number := sale.DocumentNumber
	if number == "" {
		number = fmt.Sprintf("Vente N°%d", sale.ID)
	}
	client := sale.ClientName
	if client == "" {
		client = "Client"
	}
	out = append(out,
		"Date : "+timeutil.Format(sale.SoldAt, timeutil.DisplayDateLayout),
		"N° : "+number,
		"Client : "+client,
		"Paiement : "+sale.PaymentMode,
		rule(w),
		fmt.Sprintf("%-20s%4s%7s%9s", "Article", "Qté", "PU", "Tot"),
	)
	for _, l := range sale.Lines {
		out = append(out, itemRow(l.Label, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal.StringFixed(2)))
	}
	out = append(out,
		rule(w),
		"TOTAL : "+store.amount(sale.TotalAmount),
		"Payé : "+store.amount(sale.PaidAmount),
		"Monnaie : "+store.amount(sale.ChangeAmount),
	)
	if money.Outstanding(sale.RemainingAmount) {
		out = append(out, "Reste : "+store.amount(sale.RemainingAmount))
	}
	out = append(out, "", Center("Merci pour votre achat", w))
	return strings.Join(out, "\n")
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return timeutil.Format(t, timeutil.DateLayout)
}

// RepairInvoice is the history preview of a repair ticket.
func RepairInvoice(store Store, t *models.RepairTicket) string {
	w := store.width()
	device := strings.TrimSpace(t.DeviceBrand + " " + t.DeviceModel)
	pickup := ""
	if t.PickupDate != nil {
		pickup = date(*t.PickupDate)
	}
	work := t.WorkDone
	if work == "" && t.InitialDiagnosis != "" {
		work = "Travaux effectués : " + t.InitialDiagnosis
	}

	out := []string{
		store.name(),
		rule(w),
		"FACTURE RÉPARATION TÉLÉPHONE",
		rule(w),
		"Date dépôt  : " + date(t.DepositDate),
		"Date retrait: " + pickup,
		"Client      : " + t.ClientName,
		"Tél client  : " + t.ClientPhone,
		"Téléphone   : " + device,
		"N° Série    : " + t.SerialNumber,
		rule(w),
		"Travaux effectués :",
		work,
		rule(w),
		"Montant total : " + store.amount(t.TotalAmount),
		"Montant payé  : " + store.amount(t.PaidAmount),
		"Reste dû      : " + store.amount(t.RemainingAmount),
		rule(w),
		"Merci pour votre confiance.",
	}
	return strings.Join(out, "\n") + "\n"
}

// UsedPhoneSheet is the internal record of a second-hand phone purchase.
func UsedPhoneSheet(store Store, p *models.UsedPhonePurchase) string {
	w := store.width()
	seller := p.SellerLastName
	if p.SellerFirstName != "" {
		seller += " " + p.SellerFirstName
	}
	out := []string{
		store.name(),
		rule(w),
		"FICHE ACHAT TÉLÉPHONE D'OCCASION",
		rule(w),
		"Date achat  : " + date(p.PurchaseDate),
		"Vendeur     : " + seller,
		"Tél vendeur : " + p.SellerPhone,
		"Adresse     : " + p.SellerAddress,
		rule(w),
		"Téléphone   : " + strings.TrimSpace(p.PhoneBrand+" "+p.PhoneName),
		"IMEI        : " + p.IMEI,
		rule(w),
		"Pièce       : " + p.SellerIDType,
		"N° pièce    : " + p.SellerIDNumber,
		"Lieu deliv. : " + p.SellerIDPlace,
		"Date deliv. : " + p.SellerIDDate,
		rule(w),
		"Document interne - achat d'occasion.",
	}
	return strings.Join(out, "\n") + "\n"
}

// SaleLines lists sale lines the way the history view shows them.
func SaleLines(lines []models.SaleLine) []string {
	if len(lines) == 0 {
		return []string{"(aucun détail trouvé)"}
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, fmt.Sprintf("- %s | Qté: %d | PU: %s | Total: %s",
			l.Label, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal.StringFixed(2)))
	}
	return out
}

// CounterSaleInvoice is the history preview of a sale.
func CounterSaleInvoice(store Store, sale *models.Sale) string {
	w := store.width()
	client := sale.ClientName
	if client == "" {
		client = "Vente comptoir"
	}
	out := []string{
		store.name(),
		rule(w),
		"FACTURE VENTE AU COMPTOIR",
		rule(w),
		"Date/heure  : " + timeutil.Format(sale.SoldAt, timeutil.DisplayDateTimeLayout),
		"Client      : " + client,
		"Mode pay.   : " + sale.PaymentMode,
		rule(w),
		"Détails de la vente :",
		"",
	}
	out = append(out, SaleLines(sale.Lines)...)
	out = append(out,
		rule(w),
		"Montant total : "+store.amount(sale.TotalAmount),
		"Montant payé  : "+store.amount(sale.PaidAmount),
		"Monnaie       : "+store.amount(sale.ChangeAmount),
		rule(w),
		"Merci pour votre achat.",
	)
	return strings.Join(out, "\n") + "\n"
}
