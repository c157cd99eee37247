package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"repairshop-backend/internal/printing"
)

// DocumentPrinter is implemented by printing.Printer.
type DocumentPrinter interface {
	Print(ctx context.Context, name, text string) (*printing.Result, error)
}

// PrinterService sends counter documents to the shop printer.
type PrinterService struct {
	printer DocumentPrinter
	tickets *TicketService
	sales   *SaleService
}

func NewPrinterService(printer DocumentPrinter, tickets *TicketService, sales *SaleService) *PrinterService {
	return &PrinterService{printer: printer, tickets: tickets, sales: sales}
}

func (s *PrinterService) print(ctx context.Context, name, text string) (*printing.Result, error) {
	res, err := s.printer.Print(ctx, name, text)
	if err != nil {
		return nil, fmt.Errorf("failed to print %s: %w", name, err)
	}
	zap.L().Info("document printed", zap.String("name", name), zap.Bool("printed", res.Printed), zap.String("path", res.Path))
	return res, nil
}

// PrintDepositSlip prints the ticket handed to the customer at deposit.
func (s *PrinterService) PrintDepositSlip(ctx context.Context, ticketID int) (*printing.Result, error) {
	text, err := s.tickets.DepositSlip(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.print(ctx, fmt.Sprintf("ticket_%d", ticketID), text)
}

func (s *PrinterService) PrintSaleReceipt(ctx context.Context, saleID int) (*printing.Result, error) {
	text, err := s.sales.Receipt(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return s.print(ctx, fmt.Sprintf("vente_%d", saleID), text)
}

// PrintText prints an already rendered voucher, e.g. a purchase invoice.
func (s *PrinterService) PrintText(ctx context.Context, name, text string) (*printing.Result, error) {
	if text == "" {
		return nil, invalid("nothing to print")
	}
	return s.print(ctx, name, text)
}
