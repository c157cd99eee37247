package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"repairshop-backend/internal/events"
	"repairshop-backend/internal/handlers"
	"repairshop-backend/internal/middleware"
)

func NewRouter(
	adminHandler *handlers.AdminHandler,
	settingsHandler *handlers.SettingsHandler,
	clientHandler *handlers.ClientHandler,
	ticketHandler *handlers.TicketHandler,
	productHandler *handlers.ProductHandler,
	saleHandler *handlers.SaleHandler,
	invoiceHandler *handlers.InvoiceHandler,
	tillHandler *handlers.TillHandler,
	debtHandler *handlers.DebtHandler,
	usedPhoneHandler *handlers.UsedPhoneHandler,
	historyHandler *handlers.HistoryHandler,
	printerHandler *handlers.PrinterHandler,
	healthHandler *handlers.HealthHandler,
	gate *middleware.AdminGate,
	hub *events.Hub,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// admin wraps a handler behind the admin password gate
	admin := func(f http.HandlerFunc) http.Handler { return gate.Require(f) }

	// Admin gate
	r.Handle("/api/admin/status", gate.Optional(http.HandlerFunc(adminHandler.Status))).Methods("GET")
	r.HandleFunc("/api/admin/setup", adminHandler.Setup).Methods("POST")
	r.HandleFunc("/api/admin/login", adminHandler.Login).Methods("POST")
	r.Handle("/api/admin/logout", gate.Optional(http.HandlerFunc(adminHandler.Logout))).Methods("POST")
	r.Handle("/api/admin/password", admin(adminHandler.ChangePassword)).Methods("PUT")
	r.Handle("/api/admin/actions", admin(adminHandler.Actions)).Methods("GET")
	r.Handle("/api/admin/totp/setup", admin(adminHandler.SetupTOTP)).Methods("POST")
	r.Handle("/api/admin/totp/enable", admin(adminHandler.EnableTOTP)).Methods("POST")
	r.Handle("/api/admin/totp/disable", admin(adminHandler.DisableTOTP)).Methods("POST")

	// Store settings
	r.HandleFunc("/api/settings", settingsHandler.Get).Methods("GET")
	r.Handle("/api/settings", admin(settingsHandler.Update)).Methods("PUT")

	// Clients
	r.HandleFunc("/api/clients", clientHandler.List).Methods("GET")
	r.HandleFunc("/api/clients", clientHandler.Create).Methods("POST")
	r.HandleFunc("/api/clients/{id:[0-9]+}", clientHandler.Get).Methods("GET")
	r.HandleFunc("/api/clients/{id:[0-9]+}", clientHandler.Update).Methods("PUT")

	// Repair tickets
	r.HandleFunc("/api/tickets", ticketHandler.List).Methods("GET")
	r.HandleFunc("/api/tickets", ticketHandler.Create).Methods("POST")
	r.HandleFunc("/api/tickets/{id:[0-9]+}", ticketHandler.Get).Methods("GET")
	r.Handle("/api/tickets/{id:[0-9]+}", admin(ticketHandler.Delete)).Methods("DELETE")
	r.HandleFunc("/api/tickets/{id:[0-9]+}/pickup", ticketHandler.Pickup).Methods("POST")
	r.HandleFunc("/api/tickets/{id:[0-9]+}/cancel", ticketHandler.Cancel).Methods("POST")
	r.HandleFunc("/api/tickets/{id:[0-9]+}/deposit-slip", ticketHandler.DepositSlip).Methods("GET")
	r.HandleFunc("/api/tickets/{id:[0-9]+}/print", printerHandler.PrintDepositSlip).Methods("POST")

	// Catalog and stock
	r.HandleFunc("/api/products", productHandler.List).Methods("GET")
	r.Handle("/api/products", admin(productHandler.Create)).Methods("POST")
	r.HandleFunc("/api/products/low-stock", productHandler.LowStock).Methods("GET")
	r.HandleFunc("/api/products/barcode/{code}", productHandler.ByBarcode).Methods("GET")
	r.HandleFunc("/api/products/export", productHandler.Export).Methods("GET")
	r.Handle("/api/products/import", admin(productHandler.Import)).Methods("POST")
	r.HandleFunc("/api/products/{id:[0-9]+}", productHandler.Get).Methods("GET")
	r.Handle("/api/products/{id:[0-9]+}", admin(productHandler.Update)).Methods("PUT")
	r.Handle("/api/products/{id:[0-9]+}/deactivate", admin(productHandler.Deactivate)).Methods("POST")
	r.Handle("/api/products/{id:[0-9]+}/activate", admin(productHandler.Activate)).Methods("POST")
	r.Handle("/api/products/{id:[0-9]+}/stock", admin(productHandler.AdjustStock)).Methods("POST")

	// Counter sales
	r.HandleFunc("/api/sales", saleHandler.List).Methods("GET")
	r.HandleFunc("/api/sales", saleHandler.Create).Methods("POST")
	r.HandleFunc("/api/sales/{id:[0-9]+}", saleHandler.Get).Methods("GET")
	r.HandleFunc("/api/sales/{id:[0-9]+}/receipt", saleHandler.Receipt).Methods("GET")
	r.HandleFunc("/api/sales/{id:[0-9]+}/print", printerHandler.PrintSaleReceipt).Methods("POST")

	// Guided invoices
	r.Handle("/api/invoices/purchase", admin(invoiceHandler.Purchase)).Methods("POST")
	r.HandleFunc("/api/invoices/sale", invoiceHandler.Sale).Methods("POST")

	// Tills
	r.HandleFunc("/api/tills", tillHandler.List).Methods("GET")
	r.Handle("/api/tills", admin(tillHandler.Create)).Methods("POST")
	r.HandleFunc("/api/tills/{id:[0-9]+}/balance", tillHandler.Balance).Methods("GET")
	r.HandleFunc("/api/tills/{id:[0-9]+}/movements", tillHandler.Movements).Methods("GET")
	r.Handle("/api/tills/{id:[0-9]+}/movements", admin(tillHandler.AddMovement)).Methods("POST")
	r.Handle("/api/tills/movements/{id:[0-9]+}", admin(tillHandler.DeleteMovement)).Methods("DELETE")

	// Debts
	r.HandleFunc("/api/debts", debtHandler.List).Methods("GET")
	r.HandleFunc("/api/debts", debtHandler.Create).Methods("POST")
	r.HandleFunc("/api/debts/{id:[0-9]+}", debtHandler.Get).Methods("GET")
	r.HandleFunc("/api/debts/{id:[0-9]+}", debtHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/debts/{id:[0-9]+}/payments", debtHandler.Pay).Methods("POST")

	// Used-phone intake
	r.HandleFunc("/api/used-phones", usedPhoneHandler.List).Methods("GET")
	r.HandleFunc("/api/used-phones", usedPhoneHandler.Create).Methods("POST")
	r.HandleFunc("/api/used-phones/{id:[0-9]+}", usedPhoneHandler.Get).Methods("GET")
	r.Handle("/api/used-phones/{id:[0-9]+}", admin(usedPhoneHandler.Delete)).Methods("DELETE")
	r.HandleFunc("/api/used-phones/{id:[0-9]+}/sheet", usedPhoneHandler.Sheet).Methods("GET")

	// History, documents and exports
	r.HandleFunc("/api/history/repairs", historyHandler.Repairs).Methods("GET")
	r.HandleFunc("/api/history/repairs/{id:[0-9]+}/invoice", historyHandler.RepairInvoice).Methods("GET")
	r.HandleFunc("/api/history/repairs/{id:[0-9]+}/invoice.pdf", historyHandler.RepairInvoicePDF).Methods("GET")
	r.HandleFunc("/api/history/sales", historyHandler.Sales).Methods("GET")
	r.HandleFunc("/api/history/sales/export", historyHandler.ExportSales).Methods("GET")
	r.HandleFunc("/api/history/sales/{id:[0-9]+}/invoice", historyHandler.SaleInvoice).Methods("GET")
	r.HandleFunc("/api/history/sales/{id:[0-9]+}/invoice.pdf", historyHandler.SaleInvoicePDF).Methods("GET")
	r.HandleFunc("/api/reports/daily.csv", historyHandler.DailyCSV).Methods("GET")
	r.HandleFunc("/api/dashboard", historyHandler.Dashboard).Methods("GET")

	// Live counter events
	r.HandleFunc("/ws/events", hub.ServeWS).Methods("GET")

	// Health endpoints (no auth required)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
