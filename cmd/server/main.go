package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"repairshop-backend/internal/auth"
	"repairshop-backend/internal/cache"
	"repairshop-backend/internal/config"
	"repairshop-backend/internal/database"
	"repairshop-backend/internal/db"
	"repairshop-backend/internal/events"
	h "repairshop-backend/internal/http"
	"repairshop-backend/internal/handlers"
	"repairshop-backend/internal/health"
	"repairshop-backend/internal/logger"
	"repairshop-backend/internal/middleware"
	"repairshop-backend/internal/printing"
	"repairshop-backend/internal/repositories"
	"repairshop-backend/internal/services"
	"repairshop-backend/internal/timeutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	loc := timeutil.SetLocation(cfg.Store.Timezone)
	log.Info("store timezone", zap.String("location", loc.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	log.Info("running database migrations")
	if err := database.NewMigrator(pool).RunMigrations(ctx); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis only backs caches; the shop runs without it
	if cfg.Redis.Addr == "" {
		log.Warn("redis not configured, caching disabled")
	} else if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		log.Info("redis cache connected", zap.String("addr", cfg.Redis.Addr))
		defer func() { _ = cache.Close() }()
	}

	hub := events.NewHub()
	go hub.Run(ctx)

	var archiver printing.Archiver
	if cfg.Archive.Enabled {
		s3Archiver, err := printing.NewS3Archiver(ctx, printing.ArchiveConfig{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			Bucket:    cfg.Archive.Bucket,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Prefix:    cfg.Archive.Prefix,
		})
		if err != nil {
			log.Warn("document archive disabled", zap.Error(err))
		} else {
			archiver = s3Archiver
			log.Info("document archive enabled", zap.String("bucket", cfg.Archive.Bucket))
		}
	}
	printer := printing.New(printing.Config{
		Command:  cfg.Printing.Command,
		Printer:  cfg.Printing.Printer,
		SpoolDir: cfg.Printing.SpoolDir,
		Copies:   cfg.Printing.Copies,
	}, archiver)

	sessions, err := auth.NewSessionManager(cfg.Admin.TokenSecret, time.Duration(cfg.Admin.SessionHours)*time.Hour, cfg.Admin.Issuer)
	if err != nil {
		log.Fatal("failed to build admin sessions", zap.Error(err))
	}
	if cfg.Admin.TokenSecret == "" {
		log.Warn("ADMIN_TOKEN_SECRET not set, admin sessions end on restart")
	}

	// Services
	settingsService := services.NewSettingsService(pool, cfg.Store.Currency, cfg.Store.ReceiptWidth)
	adminService := services.NewAdminService(settingsService, sessions, repositories.NewAdminActionLogRepository(pool), cfg.Admin.Issuer)
	clientService := services.NewClientService(repositories.NewClientRepository(pool))
	ticketService := services.NewTicketService(pool, settingsService, hub)
	productService := services.NewProductService(pool, hub)
	saleService := services.NewSaleService(pool, settingsService, hub)
	invoiceService := services.NewInvoiceService(pool, saleService, settingsService, hub)
	tillService := services.NewTillService(repositories.NewTillRepository(pool), hub)
	debtService := services.NewDebtService(pool, hub)
	usedPhoneService := services.NewUsedPhoneService(repositories.NewUsedPhoneRepository(pool), settingsService)
	historyService := services.NewHistoryService(ticketService, saleService, productService, debtService, tillService)
	printerService := services.NewPrinterService(printer, ticketService, saleService)

	// Handlers
	router := h.NewRouter(
		handlers.NewAdminHandler(adminService),
		handlers.NewSettingsHandler(settingsService, adminService),
		handlers.NewClientHandler(clientService),
		handlers.NewTicketHandler(ticketService, adminService),
		handlers.NewProductHandler(productService, adminService),
		handlers.NewSaleHandler(saleService),
		handlers.NewInvoiceHandler(invoiceService, adminService),
		handlers.NewTillHandler(tillService, adminService),
		handlers.NewDebtHandler(debtService),
		handlers.NewUsedPhoneHandler(usedPhoneService, adminService),
		handlers.NewHistoryHandler(historyService),
		handlers.NewPrinterHandler(printerService),
		handlers.NewHealthHandler(health.NewHealthChecker(pool, cfg.Printing.SpoolDir)),
		middleware.NewAdminGate(sessions),
		hub,
	)

	// Wrap with panic recovery, request logging and CORS; metrics run inside the router
	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.RequestLogger(corsMiddleware(router)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
