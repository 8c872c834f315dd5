package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"whatsapp-reseller/config"
	"whatsapp-reseller/models"
	"whatsapp-reseller/services"
	"whatsapp-reseller/storage"
	"whatsapp-reseller/transport/whatsapp"
	"whatsapp-reseller/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== WhatsApp Reseller Bot starting ===")
	logger.Info("Config — markup: %.1f%% | min price: ₦%.0f | min profit: ₦%.0f | buffer wait: %v",
		cfg.MarkupPercent, cfg.MinGadgetPrice, cfg.MinProfit, cfg.BufferWait)

	if cfg.VendorNumber == "" || cfg.PrimaryNumber == "" {
		logger.Error("VENDOR_NUMBER and PRIMARY_NUMBER must be set")
		os.Exit(1)
	}

	csvLedger, err := storage.NewCSVWriter(cfg.CSVLedgerPath)
	if err != nil {
		logger.Error("Failed to create CSV ledger: %v", err)
		os.Exit(1)
	}
	defer csvLedger.Close()

	// The Postgres ledger is reporting-only, so a missing database
	// degrades to CSV instead of killing the bot.
	var pgLedger *storage.PostgresWriter
	if cfg.LedgerDB {
		pgLedger, err = storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Warn("Postgres ledger unavailable, continuing with CSV only: %v", err)
		} else {
			defer pgLedger.Close()
		}
	}

	mediaStore, err := storage.NewMediaStore(cfg.DownloadsDir)
	if err != nil {
		logger.Error("Failed to create media store: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := services.NewPriceEngine(cfg.MarkupPercent, cfg.MinProfit)
	filter := services.NewGadgetFilter(cfg.MinGadgetPrice)
	stats := services.NewStats()

	client := whatsapp.New(cfg, logger)
	if err := client.Start(ctx); err != nil {
		logger.Error("WhatsApp session failed: %v", err)
		os.Exit(1)
	}
	defer client.Close()

	forwarder := services.NewForwarder(
		services.ForwarderConfig{
			Destination:     cfg.PrimaryNumber,
			TypingDelayMin:  cfg.TypingDelayMin,
			TypingDelayMax:  cfg.TypingDelayMax,
			ImageDelayMin:   cfg.ImageDelayMin,
			ImageDelayMax:   cfg.ImageDelayMax,
			ProductDelayMin: cfg.ProductDelayMin,
			ProductDelayMax: cfg.ProductDelayMax,
		},
		client, engine, mediaStore, stats, logger,
		csvLedger, pgLedgerOrNil(pgLedger),
	)

	buffer := services.NewMessageBuffer(cfg.BufferWait, func(products []models.Product) {
		forwarder.ForwardAll(ctx, products)
	}, logger)

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	ingestor := services.NewIngestor(filter, buffer, client, mediaStore, stats, logger, retry)

	// Daily digest to the primary account.
	var digestLedger storage.LedgerReader
	if pgLedger != nil {
		digestLedger = pgLedger
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReportCron, func() {
		sendDigest(ctx, client, cfg.PrimaryNumber, stats, digestLedger, logger)
	}); err != nil {
		logger.Warn("Invalid REPORT_CRON %q, digest disabled: %v", cfg.ReportCron, err)
	} else {
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("Watching %s — forwarding to %s", cfg.VendorNumber, cfg.PrimaryNumber)

	if err := client.Watch(ctx, func(msg models.InboundMessage) {
		ingestor.Handle(ctx, msg)
	}); err != nil && ctx.Err() == nil {
		logger.Error("Watch loop failed: %v", err)
	}

	fmt.Println("\nFINAL STATS")
	fmt.Println(stats.Summary())
	logger.Info("Shutting down bot...")
}

// pgLedgerOrNil keeps a typed nil *PostgresWriter from sneaking into
// the forwarder's ledger list as a non-nil interface.
func pgLedgerOrNil(pg *storage.PostgresWriter) services.ForwardLogger {
	if pg == nil {
		return nil
	}
	return pg
}

// sendDigest messages the daily totals to the primary account. Ledger
// numbers are included when the database is around.
func sendDigest(ctx context.Context, sender services.Sender, to string,
	stats *services.Stats, ledger storage.LedgerReader, logger *utils.Logger) {

	body := "📊 DAILY DIGEST\n" + stats.Summary()

	if ledger != nil {
		since := time.Now().Add(-24 * time.Hour)
		if count, profit, err := ledger.TotalsSince(since); err == nil {
			body += fmt.Sprintf("\nLast 24h: %d forwarded, ₦%s projected profit",
				count, services.GroupDigits(profit))
		}
	}

	if err := sender.SendText(ctx, to, body); err != nil {
		logger.Warn("Digest send failed: %v", err)
	}
}
