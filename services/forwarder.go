package services

import (
	"context"
	"fmt"
	"time"

	"whatsapp-reseller/models"
	"whatsapp-reseller/utils"
)

// Sender is the slice of the transport layer the forwarder needs.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendMedia(ctx context.Context, to, path, caption string) error
	SendTyping(ctx context.Context, to string) error
}

// MediaCleaner deletes downloaded media once a product is done.
type MediaCleaner interface {
	Delete(path string) error
}

// ForwardLogger records one ledger row per processed product.
type ForwardLogger interface {
	LogForward(rec *models.ForwardRecord) error
}

// ForwarderConfig carries the destination and the pacing ranges.
type ForwarderConfig struct {
	Destination     string
	TypingDelayMin  time.Duration
	TypingDelayMax  time.Duration
	ImageDelayMin   time.Duration
	ImageDelayMax   time.Duration
	ProductDelayMin time.Duration
	ProductDelayMax time.Duration
}

// Forwarder drives the downstream sends for grouped products. It owns
// no state of its own; failures are isolated per product and media
// cleanup always runs.
type Forwarder struct {
	cfg     ForwarderConfig
	sender  Sender
	engine  *PriceEngine
	cleaner MediaCleaner
	ledgers []ForwardLogger
	stats   *Stats
	logger  *utils.Logger

	// sleep is swappable so tests run without real pacing.
	sleep func(min, max time.Duration)
}

// NewForwarder wires a forwarder. Ledgers are optional; nil entries
// are skipped.
func NewForwarder(cfg ForwarderConfig, sender Sender, engine *PriceEngine,
	cleaner MediaCleaner, stats *Stats, logger *utils.Logger, ledgers ...ForwardLogger) *Forwarder {

	f := &Forwarder{
		cfg:     cfg,
		sender:  sender,
		engine:  engine,
		cleaner: cleaner,
		stats:   stats,
		logger:  logger,
		sleep:   utils.RandomDelay,
	}
	for _, l := range ledgers {
		if l != nil {
			f.ledgers = append(f.ledgers, l)
		}
	}
	return f
}

// ForwardAll sends each product in arrival order with pacing between
// consecutive products. A failure in one product never aborts the
// rest.
func (f *Forwarder) ForwardAll(ctx context.Context, products []models.Product) {
	for i, product := range products {
		f.logger.Info("[forwarder] Product %d/%d — id=%s images=%d video=%v",
			i+1, len(products), product.ID, len(product.Images), product.HasVideo)

		if err := f.forwardOne(ctx, product); err != nil {
			f.logger.Error("[forwarder] Product %s failed: %v", product.ID, err)
		} else {
			f.stats.IncForwarded()
		}

		if i < len(products)-1 {
			f.sleep(f.cfg.ProductDelayMin, f.cfg.ProductDelayMax)
		}
	}
}

// forwardOne picks the reply shape for one product and drives the
// sends. Media cleanup is deferred so it runs on failure too.
func (f *Forwarder) forwardOne(ctx context.Context, product models.Product) (err error) {
	newCaption, profit, priceInfo := f.engine.ProfitInfo(product.Caption)

	defer func() {
		f.cleanup(product)
		f.record(product, newCaption, profit, err)
	}()

	// Video means manual review: alert only, images are not sent.
	if product.HasVideo {
		f.typing(ctx)
		alert := fmt.Sprintf("⚠️ VIDEO DETECTED\n\nProduct: %q\n\nVendor sent a video. Check manually.",
			product.Caption)
		return f.sender.SendText(ctx, f.cfg.Destination, alert)
	}

	if len(product.Images) == 0 {
		f.typing(ctx)
		if err := f.sender.SendText(ctx, f.cfg.Destination, newCaption); err != nil {
			return err
		}
		return f.sendProfitNote(ctx, profit, priceInfo)
	}

	f.typing(ctx)
	for i, image := range product.Images {
		caption := ""
		if i == 0 {
			caption = newCaption
		}
		if err := f.sender.SendMedia(ctx, f.cfg.Destination, image, caption); err != nil {
			return fmt.Errorf("image %d/%d: %w", i+1, len(product.Images), err)
		}
		f.sleep(f.cfg.ImageDelayMin, f.cfg.ImageDelayMax)
	}

	return f.sendProfitNote(ctx, profit, priceInfo)
}

func (f *Forwarder) sendProfitNote(ctx context.Context, profit float64, priceInfo string) error {
	if profit <= 0 {
		return nil
	}
	f.typing(ctx)
	note := fmt.Sprintf("🚀 PROFIT:\n%s\n\nInstructions:\n1. Copy caption\n2. Download images\n3. Post to status",
		priceInfo)
	return f.sender.SendText(ctx, f.cfg.Destination, note)
}

// typing is a best-effort courtesy call plus a human-looking pause.
func (f *Forwarder) typing(ctx context.Context) {
	if err := f.sender.SendTyping(ctx, f.cfg.Destination); err != nil {
		f.logger.Debug("[forwarder] Typing indicator failed: %v", err)
	}
	f.sleep(f.cfg.TypingDelayMin, f.cfg.TypingDelayMax)
}

// cleanup removes a product's downloaded images. Best effort — a
// leaked file is cheaper than a dead pipeline.
func (f *Forwarder) cleanup(product models.Product) {
	for _, path := range product.Images {
		if err := f.cleaner.Delete(path); err != nil {
			f.logger.Debug("[forwarder] Could not delete %s: %v", path, err)
		}
	}
}

func (f *Forwarder) record(product models.Product, newCaption string, profit float64, sendErr error) {
	status := "forwarded"
	if sendErr != nil {
		status = "failed"
	}

	original, _ := ParsePrice(product.Caption)
	var newPrice float64
	if original > 0 {
		newPrice = f.engine.CalculateMarkup(original)
	}

	rec := &models.ForwardRecord{
		ProductID:     product.ID,
		Caption:       product.Caption,
		NewCaption:    newCaption,
		OriginalPrice: original,
		NewPrice:      newPrice,
		Profit:        profit,
		ImageCount:    len(product.Images),
		HasVideo:      product.HasVideo,
		Status:        status,
		CreatedAt:     time.Now(),
	}

	for _, ledger := range f.ledgers {
		if err := ledger.LogForward(rec); err != nil {
			f.logger.Warn("[forwarder] Ledger write failed: %v", err)
		}
	}
}
