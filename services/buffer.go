package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"whatsapp-reseller/models"
	"whatsapp-reseller/utils"
)

// MessageBuffer accumulates post fragments until the vendor goes quiet
// for the configured wait, then partitions the batch into products and
// hands them to the flush callback. Each Push restarts the quiet
// timer; at most one timer is outstanding at any moment.
type MessageBuffer struct {
	mu      sync.Mutex
	pending []models.BufferedMessage
	timer   *time.Timer

	wait   time.Duration
	flush  func([]models.Product)
	logger *utils.Logger
}

// NewMessageBuffer creates a buffer that calls flush with the grouped
// products of each drained batch.
func NewMessageBuffer(wait time.Duration, flush func([]models.Product), logger *utils.Logger) *MessageBuffer {
	return &MessageBuffer{
		wait:   wait,
		flush:  flush,
		logger: logger,
	}
}

// Push appends a fragment and restarts the quiet-period timer.
func (b *MessageBuffer) Push(msg models.BufferedMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, msg)
	b.logger.Debug("[buffer] Buffered %s (total: %d)", msg.Kind, len(b.pending))

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.wait, b.drain)
}

// Len returns the number of pending fragments.
func (b *MessageBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// drain swaps the pending batch out under the lock, so pushes arriving
// while products are being forwarded start a fresh batch, then
// partitions and flushes.
func (b *MessageBuffer) drain() {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if !hasCaption(batch) {
		// Media with no caption yet carries no identity or price;
		// wait for a future window instead of forwarding noise.
		b.logger.Info("[buffer] No caption in batch of %d — discarding", len(batch))
		return
	}

	products := Partition(batch)
	b.logger.Info("[buffer] Drained %d messages into %d product(s)", len(batch), len(products))

	b.flush(products)
}

func hasCaption(batch []models.BufferedMessage) bool {
	for _, msg := range batch {
		if msg.Kind == models.KindCaption {
			return true
		}
	}
	return false
}

// Partition groups a drained batch into products in a single ordered
// pass. A caption opens a product (closing any open one); images and
// videos attach to the open product. Media arriving before the first
// caption has nothing to attach to and is dropped.
func Partition(batch []models.BufferedMessage) []models.Product {
	var products []models.Product
	var current *models.Product

	for _, msg := range batch {
		switch msg.Kind {
		case models.KindCaption:
			if current != nil {
				products = append(products, *current)
			}
			current = &models.Product{
				ID:      uuid.New().String(),
				Caption: msg.Content,
			}
		case models.KindVideo:
			if current != nil {
				current.HasVideo = true
			}
		case models.KindImage:
			if current != nil {
				current.Images = append(current.Images, msg.Content)
			}
		}
	}

	if current != nil {
		products = append(products, *current)
	}

	return products
}
