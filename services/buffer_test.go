package services

import (
	"sync"
	"testing"
	"time"

	"whatsapp-reseller/models"
	"whatsapp-reseller/utils"
)

func caption(text string) models.BufferedMessage {
	return models.BufferedMessage{Kind: models.KindCaption, Content: text, ObservedAt: time.Now()}
}

func image(path string) models.BufferedMessage {
	return models.BufferedMessage{Kind: models.KindImage, Content: path, ObservedAt: time.Now()}
}

func video() models.BufferedMessage {
	return models.BufferedMessage{Kind: models.KindVideo, ObservedAt: time.Now()}
}

func TestPartitionAnchorsOnCaptions(t *testing.T) {
	batch := []models.BufferedMessage{
		image("lead1.jpg"),
		image("lead2.jpg"),
		caption("A"),
		image("a1.jpg"),
		caption("B"),
		video(),
	}

	products := Partition(batch)

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	a := products[0]
	if a.Caption != "A" || len(a.Images) != 1 || a.Images[0] != "a1.jpg" || a.HasVideo {
		t.Errorf("product A wrong: %+v", a)
	}

	b := products[1]
	if b.Caption != "B" || len(b.Images) != 0 || !b.HasVideo {
		t.Errorf("product B wrong: %+v", b)
	}
}

func TestPartitionLeadingMediaDropped(t *testing.T) {
	products := Partition([]models.BufferedMessage{
		video(),
		image("orphan.jpg"),
		caption("only"),
	})

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].HasVideo || len(products[0].Images) != 0 {
		t.Errorf("orphan media should not attach to a later caption: %+v", products[0])
	}
}

func TestPartitionAssignsIDs(t *testing.T) {
	products := Partition([]models.BufferedMessage{caption("A"), caption("B")})

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID == "" || products[1].ID == "" || products[0].ID == products[1].ID {
		t.Errorf("products need distinct non-empty IDs: %q vs %q", products[0].ID, products[1].ID)
	}
}

type flushRecorder struct {
	mu      sync.Mutex
	batches [][]models.Product
}

func (r *flushRecorder) flush(products []models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, products)
}

func (r *flushRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func TestBufferFlushesAfterQuietPeriod(t *testing.T) {
	rec := &flushRecorder{}
	buf := NewMessageBuffer(50*time.Millisecond, rec.flush, utils.NewLogger())

	buf.Push(caption("iPhone 12 450k"))
	buf.Push(image("a.jpg"))

	time.Sleep(200 * time.Millisecond)

	if rec.count() != 1 {
		t.Fatalf("expected exactly 1 flush, got %d", rec.count())
	}
	products := rec.batches[0]
	if len(products) != 1 || products[0].Caption != "iPhone 12 450k" || len(products[0].Images) != 1 {
		t.Errorf("unexpected flushed products: %+v", products)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer should be empty after flush, has %d", buf.Len())
	}
}

func TestBufferResetsTimerOnPush(t *testing.T) {
	rec := &flushRecorder{}
	buf := NewMessageBuffer(100*time.Millisecond, rec.flush, utils.NewLogger())

	buf.Push(caption("first"))
	time.Sleep(60 * time.Millisecond)
	buf.Push(caption("second"))
	time.Sleep(60 * time.Millisecond)

	// 120ms since the first push, but only 60ms since the second: the
	// debounce window restarted, so nothing has flushed yet.
	if rec.count() != 0 {
		t.Fatalf("flush fired before the quiet period elapsed")
	}

	time.Sleep(100 * time.Millisecond)

	if rec.count() != 1 {
		t.Fatalf("expected 1 flush after quiet period, got %d", rec.count())
	}
	if len(rec.batches[0]) != 2 {
		t.Errorf("both captions belong to the same batch, got %d products", len(rec.batches[0]))
	}
}

func TestBufferDiscardsCaptionlessBatch(t *testing.T) {
	rec := &flushRecorder{}
	buf := NewMessageBuffer(50*time.Millisecond, rec.flush, utils.NewLogger())

	buf.Push(image("a.jpg"))
	buf.Push(video())

	time.Sleep(200 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("captionless batch must be discarded, got %d flushes", rec.count())
	}
	if buf.Len() != 0 {
		t.Errorf("discarded batch should still clear the buffer, has %d", buf.Len())
	}
}

func TestBufferAccumulatesFreshBatchDuringFlush(t *testing.T) {
	blocker := make(chan struct{})
	var mu sync.Mutex
	var batches [][]models.Product

	var buf *MessageBuffer
	buf = NewMessageBuffer(30*time.Millisecond, func(products []models.Product) {
		mu.Lock()
		batches = append(batches, products)
		first := len(batches) == 1
		mu.Unlock()

		if first {
			// Push while the first batch is still being handled.
			buf.Push(caption("late arrival 120k"))
			<-blocker
		}
	}, utils.NewLogger())

	buf.Push(caption("early 450k"))

	time.Sleep(100 * time.Millisecond)
	close(blocker)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 2 {
		t.Fatalf("expected 2 separate batches, got %d", len(batches))
	}
	if batches[0][0].Caption != "early 450k" || batches[1][0].Caption != "late arrival 120k" {
		t.Errorf("batches mixed: %+v", batches)
	}
}
