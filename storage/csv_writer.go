package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"whatsapp-reseller/models"
)

// CSVWriter appends forward records to a local CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens (or creates) the ledger CSV at the given path and
// writes the header row on first creation. Intermediate directories
// are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if fresh {
		if err := w.Write([]string{
			"product_id", "caption", "new_caption", "original_price",
			"new_price", "profit", "image_count", "has_video", "status", "created_at",
		}); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{file: f, writer: w}, nil
}

// LogForward appends one forward record row.
func (c *CSVWriter) LogForward(rec *models.ForwardRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{
		rec.ProductID,
		rec.Caption,
		rec.NewCaption,
		strconv.FormatFloat(rec.OriginalPrice, 'f', 2, 64),
		strconv.FormatFloat(rec.NewPrice, 'f', 2, 64),
		strconv.FormatFloat(rec.Profit, 'f', 2, 64),
		strconv.Itoa(rec.ImageCount),
		strconv.FormatBool(rec.HasVideo),
		rec.Status,
		rec.CreatedAt.Format(time.RFC3339),
	}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
