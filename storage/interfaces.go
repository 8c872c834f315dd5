package storage

import (
	"time"

	"whatsapp-reseller/models"
)

// ForwardLogger is the interface any ledger backend must satisfy.
type ForwardLogger interface {
	LogForward(rec *models.ForwardRecord) error
	Close() error
}

// LedgerReader summarises recorded forwards for reporting.
type LedgerReader interface {
	TotalsSince(since time.Time) (count int, profit float64, err error)
}
