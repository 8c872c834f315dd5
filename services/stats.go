package services

import (
	"fmt"
	"sync"
)

// Stats holds the session counters. Monotonic for the process
// lifetime, reset on every start, read for reporting only.
type Stats struct {
	mu sync.Mutex

	totalSeen         int
	gadgetsDetected   int
	nonGadgetsSkipped int
	forwarded         int
}

// NewStats creates a zeroed counter set.
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) IncTotalSeen() {
	s.mu.Lock()
	s.totalSeen++
	s.mu.Unlock()
}

func (s *Stats) IncGadgetsDetected() {
	s.mu.Lock()
	s.gadgetsDetected++
	s.mu.Unlock()
}

func (s *Stats) IncNonGadgetsSkipped() {
	s.mu.Lock()
	s.nonGadgetsSkipped++
	s.mu.Unlock()
}

func (s *Stats) IncForwarded() {
	s.mu.Lock()
	s.forwarded++
	s.mu.Unlock()
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() (totalSeen, gadgetsDetected, nonGadgetsSkipped, forwarded int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSeen, s.gadgetsDetected, s.nonGadgetsSkipped, s.forwarded
}

// Summary renders the counters as a multi-line report block.
func (s *Stats) Summary() string {
	total, gadgets, skipped, forwarded := s.Snapshot()
	return fmt.Sprintf(
		"Total messages seen: %d\nGadgets detected: %d\nNon-gadgets skipped: %d\nSuccessfully forwarded: %d",
		total, gadgets, skipped, forwarded)
}
