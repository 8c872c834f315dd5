package services

import (
	"strings"
	"testing"
)

func TestStatsCounters(t *testing.T) {
	s := NewStats()

	s.IncTotalSeen()
	s.IncTotalSeen()
	s.IncGadgetsDetected()
	s.IncNonGadgetsSkipped()
	s.IncForwarded()

	total, gadgets, skipped, forwarded := s.Snapshot()
	if total != 2 || gadgets != 1 || skipped != 1 || forwarded != 1 {
		t.Errorf("snapshot = %d, %d, %d, %d", total, gadgets, skipped, forwarded)
	}
}

func TestStatsSummary(t *testing.T) {
	s := NewStats()
	s.IncTotalSeen()
	s.IncForwarded()

	summary := s.Summary()
	for _, want := range []string{"Total messages seen: 1", "Successfully forwarded: 1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
