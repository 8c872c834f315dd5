package services

import (
	"math"
	"strings"
	"testing"
)

func newTestEngine() *PriceEngine { return NewPriceEngine(2.0, 5000) }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"450k", 450000, true},
		{"1.75m", 1750000, true},
		{"2b", 2000000000, true},
		{"iPhone 12 64gb 450k", 450000, true},
		{"₦220,000", 220000, true},
		{"₦ 1,500,000", 1500000, true},
		{"₦220000.50", 220000.50, true},
		{"iPhone 15 256gb ₦850,000", 850000, true},
		{"no price here", 0, false},
		{"", 0, false},
		{"5000mah battery", 0, false},
		{"48mp camera", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePrice(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f, %v; want %.2f, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePriceAbbreviatedWins(t *testing.T) {
	got, ok := ParsePrice("MacBook 1.5m or ₦900,000 nego")
	if !ok || got != 1500000 {
		t.Errorf("abbreviated form should win: got %.0f, %v", got, ok)
	}
}

func TestCalculateMarkupTiers(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		original float64
		want     float64
	}{
		// 1.5x tier, then profit floor kicks in
		{50000, 55000},
		// 1.0x tier: 2% of 150k = 153k, profit 3k < floor → 155k
		{150000, 155000},
		// 0.7x tier: 1.4% of 850k = 861,900 → round up to 862k
		{850000, 862000},
		// 0.7x tier crossing into the 10k granularity band
		{1000000, 1020000},
		// 0.5x tier: 1% of 2.5m = 2,525,000 → 2,530,000
		{2500000, 2530000},
		// 0.3x tier: 0.6% of 6m = 6,036,000 → 6,040,000
		{6000000, 6040000},
	}

	for _, tt := range tests {
		got := e.CalculateMarkup(tt.original)
		if got != tt.want {
			t.Errorf("CalculateMarkup(%.0f) = %.0f; want %.0f", tt.original, got, tt.want)
		}
	}
}

func TestCalculateMarkupProfitFloor(t *testing.T) {
	e := newTestEngine()

	for _, original := range []float64{12000, 50000, 99999, 150000, 850000, 2500000, 7000000} {
		got := e.CalculateMarkup(original)
		if got < original+e.MinProfit {
			t.Errorf("CalculateMarkup(%.0f) = %.0f; profit %.0f below floor %.0f",
				original, got, got-original, e.MinProfit)
		}
	}
}

func TestCalculateMarkupGranularity(t *testing.T) {
	e := newTestEngine()

	for _, original := range []float64{12000, 50000, 150000, 850000, 990000, 2500000, 7000000} {
		got := e.CalculateMarkup(original)

		granularity := 100.0
		switch {
		case got >= 1000000:
			granularity = 10000
		case got >= 100000:
			granularity = 1000
		}

		if math.Mod(got, granularity) != 0 {
			t.Errorf("CalculateMarkup(%.0f) = %.0f; not a multiple of %.0f", original, got, granularity)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		value float64
		want  string
	}{
		{1790000, "1.79m"},
		{1750000, "1.75m"},
		{2000000, "2m"},
		{1500000, "1.5m"},
		{862000, "862k"},
		{450500, "450.5k"},
		{85000, "85k"},
		{950, "₦950"},
	}

	for _, tt := range tests {
		if got := e.FormatPrice(tt.value); got != tt.want {
			t.Errorf("FormatPrice(%.0f) = %q; want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatPriceRoundTrips(t *testing.T) {
	e := newTestEngine()

	for _, value := range []float64{450000, 862000, 1500000, 1750000, 2000000} {
		formatted := e.FormatPrice(value)
		parsed, ok := ParsePrice(formatted)
		if !ok || parsed != value {
			t.Errorf("FormatPrice(%.0f) = %q; parses back to %.0f, %v", value, formatted, parsed, ok)
		}
	}
}

func TestReplacePrice(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		caption string
		want    string
	}{
		{"iPhone 12 450k available", "iPhone 12 459k available"},
		{"iPhone 15 256gb ₦850,000", "iPhone 15 256gb ₦862,000"},
		{"MacBook Pro 1.5m DM", "MacBook Pro 1.53m DM"},
		{"no price in this caption", "no price in this caption"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := e.ReplacePrice(tt.caption); got != tt.want {
			t.Errorf("ReplacePrice(%q) = %q; want %q", tt.caption, got, tt.want)
		}
	}
}

func TestReplacePriceMixedForms(t *testing.T) {
	e := newTestEngine()

	got := e.ReplacePrice("Air 1.5m and charger ₦450,000")
	want := "Air 1.53m and charger ₦459,000"
	if got != want {
		t.Errorf("ReplacePrice mixed = %q; want %q", got, want)
	}
}

func TestProfitInfo(t *testing.T) {
	e := newTestEngine()

	newCaption, profit, info := e.ProfitInfo("iPhone 15 256gb ₦850,000")

	if !strings.Contains(newCaption, "₦862,000") {
		t.Errorf("new caption missing marked-up price: %q", newCaption)
	}
	if profit != 12000 {
		t.Errorf("profit = %.0f; want 12000", profit)
	}
	if !strings.Contains(info, "₦850,000") || !strings.Contains(info, "₦862,000") || !strings.Contains(info, "₦12,000") {
		t.Errorf("info block incomplete: %q", info)
	}
}

func TestProfitInfoNoPrice(t *testing.T) {
	e := newTestEngine()

	newCaption, profit, info := e.ProfitInfo("gadget with no price tag")

	if newCaption != "gadget with no price tag" {
		t.Errorf("caption without price should survive unchanged, got %q", newCaption)
	}
	if profit != 0 || info != "" {
		t.Errorf("expected zero profit and empty info, got %.0f, %q", profit, info)
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{950, "950"},
		{12000, "12,000"},
		{862000, "862,000"},
		{1500000, "1,500,000"},
		{2000000000, "2,000,000,000"},
	}

	for _, tt := range tests {
		if got := GroupDigits(tt.value); got != tt.want {
			t.Errorf("GroupDigits(%.0f) = %q; want %q", tt.value, got, tt.want)
		}
	}
}
