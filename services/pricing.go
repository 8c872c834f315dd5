package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// abbrevRegexp captures abbreviated amounts: 450k, 1.75m, 2b
	abbrevRegexp = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([kmb])\b`)
	// nairaRegexp captures symbol-prefixed grouped amounts: ₦220,000 or ₦220000.50
	nairaRegexp = regexp.MustCompile(`₦\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)
)

var abbrevMultipliers = map[string]float64{
	"k": 1_000,
	"m": 1_000_000,
	"b": 1_000_000_000,
}

// markupTiers maps price bands to the fraction of the base markup rate
// applied inside each band. Richer items carry a thinner percentage so
// the absolute profit stays proportionate. Ordered highest band first.
var markupTiers = []struct {
	Threshold float64
	Factor    float64
}{
	{5_000_000, 0.3},
	{2_000_000, 0.5},
	{500_000, 0.7},
	{100_000, 1.0},
	{0, 1.5},
}

// ParsePrice extracts the first price found in text. The abbreviated
// form (450k, 1.5m) wins over the naira form (₦220,000) when both are
// present. A false return is a normal "no price here" outcome.
func ParsePrice(text string) (float64, bool) {
	if m := abbrevRegexp.FindStringSubmatch(text); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return num * abbrevMultipliers[strings.ToLower(m[2])], true
	}

	if m := nairaRegexp.FindStringSubmatch(text); m != nil {
		num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return num, true
	}

	return 0, false
}

// PriceEngine re-prices vendor captions: parse, markup, re-format.
type PriceEngine struct {
	MarkupPercent float64
	MinProfit     float64
}

// NewPriceEngine creates a PriceEngine with the given base markup
// percentage and minimum absolute profit.
func NewPriceEngine(markupPercent, minProfit float64) *PriceEngine {
	return &PriceEngine{MarkupPercent: markupPercent, MinProfit: minProfit}
}

// CalculateMarkup computes the resale price for an original amount.
// The effective percentage shrinks across price bands, the result is
// rounded up to a magnitude-scaled granularity, and a minimum absolute
// profit is enforced afterwards.
func (e *PriceEngine) CalculateMarkup(original float64) float64 {
	rate := e.MarkupPercent
	for _, tier := range markupTiers {
		if original >= tier.Threshold {
			rate *= tier.Factor
			break
		}
	}

	newPrice := roundUp(original * (1 + rate/100))

	// Never let tier math or rounding erode the minimum margin.
	if newPrice-original < e.MinProfit {
		newPrice = roundUp(original + e.MinProfit)
	}

	return newPrice
}

// roundUp rounds a price up to the granularity for its magnitude:
// nearest 10k at ≥1m, nearest 1k at ≥100k, nearest 100 below that.
func roundUp(price float64) float64 {
	switch {
	case price >= 1_000_000:
		return math.Ceil(price/10_000) * 10_000
	case price >= 100_000:
		return math.Ceil(price/1_000) * 1_000
	default:
		return math.Ceil(price/100) * 100
	}
}

// FormatPrice renders an amount the way vendors write them:
// 1785000 → "1.79m", 862000 → "862k", 950 → "₦950".
func (e *PriceEngine) FormatPrice(value float64) string {
	switch {
	case value >= 1_000_000:
		return trimZeros(strconv.FormatFloat(value/1_000_000, 'f', 2, 64)) + "m"
	case value >= 1_000:
		return trimZeros(strconv.FormatFloat(value/1_000, 'f', 1, 64)) + "k"
	default:
		return "₦" + GroupDigits(value)
	}
}

// ReplacePrice rewrites every price in a caption with its marked-up
// value, preserving the surface style of each occurrence: abbreviated
// prices stay abbreviated, naira prices stay symbol-and-commas.
// Substrings that fail to parse survive unchanged.
func (e *PriceEngine) ReplacePrice(caption string) string {
	result := abbrevRegexp.ReplaceAllStringFunc(caption, func(match string) string {
		original, ok := ParsePrice(match)
		if !ok {
			return match
		}
		return e.FormatPrice(e.CalculateMarkup(original))
	})

	result = nairaRegexp.ReplaceAllStringFunc(result, func(match string) string {
		original, ok := ParsePrice(match)
		if !ok {
			return match
		}
		return "₦" + GroupDigits(e.CalculateMarkup(original))
	})

	return result
}

// ProfitInfo rewrites a caption and summarises the price change. A
// caption with no extractable price comes back unmodified with zero
// profit — callers forward it as-is.
func (e *PriceEngine) ProfitInfo(caption string) (newCaption string, profit float64, info string) {
	newCaption = e.ReplacePrice(caption)

	original, ok := ParsePrice(caption)
	if !ok {
		return newCaption, 0, ""
	}

	newPrice := e.CalculateMarkup(original)
	profit = newPrice - original

	info = fmt.Sprintf("Original: ₦%s\nNew Price: ₦%s\nYour Profit: ₦%s",
		GroupDigits(original), GroupDigits(newPrice), GroupDigits(profit))

	return newCaption, profit, info
}

// GroupDigits formats an amount with thousands separators: 862000 → "862,000".
func GroupDigits(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String() + fracPart
}

// trimZeros drops trailing fractional zeros and a dangling decimal
// point: "1.50" → "1.5", "2.00" → "2".
func trimZeros(s string) string {
	if !strings.ContainsRune(s, '.') {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
