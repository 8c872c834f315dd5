package services

import (
	"regexp"
	"strings"
)

// specPatterns are the product specification shapes that mark a caption
// as a gadget listing even without a brand keyword. Ordered table so
// the matching precedence is data, not code.
var specPatterns = []struct {
	Name   string
	Regexp *regexp.Regexp
}{
	{"storage", regexp.MustCompile(`(?i)\d+(gb|tb)\s*(storage|ssd|ram)?`)},
	{"phone model", regexp.MustCompile(`(?i)(iphone|galaxy|pixel)\s*(1[0-9]|[5-9])`)},
	{"screen size", regexp.MustCompile(`(?i)\d+\.?\d*\s*(inch|"|')`)},
	{"processor", regexp.MustCompile(`(?i)(i[3579]|m[123]|ryzen|snapdragon|core)`)},
	{"camera", regexp.MustCompile(`(?i)\d+\s*mp\s*(camera)?`)},
	{"battery", regexp.MustCompile(`(?i)\d+\s*mah`)},
}

var defaultGadgetKeywords = []string{
	// Phone brands
	"iphone", "samsung", "galaxy", "pixel", "oneplus", "xiaomi",
	"redmi", "oppo", "tecno", "infinix", "huawei", "nokia",
	"motorola", "realme", "vivo", "phone", "android",

	// Laptop brands
	"macbook", "laptop", "dell", "hp", "lenovo", "asus", "acer",
	"msi", "alienware", "thinkpad", "elitebook", "pavilion",
	"inspiron", "latitude", "zbook", "chromebook",

	// Audio devices
	"airpod", "earphone", "headphone", "earbud", "speaker",
	"jbl", "beats", "bose", "sony", "airbuds",

	// Wearables
	"smartwatch", "apple watch", "galaxy watch", "fitbit",
	"smart watch", "watch",

	// Tablets
	"ipad", "tablet", "tab",

	// Gaming
	"ps5", "ps4", "playstation", "xbox", "nintendo", "switch",
	"console", "gaming",

	// Accessories
	"charger", "powerbank", "power bank", "cable", "adapter",
	"case", "screen protector", "pod",

	// Tech terms
	"smart", "wireless", "bluetooth", "brand new", "sealed",
	"original", "unlocked", "storage", "uk used", "tokunbo",

	// Spec units
	"gb", "tb", "ram", "ssd", "inch", "display", "processor",
	"core", "camera", "battery", "mah", "mp",
}

var defaultSkipKeywords = []string{
	"meme", "joke", "funny", "lol", "haha", "😂",
	"quote", "motivation", "motivational", "prayer", "amen",
	"good morning", "good night", "goodmorning", "goodnight",
	"happy birthday", "birthday", "congratulations", "congrats",
	"food", "shawarma", "pizza", "rice", "jollof", "chicken",
	"clothes", "clothing", "shoe", "shoes", "bag", "dress",
	"shirt", "trouser", "fashion", "ankara", "fabric",
	"service", "hiring", "job", "vacancy", "recruit",
	"church", "mosque", "god", "jesus", "allah",
	"follow", "follower", "like", "comment", "share",
}

// GadgetFilter decides whether a caption is a priced gadget listing.
// Stateless apart from its vocabularies, which callers may extend at
// runtime.
type GadgetFilter struct {
	gadgetKeywords []string
	skipKeywords   []string
	minGadgetPrice float64
}

// NewGadgetFilter creates a filter with the default vocabularies and
// the given minimum listing price.
func NewGadgetFilter(minGadgetPrice float64) *GadgetFilter {
	return &GadgetFilter{
		gadgetKeywords: append([]string(nil), defaultGadgetKeywords...),
		skipKeywords:   append([]string(nil), defaultSkipKeywords...),
		minGadgetPrice: minGadgetPrice,
	}
}

// IsGadget reports whether a caption is worth reselling. Exclusion
// keywords veto everything else; after that a priced caption needs
// either a gadget keyword or a spec pattern.
func (f *GadgetFilter) IsGadget(caption string) bool {
	if strings.TrimSpace(caption) == "" {
		return false
	}

	lower := strings.ToLower(caption)

	for _, skip := range f.skipKeywords {
		if strings.Contains(lower, skip) {
			return false
		}
	}

	price, ok := ParsePrice(caption)
	if !ok || price < f.minGadgetPrice {
		return false
	}

	return f.hasGadgetKeyword(lower) || f.hasSpecPattern(lower)
}

func (f *GadgetFilter) hasGadgetKeyword(lower string) bool {
	for _, keyword := range f.gadgetKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (f *GadgetFilter) hasSpecPattern(lower string) bool {
	for _, p := range specPatterns {
		if p.Regexp.MatchString(lower) {
			return true
		}
	}
	return false
}

// AddGadgetKeywords extends the inclusion vocabulary.
func (f *GadgetFilter) AddGadgetKeywords(keywords ...string) {
	for _, k := range keywords {
		f.gadgetKeywords = append(f.gadgetKeywords, strings.ToLower(k))
	}
}

// AddSkipKeywords extends the exclusion vocabulary.
func (f *GadgetFilter) AddSkipKeywords(keywords ...string) {
	for _, k := range keywords {
		f.skipKeywords = append(f.skipKeywords, strings.ToLower(k))
	}
}
