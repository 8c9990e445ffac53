// Package qualify implements the filter gates that decide whether a
// scraped lead is allowed to proceed to paid enrichment and campaign
// delivery. Every gate fails open: a missing or erroring signal admits
// the lead rather than discarding it.
package qualify

import (
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// largeRanges holds every employee-range token that means 500+
// employees, in both notations the vendor has been observed to return.
var largeRanges = map[string]struct{}{
	"501-1K":     {},
	"1K-5K":      {},
	"5K-10K":     {},
	"10K-50K":    {},
	"50K-100K":   {},
	"100K+":      {},
	"501-1000":   {},
	"1001-5000":  {},
	"5001-10000": {},
	"10001+":     {},
}

// IsLargeRange reports whether an employee-range token denotes a
// company with 500+ employees. Unrecognized or empty tokens are not
// large, so an unreadable size never filters a lead.
func IsLargeRange(token string) bool {
	_, ok := largeRanges[token]
	return ok
}

// DefaultBrands is the built-in disqualification list: company name
// fragments of known large corporates that are never worth a paid
// enrichment call. Entries are matched as substrings after folding.
var DefaultBrands = []string{
	"volkswagen", "coca-cola", "renault", "carrefour", "amazon",
	"apple", "google", "microsoft", "facebook", "meta", "ibm",
	"oracle", "sap", "salesforce", "auchan", "leclerc",
	"intermarché", "système u", "casino", "monoprix", "peugeot",
	"citroën", "nissan", "toyota", "bmw", "mercedes", "audi",
	"total", "engie", "edf", "orange", "bouygues", "vinci",
	"veolia", "lvmh", "l'oréal", "danone", "lactalis",
	"pernod ricard", "schneider electric", "airbus", "thales",
	"safran", "michelin", "saint-gobain", "legrand", "bnp paribas",
	"société générale", "crédit agricole", "axa", "allianz",
	"adidas", "nike", "puma", "decathlon", "fnac", "darty",
	"capgemini", "hewlett packard", "hpe", "air france",
	"worldline", "slack", "jll", "diageo", "stripe", "servicenow",
	"snowflake", "uipath", "cloudera",
}

// brandFolder strips diacritics so "Carrefour" matches "carrefour" and
// "L'Oreal" matches "l'oréal" regardless of how the scraper spells it.
var brandFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldBrand(s string) string {
	folded, _, err := transform.String(brandFolder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// BrandList is an injected set of disqualified brand tokens. Tokens are
// normalized (lowercased, diacritics folded) at construction so the
// list can come from config or a data file without rebuild.
type BrandList struct {
	tokens []string
}

// NewBrandList builds a BrandList from raw tokens. Empty tokens are
// dropped; duplicates after folding are collapsed.
func NewBrandList(tokens []string) *BrandList {
	seen := make(map[string]struct{}, len(tokens))
	normalized := make([]string, 0, len(tokens))
	for _, t := range tokens {
		folded := foldBrand(strings.TrimSpace(t))
		if folded == "" {
			continue
		}
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		normalized = append(normalized, folded)
	}
	return &BrandList{tokens: normalized}
}

// brandFile is the YAML shape of an external brand list file.
type brandFile struct {
	Brands []string `yaml:"brands"`
}

// LoadBrandList reads a brand list from a YAML file and merges any
// extra tokens. An empty path yields the built-in DefaultBrands.
func LoadBrandList(path string, extra []string) (*BrandList, error) {
	tokens := DefaultBrands
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "qualify: read brand list %s", path)
		}
		var f brandFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, eris.Wrapf(err, "qualify: parse brand list %s", path)
		}
		tokens = f.Brands
	}
	return NewBrandList(append(append([]string{}, tokens...), extra...)), nil
}

// Match reports whether any disqualified brand token is a substring of
// the company name, case-insensitively and diacritic-insensitively.
// An empty name never matches. Substring containment means a token can
// match inside an unrelated name; that is an accepted tradeoff for a
// cheap pre-enrichment check.
func (b *BrandList) Match(companyName string) bool {
	if companyName == "" {
		return false
	}
	folded := foldBrand(companyName)
	for _, token := range b.tokens {
		if strings.Contains(folded, token) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct tokens in the list.
func (b *BrandList) Len() int {
	return len(b.tokens)
}
