package quantity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// number matches a grouped number such as "1,000", "1 000.50" or "1.234,5",
// or a plain one such as "50" or "2,5".
const number = `\d{1,3}(?:[ \x{00A0}.,]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?`

var (
	numberPattern  = regexp.MustCompile(number)
	thousandsOnly  = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
	unitAfterValue = regexp.MustCompile(`^\s*([\p{L}²³][\p{L}\d²³]*\.?)`)
)

// Parsed is a quantity read from text.
type Parsed struct {
	// Value is nil when no usable positive number was found.
	Value *float64

	// Unit is the canonical unit following the number, empty when absent
	// or unrecognised.
	Unit string
}

// Parse reads the first number in s and the unit written right after it.
// Values that are not positive and finite are left unset.
func Parse(s string) Parsed {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	loc := numberPattern.FindStringIndex(s)
	if loc == nil {
		return Parsed{}
	}

	var p Parsed
	if v, ok := Number(s[loc[0]:loc[1]]); ok {
		p.Value = domain.Qty(v)
	}
	if m := unitAfterValue.FindStringSubmatch(s[loc[1]:]); m != nil {
		if u, ok := LookupUnit(m[1]); ok {
			p.Unit = u
		}
	}
	return p
}

// Number converts one numeric token to a float. With both separators the
// last one is the decimal point. A lone separator followed by exactly three
// digit groups is a thousands separator; otherwise a comma is a decimal comma.
func Number(token string) (float64, bool) {
	t := strings.NewReplacer(" ", "", "\u00a0", "").Replace(strings.TrimSpace(token))
	if t == "" {
		return 0, false
	}

	lastDot, lastComma := strings.LastIndex(t, "."), strings.LastIndex(t, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			t = strings.ReplaceAll(t, ".", "")
			t = strings.Replace(t, ",", ".", 1)
		} else {
			t = strings.ReplaceAll(t, ",", "")
		}
	case thousandsOnly.MatchString(t):
		t = strings.NewReplacer(".", "", ",", "").Replace(t)
	default:
		t = strings.Replace(t, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var (
	leadingTimes = regexp.MustCompile(`(?i)^\s*(?:qty[:.]?\s*)?(` + number + `)\s*(?:x|×|\*)\s+(\S.*)$`)
	leadingUnit  = regexp.MustCompile(`^\s*(` + number + `)\s+([\p{L}²³][\p{L}\d²³]*\.?)\s+(?:of\s+)?(\S.*)$`)
	trailingQty  = regexp.MustCompile(`(?i)^(\S.*?)\s*(?:[,:;–-]|\bx|×|\bqty[:.]?)\s*(` + number + `)\s*([\p{L}²³][\p{L}\d²³]*\.?)?\s*$`)
)

// Embedded is a quantity found inside an item description.
type Embedded struct {
	Value       float64
	Unit        string
	Description string
}

// FromDescription finds a quantity written into a description, as in
// "50x Cordless drill", "2 pcs Hammer" or "Safety gloves - 200 pairs".
// A trailing number is only taken when a separator or a known unit marks
// it, so model numbers such as "DCD791D2" or "M8" are left alone.
func FromDescription(desc string) (Embedded, bool) {
	if m := leadingTimes.FindStringSubmatch(desc); m != nil {
		if v, ok := Number(m[1]); ok && domain.ValidQuantity(v) {
			return Embedded{Value: v, Description: strings.TrimSpace(m[2])}, true
		}
	}

	if m := leadingUnit.FindStringSubmatch(desc); m != nil {
		if u, known := LookupUnit(m[2]); known {
			if v, ok := Number(m[1]); ok && domain.ValidQuantity(v) {
				return Embedded{Value: v, Unit: u, Description: strings.TrimSpace(m[3])}, true
			}
		}
	}

	if m := trailingQty.FindStringSubmatch(desc); m != nil {
		unit, known := "", true
		if m[3] != "" {
			unit, known = LookupUnit(m[3])
		}
		if known {
			if v, ok := Number(m[2]); ok && domain.ValidQuantity(v) {
				return Embedded{Value: v, Unit: unit, Description: strings.TrimSpace(m[1])}, true
			}
		}
	}

	return Embedded{}, false
}
