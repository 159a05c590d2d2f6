package quantity

import "strings"

// Canonical unit spellings.
const (
	UnitPieces      = "pcs"
	UnitSet         = "set"
	UnitPair        = "pair"
	UnitBox         = "box"
	UnitPack        = "pack"
	UnitRoll        = "roll"
	UnitLot         = "lot"
	UnitMetre       = "m"
	UnitMillimetre  = "mm"
	UnitCentimetre  = "cm"
	UnitKilometre   = "km"
	UnitFoot        = "ft"
	UnitSquareMetre = "m2"
	UnitCubicMetre  = "m3"
	UnitKilogram    = "kg"
	UnitGram        = "g"
	UnitTonne       = "t"
	UnitLitre       = "l"
	UnitHour        = "h"
	UnitDay         = "day"
)

var unitAliases = map[string]string{
	"pc": UnitPieces, "pcs": UnitPieces, "piece": UnitPieces, "pieces": UnitPieces,
	"ea": UnitPieces, "each": UnitPieces, "unit": UnitPieces, "units": UnitPieces,
	"no": UnitPieces, "nos": UnitPieces, "nr": UnitPieces, "stk": UnitPieces,
	"шт": UnitPieces, "штук": UnitPieces,

	"set": UnitSet, "sets": UnitSet, "kit": UnitSet, "kits": UnitSet, "компл": UnitSet,
	"pair": UnitPair, "pairs": UnitPair, "pr": UnitPair, "prs": UnitPair,
	"box": UnitBox, "boxes": UnitBox, "bx": UnitBox,
	"pack": UnitPack, "packs": UnitPack, "pk": UnitPack, "pkt": UnitPack, "уп": UnitPack,
	"roll": UnitRoll, "rolls": UnitRoll,
	"lot": UnitLot, "lots": UnitLot,

	"m": UnitMetre, "meter": UnitMetre, "meters": UnitMetre, "metre": UnitMetre, "metres": UnitMetre,
	"lm": UnitMetre, "м": UnitMetre, "метр": UnitMetre,
	"mm": UnitMillimetre, "cm": UnitCentimetre, "km": UnitKilometre,
	"ft": UnitFoot, "foot": UnitFoot, "feet": UnitFoot,
	"m2": UnitSquareMetre, "m²": UnitSquareMetre, "sqm": UnitSquareMetre, "sq.m": UnitSquareMetre,
	"m3": UnitCubicMetre, "m³": UnitCubicMetre, "cbm": UnitCubicMetre,

	"kg": UnitKilogram, "kgs": UnitKilogram, "kilo": UnitKilogram, "kilos": UnitKilogram,
	"kilogram": UnitKilogram, "kilograms": UnitKilogram, "кг": UnitKilogram,
	"g": UnitGram, "gram": UnitGram, "grams": UnitGram,
	"t": UnitTonne, "ton": UnitTonne, "tons": UnitTonne, "tonne": UnitTonne, "tonnes": UnitTonne,
	"l": UnitLitre, "ltr": UnitLitre, "litre": UnitLitre, "litres": UnitLitre, "liter": UnitLitre, "liters": UnitLitre,

	"h": UnitHour, "hr": UnitHour, "hrs": UnitHour, "hour": UnitHour, "hours": UnitHour,
	"day": UnitDay, "days": UnitDay,
}

// LookupUnit returns the canonical spelling of a known unit.
func LookupUnit(unit string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, ".")
	c, ok := unitAliases[u]
	return c, ok
}

// CanonicalUnit returns the canonical spelling of unit. Unknown units are
// returned trimmed and lower-cased.
func CanonicalUnit(unit string) string {
	if c, ok := LookupUnit(unit); ok {
		return c
	}
	return strings.ToLower(strings.TrimSpace(unit))
}
