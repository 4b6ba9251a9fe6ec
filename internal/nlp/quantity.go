package nlp

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ManourasM/TavernAI-sub000/internal/model"
)

// unitDef binds a unit token to its kind and the multiplier that
// converts the parsed quantity into the canonical base (kilograms for
// weight, liters for volume).
type unitDef struct {
	kind       model.UnitKind
	multiplier decimal.Decimal
}

// unitTable recognizes the spellings waiters actually type.  Matching
// is case-insensitive; tokens are looked up after normalization.
var unitTable = map[string]unitDef{
	// liters
	"l":  {model.UnitVolume, decimal.NewFromInt(1)},
	"lt": {model.UnitVolume, decimal.NewFromInt(1)},
	"λ":  {model.UnitVolume, decimal.NewFromInt(1)},
	"λτ": {model.UnitVolume, decimal.NewFromInt(1)},
	// kilograms
	"kg":   {model.UnitWeight, decimal.NewFromInt(1)},
	"κ":    {model.UnitWeight, decimal.NewFromInt(1)},
	"κιλο": {model.UnitWeight, decimal.NewFromInt(1)},
	"κιλα": {model.UnitWeight, decimal.NewFromInt(1)},
	// milliliters
	"ml": {model.UnitVolume, decimal.NewFromFloat(0.001)},
}

// ParsedQuantity is the outcome of quantity/unit extraction for one
// normalized line.
type ParsedQuantity struct {
	Quantity   decimal.Decimal // parsed amount, 1 when absent
	Unit       string          // recognized unit token, "" when none
	Kind       model.UnitKind  // portion unless a weight/volume unit matched
	Multiplier decimal.Decimal // conversion to the canonical base
	Remainder  string          // line text with the quantity/unit stripped
}

// ParseQuantity extracts a quantity and optional unit from a
// normalized line.  Rules are tried in order, first match wins:
//
//  1. numeric prefix fused to a unit token ("2kg παιδακια"),
//  2. numeric token followed by a spaced unit word ("2 kg παιδακια"),
//  3. bare leading integer ("2 μπυρεσ"),
//  4. nothing numeric – quantity 1, full line as remainder.
//
// A bare number that is not in leading position is left inside the
// item text.  Parsing never fails: an unrecognized token is simply not
// a unit and falls through to the later rules.
func ParseQuantity(line string) ParsedQuantity {
	one := decimal.NewFromInt(1)
	out := ParsedQuantity{Quantity: one, Kind: model.UnitPortion, Multiplier: one, Remainder: line}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return out
	}

	// Rules 1 and 2: a number with a unit may sit anywhere in the
	// line ("2kg παιδακια" as well as "παιδακια 2kg"); leftmost wins.
	for i, tok := range fields {
		numPart, unitPart := splitNumericPrefix(tok)
		if numPart == "" {
			continue
		}
		qty, err := decimal.NewFromString(numPart)
		if err != nil {
			continue
		}
		if unitPart != "" {
			// Rule 1: unit fused to the number.
			if def, ok := lookupUnit(unitPart); ok {
				out.Quantity = qty
				out.Unit = strings.ToLower(unitPart)
				out.Kind = def.kind
				out.Multiplier = def.multiplier
				out.Remainder = joinWithout(fields, i, i)
				return out
			}
			// a numeric prefix glued to an unknown token ("3x") is
			// not a quantity; it stays in the item text and the scan
			// moves on, a real unit may still follow
			continue
		}
		// Rule 2: unit as the next word.
		if i+1 < len(fields) {
			if def, ok := lookupUnit(fields[i+1]); ok {
				out.Quantity = qty
				out.Unit = strings.ToLower(fields[i+1])
				out.Kind = def.kind
				out.Multiplier = def.multiplier
				out.Remainder = joinWithout(fields, i, i+1)
				return out
			}
		}
		// Rule 3: a bare number is a quantity only in leading
		// position; mid-line it is part of the item name.
		if i == 0 {
			out.Quantity = qty
			out.Remainder = strings.Join(fields[1:], " ")
		}
		return out
	}
	return out
}

// joinWithout joins fields while skipping indexes from..to inclusive.
func joinWithout(fields []string, from, to int) string {
	kept := make([]string, 0, len(fields))
	for i, f := range fields {
		if i >= from && i <= to {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func lookupUnit(tok string) (unitDef, bool) {
	def, ok := unitTable[strings.ToLower(tok)]
	return def, ok
}

// splitNumericPrefix splits "2kg" into "2" and "kg", "2.5" into "2.5"
// and "", and returns an empty numPart when the token does not start
// with a digit.
func splitNumericPrefix(tok string) (numPart, unitPart string) {
	runes := []rune(tok)
	i := 0
	for i < len(runes) && (isDigit(runes[i]) || runes[i] == '.') {
		i++
	}
	if i == 0 || !isDigit(runes[0]) {
		return "", ""
	}
	return string(runes[:i]), string(runes[i:])
}
