package unit

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension groups units that can be converted into each other.
type Dimension string

const (
	DimensionUnknown Dimension = ""
	DimensionMass    Dimension = "mass"
	DimensionVolume  Dimension = "volume"
)

type definition struct {
	canonical string
	dimension Dimension
	// toBase is how many base units (g for mass, ml for volume) one unit holds.
	toBase decimal.Decimal
}

var (
	gram       = definition{"g", DimensionMass, decimal.NewFromInt(1)}
	kilogram   = definition{"kg", DimensionMass, decimal.NewFromInt(1000)}
	milliliter = definition{"ml", DimensionVolume, decimal.NewFromInt(1)}
	liter      = definition{"l", DimensionVolume, decimal.NewFromInt(1000)}
	cup        = definition{"cup", DimensionVolume, decimal.NewFromInt(240)}
	tablespoon = definition{"tbsp", DimensionVolume, decimal.NewFromInt(15)}
	teaspoon   = definition{"tsp", DimensionVolume, decimal.NewFromInt(5)}
)

var synonyms = map[string]definition{
	"g": gram, "gr": gram, "gram": gram, "grams": gram, "gramme": gram, "grammes": gram,
	"kg": kilogram, "kilo": kilogram, "kilos": kilogram, "kilogram": kilogram, "kilograms": kilogram,
	"ml": milliliter, "milliliter": milliliter, "milliliters": milliliter, "millilitre": milliliter, "millilitres": milliliter,
	"l": liter, "liter": liter, "liters": liter, "litre": liter, "litres": liter,
	"cup": cup, "cups": cup,
	"tbsp": tablespoon, "tablespoon": tablespoon, "tablespoons": tablespoon,
	"tsp": teaspoon, "teaspoon": teaspoon, "teaspoons": teaspoon,
}

func lookup(name string) (definition, bool) {
	def, ok := synonyms[strings.ToLower(strings.TrimSpace(name))]
	return def, ok
}

// Normalize returns the canonical spelling of a unit ("Grams" -> "g").
// Unknown units are returned lower-cased and trimmed.
func Normalize(name string) string {
	if def, ok := lookup(name); ok {
		return def.canonical
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// DimensionOf reports whether a unit measures mass or volume.
func DimensionOf(name string) Dimension {
	if def, ok := lookup(name); ok {
		return def.dimension
	}
	return DimensionUnknown
}

// Known reports whether the unit is part of the conversion table.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

// Convert converts quantity from one kitchen unit into another.
// Units of the same name (after normalization) always convert, even when they
// are not in the table. Pairs across dimensions, or involving an unknown unit,
// return ok=false and a zero quantity.
func Convert(quantity decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	if Normalize(from) == Normalize(to) {
		return quantity, true
	}

	src, ok := lookup(from)
	if !ok {
		return decimal.Zero, false
	}
	dst, ok := lookup(to)
	if !ok || src.dimension != dst.dimension {
		return decimal.Zero, false
	}

	return quantity.Mul(src.toBase).Div(dst.toBase), true
}
