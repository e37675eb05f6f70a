package medparser

import "strings"

// Aliases are lowercase; hyphenated brand/generic variants are keyed as written.
var defaultIngredients = map[string]string{
	"ibu":                  "Ibuprofen",
	"ibuprofen":            "Ibuprofen",
	"amoxicillin":          "Amoxicillin",
	"aspirin":              "Aspirin",
	"metformin-ratiopharm": "Metformin",
	"metformin":            "Metformin",
	"l-thyroxin":           "L-Thyroxin",
	"lthyroxin":            "L-Thyroxin",
	"diclofenac":           "Diclofenac",
}

// IngredientTable maps lowercase aliases to canonical ingredient names.
type IngredientTable map[string]string

// Lookup resolves an alias in any casing.
func (t IngredientTable) Lookup(alias string) (string, bool) {
	name, ok := t[strings.ToLower(alias)]
	return name, ok
}
