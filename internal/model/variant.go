package model

import "fmt"

// WinLength is the number of stones in a row needed to win, for every variant
const WinLength = 5

// OpeningRule controls how the first moves are resolved
type OpeningRule string

const (
	OpeningStandard OpeningRule = "STANDARD"
	OpeningSwap     OpeningRule = "SWAP" // second player may take over the first stone's colour
)

// PlacementRule controls which empty cells are legal
type PlacementRule string

const (
	PlacementStandard      PlacementRule = "STANDARD"
	PlacementThreeAndThree PlacementRule = "THREE_AND_THREE" // no move may create two open threes
)

// VariantName identifies a variant in the catalog
type VariantName string

// Variant is a named rule configuration
type Variant struct {
	Name          VariantName
	BoardDim      int
	OpeningRule   OpeningRule
	PlacementRule PlacementRule
	PointsAwarded int
}

// Cells returns the number of intersections on the board
func (v Variant) Cells() int {
	return v.BoardDim * v.BoardDim
}

var variantCatalog = []Variant{
	{Name: "STANDARD", BoardDim: 15, OpeningRule: OpeningStandard, PlacementRule: PlacementStandard, PointsAwarded: 110},
	{Name: "SWAP", BoardDim: 15, OpeningRule: OpeningSwap, PlacementRule: PlacementStandard, PointsAwarded: 140},
	{Name: "RENJU", BoardDim: 15, OpeningRule: OpeningStandard, PlacementRule: PlacementThreeAndThree, PointsAwarded: 150},
	{Name: "CARO", BoardDim: 15, OpeningRule: OpeningStandard, PlacementRule: PlacementStandard, PointsAwarded: 120},
	{Name: "PENTE", BoardDim: 19, OpeningRule: OpeningStandard, PlacementRule: PlacementStandard, PointsAwarded: 130},
	{Name: "OMOK", BoardDim: 19, OpeningRule: OpeningStandard, PlacementRule: PlacementThreeAndThree, PointsAwarded: 170},
	{Name: "NINUKI_RENJU", BoardDim: 15, OpeningRule: OpeningStandard, PlacementRule: PlacementThreeAndThree, PointsAwarded: 160},
}

// Variants returns a copy of the variant catalog in declaration order
func Variants() []Variant {
	out := make([]Variant, len(variantCatalog))
	copy(out, variantCatalog)
	return out
}

// LookupVariant finds a variant by name
func LookupVariant(name VariantName) (Variant, error) {
	for _, v := range variantCatalog {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrVariantUnknown, name)
}
