package genome

import "verdane/internal/model"

// LocusCount is the fixed genome length of the three-trait maize model.
const LocusCount = 24

// Relation classifies a locus's pleiotropic role.
type Relation int

const (
	RelationNone Relation = iota
	// RelationTradeOff loci contribute positively to their own trait and
	// negatively to the partner trait.
	RelationTradeOff
	// RelationPositiveLink loci contribute positively to both traits.
	RelationPositiveLink
)

// LocusInfo describes one genome position. Group membership is static and
// identical for every individual and generation.
type LocusInfo struct {
	Trait    model.Trait
	Effect   float64
	Relation Relation
	Partner  model.Trait // other side of a trade-off/link; empty when none
	Block    int         // linked-block id; -1 for independently assorting loci
}

// locusTable assigns every locus to exactly one trait group. Effects taper
// within each group so the leading loci of a chromosome carry more weight.
// Loci 6-7 form the yield/resistance trade-off block; loci 14-15 form the
// resistance/height positive-link block.
var locusTable = [LocusCount]LocusInfo{
	// Yield group, loci 0-7.
	{Trait: model.TraitYield, Effect: 1.2, Relation: RelationNone, Block: -1},
	{Trait: model.TraitYield, Effect: 1.1, Relation: RelationNone, Block: -1},
	{Trait: model.TraitYield, Effect: 1.0, Relation: RelationNone, Block: -1},
	{Trait: model.TraitYield, Effect: 0.9, Relation: RelationNone, Block: -1},
	{Trait: model.TraitYield, Effect: 0.8, Relation: RelationNone, Block: -1},
	{Trait: model.TraitYield, Effect: 0.7, Relation: RelationNone, Block: -1},
	{Trait: model.TraitYield, Effect: 0.6, Relation: RelationTradeOff, Partner: model.TraitResistance, Block: 0},
	{Trait: model.TraitYield, Effect: 0.6, Relation: RelationTradeOff, Partner: model.TraitResistance, Block: 0},
	// Resistance group, loci 8-15.
	{Trait: model.TraitResistance, Effect: 1.2, Relation: RelationNone, Block: -1},
	{Trait: model.TraitResistance, Effect: 1.1, Relation: RelationNone, Block: -1},
	{Trait: model.TraitResistance, Effect: 1.0, Relation: RelationNone, Block: -1},
	{Trait: model.TraitResistance, Effect: 0.9, Relation: RelationNone, Block: -1},
	{Trait: model.TraitResistance, Effect: 0.8, Relation: RelationNone, Block: -1},
	{Trait: model.TraitResistance, Effect: 0.7, Relation: RelationNone, Block: -1},
	{Trait: model.TraitResistance, Effect: 0.6, Relation: RelationPositiveLink, Partner: model.TraitHeight, Block: 1},
	{Trait: model.TraitResistance, Effect: 0.6, Relation: RelationPositiveLink, Partner: model.TraitHeight, Block: 1},
	// Height group, loci 16-23.
	{Trait: model.TraitHeight, Effect: 1.2, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 1.1, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 1.0, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 0.9, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 0.8, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 0.7, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 0.6, Relation: RelationNone, Block: -1},
	{Trait: model.TraitHeight, Effect: 0.6, Relation: RelationNone, Block: -1},
}

// Info returns the locus table entry. Valid locus indexes are [0, LocusCount).
func Info(locus int) LocusInfo {
	return locusTable[locus]
}

// TraitOf returns the trait group a locus belongs to.
func TraitOf(locus int) model.Trait {
	return locusTable[locus].Trait
}

// RelationOf returns a locus's pleiotropic relation and its partner trait.
func RelationOf(locus int) (Relation, model.Trait) {
	info := locusTable[locus]
	return info.Relation, info.Partner
}

// EffectOf returns the additive effect weight of a locus.
func EffectOf(locus int) float64 {
	return locusTable[locus].Effect
}

// BlockOf returns the linked-block id of a locus, or -1 for unlinked loci.
func BlockOf(locus int) int {
	return locusTable[locus].Block
}

// GroupLoci returns the locus indexes belonging to a trait group, in order.
func GroupLoci(t model.Trait) []int {
	loci := make([]int, 0, LocusCount/3)
	for i, info := range locusTable {
		if info.Trait == t {
			loci = append(loci, i)
		}
	}
	return loci
}

// LinkedBlocks returns the locus index sets that segregate as correlated
// units during meiosis, keyed by block id.
func LinkedBlocks() map[int][]int {
	blocks := make(map[int][]int)
	for i, info := range locusTable {
		if info.Block >= 0 {
			blocks[info.Block] = append(blocks[info.Block], i)
		}
	}
	return blocks
}
