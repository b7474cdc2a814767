// game/compare.go
package game

import "github.com/wfunc/guessdex/dex"

// Comparison attribute keys. The set is fixed: every guess result carries
// exactly these eight entries.
const (
	AttrType1          = "type1"
	AttrType2          = "type2"
	AttrColor          = "color"
	AttrGeneration     = "generation"
	AttrHeight         = "height"
	AttrWeight         = "weight"
	AttrHabitat        = "habitat"
	AttrEvolutionStage = "evolutionStage"
)

// Compare computes the attribute-by-attribute match between a guessed card
// and the target. Missing secondary types compare as "none" and missing
// habitats as "unknown"; both sentinels are applied when the card is built.
func Compare(guess, target *dex.Card) map[string]bool {
	return map[string]bool{
		AttrType1:          guess.Type1() == target.Type1(),
		AttrType2:          guess.Type2() == target.Type2(),
		AttrColor:          guess.Color == target.Color,
		AttrGeneration:     guess.Generation == target.Generation,
		AttrHeight:         guess.Height == target.Height,
		AttrWeight:         guess.Weight == target.Weight,
		AttrHabitat:        guess.Habitat == target.Habitat,
		AttrEvolutionStage: guess.EvolutionStage == target.EvolutionStage,
	}
}
