// dex/dex.go
package dex

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means the identifier resolved to no known entity. It is
	// an expected per-request outcome, not a failure of the data source.
	ErrNotFound = errors.New("entity not found")
)

// Card is the canonical attribute snapshot of one entity, composed from the
// entity, species and evolution-chain lookups. Height and weight are kept
// in the source's raw units (decimetres and hectograms) so comparisons are
// exact.
type Card struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Sprite         string   `json:"sprite"`
	Types          []string `json:"types"`
	Color          string   `json:"color"`
	Generation     int      `json:"generation"`
	Height         int      `json:"height"`
	Weight         int      `json:"weight"`
	Habitat        string   `json:"habitat"`
	EvolutionStage int      `json:"evolutionStage"`
}

// Type1 returns the primary type.
func (c *Card) Type1() string {
	if len(c.Types) > 0 {
		return c.Types[0]
	}
	return "none"
}

// Type2 returns the secondary type, or the "none" sentinel when the entity
// has a single type.
func (c *Card) Type2() string {
	if len(c.Types) > 1 {
		return c.Types[1]
	}
	return "none"
}

// Lookup resolves an entity identifier or name to its attribute card.
// Implementations must return ErrNotFound for unknown identifiers and may
// return any other error for transient data-source failures.
type Lookup interface {
	Card(idOrName string) (*Card, error)
}

// CanonicalName lower-cases and trims a guessed name so comparisons are
// case-insensitive.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
