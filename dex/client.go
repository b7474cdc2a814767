// dex/client.go
package dex

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Client fetches entity attributes from a PokeAPI-compatible data source.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Wire shapes, limited to the fields the card needs.

type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Species struct {
		URL string `json:"url"`
	} `json:"species"`
}

type speciesResponse struct {
	Name  string `json:"name"`
	Color struct {
		Name string `json:"name"`
	} `json:"color"`
	Generation struct {
		Name string `json:"name"`
	} `json:"generation"`
	Habitat *struct {
		Name string `json:"name"`
	} `json:"habitat"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

type chainLink struct {
	Species struct {
		Name string `json:"name"`
	} `json:"species"`
	EvolvesTo []chainLink `json:"evolves_to"`
}

type evolutionResponse struct {
	Chain chainLink `json:"chain"`
}

// Card resolves idOrName into a composed attribute card: entity, then its
// species, then the species' evolution chain.
func (c *Client) Card(idOrName string) (*Card, error) {
	var pokemon pokemonResponse
	if err := c.getJSON(fmt.Sprintf("%s/pokemon/%s", c.baseURL, CanonicalName(idOrName)), &pokemon); err != nil {
		return nil, err
	}

	var species speciesResponse
	if err := c.getJSON(pokemon.Species.URL, &species); err != nil {
		return nil, err
	}

	stage := 1
	var evolution evolutionResponse
	if err := c.getJSON(species.EvolutionChain.URL, &evolution); err == nil {
		stage = evolutionStage(species.Name, evolution.Chain)
	}

	types := make([]string, 0, len(pokemon.Types))
	for _, t := range pokemon.Types {
		types = append(types, t.Type.Name)
	}

	habitat := "unknown"
	if species.Habitat != nil && species.Habitat.Name != "" {
		habitat = species.Habitat.Name
	}

	return &Card{
		ID:             pokemon.ID,
		Name:           pokemon.Name,
		Sprite:         pokemon.Sprites.FrontDefault,
		Types:          types,
		Color:          species.Color.Name,
		Generation:     GenerationNumber(species.Generation.Name),
		Height:         pokemon.Height,
		Weight:         pokemon.Weight,
		Habitat:        habitat,
		EvolutionStage: stage,
	}, nil
}

func (c *Client) getJSON(url string, out interface{}) error {
	resp, err := c.http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dex: unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

var generationPattern = regexp.MustCompile(`(?i)generation-([ivx]+)`)

var romanNumerals = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5,
	"VI": 6, "VII": 7, "VIII": 8, "IX": 9,
}

// GenerationNumber parses names like "generation-iv" into 4. Unparseable
// names default to 1.
func GenerationNumber(name string) int {
	match := generationPattern.FindStringSubmatch(name)
	if match == nil {
		return 1
	}
	if n, ok := romanNumerals[strings.ToUpper(match[1])]; ok {
		return n
	}
	return 1
}

// evolutionStage walks the family chain: the base form is stage 1, its
// evolutions stage 2, theirs stage 3. An entity the chain cannot place
// defaults to stage 1.
func evolutionStage(name string, chain chainLink) int {
	if chain.Species.Name == name {
		return 1
	}
	for _, first := range chain.EvolvesTo {
		if first.Species.Name == name {
			return 2
		}
		for _, second := range first.EvolvesTo {
			if second.Species.Name == name {
				return 3
			}
		}
	}
	return 1
}
