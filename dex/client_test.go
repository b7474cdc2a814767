package dex

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newFixtureServer serves a minimal PokeAPI slice: bulbasaur with a full
// three-stage family, and onix with no habitat and a single type.
func newFixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/pokemon/bulbasaur", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": 1, "name": "bulbasaur", "height": 7, "weight": 69,
			"sprites": {"front_default": "https://img.example/1.png"},
			"types": [{"type": {"name": "grass"}}, {"type": {"name": "poison"}}],
			"species": {"url": "%s/pokemon-species/bulbasaur"}
		}`, server.URL)
	})
	mux.HandleFunc("/pokemon/1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/pokemon/bulbasaur", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/pokemon-species/bulbasaur", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"name": "bulbasaur",
			"color": {"name": "green"},
			"generation": {"name": "generation-i"},
			"habitat": {"name": "grassland"},
			"evolution_chain": {"url": "%s/evolution-chain/1"}
		}`, server.URL)
	})
	mux.HandleFunc("/evolution-chain/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chain": {
			"species": {"name": "bulbasaur"},
			"evolves_to": [{
				"species": {"name": "ivysaur"},
				"evolves_to": [{"species": {"name": "venusaur"}, "evolves_to": []}]
			}]
		}}`)
	})

	mux.HandleFunc("/pokemon/venusaur", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": 3, "name": "venusaur", "height": 20, "weight": 1000,
			"sprites": {"front_default": "https://img.example/3.png"},
			"types": [{"type": {"name": "grass"}}, {"type": {"name": "poison"}}],
			"species": {"url": "%s/pokemon-species/venusaur"}
		}`, server.URL)
	})
	mux.HandleFunc("/pokemon-species/venusaur", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"name": "venusaur",
			"color": {"name": "green"},
			"generation": {"name": "generation-i"},
			"habitat": {"name": "grassland"},
			"evolution_chain": {"url": "%s/evolution-chain/1"}
		}`, server.URL)
	})

	mux.HandleFunc("/pokemon/onix", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"id": 95, "name": "onix", "height": 88, "weight": 2100,
			"sprites": {"front_default": "https://img.example/95.png"},
			"types": [{"type": {"name": "rock"}}],
			"species": {"url": "%s/pokemon-species/onix"}
		}`, server.URL)
	})
	mux.HandleFunc("/pokemon-species/onix", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"name": "onix",
			"color": {"name": "gray"},
			"generation": {"name": "generation-i"},
			"habitat": null,
			"evolution_chain": {"url": "%s/evolution-chain/95"}
		}`, server.URL)
	})
	mux.HandleFunc("/evolution-chain/95", func(w http.ResponseWriter, r *http.Request) {
		// Chain that does not place onix at all.
		fmt.Fprint(w, `{"chain": {"species": {"name": "someone-else"}, "evolves_to": []}}`)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server = httptest.NewServer(mux)
	return server
}

func TestClient_Card_ComposesAttributes(t *testing.T) {
	server := newFixtureServer()
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	card, err := client.Card("Bulbasaur")
	if err != nil {
		t.Fatalf("Card failed: %v", err)
	}

	if card.ID != 1 || card.Name != "bulbasaur" {
		t.Errorf("Unexpected identity: %+v", card)
	}
	if card.Type1() != "grass" || card.Type2() != "poison" {
		t.Errorf("Unexpected types: %v", card.Types)
	}
	if card.Color != "green" || card.Generation != 1 {
		t.Errorf("Unexpected species attributes: %+v", card)
	}
	if card.Height != 7 || card.Weight != 69 {
		t.Errorf("Height/weight must stay in raw units, got %d/%d", card.Height, card.Weight)
	}
	if card.Habitat != "grassland" {
		t.Errorf("Expected habitat grassland, got %q", card.Habitat)
	}
	if card.EvolutionStage != 1 {
		t.Errorf("Base form should be stage 1, got %d", card.EvolutionStage)
	}
	if card.Sprite == "" {
		t.Error("Sprite reference should be carried")
	}
}

func TestClient_Card_FinalEvolutionStage(t *testing.T) {
	server := newFixtureServer()
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	card, err := client.Card("venusaur")
	if err != nil {
		t.Fatalf("Card failed: %v", err)
	}
	if card.EvolutionStage != 3 {
		t.Errorf("Final evolution should be stage 3, got %d", card.EvolutionStage)
	}
}

func TestClient_Card_Sentinels(t *testing.T) {
	server := newFixtureServer()
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	card, err := client.Card("onix")
	if err != nil {
		t.Fatalf("Card failed: %v", err)
	}

	if card.Type2() != "none" {
		t.Errorf("Single-typed entity should compare type2 as the none sentinel, got %q", card.Type2())
	}
	if card.Habitat != "unknown" {
		t.Errorf("Missing habitat should fall back to unknown, got %q", card.Habitat)
	}
	if card.EvolutionStage != 1 {
		t.Errorf("Unplaceable entity defaults to stage 1, got %d", card.EvolutionStage)
	}
}

func TestClient_Card_NotFound(t *testing.T) {
	server := newFixtureServer()
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Card("notapokemon"); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGenerationNumber(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"generation-i", 1},
		{"generation-iv", 4},
		{"generation-ix", 9},
		{"GENERATION-VIII", 8},
		{"", 1},
		{"not-a-generation", 1},
	}
	for _, c := range cases {
		if got := GenerationNumber(c.name); got != c.want {
			t.Errorf("GenerationNumber(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestEvolutionStage(t *testing.T) {
	chain := chainLink{}
	chain.Species.Name = "bulbasaur"
	first := chainLink{}
	first.Species.Name = "ivysaur"
	second := chainLink{}
	second.Species.Name = "venusaur"
	first.EvolvesTo = []chainLink{second}
	chain.EvolvesTo = []chainLink{first}

	cases := []struct {
		name string
		want int
	}{
		{"bulbasaur", 1},
		{"ivysaur", 2},
		{"venusaur", 3},
		{"unrelated", 1},
	}
	for _, c := range cases {
		if got := evolutionStage(c.name, chain); got != c.want {
			t.Errorf("evolutionStage(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	if got := CanonicalName("  PikaCHU \n"); got != "pikachu" {
		t.Errorf("CanonicalName = %q, want pikachu", got)
	}
}
