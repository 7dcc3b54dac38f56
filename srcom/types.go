package srcom

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category kinds as reported by the catalog.
const (
	CategoryPerGame  = "per-game"
	CategoryPerLevel = "per-level"
)

// Game is a catalog game. Name is the international display name; many
// free-text spellings may resolve to the same id.
type Game struct {
	ID   string
	Name string
}

// Category belongs to exactly one game. Type is per-game or per-level.
type Category struct {
	ID   string
	Name string
	Type string
	Misc bool
}

// IsPerLevel reports whether the category must be paired with a level.
func (c Category) IsPerLevel() bool { return c.Type == CategoryPerLevel }

// Level belongs to exactly one game and only matters for per-level categories.
type Level struct {
	ID   string
	Name string
}

// VariableValue is one selectable value of a variable, in catalog order.
type VariableValue struct {
	ID    string
	Label string
}

// Variable belongs to a category. Only subcategory variables segment
// leaderboards; the rest are informational.
type Variable struct {
	ID            string
	Name          string
	IsSubcategory bool
	Values        []VariableValue
}

// PlayerRef is a run's reference to a player. Name is filled from embedded
// player data when the leaderboard request asked for it; it stays empty for
// references the embed could not resolve.
type PlayerRef struct {
	Rel  string
	ID   string
	Name string
}

// IsUser reports whether the reference points at a registered catalog user
// (as opposed to a guest entry).
func (p PlayerRef) IsUser() bool { return p.Rel == "user" }

// Run is a single leaderboard or personal-best run.
type Run struct {
	ID          string
	GameID      string
	CategoryID  string
	PrimaryTime float64 // seconds, fractional
	Players     []PlayerRef
	Values      map[string]string // variable id -> value id
}

// User is a registered catalog user.
type User struct {
	ID   string
	Name string
}

// PersonalBest is one entry of a user's personal-best list with its embedded
// game and category.
type PersonalBest struct {
	Place    int
	Run      Run
	Game     Game
	Category Category
}

// VariableFilter narrows a leaderboard to one value of one variable.
type VariableFilter struct {
	VariableID string
	ValueID    string
}

// LeaderboardQuery is the request descriptor for GetLeaderboard. It carries
// no behavior; resolve.BuildLeaderboardQuery composes it.
type LeaderboardQuery struct {
	GameID       string
	CategoryID   string
	LevelID      string // set iff the category is per-level
	Filters      []VariableFilter
	Top          int
	EmbedPlayers bool
}

// wire shapes ---------------------------------------------------------------

type namesWire struct {
	International string `json:"international"`
}

type gameWire struct {
	ID    string    `json:"id"`
	Names namesWire `json:"names"`
}

func (g gameWire) toGame() Game { return Game{ID: g.ID, Name: g.Names.International} }

type categoryWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Misc bool   `json:"miscellaneous"`
}

func (c categoryWire) toCategory() Category {
	return Category{ID: c.ID, Name: c.Name, Type: c.Type, Misc: c.Misc}
}

type levelWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// orderedValues decodes the catalog's {"valueId": {"label": ...}, ...} object
// while preserving key order. encoding/json maps would shuffle it, and value
// order is meaningful to the resolver (first match wins).
type orderedValues []VariableValue

func (ov *orderedValues) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("variable values: expected object, got %v", tok)
	}
	out := make([]VariableValue, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("variable values: non-string key %v", keyTok)
		}
		var v struct {
			Label string `json:"label"`
		}
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out = append(out, VariableValue{ID: key, Label: v.Label})
	}
	*ov = out
	return nil
}

type variableWire struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsSubcategory bool   `json:"is-subcategory"`
	Values        struct {
		Values orderedValues `json:"values"`
	} `json:"values"`
}

func (v variableWire) toVariable() Variable {
	return Variable{ID: v.ID, Name: v.Name, IsSubcategory: v.IsSubcategory, Values: v.Values.Values}
}

type playerRefWire struct {
	Rel   string    `json:"rel"`
	ID    string    `json:"id"`
	Name  string    `json:"name"` // guests carry a bare name
	Names namesWire `json:"names"`
}

type runWire struct {
	ID       string `json:"id"`
	Game     string `json:"game"`
	Category string `json:"category"`
	Times    struct {
		PrimaryT float64 `json:"primary_t"`
	} `json:"times"`
	Players []playerRefWire   `json:"players"`
	Values  map[string]string `json:"values"`
}

func (r runWire) toRun() Run {
	players := make([]PlayerRef, 0, len(r.Players))
	for _, p := range r.Players {
		name := p.Names.International
		if name == "" {
			name = p.Name
		}
		players = append(players, PlayerRef{Rel: p.Rel, ID: p.ID, Name: name})
	}
	return Run{
		ID:          r.ID,
		GameID:      r.Game,
		CategoryID:  r.Category,
		PrimaryTime: r.Times.PrimaryT,
		Players:     players,
		Values:      r.Values,
	}
}

type userWire struct {
	ID    string    `json:"id"`
	Names namesWire `json:"names"`
}
