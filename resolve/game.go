package resolve

import (
	"context"
	"strings"

	"github.com/onnwee/speedbot/srcom"
)

// GameAliases maps short community spellings to the canonical catalog title
// searched in their place. Keys are compared lowercase.
var GameAliases = map[string]string{
	"sm64":   "Super Mario 64",
	"mmx":    "Mega Man X",
	"alttp":  "The Legend of Zelda: A Link to the Past",
	"oot":    "The Legend of Zelda: Ocarina of Time",
	"mm":     "The Legend of Zelda: Majoras Mask",
	"zelda1": "The Legend of Zelda",
	"zelda2": "The Legend of Zelda: The Adventure of Link",
	"ww":     "The Legend of Zelda: Wind Waker",
	"sw":     "The Legend of Zelda: Skyward Sword",
	"tp":     "The Legend of Zelda: Twilight Princess",
	"botw":   "The Legend of Zelda: Breath of the Wild",
	"totk":   "The Legend of Zelda: Tears of the Kingdom",
}

// GameSearcher is the slice of the catalog client game matching depends on.
type GameSearcher interface {
	SearchGames(ctx context.Context, name string, maxResults int) ([]srcom.Game, error)
}

// GameMatch is the result of extracting a game from leading tokens.
type GameMatch struct {
	Game      srcom.Game
	Remaining []string // tokens after the matched prefix
}

// GameMatcher turns the leading tokens of free text into a catalog game.
//
// Two strategies exist and are deliberately kept separate: FirstResultMatcher
// (world-record lookups) trusts the catalog's relevance ranking and takes the
// first search result, while BestMatchMatcher (personal-best lookups) picks
// the search result whose normalized name best matches the query. They
// disagree on ambiguous queries; neither is canonical.
type GameMatcher interface {
	MatchGame(ctx context.Context, tokens []string) (GameMatch, error)
}

// FirstResultMatcher tries token prefixes longest-first. For each prefix it
// substitutes a known alias, searches the catalog, and accepts the first
// result. Longest-prefix-first lets multi-word titles ("the legend of zelda")
// be recognized without guessing where the game name ends, at the cost of
// trusting the remote ranking within a prefix.
type FirstResultMatcher struct {
	Search     GameSearcher
	Aliases    map[string]string
	MaxResults int
}

func (m FirstResultMatcher) MatchGame(ctx context.Context, tokens []string) (GameMatch, error) {
	maxResults := m.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	for i := len(tokens); i > 0; i-- {
		candidate := strings.Join(tokens[:i], " ")
		if m.Aliases != nil {
			if canonical, ok := m.Aliases[strings.ToLower(candidate)]; ok {
				candidate = canonical
			}
		}
		results, err := m.Search.SearchGames(ctx, candidate, maxResults)
		if err != nil {
			return GameMatch{}, err
		}
		if len(results) == 0 {
			continue
		}
		return GameMatch{Game: results[0], Remaining: tokens[i:]}, nil
	}
	return GameMatch{}, ErrGameNotFound
}

// BestMatchMatcher tries token prefixes longest-first like FirstResultMatcher
// but ranks the search results itself: exact normalized-name equality wins,
// otherwise the first result whose normalized name contains or is contained
// by the normalized prefix.
type BestMatchMatcher struct {
	Search     GameSearcher
	Aliases    map[string]string
	MaxResults int
}

func (m BestMatchMatcher) MatchGame(ctx context.Context, tokens []string) (GameMatch, error) {
	maxResults := m.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	for i := len(tokens); i > 0; i-- {
		candidate := strings.Join(tokens[:i], " ")
		if m.Aliases != nil {
			if canonical, ok := m.Aliases[strings.ToLower(candidate)]; ok {
				candidate = canonical
			}
		}
		results, err := m.Search.SearchGames(ctx, candidate, maxResults)
		if err != nil {
			return GameMatch{}, err
		}
		if game, ok := bestNormalizedMatch(candidate, results); ok {
			return GameMatch{Game: game, Remaining: tokens[i:]}, nil
		}
	}
	return GameMatch{}, ErrGameNotFound
}

func bestNormalizedMatch(query string, results []srcom.Game) (srcom.Game, bool) {
	normQuery := Normalize(query)
	for _, g := range results {
		if Normalize(g.Name) == normQuery {
			return g, true
		}
	}
	for _, g := range results {
		normName := Normalize(g.Name)
		if strings.Contains(normName, normQuery) || strings.Contains(normQuery, normName) {
			return g, true
		}
	}
	return srcom.Game{}, false
}
