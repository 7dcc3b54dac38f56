package resolve

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/onnwee/speedbot/srcom"
)

// Catalog is the slice of the srcom client the resolver depends on.
type Catalog interface {
	GameSearcher
	ListCategories(ctx context.Context, gameID string) ([]srcom.Category, error)
	ListLevels(ctx context.Context, gameID string) ([]srcom.Level, error)
	ListVariables(ctx context.Context, categoryID string) ([]srcom.Variable, error)
}

// Resolution is the per-command aggregate of everything one leaderboard query
// needs. It lives only for the duration of a single command.
type Resolution struct {
	Game       srcom.Game
	Category   srcom.Category
	Level      *srcom.Level // nil unless the category is per-level
	Variables  []srcom.Variable
	Selections []Selection
	Remaining  string // normalized leftover text after the game match
}

// Resolver chains the matching stages: game, then category+level, then
// subcategory variables. Stages run sequentially because each depends on the
// previous one's output; the category and level listings are the one
// exception and are fetched concurrently.
type Resolver struct {
	Catalog Catalog
	Games   GameMatcher
}

// Resolve maps whitespace-split query tokens onto a full Resolution. Any
// catalog call failure aborts the whole resolution; there are no partial
// results and no retries.
func (r *Resolver) Resolve(ctx context.Context, tokens []string) (*Resolution, error) {
	match, err := r.Games.MatchGame(ctx, tokens)
	if err != nil {
		return nil, err
	}
	remText := Normalize(strings.Join(match.Remaining, " "))
	catText := ExpandCategoryAliases(match.Remaining)

	var (
		cats   []srcom.Category
		levels []srcom.Level
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = r.Catalog.ListCategories(gctx, match.Game.ID)
		return err
	})
	g.Go(func() error {
		var err error
		levels, err = r.Catalog.ListLevels(gctx, match.Game.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	category, level, err := ResolveCategory(cats, levels, catText)
	if err != nil {
		return nil, err
	}

	vars, err := r.Catalog.ListVariables(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	subVars := SubcategoryVariables(vars)

	return &Resolution{
		Game:       match.Game,
		Category:   category,
		Level:      level,
		Variables:  subVars,
		Selections: ResolveVariables(subVars, remText),
		Remaining:  remText,
	}, nil
}
