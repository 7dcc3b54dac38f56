package resolve

import "errors"

// Sentinel outcomes. These distinguish "the catalog has no such entity" from
// a transport fault: catalog/network errors propagate wrapped and are the
// only hard failures, while these are expected resolution results with their
// own user-facing messages.
var (
	// ErrGameNotFound means no token prefix matched any catalog game.
	ErrGameNotFound = errors.New("game not found")
	// ErrUserNotFound means the user lookup returned no catalog user.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryNotFound means the game has no categories at all, so no
	// fallback could apply.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrMissingLevel means a per-level category was selected but the game
	// has no levels to default to.
	ErrMissingLevel = errors.New("category requires a level and the game has none")
)
