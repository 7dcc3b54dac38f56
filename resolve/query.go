package resolve

import "github.com/onnwee/speedbot/srcom"

// BuildLeaderboardQuery composes the filtered top-1 leaderboard request for a
// completed resolution. Pure; the catalog client executes it. The level id is
// present exactly when the category is per-level.
func BuildLeaderboardQuery(res *Resolution) srcom.LeaderboardQuery {
	q := srcom.LeaderboardQuery{
		GameID:       res.Game.ID,
		CategoryID:   res.Category.ID,
		Top:          1,
		EmbedPlayers: true,
	}
	if res.Category.IsPerLevel() && res.Level != nil {
		q.LevelID = res.Level.ID
	}
	for _, sel := range res.Selections {
		q.Filters = append(q.Filters, srcom.VariableFilter{
			VariableID: sel.Variable.ID,
			ValueID:    sel.ValueID,
		})
	}
	return q
}
