package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/onnwee/speedbot/format"
	"github.com/onnwee/speedbot/resolve"
	"github.com/onnwee/speedbot/srcom"
	"github.com/onnwee/speedbot/telemetry"
)

// handleWR resolves "!wr <juego> [categoría/opciones]" to one world-record
// line. The query tail runs through the full resolution chain, then the
// composed leaderboard request fetches the top run. Without arguments the
// channel's current stream game is used as the query.
func (r *Router) handleWR(ctx context.Context, m Message, args []string) {
	input := strings.Join(args[1:], " ")
	if input == "" {
		input = r.currentGame(ctx, m)
	}
	if input == "" {
		r.say(m, "📘 Uso: !wr <juego> [categoría/opciones]")
		return
	}

	cacheKey := "wr_" + resolve.Normalize(input)
	if line, ok := r.Results.Get(cacheKey); ok {
		r.say(m, line)
		return
	}

	resolver := &resolve.Resolver{
		Catalog: r.Catalog,
		Games: resolve.FirstResultMatcher{
			Search:  r.Catalog,
			Aliases: resolve.GameAliases,
		},
	}

	var res *resolve.Resolution
	var err error
	telemetry.TimeFunc(telemetry.ResolveDuration, func() {
		res, err = resolver.Resolve(ctx, strings.Fields(strings.ToLower(input)))
	})
	if err != nil {
		r.fail(ctx, m, err, "❌ Error en !wr.")
		return
	}

	runs, err := r.Catalog.GetLeaderboard(ctx, resolve.BuildLeaderboardQuery(res))
	if err != nil {
		r.fail(ctx, m, err, "❌ Error en !wr.")
		return
	}
	if len(runs) == 0 {
		r.say(m, "❌ No hay runs para esa combinación.")
		return
	}
	run := runs[0]

	line := format.WRLine(
		res.Game.Name,
		res.Category.Name,
		format.RunVariableLabels(res.Variables, run),
		run.PrimaryTime,
		r.playerName(ctx, run),
	)
	r.Results.Put(cacheKey, line)
	r.say(m, line)
}

// currentGame looks up the game currently set on the channel, for !wr
// without a query. Best effort: any failure just yields the usage line.
func (r *Router) currentGame(ctx context.Context, m Message) string {
	if r.Helix == nil || m.ChannelID == "" {
		return ""
	}
	game, err := r.Helix.GetChannelGame(ctx, m.ChannelID)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Debug("current game lookup failed",
			slog.String("channel", m.Channel), slog.Any("err", err))
		return ""
	}
	return game
}

// playerName prefers the embedded display name on the run's first player,
// falling back to a by-id lookup for registered users and "Unknown" when
// neither yields a name.
func (r *Router) playerName(ctx context.Context, run srcom.Run) string {
	if len(run.Players) == 0 {
		return "Unknown"
	}
	p := run.Players[0]
	if p.Name != "" {
		return p.Name
	}
	if p.IsUser() {
		if u, err := r.Catalog.GetUserByID(ctx, p.ID); err == nil && u.Name != "" {
			return u.Name
		}
	}
	return "Unknown"
}
