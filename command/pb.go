package command

import (
	"context"
	"strings"

	"github.com/onnwee/speedbot/format"
	"github.com/onnwee/speedbot/resolve"
	"github.com/onnwee/speedbot/srcom"
)

const pbSummaryLimit = 6

// handlePB answers "!pb <usuario> [juego]". Without a game it summarizes the
// user's best time per game; with one it lists their PBs for that game only.
func (r *Router) handlePB(ctx context.Context, m Message, args []string) {
	if len(args) < 2 {
		r.say(m, "📘 Uso: !pb <usuario> [juego]")
		return
	}
	username := args[1]
	gameQuery := strings.Join(args[2:], " ")

	cacheKey := strings.ToLower(username + "_" + gameQuery)
	if line, ok := r.Results.Get(cacheKey); ok {
		r.say(m, line)
		return
	}

	users, err := r.Catalog.LookupUser(ctx, username)
	if err != nil {
		r.fail(ctx, m, err, "Error en comando !pb.")
		return
	}
	if len(users) == 0 {
		r.fail(ctx, m, resolve.ErrUserNotFound, "Error en comando !pb.")
		return
	}
	user := users[0]
	pbs, err := r.Catalog.GetPersonalBests(ctx, user.ID)
	if err != nil {
		r.fail(ctx, m, err, "Error en comando !pb.")
		return
	}
	if len(pbs) == 0 {
		r.say(m, "❌ No tiene PBs.")
		return
	}

	var line string
	if gameQuery == "" {
		line = format.PBSummaryLine(user.Name, summarizeBests(pbs))
	} else {
		matcher := resolve.BestMatchMatcher{Search: r.Catalog}
		match, err := matcher.MatchGame(ctx, strings.Fields(strings.ToLower(gameQuery)))
		if err != nil {
			r.fail(ctx, m, err, "Error en comando !pb.")
			return
		}
		var entries []format.PBEntry
		for _, pb := range pbs {
			if pb.Game.ID != match.Game.ID {
				continue
			}
			entries = append(entries, format.PBEntry{
				Name:    pb.Category.Name,
				Seconds: pb.Run.PrimaryTime,
			})
		}
		if len(entries) == 0 {
			r.say(m, "❌ No tiene PB en ese juego.")
			return
		}
		line = format.PBGameLine(user.Name, match.Game.Name, entries)
	}

	r.Results.Put(cacheKey, line)
	r.say(m, line)
}

// summarizeBests keeps one entry per game, the fastest run, in the order
// games first appear in the personal-best list.
func summarizeBests(pbs []srcom.PersonalBest) []format.PBEntry {
	idx := make(map[string]int)
	var entries []format.PBEntry
	for _, pb := range pbs {
		name := pb.Game.Name
		if i, ok := idx[name]; ok {
			if pb.Run.PrimaryTime < entries[i].Seconds {
				entries[i].Seconds = pb.Run.PrimaryTime
			}
			continue
		}
		idx[name] = len(entries)
		entries = append(entries, format.PBEntry{Name: name, Seconds: pb.Run.PrimaryTime})
	}
	if len(entries) > pbSummaryLimit {
		entries = entries[:pbSummaryLimit]
	}
	return entries
}
