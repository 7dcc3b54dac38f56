// Package format renders resolved leaderboard and personal-best data into the
// single chat lines the bot replies with.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/onnwee/speedbot/srcom"
)

// UnknownPlayer is the display name used when no player name can be resolved.
const UnknownPlayer = "Jugador desconocido"

// Duration renders a run time in seconds for chat. At an hour or more the
// fraction is dropped: "H:MM:SS" with unpadded hours. Below an hour it is
// "M:SS.cc" with unpadded minutes and truncated (never rounded)
// centiseconds. Zero renders as "0s".
func Duration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d.%s", total/60, total%60, centiseconds(seconds))
}

// PBDuration renders a personal-best time: like Duration but minutes and
// seconds always zero-padded, centiseconds always shown, and an unpadded
// hour prefix only when there is one.
func PBDuration(seconds float64) string {
	total := int(seconds)
	cs := centiseconds(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d.%s", total/3600, (total%3600)/60, total%60, cs)
	}
	return fmt.Sprintf("%02d:%02d.%s", total/60, total%60, cs)
}

// centiseconds extracts the first two fractional decimal digits of seconds,
// truncated, zero-padded on the right. Working on the decimal rendering
// avoids binary float artifacts (90.07 must give "07", not "06").
func centiseconds(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = s[i+1:]
	}
	frac += "00"
	return frac[:2]
}

// RunVariableLabels returns the labels of the run's variable values, one per
// variable that actually has a value on the run, in variable order.
func RunVariableLabels(vars []srcom.Variable, run srcom.Run) []string {
	var labels []string
	for _, variable := range vars {
		valID, ok := run.Values[variable.ID]
		if !ok || valID == "" {
			continue
		}
		for _, val := range variable.Values {
			if val.ID == valID {
				labels = append(labels, val.Label)
				break
			}
		}
	}
	return labels
}

// WRLine composes the world-record announcement. Labels are bracketed in the
// order given; an empty player name falls back to UnknownPlayer.
func WRLine(gameName, categoryName string, labels []string, seconds float64, playerName string) string {
	if playerName == "" {
		playerName = UnknownPlayer
	}
	var b strings.Builder
	b.WriteString("🏆 WR ")
	b.WriteString(gameName)
	b.WriteString(" – ")
	b.WriteString(categoryName)
	if len(labels) > 0 {
		b.WriteString(" ")
		for _, l := range labels {
			b.WriteString("[")
			b.WriteString(l)
			b.WriteString("]")
		}
	}
	b.WriteString(" → ")
	b.WriteString(Duration(seconds))
	b.WriteString(" por ")
	b.WriteString(playerName)
	return b.String()
}

// PBSummaryLine renders the all-games personal-best summary: one
// "Game: time" fragment per entry joined with " | ", prefixed with the user.
func PBSummaryLine(username string, entries []PBEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Name, PBDuration(e.Seconds)))
	}
	return fmt.Sprintf("🎮 PBs de %s → %s", username, strings.Join(parts, " | "))
}

// PBGameLine renders the single-game personal-best list, one fragment per
// category.
func PBGameLine(username, gameName string, entries []PBEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Name, PBDuration(e.Seconds)))
	}
	return fmt.Sprintf("🎯 PBs de %s en %s → %s", username, gameName, strings.Join(parts, " | "))
}

// PBEntry is one rendered personal-best fragment: a display name (game or
// category) and the best time for it.
type PBEntry struct {
	Name    string
	Seconds float64
}
