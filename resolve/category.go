package resolve

import (
	"regexp"
	"strings"

	"github.com/onnwee/speedbot/srcom"
)

var digitRun = regexp.MustCompile(`\d+`)

// CategoryAliases expands short community tokens into the category phrase
// they abbreviate. Keys are raw lowercase tokens, compared before
// normalization so "ng+" and "low%" keep their punctuation.
var CategoryAliases = map[string]string{
	"nmg":  "no major glitches",
	"ng+":  "new game plus",
	"low%": "low%",
}

// ExpandCategoryAliases substitutes alias tokens and returns the normalized
// join, which category and level matching then runs against. "nmg" expands
// to "no major glitches" so the category direct match can find it; the raw
// token would not be a substring of the category name.
func ExpandCategoryAliases(tokens []string) string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if full, ok := CategoryAliases[strings.ToLower(tok)]; ok {
			out[i] = full
		} else {
			out[i] = tok
		}
	}
	return Normalize(strings.Join(out, " "))
}

// ResolveLevel picks the first level (catalog order) whose normalized name is
// a substring of the normalized leftover text. No match is not an error; the
// category step decides whether a level is actually needed.
func ResolveLevel(levels []srcom.Level, remText string) (srcom.Level, bool) {
	for _, lvl := range levels {
		norm := Normalize(lvl.Name)
		if norm != "" && strings.Contains(remText, norm) {
			return lvl, true
		}
	}
	return srcom.Level{}, false
}

// categoryRule is one heuristic fallback applied when no category matched the
// leftover text directly. Rules run in order; the first rule that yields a
// category wins, which keeps the tie-break order auditable per rule.
type categoryRule struct {
	name string
	pick func(remText string, cats []srcom.Category) (srcom.Category, bool)
}

var categoryRules = []categoryRule{
	// Numbered variants: "70" selects "70 Stars".
	{name: "numeric", pick: func(remText string, cats []srcom.Category) (srcom.Category, bool) {
		num := digitRun.FindString(remText)
		if num == "" {
			return srcom.Category{}, false
		}
		for _, cat := range cats {
			if strings.Contains(Normalize(cat.Name), num) {
				return cat, true
			}
		}
		return srcom.Category{}, false
	}},
	// Difficulty spelled into the category name.
	{name: "hard", pick: func(remText string, cats []srcom.Category) (srcom.Category, bool) {
		if !strings.Contains(remText, "hard") {
			return srcom.Category{}, false
		}
		for _, cat := range cats {
			if strings.Contains(Normalize(cat.Name), "hard") {
				return cat, true
			}
		}
		return srcom.Category{}, false
	}},
	// "normal" maps to any non-hard category, preferring ones named "any".
	{name: "normal", pick: func(remText string, cats []srcom.Category) (srcom.Category, bool) {
		if !strings.Contains(remText, "normal") {
			return srcom.Category{}, false
		}
		var fallback *srcom.Category
		for i, cat := range cats {
			norm := Normalize(cat.Name)
			if strings.Contains(norm, "hard") {
				continue
			}
			if strings.Contains(norm, "any") {
				return cat, true
			}
			if fallback == nil {
				fallback = &cats[i]
			}
		}
		if fallback != nil {
			return *fallback, true
		}
		return srcom.Category{}, false
	}},
}

// ResolveCategory selects a category (and, when required, a level) for the
// normalized leftover text remText. Categories and levels must be in catalog
// order.
//
// Matching proceeds in stages: level substring match first, then a direct
// containment match against each category name (per-level categories are
// skipped when no level was written), then the heuristic rule list, then the
// first per-game non-misc category, then the first category overall. If the
// final pick is per-level and no level matched, the first level is assumed;
// a game without levels fails with ErrMissingLevel.
func ResolveCategory(cats []srcom.Category, levels []srcom.Level, remText string) (srcom.Category, *srcom.Level, error) {
	var level *srcom.Level
	if lvl, ok := ResolveLevel(levels, remText); ok {
		level = &lvl
	}

	selected, ok := directCategoryMatch(cats, remText, level != nil)
	if !ok {
		for _, rule := range categoryRules {
			if cat, hit := rule.pick(remText, cats); hit {
				selected, ok = cat, true
				break
			}
		}
	}
	if !ok {
		selected, ok = fallbackCategory(cats)
	}
	if !ok {
		// A game with zero categories; nothing sensible to query.
		return srcom.Category{}, nil, ErrCategoryNotFound
	}

	if selected.IsPerLevel() && level == nil {
		if len(levels) == 0 {
			return srcom.Category{}, nil, ErrMissingLevel
		}
		level = &levels[0]
	}
	if !selected.IsPerLevel() {
		level = nil
	}
	return selected, level, nil
}

// directCategoryMatch returns the first category whose normalized name
// contains, or is contained by, the leftover text.
func directCategoryMatch(cats []srcom.Category, remText string, haveLevel bool) (srcom.Category, bool) {
	for _, cat := range cats {
		if cat.IsPerLevel() && !haveLevel {
			continue
		}
		normCat := Normalize(cat.Name)
		if strings.Contains(remText, normCat) || strings.Contains(normCat, remText) {
			return cat, true
		}
	}
	return srcom.Category{}, false
}

// fallbackCategory prefers the first main board (per-game, non-misc), then
// the first category of any kind.
func fallbackCategory(cats []srcom.Category) (srcom.Category, bool) {
	for _, cat := range cats {
		if cat.Type == srcom.CategoryPerGame && !cat.Misc {
			return cat, true
		}
	}
	if len(cats) > 0 {
		return cats[0], true
	}
	return srcom.Category{}, false
}
