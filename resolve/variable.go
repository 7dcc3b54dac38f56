package resolve

import (
	"strings"

	"github.com/onnwee/speedbot/srcom"
)

// Selection pairs a variable with the single value chosen for it.
type Selection struct {
	Variable srcom.Variable
	ValueID  string
	Label    string
}

// valueAlias lets a short chat token stand in for a value label the user is
// unlikely to type in full.
type valueAlias struct {
	token   string                  // present in the leftover text
	matches func(label string) bool // normalized value label
}

var valueAliases = []valueAlias{
	{token: "nmg", matches: func(l string) bool {
		return strings.Contains(l, "nomajorglitches") || l == "nmg"
	}},
	{token: "ng", matches: func(l string) bool { return strings.Contains(l, "newgame") }},
	{token: "hard", matches: func(l string) bool { return strings.Contains(l, "hard") }},
	{token: "normal", matches: func(l string) bool { return strings.Contains(l, "normal") }},
}

// ResolveVariables selects at most one value per subcategory variable based
// on the normalized leftover text. Variables and their values are evaluated
// in catalog order; the first matching value claims the variable and later
// values are not considered. A variable with no match simply contributes no
// filter, which is valid.
func ResolveVariables(vars []srcom.Variable, remText string) []Selection {
	var out []Selection
	for _, variable := range vars {
		if !variable.IsSubcategory {
			continue
		}
		for _, val := range variable.Values {
			if matchValue(remText, Normalize(val.Label)) {
				out = append(out, Selection{Variable: variable, ValueID: val.ID, Label: val.Label})
				break
			}
		}
	}
	return out
}

func matchValue(remText, normLabel string) bool {
	if normLabel != "" && strings.Contains(remText, normLabel) {
		return true
	}
	for _, alias := range valueAliases {
		if strings.Contains(remText, alias.token) && alias.matches(normLabel) {
			return true
		}
	}
	return false
}

// SubcategoryVariables filters vars to the ones that segment leaderboards.
func SubcategoryVariables(vars []srcom.Variable) []srcom.Variable {
	out := make([]srcom.Variable, 0, len(vars))
	for _, v := range vars {
		if v.IsSubcategory {
			out = append(out, v)
		}
	}
	return out
}
