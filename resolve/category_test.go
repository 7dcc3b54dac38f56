package resolve

import (
	"errors"
	"testing"

	"github.com/onnwee/speedbot/srcom"
)

func perGame(id, name string, misc bool) srcom.Category {
	return srcom.Category{ID: id, Name: name, Type: srcom.CategoryPerGame, Misc: misc}
}

func perLevel(id, name string) srcom.Category {
	return srcom.Category{ID: id, Name: name, Type: srcom.CategoryPerLevel}
}

func TestResolveLevel(t *testing.T) {
	levels := []srcom.Level{
		{ID: "l1", Name: "Dire, Dire Docks"},
		{ID: "l2", Name: "Whomp's Fortress"},
	}
	lvl, ok := ResolveLevel(levels, Normalize("whomp's fortress 100 coins"))
	if !ok || lvl.ID != "l2" {
		t.Fatalf("ResolveLevel = %v/%v, want l2", lvl.ID, ok)
	}
	if _, ok := ResolveLevel(levels, "anythingelse"); ok {
		t.Error("expected no level match")
	}
}

func TestResolveCategory_DirectMatch(t *testing.T) {
	cats := []srcom.Category{
		perGame("c1", "Any%", false),
		perGame("c2", "100%", false),
	}
	cat, lvl, err := ResolveCategory(cats, nil, "100")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "c2" {
		t.Errorf("category = %s, want c2", cat.ID)
	}
	if lvl != nil {
		t.Errorf("level = %v, want nil for per-game", lvl)
	}
}

func TestExpandCategoryAliases(t *testing.T) {
	tests := []struct {
		tokens []string
		want   string
	}{
		{[]string{"nmg"}, "nomajorglitches"},
		{[]string{"NMG"}, "nomajorglitches"},
		{[]string{"ng+"}, "newgameplus"},
		{[]string{"low%"}, "low"},
		{[]string{"glitchless", "hard"}, "glitchlesshard"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := ExpandCategoryAliases(tt.tokens); got != tt.want {
			t.Errorf("ExpandCategoryAliases(%v) = %q, want %q", tt.tokens, got, tt.want)
		}
	}
}

func TestResolveCategory_AliasMatch(t *testing.T) {
	cats := []srcom.Category{
		perGame("c1", "Any%", false),
		perGame("c2", "No Major Glitches", false),
	}
	cat, lvl, err := ResolveCategory(cats, nil, ExpandCategoryAliases([]string{"nmg"}))
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "c2" {
		t.Errorf("category = %s, want c2 (No Major Glitches)", cat.ID)
	}
	if lvl != nil {
		t.Errorf("level = %v, want nil", lvl)
	}
}

func TestResolveCategory_PerLevelSkippedWithoutLevel(t *testing.T) {
	// "star" would direct-match the per-level board, but no level was
	// written, so the per-game board must win.
	cats := []srcom.Category{
		perLevel("cl", "Star"),
		perGame("cg", "120 Star", false),
	}
	cat, _, err := ResolveCategory(cats, nil, "star")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "cg" {
		t.Errorf("category = %s, want cg", cat.ID)
	}
}

func TestResolveCategory_NumericRule(t *testing.T) {
	cats := []srcom.Category{
		perGame("c1", "Any%", false),
		perGame("c2", "All Stars", false),
		perGame("c3", "70 Stars", false),
	}
	cat, _, err := ResolveCategory(cats, nil, "70")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "c3" {
		t.Errorf("category = %s, want c3 (70 Stars)", cat.ID)
	}
}

func TestResolveCategory_NumericRuleNoDigitCategory(t *testing.T) {
	// Digits in the query select nothing when no category name carries them;
	// the fallback takes over.
	cats := []srcom.Category{
		perGame("c1", "Any%", false),
		perGame("c2", "All Stars", false),
	}
	cat, _, err := ResolveCategory(cats, nil, "70")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "c1" {
		t.Errorf("category = %s, want c1 (first per-game fallback)", cat.ID)
	}
}

func TestResolveCategory_HardRule(t *testing.T) {
	cats := []srcom.Category{
		perGame("c1", "Normal Mode", false),
		perGame("c2", "Hard Mode", false),
	}
	cat, _, err := ResolveCategory(cats, nil, "hardglitchless")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "c2" {
		t.Errorf("category = %s, want c2 (Hard Mode)", cat.ID)
	}
}

func TestResolveCategory_NormalRulePrefersAny(t *testing.T) {
	cats := []srcom.Category{
		perGame("c1", "Hard Mode", false),
		perGame("c2", "Beat the Game", false),
		perGame("c3", "Any% Normal", false),
	}
	// "normalrun" contains neither category name directly (no containment
	// either way), so the normal rule applies and prefers the "any" board.
	cat, _, err := ResolveCategory(cats, nil, "normalrun")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "c3" {
		t.Errorf("category = %s, want c3 (any preferred)", cat.ID)
	}
}

func TestResolveCategory_FallbackSkipsMisc(t *testing.T) {
	cats := []srcom.Category{
		perGame("misc", "Reverse Boss Order", true),
		perGame("main", "Any%", false),
	}
	cat, _, err := ResolveCategory(cats, nil, "zzzz")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "main" {
		t.Errorf("category = %s, want main (non-misc fallback)", cat.ID)
	}
}

func TestResolveCategory_PerLevelDefaultsFirstLevel(t *testing.T) {
	cats := []srcom.Category{perLevel("cl", "Time Attack")}
	levels := []srcom.Level{{ID: "l1", Name: "Stage 1"}, {ID: "l2", Name: "Stage 2"}}
	cat, lvl, err := ResolveCategory(cats, levels, "timeattack")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if cat.ID != "cl" {
		t.Errorf("category = %s, want cl", cat.ID)
	}
	if lvl == nil || lvl.ID != "l1" {
		t.Errorf("level = %v, want first level l1", lvl)
	}
}

func TestResolveCategory_PerLevelWithoutLevels(t *testing.T) {
	cats := []srcom.Category{perLevel("cl", "Time Attack")}
	if _, _, err := ResolveCategory(cats, nil, "timeattack"); !errors.Is(err, ErrMissingLevel) {
		t.Errorf("err = %v, want ErrMissingLevel", err)
	}
}

func TestResolveCategory_NoCategories(t *testing.T) {
	if _, _, err := ResolveCategory(nil, nil, "any"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("err = %v, want ErrCategoryNotFound", err)
	}
}

func TestResolveCategory_LevelClearedForPerGame(t *testing.T) {
	cats := []srcom.Category{perGame("cg", "Any%", false)}
	levels := []srcom.Level{{ID: "l1", Name: "Stage 1"}}
	_, lvl, err := ResolveCategory(cats, levels, "stage1any")
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if lvl != nil {
		t.Errorf("level = %v, want nil when the selected category is per-game", lvl)
	}
}
