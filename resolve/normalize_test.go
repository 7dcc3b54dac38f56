package resolve

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Super Mario 64", "supermario64"},
		{"The Legend of Zelda: Ocarina of Time", "thelegendofzeldaocarinaoftime"},
		{"Pokémon Émeraude", "pokemonemeraude"},
		{"Any%", "any"},
		{"No Major Glitches", "nomajorglitches"},
		{"100%  All Stars!", "100allstars"},
		{"  ", ""},
		{"", ""},
		{"ÑÁÑDÚ", "nandu"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Pokémon", "Any%", "70 Stars", "Mega Man X"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}
