package textutil

import (
	"math"
	"slices"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
	}{
		{"both nil", nil, nil},
		{"a nil", nil, NewFingerprint("Heat")},
		{"b nil", NewFingerprint("Heat"), nil},
		{"zero norm", &Fingerprint{tokens: map[string]float64{}}, NewFingerprint("Heat")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); got != 0 {
				t.Errorf("CosineSimilarity() = %v, want 0", got)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		min     float64
		max     float64
		nearOne bool
	}{
		{name: "identical", a: "The Return of the King", b: "The Return of the King", nearOne: true},
		{name: "accents folded", a: "Amelie", b: "Amélie", nearOne: true},
		{name: "ampersand", a: "Law and Order", b: "Law & Order", nearOne: true},
		{name: "disjoint", a: "Heat", b: "Alien", min: 0, max: 0},
		{name: "partial", a: "Heat", b: "Heat Wave", min: 0.5, max: 0.9},
		{name: "sequels differ", a: "Toy Story 2", b: "Toy Story 3", min: 0.5, max: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(NewFingerprint(tt.a), NewFingerprint(tt.b))
			if back := CosineSimilarity(NewFingerprint(tt.b), NewFingerprint(tt.a)); back != got {
				t.Fatalf("not symmetric: %v vs %v", got, back)
			}
			if tt.nearOne {
				if math.Abs(got-1) > 1e-9 {
					t.Fatalf("similarity = %v, want 1", got)
				}
				return
			}
			if got < tt.min || got > tt.max {
				t.Fatalf("similarity = %v, want within [%v, %v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestNewFingerprint(t *testing.T) {
	if fp := NewFingerprint(""); fp != nil {
		t.Error("expected nil for empty title")
	}
	if fp := NewFingerprint("a - b"); fp != nil {
		t.Error("expected nil for single letters only")
	}

	// "heat heat wave" -> heat:2, wave:1, norm sqrt(5)
	fp := NewFingerprint("Heat heat Wave")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 0.0001 {
		t.Errorf("norm = %v, want %v", fp.norm, math.Sqrt(5))
	}
	if fp.TokenCount() != 2 {
		t.Errorf("TokenCount() = %d, want 2", fp.TokenCount())
	}
	var nilFP *Fingerprint
	if nilFP.TokenCount() != 0 {
		t.Error("nil fingerprint should have no tokens")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"The Lord of the Rings", []string{"the", "lord", "of", "the", "rings"}},
		{"Don't Look Up", []string{"don", "look", "up"}},
		{"Rocky 2", []string{"rocky", "2"}},
		{"A Quiet Place", []string{"quiet", "place"}},
		{"Léon: The Professional", []string{"leon", "the", "professional"}},
		{"Fast & Furious", []string{"fast", "and", "furious"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityRanksTitles(t *testing.T) {
	query := NewFingerprint("Return of the King")
	exact := NewFingerprint("The Lord of the Rings: The Return of the King")
	unrelated := NewFingerprint("The King's Speech")

	exactScore := CosineSimilarity(query, exact)
	unrelatedScore := CosineSimilarity(query, unrelated)
	if exactScore <= unrelatedScore {
		t.Fatalf("expected closer title to score higher: %v <= %v", exactScore, unrelatedScore)
	}
}
