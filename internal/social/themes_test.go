package social

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestDefaultThemeWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range DefaultThemeWeights() {
		if w.Theme.Instruction() == "" {
			t.Fatalf("theme %q has no instruction", w.Theme)
		}
		sum += w.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		t.Fatalf("expected weights to sum to 1, got %v", sum)
	}
}

func TestThemeSelectorDistribution(t *testing.T) {
	selector, err := NewThemeSelector(DefaultThemeWeights(), rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("NewThemeSelector: %v", err)
	}

	const draws = 20000
	counts := make(map[Theme]int)
	for range draws {
		counts[selector.Pick()]++
	}

	for _, w := range DefaultThemeWeights() {
		got := float64(counts[w.Theme]) / draws
		if math.Abs(got-w.Weight) > 0.02 {
			t.Fatalf("theme %q: frequency %.3f, want %.2f ± 0.02", w.Theme, got, w.Weight)
		}
	}
}

func TestThemeSelectorNeverPicksZeroWeight(t *testing.T) {
	weights, err := ParseThemeWeights("progres_illimite=1.0")
	if err != nil {
		t.Fatalf("ParseThemeWeights: %v", err)
	}
	selector, err := NewThemeSelector(weights, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatalf("NewThemeSelector: %v", err)
	}
	for range 10000 {
		if got := selector.Pick(); got != ThemeProgresIllimite {
			t.Fatalf("picked zero-weight theme %q", got)
		}
	}
}

func TestParseThemeWeights(t *testing.T) {
	weights, err := ParseThemeWeights(" vision_future=0.5, satire_moderne=0.5 ")
	if err != nil {
		t.Fatalf("ParseThemeWeights: %v", err)
	}
	if len(weights) != len(AllThemes()) {
		t.Fatalf("expected every theme listed, got %d", len(weights))
	}
	for _, w := range weights {
		switch w.Theme {
		case ThemeVisionFuture, ThemeSatireModerne:
			if w.Weight != 0.5 {
				t.Fatalf("theme %q: weight %v", w.Theme, w.Weight)
			}
		default:
			if w.Weight != 0 {
				t.Fatalf("omitted theme %q should be zero, got %v", w.Theme, w.Weight)
			}
		}
	}

	defaults, err := ParseThemeWeights("")
	if err != nil || len(defaults) != 5 {
		t.Fatalf("empty value should return defaults, got %v, %v", defaults, err)
	}
}

func TestParseThemeWeightsRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"unknown theme": "dadaisme=1.0",
		"duplicate":     "vision_future=0.5,vision_future=0.5",
		"not a number":  "vision_future=beaucoup",
		"missing value": "vision_future",
		"negative":      "vision_future=1.5,satire_moderne=-0.5",
		"bad sum":       "vision_future=0.5,satire_moderne=0.2",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseThemeWeights(value); err == nil {
				t.Fatalf("expected %q to be rejected", value)
			}
		})
	}
}

func TestNewThemeSelectorRejectsInvalidWeights(t *testing.T) {
	_, err := NewThemeSelector([]ThemeWeight{{Theme: "nope", Weight: 1}}, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown theme") {
		t.Fatalf("expected unknown theme error, got %v", err)
	}
	if _, err := NewThemeSelector(nil, nil); err == nil {
		t.Fatal("expected empty table to be rejected")
	}
}

func TestThemeSelectorWeightsIsCopy(t *testing.T) {
	selector, err := NewThemeSelector(DefaultThemeWeights(), nil)
	if err != nil {
		t.Fatalf("NewThemeSelector: %v", err)
	}
	w := selector.Weights()
	w[0].Weight = 42
	if selector.Weights()[0].Weight == 42 {
		t.Fatal("Weights must not expose internal state")
	}
}
