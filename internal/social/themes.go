package social

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

const weightTolerance = 1e-6

var themeInstructions = map[Theme]string{
	ThemeProgresIllimite: "Expose une vérité sur le progrès illimité",
	ThemeCritiqueSociale: "Formule une critique froide de la société moderne",
	ThemeVisionFuture:    "Décris un fragment du futur qui juge notre présent",
	ThemeSatireModerne:   "Compose une satire de l'homme moderne sans volonté",
	ThemePenseeCosmique:  "Partage une réflexion sur l'échelle cosmique de nos possibilités",
}

// AllThemes lists the themes in table order.
func AllThemes() []Theme {
	return []Theme{
		ThemeProgresIllimite,
		ThemeCritiqueSociale,
		ThemeVisionFuture,
		ThemeSatireModerne,
		ThemePenseeCosmique,
	}
}

func (t Theme) Valid() bool {
	_, ok := themeInstructions[t]
	return ok
}

// Instruction is the user prompt sent for the theme.
func (t Theme) Instruction() string {
	return themeInstructions[t]
}

type ThemeWeight struct {
	Theme  Theme
	Weight float64
}

func DefaultThemeWeights() []ThemeWeight {
	return []ThemeWeight{
		{ThemeProgresIllimite, 0.25},
		{ThemeCritiqueSociale, 0.25},
		{ThemeVisionFuture, 0.20},
		{ThemeSatireModerne, 0.15},
		{ThemePenseeCosmique, 0.15},
	}
}

// ParseThemeWeights reads "theme=weight,theme=weight". Themes left out get
// weight zero. An empty value yields the default table.
func ParseThemeWeights(value string) ([]ThemeWeight, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultThemeWeights(), nil
	}
	byTheme := make(map[Theme]float64)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("theme weight %q: expected name=weight", part)
		}
		theme := Theme(strings.TrimSpace(name))
		if !theme.Valid() {
			return nil, fmt.Errorf("unknown theme %q", theme)
		}
		if _, dup := byTheme[theme]; dup {
			return nil, fmt.Errorf("theme %q listed twice", theme)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("theme %q: parse weight: %w", theme, err)
		}
		byTheme[theme] = w
	}
	weights := make([]ThemeWeight, 0, len(themeInstructions))
	for _, theme := range AllThemes() {
		weights = append(weights, ThemeWeight{Theme: theme, Weight: byTheme[theme]})
	}
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	return weights, nil
}

func validateWeights(weights []ThemeWeight) error {
	if len(weights) == 0 {
		return errors.New("theme weight table is empty")
	}
	var sum float64
	for _, w := range weights {
		if !w.Theme.Valid() {
			return fmt.Errorf("unknown theme %q", w.Theme)
		}
		if w.Weight < 0 || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			return fmt.Errorf("theme %q: invalid weight %v", w.Theme, w.Weight)
		}
		sum += w.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("theme weights sum to %.6f, want 1", sum)
	}
	return nil
}

// ThemeSelector samples themes with replacement. It keeps no history.
type ThemeSelector struct {
	weights    []ThemeWeight
	cumulative []float64
	rng        *rand.Rand
}

// NewThemeSelector validates the table. A nil rng gets a randomly seeded PCG.
func NewThemeSelector(weights []ThemeWeight, rng *rand.Rand) (*ThemeSelector, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &ThemeSelector{
		weights:    append([]ThemeWeight(nil), weights...),
		cumulative: make([]float64, len(weights)),
		rng:        rng,
	}
	var acc float64
	for i, w := range s.weights {
		acc += w.Weight
		s.cumulative[i] = acc
	}
	return s, nil
}

// Pick draws one theme.
func (s *ThemeSelector) Pick() Theme {
	total := s.cumulative[len(s.cumulative)-1]
	r := s.rng.Float64() * total
	i := sort.Search(len(s.cumulative), func(i int) bool { return r < s.cumulative[i] })
	if i < len(s.weights) {
		return s.weights[i].Theme
	}
	// r landed on the upper edge through rounding; take the last weighted theme.
	for j := len(s.weights) - 1; j >= 0; j-- {
		if s.weights[j].Weight > 0 {
			return s.weights[j].Theme
		}
	}
	return s.weights[len(s.weights)-1].Theme
}

// Weights returns a copy of the table.
func (s *ThemeSelector) Weights() []ThemeWeight {
	return append([]ThemeWeight(nil), s.weights...)
}
