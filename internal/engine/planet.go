package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// Sentinel errors of the clock core. Callers report them by ignoring the
// offending input; none of them is fatal to the host.
var (
	ErrInvalidLabel  = errors.New(config.ErrInvalidLabel)
	ErrOutOfRangeSet = errors.New(config.ErrOutOfRangeSet)
)

// Planet is one of the seven labels of the Chaldean order.
type Planet string

const (
	Saturn  Planet = "Saturn"
	Jupiter Planet = "Jupiter"
	Mars    Planet = "Mars"
	Sun     Planet = "Sun"
	Venus   Planet = "Venus"
	Mercury Planet = "Mercury"
	Moon    Planet = "Moon"
)

var planetaryOrder = [config.PlanetCount]Planet{
	Saturn, Jupiter, Mars, Sun, Venus, Mercury, Moon,
}

var planetaryMeanings = map[Planet]string{
	Saturn:  "Discipline, structure, responsibility",
	Jupiter: "Abundance, expansion, wisdom",
	Mars:    "Action, energy, passion",
	Sun:     "Leadership, vitality, creativity",
	Venus:   "Love, beauty, harmony",
	Mercury: "Communication, intellect, learning",
	Moon:    "Emotions, intuition, reflection",
}

// PlanetaryOrder returns the Chaldean sequence. The array is a copy.
func PlanetaryOrder() [config.PlanetCount]Planet {
	return planetaryOrder
}

// RulerFor maps a (day, hour) pair to its planetary ruler.
//
// Elapsed hours are counted over the fixed 24 hour reference day, whatever
// the configured day length: totalHours = (day-1)*24 + hour, and the ruler is
// PlanetaryOrder[(totalHours-1) mod 7]. The modulo is floored so the function
// stays total for out-of-range inputs.
func RulerFor(day, hour int) Planet {
	totalHours := (day-1)*config.ReferenceHoursPerDay + hour
	idx := (totalHours - 1) % config.PlanetCount
	if idx < 0 {
		idx += config.PlanetCount
	}
	return planetaryOrder[idx]
}

// ParsePlanet resolves a label case-insensitively.
func ParsePlanet(label string) (Planet, error) {
	trimmed := strings.TrimSpace(label)
	for _, p := range planetaryOrder {
		if strings.EqualFold(string(p), trimmed) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
}

// Meaning returns the traditional influence of the planet.
func (p Planet) Meaning() string {
	return planetaryMeanings[p]
}

// Key returns the lowercase identifier used in translation keys.
func (p Planet) Key() string {
	return strings.ToLower(string(p))
}

func (p Planet) String() string {
	return string(p)
}
