// Package game holds the pure rules of the Ramadan campaign: level tiers,
// the campaign calendar and the mission/reward catalog. Nothing in here
// touches storage or the clock; callers pass "now" in.
package game

// Tier is the named level derived from a point total.
type Tier struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

var (
	TierPemula  = Tier{Name: "Pemula", Emoji: "🌱"}
	TierPejuang = Tier{Name: "Pejuang", Emoji: "⚔️"}
	TierSultan  = Tier{Name: "Sultan", Emoji: "👑"}
)

// Levels holds the point thresholds for each tier above Pemula.
type Levels struct {
	Pejuang int `toml:"pejuang" validate:"gt=0"`
	Sultan  int `toml:"sultan"  validate:"gtfield=Pejuang"`
}

func DefaultLevels() Levels {
	return Levels{Pejuang: 500, Sultan: 1000}
}

// Classify maps a point total to a tier, checking the highest threshold first.
func (l Levels) Classify(points int) Tier {
	switch {
	case points >= l.Sultan:
		return TierSultan
	case points >= l.Pejuang:
		return TierPejuang
	default:
		return TierPemula
	}
}

// Classify uses the default thresholds.
func Classify(points int) Tier {
	return DefaultLevels().Classify(points)
}
