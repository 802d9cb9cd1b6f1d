package outcome

import (
	"github.com/questx-lab/petquest/internal/entity"
)

type QuestInput struct {
	Seed       uint64
	Stat       int
	Luck       int
	Difficulty int
	TimesWon   int
}

// QuestPolicy decides the outcome of a quest when a pet is sent on it.
// Implementations must be deterministic in QuestInput and must never produce a
// worse outcome for a higher Stat or Luck with everything else fixed.
type QuestPolicy interface {
	Quest(QuestInput) entity.QuestOutcome
}

type BattleInput struct {
	Seed       uint64
	Challenger entity.Stats
	Defender   entity.Stats
}

// BattlePolicy decides whether the challenger wins. Implementations must be
// deterministic in BattleInput and raising any challenger stat must never turn
// a win into a loss.
type BattlePolicy interface {
	ChallengerWins(BattleInput) bool
}

// LinearQuestPolicy compares the tested stat plus half the luck against a
// target that grows with difficulty and with every quest already won. A seeded
// swing in [-Swing, Swing] is added to the pet score.
type LinearQuestPolicy struct {
	Swing int
}

func NewLinearQuestPolicy() LinearQuestPolicy {
	return LinearQuestPolicy{Swing: 2}
}

func (p LinearQuestPolicy) Quest(in QuestInput) entity.QuestOutcome {
	target := in.Difficulty + 2*in.TimesWon
	half := (target + 1) / 2
	score := in.Stat + (in.Luck+1)/2 + Roll(in.Seed, "quest", -p.Swing, p.Swing)

	diff := score - target
	switch {
	case diff < 0:
		return entity.QuestOutcomeFail
	case diff < half:
		return entity.QuestOutcomePass
	default:
		return entity.QuestOutcomeExceptionalPass
	}
}

// LinearBattlePolicy turns the difference of summed stats into a win chance
// around one half, clamped so that neither side is ever certain to win.
type LinearBattlePolicy struct {
	// Spread is the stat advantage giving the maximum chance.
	Spread    float64
	MinChance float64
}

func NewLinearBattlePolicy() LinearBattlePolicy {
	return LinearBattlePolicy{Spread: 40, MinChance: 0.1}
}

func (p LinearBattlePolicy) Chance(challenger, defender entity.Stats) float64 {
	advantage := float64(challenger.Sum() - defender.Sum())
	return clamp(0.5+advantage/(2*p.Spread), p.MinChance, 1-p.MinChance)
}

func (p LinearBattlePolicy) ChallengerWins(in BattleInput) bool {
	return Float(in.Seed, "battle") < p.Chance(in.Challenger, in.Defender)
}
