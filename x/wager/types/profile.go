package types

// PlayerProfile accumulates per-identity statistics across settled sessions.
type PlayerProfile struct {
	Player        string `json:"player"`
	GamesPlayed   uint64 `json:"gamesPlayed"`
	Wins          uint64 `json:"wins"`
	Losses        uint64 `json:"losses"`
	Draws         uint64 `json:"draws"`
	TotalStaked   uint64 `json:"totalStaked"`
	TotalWon      uint64 `json:"totalWon"`
	WinStreak     uint32 `json:"winStreak"`
	BestWinStreak uint32 `json:"bestWinStreak"`
	LastPlayed    int64  `json:"lastPlayed"`
}

// Outcome is a participant's result in a settled session.
type Outcome uint8

const (
	OutcomeLoss Outcome = iota
	OutcomeWin
	OutcomeDraw
)

// Record folds one settled session into the profile. Counters saturate rather than wrap.
func (p *PlayerProfile) Record(outcome Outcome, staked, won uint64, now int64) {
	p.GamesPlayed = satAdd(p.GamesPlayed, 1)
	p.TotalStaked = satAdd(p.TotalStaked, staked)
	p.LastPlayed = now
	switch outcome {
	case OutcomeWin:
		p.Wins = satAdd(p.Wins, 1)
		p.TotalWon = satAdd(p.TotalWon, won)
		if p.WinStreak < ^uint32(0) {
			p.WinStreak++
		}
		if p.WinStreak > p.BestWinStreak {
			p.BestWinStreak = p.WinStreak
		}
	case OutcomeLoss:
		p.Losses = satAdd(p.Losses, 1)
		p.WinStreak = 0
	case OutcomeDraw:
		p.Draws = satAdd(p.Draws, 1)
		p.TotalWon = satAdd(p.TotalWon, won)
	}
}

func satAdd(a, b uint64) uint64 {
	if a > ^uint64(0)-b {
		return ^uint64(0)
	}
	return a + b
}
