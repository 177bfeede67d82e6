package types

import (
	"encoding/json"
	"fmt"
)

// storedSession is the on-store form of a Session: the header enums, rounds,
// timestamps and the action log go through the packed encoding.
type storedSession struct {
	ID         uint64 `json:"id"`
	KindState  byte   `json:"ks"`
	Rounds     byte   `json:"rd"`
	Timestamps uint64 `json:"ts"`
	Flags      byte   `json:"fl"`
	EndTime    int64  `json:"end,omitempty"`

	Creator  string `json:"creator"`
	Treasury string `json:"treasury"`

	Players  []string `json:"players"`
	Stakes   []uint64 `json:"stakes"`
	PotTotal uint64   `json:"pot"`
	EntryFee uint64   `json:"entryFee"`

	Commitments  []Hash32 `json:"commit,omitempty"`
	Reveals      []Move   `json:"reveal,omitempty"`
	RevealNonces []Hash32 `json:"nonce,omitempty"`

	ActionLog        []byte `json:"log,omitempty"`
	RoundActionStart int    `json:"roundStart,omitempty"`

	Winner string `json:"winner,omitempty"`
	// HasWinner is stored explicitly so a bound winner slot is never confused with no winner.
	HasWinner bool `json:"hasWinner,omitempty"`

	RandomResult Hash32 `json:"rand"`
	FeeCollected uint64 `json:"fee,omitempty"`
}

func MarshalSession(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	log := make([]byte, len(s.Actions))
	for i, a := range s.Actions {
		log[i] = PackAction(a)
	}
	return json.Marshal(storedSession{
		ID:               s.ID,
		KindState:        PackKindState(s.Kind, s.State),
		Rounds:           PackRounds(s.CurrentRound, s.MaxRounds),
		Timestamps:       PackTimestamps(s.StartTime, s.LastActionTime),
		Flags:            byte(s.Flags),
		EndTime:          s.EndTime,
		Creator:          s.Creator,
		Treasury:         s.Treasury,
		Players:          s.Players,
		Stakes:           s.Stakes,
		PotTotal:         s.PotTotal,
		EntryFee:         s.EntryFee,
		Commitments:      s.Commitments,
		Reveals:          s.Reveals,
		RevealNonces:     s.RevealNonces,
		ActionLog:        log,
		RoundActionStart: s.RoundActionStart,
		Winner:           s.Winner,
		HasWinner:        s.HasWinner,
		RandomResult:     s.RandomResult,
		FeeCollected:     s.PlatformFeeCollected,
	})
}

func UnmarshalSession(bz []byte) (*Session, error) {
	var st storedSession
	if err := json.Unmarshal(bz, &st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	kind, state := UnpackKindState(st.KindState)
	cur, max := UnpackRounds(st.Rounds)
	start, last := UnpackTimestamps(st.Timestamps)
	var actions []ActionRecord
	if len(st.ActionLog) > 0 {
		actions = make([]ActionRecord, len(st.ActionLog))
		for i, b := range st.ActionLog {
			actions[i] = UnpackAction(b)
		}
	}
	return &Session{
		ID:                   st.ID,
		Kind:                 kind,
		State:                state,
		Creator:              st.Creator,
		Treasury:             st.Treasury,
		Players:              st.Players,
		Stakes:               st.Stakes,
		PotTotal:             st.PotTotal,
		EntryFee:             st.EntryFee,
		CurrentRound:         cur,
		MaxRounds:            max,
		Commitments:          st.Commitments,
		Reveals:              st.Reveals,
		RevealNonces:         st.RevealNonces,
		Actions:              actions,
		RoundActionStart:     st.RoundActionStart,
		Winner:               st.Winner,
		HasWinner:            st.HasWinner,
		RandomResult:         st.RandomResult,
		StartTime:            start,
		LastActionTime:       last,
		EndTime:              st.EndTime,
		PlatformFeeCollected: st.FeeCollected,
		Flags:                Flags(st.Flags),
	}, nil
}
