package types

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// MoveKind is the variant of a revealed duel move.
type MoveKind uint8

const (
	MoveNone MoveKind = iota
	MoveRock
	MovePaper
	MoveScissors
	MoveHeads
	MoveTails
	MoveNumber
)

// Move is a duel move. Number is only meaningful for MoveNumber.
type Move struct {
	Kind   MoveKind
	Number uint8
}

var moveNames = map[MoveKind]string{
	MoveNone:     "none",
	MoveRock:     "rock",
	MovePaper:    "paper",
	MoveScissors: "scissors",
	MoveHeads:    "heads",
	MoveTails:    "tails",
}

func (m Move) String() string {
	if m.Kind == MoveNumber {
		return "number:" + strconv.Itoa(int(m.Number))
	}
	if n, ok := moveNames[m.Kind]; ok {
		return n
	}
	return fmt.Sprintf("move(%d)", uint8(m.Kind))
}

func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(s, "number:"); ok {
		n, err := strconv.ParseUint(rest, 10, 8)
		if err != nil {
			return Move{}, fmt.Errorf("invalid number move %q", s)
		}
		return Move{Kind: MoveNumber, Number: uint8(n)}, nil
	}
	for k, n := range moveNames {
		if n == s {
			return Move{Kind: k}, nil
		}
	}
	return Move{}, fmt.Errorf("unknown move %q", s)
}

func (m Move) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Move) UnmarshalText(b []byte) error {
	v, err := ParseMove(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Move) IsNone() bool { return m.Kind == MoveNone }

// Valid reports whether m is a playable move. Only MoveNumber carries a number.
func (m Move) Valid() bool {
	if m.Kind <= MoveNone || m.Kind > MoveNumber {
		return false
	}
	return m.Kind == MoveNumber || m.Number == 0
}

// same reports whether m and o encode to the same commitment bytes.
func (m Move) same(o Move) bool {
	return m.Kind == o.Kind && (m.Kind != MoveNumber || m.Number == o.Number)
}

// Bytes is the canonical serialization hashed into a commitment: the variant byte,
// followed by the number for MoveNumber.
func (m Move) Bytes() []byte {
	if m.Kind == MoveNumber {
		return []byte{byte(m.Kind), m.Number}
	}
	return []byte{byte(m.Kind)}
}

// Commitment returns sha256(move.Bytes() || nonce).
func Commitment(m Move, nonce Hash32) Hash32 {
	h := sha256.New()
	h.Write(m.Bytes())
	h.Write(nonce[:])
	var out Hash32
	copy(out[:], h.Sum(nil))
	return out
}

type moveFamily uint8

const (
	familyNone moveFamily = iota
	familyRPS
	familyCoin
	familyNumber
)

func (m Move) family() moveFamily {
	switch m.Kind {
	case MoveRock, MovePaper, MoveScissors:
		return familyRPS
	case MoveHeads, MoveTails:
		return familyCoin
	case MoveNumber:
		return familyNumber
	default:
		return familyNone
	}
}

// DuelOutcome resolves two revealed moves. It returns 0 or 1 for the winning
// participant slot, or -1 for a draw.
//
// Coin calls that differ are settled by a coin derived from both reveal nonces, so
// neither side controls it alone. Numbers use a cyclic half-circle rule: a beats b
// iff (a-b) mod 256 is in [1,127].
func DuelOutcome(a, b Move, nonceA, nonceB Hash32) int {
	if a.same(b) {
		return -1
	}
	fa, fb := a.family(), b.family()
	if fa != fb || fa == familyNone {
		return -1
	}
	switch fa {
	case familyRPS:
		if beats(a.Kind, b.Kind) {
			return 0
		}
		return 1
	case familyCoin:
		h := sha256.New()
		h.Write(nonceA[:])
		h.Write(nonceB[:])
		landed := MoveHeads
		if h.Sum(nil)[31]&1 == 1 {
			landed = MoveTails
		}
		if a.Kind == landed {
			return 0
		}
		return 1
	case familyNumber:
		d := a.Number - b.Number
		switch {
		case d >= 1 && d <= 127:
			return 0
		case d >= 129:
			return 1
		default:
			return -1
		}
	}
	return -1
}

func beats(a, b MoveKind) bool {
	return (a == MoveRock && b == MoveScissors) ||
		(a == MoveScissors && b == MovePaper) ||
		(a == MovePaper && b == MoveRock)
}

// BetKind is a multi-round betting action.
type BetKind uint8

const (
	BetCheck BetKind = iota
	BetCall
	BetRaise
	BetFold
)

func (k BetKind) String() string {
	switch k {
	case BetCheck:
		return "check"
	case BetCall:
		return "call"
	case BetRaise:
		return "raise"
	case BetFold:
		return "fold"
	default:
		return fmt.Sprintf("bet(%d)", uint8(k))
	}
}

func (k BetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *BetKind) UnmarshalText(b []byte) error {
	for c := BetCheck; c <= BetFold; c++ {
		if c.String() == strings.ToLower(string(b)) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown bet action %q", string(b))
}

// BetAction is a betting action; Amount is only used by BetRaise.
type BetAction struct {
	Kind   BetKind `json:"kind"`
	Amount uint64  `json:"amount,omitempty"`
}
