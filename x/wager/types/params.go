package types

import "fmt"

const (
	// MaxPlatformFeePercent caps the platform fee an admin may configure.
	MaxPlatformFeePercent uint32 = 10

	// MinTimeoutSecs is the shortest inactivity timeout an admin may configure.
	MinTimeoutSecs uint64 = 300

	// MaxRoundsLimit is the largest round count the packed rounds nibble can hold.
	MaxRoundsLimit uint8 = 15

	// MaxParticipants bounds the participant slots of any session.
	MaxParticipants = 100

	// MaxActionLog bounds the multi-round action log.
	MaxActionLog = 50
)

const (
	RandomnessMethodOracle = "oracle"
	RandomnessMethodBlock  = "block"
)

// Params is the admin-controlled module configuration.
type Params struct {
	Admin    string `json:"admin"`
	Treasury string `json:"treasury"`
	// Oracle may submit verifiable randomness for lottery draws and multi-round resolution.
	Oracle string `json:"oracle,omitempty"`

	MinStake           uint64 `json:"minStake"`
	MaxStake           uint64 `json:"maxStake"`
	MaxRounds          uint8  `json:"maxRounds"`
	FoldPenaltyPercent uint32 `json:"foldPenaltyPercent"`
	PlatformFeePercent uint32 `json:"platformFeePercent"`
	TimeoutSecs        uint64 `json:"timeoutSecs"`

	TicketPrice         uint64 `json:"ticketPrice"`
	MaxTicketsPerPlayer uint32 `json:"maxTicketsPerPlayer"`
	DrawIntervalSecs    uint64 `json:"drawIntervalSecs"`

	RandomnessMethod string `json:"randomnessMethod"`
}

func DefaultParams() Params {
	return Params{
		Admin:    DefaultAdmin,
		Treasury: DefaultTreasury,

		MinStake:           100_000_000,    // 0.1 unit
		MaxStake:           10_000_000_000, // 10 units
		MaxRounds:          10,
		FoldPenaltyPercent: 10,
		PlatformFeePercent: 2,
		TimeoutSecs:        60 * 60, // 1h

		TicketPrice:         50_000_000,
		MaxTicketsPerPlayer: 100,
		DrawIntervalSecs:    24 * 60 * 60, // 24h

		RandomnessMethod: RandomnessMethodOracle,
		Oracle:           DefaultOracle,
	}
}

func (p Params) Validate() error {
	if p.Admin == "" {
		return fmt.Errorf("admin must be set")
	}
	if p.Treasury == "" {
		return fmt.Errorf("treasury must be set")
	}
	if p.MinStake == 0 {
		return fmt.Errorf("min_stake must be > 0")
	}
	if p.MaxStake <= p.MinStake {
		return fmt.Errorf("max_stake must be > min_stake: %d <= %d", p.MaxStake, p.MinStake)
	}
	if p.MaxRounds == 0 || p.MaxRounds > MaxRoundsLimit {
		return fmt.Errorf("max_rounds must be in [1,%d], got %d", MaxRoundsLimit, p.MaxRounds)
	}
	if p.FoldPenaltyPercent > 100 {
		return fmt.Errorf("fold_penalty_percent must be <= 100")
	}
	if p.PlatformFeePercent > MaxPlatformFeePercent {
		return fmt.Errorf("platform_fee_percent must be <= %d", MaxPlatformFeePercent)
	}
	if p.TimeoutSecs < MinTimeoutSecs {
		return fmt.Errorf("timeout_secs must be >= %d", MinTimeoutSecs)
	}
	if p.TicketPrice == 0 {
		return fmt.Errorf("ticket_price must be > 0")
	}
	if p.MaxTicketsPerPlayer == 0 || p.MaxTicketsPerPlayer > MaxParticipants {
		return fmt.Errorf("max_tickets_per_player must be in [1,%d]", MaxParticipants)
	}
	if p.DrawIntervalSecs == 0 {
		return fmt.Errorf("draw_interval_secs must be > 0")
	}
	switch p.RandomnessMethod {
	case RandomnessMethodOracle, RandomnessMethodBlock:
	default:
		return fmt.Errorf("unknown randomness_method %q", p.RandomnessMethod)
	}
	if p.RandomnessMethod == RandomnessMethodOracle && p.Oracle == "" {
		return fmt.Errorf("oracle must be set when randomness_method is %q", RandomnessMethodOracle)
	}
	return nil
}
