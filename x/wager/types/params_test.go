package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParams_Valid(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
}

func TestParams_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		errMsg string
	}{
		{"fee above cap", func(p *Params) { p.PlatformFeePercent = 11 }, "platform_fee_percent"},
		{"timeout too short", func(p *Params) { p.TimeoutSecs = 299 }, "timeout_secs"},
		{"max equals min", func(p *Params) { p.MaxStake = p.MinStake }, "max_stake"},
		{"zero min stake", func(p *Params) { p.MinStake = 0 }, "min_stake"},
		{"rounds over nibble", func(p *Params) { p.MaxRounds = 16 }, "max_rounds"},
		{"zero rounds", func(p *Params) { p.MaxRounds = 0 }, "max_rounds"},
		{"penalty over 100", func(p *Params) { p.FoldPenaltyPercent = 101 }, "fold_penalty_percent"},
		{"zero ticket price", func(p *Params) { p.TicketPrice = 0 }, "ticket_price"},
		{"ticket cap over slots", func(p *Params) { p.MaxTicketsPerPlayer = MaxParticipants + 1 }, "max_tickets_per_player"},
		{"zero draw interval", func(p *Params) { p.DrawIntervalSecs = 0 }, "draw_interval_secs"},
		{"unknown randomness", func(p *Params) { p.RandomnessMethod = "clock" }, "randomness_method"},
		{"missing admin", func(p *Params) { p.Admin = "" }, "admin"},
		{"missing treasury", func(p *Params) { p.Treasury = "" }, "treasury"},
		{"oracle method without oracle", func(p *Params) { p.Oracle = "" }, "oracle must be set"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			require.ErrorContains(t, p.Validate(), tc.errMsg)
		})
	}

	p := DefaultParams()
	p.PlatformFeePercent = MaxPlatformFeePercent
	p.TimeoutSecs = MinTimeoutSecs
	require.NoError(t, p.Validate())

	// Block randomness needs no oracle.
	p.RandomnessMethod = RandomnessMethodBlock
	p.Oracle = ""
	require.NoError(t, p.Validate())
}
