package types

const (
	EventTypeSessionCreated      = "session_created"
	EventTypePlayerJoined        = "player_joined"
	EventTypeStateChanged        = "session_state_changed"
	EventTypeMoveCommitted       = "move_committed"
	EventTypeMoveRevealed        = "move_revealed"
	EventTypeBetPlaced           = "bet_placed"
	EventTypeLotteryEntered      = "lottery_entered"
	EventTypeLotteryDrawn        = "lottery_drawn"
	EventTypeSessionResolved     = "session_resolved"
	EventTypeFeesCollected       = "fees_collected"
	EventTypeWinningsClaimed     = "winnings_claimed"
	EventTypeStakeRefunded       = "stake_refunded"
	EventTypeSessionTimedOut     = "session_timed_out"
	EventTypeRandomnessSubmitted = "randomness_submitted"
	EventTypeParamsUpdated       = "params_updated"
)

const (
	AttributeKeySessionID  = "session_id"
	AttributeKeyKind       = "kind"
	AttributeKeyCreator    = "creator"
	AttributeKeyPlayer     = "player"
	AttributeKeyStake      = "stake"
	AttributeKeyAmount     = "amount"
	AttributeKeyPot        = "pot"
	AttributeKeyOldState   = "old_state"
	AttributeKeyNewState   = "new_state"
	AttributeKeyCommitment = "commitment"
	AttributeKeyMove       = "move"
	AttributeKeyAction     = "action"
	AttributeKeyRound      = "round"
	AttributeKeyTickets    = "tickets"
	AttributeKeyRequested  = "requested"
	AttributeKeyWinner     = "winner"
	AttributeKeyPayout     = "payout"
	AttributeKeyFee        = "fee"
	AttributeKeyPenalty    = "penalty"
	AttributeKeyTreasury   = "treasury"
	AttributeKeyRandomness = "randomness"
	AttributeKeySource     = "source"
	AttributeKeyOutcome    = "outcome"
	AttributeKeyAuthority  = "authority"
)

// Randomness sources reported on resolution events.
const (
	RandomnessSourceOracle = "oracle"
	RandomnessSourceBlock  = "block_fallback_weak"
)
