package types

// Every Msg carries the caller identity already authenticated by the host.

type MsgCreateSession struct {
	Creator string   `json:"creator"`
	Kind    GameKind `json:"kind"`
	Stake   uint64   `json:"stake"`
}

type MsgCreateSessionResponse struct {
	SessionID uint64 `json:"sessionId"`
}

type MsgJoinSession struct {
	Player    string `json:"player"`
	SessionID uint64 `json:"sessionId"`
}

type MsgCancelSession struct {
	Creator   string `json:"creator"`
	SessionID uint64 `json:"sessionId"`
}

type MsgForceFinish struct {
	Caller    string `json:"caller"`
	SessionID uint64 `json:"sessionId"`
}

type MsgForceFinishResponse struct {
	Winner string `json:"winner,omitempty"`
	Void   bool   `json:"void"`
}

type MsgCommitMove struct {
	Player     string `json:"player"`
	SessionID  uint64 `json:"sessionId"`
	Commitment Hash32 `json:"commitment"`
}

type MsgRevealMove struct {
	Player    string `json:"player"`
	SessionID uint64 `json:"sessionId"`
	Move      Move   `json:"move"`
	Nonce     Hash32 `json:"nonce"`
}

type MsgPlaceBet struct {
	Player    string    `json:"player"`
	SessionID uint64    `json:"sessionId"`
	Action    BetAction `json:"action"`
}

type MsgEnterLottery struct {
	Player     string `json:"player"`
	SessionID  uint64 `json:"sessionId"`
	NumTickets uint32 `json:"numTickets"`
}

type MsgEnterLotteryResponse struct {
	Filled uint32 `json:"filled"`
	Cost   uint64 `json:"cost"`
}

type MsgDrawLottery struct {
	Caller    string `json:"caller"`
	SessionID uint64 `json:"sessionId"`
}

type MsgResolveSession struct {
	Caller    string `json:"caller"`
	SessionID uint64 `json:"sessionId"`
}

// MsgSubmitRandomness delivers oracle randomness for a lottery draw or a
// multi-round resolution.
type MsgSubmitRandomness struct {
	Oracle     string `json:"oracle"`
	SessionID  uint64 `json:"sessionId"`
	Randomness Hash32 `json:"randomness"`
}

type MsgDistributeWinnings struct {
	Caller    string `json:"caller"`
	SessionID uint64 `json:"sessionId"`
	Winner    string `json:"winner"`
}

type MsgClaimWinnings struct {
	Winner    string `json:"winner"`
	SessionID uint64 `json:"sessionId"`
}

type MsgSettlementResponse struct {
	Payout uint64 `json:"payout"`
	Fee    uint64 `json:"fee"`
}

type MsgRefund struct {
	Caller       string `json:"caller"`
	SessionID    uint64 `json:"sessionId"`
	Participant  string `json:"participant"`
	ApplyPenalty bool   `json:"applyPenalty,omitempty"`
}

type MsgRefundResponse struct {
	Refunded uint64 `json:"refunded"`
	Penalty  uint64 `json:"penalty"`
}

type MsgBatchRefund struct {
	Caller    string `json:"caller"`
	SessionID uint64 `json:"sessionId"`
}

type MsgSettleDraw struct {
	Caller    string `json:"caller"`
	SessionID uint64 `json:"sessionId"`
}

// MsgUpdateParams replaces the module params; only the current admin may send it.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

func (m MsgCreateSession) ValidateBasic() error {
	if m.Creator == "" {
		return ErrInvalidRequest.Wrap("missing creator")
	}
	if !m.Kind.Valid() {
		return ErrInvalidGameKind.Wrapf("kind %d", m.Kind)
	}
	if m.Stake == 0 {
		return ErrConfigViolation.Wrap("stake must be > 0")
	}
	return nil
}

func (m MsgJoinSession) ValidateBasic() error {
	return validateCallerSession(m.Player, m.SessionID)
}

func (m MsgCancelSession) ValidateBasic() error {
	return validateCallerSession(m.Creator, m.SessionID)
}

func (m MsgForceFinish) ValidateBasic() error {
	return validateCallerSession(m.Caller, m.SessionID)
}

func (m MsgCommitMove) ValidateBasic() error {
	if err := validateCallerSession(m.Player, m.SessionID); err != nil {
		return err
	}
	if m.Commitment.IsZero() {
		return ErrInvalidMove.Wrap("commitment must be non-zero")
	}
	return nil
}

func (m MsgRevealMove) ValidateBasic() error {
	return validateCallerSession(m.Player, m.SessionID)
}

func (m MsgPlaceBet) ValidateBasic() error {
	if err := validateCallerSession(m.Player, m.SessionID); err != nil {
		return err
	}
	if m.Action.Kind > BetFold {
		return ErrInvalidBetAction.Wrapf("unknown action %d", m.Action.Kind)
	}
	if m.Action.Kind == BetRaise && m.Action.Amount == 0 {
		return ErrInvalidBetAction.Wrap("raise amount must be > 0")
	}
	if m.Action.Kind != BetRaise && m.Action.Amount != 0 {
		return ErrInvalidBetAction.Wrapf("%s does not take an amount", m.Action.Kind)
	}
	return nil
}

func (m MsgEnterLottery) ValidateBasic() error {
	return validateCallerSession(m.Player, m.SessionID)
}

func (m MsgDrawLottery) ValidateBasic() error {
	return validateCallerSession(m.Caller, m.SessionID)
}

func (m MsgResolveSession) ValidateBasic() error {
	return validateCallerSession(m.Caller, m.SessionID)
}

func (m MsgSubmitRandomness) ValidateBasic() error {
	if err := validateCallerSession(m.Oracle, m.SessionID); err != nil {
		return err
	}
	if m.Randomness.IsZero() {
		return ErrInvalidRandomness.Wrap("randomness must be non-zero")
	}
	return nil
}

func (m MsgDistributeWinnings) ValidateBasic() error {
	if err := validateCallerSession(m.Caller, m.SessionID); err != nil {
		return err
	}
	if m.Winner == "" {
		return ErrInvalidRequest.Wrap("missing winner")
	}
	return nil
}

func (m MsgClaimWinnings) ValidateBasic() error {
	return validateCallerSession(m.Winner, m.SessionID)
}

func (m MsgRefund) ValidateBasic() error {
	if err := validateCallerSession(m.Caller, m.SessionID); err != nil {
		return err
	}
	if m.Participant == "" {
		return ErrInvalidRequest.Wrap("missing participant")
	}
	return nil
}

func (m MsgBatchRefund) ValidateBasic() error {
	return validateCallerSession(m.Caller, m.SessionID)
}

func (m MsgSettleDraw) ValidateBasic() error {
	return validateCallerSession(m.Caller, m.SessionID)
}

func (m MsgUpdateParams) ValidateBasic() error {
	if m.Authority == "" {
		return ErrInvalidRequest.Wrap("missing authority")
	}
	if err := m.Params.Validate(); err != nil {
		return ErrInvalidConfig.Wrap(err.Error())
	}
	return nil
}

func validateCallerSession(caller string, sessionID uint64) error {
	if caller == "" {
		return ErrInvalidRequest.Wrap("missing caller")
	}
	if sessionID == 0 {
		return ErrInvalidRequest.Wrap("missing session id")
	}
	return nil
}
