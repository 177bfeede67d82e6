package types

import "context"

type (
	MsgJoinSessionResponse      struct{}
	MsgCancelSessionResponse    struct{}
	MsgCommitMoveResponse       struct{}
	MsgRevealMoveResponse       struct{}
	MsgPlaceBetResponse         struct{}
	MsgUpdateParamsResponse     struct{}
	MsgSubmitRandomnessResponse struct{}
)

type MsgBatchRefundResponse struct {
	Refunded uint64 `json:"refunded"`
}

type MsgResolveSessionResponse struct {
	Winner string `json:"winner"`
}

type MsgDrawLotteryResponse struct {
	Winner string `json:"winner"`
}

// MsgServer is the transaction surface of x/wager. Each call is one atomic unit.
type MsgServer interface {
	CreateSession(context.Context, *MsgCreateSession) (*MsgCreateSessionResponse, error)
	JoinSession(context.Context, *MsgJoinSession) (*MsgJoinSessionResponse, error)
	CancelSession(context.Context, *MsgCancelSession) (*MsgCancelSessionResponse, error)
	ForceFinish(context.Context, *MsgForceFinish) (*MsgForceFinishResponse, error)

	CommitMove(context.Context, *MsgCommitMove) (*MsgCommitMoveResponse, error)
	RevealMove(context.Context, *MsgRevealMove) (*MsgRevealMoveResponse, error)

	PlaceBet(context.Context, *MsgPlaceBet) (*MsgPlaceBetResponse, error)
	ResolveSession(context.Context, *MsgResolveSession) (*MsgResolveSessionResponse, error)

	EnterLottery(context.Context, *MsgEnterLottery) (*MsgEnterLotteryResponse, error)
	DrawLottery(context.Context, *MsgDrawLottery) (*MsgDrawLotteryResponse, error)
	SubmitRandomness(context.Context, *MsgSubmitRandomness) (*MsgSubmitRandomnessResponse, error)

	DistributeWinnings(context.Context, *MsgDistributeWinnings) (*MsgSettlementResponse, error)
	ClaimWinnings(context.Context, *MsgClaimWinnings) (*MsgSettlementResponse, error)
	RefundWithPenalty(context.Context, *MsgRefund) (*MsgRefundResponse, error)
	BatchRefundAll(context.Context, *MsgBatchRefund) (*MsgBatchRefundResponse, error)
	SettleDraw(context.Context, *MsgSettleDraw) (*MsgBatchRefundResponse, error)

	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

type QueryParamsResponse struct {
	Params        Params `json:"params"`
	NextSessionID uint64 `json:"nextSessionId"`
}

type QuerySessionsRequest struct {
	// State filters by lifecycle state when set.
	State *SessionState `json:"state,omitempty"`
	// StartAfter resumes listing after this session id.
	StartAfter uint64 `json:"startAfter,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type QuerySessionsResponse struct {
	Sessions []*Session `json:"sessions"`
	// NextKey is the id to pass as StartAfter for the next page, 0 when done.
	NextKey uint64 `json:"nextKey,omitempty"`
}

// QueryServer is the read surface of x/wager.
type QueryServer interface {
	Params(context.Context) (*QueryParamsResponse, error)
	Session(context.Context, uint64) (*Session, error)
	Sessions(context.Context, *QuerySessionsRequest) (*QuerySessionsResponse, error)
	Profile(context.Context, string) (*PlayerProfile, error)
}
