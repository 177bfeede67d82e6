package types

import errorsmod "cosmossdk.io/errors"

// x/wager sentinel errors.
//
// Codes are grouped by class: 1-19 validation, 20-29 authorization, 30-39 resource,
// 40-49 protocol violation.
var (
	ErrInvalidRequest       = errorsmod.Register(ModuleName, 1, "invalid request")
	ErrInvalidState         = errorsmod.Register(ModuleName, 2, "invalid game state")
	ErrInvalidGameKind      = errorsmod.Register(ModuleName, 3, "invalid game type")
	ErrInvalidMove          = errorsmod.Register(ModuleName, 4, "invalid move")
	ErrInvalidBetAction     = errorsmod.Register(ModuleName, 5, "invalid bet action")
	ErrCannotFoldFinalRound = errorsmod.Register(ModuleName, 6, "cannot fold in final round")
	ErrActionNotAllowed     = errorsmod.Register(ModuleName, 7, "action not allowed in current round")
	ErrLotteryNotReady      = errorsmod.Register(ModuleName, 8, "lottery not ready for drawing")
	ErrConfigViolation      = errorsmod.Register(ModuleName, 9, "stake outside configured bounds")
	ErrInvalidConfig        = errorsmod.Register(ModuleName, 10, "invalid configuration")
	ErrDuplicateParticipant = errorsmod.Register(ModuleName, 11, "player already joined")
	ErrNoWinner             = errorsmod.Register(ModuleName, 12, "no winner set")
	ErrLotteryClosed        = errorsmod.Register(ModuleName, 13, "lottery ticket sales closed")

	ErrUnauthorized   = errorsmod.Register(ModuleName, 20, "unauthorized")
	ErrNotParticipant = errorsmod.Register(ModuleName, 21, "player not in game")
	ErrInvalidWinner  = errorsmod.Register(ModuleName, 22, "invalid winner")

	ErrSessionFull           = errorsmod.Register(ModuleName, 30, "game is full")
	ErrInsufficientFunds     = errorsmod.Register(ModuleName, 31, "insufficient funds")
	ErrArithmeticOverflow    = errorsmod.Register(ModuleName, 32, "arithmetic overflow")
	ErrNoStakeToRefund       = errorsmod.Register(ModuleName, 33, "no stake to refund")
	ErrNoLotteryParticipants = errorsmod.Register(ModuleName, 34, "no lottery participants")
	ErrActionLogFull         = errorsmod.Register(ModuleName, 35, "action log full")
	ErrSessionNotFound       = errorsmod.Register(ModuleName, 36, "game not found")

	ErrInvalidReveal          = errorsmod.Register(ModuleName, 40, "invalid reveal")
	ErrMoveAlreadySubmitted   = errorsmod.Register(ModuleName, 41, "move already submitted")
	ErrFeesAlreadyDistributed = errorsmod.Register(ModuleName, 42, "fees already distributed")
	ErrInvalidRandomness      = errorsmod.Register(ModuleName, 43, "invalid randomness")
	ErrRandomnessUnavailable  = errorsmod.Register(ModuleName, 44, "randomness unavailable")
)

// ErrorClass is the coarse failure category surfaced to callers.
type ErrorClass string

const (
	ClassNone          ErrorClass = ""
	ClassValidation    ErrorClass = "validation"
	ClassAuthorization ErrorClass = "authorization"
	ClassResource      ErrorClass = "resource"
	ClassProtocol      ErrorClass = "protocol_violation"
	ClassInternal      ErrorClass = "internal"
)

var (
	validationErrs = []error{
		ErrInvalidRequest, ErrInvalidState, ErrInvalidGameKind, ErrInvalidMove,
		ErrInvalidBetAction, ErrCannotFoldFinalRound, ErrActionNotAllowed, ErrLotteryNotReady,
		ErrConfigViolation, ErrInvalidConfig, ErrDuplicateParticipant, ErrNoWinner,
		ErrLotteryClosed,
	}
	authorizationErrs = []error{ErrUnauthorized, ErrNotParticipant, ErrInvalidWinner}
	resourceErrs      = []error{
		ErrSessionFull, ErrInsufficientFunds, ErrArithmeticOverflow, ErrNoStakeToRefund,
		ErrNoLotteryParticipants, ErrActionLogFull, ErrSessionNotFound,
	}
	protocolErrs = []error{
		ErrInvalidReveal, ErrMoveAlreadySubmitted, ErrFeesAlreadyDistributed,
		ErrInvalidRandomness, ErrRandomnessUnavailable,
	}
)

// ClassOf reports the class of err. Errors not registered by this module are internal.
func ClassOf(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errorsmod.IsOf(err, validationErrs...):
		return ClassValidation
	case errorsmod.IsOf(err, authorizationErrs...):
		return ClassAuthorization
	case errorsmod.IsOf(err, resourceErrs...):
		return ClassResource
	case errorsmod.IsOf(err, protocolErrs...):
		return ClassProtocol
	default:
		return ClassInternal
	}
}
